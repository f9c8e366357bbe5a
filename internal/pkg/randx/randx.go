/*
Package randx provides cryptographically secure random identifier generation.

It generates the short, human-typeable room ids clients share to join a room.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// RoomIDChars is the character set for room ids: uppercase alphanumeric,
	// chosen so ids survive being read aloud or typed.
	RoomIDChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// RoomIDLength is the fixed length of a generated room id.
	RoomIDLength = 8
)

// charsLen avoids recomputing the big.Int bound per character.
var charsLen = big.NewInt(int64(len(RoomIDChars)))

// RoomID generates a fixed-length uppercase alphanumeric room id from
// crypto/rand. Uniqueness is probabilistic: with 36^8 possible ids, collisions
// are accepted as negligible and not actively checked.
func RoomID() (string, error) {
	result := make([]byte, RoomIDLength)

	for i := 0; i < RoomIDLength; i++ {
		num, err := rand.Int(rand.Reader, charsLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for room id: %w", err)
		}

		result[i] = RoomIDChars[num.Int64()]
	}

	return string(result), nil
}

// IsValidRoomID reports whether id has the exact generated length and alphabet.
func IsValidRoomID(id string) bool {
	if len(id) != RoomIDLength {
		return false
	}

	for _, char := range id {
		if !strings.ContainsRune(RoomIDChars, char) {
			return false
		}
	}

	return true
}
