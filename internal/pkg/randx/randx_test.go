package randx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomIDLengthAndAlphabet(t *testing.T) {
	req := require.New(t)

	for i := 0; i < 100; i++ {
		id, err := RoomID()
		req.NoError(err)
		req.Len(id, RoomIDLength)

		for _, char := range id {
			req.True(strings.ContainsRune(RoomIDChars, char), "unexpected character %q in %q", char, id)
		}
	}
}

func TestRoomIDsAreUnique(t *testing.T) {
	req := require.New(t)

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id, err := RoomID()
		req.NoError(err)

		_, dup := seen[id]
		req.False(dup, "duplicate id %q", id)
		seen[id] = struct{}{}
	}
}

func TestIsValidRoomID(t *testing.T) {
	req := require.New(t)

	req.True(IsValidRoomID("ABCD1234"))
	req.True(IsValidRoomID("00000000"))

	req.False(IsValidRoomID(""))
	req.False(IsValidRoomID("ABC123"))
	req.False(IsValidRoomID("ABCD12345"))
	req.False(IsValidRoomID("abcd1234"))
	req.False(IsValidRoomID("ABCD-234"))
}
