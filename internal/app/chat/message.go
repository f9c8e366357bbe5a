/*
Package chat contains the core logic for ephemeral chat rooms: room lifecycle,
membership, empty-room expiration, chunked-upload reassembly, and broadcast fan-out.

This file defines the wire envelope exchanged with clients and its message kinds.
*/
package chat

import (
	"encoding/json"
	"time"
)

// MessageType identifies the kind of a wire envelope.
type MessageType string

const (
	TypeChat       MessageType = "CHAT"
	TypeJoin       MessageType = "JOIN"
	TypeLeave      MessageType = "LEAVE"
	TypeRoomClosed MessageType = "ROOM_CLOSED"
	TypeUserList   MessageType = "USER_LIST"
	TypeAudio      MessageType = "AUDIO"
	TypeImage      MessageType = "IMAGE"
	TypeVideo      MessageType = "VIDEO"
	TypeFile       MessageType = "FILE"

	TypeUploadStart MessageType = "UPLOAD_START"
	TypeUploadChunk MessageType = "UPLOAD_CHUNK"
	TypeUploadEnd   MessageType = "UPLOAD_END"
)

// SystemSender is the sender name used for server-authored messages.
const SystemSender = "System"

// timestampLayout is the human-readable format carried in every envelope.
const timestampLayout = "2006-01-02 15:04:05"

// Message is the transient wire envelope. It is produced and consumed once and
// never stored server-side.
type Message struct {
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Sender    string      `json:"sender"`
	RoomID    string      `json:"roomId"`
	Timestamp string      `json:"timestamp"`

	// Upload / media metadata. Empty for plain chat traffic.
	FileName    string `json:"fileName,omitempty"`
	FileType    string `json:"fileType,omitempty"`
	ChunkIndex  int    `json:"chunkIndex,omitempty"`
	TotalChunks int    `json:"totalChunks,omitempty"`
	UploadID    string `json:"uploadId,omitempty"`

	// UserID is the client-supplied reconnect identity, set on JOIN.
	UserID string `json:"userId,omitempty"`
}

// NewMessage builds an envelope stamped with the current time.
func NewMessage(msgType MessageType, content, sender, roomID string) Message {
	return Message{
		Type:      msgType,
		Content:   content,
		Sender:    sender,
		RoomID:    roomID,
		Timestamp: time.Now().Format(timestampLayout),
	}
}

// NewSystemMessage builds a server-authored chat message for the given room.
func NewSystemMessage(content, roomID string) Message {
	return NewMessage(TypeChat, content, SystemSender, roomID)
}

// DecodeMessage parses an inbound envelope. Decoding is permissive: unknown or
// absent fields never fail the message, only malformed JSON does. Unrecognized
// type values are passed through and dropped by the router.
func DecodeMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Encode serializes the envelope to its wire text form.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// isBroadcastKind reports whether the kind is relayed to the room as-is.
func isBroadcastKind(t MessageType) bool {
	switch t {
	case TypeChat, TypeAudio, TypeImage, TypeVideo, TypeFile:
		return true
	}
	return false
}

// isMediaKind reports whether the kind is a valid final kind for a reassembled
// upload.
func isMediaKind(t MessageType) bool {
	switch t {
	case TypeAudio, TypeImage, TypeVideo, TypeFile:
		return true
	}
	return false
}
