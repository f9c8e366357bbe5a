package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeMessageTolerantOfUnknownAndMissingFields(t *testing.T) {
	req := require.New(t)

	msg, err := DecodeMessage([]byte(`{"type":"CHAT","content":"hi","sender":"alice","roomId":"ROOM0001","color":"red","threadId":42}`))
	req.NoError(err)
	req.Equal(TypeChat, msg.Type)
	req.Equal("hi", msg.Content)
	req.Equal("alice", msg.Sender)
	req.Equal("ROOM0001", msg.RoomID)

	// A bare envelope still decodes; absent fields stay zero.
	msg, err = DecodeMessage([]byte(`{"type":"LEAVE"}`))
	req.NoError(err)
	req.Equal(TypeLeave, msg.Type)
	req.Empty(msg.Sender)
	req.Empty(msg.RoomID)
}

func TestDecodeMessageRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"type":`))
	require.Error(t, err)
}

func TestNewMessageStampsReadableTimestamp(t *testing.T) {
	req := require.New(t)

	msg := NewMessage(TypeChat, "hi", "alice", "ROOM0001")
	ts, err := time.Parse("2006-01-02 15:04:05", msg.Timestamp)
	req.NoError(err)
	req.WithinDuration(time.Now(), ts, 2*time.Second)
}

func TestEncodeOmitsEmptyUploadMetadata(t *testing.T) {
	req := require.New(t)

	payload, err := NewSystemMessage("hello", "ROOM0001").Encode()
	req.NoError(err)
	req.NotContains(string(payload), "fileName")
	req.NotContains(string(payload), "uploadId")
	req.NotContains(string(payload), "userId")
	req.Contains(string(payload), `"sender":"System"`)
}

func TestKindClassification(t *testing.T) {
	req := require.New(t)

	for _, kind := range []MessageType{TypeChat, TypeAudio, TypeImage, TypeVideo, TypeFile} {
		req.True(isBroadcastKind(kind), string(kind))
	}
	for _, kind := range []MessageType{TypeJoin, TypeLeave, TypeRoomClosed, TypeUserList, TypeUploadStart, TypeUploadChunk, TypeUploadEnd} {
		req.False(isBroadcastKind(kind), string(kind))
	}

	req.True(isMediaKind(TypeImage))
	req.False(isMediaKind(TypeChat))
	req.False(isMediaKind(TypeUploadStart))
}
