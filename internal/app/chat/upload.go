/*
Package chat contains the core logic for ephemeral chat rooms: room lifecycle,
membership, empty-room expiration, chunked-upload reassembly, and broadcast fan-out.

This file defines the Reassembler, which accumulates chunked binary uploads into
one self-contained media message. Clients stream base64 text chunks scoped by
(connection id, upload id); the finished message embeds the payload as a data
URL carrying the resolved content kind.
*/
package chat

import (
	"encoding/base64"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"driftchat/internal/pkg/errs"
	"driftchat/internal/pkg/logx"
)

// fallbackContentKind is used when neither the declared kind, the filename
// extension, nor content sniffing resolves anything more specific.
const fallbackContentKind = "application/octet-stream"

// extContentKinds is the fixed extension table consulted before sniffing.
var extContentKinds = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".mp4":  "video/mp4",
	".webm": "video/webm",
}

// uploadKey scopes one upload session to one connection and one client-supplied
// upload id. Sessions are never contended across connections.
type uploadKey struct {
	connID   string
	uploadID string
}

type uploadSession struct {
	// buf accumulates the base64 text exactly as chunked by the client.
	buf strings.Builder

	// kind is the final message kind requested at upload start
	// (IMAGE/AUDIO/VIDEO/FILE).
	kind MessageType

	fileName string
}

// Reassembler accumulates chunked uploads per (connection, upload id).
type Reassembler struct {
	mu       sync.Mutex
	sessions map[uploadKey]*uploadSession

	// maxBytes caps the accumulated base64 text per session; zero means no cap.
	maxBytes int64

	logger zerolog.Logger
}

// NewReassembler constructs a Reassembler with the given per-session size cap.
func NewReassembler(maxBytes int64) *Reassembler {
	return &Reassembler{
		sessions: make(map[uploadKey]*uploadSession),
		maxBytes: maxBytes,
		logger:   logx.Logger().With().Str("component", "reassembler").Logger(),
	}
}

// Start creates a fresh empty accumulator for (connID, uploadID), overwriting
// any pre-existing one for the same pair. requestedKind is the kind the
// finished message will carry.
func (ra *Reassembler) Start(connID, uploadID string, requestedKind MessageType, fileName string) {
	session := &uploadSession{kind: requestedKind, fileName: fileName}

	ra.mu.Lock()
	ra.sessions[uploadKey{connID, uploadID}] = session
	ra.mu.Unlock()

	ra.logger.Info().
		Str("upload_id", uploadID).
		Str("file_name", fileName).
		Str("kind", string(requestedKind)).
		Msg("Upload started.")
}

// AppendChunk appends content to the session's accumulator. A chunk with no
// session, arriving before start or after end, is silently ignored. Exceeding
// the size cap discards the session and returns the rejection error.
func (ra *Reassembler) AppendChunk(connID, uploadID, content string) error {
	key := uploadKey{connID, uploadID}

	ra.mu.Lock()
	defer ra.mu.Unlock()

	session, ok := ra.sessions[key]
	if !ok {
		return nil
	}

	if ra.maxBytes > 0 && int64(session.buf.Len())+int64(len(content)) > ra.maxBytes {
		delete(ra.sessions, key)

		ra.logger.Warn().
			Str("upload_id", uploadID).
			Int64("max_bytes", ra.maxBytes).
			Msg("Upload exceeded size cap. Session discarded.")

		return errs.NewError(errs.ErrUploadTooLarge)
	}

	session.buf.WriteString(content)
	return nil
}

// Finish removes the accumulator and produces the single self-contained message
// embedding the reconstructed content as a data URL, tagged with the kind
// requested at start. Returns false when no session exists for the pair.
func (ra *Reassembler) Finish(connID, uploadID, fileName, declaredKind, sender, roomID string) (Message, bool) {
	key := uploadKey{connID, uploadID}

	ra.mu.Lock()
	session, ok := ra.sessions[key]
	if ok {
		delete(ra.sessions, key)
	}
	ra.mu.Unlock()

	if !ok {
		return Message{}, false
	}

	if fileName == "" {
		fileName = session.fileName
	}

	payload := session.buf.String()
	contentKind := resolveContentKind(declaredKind, fileName, payload)

	kind := session.kind
	if !isMediaKind(kind) {
		kind = TypeFile
	}

	msg := NewMessage(kind, "data:"+contentKind+";base64,"+payload, sender, roomID)
	msg.FileName = fileName
	msg.FileType = contentKind

	ra.logger.Info().
		Str("upload_id", uploadID).
		Str("file_name", fileName).
		Str("content_kind", contentKind).
		Int("base64_len", len(payload)).
		Msg("Upload finished.")

	return msg, true
}

// DropConnection discards every open session belonging to a disconnecting
// connection and returns how many were dropped.
func (ra *Reassembler) DropConnection(connID string) int {
	ra.mu.Lock()
	defer ra.mu.Unlock()

	dropped := 0
	for key := range ra.sessions {
		if key.connID == connID {
			delete(ra.sessions, key)
			dropped++
		}
	}

	if dropped > 0 {
		ra.logger.Info().
			Str("conn_id", connID).
			Int("dropped", dropped).
			Msg("Discarded abandoned upload sessions.")
	}

	return dropped
}

// resolveContentKind picks the content kind for a finished upload: the declared
// kind when non-empty, else the filename extension table, else a sniff of the
// decoded payload, else the generic binary fallback.
func resolveContentKind(declaredKind, fileName, base64Payload string) string {
	if declaredKind != "" {
		return declaredKind
	}

	if ext := strings.ToLower(filepath.Ext(fileName)); ext != "" {
		if kind, ok := extContentKinds[ext]; ok {
			return kind
		}
	}

	if raw := decodeSniffPrefix(base64Payload); len(raw) > 0 {
		return mimetype.Detect(raw).String()
	}

	return fallbackContentKind
}

// decodeSniffPrefix decodes just enough of the base64 payload for content
// sniffing. Returns nil when the prefix is not valid base64.
func decodeSniffPrefix(payload string) []byte {
	const sniffLen = 4096 // base64 chars, multiple of 4

	if len(payload) > sniffLen {
		payload = payload[:sniffLen]
	}
	payload = payload[:len(payload)-len(payload)%4]

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	return raw
}
