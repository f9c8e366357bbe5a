package chat

import (
	"encoding/base64"
	"sync"
	"time"
)

// fakeConn is an in-memory Connection for tests: it records every delivered
// payload and can be flipped closed or made to fail sends.
type fakeConn struct {
	id string

	mu     sync.Mutex
	open   bool
	failed bool
	sent   [][]byte
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, open: true}
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Open() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *fakeConn) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return errConnClosed
	}
	if f.failed {
		return errSendQueueFull
	}

	buf := make([]byte, len(payload))
	copy(buf, payload)
	f.sent = append(f.sent, buf)
	return nil
}

func (f *fakeConn) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
}

func (f *fakeConn) failSends() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = true
}

// received decodes every payload delivered so far.
func (f *fakeConn) received() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	msgs := make([]Message, 0, len(f.sent))
	for _, payload := range f.sent {
		msg, err := DecodeMessage(payload)
		if err != nil {
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// receivedOfType filters delivered messages by kind.
func (f *fakeConn) receivedOfType(t MessageType) []Message {
	var out []Message
	for _, msg := range f.received() {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}

// b64 encodes raw bytes the way clients chunk uploads.
func b64(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
