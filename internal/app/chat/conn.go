package chat

// Connection is a non-owning handle to a transport-managed outbound channel.
// The core keys participants by username and holds these handles weakly: a
// handle may report closed, or fail to send, at any point, and the core must
// tolerate both without mutating membership.
type Connection interface {
	// ID returns the opaque transport identity of the connection. Two handles
	// refer to the same connection exactly when their IDs are equal.
	ID() string

	// Open reports whether the connection can still accept outbound payloads.
	Open() bool

	// Send queues an encoded message for delivery. It must not block; a full
	// queue or a closed connection returns an error and the payload is dropped.
	Send(payload []byte) error
}
