package messaging

import "context"

// Store is the external persistence the aggregator works against. Every
// call crosses a process or network boundary and may fail transiently; the
// session degrades to its last-known-good view rather than surfacing fetch
// errors.
type Store interface {
	// MessagesInvolving returns every message where userID is the sender or
	// the receiver, in no particular order.
	MessagesInvolving(ctx context.Context, userID string) ([]Message, error)

	// CreateMessage durably stores msg, assigning its id and, when SentAt is
	// the zero value, the server-side timestamp. The stored message is
	// returned.
	CreateMessage(ctx context.Context, msg Message) (Message, error)

	// MarkMessageRead flips the read flag on one message. Idempotent.
	MarkMessageRead(ctx context.Context, messageID string) error
}

// Notifier invokes fn whenever a new message addressed to userID is durably
// created. The returned handle removes the subscription.
type Notifier interface {
	SubscribeIncoming(userID string, fn func()) (unsubscribe func())
}
