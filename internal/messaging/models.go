package messaging

import "time"

// Message is a directed text record between two users. Sender and receiver
// labels are denormalized onto the record so a conversation can be rendered
// without extra user lookups. A message is immutable once stored except for
// its Read flag, which only ever moves from false to true.
type Message struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	SenderID      string    `gorm:"index;not null" json:"senderId"`
	ReceiverID    string    `gorm:"index;not null" json:"receiverId"`
	SenderName    string    `json:"senderName"`
	SenderEmail   string    `json:"senderEmail"`
	ReceiverName  string    `json:"receiverName"`
	ReceiverEmail string    `json:"receiverEmail"`
	Text          string    `gorm:"not null" json:"text"`
	SentAt        time.Time `json:"sentAt"`
	Read          bool      `gorm:"not null;default:false" json:"read"`
}

// Pending reports whether the message is still waiting for the store to
// assign its timestamp. A pending message sorts as "now".
func (m Message) Pending() bool { return m.SentAt.IsZero() }

func (m Message) sentAtOr(now time.Time) time.Time {
	if m.SentAt.IsZero() {
		return now
	}
	return m.SentAt
}

// Counterpart returns the other party of the message relative to userID,
// together with the matching display labels.
func (m Message) Counterpart(userID string) (id, name, email string) {
	if m.SenderID == userID {
		return m.ReceiverID, m.ReceiverName, m.ReceiverEmail
	}
	return m.SenderID, m.SenderName, m.SenderEmail
}

// Conversation is the derived view of every message exchanged with a single
// counterpart. It is never persisted: each aggregation pass rebuilds the
// whole set from the current messages.
type Conversation struct {
	CounterpartID    string    `json:"counterpartId"`
	CounterpartName  string    `json:"counterpartName"`
	CounterpartEmail string    `json:"counterpartEmail"`
	Messages         []Message `json:"messages"`
	LastMessage      Message   `json:"lastMessage"`
	UnreadCount      int       `json:"unreadCount"`
}
