package messaging

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// localIDPrefix marks an optimistic message that has not been confirmed by
// the store yet.
const localIDPrefix = "temp-"

// confirmWindow is how far the server-assigned timestamp of a fetched
// message may precede the local append for the two to be considered the
// same send.
const confirmWindow = 5 * time.Second

// Identity carries the labels denormalized onto outgoing messages.
type Identity struct {
	ID    string
	Name  string
	Email string
}

type pendingSend struct {
	msg Message
	at  time.Time
}

// Session is one user's live view of their conversations. The store stays
// authoritative: every refresh replaces the working set wholesale, the only
// local mutations being the optimistic append on send and the unread-count
// zeroing on select.
type Session struct {
	store Store
	log   *zap.Logger
	user  Identity

	mu            sync.Mutex
	conversations []Conversation
	selected      string // counterpart id, empty when nothing is selected
	outbox        []pendingSend
	unsubscribe   func()

	reads sync.WaitGroup // in-flight read-state writes
}

// NewSession fetches the user's messages, builds the initial conversation
// list, and, when notifier is non-nil, re-fetches on every incoming-message
// notification. A failing initial fetch leaves the list empty; the session
// recovers on the next refresh.
func NewSession(ctx context.Context, store Store, notifier Notifier, user Identity, log *zap.Logger) *Session {
	s := &Session{store: store, log: log, user: user}
	s.Refresh(ctx)
	if notifier != nil {
		s.unsubscribe = notifier.SubscribeIncoming(user.ID, func() {
			s.Refresh(context.Background())
		})
	}
	return s
}

// Refresh re-reads the full message set and rebuilds every conversation.
// On fetch failure the previous working set is kept.
func (s *Session) Refresh(ctx context.Context) {
	msgs, err := s.store.MessagesInvolving(ctx, s.user.ID)
	if err != nil {
		s.log.Error("failed to fetch messages",
			zap.String("user_id", s.user.ID), zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.outbox = unconfirmed(s.outbox, msgs)
	convs := Aggregate(msgs, s.user.ID)
	for _, p := range s.outbox {
		convs = appendLocal(convs, p.msg, s.user.ID)
	}
	s.conversations = convs

	if s.selected != "" {
		// The selected conversation is on screen: its badge was zeroed when
		// it was selected and stays that way.
		for i := range s.conversations {
			if s.conversations[i].CounterpartID == s.selected {
				s.conversations[i].UnreadCount = 0
				break
			}
		}
	}
}

// unconfirmed drops every optimistic send that the authoritative set now
// contains: same parties, same text, and a server timestamp no earlier than
// shortly before the local append.
func unconfirmed(outbox []pendingSend, msgs []Message) []pendingSend {
	var remaining []pendingSend
	for _, p := range outbox {
		confirmed := false
		for _, m := range msgs {
			if m.SenderID == p.msg.SenderID && m.ReceiverID == p.msg.ReceiverID &&
				m.Text == p.msg.Text && !m.SentAt.Before(p.at.Add(-confirmWindow)) {
				confirmed = true
				break
			}
		}
		if !confirmed {
			remaining = append(remaining, p)
		}
	}
	return remaining
}

// appendLocal re-applies an optimistic message onto the freshly aggregated
// list, synthesizing the conversation if this send was its first message.
func appendLocal(convs []Conversation, msg Message, userID string) []Conversation {
	id, name, email := msg.Counterpart(userID)
	for i := range convs {
		if convs[i].CounterpartID == id {
			convs[i].Messages = append(convs[i].Messages, msg)
			convs[i].LastMessage = msg
			return convs
		}
	}
	return append([]Conversation{{
		CounterpartID:    id,
		CounterpartName:  name,
		CounterpartEmail: email,
		Messages:         []Message{msg},
		LastMessage:      msg,
	}}, convs...)
}

// Conversations returns the current ordered conversation list.
func (s *Session) Conversations() []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// Selected returns the counterpart id of the current conversation, empty
// when none is selected.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Select makes the conversation with counterpartID current and returns its
// transcript, oldest message first. The unread badge is zeroed immediately;
// the durable read-state writes run concurrently and best-effort, and a
// failure only means the message shows as unread again on some later
// session.
func (s *Session) Select(ctx context.Context, counterpartID string) ([]Message, bool) {
	s.mu.Lock()
	var conv *Conversation
	for i := range s.conversations {
		if s.conversations[i].CounterpartID == counterpartID {
			conv = &s.conversations[i]
			break
		}
	}
	if conv == nil {
		s.mu.Unlock()
		return nil, false
	}

	s.selected = counterpartID
	var unread []string
	for _, m := range conv.Messages {
		if m.ReceiverID == s.user.ID && !m.Read {
			unread = append(unread, m.ID)
		}
	}
	conv.UnreadCount = 0
	transcript := append([]Message(nil), conv.Messages...)
	s.mu.Unlock()

	// Selecting away later does not cancel these writes.
	background := context.WithoutCancel(ctx)
	for _, id := range unread {
		id := id
		s.reads.Add(1)
		go func() {
			defer s.reads.Done()
			if err := s.store.MarkMessageRead(background, id); err != nil {
				s.log.Warn("failed to mark message read",
					zap.String("message_id", id), zap.Error(err))
			}
		}()
	}
	return transcript, true
}

// Send appends an optimistic local message to the selected conversation and
// issues the durable create. Whitespace-only text or the absence of a
// selection is a no-op, not an error. A failed create is logged and the
// optimistic entry stays in place.
func (s *Session) Send(ctx context.Context, text string) *Message {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if text == "" || s.selected == "" {
		s.mu.Unlock()
		return nil
	}
	var conv *Conversation
	for i := range s.conversations {
		if s.conversations[i].CounterpartID == s.selected {
			conv = &s.conversations[i]
			break
		}
	}
	if conv == nil {
		s.mu.Unlock()
		return nil
	}

	record := Message{
		SenderID:      s.user.ID,
		ReceiverID:    conv.CounterpartID,
		SenderName:    s.user.Name,
		SenderEmail:   s.user.Email,
		ReceiverName:  conv.CounterpartName,
		ReceiverEmail: conv.CounterpartEmail,
		Text:          text,
		// SentAt stays zero: the store assigns the server timestamp.
	}

	local := record
	local.ID = localIDPrefix + uuid.New().String()
	conv.Messages = append(conv.Messages, local)
	conv.LastMessage = local
	s.outbox = append(s.outbox, pendingSend{msg: local, at: time.Now()})
	s.mu.Unlock()

	if _, err := s.store.CreateMessage(ctx, record); err != nil {
		s.log.Error("failed to send message",
			zap.String("receiver_id", record.ReceiverID), zap.Error(err))
	}
	return &local
}

// Close tears down the live subscription and waits for in-flight read-state
// writes to settle.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.reads.Wait()
}
