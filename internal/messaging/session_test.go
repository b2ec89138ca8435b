package messaging

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore is an in-memory Store that records every call.
type fakeStore struct {
	mu         sync.Mutex
	msgs       []Message
	marked     []string
	fetchErr   error
	createErr  error
	markErr    error
	createSeen []Message
}

func (f *fakeStore) MessagesInvolving(_ context.Context, userID string) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []Message
	for _, m := range f.msgs {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateMessage(_ context.Context, msg Message) (Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createSeen = append(f.createSeen, msg)
	if f.createErr != nil {
		return Message{}, f.createErr
	}
	msg.ID = "srv-" + msg.Text
	msg.SentAt = time.Now().UTC()
	f.msgs = append(f.msgs, msg)
	return msg, nil
}

func (f *fakeStore) MarkMessageRead(_ context.Context, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, messageID)
	for i := range f.msgs {
		if f.msgs[i].ID == messageID {
			f.msgs[i].Read = true
		}
	}
	return nil
}

func (f *fakeStore) markedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.marked...)
}

var testUser = Identity{ID: me, Name: "Me", Email: "me@example.com"}

func newTestSession(t *testing.T, store *fakeStore, notifier Notifier) *Session {
	t.Helper()
	s := NewSession(context.Background(), store, notifier, testUser, zap.NewNop())
	t.Cleanup(s.Close)
	return s
}

func TestSession_SelectZeroesUnreadAndMarksRead(t *testing.T) {
	store := &fakeStore{msgs: []Message{
		incoming("1", "alice", 1, true),
		incoming("2", "alice", 2, false),
		incoming("3", "bob", 3, false),
	}}
	s := newTestSession(t, store, nil)

	transcript, ok := s.Select(context.Background(), "alice")
	require.True(t, ok)
	require.Len(t, transcript, 2)

	convs := s.Conversations()
	for _, c := range convs {
		if c.CounterpartID == "alice" {
			// Zeroed before the durable writes settle.
			assert.Equal(t, 0, c.UnreadCount)
		}
		if c.CounterpartID == "bob" {
			assert.Equal(t, 1, c.UnreadCount)
		}
	}

	s.reads.Wait()
	// Exactly the one unread incoming message, not the already-read one.
	assert.Equal(t, []string{"2"}, store.markedIDs())
}

func TestSession_SelectUnknownCounterpart(t *testing.T) {
	s := newTestSession(t, &fakeStore{}, nil)
	_, ok := s.Select(context.Background(), "nobody")
	assert.False(t, ok)
}

func TestSession_SelectSurvivesMarkReadFailure(t *testing.T) {
	store := &fakeStore{
		msgs:    []Message{incoming("1", "alice", 1, false)},
		markErr: errors.New("write failed"),
	}
	s := newTestSession(t, store, nil)

	_, ok := s.Select(context.Background(), "alice")
	require.True(t, ok)
	s.reads.Wait()

	// The badge stays zeroed even though the durable write failed.
	convs := s.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, 0, convs[0].UnreadCount)
}

func TestSession_SendAppendsOptimistically(t *testing.T) {
	store := &fakeStore{msgs: []Message{incoming("1", "alice", 1, true)}}
	s := newTestSession(t, store, nil)

	_, ok := s.Select(context.Background(), "alice")
	require.True(t, ok)

	local := s.Send(context.Background(), "  hola  ")
	require.NotNil(t, local)
	assert.True(t, strings.HasPrefix(local.ID, localIDPrefix))
	assert.Equal(t, "hola", local.Text)
	assert.True(t, local.Pending())
	assert.Equal(t, me, local.SenderID)
	assert.Equal(t, "alice", local.ReceiverID)
	assert.Equal(t, "Name alice", local.ReceiverName)

	// The store receives the trimmed text with no local id attached.
	require.Len(t, store.createSeen, 1)
	assert.Empty(t, store.createSeen[0].ID)
	assert.Equal(t, "hola", store.createSeen[0].Text)
	assert.True(t, store.createSeen[0].SentAt.IsZero())

	convs := s.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, local.ID, convs[0].LastMessage.ID)
}

func TestSession_SendNoOps(t *testing.T) {
	store := &fakeStore{msgs: []Message{incoming("1", "alice", 1, true)}}
	s := newTestSession(t, store, nil)

	t.Run("nothing selected", func(t *testing.T) {
		assert.Nil(t, s.Send(context.Background(), "hola"))
	})

	t.Run("whitespace only", func(t *testing.T) {
		_, ok := s.Select(context.Background(), "alice")
		require.True(t, ok)
		assert.Nil(t, s.Send(context.Background(), "   \n\t"))
	})

	assert.Empty(t, store.createSeen)
}

func TestSession_SendKeepsLocalOnCreateFailure(t *testing.T) {
	store := &fakeStore{
		msgs:      []Message{incoming("1", "alice", 1, true)},
		createErr: errors.New("store down"),
	}
	s := newTestSession(t, store, nil)

	_, ok := s.Select(context.Background(), "alice")
	require.True(t, ok)
	local := s.Send(context.Background(), "hola")
	require.NotNil(t, local)

	convs := s.Conversations()
	require.Len(t, convs, 1)
	require.Len(t, convs[0].Messages, 2)
	assert.Equal(t, local.ID, convs[0].Messages[1].ID)
}

func TestSession_RefreshDropsConfirmedSends(t *testing.T) {
	store := &fakeStore{msgs: []Message{incoming("1", "alice", 1, true)}}
	s := newTestSession(t, store, nil)

	_, ok := s.Select(context.Background(), "alice")
	require.True(t, ok)
	s.Send(context.Background(), "hola")

	// The fake store confirmed the create synchronously, so the next refresh
	// sees both the optimistic entry and its server copy.
	s.Refresh(context.Background())

	convs := s.Conversations()
	require.Len(t, convs, 1)
	require.Len(t, convs[0].Messages, 2)
	assert.Equal(t, "srv-hola", convs[0].Messages[1].ID)
}

func TestSession_RefreshKeepsUnconfirmedSends(t *testing.T) {
	store := &fakeStore{
		msgs:      []Message{incoming("1", "alice", 1, true)},
		createErr: errors.New("store down"),
	}
	s := newTestSession(t, store, nil)

	_, ok := s.Select(context.Background(), "alice")
	require.True(t, ok)
	local := s.Send(context.Background(), "hola")
	require.NotNil(t, local)

	s.Refresh(context.Background())

	convs := s.Conversations()
	require.Len(t, convs, 1)
	require.Len(t, convs[0].Messages, 2)
	assert.Equal(t, local.ID, convs[0].Messages[1].ID)
	assert.Equal(t, local.ID, convs[0].LastMessage.ID)
}

func TestSession_RefreshFailureKeepsLastKnownGood(t *testing.T) {
	store := &fakeStore{msgs: []Message{incoming("1", "alice", 1, false)}}
	s := newTestSession(t, store, nil)
	require.Len(t, s.Conversations(), 1)

	store.mu.Lock()
	store.fetchErr = errors.New("connection lost")
	store.mu.Unlock()

	s.Refresh(context.Background())
	assert.Len(t, s.Conversations(), 1)
}

func TestSession_RefreshPreservesSelectedZero(t *testing.T) {
	store := &fakeStore{msgs: []Message{incoming("1", "alice", 1, false)}}
	s := newTestSession(t, store, nil)

	// Break the durable writes so the store still reports the message unread.
	store.mu.Lock()
	store.markErr = errors.New("write failed")
	store.mu.Unlock()

	_, ok := s.Select(context.Background(), "alice")
	require.True(t, ok)
	s.reads.Wait()

	s.Refresh(context.Background())

	convs := s.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, 0, convs[0].UnreadCount)
}

func TestSession_NotificationTriggersRefresh(t *testing.T) {
	store := &fakeStore{msgs: []Message{incoming("1", "alice", 1, true)}}
	hub := NewHub()
	s := newTestSession(t, store, hub)
	require.Len(t, s.Conversations(), 1)

	store.mu.Lock()
	store.msgs = append(store.msgs, incoming("2", "bob", 5, false))
	store.mu.Unlock()

	hub.Notify(me)

	convs := s.Conversations()
	require.Len(t, convs, 2)
	assert.Equal(t, "bob", convs[0].CounterpartID)
	assert.Equal(t, 1, convs[0].UnreadCount)
}

func TestSession_SendToNewCounterpartAfterNotification(t *testing.T) {
	// A first-contact message arrives, the session refreshes, and the new
	// conversation can be selected and answered.
	store := &fakeStore{}
	hub := NewHub()
	s := newTestSession(t, store, hub)
	require.Empty(t, s.Conversations())

	store.mu.Lock()
	store.msgs = append(store.msgs, incoming("1", "carol", 1, false))
	store.mu.Unlock()
	hub.Notify(me)

	transcript, ok := s.Select(context.Background(), "carol")
	require.True(t, ok)
	assert.Len(t, transcript, 1)

	local := s.Send(context.Background(), "hola carol")
	require.NotNil(t, local)
	assert.Equal(t, "carol", local.ReceiverID)
}

func TestManager_OneSessionPerUser(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(store, NewHub(), zap.NewNop())
	t.Cleanup(m.Close)

	a := m.Session(context.Background(), testUser)
	b := m.Session(context.Background(), testUser)
	other := m.Session(context.Background(), Identity{ID: "other"})

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
}
