package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const me = "user-me"

func at(sec int) time.Time {
	return time.Date(2025, 3, 1, 12, 0, sec, 0, time.UTC)
}

func incoming(id, from string, sec int, read bool) Message {
	return Message{
		ID:          id,
		SenderID:    from,
		ReceiverID:  me,
		SenderName:  "Name " + from,
		SenderEmail: from + "@example.com",
		Text:        "msg " + id,
		SentAt:      at(sec),
		Read:        read,
	}
}

func outgoing(id, to string, sec int) Message {
	return Message{
		ID:            id,
		SenderID:      me,
		ReceiverID:    to,
		SenderName:    "Me",
		SenderEmail:   "me@example.com",
		ReceiverName:  "Name " + to,
		ReceiverEmail: to + "@example.com",
		Text:          "msg " + id,
		SentAt:        at(sec),
	}
}

func TestAggregate_GroupsByCounterpart(t *testing.T) {
	msgs := []Message{
		incoming("1", "alice", 1, true),
		outgoing("2", "alice", 2),
		incoming("3", "bob", 3, false),
	}

	convs := Aggregate(msgs, me)
	require.Len(t, convs, 2)

	// Both directions with alice land in the same conversation.
	var alice, bob *Conversation
	for i := range convs {
		switch convs[i].CounterpartID {
		case "alice":
			alice = &convs[i]
		case "bob":
			bob = &convs[i]
		}
	}
	require.NotNil(t, alice)
	require.NotNil(t, bob)
	assert.Len(t, alice.Messages, 2)
	assert.Len(t, bob.Messages, 1)
	assert.Equal(t, "Name alice", alice.CounterpartName)
	assert.Equal(t, "alice@example.com", alice.CounterpartEmail)
}

func TestAggregate_OrdersByLastActivity(t *testing.T) {
	// alice=1, bob=2, carol=3: carol most recent activity, alice oldest.
	msgs := []Message{
		incoming("1", "alice", 1, true),
		incoming("2", "bob", 2, false),
		outgoing("3", "carol", 3),
	}

	convs := Aggregate(msgs, me)
	require.Len(t, convs, 3)
	assert.Equal(t, "carol", convs[0].CounterpartID)
	assert.Equal(t, "bob", convs[1].CounterpartID)
	assert.Equal(t, "alice", convs[2].CounterpartID)

	// bob's message is incoming and unread.
	assert.Equal(t, 0, convs[0].UnreadCount)
	assert.Equal(t, 1, convs[1].UnreadCount)
	assert.Equal(t, 0, convs[2].UnreadCount)
}

func TestAggregate_TranscriptAscending(t *testing.T) {
	msgs := []Message{
		incoming("3", "alice", 9, true),
		outgoing("1", "alice", 2),
		incoming("2", "alice", 5, true),
	}

	convs := Aggregate(msgs, me)
	require.Len(t, convs, 1)
	transcript := convs[0].Messages
	require.Len(t, transcript, 3)
	assert.Equal(t, "1", transcript[0].ID)
	assert.Equal(t, "2", transcript[1].ID)
	assert.Equal(t, "3", transcript[2].ID)
	assert.Equal(t, "3", convs[0].LastMessage.ID)
}

func TestAggregate_UnreadCountsIncomingOnly(t *testing.T) {
	msgs := []Message{
		incoming("1", "alice", 1, false),
		incoming("2", "alice", 2, false),
		incoming("3", "alice", 3, true),
		// Outgoing messages never count, read or not.
		outgoing("4", "alice", 4),
	}

	convs := Aggregate(msgs, me)
	require.Len(t, convs, 1)
	assert.Equal(t, 2, convs[0].UnreadCount)
}

func TestAggregate_InputOrderIndependent(t *testing.T) {
	msgs := []Message{
		incoming("1", "alice", 1, false),
		outgoing("2", "bob", 4),
		incoming("3", "alice", 3, true),
		incoming("4", "carol", 2, false),
	}
	reversed := make([]Message, len(msgs))
	for i, m := range msgs {
		reversed[len(msgs)-1-i] = m
	}

	a := aggregateAt(msgs, me, at(10))
	b := aggregateAt(reversed, me, at(10))
	assert.Equal(t, a, b)
}

func TestAggregate_Idempotent(t *testing.T) {
	msgs := []Message{
		incoming("1", "alice", 1, false),
		outgoing("2", "bob", 2),
	}
	a := aggregateAt(msgs, me, at(10))
	b := aggregateAt(msgs, me, at(10))
	assert.Equal(t, a, b)
}

func TestAggregate_EqualTimestampsKeepLaterEncounter(t *testing.T) {
	msgs := []Message{
		incoming("first", "alice", 5, true),
		incoming("second", "alice", 5, true),
	}
	convs := aggregateAt(msgs, me, at(10))
	require.Len(t, convs, 1)
	assert.Equal(t, "second", convs[0].LastMessage.ID)
}

func TestAggregate_PendingSortsAsNow(t *testing.T) {
	pending := outgoing("p", "alice", 0)
	pending.SentAt = time.Time{}

	msgs := []Message{
		pending,
		incoming("1", "alice", 1, true),
		incoming("2", "bob", 2, false),
	}

	now := at(30)
	convs := aggregateAt(msgs, me, now)
	require.Len(t, convs, 2)

	// The pending send makes alice the most recent conversation even though
	// her stored messages are older than bob's.
	assert.Equal(t, "alice", convs[0].CounterpartID)
	assert.Equal(t, "p", convs[0].LastMessage.ID)

	// And within the transcript it sorts last.
	transcript := convs[0].Messages
	assert.Equal(t, "p", transcript[len(transcript)-1].ID)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, me))
	assert.Empty(t, Aggregate([]Message{}, me))
}
