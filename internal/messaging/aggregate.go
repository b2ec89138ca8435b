package messaging

import (
	"sort"
	"time"
)

// Aggregate groups an unordered set of messages involving userID into one
// conversation per distinct counterpart, each with its transcript in
// ascending timestamp order, its latest message and its unread count. The
// returned list is ordered by last activity, most recent first.
//
// The function is pure: the same input set yields the same output, except
// that messages with a pending timestamp are evaluated against the clock at
// call time and therefore sort as "now".
func Aggregate(messages []Message, userID string) []Conversation {
	return aggregateAt(messages, userID, time.Now())
}

func aggregateAt(messages []Message, userID string, now time.Time) []Conversation {
	byCounterpart := make(map[string]*Conversation)
	var order []string

	for _, msg := range messages {
		id, name, email := msg.Counterpart(userID)
		conv, ok := byCounterpart[id]
		if !ok {
			conv = &Conversation{
				CounterpartID:    id,
				CounterpartName:  name,
				CounterpartEmail: email,
				LastMessage:      msg,
			}
			byCounterpart[id] = conv
			order = append(order, id)
		}
		conv.Messages = append(conv.Messages, msg)
		// Equal timestamps keep the later encounter.
		if !msg.sentAtOr(now).Before(conv.LastMessage.sentAtOr(now)) {
			conv.LastMessage = msg
		}
		if msg.ReceiverID == userID && !msg.Read {
			conv.UnreadCount++
		}
	}

	out := make([]Conversation, 0, len(order))
	for _, id := range order {
		conv := byCounterpart[id]
		sortTranscript(conv.Messages, now)
		out = append(out, *conv)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti := out[i].LastMessage.sentAtOr(now)
		tj := out[j].LastMessage.sentAtOr(now)
		if ti.Equal(tj) {
			return out[i].CounterpartID < out[j].CounterpartID
		}
		return ti.After(tj)
	})
	return out
}

// sortTranscript orders messages the way a chat transcript is displayed,
// oldest first. Pending messages sort at the end.
func sortTranscript(msgs []Message, now time.Time) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].sentAtOr(now).Before(msgs[j].sentAtOr(now))
	})
}
