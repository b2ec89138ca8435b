package messaging

import "sync"

// Hub is the in-process Notifier. Store implementations call Notify with the
// receiver id after a durable create; sessions subscribe with the id of the
// user they belong to.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func()
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]func())}
}

func (h *Hub) SubscribeIncoming(userID string, fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	token := h.next
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]func())
	}
	h.subs[userID][token] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[userID], token)
	}
}

// Notify invokes every callback registered for userID. Callbacks run on the
// caller's goroutine without the hub lock held, so a callback may subscribe
// or unsubscribe.
func (h *Hub) Notify(userID string) {
	h.mu.Lock()
	fns := make([]func(), 0, len(h.subs[userID]))
	for _, fn := range h.subs[userID] {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
