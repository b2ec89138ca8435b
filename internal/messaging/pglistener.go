package messaging

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"redguardian/internal/database"
)

// NotifyChannel is the Postgres channel message creations are announced on.
// The payload is the receiver's user id.
const NotifyChannel = "rg_incoming_message"

// Announce emits a NOTIFY for the receiver of msg. Repositories running in
// multi-process deployments call it inside the same database so listeners in
// other processes wake up too.
func Announce(db *database.Database, msg Message) error {
	return db.Exec("SELECT pg_notify(?, ?)", NotifyChannel, msg.ReceiverID).Error
}

// PGListener bridges Postgres NOTIFY events into a Hub so a message created
// by another process still triggers the local live subscriptions.
type PGListener struct {
	listener *pq.Listener
	hub      *Hub
	log      *zap.Logger
	done     chan struct{}
}

func NewPGListener(dsn string, hub *Hub, log *zap.Logger) (*PGListener, error) {
	l := pq.NewListener(dsn, 10*time.Second, time.Minute, nil)
	if err := l.Listen(NotifyChannel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", NotifyChannel, err)
	}

	p := &PGListener{listener: l, hub: hub, log: log, done: make(chan struct{})}
	go p.run()
	return p, nil
}

func (p *PGListener) run() {
	for {
		select {
		case <-p.done:
			return
		case n := <-p.listener.Notify:
			if n == nil {
				// Delivered after a connection loss; notifications may have
				// been missed but there is no receiver to target, so the
				// next user-triggered fetch catches up.
				continue
			}
			p.hub.Notify(n.Extra)
		case <-time.After(90 * time.Second):
			if err := p.listener.Ping(); err != nil {
				p.log.Warn("message listener ping failed", zap.Error(err))
			}
		}
	}
}

func (p *PGListener) Close() error {
	close(p.done)
	return p.listener.Close()
}
