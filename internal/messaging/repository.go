package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"redguardian/internal/database"
)

// Repository is the gorm-backed Store. After every durable create it pokes
// the notifier hub so live sessions of the receiver re-fetch.
type Repository struct {
	db       *database.Database
	hub      *Hub
	log      *zap.Logger
	announce bool
}

func NewRepository(db *database.Database, hub *Hub, log *zap.Logger) *Repository {
	return &Repository{db: db, hub: hub, log: log}
}

// AnnounceCreates makes every durable create also emit a Postgres NOTIFY on
// NotifyChannel, so listeners in other processes wake up as well. Only valid
// when the repository runs on Postgres.
func (r *Repository) AnnounceCreates() {
	r.announce = true
}

// MessagesInvolving unions two queries, one by sender and one by receiver,
// run concurrently. Sender and receiver are never the same user, so the
// union has no duplicates.
func (r *Repository) MessagesInvolving(ctx context.Context, userID string) ([]Message, error) {
	var sent, received []Message

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.db.WithContext(ctx).Where("sender_id = ?", userID).Find(&sent).Error
	})
	g.Go(func() error {
		return r.db.WithContext(ctx).Where("receiver_id = ?", userID).Find(&received).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch messages for user %s: %w", userID, err)
	}

	return append(sent, received...), nil
}

func (r *Repository) CreateMessage(ctx context.Context, msg Message) (Message, error) {
	if msg.ID == "" || strings.HasPrefix(msg.ID, localIDPrefix) {
		msg.ID = uuid.New().String()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return Message{}, fmt.Errorf("failed to create message: %w", err)
	}

	if r.announce {
		if err := Announce(r.db, msg); err != nil {
			r.log.Warn("failed to announce message", zap.String("message_id", msg.ID), zap.Error(err))
		}
	}
	if r.hub != nil {
		r.hub.Notify(msg.ReceiverID)
	}
	return msg, nil
}

func (r *Repository) MarkMessageRead(ctx context.Context, messageID string) error {
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("id = ?", messageID).
		Update("read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark message %s read: %w", messageID, err)
	}
	return nil
}
