package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"redguardian/infrastructure"
	"redguardian/internal/database"
)

const (
	PurposeVerify = "verify"
	PurposeReset  = "reset"
)

// Code is a single-use email verification or password reset code.
type Code struct {
	Code      string    `gorm:"primaryKey"`
	UserID    string    `gorm:"index;not null"`
	Purpose   string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

type CodeStore struct {
	db *database.Database
}

func NewCodeStore(db *database.Database) *CodeStore {
	return &CodeStore{db: db}
}

func (s *CodeStore) Save(ctx context.Context, code Code) error {
	if err := s.db.WithContext(ctx).Create(&code).Error; err != nil {
		return fmt.Errorf("failed to save %s code: %w", code.Purpose, err)
	}
	return nil
}

// Consume looks up an unexpired code for the given purpose and deletes it.
func (s *CodeStore) Consume(ctx context.Context, code, purpose string) (*Code, error) {
	var c Code
	err := s.db.WithContext(ctx).
		First(&c, "code = ? AND purpose = ?", code, purpose).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, infrastructure.ErrInvalidCode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up code: %w", err)
	}
	if time.Now().After(c.ExpiresAt) {
		_ = s.db.WithContext(ctx).Delete(&c).Error
		return nil, infrastructure.ErrInvalidCode
	}
	if err := s.db.WithContext(ctx).Delete(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to consume code: %w", err)
	}
	return &c, nil
}
