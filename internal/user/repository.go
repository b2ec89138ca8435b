package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"redguardian/infrastructure"
	"redguardian/internal/database"
)

type Repository struct {
	db *database.Database
}

func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, u *User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return infrastructure.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *Repository) ByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, infrastructure.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}
	return &u, nil
}

func (r *Repository) ByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, infrastructure.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}
	return &u, nil
}

func (r *Repository) Update(ctx context.Context, u *User) error {
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		return fmt.Errorf("failed to update user %s: %w", u.ID, err)
	}
	return nil
}

func (r *Repository) Favorites(ctx context.Context, userID string) ([]Favorite, error) {
	var favs []Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&favs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch favorites for user %s: %w", userID, err)
	}
	return favs, nil
}

func (r *Repository) AddFavorite(ctx context.Context, fav *Favorite) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(fav).Error
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (r *Repository) RemoveFavorite(ctx context.Context, userID, reportID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND report_id = ?", userID, reportID).
		Delete(&Favorite{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func (r *Repository) IsFavorite(ctx context.Context, userID, reportID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Favorite{}).
		Where("user_id = ? AND report_id = ?", userID, reportID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}
