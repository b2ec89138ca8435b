package reports

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"redguardian/infrastructure"
	"redguardian/internal/database"
)

type Repository struct {
	db *database.Database
}

func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, report *Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// Feed returns reports newest first, optionally restricted to one kind.
func (r *Repository) Feed(ctx context.Context, kind Kind) ([]Report, error) {
	q := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Collaborators").
		Preload("Links").
		Order("created_at DESC")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}

	var reports []Report
	if err := q.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch report feed: %w", err)
	}
	return reports, nil
}

func (r *Repository) ByID(ctx context.Context, id string) (*Report, error) {
	var report Report
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Collaborators").
		Preload("Links").
		First(&report, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, infrastructure.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report %s: %w", id, err)
	}
	return &report, nil
}

func (r *Repository) BySender(ctx context.Context, senderID string) ([]Report, error) {
	var reports []Report
	err := r.db.WithContext(ctx).
		Preload("Comments").
		Preload("Collaborators").
		Preload("Links").
		Where("sender_id = ?", senderID).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports by sender %s: %w", senderID, err)
	}
	return reports, nil
}

// CollaboratedBy returns the reports crediting userID as a collaborator.
func (r *Repository) CollaboratedBy(ctx context.Context, userID string) ([]Report, error) {
	var reports []Report
	err := r.db.WithContext(ctx).
		Preload("Comments").
		Preload("Collaborators").
		Preload("Links").
		Joins("JOIN collaborators ON collaborators.report_id = reports.id AND collaborators.user_id = ?", userID).
		Order("reports.created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collaborations for user %s: %w", userID, err)
	}
	return reports, nil
}

func (r *Repository) AddComment(ctx context.Context, c *Comment) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

func (r *Repository) CommentByID(ctx context.Context, reportID, commentID string) (*Comment, error) {
	var c Comment
	err := r.db.WithContext(ctx).
		First(&c, "id = ? AND report_id = ?", commentID, reportID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, infrastructure.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comment %s: %w", commentID, err)
	}
	return &c, nil
}

func (r *Repository) DeleteComment(ctx context.Context, commentID string) error {
	if err := r.db.WithContext(ctx).Delete(&Comment{}, "id = ?", commentID).Error; err != nil {
		return fmt.Errorf("failed to delete comment %s: %w", commentID, err)
	}
	return nil
}
