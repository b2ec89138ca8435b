package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"redguardian/infrastructure"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

type CreateUserInput struct {
	Email    string
	Name     string
	LastName string
	Password string
}

func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" || input.Password == "" {
		return nil, infrastructure.ErrInvalidInput
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        input.Email,
		Name:         strings.TrimSpace(input.Name),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.ByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.ByEmail(ctx, strings.TrimSpace(email))
}

func (s *Service) MarkVerified(ctx context.Context, id string) error {
	u, err := s.repo.ByID(ctx, id)
	if err != nil {
		return err
	}
	u.Verified = true
	return s.repo.Update(ctx, u)
}

func (s *Service) UpdatePassword(ctx context.Context, id, password string) error {
	u, err := s.repo.ByID(ctx, id)
	if err != nil {
		return err
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return s.repo.Update(ctx, u)
}

func (s *Service) Favorites(ctx context.Context, userID string) ([]Favorite, error) {
	return s.repo.Favorites(ctx, userID)
}

// ToggleFavorite adds the report to the user's favorites, or removes it when
// it is already there. Returns whether the report is a favorite afterwards.
func (s *Service) ToggleFavorite(ctx context.Context, userID, reportID, title, link string) (bool, error) {
	isFav, err := s.repo.IsFavorite(ctx, userID, reportID)
	if err != nil {
		return false, err
	}
	if isFav {
		if err := s.repo.RemoveFavorite(ctx, userID, reportID); err != nil {
			return true, err
		}
		return false, nil
	}
	fav := &Favorite{
		UserID:   userID,
		ReportID: reportID,
		Title:    title,
		Link:     link,
	}
	if err := s.repo.AddFavorite(ctx, fav); err != nil {
		return false, err
	}
	return true, nil
}
