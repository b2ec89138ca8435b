package reports

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"redguardian/infrastructure"
	"redguardian/internal/files"
	"redguardian/internal/user"
)

type Service struct {
	repo    *Repository
	users   *user.Service
	storage files.Storage
}

func NewService(repo *Repository, users *user.Service, storage files.Storage) *Service {
	return &Service{repo: repo, users: users, storage: storage}
}

type CreateReportInput struct {
	SenderID           string
	Kind               Kind
	Summary            string
	Filename           string
	File               io.Reader
	Latitude           *float64
	Longitude          *float64
	LinkedProblems     []string
	CollaboratorEmails []string
}

// CreateReport uploads the attachment and stores the report. Only verified
// users may report; a summary and an attachment are both required. Linked
// problems and collaborators only apply to solution reports.
func (s *Service) CreateReport(ctx context.Context, input CreateReportInput) (*Report, error) {
	sender, err := s.users.Get(ctx, input.SenderID)
	if err != nil {
		return nil, err
	}
	if !sender.Verified {
		return nil, infrastructure.ErrNotVerified
	}

	input.Summary = strings.TrimSpace(input.Summary)
	if input.Summary == "" || input.File == nil || !input.Kind.Valid() {
		return nil, infrastructure.ErrInvalidInput
	}

	fileURL, err := s.storage.Save("files", sender.ID, input.File)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:          uuid.New().String(),
		SenderID:    sender.ID,
		SenderName:  sender.DisplayName(),
		SenderEmail: sender.Email,
		Kind:        input.Kind,
		Summary:     input.Summary,
		FileURL:     fileURL,
		Filename:    input.Filename,
		Category:    "undefined",
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		CreatedAt:   time.Now().UTC(),
	}

	if input.Kind == KindSolution {
		for _, problemID := range input.LinkedProblems {
			report.Links = append(report.Links, Link{SolutionID: report.ID, ProblemID: problemID})
		}
		for _, email := range input.CollaboratorEmails {
			collaborator, err := s.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			report.Collaborators = append(report.Collaborators, Collaborator{
				ReportID: report.ID,
				UserID:   collaborator.ID,
				Name:     collaborator.DisplayName(),
				Email:    collaborator.Email,
			})
		}
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Service) Feed(ctx context.Context, kind Kind) ([]Report, error) {
	if kind != "" && !kind.Valid() {
		return nil, infrastructure.ErrInvalidInput
	}
	return s.repo.Feed(ctx, kind)
}

func (s *Service) Get(ctx context.Context, id string) (*Report, error) {
	return s.repo.ByID(ctx, id)
}

// Problems lists problem reports, the candidates a solution can link.
func (s *Service) Problems(ctx context.Context) ([]Report, error) {
	return s.repo.Feed(ctx, KindProblem)
}

func (s *Service) BySender(ctx context.Context, senderID string) ([]Report, error) {
	return s.repo.BySender(ctx, senderID)
}

func (s *Service) CollaboratedBy(ctx context.Context, userID string) ([]Report, error) {
	return s.repo.CollaboratedBy(ctx, userID)
}

type AddCommentInput struct {
	ReportID string
	AuthorID string
	Text     string
	Image    io.Reader
}

// AddComment stores a comment with text, an image, or both. Commenting
// requires a verified account.
func (s *Service) AddComment(ctx context.Context, input AddCommentInput) (*Comment, error) {
	author, err := s.users.Get(ctx, input.AuthorID)
	if err != nil {
		return nil, err
	}
	if !author.Verified {
		return nil, infrastructure.ErrNotVerified
	}

	input.Text = strings.TrimSpace(input.Text)
	if input.Text == "" && input.Image == nil {
		return nil, infrastructure.ErrInvalidInput
	}
	if _, err := s.repo.ByID(ctx, input.ReportID); err != nil {
		return nil, err
	}

	var imageURL string
	if input.Image != nil {
		imageURL, err = s.storage.Save("comment-images", author.ID, input.Image)
		if err != nil {
			return nil, err
		}
	}

	comment := &Comment{
		ID:          uuid.New().String(),
		ReportID:    input.ReportID,
		AuthorID:    author.ID,
		AuthorName:  author.DisplayName(),
		AuthorEmail: author.Email,
		Text:        input.Text,
		ImageURL:    imageURL,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment; only its author may do so.
func (s *Service) DeleteComment(ctx context.Context, reportID, commentID, requesterID string) error {
	comment, err := s.repo.CommentByID(ctx, reportID, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != requesterID {
		return infrastructure.ErrForbidden
	}
	return s.repo.DeleteComment(ctx, commentID)
}

// ToggleFavorite flips reportID on the user's favorites list, capturing the
// report summary and share link for rendering.
func (s *Service) ToggleFavorite(ctx context.Context, userID, reportID string) (bool, error) {
	report, err := s.repo.ByID(ctx, reportID)
	if err != nil {
		return false, err
	}
	return s.users.ToggleFavorite(ctx, userID, report.ID, report.Summary, "/report/"+report.ID)
}
