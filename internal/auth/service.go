package auth

import (
	"context"
	"errors"
	"time"

	passwordvalidator "github.com/wagslane/go-password-validator"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"redguardian/infrastructure"
	"redguardian/internal/user"
	"redguardian/pkg/jwt"
)

const minPasswordEntropy = 50

const (
	verifyCodeTTL = 24 * time.Hour
	resetCodeTTL  = time.Hour
)

// Mailer is the outgoing-email surface the auth flow needs. Satisfied by
// email.Sender.
type Mailer interface {
	SendVerificationEmail(to, name, code string) error
	SendPasswordResetEmail(to, name, code string) error
}

type Service struct {
	users  *user.Service
	codes  *CodeStore
	tokens *jwt.JWT
	mailer Mailer
	log    *zap.Logger
}

func NewService(users *user.Service, codes *CodeStore, tokens *jwt.JWT, mailer Mailer, log *zap.Logger) *Service {
	return &Service{users: users, codes: codes, tokens: tokens, mailer: mailer, log: log}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RegisterInput struct {
	Email    string
	Name     string
	LastName string
	Password string
	Confirm  string
}

// Register creates an unverified account and emails the verification code.
// A failing email send does not fail the registration; the code can be
// re-sent.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*user.User, error) {
	if input.Email == "" || input.Password == "" || input.Name == "" {
		return nil, infrastructure.ErrInvalidInput
	}
	if input.Password != input.Confirm {
		return nil, infrastructure.ErrInvalidInput
	}
	if err := passwordvalidator.Validate(input.Password, minPasswordEntropy); err != nil {
		return nil, err
	}

	u, err := s.users.CreateUser(ctx, user.CreateUserInput{
		Email:    input.Email,
		Name:     input.Name,
		LastName: input.LastName,
		Password: input.Password,
	})
	if err != nil {
		return nil, err
	}

	s.sendVerification(ctx, u)
	return u, nil
}

func (s *Service) sendVerification(ctx context.Context, u *user.User) {
	code := Code{
		Code:      infrastructure.GenerateVerificationCode(),
		UserID:    u.ID,
		Purpose:   PurposeVerify,
		ExpiresAt: time.Now().Add(verifyCodeTTL),
	}
	if err := s.codes.Save(ctx, code); err != nil {
		s.log.Error("failed to save verification code", zap.String("user_id", u.ID), zap.Error(err))
		return
	}
	if err := s.mailer.SendVerificationEmail(u.Email, u.DisplayName(), code.Code); err != nil {
		s.log.Error("failed to send verification email", zap.String("user_id", u.ID), zap.Error(err))
	}
}

// ResendVerification issues a fresh code for a not-yet-verified account.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.Verified {
		return nil
	}
	s.sendVerification(ctx, u)
	return nil
}

func (s *Service) VerifyEmail(ctx context.Context, code string) error {
	c, err := s.codes.Consume(ctx, code, PurposeVerify)
	if err != nil {
		return err
	}
	return s.users.MarkVerified(ctx, c.UserID)
}

func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, infrastructure.ErrUserNotFound) {
			return nil, infrastructure.ErrUnauthorized
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, infrastructure.ErrUnauthorized
	}

	access, refresh, err := s.tokens.GeneratePair(u.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil || claims.Type != jwt.TypeRefresh {
		return nil, infrastructure.ErrInvalidToken
	}
	if _, err := s.users.Get(ctx, claims.UserID); err != nil {
		return nil, infrastructure.ErrInvalidToken
	}

	access, refresh, err := s.tokens.GeneratePair(claims.UserID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) Logout(refreshToken string) error {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil || claims.Type != jwt.TypeRefresh {
		return infrastructure.ErrInvalidToken
	}
	return nil
}

// RequestPasswordReset emails a reset code. An unknown address is reported
// as success so the endpoint does not leak which emails have accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, infrastructure.ErrUserNotFound) {
			return nil
		}
		return err
	}

	code := Code{
		Code:      infrastructure.GenerateResetCode(),
		UserID:    u.ID,
		Purpose:   PurposeReset,
		ExpiresAt: time.Now().Add(resetCodeTTL),
	}
	if err := s.codes.Save(ctx, code); err != nil {
		return err
	}
	if err := s.mailer.SendPasswordResetEmail(u.Email, u.DisplayName(), code.Code); err != nil {
		s.log.Error("failed to send password reset email", zap.String("user_id", u.ID), zap.Error(err))
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, code, password string) error {
	if err := passwordvalidator.Validate(password, minPasswordEntropy); err != nil {
		return err
	}
	c, err := s.codes.Consume(ctx, code, PurposeReset)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, c.UserID, password)
}
