package di

import (
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"redguardian/config"
	"redguardian/internal/auth"
	"redguardian/internal/database"
	"redguardian/internal/email"
	"redguardian/internal/files"
	"redguardian/internal/messaging"
	"redguardian/internal/profile"
	"redguardian/internal/reports"
	"redguardian/internal/user"
	"redguardian/pkg/jwt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// App bundles everything the server binary wires together.
type App struct {
	Tokens *jwt.JWT
	Hub    *messaging.Hub

	Messages *messaging.Repository

	AuthHandler      *auth.JSONHandler
	MessagingHandler *messaging.JSONHandler
	ReportsHandler   *reports.JSONHandler
	ProfileHandler   *profile.JSONHandler

	MessagingManager *messaging.Manager
}

func ProvideJWT(cfg *config.Config) *jwt.JWT {
	return jwt.NewJWT(cfg.JWTSecret, accessTokenTTL, refreshTokenTTL)
}

func ProvideMailer(cfg *config.Config) *email.Sender {
	return email.NewSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
}

func ProvideStorage(cfg *config.Config) files.Storage {
	return files.NewDiskStorage(cfg.StorageDir, cfg.PublicURL+"/files")
}

func ProvideHub() *messaging.Hub {
	return messaging.NewHub()
}

func ProvideUserRepository(db *database.Database) *user.Repository {
	return user.NewRepository(db)
}

func ProvideUserService(repo *user.Repository) *user.Service {
	return user.NewService(repo)
}

func ProvideCodeStore(db *database.Database) *auth.CodeStore {
	return auth.NewCodeStore(db)
}

func ProvideAuthService(users *user.Service, codes *auth.CodeStore, tokens *jwt.JWT, mailer *email.Sender, log *zap.Logger) *auth.Service {
	return auth.NewService(users, codes, tokens, mailer, log)
}

func ProvideAuthHandler(service *auth.Service) *auth.JSONHandler {
	return auth.NewJSONHandler(service)
}

func ProvideMessageRepository(db *database.Database, hub *messaging.Hub, log *zap.Logger) *messaging.Repository {
	return messaging.NewRepository(db, hub, log)
}

func ProvideMessagingManager(repo *messaging.Repository, hub *messaging.Hub, log *zap.Logger) *messaging.Manager {
	return messaging.NewManager(repo, hub, log)
}

func ProvideMessagingHandler(manager *messaging.Manager, users *user.Service) *messaging.JSONHandler {
	return messaging.NewJSONHandler(manager, users)
}

func ProvideReportRepository(db *database.Database) *reports.Repository {
	return reports.NewRepository(db)
}

func ProvideReportService(repo *reports.Repository, users *user.Service, storage files.Storage) *reports.Service {
	return reports.NewService(repo, users, storage)
}

func ProvideReportHandler(service *reports.Service) *reports.JSONHandler {
	return reports.NewJSONHandler(service)
}

func ProvideProfileService(users *user.Service, rep *reports.Service) *profile.Service {
	return profile.NewService(users, rep)
}

func ProvideProfileHandler(service *profile.Service) *profile.JSONHandler {
	return profile.NewJSONHandler(service)
}

func ProvideApp(
	tokens *jwt.JWT,
	hub *messaging.Hub,
	messages *messaging.Repository,
	authHandler *auth.JSONHandler,
	messagingHandler *messaging.JSONHandler,
	reportsHandler *reports.JSONHandler,
	profileHandler *profile.JSONHandler,
	manager *messaging.Manager,
) *App {
	return &App{
		Tokens:           tokens,
		Hub:              hub,
		Messages:         messages,
		AuthHandler:      authHandler,
		MessagingHandler: messagingHandler,
		ReportsHandler:   reportsHandler,
		ProfileHandler:   profileHandler,
		MessagingManager: manager,
	}
}

var Set = wire.NewSet(
	ProvideJWT,
	ProvideMailer,
	ProvideStorage,
	ProvideHub,
	ProvideUserRepository,
	ProvideUserService,
	ProvideCodeStore,
	ProvideAuthService,
	ProvideAuthHandler,
	ProvideMessageRepository,
	ProvideMessagingManager,
	ProvideMessagingHandler,
	ProvideReportRepository,
	ProvideReportService,
	ProvideReportHandler,
	ProvideProfileService,
	ProvideProfileHandler,
	ProvideApp,
)
