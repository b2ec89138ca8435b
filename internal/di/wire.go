//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"redguardian/config"
	"redguardian/internal/database"
)

func InitializeApp(cfg *config.Config, db *database.Database, log *zap.Logger) *App {
	wire.Build(Set)
	return &App{}
}
