package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"redguardian/config"
	"redguardian/internal/auth"
	"redguardian/internal/database"
	"redguardian/internal/di"
	"redguardian/internal/messaging"
	"redguardian/internal/profile"
	"redguardian/internal/reports"
	"redguardian/internal/user"
)

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.Migrate(
		&user.User{},
		&user.Favorite{},
		&auth.Code{},
		&messaging.Message{},
		&reports.Report{},
		&reports.Comment{},
		&reports.Link{},
		&reports.Collaborator{},
	); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	app := di.InitializeApp(cfg, db, log)
	defer app.MessagingManager.Close()

	if cfg.CrossProcessNotify {
		app.Messages.AnnounceCreates()
		listener, err := messaging.NewPGListener(cfg.DatabaseURL, app.Hub, log)
		if err != nil {
			log.Fatal("failed to start message listener", zap.Error(err))
		}
		defer listener.Close()
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", healthHandler).Methods("GET")
	api := router.PathPrefix("/api/v1").Subrouter()

	authed := api.NewRoute().Subrouter()
	authed.Use(auth.Middleware(app.Tokens))

	auth.SetupJSONRoutes(api, app.AuthHandler)
	reports.SetupJSONRoutes(api, authed, app.ReportsHandler)
	messaging.SetupJSONRoutes(authed, app.MessagingHandler)
	profile.SetupJSONRoutes(authed, app.ProfileHandler)

	router.PathPrefix("/files/").Handler(
		http.StripPrefix("/files/", http.FileServer(http.Dir(cfg.StorageDir))))

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // uploads can be large
		IdleTimeout:  2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting HTTP server", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
