package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contactform/backend/internal/config"
	"github.com/contactform/backend/internal/handler"
	"github.com/contactform/backend/internal/logging"
	"github.com/contactform/backend/internal/notify"
	"github.com/contactform/backend/internal/repository"
	"github.com/contactform/backend/internal/service"
	"github.com/contactform/backend/pkg/auth"
	"github.com/contactform/backend/pkg/telegram"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}
	if cfg.AdminPasswordDefaulted {
		slog.Warn("ADMIN_PASSWORD not set, using the built-in default; set it before exposing the admin API")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logging.Fatal("failed to open message store", "driver", cfg.StoreDriver, "error", err)
	}
	defer closeStore()

	// Telegram 未設定の場合は通知を無効化
	var sender notify.Sender
	if tg := telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramChatID); tg.Configured() {
		sender = tg
	} else {
		slog.Info("telegram not configured, notifications disabled")
	}
	dispatcher := notify.NewDispatcher(sender, cfg.NotifyTimeout, slog.Default())

	messageService := service.NewMessageService(repo, dispatcher)

	h := handler.New(cfg.CORSOrigin)
	routes := handler.Routes{
		Messages: handler.NewMessageHandler(messageService),
		Pages:    handler.NewPagesHandler(handler.PagesConfig{SiteDir: cfg.SiteDir}, h.NotFound),
		Gate:     auth.NewStaticGate(cfg.AdminPassword),
		Logger:   slog.Default(),
	}
	if cfg.RateLimit > 0 {
		rl := handler.NewRateLimiter(cfg.RateLimit, cfg.TrustedProxyCount)
		defer rl.Close()
		routes.RateLimiter = rl
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h.Routes(routes),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", server.Addr, "store", cfg.StoreDriver, "site_dir", cfg.SiteDir)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := dispatcher.Wait(shutdownCtx); err != nil {
			slog.Warn("pending notifications abandoned", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "error", err)
		closeStore()
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore returns the configured message store and a function that releases it.
func openStore(ctx context.Context, cfg *config.Config) (repository.MessageRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPgMessageRepository(pool), pool.Close, nil
	default:
		return repository.NewFileMessageRepository(cfg.DataFile), func() {}, nil
	}
}
