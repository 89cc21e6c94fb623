package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/feedbackhub/backend/internal/auth"
	"github.com/zhouzirui/feedbackhub/backend/internal/config"
	"github.com/zhouzirui/feedbackhub/backend/internal/handler"
	"github.com/zhouzirui/feedbackhub/backend/internal/logging"
	"github.com/zhouzirui/feedbackhub/backend/internal/model/feedback"
	"github.com/zhouzirui/feedbackhub/backend/internal/service/acceptance"
	"github.com/zhouzirui/feedbackhub/backend/internal/service/inbox"
	"github.com/zhouzirui/feedbackhub/backend/internal/service/intake"
	"github.com/zhouzirui/feedbackhub/backend/internal/service/submission"
	"github.com/zhouzirui/feedbackhub/backend/internal/service/suggestion"
	"github.com/zhouzirui/feedbackhub/backend/internal/storage/badgerstore"
	"github.com/zhouzirui/feedbackhub/backend/internal/storage/memory"
)

type store interface {
	feedback.AccountStore
	feedback.MessageStore
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	st, closeStore, err := openStore(cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := seedAccounts(ctx, st, cfg.Storage.SeedAccounts, logger); err != nil {
		return err
	}

	gate := acceptance.NewGate(st, logger)
	services := handler.Services{
		Gate:              gate,
		Inbox:             inbox.NewService(st, logger),
		Submission:        submission.NewService(gate, st, logger),
		Suggestions:       newGenerator(ctx, cfg.AI, logger),
		SuggestionTimeout: cfg.AI.SuggestionTimeout,
	}
	if cfg.Auth.Enabled() {
		services.Verifier = auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	} else {
		logger.Warn("AUTH_JWT_SECRET not set, owner routes are disabled")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.NewRouter(services, logger),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("feedbackhub backend listening", zap.String("addr", cfg.Server.Addr))
	return runServer(ctx, srv)
}

func openStore(cfg config.StorageConfig, logger *zap.Logger) (store, func(), error) {
	switch cfg.Driver {
	case config.DriverBadger:
		db, err := badgerstore.Open(cfg.BadgerPath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger store: %w", err)
		}
		logger.Info("using badger storage", zap.String("path", cfg.BadgerPath))
		return db, func() {
			if err := db.Close(); err != nil {
				logger.Warn("close badger store", zap.Error(err))
			}
		}, nil
	default:
		logger.Info("using in-memory storage")
		return memory.NewStore(), func() {}, nil
	}
}

func seedAccounts(ctx context.Context, accounts feedback.AccountStore, handles []string, logger *zap.Logger) error {
	for _, h := range handles {
		if err := intake.ValidateHandle(h); err != nil {
			return fmt.Errorf("invalid SEED_ACCOUNTS entry %q: %w", h, err)
		}
		if _, err := accounts.Create(ctx, feedback.NewAccount(h)); err != nil {
			return fmt.Errorf("seed account %q: %w", h, err)
		}
		logger.Info("seeded account", zap.String("handle", h))
	}
	return nil
}

func newGenerator(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) suggestion.Generator {
	fallback := suggestion.StaticGenerator{Text: suggestion.DefaultSuggestions}
	if !cfg.Enabled() {
		logger.Info("Ark credentials not configured, serving default suggestions")
		return fallback
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		logger.Warn("failed to create chat model, serving default suggestions", zap.Error(err))
		return fallback
	}
	svc, err := suggestion.NewService(ctx, chatModel, logger)
	if err != nil {
		logger.Warn("failed to build suggestion chain, serving default suggestions", zap.Error(err))
		return fallback
	}
	logger.Info("suggestion service initialized", zap.String("model", cfg.Model))
	return svc
}

func runServer(ctx context.Context, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
