package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	api "github.com/evgeniy-krivenko/notepad/internal/api/notes"
	"github.com/evgeniy-krivenko/notepad/internal/config"
	"github.com/evgeniy-krivenko/notepad/internal/entity"
	"github.com/evgeniy-krivenko/notepad/internal/repository"
	"github.com/evgeniy-krivenko/notepad/internal/usecase/assist"
	notesuc "github.com/evgeniy-krivenko/notepad/internal/usecase/notes"
	"github.com/evgeniy-krivenko/notepad/migrations"
	"github.com/evgeniy-krivenko/notepad/pkg/database"
	"github.com/evgeniy-krivenko/notepad/pkg/gemini"
	"github.com/evgeniy-krivenko/notepad/pkg/gwserver"
	"github.com/evgeniy-krivenko/notepad/pkg/logger/slogx"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Parse()
	if err != nil {
		return fmt.Errorf("parse cfg: %v", err)
	}

	if err := slogx.InitGlobal(os.Stdout, cfg.App.LogLevel, cfg.App.Pretty); err != nil {
		return fmt.Errorf("init logger: %v", err)
	}

	pool, err := database.NewPGX(ctx, database.NewOptions(
		cfg.Database.Addr(),
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		database.WithRetryAttempts(cfg.Database.RetryAttempts),
		database.WithMaxConns(cfg.Database.MaxConns),
		database.WithLogger(slogx.Default()),
	))
	if err != nil {
		return fmt.Errorf("init database: %v", err)
	}
	db := database.NewDatabase(pool)
	defer db.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool, migrations.FS); err != nil {
			return fmt.Errorf("migrate database: %v", err)
		}
	}

	repo := repository.New(db)

	var completer assist.Completer
	if cfg.Gemini.APIKey != "" {
		client, err := gemini.New(gemini.NewOptions(
			cfg.Gemini.APIKey,
			gemini.WithBaseURL(cfg.Gemini.BaseURL),
			gemini.WithModel(cfg.Gemini.Model),
			gemini.WithAttempts(cfg.Gemini.Attempts),
		))
		if err != nil {
			return fmt.Errorf("init gemini client: %v", err)
		}
		completer = client
	} else {
		slogx.Warn(ctx, "gemini api key is not set, text assistant disabled")
	}

	sessions := api.NewSessions(func(s entity.Session, n *api.Alerts) (*notesuc.Usecase, error) {
		return notesuc.New(notesuc.NewOptions(
			repo,
			s,
			notesuc.WithNotifier(n),
			notesuc.WithDebounce(cfg.Engine.Debounce),
			notesuc.WithStoreTimeout(cfg.Engine.StoreTimeout),
		))
	}, completer)

	srv, err := gwserver.New(gwserver.NewOptions(
		cfg.HTTP.Addr,
		api.NewRouter(sessions),
		gwserver.WithLogger(slogx.Default()),
	))
	if err != nil {
		return fmt.Errorf("init http server: %v", err)
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error { return srv.Run(ctx) })

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("wait app stop: %v", err)
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer flushCancel()

	if err := sessions.Flush(flushCtx); err != nil {
		return fmt.Errorf("flush pending notes: %v", err)
	}

	return nil
}
