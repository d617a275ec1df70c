package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/levenlabs/go-lflag"
	"github.com/levenlabs/go-llog"

	"github.com/gmcavallazzi/opthome/pkg/controller"
	"github.com/gmcavallazzi/opthome/pkg/log"
	"github.com/gmcavallazzi/opthome/pkg/optimizer"
	"github.com/gmcavallazzi/opthome/pkg/server"
	"github.com/gmcavallazzi/opthome/pkg/storage"
	"github.com/gmcavallazzi/opthome/pkg/tariff"
)

func main() {
	// init packages
	db := storage.Configured()
	opt := optimizer.Configured()
	tp := tariff.Configured()
	ctrl := controller.Configured(db, opt, tp)
	srv := server.Configured(ctrl, db)

	// parse flags
	lflag.Configure()

	var level slog.Level
	// lflag automatically sets llog's level, but we need to set the slog level
	switch llog.GetLevel() {
	case llog.DebugLevel:
		level = slog.LevelDebug
	case llog.InfoLevel:
		level = slog.LevelInfo
	case llog.WarnLevel:
		level = slog.LevelWarn
	case llog.ErrorLevel:
		level = slog.LevelError
	default:
		panic(fmt.Errorf("unknown log level: %s", llog.GetLevel().String()))
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	slog.Debug("logger configured", slog.String("level", level.String()))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer func() {
		if err := db.Close(); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to close storage", "error", err)
		}
	}()

	if err := ctrl.Load(ctx); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to load state", "error", err)
		os.Exit(1)
	}

	go ctrl.RunAutosave(ctx, ctrl.AutosaveInterval())

	// Run blocks until the context is canceled or an error happens
	if err := srv.Run(ctx); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "server failed", "error", err)
		os.Exit(1)
	}
	log.Ctx(ctx).InfoContext(ctx, "server exited cleanly")
}
