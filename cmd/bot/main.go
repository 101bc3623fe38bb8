package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/semaphore"

	"professional-persona-ai/internal/app"
	"professional-persona-ai/internal/config"
	"professional-persona-ai/internal/handlers"
	"professional-persona-ai/internal/httpclient"
	"professional-persona-ai/internal/mediagroup"
	"professional-persona-ai/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadBot()
	if err != nil {
		panic(err)
	}

	logger := config.NewLogger(cfg)

	// Long polling holds a request open, so Telegram gets its own client.
	tgHTTP := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	tg, err := telegram.New(telegram.Options{
		Token:            cfg.TelegramToken,
		HTTPClient:       tgHTTP,
		Logger:           logger,
		Debug:            cfg.Debug,
		MaxDownloadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

	svc := app.NewStudio(cfg, logger)

	handler := handlers.New(handlers.Options{
		Telegram: tg,
		Studio:   svc,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sem := semaphore.NewWeighted(int64(cfg.MaxConcurrent))

	albums := mediagroup.New(mediagroup.Options{
		OnFlush: func(album mediagroup.Album) {
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
			defer cancel()

			if err := handler.HandleAlbum(reqCtx, album); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("handle album failed", "chat_id", album.ChatID, "err", err)
			}
		},
	})
	defer albums.Stop()
	handler.SetAlbumCollector(albums)

	pruner := time.NewTicker(time.Minute)
	defer pruner.Stop()

	logger.Info("bot started", "username", tg.Username(), "max_concurrent", cfg.MaxConcurrent)

	updates := tg.Updates(telegram.UpdatesOptions{
		Timeout: 30 * time.Second,
	})
	defer tg.StopUpdates()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case <-pruner.C:
			if n := svc.Sessions().Prune(cfg.SessionTTL); n > 0 {
				logger.Info("sessions pruned", "count", n)
			}
		case update, ok := <-updates:
			if !ok {
				logger.Info("updates channel closed")
				return
			}

			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}

			go func(update telegram.Update) {
				defer sem.Release(1)

				reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
				defer cancel()

				if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("handle update failed", "update_id", update.UpdateID, "err", err)
				}
			}(update)
		}
	}
}
