package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

//	@title			VidMerge Bot API
//	@version		1.0
//	@description	Read-only API over merge sessions and merge history
//	@BasePath		/api/v1
func main() {
	app, err := SetupApp()
	if err != nil {
		log.Fatalf("setup failed: %v", err)
	}

	if err := os.MkdirAll(app.Config.Merge.DownloadDir, 0o755); err != nil {
		log.Fatalf("could not create download dir: %v", err)
	}

	r := BuildRouter(app)

	go func() {
		app.Logger.Info("http server listening", "addr", app.Config.HTTPAddr)
		if err := app.Run(r); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("http server failed", "err", err.Error())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		app.Logger.Error("bot stopped", "err", err.Error())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("shutdown failed", "err", err.Error())
	}
}
