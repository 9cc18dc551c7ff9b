package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go-adminstats/internal/boot"

	"go.uber.org/zap"
)

const fallbackConfig = "configs/config.example.yaml"

// resolveConfigPath CONFIG_PATH 优先，不存在时回退到示例配置
func resolveConfigPath() string {
	p := os.Getenv("CONFIG_PATH")
	if p == "" {
		p = "configs/config.yaml"
	}
	if _, err := os.Stat(p); err != nil {
		if _, err2 := os.Stat(fallbackConfig); err2 != nil {
			log.Fatalf("config file not found: %s (fallback %s also missing)", p, fallbackConfig)
		}
		log.Printf("config %s not found, fallback to %s", p, fallbackConfig)
		p = fallbackConfig
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return p
}

func main() {
	cfgPath := resolveConfigPath()
	app, err := boot.InitApp(cfgPath)
	if err != nil {
		log.Fatalf("init app: %v", err)
	}

	srv := &http.Server{
		Addr:              app.Config.HTTP.Addr,
		Handler:           app.HTTP,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("http_server_start",
			zap.String("addr", app.Config.HTTP.Addr),
			zap.String("config", cfgPath),
			zap.String("storage", app.Config.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		app.Logger.Info("shutting_down")
	case err := <-errCh:
		app.Logger.Error("http_server_error", zap.Error(err))
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Warn("http_shutdown_error", zap.Error(err))
	}
	app.Close()
}
