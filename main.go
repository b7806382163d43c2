package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "travelcheckout/internal/config"
	router "travelcheckout/internal/http"
	relay "travelcheckout/internal/signal"
	"travelcheckout/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// production logger until the env says otherwise, so config errors are printed
	if _, err := utils.InitLogger(false); err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		utils.Logger().Error("server exited", zap.Error(err))
		_ = utils.Logger().Sync()
		stop()
		os.Exit(1)
	}
	_ = utils.Logger().Sync()
}

func run(ctx context.Context) error {
	env, err := intconfig.LoadEnv()
	if err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	if env.Development {
		if _, err := utils.InitLogger(true); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	if _, err := intconfig.ConnectDB(env); err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer intconfig.CloseDB()

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           router.NewRouter(env, relay.NewRelay()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		utils.Logger().Info("server listening", zap.String("addr", env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	utils.Logger().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	utils.Logger().Info("server stopped")
	return nil
}
