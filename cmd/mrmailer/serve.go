package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrmailer/mrmailer/internal/handler"
	"github.com/mrmailer/mrmailer/internal/middleware"
	"github.com/mrmailer/mrmailer/internal/router"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard and command HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	log := a.log
	log.Info().Str("version", handler.Version).Msg("starting mrmailer server")

	h := handler.New(a.mailer, a.healthChecks(), log)
	r := router.New(h, middleware.New(log))

	addr := a.cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		a.Close()
		return err
	}

	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = srv.Shutdown(ctx)
	a.Close()
	if err != nil {
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}
