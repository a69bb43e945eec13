package main

import (
	"fmt"

	"github.com/mrmailer/mrmailer/internal/cache"
	"github.com/mrmailer/mrmailer/internal/config"
	"github.com/mrmailer/mrmailer/internal/database"
	"github.com/mrmailer/mrmailer/internal/email"
	"github.com/mrmailer/mrmailer/internal/generator"
	"github.com/mrmailer/mrmailer/internal/handler"
	"github.com/mrmailer/mrmailer/internal/logger"
	"github.com/mrmailer/mrmailer/internal/repository"
	"github.com/mrmailer/mrmailer/internal/service"
)

// app is the wired pipeline shared by every command
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	store  repository.RecordStore
	rdb    *database.Redis
	mailer *service.MailerService
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	store, err := repository.New(cfg)
	if err != nil {
		return nil, err
	}

	var (
		rdb      *database.Redis
		receipts cache.ReceiptCache
	)
	if cfg.Redis.Enabled {
		rdb, err = database.NewRedis(cfg.Redis)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		receipts = cache.NewRedisReceiptCache(rdb.Client, cfg.Redis.ReceiptTTL)
		log.Info().Str("addr", cfg.Redis.Addr()).Msg("connected to Redis")
	}

	gen := generator.New(generator.NewOpenRouterCompleter(cfg.LLM), cfg.LLM, cfg.Profile, log)
	primary, fallback := email.NewTransports(cfg.SMTP)
	dispatcher := email.NewDispatcher(primary, fallback, cfg.Profile, log)

	mailer := service.NewMailerService(gen, dispatcher, store, receipts, log)

	channel := cfg.Chat.ChannelID
	if channel == "" {
		channel = "all channels"
	}
	log.Info().
		Str("model", cfg.LLM.Model).
		Str("smtp_host", cfg.SMTP.Host).
		Bool("smtp_fallback", fallback != nil).
		Bool("attach_resume", cfg.Profile.AttachResume).
		Str("store", cfg.Store.Backend).
		Bool("receipts", cfg.Redis.Enabled).
		Str("channel", channel).
		Msg("configuration loaded")

	return &app{cfg: cfg, log: log, store: store, rdb: rdb, mailer: mailer}, nil
}

func (a *app) healthChecks() map[string]handler.HealthChecker {
	checks := map[string]handler.HealthChecker{a.cfg.Store.Backend: a.store}
	if a.rdb != nil {
		checks["redis"] = a.rdb
	}
	return checks
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error().Err(err).Msg("failed to close record store")
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Error().Err(err).Msg("failed to close Redis")
		}
	}
}
