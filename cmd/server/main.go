package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/precisionx/cakto-bridge/core"
	"github.com/precisionx/cakto-bridge/identity"
	"github.com/precisionx/cakto-bridge/mailer"
	"github.com/precisionx/cakto-bridge/server"
	"github.com/precisionx/cakto-bridge/webhook"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loggers, logger := glog.Resolve("cakto-bridge", nil, nil)
	logger = glog.Ensure(logger)

	var configSource core.ConfigProvider = core.NewCfgxConfigProvider(core.EnvRawConfigLoader{})
	var configMerger core.OptionsResolver = core.GoOptionsResolver{}

	defaults := core.DefaultConfig()
	loaded, err := configSource.Load(ctx, defaults)
	if err != nil {
		logger.Fatal("configuration load failed", "error", err.Error())
		return
	}
	cfg, err := configMerger.Resolve(defaults, loaded, core.Config{})
	if err != nil {
		logger.Fatal("configuration resolve failed", "error", err.Error())
		return
	}

	accounts, err := identity.NewFirebaseStore(ctx, cfg.Identity.CredentialsJSON)
	if err != nil {
		logger.Fatal("firebase auth initialization failed", "error", err.Error())
		return
	}
	sender, err := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
	})
	if err != nil {
		logger.Fatal("smtp client initialization failed", "error", err.Error())
		return
	}

	resolver := identity.NewResolver(identity.Config{
		Store:  accounts,
		Logger: core.ComponentLogger(loggers, "identity", logger),
	})
	processor := webhook.NewProcessor(
		webhook.SecretVerifier{Secret: cfg.Webhook.Secret},
		resolver,
		sender,
	)
	processor.Composer = mailer.WelcomeComposer{
		FromAddress: cfg.Mail.Username,
		FromName:    cfg.Mail.FromName,
		LoginURL:    cfg.Mail.LoginURL,
	}
	processor.Logger = core.ComponentLogger(loggers, "webhook", logger)
	processor.CallTimeout = time.Duration(cfg.Upstream.CallTimeoutSeconds) * time.Second

	mux := http.NewServeMux()
	mux.Handle("/", server.NewHandler(processor, core.ComponentLogger(loggers, "server", logger)))

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSeconds) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()
	logger.Info("webhook receiver listening", "addr", cfg.HTTP.Addr, "service", cfg.ServiceName)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.HTTP.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err.Error())
			return
		}
		logger.Info("server stopped")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err.Error())
		}
	}
}
