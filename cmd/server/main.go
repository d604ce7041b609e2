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

	"go.uber.org/zap"

	"github.com/banbrick/collector/internal/audit"
	"github.com/banbrick/collector/internal/auth"
	"github.com/banbrick/collector/internal/coerce"
	"github.com/banbrick/collector/internal/config"
	"github.com/banbrick/collector/internal/handler"
	"github.com/banbrick/collector/internal/migration"
	models "github.com/banbrick/collector/internal/model"
	"github.com/banbrick/collector/internal/repository"
	"github.com/banbrick/collector/internal/service"
	"github.com/banbrick/collector/internal/validation"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.NewServerConfig()
	if err != nil {
		return err
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	rules := validation.NewRules(validation.SafetyString())
	fixer := coerce.NewFixer(logger)
	ctx := context.Background()

	var storage repository.Repository
	if cfg.DatabaseDSN != "" {
		if err := migration.RunMigrations(ctx, cfg.DatabaseDSN, cfg.MigrationsPath, logger); err != nil {
			return err
		}
		storage, err = repository.NewDBStorage(cfg.DatabaseDSN, rules)
		if err != nil {
			return err
		}
	} else {
		memStorage := repository.NewMemStorage(rules)
		if cfg.FixtureFile != "" {
			if _, err := repository.LoadFixtures(ctx, memStorage, cfg.FixtureFile, fixer, logger); err != nil {
				return err
			}
		}
		storage = memStorage
	}
	defer storage.Close()

	authenticator, err := auth.NewKeyFile(cfg.KeyFile)
	if err != nil {
		return err
	}

	var auditLogger audit.AuditLogger
	if cfg.AuditFile != "" || cfg.AuditURL != "" {
		eventChan := make(chan models.AuditEvent, 100)
		var subs []chan<- models.AuditEvent
		if cfg.AuditFile != "" {
			fileChan := make(chan models.AuditEvent, 100)
			subs = append(subs, fileChan)
			go audit.FileSubscriber(fileChan, cfg.AuditFile, logger)
		}
		if cfg.AuditURL != "" {
			urlChan := make(chan models.AuditEvent, 100)
			subs = append(subs, urlChan)
			go audit.URLSubscriber(urlChan, cfg.AuditURL, logger)
		}
		go audit.Broadcaster(eventChan, logger, subs...)
		auditLogger = audit.NewAuditLogger(eventChan, logger)
	}

	collector := service.NewCollectorService(storage, authenticator, fixer, auditLogger, logger)

	server := &http.Server{
		Addr:    cfg.Address,
		Handler: handler.Router(logger, collector),
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("collector listening on %s", cfg.Address)
		errChan <- server.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-sigChan:
		logger.Infof("received signal %v, shutting down", sig)
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}
