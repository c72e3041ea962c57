package app

import (
	"context"
	"net"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spiritus-lectoris/catalog-service/catalog/config"
	"github.com/spiritus-lectoris/catalog-service/catalog/internal/handler"
	"github.com/spiritus-lectoris/catalog-service/catalog/internal/repository"
	"github.com/spiritus-lectoris/catalog-service/catalog/internal/server"
	"github.com/spiritus-lectoris/catalog-service/catalog/internal/service"
	"github.com/spiritus-lectoris/catalog-service/catalog/internal/service/auth"
	"github.com/spiritus-lectoris/catalog-service/catalog/migrations"
	"github.com/spiritus-lectoris/catalog-service/pkg/logger"
	"github.com/spiritus-lectoris/catalog-service/pkg/postgres"
)

const sessionPruneInterval = 15 * time.Minute

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "catalog")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}

	bookRepo := repository.NewBookRepository(db, log)
	userRepo := repository.NewUserRepository(db, log)
	sessionRepo := repository.NewSessionRepository(db, log)

	authSvc := auth.NewService(userRepo, sessionRepo, cfg.Auth.SessionTTL, log)
	if err := authSvc.Seed(ctx, cfg.Auth.AdminPassword); err != nil {
		log.Fatal("seed admin", zap.Error(err))
	}
	svc := service.NewService(bookRepo, log)

	h := handler.New(svc, authSvc, handler.Config{
		SecureCookie: cfg.Auth.SecureCookie,
		SessionTTL:   cfg.Auth.SessionTTL,
	}, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run()
	})
	g.Go(func() error {
		t := time.NewTicker(sessionPruneInterval)
		defer t.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-t.C:
				authSvc.PruneSessions(gCtx)
			}
		}
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Debug("Graceful shutdown")

		closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
		defer closeCancel()
		return srv.Stop(closeCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("run", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
