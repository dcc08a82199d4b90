package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/bootstrap"
	"github.com/Domenick1991/skybooking/internal/email"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/logger"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, err := bootstrap.NewServices(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("init services", zap.Error(err))
	}
	defer services.Close()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, zl)
	defer consumer.Close()

	emailSender := email.NewSender(zl)

	go func() {
		if err := consumer.Consume(ctx, emailSender.Send); err != nil {
			zl.Error("consumer stopped", zap.Error(err))
		}
	}()

	expireTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer expireTicker.Stop()

	for {
		select {
		case <-expireTicker.C:
			expired, err := services.Bookings.ExpireAbandonedSessions(ctx)
			if err != nil {
				zl.Error("expire sessions", zap.Error(err))
				continue
			}
			if len(expired) > 0 {
				zl.Info("expired abandoned sessions", zap.Int("count", len(expired)))
			}
		case <-ctx.Done():
			zl.Info("shutting down worker")
			return
		}
	}
}
