package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/cache"
	"github.com/Domenick1991/skybooking/internal/document"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/payment"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/Domenick1991/skybooking/internal/service/flights"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Services holds the wired use cases plus everything that must be closed on exit.
type Services struct {
	Flights  *flights.FlightService
	Bookings *booking.BookingService

	pool     *pgxpool.Pool
	producer *kafka.Producer
}

func (s *Services) Close() {
	if err := s.producer.Close(); err != nil {
		zap.L().Warn("close kafka producer", zap.Error(err))
	}
	s.pool.Close()
}

// NewServices connects to postgres, redis and kafka and builds the flight
// and booking use cases from cfg.
func NewServices(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Services, error) {
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sessions, err := newSessionRepository(cfg.Storage, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	cacheTTL := time.Duration(cfg.Booking.FlightsCacheTTL) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, cacheTTL)
	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := producer.CheckConnection(checkCtx); err != nil {
		log.Warn("kafka is not reachable, session events may be lost", zap.Error(err))
	}

	flightService := flights.NewFlightService(repository.NewFlightRepository(pool), redisCache, cacheTTL, log)
	bookingService := booking.NewBookingService(
		sessions,
		flightService,
		redisCache,
		kafka.Retrying{Producer: producer, Attempts: 2},
		newPaymentGateway(cfg.Payment),
		document.NewPDFRenderer(cfg.Booking.ReceiptIssuer),
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
		time.Duration(cfg.Booking.SessionTTLMinutes)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithLogger(log),
	)

	return &Services{
		Flights:  flightService,
		Bookings: bookingService,
		pool:     pool,
		producer: producer,
	}, nil
}

func newSessionRepository(cfg config.StorageConfig, pool *pgxpool.Pool) (repository.SessionRepository, error) {
	if cfg.Driver != config.StorageDriverSQLite {
		return repository.NewSessionRepository(pool), nil
	}
	db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
	}
	repo, err := repository.NewGormSessionRepository(db)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func newPaymentGateway(cfg config.PaymentConfig) payment.Gateway {
	if cfg.Provider == config.PaymentProviderStripe {
		return payment.NewStripeGateway(cfg.StripeSecretKey)
	}
	return payment.NewSimulatedGateway()
}
