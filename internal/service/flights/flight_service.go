package flights

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/repository"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, query SearchQuery) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	ReserveSeats(ctx context.Context, flightID int64, count int) error
	ReleaseSeats(ctx context.Context, flightID int64, count int) error
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

// SearchQuery filters the catalog. Zero fields match everything; Date
// matches the departure day in UTC.
type SearchQuery struct {
	From       string
	To         string
	Date       time.Time
	Passengers int
}

type FlightService struct {
	repo     repository.FlightRepository
	cache    FlightCache
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewFlightService(repo repository.FlightRepository, cache FlightCache, cacheTTL time.Duration, log *zap.Logger) *FlightService {
	return &FlightService{repo: repo, cache: cache, cacheTTL: cacheTTL, log: log}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.Warn("flights cache read failed", zap.Error(err))
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.Warn("flights cache write failed", zap.Error(err))
		}
	}
	return flights, nil
}

func (s *FlightService) Search(ctx context.Context, query SearchQuery) ([]domain.Flight, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.Flight, 0)
	for _, f := range all {
		if query.From != "" && !strings.EqualFold(f.FromAirport, query.From) {
			continue
		}
		if query.To != "" && !strings.EqualFold(f.ToAirport, query.To) {
			continue
		}
		if !query.Date.IsZero() && !sameDay(f.DepartureTime, query.Date) {
			continue
		}
		if query.Passengers > 0 && f.AvailableSeats < query.Passengers {
			continue
		}
		matched = append(matched, f)
	}
	return matched, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) ReserveSeats(ctx context.Context, flightID int64, count int) error {
	if err := s.repo.ReserveSeats(ctx, flightID, count); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) ReleaseSeats(ctx context.Context, flightID int64, count int) error {
	if err := s.repo.ReleaseSeats(ctx, flightID, count); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warn("flights cache invalidation failed", zap.Error(err))
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

var _ FlightUseCase = (*FlightService)(nil)
