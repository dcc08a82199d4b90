package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ReserveSeats(ctx context.Context, flightID int64, count int) error {
	args := m.Called(ctx, flightID, count)
	return args.Error(0)
}

func (m *MockFlightRepository) ReleaseSeats(ctx context.Context, flightID int64, count int) error {
	args := m.Called(ctx, flightID, count)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var day = time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

func catalog() []domain.Flight {
	return []domain.Flight{
		{ID: 4, Carrier: "SU", FromAirport: "SVO", ToAirport: "LED", DepartureTime: day.Add(9 * time.Hour), AvailableSeats: 149, PriceCents: 500000, Currency: "RUB"},
		{ID: 5, Carrier: "SU", FromAirport: "SVO", ToAirport: "LED", DepartureTime: day.Add(33 * time.Hour), AvailableSeats: 2, PriceCents: 450000, Currency: "RUB"},
		{ID: 6, Carrier: "U6", FromAirport: "SVX", ToAirport: "SVO", DepartureTime: day.Add(10 * time.Hour), AvailableSeats: 80, PriceCents: 700000, Currency: "RUB"},
	}
}

func TestFlightService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache, time.Minute, zap.NewNop())
	ctx := context.Background()
	flights := catalog()

	mockCache.On("GetFlights", ctx).Return(([]domain.Flight)(nil), nil).Once()
	mockRepo.On("List", ctx).Return(flights, nil).Once()
	mockCache.On("SetFlights", ctx, flights).Return(nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_List_CacheHit(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache, time.Minute, zap.NewNop())
	ctx := context.Background()
	flights := catalog()

	mockCache.On("GetFlights", ctx).Return(flights, nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockRepo.AssertNotCalled(t, "List")
	mockCache.AssertNotCalled(t, "SetFlights")
}

func TestFlightService_List_CacheError(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache, time.Minute, zap.NewNop())
	ctx := context.Background()
	flights := catalog()

	mockCache.On("GetFlights", ctx).Return(([]domain.Flight)(nil), errors.New("cache error")).Once()
	mockRepo.On("List", ctx).Return(flights, nil).Once()
	mockCache.On("SetFlights", ctx, flights).Return(nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_List_RepositoryError(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache, time.Minute, zap.NewNop())
	ctx := context.Background()

	expectedErr := errors.New("database error")
	mockCache.On("GetFlights", ctx).Return(([]domain.Flight)(nil), nil).Once()
	mockRepo.On("List", ctx).Return([]domain.Flight{}, expectedErr).Once()

	result, err := service.List(ctx)

	assert.Nil(t, result)
	assert.Equal(t, expectedErr, err)
	mockCache.AssertNotCalled(t, "SetFlights")
}

func TestFlightService_Search(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil, time.Minute, zap.NewNop())
	ctx := context.Background()
	mockRepo.On("List", ctx).Return(catalog(), nil)

	testCases := []struct {
		name  string
		query SearchQuery
		ids   []int64
	}{
		{name: "all", query: SearchQuery{}, ids: []int64{4, 5, 6}},
		{name: "route, case insensitive", query: SearchQuery{From: "svo", To: "led"}, ids: []int64{4, 5}},
		{name: "route and day", query: SearchQuery{From: "SVO", To: "LED", Date: day.Add(20 * time.Hour)}, ids: []int64{4}},
		{name: "capacity", query: SearchQuery{From: "SVO", Passengers: 3}, ids: []int64{4}},
		{name: "nothing", query: SearchQuery{To: "KZN"}, ids: []int64{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := service.Search(ctx, tc.query)
			assert.NoError(t, err)
			ids := make([]int64, 0, len(result))
			for _, f := range result {
				ids = append(ids, f.ID)
			}
			assert.Equal(t, tc.ids, ids)
		})
	}
}

func TestFlightService_GetByID(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil, time.Minute, zap.NewNop())
	ctx := context.Background()
	flight := &catalog()[0]

	mockRepo.On("GetByID", ctx, int64(4)).Return(flight, nil).Once()
	mockRepo.On("GetByID", ctx, int64(999)).Return(nil, errors.New("flight not found")).Once()

	result, err := service.GetByID(ctx, 4)
	assert.NoError(t, err)
	assert.Equal(t, flight, result)

	result, err = service.GetByID(ctx, 999)
	assert.Nil(t, result)
	assert.EqualError(t, err, "flight not found")
}

func TestFlightService_ReserveSeats_InvalidatesCache(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache, time.Minute, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("ReserveSeats", ctx, int64(4), 2).Return(nil).Once()
	mockRepo.On("ReleaseSeats", ctx, int64(4), 2).Return(nil).Once()
	mockCache.On("InvalidateFlights", ctx).Return(errors.New("redis down")).Twice()

	assert.NoError(t, service.ReserveSeats(ctx, 4, 2))
	assert.NoError(t, service.ReleaseSeats(ctx, 4, 2))
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestFlightService_ReserveSeats_RepositoryError(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache, time.Minute, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("ReserveSeats", ctx, int64(4), 9).Return(errors.New("no available seats")).Once()

	assert.Error(t, service.ReserveSeats(ctx, 4, 9))
	mockCache.AssertNotCalled(t, "InvalidateFlights", mock.Anything)
}
