package flights_service_api

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service/flights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Search(ctx context.Context, query flights.SearchQuery) ([]domain.Flight, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) ReserveSeats(ctx context.Context, flightID int64, count int) error {
	return m.Called(ctx, flightID, count).Error(0)
}

func (m *MockFlightUseCase) ReleaseSeats(ctx context.Context, flightID int64, count int) error {
	return m.Called(ctx, flightID, count).Error(0)
}

func testFlight() domain.Flight {
	return domain.Flight{
		ID:             4,
		Carrier:        "SU",
		FlightNumber:   "SU100",
		FromAirport:    "SVO",
		ToAirport:      "LED",
		DepartureTime:  time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC),
		ArrivalTime:    time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC),
		TotalSeats:     150,
		AvailableSeats: 149,
		PriceCents:     10000,
		Currency:       "RUB",
	}
}

// dial serves srv on an in-memory listener and returns a client for it.
func dial(t *testing.T, srv FlightsServiceServer) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterFlightsServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func TestServer_ListFlights(t *testing.T) {
	mockService := &MockFlightUseCase{}
	mockService.On("List", mock.Anything).Return([]domain.Flight{testFlight()}, nil)
	client := dial(t, NewServer(mockService))

	resp, err := client.ListFlights(context.Background(), &structpb.Struct{})

	require.NoError(t, err)
	list := resp.GetFields()["flights"].GetListValue().GetValues()
	require.Len(t, list, 1)
	flight := list[0].GetStructValue().GetFields()
	assert.Equal(t, float64(4), flight["id"].GetNumberValue())
	assert.Equal(t, "SU100", flight["flight_number"].GetStringValue())
	assert.Equal(t, "2026-03-04T09:00:00Z", flight["departure_time"].GetStringValue())
	mockService.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestServer_ListFlights_Search(t *testing.T) {
	mockService := &MockFlightUseCase{}
	query := flights.SearchQuery{From: "SVO", Passengers: 2, Date: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)}
	mockService.On("Search", mock.Anything, query).Return([]domain.Flight{}, nil)
	server := NewServer(mockService)

	in, err := structpb.NewStruct(map[string]interface{}{"from": "SVO", "date": "2026-03-04", "passengers": 2})
	require.NoError(t, err)

	resp, err := server.ListFlights(context.Background(), in)

	require.NoError(t, err)
	assert.Empty(t, resp.GetFields()["flights"].GetListValue().GetValues())
	mockService.AssertExpectations(t)
}

func TestServer_ListFlights_BadDate(t *testing.T) {
	server := NewServer(&MockFlightUseCase{})
	in, _ := structpb.NewStruct(map[string]interface{}{"date": "tomorrow"})

	_, err := server.ListFlights(context.Background(), in)

	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_GetFlight(t *testing.T) {
	mockService := &MockFlightUseCase{}
	flight := testFlight()
	mockService.On("GetByID", mock.Anything, int64(4)).Return(&flight, nil)
	client := dial(t, NewServer(mockService))

	in, _ := structpb.NewStruct(map[string]interface{}{"id": 4})
	resp, err := client.GetFlight(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, "RUB", resp.GetFields()["currency"].GetStringValue())
	assert.Equal(t, float64(10000), resp.GetFields()["price_cents"].GetNumberValue())
}

func TestServer_GetFlight_Errors(t *testing.T) {
	mockService := &MockFlightUseCase{}
	mockService.On("GetByID", mock.Anything, int64(42)).Return(nil, repository.ErrNotFound)
	client := dial(t, NewServer(mockService))

	_, err := client.GetFlight(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	in, _ := structpb.NewStruct(map[string]interface{}{"id": 42})
	_, err = client.GetFlight(context.Background(), in)
	assert.Equal(t, codes.NotFound, status.Code(err))
}
