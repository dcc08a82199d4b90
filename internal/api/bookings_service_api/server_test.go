package bookings_service_api

import (
	"context"
	"net"
	"testing"

	"github.com/Domenick1991/skybooking/internal/document"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/Domenick1991/skybooking/internal/session"
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

type MockBookingUseCase struct {
	mock.Mock
}

func sessionResult(args mock.Arguments) (*domain.Session, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockBookingUseCase) StartSession(ctx context.Context, flightID int64) (*domain.Session, error) {
	return sessionResult(m.Called(ctx, flightID))
}

func (m *MockBookingUseCase) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	return sessionResult(m.Called(ctx, token))
}

func (m *MockBookingUseCase) SetPassengers(ctx context.Context, token string, passengers []domain.Passenger) (*domain.Session, error) {
	return sessionResult(m.Called(ctx, token, passengers))
}

func (m *MockBookingUseCase) SelectSeat(ctx context.Context, token string, input booking.SelectSeatInput) (*domain.Session, error) {
	return sessionResult(m.Called(ctx, token, input))
}

func (m *MockBookingUseCase) RemoveSeat(ctx context.Context, token string, passengerIndex int) (*domain.Session, error) {
	return sessionResult(m.Called(ctx, token, passengerIndex))
}

func (m *MockBookingUseCase) AddBaggage(ctx context.Context, token string, passengerIndex int, option domain.BaggageOption) (*domain.Session, error) {
	return sessionResult(m.Called(ctx, token, passengerIndex, option))
}

func (m *MockBookingUseCase) RemoveBaggage(ctx context.Context, token string, passengerIndex int, baggageType string) (*domain.Session, error) {
	return sessionResult(m.Called(ctx, token, passengerIndex, baggageType))
}

func (m *MockBookingUseCase) SetInsurance(ctx context.Context, token string, insurance *domain.Insurance) (*domain.Session, error) {
	return sessionResult(m.Called(ctx, token, insurance))
}

func (m *MockBookingUseCase) SetContact(ctx context.Context, token string, input booking.ContactInput) (*domain.Session, error) {
	return sessionResult(m.Called(ctx, token, input))
}

func (m *MockBookingUseCase) Checkout(ctx context.Context, token string, instrument string) (*domain.Session, error) {
	return sessionResult(m.Called(ctx, token, instrument))
}

func (m *MockBookingUseCase) CancelSession(ctx context.Context, token string, reason string) (*domain.Session, error) {
	return sessionResult(m.Called(ctx, token, reason))
}

func (m *MockBookingUseCase) RenderDocument(ctx context.Context, token string) (*document.Artifact, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Artifact), args.Error(1)
}

func (m *MockBookingUseCase) ExpireAbandonedSessions(ctx context.Context) ([]domain.Session, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Session), args.Error(1)
}

func dial(t *testing.T, srv BookingsServiceServer) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterBookingsServiceServer(s, srv)
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

func testSession(status domain.SessionStatus) *domain.Session {
	return &domain.Session{
		Token:         "token123",
		Flight:        &domain.FlightRef{ID: 4, FareCents: 10000, Currency: "RUB"},
		Passengers:    []domain.Passenger{},
		SelectedSeats: []domain.SeatSelection{},
		Baggage:       []domain.BaggageSelection{},
		TotalCents:    10000,
		Currency:      "RUB",
		Status:        status,
		PaymentStatus: domain.PaymentStatusUnpaid,
	}
}

func TestServer_StartSession(t *testing.T) {
	mockService := &MockBookingUseCase{}
	mockService.On("StartSession", mock.Anything, int64(4)).Return(testSession(domain.SessionStatusDraft), nil)
	client := dial(t, NewServer(mockService))

	in, _ := structpb.NewStruct(map[string]interface{}{"flight_id": 4})
	resp, err := client.StartSession(context.Background(), in)

	require.NoError(t, err)
	fields := resp.GetFields()
	assert.Equal(t, "token123", fields["token"].GetStringValue())
	assert.Equal(t, "draft", fields["status"].GetStringValue())
	assert.Equal(t, float64(10000), fields["total_cents"].GetNumberValue())
	assert.NotNil(t, fields["passengers"].GetListValue())
}

func TestServer_StartSession_MissingFlight(t *testing.T) {
	client := dial(t, NewServer(&MockBookingUseCase{}))

	_, err := client.StartSession(context.Background(), &structpb.Struct{})

	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_GetSession_NotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	mockService.On("GetSession", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
	client := dial(t, NewServer(mockService))

	in, _ := structpb.NewStruct(map[string]interface{}{"token": "missing"})
	_, err := client.GetSession(context.Background(), in)

	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_CancelSession(t *testing.T) {
	mockService := &MockBookingUseCase{}
	mockService.On("CancelSession", mock.Anything, "token123", "sick").Return(testSession(domain.SessionStatusCancelled), nil)
	server := NewServer(mockService)

	in, _ := structpb.NewStruct(map[string]interface{}{"token": "token123", "reason": "sick"})
	resp, err := server.CancelSession(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.GetFields()["status"].GetStringValue())
	mockService.AssertExpectations(t)
}

func TestServer_RenderDocument(t *testing.T) {
	mockService := &MockBookingUseCase{}
	artifact := &document.Artifact{ContentType: "application/pdf", Filename: "booking.pdf", Data: []byte("%PDF-1.3")}
	mockService.On("RenderDocument", mock.Anything, "token123").Return(artifact, nil)
	mockService.On("RenderDocument", mock.Anything, "draft").Return(nil, session.ErrNotFinalized)
	client := dial(t, NewServer(mockService))

	in, _ := structpb.NewStruct(map[string]interface{}{"token": "token123"})
	body, err := client.RenderDocument(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", body.GetContentType())
	assert.Equal(t, []byte("%PDF-1.3"), body.GetData())

	in, _ = structpb.NewStruct(map[string]interface{}{"token": "draft"})
	_, err = client.RenderDocument(context.Background(), in)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}
