package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/internal/document"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/payment"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	StartSession(ctx context.Context, flightID int64) (*domain.Session, error)
	GetSession(ctx context.Context, token string) (*domain.Session, error)
	SetPassengers(ctx context.Context, token string, passengers []domain.Passenger) (*domain.Session, error)
	SelectSeat(ctx context.Context, token string, input SelectSeatInput) (*domain.Session, error)
	RemoveSeat(ctx context.Context, token string, passengerIndex int) (*domain.Session, error)
	AddBaggage(ctx context.Context, token string, passengerIndex int, option domain.BaggageOption) (*domain.Session, error)
	RemoveBaggage(ctx context.Context, token string, passengerIndex int, baggageType string) (*domain.Session, error)
	SetInsurance(ctx context.Context, token string, insurance *domain.Insurance) (*domain.Session, error)
	SetContact(ctx context.Context, token string, input ContactInput) (*domain.Session, error)
	Checkout(ctx context.Context, token string, instrument string) (*domain.Session, error)
	CancelSession(ctx context.Context, token string, reason string) (*domain.Session, error)
	RenderDocument(ctx context.Context, token string) (*document.Artifact, error)
	ExpireAbandonedSessions(ctx context.Context) ([]domain.Session, error)
}

// FlightCatalog is the part of the flight use case a booking needs.
type FlightCatalog interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	ReserveSeats(ctx context.Context, flightID int64, count int) error
	ReleaseSeats(ctx context.Context, flightID int64, count int) error
}

// SeatHolds keeps a seat exclusive to one session across all users.
type SeatHolds interface {
	AcquireSeatHold(ctx context.Context, flightID int64, seatID, owner string, ttl time.Duration) (bool, error)
	ReleaseSeatHold(ctx context.Context, flightID int64, seatID, owner string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type SelectSeatInput struct {
	PassengerIndex int    `json:"passenger_index"`
	SeatID         string `json:"seat_id"`
	PriceCents     int64  `json:"price_cents"`
}

type ContactInput struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type BookingService struct {
	sessions           repository.SessionRepository
	flights            FlightCatalog
	holds              SeatHolds
	producer           Producer
	gateway            payment.Gateway
	renderer           document.Renderer
	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
	sessionTTL         time.Duration
	now                func() time.Time
	log                *zap.Logger
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithLogger(log *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func NewBookingService(
	sessions repository.SessionRepository,
	flights FlightCatalog,
	holds SeatHolds,
	producer Producer,
	gateway payment.Gateway,
	renderer document.Renderer,
	bookingTopic string,
	holdTTL, sessionTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		sessions:     sessions,
		flights:      flights,
		holds:        holds,
		producer:     producer,
		gateway:      gateway,
		renderer:     renderer,
		bookingTopic: bookingTopic,
		holdTTL:      holdTTL,
		sessionTTL:   sessionTTL,
		now:          time.Now,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) StartSession(ctx context.Context, flightID int64) (*domain.Session, error) {
	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if flight.AvailableSeats <= 0 {
		return nil, ErrFlightSoldOut
	}

	m := session.New(session.WithClock(s.now))
	if err := m.Start(*flight); err != nil {
		return nil, err
	}
	created := m.Session()
	created.Token = uuid.NewString()

	if err := s.sessions.Create(ctx, &created); err != nil {
		return nil, err
	}
	s.notify(ctx, kafka.EventSessionStarted, created)
	return &created, nil
}

func (s *BookingService) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	return s.sessions.GetByToken(ctx, token)
}

func (s *BookingService) SetPassengers(ctx context.Context, token string, passengers []domain.Passenger) (*domain.Session, error) {
	before, after, err := s.apply(ctx, token, func(m *session.Manager) error {
		return m.SetPassengers(passengers)
	})
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, &after); err != nil {
		return nil, err
	}
	s.releaseDroppedHolds(ctx, before, after)
	return &after, nil
}

// SelectSeat validates the selection against the session first, then takes
// the cross-session hold, and only then persists.
func (s *BookingService) SelectSeat(ctx context.Context, token string, input SelectSeatInput) (*domain.Session, error) {
	before, after, err := s.apply(ctx, token, func(m *session.Manager) error {
		return m.SelectSeat(input.PassengerIndex, input.SeatID, input.PriceCents)
	})
	if err != nil {
		return nil, err
	}

	alreadyHeld := holdsSeat(before, input.SeatID)
	if s.holds != nil && after.Flight != nil {
		ok, err := s.holds.AcquireSeatHold(ctx, after.Flight.ID, input.SeatID, token, s.holdTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire seat hold: %w", err)
		}
		if !ok {
			return nil, ErrSeatUnavailable
		}
	}

	if err := s.sessions.Update(ctx, &after); err != nil {
		if s.holds != nil && after.Flight != nil && !alreadyHeld {
			_ = s.holds.ReleaseSeatHold(ctx, after.Flight.ID, input.SeatID, token)
		}
		return nil, err
	}
	s.releaseDroppedHolds(ctx, before, after)
	return &after, nil
}

func (s *BookingService) RemoveSeat(ctx context.Context, token string, passengerIndex int) (*domain.Session, error) {
	before, after, err := s.apply(ctx, token, func(m *session.Manager) error {
		return m.RemoveSeat(passengerIndex)
	})
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, &after); err != nil {
		return nil, err
	}
	s.releaseDroppedHolds(ctx, before, after)
	return &after, nil
}

func (s *BookingService) AddBaggage(ctx context.Context, token string, passengerIndex int, option domain.BaggageOption) (*domain.Session, error) {
	return s.mutate(ctx, token, func(m *session.Manager) error {
		return m.AddBaggage(passengerIndex, option)
	})
}

func (s *BookingService) RemoveBaggage(ctx context.Context, token string, passengerIndex int, baggageType string) (*domain.Session, error) {
	return s.mutate(ctx, token, func(m *session.Manager) error {
		return m.RemoveBaggage(passengerIndex, baggageType)
	})
}

func (s *BookingService) SetInsurance(ctx context.Context, token string, insurance *domain.Insurance) (*domain.Session, error) {
	return s.mutate(ctx, token, func(m *session.Manager) error {
		return m.SetInsurance(insurance)
	})
}

func (s *BookingService) SetContact(ctx context.Context, token string, input ContactInput) (*domain.Session, error) {
	return s.mutate(ctx, token, func(m *session.Manager) error {
		return m.SetContact(input.Email, input.Phone)
	})
}

// Checkout requests payment, reserves flight capacity, charges the
// instrument and records the outcome. A declined or failed charge is not an
// error: the returned session is back in draft with payment status failed.
func (s *BookingService) Checkout(ctx context.Context, token string, instrument string) (*domain.Session, error) {
	_, pending, err := s.apply(ctx, token, func(m *session.Manager) error {
		return m.RequestPayment()
	})
	if err != nil {
		return nil, err
	}

	flightID, seats := pending.Flight.ID, len(pending.Passengers)
	if err := s.flights.ReserveSeats(ctx, flightID, seats); err != nil {
		if errors.Is(err, repository.ErrNoCapacity) {
			return nil, ErrFlightSoldOut
		}
		return nil, err
	}
	if err := s.sessions.Update(ctx, &pending); err != nil {
		s.releaseCapacity(ctx, flightID, seats)
		return nil, err
	}

	outcome, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		AmountCents:    pending.TotalCents,
		Currency:       pending.Currency,
		Instrument:     instrument,
		IdempotencyKey: fmt.Sprintf("%s:%d", token, pending.Version),
		SessionToken:   token,
	})
	if err != nil {
		s.log.Error("payment gateway error", zap.String("token", token), zap.Error(err))
		outcome = domain.PaymentOutcome{FailureReason: "gateway_error"}
	}

	m := session.Restore(pending, session.WithClock(s.now))
	if err := m.ApplyPaymentResult(outcome); err != nil {
		return nil, err
	}
	final := m.Session()
	if err := s.sessions.Update(ctx, &final); err != nil {
		// The stored session is still pending or was already moved on by a
		// cancel or expiry, which releases capacity itself. Only the charge is undone.
		if outcome.Success {
			s.refund(ctx, final)
		}
		return nil, err
	}

	if !outcome.Success {
		s.releaseCapacity(ctx, flightID, seats)
		s.notify(ctx, kafka.EventPaymentFailed, final)
		return &final, nil
	}

	s.extendHolds(ctx, final)
	s.notify(ctx, kafka.EventSessionConfirmed, final)
	return &final, nil
}

// CancelSession records the cancellation and then refunds a paid booking.
// A refund is never issued for a cancellation that was not stored.
func (s *BookingService) CancelSession(ctx context.Context, token string, reason string) (*domain.Session, error) {
	before, after, err := s.apply(ctx, token, func(m *session.Manager) error {
		return m.Cancel(reason)
	})
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, &after); err != nil {
		return nil, err
	}

	if before.PaymentStatus == domain.PaymentStatusPaid {
		s.refund(ctx, after)
	}
	s.afterTermination(ctx, before, after)
	s.notify(ctx, kafka.EventSessionCancelled, after)
	return &after, nil
}

func (s *BookingService) RenderDocument(ctx context.Context, token string) (*document.Artifact, error) {
	current, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	final, err := session.Restore(*current).Finalized()
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(final)
}

// ExpireAbandonedSessions cancels drafts and pending checkouts untouched for
// longer than the session TTL, returning any capacity a stuck checkout still
// reserves. Sessions modified concurrently are skipped.
func (s *BookingService) ExpireAbandonedSessions(ctx context.Context) ([]domain.Session, error) {
	deadline := s.now().Add(-s.sessionTTL)
	stale, err := s.sessions.ListStale(ctx, deadline)
	if err != nil {
		return nil, err
	}

	expired := make([]domain.Session, 0, len(stale))
	for _, st := range stale {
		m := session.Restore(st, session.WithClock(s.now))
		if err := m.Cancel("expired"); err != nil {
			s.log.Warn("cannot expire session", zap.String("token", st.Token), zap.Error(err))
			continue
		}
		after := m.Session()
		if err := s.sessions.Update(ctx, &after); err != nil {
			if !errors.Is(err, repository.ErrVersionConflict) {
				s.log.Error("expire session", zap.String("token", st.Token), zap.Error(err))
			}
			continue
		}
		s.afterTermination(ctx, st, after)
		s.notify(ctx, kafka.EventSessionExpired, after)
		expired = append(expired, after)
	}
	return expired, nil
}

// apply runs op against the stored session without persisting the result.
func (s *BookingService) apply(ctx context.Context, token string, op func(*session.Manager) error) (domain.Session, domain.Session, error) {
	current, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return domain.Session{}, domain.Session{}, err
	}
	m := session.Restore(*current, session.WithClock(s.now))
	if err := op(m); err != nil {
		return domain.Session{}, domain.Session{}, err
	}
	return *current, m.Session(), nil
}

func (s *BookingService) mutate(ctx context.Context, token string, op func(*session.Manager) error) (*domain.Session, error) {
	_, after, err := s.apply(ctx, token, op)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, &after); err != nil {
		return nil, err
	}
	return &after, nil
}

func (s *BookingService) afterTermination(ctx context.Context, before, after domain.Session) {
	if before.Flight == nil {
		return
	}
	if before.Status == domain.SessionStatusConfirmed || before.Status == domain.SessionStatusPendingPayment {
		s.releaseCapacity(ctx, before.Flight.ID, len(before.Passengers))
	}
	s.releaseDroppedHolds(ctx, before, domain.Session{})
}

// refund returns the payment recorded on sess. A failure is published as
// refund_failed so the charge can be reconciled later.
func (s *BookingService) refund(ctx context.Context, sess domain.Session) {
	err := s.gateway.Refund(ctx, sess.PaymentReference)
	if err == nil {
		return
	}
	s.log.Error("refund failed", zap.String("token", sess.Token), zap.String("reference", sess.PaymentReference), zap.Error(err))
	s.notify(ctx, kafka.EventRefundFailed, sess)
}

func (s *BookingService) releaseCapacity(ctx context.Context, flightID int64, count int) {
	if count == 0 {
		return
	}
	if err := s.flights.ReleaseSeats(ctx, flightID, count); err != nil {
		s.log.Error("release flight capacity", zap.Int64("flight_id", flightID), zap.Int("count", count), zap.Error(err))
	}
}

// releaseDroppedHolds frees holds on seats present in before but not in after.
func (s *BookingService) releaseDroppedHolds(ctx context.Context, before, after domain.Session) {
	if s.holds == nil || before.Flight == nil {
		return
	}
	for _, seat := range before.SelectedSeats {
		if holdsSeat(after, seat.SeatID) {
			continue
		}
		if err := s.holds.ReleaseSeatHold(ctx, before.Flight.ID, seat.SeatID, before.Token); err != nil {
			s.log.Warn("release seat hold", zap.String("token", before.Token), zap.String("seat", seat.SeatID), zap.Error(err))
		}
	}
}

// extendHolds keeps sold seats held until departure.
func (s *BookingService) extendHolds(ctx context.Context, sold domain.Session) {
	if s.holds == nil || sold.Flight == nil {
		return
	}
	ttl := sold.Flight.DepartureTime.Sub(s.now())
	if ttl <= 0 {
		return
	}
	for _, seat := range sold.SelectedSeats {
		if _, err := s.holds.AcquireSeatHold(ctx, sold.Flight.ID, seat.SeatID, sold.Token, ttl); err != nil {
			s.log.Warn("extend seat hold", zap.String("token", sold.Token), zap.String("seat", seat.SeatID), zap.Error(err))
		}
	}
}

func holdsSeat(s domain.Session, seatID string) bool {
	for _, seat := range s.SelectedSeats {
		if seat.SeatID == seatID {
			return true
		}
	}
	return false
}

func (s *BookingService) notify(ctx context.Context, eventType string, sess domain.Session) {
	if err := s.publish(ctx, eventType, sess); err != nil {
		s.log.Warn("failed to publish event", zap.String("type", eventType), zap.String("token", sess.Token), zap.Error(err))
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, sess domain.Session) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.NewSessionEvent(eventType, sess, s.now())
	if err := s.producer.Publish(ctx, s.bookingTopic, sess.Token, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, sess.Token, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
