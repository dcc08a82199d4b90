// Package session implements the booking session state machine. A Manager
// owns exactly one domain.Session and is the only legal way to mutate it.
//
// Every mutation is applied to a copy of the aggregate; the copy replaces
// the current state only after validation passes and the total has been
// recomputed, so a failed call never leaves a partial update behind.
//
// A Manager performs no I/O and is not safe for concurrent use. Each
// user's booking gets its own instance.
package session

import (
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/go-playground/validator/v10"
)

type Option func(*Manager)

// WithClock overrides time.Now, used for timestamps and the cancellation window.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

type Manager struct {
	session  domain.Session
	now      func() time.Time
	validate *validator.Validate
}

// New returns a manager holding an empty draft with no flight selected.
func New(opts ...Option) *Manager {
	return Restore(domain.Session{
		Status:        domain.SessionStatusDraft,
		PaymentStatus: domain.PaymentStatusUnpaid,
	}, opts...)
}

// Restore wraps a previously stored session.
func Restore(s domain.Session, opts ...Option) *Manager {
	m := &Manager{
		session:  s.Clone(),
		now:      time.Now,
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session returns a snapshot; mutating it does not affect the manager.
func (m *Manager) Session() domain.Session {
	return m.session.Clone()
}

// Finalized returns the confirmed session handed to document renderers.
func (m *Manager) Finalized() (domain.Session, error) {
	if m.session.Status != domain.SessionStatusConfirmed {
		return domain.Session{}, ErrNotFinalized
	}
	return m.session.Clone(), nil
}

// ComputeTotal returns fare + seats + baggage + insurance in minor units.
func ComputeTotal(s domain.Session) int64 {
	var total int64
	if s.Flight != nil {
		total += s.Flight.FareCents
	}
	for _, seat := range s.SelectedSeats {
		total += seat.PriceCents
	}
	for _, bag := range s.Baggage {
		total += bag.PriceCents
	}
	if s.Insurance != nil {
		total += s.Insurance.PriceCents
	}
	return total
}

func (m *Manager) ComputeTotal() int64 {
	return ComputeTotal(m.session)
}

// Start replaces the aggregate with a fresh draft for the given flight.
func (m *Manager) Start(flight domain.Flight) error {
	if err := m.requireDraft("start session"); err != nil {
		return err
	}
	if err := validateFlight(flight); err != nil {
		return err
	}
	ref := domain.NewFlightRef(flight)
	m.session = m.finish(domain.Session{
		Token:         m.session.Token,
		Version:       m.session.Version,
		Flight:        &ref,
		Passengers:    []domain.Passenger{},
		SelectedSeats: []domain.SeatSelection{},
		Baggage:       []domain.BaggageSelection{},
		Currency:      ref.Currency,
		Status:        domain.SessionStatusDraft,
		PaymentStatus: domain.PaymentStatusUnpaid,
	}, true)
	return nil
}

// SetPassengers replaces the passenger list. Seat and baggage records that
// point past the end of the new list are dropped.
func (m *Manager) SetPassengers(passengers []domain.Passenger) error {
	if err := m.requireDraft("set passengers"); err != nil {
		return err
	}
	if err := m.validatePassengers(passengers); err != nil {
		return err
	}

	next := m.session.Clone()
	next.Passengers = append([]domain.Passenger(nil), passengers...)
	n := len(passengers)

	seats := next.SelectedSeats[:0]
	for _, seat := range next.SelectedSeats {
		if seat.PassengerIndex < n {
			seats = append(seats, seat)
		}
	}
	next.SelectedSeats = seats

	bags := next.Baggage[:0]
	for _, bag := range next.Baggage {
		if bag.PassengerIndex < n {
			bags = append(bags, bag)
		}
	}
	next.Baggage = bags

	m.session = m.finish(next, false)
	return nil
}

// SelectSeat inserts or replaces the seat for a passenger position.
func (m *Manager) SelectSeat(passengerIndex int, seatID string, priceCents int64) error {
	if err := m.requireDraft("select seat"); err != nil {
		return err
	}
	verr := &ValidationError{}
	m.checkPassengerIndex(verr, passengerIndex)
	if seatID == "" {
		verr.add("seat_id", "is required")
	}
	if priceCents < 0 {
		verr.add("price_cents", "must not be negative")
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	for _, seat := range m.session.SelectedSeats {
		if seat.SeatID == seatID && seat.PassengerIndex != passengerIndex {
			return &SeatConflictError{SeatID: seatID, HeldBy: seat.PassengerIndex, PassengerIndex: passengerIndex}
		}
	}

	next := m.session.Clone()
	selection := domain.SeatSelection{PassengerIndex: passengerIndex, SeatID: seatID, PriceCents: priceCents}
	replaced := false
	for i, seat := range next.SelectedSeats {
		if seat.PassengerIndex == passengerIndex {
			next.SelectedSeats[i] = selection
			replaced = true
			break
		}
	}
	if !replaced {
		next.SelectedSeats = append(next.SelectedSeats, selection)
	}

	m.session = m.finish(next, false)
	return nil
}

// RemoveSeat drops the seat for a passenger position; no-op when none is held.
func (m *Manager) RemoveSeat(passengerIndex int) error {
	if err := m.requireDraft("remove seat"); err != nil {
		return err
	}
	if _, ok := m.session.SeatFor(passengerIndex); !ok {
		return nil
	}

	next := m.session.Clone()
	seats := next.SelectedSeats[:0]
	for _, seat := range next.SelectedSeats {
		if seat.PassengerIndex != passengerIndex {
			seats = append(seats, seat)
		}
	}
	next.SelectedSeats = seats

	m.session = m.finish(next, false)
	return nil
}

func (m *Manager) AddBaggage(passengerIndex int, option domain.BaggageOption) error {
	if err := m.requireDraft("add baggage"); err != nil {
		return err
	}
	verr := &ValidationError{}
	m.checkPassengerIndex(verr, passengerIndex)
	if option.Type == "" {
		verr.add("type", "is required")
	}
	if option.WeightKg < 0 {
		verr.add("weight_kg", "must not be negative")
	}
	if option.PriceCents < 0 {
		verr.add("price_cents", "must not be negative")
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	next := m.session.Clone()
	next.Baggage = append(next.Baggage, domain.BaggageSelection{PassengerIndex: passengerIndex, BaggageOption: option})

	m.session = m.finish(next, false)
	return nil
}

// RemoveBaggage drops every record of the given type for a passenger position.
func (m *Manager) RemoveBaggage(passengerIndex int, baggageType string) error {
	if err := m.requireDraft("remove baggage"); err != nil {
		return err
	}

	next := m.session.Clone()
	bags := next.Baggage[:0]
	for _, bag := range next.Baggage {
		if bag.PassengerIndex == passengerIndex && bag.Type == baggageType {
			continue
		}
		bags = append(bags, bag)
	}
	if len(bags) == len(m.session.Baggage) {
		return nil
	}
	next.Baggage = bags

	m.session = m.finish(next, false)
	return nil
}

// SetInsurance sets the add-on, or clears it when nil.
func (m *Manager) SetInsurance(insurance *domain.Insurance) error {
	if err := m.requireDraft("set insurance"); err != nil {
		return err
	}
	if insurance != nil {
		verr := &ValidationError{}
		if insurance.Plan == "" {
			verr.add("insurance.plan", "is required")
		}
		if insurance.PriceCents < 0 {
			verr.add("insurance.price_cents", "must not be negative")
		}
		if err := verr.orNil(); err != nil {
			return err
		}
	}

	next := m.session.Clone()
	if insurance == nil {
		next.Insurance = nil
	} else {
		ins := *insurance
		next.Insurance = &ins
	}

	m.session = m.finish(next, false)
	return nil
}

// SetContact is allowed until cancellation; contact details are not frozen by payment.
func (m *Manager) SetContact(email, phone string) error {
	if m.session.Status == domain.SessionStatusCancelled {
		return &ImmutableSessionError{Op: "set contact", Status: m.session.Status}
	}
	contact := domain.Contact{Email: email, Phone: phone}
	if err := m.validateContact(contact); err != nil {
		return err
	}

	next := m.session.Clone()
	next.Contact = &contact

	m.session = m.finish(next, false)
	return nil
}

// RequestPayment moves a complete draft to pending_payment.
func (m *Manager) RequestPayment() error {
	var missing []string
	if m.session.Status != domain.SessionStatusDraft {
		missing = append(missing, RequirementDraft)
	}
	if m.session.Flight == nil {
		missing = append(missing, RequirementFlight)
	}
	if len(m.session.Passengers) == 0 {
		missing = append(missing, RequirementPassengers)
	}
	if m.session.Contact == nil {
		missing = append(missing, RequirementContact)
	}
	if len(missing) > 0 {
		return &PreconditionError{Missing: missing}
	}

	next := m.session.Clone()
	next.Status = domain.SessionStatusPendingPayment

	m.session = m.finish(next, false)
	return nil
}

// ApplyPaymentResult records the gateway outcome for a pending session.
// Success confirms and freezes the booking; failure returns it to draft.
func (m *Manager) ApplyPaymentResult(outcome domain.PaymentOutcome) error {
	if m.session.Status != domain.SessionStatusPendingPayment {
		return &TransitionError{Op: "apply payment result", From: m.session.Status}
	}

	next := m.session.Clone()
	if outcome.Success {
		next.Status = domain.SessionStatusConfirmed
		next.PaymentStatus = domain.PaymentStatusPaid
		next.PaymentReference = outcome.Reference
		next.PaymentFailureReason = ""
	} else {
		next.Status = domain.SessionStatusDraft
		next.PaymentStatus = domain.PaymentStatusFailed
		next.PaymentFailureReason = outcome.FailureReason
	}

	m.session = m.finish(next, false)
	return nil
}

// Cancel ends the booking. A confirmed booking can only be cancelled before
// departure; a paid one is marked refunded.
func (m *Manager) Cancel(reason string) error {
	switch m.session.Status {
	case domain.SessionStatusDraft, domain.SessionStatusPendingPayment:
	case domain.SessionStatusConfirmed:
		now := m.now()
		if m.session.Flight == nil || !isFuture(m.session.Flight.DepartureTime, now) {
			var departure time.Time
			if m.session.Flight != nil {
				departure = m.session.Flight.DepartureTime
			}
			return &CancellationWindowError{Departure: departure, Now: now}
		}
	default:
		return &TransitionError{Op: "cancel", From: m.session.Status}
	}

	next := m.session.Clone()
	next.Status = domain.SessionStatusCancelled
	next.CancelReason = reason
	if next.PaymentStatus == domain.PaymentStatusPaid {
		next.PaymentStatus = domain.PaymentStatusRefunded
	}

	m.session = m.finish(next, false)
	return nil
}

func (m *Manager) requireDraft(op string) error {
	if m.session.Status != domain.SessionStatusDraft {
		return &ImmutableSessionError{Op: op, Status: m.session.Status}
	}
	return nil
}

func (m *Manager) checkPassengerIndex(verr *ValidationError, idx int) {
	if idx < 0 || idx >= len(m.session.Passengers) {
		verr.add("passenger_index", "does not reference a passenger")
	}
}

// finish recomputes derived fields and stamps timestamps on a mutated copy.
func (m *Manager) finish(next domain.Session, fresh bool) domain.Session {
	now := m.now()
	if fresh || next.CreatedAt.IsZero() {
		next.CreatedAt = now
	}
	next.UpdatedAt = now
	if next.Passengers == nil {
		next.Passengers = []domain.Passenger{}
	}
	if next.SelectedSeats == nil {
		next.SelectedSeats = []domain.SeatSelection{}
	}
	if next.Baggage == nil {
		next.Baggage = []domain.BaggageSelection{}
	}
	next.TotalCents = ComputeTotal(next)
	if next.Flight != nil {
		next.Currency = next.Flight.Currency
	}
	return next
}
