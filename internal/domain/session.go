package domain

import "time"

type SessionStatus string

const (
	SessionStatusDraft          SessionStatus = "draft"
	SessionStatusPendingPayment SessionStatus = "pending_payment"
	SessionStatusConfirmed      SessionStatus = "confirmed"
	SessionStatusCancelled      SessionStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type PassengerType string

const (
	PassengerTypeAdult  PassengerType = "adult"
	PassengerTypeChild  PassengerType = "child"
	PassengerTypeInfant PassengerType = "infant"
)

// FlightRef is the part of a catalog flight cached on the session.
type FlightRef struct {
	ID            int64     `json:"id"`
	Carrier       string    `json:"carrier"`
	FlightNumber  string    `json:"flight_number"`
	FromAirport   string    `json:"from_airport"`
	ToAirport     string    `json:"to_airport"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	FareCents     int64     `json:"fare_cents"`
	Currency      string    `json:"currency"`
}

func NewFlightRef(f Flight) FlightRef {
	return FlightRef{
		ID:            f.ID,
		Carrier:       f.Carrier,
		FlightNumber:  f.FlightNumber,
		FromAirport:   f.FromAirport,
		ToAirport:     f.ToAirport,
		DepartureTime: f.DepartureTime,
		ArrivalTime:   f.ArrivalTime,
		FareCents:     f.PriceCents,
		Currency:      f.Currency,
	}
}

type Passenger struct {
	FirstName      string        `json:"first_name" validate:"required"`
	LastName       string        `json:"last_name" validate:"required"`
	DateOfBirth    time.Time     `json:"date_of_birth" validate:"required"`
	Type           PassengerType `json:"type" validate:"required,oneof=adult child infant"`
	DocumentType   string        `json:"document_type,omitempty"`
	DocumentNumber string        `json:"document_number,omitempty"`
	Nationality    string        `json:"nationality,omitempty"`
	DocumentExpiry *time.Time    `json:"document_expiry,omitempty"`
}

// SeatSelection binds a seat to a passenger by position in Session.Passengers.
type SeatSelection struct {
	PassengerIndex int    `json:"passenger_index"`
	SeatID         string `json:"seat_id"`
	PriceCents     int64  `json:"price_cents"`
}

type BaggageOption struct {
	Type       string `json:"type"`
	WeightKg   int    `json:"weight_kg"`
	PriceCents int64  `json:"price_cents"`
}

type BaggageSelection struct {
	PassengerIndex int `json:"passenger_index"`
	BaggageOption
}

type Insurance struct {
	Plan       string `json:"plan"`
	PriceCents int64  `json:"price_cents"`
}

type Contact struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,phone"`
}

// PaymentOutcome is the gateway result fed back into a pending session.
type PaymentOutcome struct {
	Success       bool   `json:"success"`
	FailureReason string `json:"failure_reason,omitempty"`
	Reference     string `json:"reference,omitempty"`
}

type Session struct {
	Token         string             `json:"token"`
	Flight        *FlightRef         `json:"flight,omitempty"`
	Passengers    []Passenger        `json:"passengers"`
	SelectedSeats []SeatSelection    `json:"selected_seats"`
	Baggage       []BaggageSelection `json:"baggage"`
	Insurance     *Insurance         `json:"insurance,omitempty"`
	Contact       *Contact           `json:"contact,omitempty"`

	TotalCents int64  `json:"total_cents"`
	Currency   string `json:"currency"`

	Status        SessionStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`

	PaymentReference     string `json:"payment_reference,omitempty"`
	PaymentFailureReason string `json:"payment_failure_reason,omitempty"`
	CancelReason         string `json:"cancel_reason,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate it without touching the original.
func (s Session) Clone() Session {
	out := s
	if s.Flight != nil {
		f := *s.Flight
		out.Flight = &f
	}
	if s.Passengers != nil {
		out.Passengers = make([]Passenger, len(s.Passengers))
		for i, p := range s.Passengers {
			if p.DocumentExpiry != nil {
				exp := *p.DocumentExpiry
				p.DocumentExpiry = &exp
			}
			out.Passengers[i] = p
		}
	}
	if s.SelectedSeats != nil {
		out.SelectedSeats = append([]SeatSelection(nil), s.SelectedSeats...)
	}
	if s.Baggage != nil {
		out.Baggage = append([]BaggageSelection(nil), s.Baggage...)
	}
	if s.Insurance != nil {
		ins := *s.Insurance
		out.Insurance = &ins
	}
	if s.Contact != nil {
		c := *s.Contact
		out.Contact = &c
	}
	return out
}

func (s Session) SeatFor(passengerIndex int) (SeatSelection, bool) {
	for _, seat := range s.SelectedSeats {
		if seat.PassengerIndex == passengerIndex {
			return seat, true
		}
	}
	return SeatSelection{}, false
}

func (s Session) IsTerminal() bool {
	return s.Status == SessionStatusConfirmed || s.Status == SessionStatusCancelled
}
