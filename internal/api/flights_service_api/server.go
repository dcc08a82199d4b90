package flights_service_api

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/internal/api/apierrors"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/service/flights"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server implements FlightsServiceServer on top of the flight use case.
type Server struct {
	flights flights.FlightUseCase
}

func NewServer(flights flights.FlightUseCase) *Server {
	return &Server{flights: flights}
}

// ListFlights accepts optional from, to, date (YYYY-MM-DD) and passengers
// fields and returns {"flights": [...]}.
func (s *Server) ListFlights(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	query, filtered, err := searchQuery(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var list []domain.Flight
	if filtered {
		list, err = s.flights.Search(ctx, query)
	} else {
		list, err = s.flights.List(ctx)
	}
	if err != nil {
		return nil, apierrors.ToStatus(err)
	}

	items := make([]interface{}, 0, len(list))
	for i := range list {
		items = append(items, flightFields(&list[i]))
	}
	resp, err := structpb.NewStruct(map[string]interface{}{"flights": items})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

// GetFlight expects {"id": <number>}.
func (s *Server) GetFlight(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id := int64(in.GetFields()["id"].GetNumberValue())
	if id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return nil, apierrors.ToStatus(err)
	}
	resp, err := structpb.NewStruct(flightFields(flight))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

func flightFields(f *domain.Flight) map[string]interface{} {
	return map[string]interface{}{
		"id":              f.ID,
		"carrier":         f.Carrier,
		"flight_number":   f.FlightNumber,
		"from_airport":    f.FromAirport,
		"to_airport":      f.ToAirport,
		"departure_time":  f.DepartureTime.Format(time.RFC3339),
		"arrival_time":    f.ArrivalTime.Format(time.RFC3339),
		"total_seats":     f.TotalSeats,
		"available_seats": f.AvailableSeats,
		"price_cents":     f.PriceCents,
		"currency":        f.Currency,
	}
}

func searchQuery(in *structpb.Struct) (flights.SearchQuery, bool, error) {
	fields := in.GetFields()
	query := flights.SearchQuery{
		From: fields["from"].GetStringValue(),
		To:   fields["to"].GetStringValue(),
	}
	filtered := query.From != "" || query.To != ""

	if raw := fields["date"].GetStringValue(); raw != "" {
		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return query, false, fmt.Errorf("date must be YYYY-MM-DD")
		}
		query.Date = date
		filtered = true
	}
	if v, ok := fields["passengers"]; ok {
		n := int(v.GetNumberValue())
		if n < 1 {
			return query, false, fmt.Errorf("passengers must be a positive number")
		}
		query.Passengers = n
		filtered = true
	}
	return query, filtered, nil
}

var _ FlightsServiceServer = (*Server)(nil)
