package bookings_service_api

import (
	"context"
	"encoding/json"

	"github.com/Domenick1991/skybooking/internal/api/apierrors"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server implements BookingsServiceServer on top of the booking use case.
type Server struct {
	bookings booking.BookingUseCase
}

func NewServer(bookings booking.BookingUseCase) *Server {
	return &Server{bookings: bookings}
}

// StartSession expects {"flight_id": <number>}.
func (s *Server) StartSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	flightID := int64(in.GetFields()["flight_id"].GetNumberValue())
	if flightID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "flight_id is required")
	}
	started, err := s.bookings.StartSession(ctx, flightID)
	if err != nil {
		return nil, apierrors.ToStatus(err)
	}
	return toPBSession(started)
}

func (s *Server) GetSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	token, err := tokenOf(in)
	if err != nil {
		return nil, err
	}
	found, err := s.bookings.GetSession(ctx, token)
	if err != nil {
		return nil, apierrors.ToStatus(err)
	}
	return toPBSession(found)
}

// CancelSession expects {"token": "...", "reason": "..."}; reason is optional.
func (s *Server) CancelSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	token, err := tokenOf(in)
	if err != nil {
		return nil, err
	}
	reason := in.GetFields()["reason"].GetStringValue()
	cancelled, err := s.bookings.CancelSession(ctx, token, reason)
	if err != nil {
		return nil, apierrors.ToStatus(err)
	}
	return toPBSession(cancelled)
}

func (s *Server) RenderDocument(ctx context.Context, in *structpb.Struct) (*httpbody.HttpBody, error) {
	token, err := tokenOf(in)
	if err != nil {
		return nil, err
	}
	artifact, err := s.bookings.RenderDocument(ctx, token)
	if err != nil {
		return nil, apierrors.ToStatus(err)
	}
	return &httpbody.HttpBody{ContentType: artifact.ContentType, Data: artifact.Data}, nil
}

func tokenOf(in *structpb.Struct) (string, error) {
	token := in.GetFields()["token"].GetStringValue()
	if token == "" {
		return "", status.Error(codes.InvalidArgument, "token is required")
	}
	return token, nil
}

// toPBSession mirrors the session's JSON form.
func toPBSession(s *domain.Session) (*structpb.Struct, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

var _ BookingsServiceServer = (*Server)(nil)
