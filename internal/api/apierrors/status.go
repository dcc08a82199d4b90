// Package apierrors converts service errors into gRPC statuses.
package apierrors

import (
	"context"
	"errors"

	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/Domenick1991/skybooking/internal/session"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, session.ErrValidation), errors.Is(err, session.ErrInvalidFlight):
		return codes.InvalidArgument
	case errors.Is(err, repository.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, session.ErrSeatConflict), errors.Is(err, booking.ErrSeatUnavailable),
		errors.Is(err, repository.ErrVersionConflict):
		return codes.Aborted
	case errors.Is(err, session.ErrPrecondition), errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrImmutableSession), errors.Is(err, session.ErrCancellationWindow),
		errors.Is(err, session.ErrNotFinalized), errors.Is(err, booking.ErrFlightSoldOut):
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// ToStatus wraps err in a status with the matching code. Internal errors
// are not echoed to the caller.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	code := Code(err)
	if code == codes.Internal {
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}
