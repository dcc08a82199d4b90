package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/Domenick1991/skybooking/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error      string                   `json:"error"`
	Violations []session.FieldViolation `json:"violations,omitempty"`
	Missing    []string                 `json:"missing,omitempty"`
}

// statusFor maps service and state-machine errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrInvalidFlight):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSeatConflict),
		errors.Is(err, booking.ErrSeatUnavailable),
		errors.Is(err, booking.ErrFlightSoldOut),
		errors.Is(err, session.ErrPrecondition),
		errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrImmutableSession),
		errors.Is(err, session.ErrCancellationWindow),
		errors.Is(err, session.ErrNotFinalized),
		errors.Is(err, repository.ErrVersionConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var verr *session.ValidationError
	if errors.As(err, &verr) {
		resp.Violations = verr.Violations
	}
	var perr *session.PreconditionError
	if errors.As(err, &perr) {
		resp.Missing = perr.Missing
	}

	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		resp.Error = "internal server error"
	}
	c.JSON(status, resp)
}
