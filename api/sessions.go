package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/Domenick1991/skybooking/internal/session"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	service booking.BookingUseCase
}

type startSessionRequest struct {
	FlightID int64 `json:"flight_id" binding:"required"`
}

type passengerRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DateOfBirth    string `json:"date_of_birth"`
	Type           string `json:"type"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	Nationality    string `json:"nationality"`
	DocumentExpiry string `json:"document_expiry"`
}

type setPassengersRequest struct {
	Passengers []passengerRequest `json:"passengers"`
}

type addBaggageRequest struct {
	PassengerIndex int    `json:"passenger_index"`
	Type           string `json:"type"`
	WeightKg       int    `json:"weight_kg"`
	PriceCents     int64  `json:"price_cents"`
}

type checkoutRequest struct {
	Instrument string `json:"instrument" binding:"required"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func NewSessionHandler(service booking.BookingUseCase) *SessionHandler {
	return &SessionHandler{service: service}
}

func (h *SessionHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.start)
	router.GET("/:token", h.get)
	router.PUT("/:token/passengers", h.setPassengers)
	router.PUT("/:token/seats", h.selectSeat)
	router.DELETE("/:token/seats/:passenger", h.removeSeat)
	router.POST("/:token/baggage", h.addBaggage)
	router.DELETE("/:token/baggage/:passenger/:type", h.removeBaggage)
	router.PUT("/:token/insurance", h.setInsurance)
	router.DELETE("/:token/insurance", h.clearInsurance)
	router.PUT("/:token/contact", h.setContact)
	router.POST("/:token/checkout", h.checkout)
	router.POST("/:token/cancel", h.cancel)
	router.GET("/:token/document", h.document)
}

func (h *SessionHandler) start(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s, err := h.service.StartSession(c.Request.Context(), req.FlightID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *SessionHandler) get(c *gin.Context) {
	s, err := h.service.GetSession(c.Request.Context(), c.Param("token"))
	respond(c, s, err)
}

func (h *SessionHandler) setPassengers(c *gin.Context) {
	var req setPassengersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	passengers, err := toPassengers(req.Passengers)
	if err != nil {
		writeError(c, err)
		return
	}
	s, err := h.service.SetPassengers(c.Request.Context(), c.Param("token"), passengers)
	respond(c, s, err)
}

func (h *SessionHandler) selectSeat(c *gin.Context) {
	var req booking.SelectSeatInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s, err := h.service.SelectSeat(c.Request.Context(), c.Param("token"), req)
	respond(c, s, err)
}

func (h *SessionHandler) removeSeat(c *gin.Context) {
	idx, ok := passengerParam(c)
	if !ok {
		return
	}
	s, err := h.service.RemoveSeat(c.Request.Context(), c.Param("token"), idx)
	respond(c, s, err)
}

func (h *SessionHandler) addBaggage(c *gin.Context) {
	var req addBaggageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s, err := h.service.AddBaggage(c.Request.Context(), c.Param("token"), req.PassengerIndex, domain.BaggageOption{
		Type:       req.Type,
		WeightKg:   req.WeightKg,
		PriceCents: req.PriceCents,
	})
	respond(c, s, err)
}

func (h *SessionHandler) removeBaggage(c *gin.Context) {
	idx, ok := passengerParam(c)
	if !ok {
		return
	}
	s, err := h.service.RemoveBaggage(c.Request.Context(), c.Param("token"), idx, c.Param("type"))
	respond(c, s, err)
}

func (h *SessionHandler) setInsurance(c *gin.Context) {
	var req domain.Insurance
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s, err := h.service.SetInsurance(c.Request.Context(), c.Param("token"), &req)
	respond(c, s, err)
}

func (h *SessionHandler) clearInsurance(c *gin.Context) {
	s, err := h.service.SetInsurance(c.Request.Context(), c.Param("token"), nil)
	respond(c, s, err)
}

func (h *SessionHandler) setContact(c *gin.Context) {
	var req booking.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s, err := h.service.SetContact(c.Request.Context(), c.Param("token"), req)
	respond(c, s, err)
}

// checkout answers 402 with the session body when the charge was declined.
func (h *SessionHandler) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s, err := h.service.Checkout(c.Request.Context(), c.Param("token"), req.Instrument)
	if err != nil {
		writeError(c, err)
		return
	}
	if s.PaymentStatus == domain.PaymentStatusFailed {
		c.JSON(http.StatusPaymentRequired, s)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SessionHandler) cancel(c *gin.Context) {
	var req cancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}
	s, err := h.service.CancelSession(c.Request.Context(), c.Param("token"), req.Reason)
	respond(c, s, err)
}

func (h *SessionHandler) document(c *gin.Context) {
	artifact, err := h.service.RenderDocument(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

func respond(c *gin.Context, s *domain.Session, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func passengerParam(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("passenger"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid passenger index"})
		return 0, false
	}
	return idx, true
}

// toPassengers parses date fields; a malformed date is reported the same way
// as any other passenger field violation.
func toPassengers(reqs []passengerRequest) ([]domain.Passenger, error) {
	verr := &session.ValidationError{}
	passengers := make([]domain.Passenger, 0, len(reqs))
	for i, r := range reqs {
		p := domain.Passenger{
			FirstName:      r.FirstName,
			LastName:       r.LastName,
			Type:           domain.PassengerType(r.Type),
			DocumentType:   r.DocumentType,
			DocumentNumber: r.DocumentNumber,
			Nationality:    r.Nationality,
		}
		if r.DateOfBirth != "" {
			dob, err := time.Parse(time.DateOnly, r.DateOfBirth)
			if err != nil {
				verr.Violations = append(verr.Violations, session.FieldViolation{
					Field:   fmt.Sprintf("passengers[%d].date_of_birth", i),
					Message: "must be a date in YYYY-MM-DD format",
				})
			}
			p.DateOfBirth = dob
		}
		if r.DocumentExpiry != "" {
			expiry, err := time.Parse(time.DateOnly, r.DocumentExpiry)
			if err != nil {
				verr.Violations = append(verr.Violations, session.FieldViolation{
					Field:   fmt.Sprintf("passengers[%d].document_expiry", i),
					Message: "must be a date in YYYY-MM-DD format",
				})
			} else {
				p.DocumentExpiry = &expiry
			}
		}
		passengers = append(passengers, p)
	}
	if len(verr.Violations) > 0 {
		return nil, verr
	}
	return passengers, nil
}
