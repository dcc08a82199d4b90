package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/skybooking/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

// list returns the whole catalog, or a filtered one when any of
// from, to, date (YYYY-MM-DD) or passengers is given.
func (h *FlightHandler) list(c *gin.Context) {
	query, filtered, err := parseSearch(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var result interface{}
	if filtered {
		result, err = h.service.Search(c.Request.Context(), query)
	} else {
		result, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func parseSearch(c *gin.Context) (flights.SearchQuery, bool, error) {
	query := flights.SearchQuery{
		From: c.Query("from"),
		To:   c.Query("to"),
	}
	filtered := query.From != "" || query.To != ""

	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return query, false, errInvalidQuery("date must be YYYY-MM-DD")
		}
		query.Date = date
		filtered = true
	}
	if raw := c.Query("passengers"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return query, false, errInvalidQuery("passengers must be a positive number")
		}
		query.Passengers = n
		filtered = true
	}
	return query, filtered, nil
}

type errInvalidQuery string

func (e errInvalidQuery) Error() string { return string(e) }
