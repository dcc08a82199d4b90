package api

import (
	"net/http"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/Domenick1991/skybooking/internal/service/flights"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the REST API served under /api/v1.
func NewRouter(cfg config.HTTPConfig, log *zap.Logger, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(Recovery(log))
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(RateLimit(cfg.RateLimitPerMinute, log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	NewFlightHandler(flightSvc).Register(v1.Group("/flights"))
	NewSessionHandler(bookingSvc).Register(v1.Group("/sessions"))

	return r
}
