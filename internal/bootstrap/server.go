package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Domenick1991/skybooking/api"
	"github.com/Domenick1991/skybooking/config"
	bookingsapi "github.com/Domenick1991/skybooking/internal/api/bookings_service_api"
	flightsapi "github.com/Domenick1991/skybooking/internal/api/flights_service_api"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/Domenick1991/skybooking/internal/service/flights"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const swaggerDoc = "skybooking.swagger.json"

type Servers struct {
	grpcServer  *grpc.Server
	httpServer  *http.Server
	gatewayConn *grpc.ClientConn
}

// Run starts gRPC and HTTP (REST API, grpc-gateway, swagger) servers and
// blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase) error {
	s, err := newServers(cfg, log, flightSvc, bookingSvc)
	if err != nil {
		return err
	}
	defer s.gatewayConn.Close()

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info("servers started", zap.String("grpc", cfg.GRPC.Address), zap.String("http", cfg.HTTP.Address))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		log.Info("servers stopped")
		return nil
	}
}

func newServers(cfg *config.Config, log *zap.Logger, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase) (*Servers, error) {
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(log)))
	flightsapi.RegisterFlightsServiceServer(grpcSrv, flightsapi.NewServer(flightSvc))
	bookingsapi.RegisterBookingsServiceServer(grpcSrv, bookingsapi.NewServer(bookingSvc))

	conn, err := grpc.NewClient(cfg.GRPC.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial gRPC %s: %w", cfg.GRPC.Address, err)
	}
	gateway, err := newGateway(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	handler := http.NewServeMux()
	handler.Handle("/v1/", gateway)
	if cfg.HTTP.SwaggerDir != "" {
		mountSwagger(handler, cfg.HTTP.SwaggerDir)
	}
	handler.Handle("/", api.NewRouter(cfg.HTTP, log, flightSvc, bookingSvc))

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Servers{
		grpcServer:  grpcSrv,
		httpServer:  httpSrv,
		gatewayConn: conn,
	}, nil
}

// mountSwagger serves the OpenAPI document from dir and the UI next to it.
func mountSwagger(mux *http.ServeMux, dir string) {
	mux.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, filepath.Join(dir, swaggerDoc))
	})
	mux.Handle("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func loggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("latency", time.Since(start)),
			zap.String("code", status.Code(err).String()),
		}
		if err != nil {
			log.Warn("grpc request failed", append(fields, zap.Error(err))...)
		} else {
			log.Info("grpc request", fields...)
		}
		return resp, err
	}
}
