package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMountSwagger_ServesDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, swaggerDoc), []byte(`{"swagger":"2.0"}`), 0o644))

	mux := http.NewServeMux()
	mountSwagger(mux, dir)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/swagger/doc.json", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"swagger":"2.0"}`, w.Body.String())
}

func TestLoggingInterceptor(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	interceptor := loggingInterceptor(zap.New(core))
	info := &grpc.UnaryServerInfo{FullMethod: "/skybooking.flights.v1.FlightsService/GetFlight"}

	resp, err := interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)

	_, err = interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})
	assert.Equal(t, codes.NotFound, status.Code(err))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "grpc request", entries[0].Message)
	assert.Equal(t, "grpc request failed", entries[1].Message)
	assert.Equal(t, "NotFound", entries[1].ContextMap()["code"])
}
