package bootstrap

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	bookingsapi "github.com/Domenick1991/skybooking/internal/api/bookings_service_api"
	flightsapi "github.com/Domenick1991/skybooking/internal/api/flights_service_api"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// newGateway exposes the gRPC services under /v1 as JSON over HTTP. The
// receipt route streams the google.api.HttpBody returned by RenderDocument.
func newGateway(conn grpc.ClientConnInterface) (*runtime.ServeMux, error) {
	mux := runtime.NewServeMux()
	flightsClient := flightsapi.NewClient(conn)
	bookingsClient := bookingsapi.NewClient(conn)

	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodGet, "/v1/flights", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			in, err := searchRequest(r.URL.Query())
			if err != nil {
				forward(mux, w, r, nil, status.Error(codes.InvalidArgument, err.Error()))
				return
			}
			resp, err := flightsClient.ListFlights(r.Context(), in)
			forward(mux, w, r, resp, err)
		}},
		{http.MethodGet, "/v1/flights/{id}", func(w http.ResponseWriter, r *http.Request, params map[string]string) {
			id, err := strconv.ParseInt(params["id"], 10, 64)
			if err != nil {
				forward(mux, w, r, nil, status.Error(codes.InvalidArgument, "invalid id"))
				return
			}
			in, _ := structpb.NewStruct(map[string]interface{}{"id": id})
			resp, err := flightsClient.GetFlight(r.Context(), in)
			forward(mux, w, r, resp, err)
		}},
		{http.MethodGet, "/v1/sessions/{token}", func(w http.ResponseWriter, r *http.Request, params map[string]string) {
			in, _ := structpb.NewStruct(map[string]interface{}{"token": params["token"]})
			resp, err := bookingsClient.GetSession(r.Context(), in)
			forward(mux, w, r, resp, err)
		}},
		{http.MethodGet, "/v1/sessions/{token}/document", func(w http.ResponseWriter, r *http.Request, params map[string]string) {
			token := params["token"]
			in, _ := structpb.NewStruct(map[string]interface{}{"token": token})
			resp, err := bookingsClient.RenderDocument(r.Context(), in)
			if err == nil {
				w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "booking-"+token+".pdf"))
			}
			forward(mux, w, r, resp, err)
		}},
	}

	for _, route := range routes {
		if err := mux.HandlePath(route.method, route.pattern, route.handler); err != nil {
			return nil, fmt.Errorf("register gateway route %s %s: %w", route.method, route.pattern, err)
		}
	}
	return mux, nil
}

func forward(mux *runtime.ServeMux, w http.ResponseWriter, r *http.Request, resp proto.Message, err error) {
	_, outbound := runtime.MarshalerForRequest(mux, r)
	if err != nil {
		runtime.HTTPError(r.Context(), mux, outbound, w, r, err)
		return
	}
	runtime.ForwardResponseMessage(r.Context(), mux, outbound, w, r, resp)
}

func searchRequest(q url.Values) (*structpb.Struct, error) {
	fields := map[string]interface{}{}
	for _, key := range []string{"from", "to", "date"} {
		if v := q.Get(key); v != "" {
			fields[key] = v
		}
	}
	if v := q.Get("passengers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("passengers must be a number")
		}
		fields["passengers"] = n
	}
	return structpb.NewStruct(fields)
}
