package bookings_service_api

import (
	"context"

	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "skybooking.bookings.v1.BookingsService"

// BookingsServiceServer is the server API for BookingsService.
type BookingsServiceServer interface {
	StartSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CancelSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	RenderDocument(ctx context.Context, in *structpb.Struct) (*httpbody.HttpBody, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "StartSession", Handler: unary("StartSession", BookingsServiceServer.StartSession)},
		{MethodName: "GetSession", Handler: unary("GetSession", BookingsServiceServer.GetSession)},
		{MethodName: "CancelSession", Handler: unary("CancelSession", BookingsServiceServer.CancelSession)},
		{MethodName: "RenderDocument", Handler: unary("RenderDocument", BookingsServiceServer.RenderDocument)},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterBookingsServiceServer(s grpc.ServiceRegistrar, srv BookingsServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary adapts a method expression taking a Struct request to a grpc.MethodHandler.
func unary[Resp any](method string, call func(BookingsServiceServer, context.Context, *structpb.Struct) (Resp, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(BookingsServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) StartSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, "StartSession", in, new(structpb.Struct), opts)
}

func (c *Client) GetSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, "GetSession", in, new(structpb.Struct), opts)
}

func (c *Client) CancelSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, "CancelSession", in, new(structpb.Struct), opts)
}

func (c *Client) RenderDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*httpbody.HttpBody, error) {
	return invoke(ctx, c.cc, "RenderDocument", in, new(httpbody.HttpBody), opts)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *structpb.Struct, out Resp, opts []grpc.CallOption) (Resp, error) {
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		var zero Resp
		return zero, err
	}
	return out, nil
}
