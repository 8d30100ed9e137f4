package assistantv1

import (
	"context"

	"google.golang.org/grpc"

	"github.com/Reyansh-Niranjan/CogniSecure/api/codec"
)

const (
	AssistantService_Query_FullMethodName         = "/cognisecure.assistant.v1.AssistantService/Query"
	AssistantService_RetryQuery_FullMethodName    = "/cognisecure.assistant.v1.AssistantService/RetryQuery"
	AssistantService_ListQueryLogs_FullMethodName = "/cognisecure.assistant.v1.AssistantService/ListQueryLogs"
)

// AssistantServiceServer is the server API for AssistantService.
type AssistantServiceServer interface {
	Query(context.Context, *QueryRequest) (*QueryResponse, error)
	RetryQuery(context.Context, *RetryQueryRequest) (*QueryResponse, error)
	ListQueryLogs(context.Context, *ListQueryLogsRequest) (*ListQueryLogsResponse, error)
}

// RegisterAssistantServiceServer registers srv on s.
func RegisterAssistantServiceServer(s grpc.ServiceRegistrar, srv AssistantServiceServer) {
	s.RegisterService(&AssistantService_ServiceDesc, srv)
}

func _AssistantService_Query_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(QueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AssistantServiceServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AssistantService_Query_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AssistantServiceServer).Query(ctx, req.(*QueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _AssistantService_RetryQuery_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RetryQueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AssistantServiceServer).RetryQuery(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AssistantService_RetryQuery_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AssistantServiceServer).RetryQuery(ctx, req.(*RetryQueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _AssistantService_ListQueryLogs_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListQueryLogsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AssistantServiceServer).ListQueryLogs(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AssistantService_ListQueryLogs_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AssistantServiceServer).ListQueryLogs(ctx, req.(*ListQueryLogsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// AssistantService_ServiceDesc is the grpc.ServiceDesc for AssistantService.
var AssistantService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "cognisecure.assistant.v1.AssistantService",
	HandlerType: (*AssistantServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Query", Handler: _AssistantService_Query_Handler},
		{MethodName: "RetryQuery", Handler: _AssistantService_RetryQuery_Handler},
		{MethodName: "ListQueryLogs", Handler: _AssistantService_ListQueryLogs_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cognisecure/assistant/v1/assistant",
}

// AssistantServiceClient is the client API for AssistantService. Calls use the JSON codec.
type AssistantServiceClient interface {
	Query(ctx context.Context, in *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error)
	RetryQuery(ctx context.Context, in *RetryQueryRequest, opts ...grpc.CallOption) (*QueryResponse, error)
	ListQueryLogs(ctx context.Context, in *ListQueryLogsRequest, opts ...grpc.CallOption) (*ListQueryLogsResponse, error)
}

type assistantServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAssistantServiceClient returns a client over cc.
func NewAssistantServiceClient(cc grpc.ClientConnInterface) AssistantServiceClient {
	return &assistantServiceClient{cc}
}

func (c *assistantServiceClient) Query(ctx context.Context, in *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error) {
	out := new(QueryResponse)
	if err := c.cc.Invoke(ctx, AssistantService_Query_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *assistantServiceClient) RetryQuery(ctx context.Context, in *RetryQueryRequest, opts ...grpc.CallOption) (*QueryResponse, error) {
	out := new(QueryResponse)
	if err := c.cc.Invoke(ctx, AssistantService_RetryQuery_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *assistantServiceClient) ListQueryLogs(ctx context.Context, in *ListQueryLogsRequest, opts ...grpc.CallOption) (*ListQueryLogsResponse, error) {
	out := new(ListQueryLogsResponse)
	if err := c.cc.Invoke(ctx, AssistantService_ListQueryLogs_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withJSON(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
}
