package handler

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	ServiceName = "cartinventory.tools.v1.ToolService"

	CallToolMethod  = "/" + ServiceName + "/CallTool"
	ListToolsMethod = "/" + ServiceName + "/ListTools"

	// CodecName is the content-subtype clients must request.
	CodecName = "json"

	MetadataUserID    = "x-user-id"
	MetadataRequestID = "x-request-id"
)

// jsonCodec carries the plain Go message structs below over gRPC.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type CallToolRequest struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type ListToolsRequest struct{}

type ListToolsResponse struct {
	Tools []ToolInfo `json:"tools"`
}

type ToolServiceServer interface {
	CallTool(context.Context, *CallToolRequest) (*ToolResult, error)
	ListTools(context.Context, *ListToolsRequest) (*ListToolsResponse, error)
}

type GRPCHandler struct {
	dispatcher *Dispatcher
}

func NewGRPCHandler(dispatcher *Dispatcher) *GRPCHandler {
	return &GRPCHandler{dispatcher: dispatcher}
}

func (h *GRPCHandler) CallTool(ctx context.Context, req *CallToolRequest) (*ToolResult, error) {
	result, err := h.dispatcher.Call(ctx, Call{
		Tool:      req.Tool,
		Arguments: req.Arguments,
		UserID:    firstMetadata(ctx, MetadataUserID),
		RequestID: firstMetadata(ctx, MetadataRequestID),
	})
	if errors.Is(err, ErrUnknownTool) {
		return nil, status.Errorf(codes.NotFound, "unknown tool %q", req.Tool)
	}

	return &result, nil
}

func (h *GRPCHandler) ListTools(ctx context.Context, _ *ListToolsRequest) (*ListToolsResponse, error) {
	return &ListToolsResponse{Tools: h.dispatcher.ListTools()}, nil
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func RegisterToolServiceServer(s grpc.ServiceRegistrar, srv ToolServiceServer) {
	s.RegisterService(&ToolServiceDesc, srv)
}

var ToolServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ToolServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CallTool", Handler: callToolHandler},
		{MethodName: "ListTools", Handler: listToolsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cartinventory/tools/v1/tools.json",
}

func callToolHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CallToolRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ToolServiceServer).CallTool(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CallToolMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ToolServiceServer).CallTool(ctx, req.(*CallToolRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listToolsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListToolsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ToolServiceServer).ListTools(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListToolsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ToolServiceServer).ListTools(ctx, req.(*ListToolsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ToolServiceClient calls a ToolService with the JSON codec.
type ToolServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewToolServiceClient(cc grpc.ClientConnInterface) *ToolServiceClient {
	return &ToolServiceClient{cc: cc}
}

func (c *ToolServiceClient) CallTool(ctx context.Context, in *CallToolRequest, opts ...grpc.CallOption) (*ToolResult, error) {
	out := new(ToolResult)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, CallToolMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ToolServiceClient) ListTools(ctx context.Context, opts ...grpc.CallOption) (*ListToolsResponse, error) {
	out := new(ListToolsResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, ListToolsMethod, &ListToolsRequest{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
