package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Fully qualified names of the control service and its methods.
const (
	ControlServiceName = "loopguard.v1.ControlService"

	MethodGetSettings    = "/" + ControlServiceName + "/GetSettings"
	MethodSetThreshold   = "/" + ControlServiceName + "/SetThreshold"
	MethodResetAlertFlag = "/" + ControlServiceName + "/ResetAlertFlag"
)

// ControlServiceServer is the server API for the control service.
type ControlServiceServer interface {
	GetSettings(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	SetThreshold(ctx context.Context, req *wrapperspb.UInt64Value) (*structpb.Struct, error)
	ResetAlertFlag(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// UnimplementedControlServiceServer answers every method with codes.Unimplemented.
// Embed it to stay compatible when methods are added.
type UnimplementedControlServiceServer struct{}

// GetSettings implements ControlServiceServer.
func (UnimplementedControlServiceServer) GetSettings(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSettings not implemented")
}

// SetThreshold implements ControlServiceServer.
func (UnimplementedControlServiceServer) SetThreshold(
	context.Context,
	*wrapperspb.UInt64Value,
) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SetThreshold not implemented")
}

// ResetAlertFlag implements ControlServiceServer.
func (UnimplementedControlServiceServer) ResetAlertFlag(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ResetAlertFlag not implemented")
}

// RegisterControlServiceServer registers srv with the gRPC server.
func RegisterControlServiceServer(s grpc.ServiceRegistrar, srv ControlServiceServer) {
	s.RegisterService(&ControlServiceDesc, srv)
}

// ControlServiceDesc is the grpc.ServiceDesc for the control service.
//
//nolint:gochecknoglobals // Service descriptors are registered by address.
var ControlServiceDesc = grpc.ServiceDesc{
	ServiceName: ControlServiceName,
	HandlerType: (*ControlServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetSettings",
			Handler:    getSettingsHandler,
		},
		{
			MethodName: "SetThreshold",
			Handler:    setThresholdHandler,
		},
		{
			MethodName: "ResetAlertFlag",
			Handler:    resetAlertFlagHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "loopguard/v1/control.proto",
}

func getSettingsHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	server, _ := srv.(ControlServiceServer)
	if interceptor == nil {
		return server.GetSettings(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodGetSettings,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		typed, _ := req.(*emptypb.Empty)

		return server.GetSettings(ctx, typed)
	}

	return interceptor(ctx, in, info, handler)
}

func setThresholdHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wrapperspb.UInt64Value)
	if err := dec(in); err != nil {
		return nil, err
	}

	server, _ := srv.(ControlServiceServer)
	if interceptor == nil {
		return server.SetThreshold(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodSetThreshold,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		typed, _ := req.(*wrapperspb.UInt64Value)

		return server.SetThreshold(ctx, typed)
	}

	return interceptor(ctx, in, info, handler)
}

func resetAlertFlagHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	server, _ := srv.(ControlServiceServer)
	if interceptor == nil {
		return server.ResetAlertFlag(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodResetAlertFlag,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		typed, _ := req.(*emptypb.Empty)

		return server.ResetAlertFlag(ctx, typed)
	}

	return interceptor(ctx, in, info, handler)
}

// ControlServiceClient is the client API for the control service.
type ControlServiceClient interface {
	GetSettings(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	SetThreshold(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	ResetAlertFlag(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type controlServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewControlServiceClient creates a client bound to cc.
//
//nolint:ireturn // Mirrors the generated client constructors.
func NewControlServiceClient(cc grpc.ClientConnInterface) ControlServiceClient {
	return &controlServiceClient{cc: cc}
}

func (c *controlServiceClient) GetSettings(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodGetSettings, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *controlServiceClient) SetThreshold(
	ctx context.Context,
	in *wrapperspb.UInt64Value,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodSetThreshold, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *controlServiceClient) ResetAlertFlag(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodResetAlertFlag, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
