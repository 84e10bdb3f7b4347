package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "peakly.core.v1.Core"

// Method names of the Core service.
const (
	MethodConvertToGrams           = "ConvertToGrams"
	MethodRecomputeRecipe          = "RecomputeRecipe"
	MethodRecomputeByIngredient    = "RecomputeByIngredient"
	MethodUpdateIngredient         = "UpdateIngredient"
	MethodDeleteIngredient         = "DeleteIngredient"
	MethodSetRecipeIngredients     = "SetRecipeIngredients"
	MethodGetRecipeNutrition       = "GetRecipeNutrition"
	MethodSuggestSlot              = "SuggestSlot"
	MethodResolveAssignments       = "ResolveAssignments"
	MethodMyContent                = "MyContent"
	MethodCreateEnrollment         = "CreateEnrollment"
	MethodUpdateEnrollmentVariants = "UpdateEnrollmentVariants"
	MethodAddRecipeToShopping      = "AddRecipeToShopping"
	MethodListShopping             = "ListShopping"
)

// FullMethod returns the "/service/method" path used on the wire.
func FullMethod(name string) string { return "/" + ServiceName + "/" + name }

// CoreServer is the server API of the Core service.
// Every message is a google.protobuf.Struct.
type CoreServer interface {
	ConvertToGrams(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecomputeRecipe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecomputeByIngredient(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateIngredient(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteIngredient(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetRecipeIngredients(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRecipeNutrition(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SuggestSlot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResolveAssignments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MyContent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateEnrollment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEnrollmentVariants(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddRecipeToShopping(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListShopping(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(CoreServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryCall) grpc.MethodDesc {
	full := FullMethod(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CoreServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CoreServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the Core service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CoreServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodConvertToGrams, CoreServer.ConvertToGrams),
		unary(MethodRecomputeRecipe, CoreServer.RecomputeRecipe),
		unary(MethodRecomputeByIngredient, CoreServer.RecomputeByIngredient),
		unary(MethodUpdateIngredient, CoreServer.UpdateIngredient),
		unary(MethodDeleteIngredient, CoreServer.DeleteIngredient),
		unary(MethodSetRecipeIngredients, CoreServer.SetRecipeIngredients),
		unary(MethodGetRecipeNutrition, CoreServer.GetRecipeNutrition),
		unary(MethodSuggestSlot, CoreServer.SuggestSlot),
		unary(MethodResolveAssignments, CoreServer.ResolveAssignments),
		unary(MethodMyContent, CoreServer.MyContent),
		unary(MethodCreateEnrollment, CoreServer.CreateEnrollment),
		unary(MethodUpdateEnrollmentVariants, CoreServer.UpdateEnrollmentVariants),
		unary(MethodAddRecipeToShopping, CoreServer.AddRecipeToShopping),
		unary(MethodListShopping, CoreServer.ListShopping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "peakly/core/v1/core.proto",
}

// RegisterCoreServer registers srv on s.
func RegisterCoreServer(s grpc.ServiceRegistrar, srv CoreServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls the Core service over a client connection.
type Client struct{ cc grpc.ClientConnInterface }

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

// Call invokes method with req and returns the response struct.
func (c *Client) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
