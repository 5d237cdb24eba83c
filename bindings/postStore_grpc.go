package bindings

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The PostStore service is declared by hand over protobuf well-known types,
// in the same shape protoc-gen-go-grpc would emit for blog/v1/post_store.proto.

const PostStoreServiceName = "blog.v1.PostStore"

const (
	PostStore_GetPost_FullMethodName              = "/blog.v1.PostStore/GetPost"
	PostStore_ListPosts_FullMethodName            = "/blog.v1.PostStore/ListPosts"
	PostStore_IncrementViewCount_FullMethodName   = "/blog.v1.PostStore/IncrementViewCount"
	PostStore_IncrementReadCount_FullMethodName   = "/blog.v1.PostStore/IncrementReadCount"
	PostStore_SubscribePostChanges_FullMethodName = "/blog.v1.PostStore/SubscribePostChanges"
	PostStore_CreatePost_FullMethodName           = "/blog.v1.PostStore/CreatePost"
	PostStore_UpdatePost_FullMethodName           = "/blog.v1.PostStore/UpdatePost"
	PostStore_DeletePost_FullMethodName           = "/blog.v1.PostStore/DeletePost"
	PostStore_GetDashboardStats_FullMethodName    = "/blog.v1.PostStore/GetDashboardStats"
	PostStore_SubscribeDashboard_FullMethodName   = "/blog.v1.PostStore/SubscribeDashboard"
	PostStore_Summarize_FullMethodName            = "/blog.v1.PostStore/Summarize"
	PostStore_SuggestSEO_FullMethodName           = "/blog.v1.PostStore/SuggestSEO"
)

type PostStoreClient interface {
	GetPost(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListPosts(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	IncrementViewCount(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	IncrementReadCount(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	SubscribePostChanges(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
	CreatePost(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	UpdatePost(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	DeletePost(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetDashboardStats(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	SubscribeDashboard(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
	Summarize(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	SuggestSEO(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type postStoreClient struct {
	cc grpc.ClientConnInterface
}

func NewPostStoreClient(cc grpc.ClientConnInterface) PostStoreClient {
	return &postStoreClient{cc}
}

func (c *postStoreClient) GetPost(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PostStore_GetPost_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *postStoreClient) ListPosts(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PostStore_ListPosts_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *postStoreClient) IncrementViewCount(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PostStore_IncrementViewCount_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *postStoreClient) IncrementReadCount(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PostStore_IncrementReadCount_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *postStoreClient) SubscribePostChanges(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &PostStore_ServiceDesc.Streams[0], PostStore_SubscribePostChanges_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[wrapperspb.StringValue, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *postStoreClient) CreatePost(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, PostStore_CreatePost_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *postStoreClient) UpdatePost(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, PostStore_UpdatePost_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *postStoreClient) DeletePost(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, PostStore_DeletePost_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *postStoreClient) GetDashboardStats(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PostStore_GetDashboardStats_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *postStoreClient) SubscribeDashboard(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &PostStore_ServiceDesc.Streams[1], PostStore_SubscribeDashboard_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *postStoreClient) Summarize(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, PostStore_Summarize_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *postStoreClient) SuggestSEO(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PostStore_SuggestSEO_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type PostStoreServer interface {
	GetPost(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListPosts(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	IncrementViewCount(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	IncrementReadCount(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	SubscribePostChanges(*wrapperspb.StringValue, grpc.ServerStreamingServer[structpb.Struct]) error
	CreatePost(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	UpdatePost(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	DeletePost(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	GetDashboardStats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SubscribeDashboard(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error
	Summarize(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	SuggestSEO(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// UnimplementedPostStoreServer must be embedded to have forward compatible implementations.
type UnimplementedPostStoreServer struct{}

func (UnimplementedPostStoreServer) GetPost(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPost not implemented")
}
func (UnimplementedPostStoreServer) ListPosts(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListPosts not implemented")
}
func (UnimplementedPostStoreServer) IncrementViewCount(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method IncrementViewCount not implemented")
}
func (UnimplementedPostStoreServer) IncrementReadCount(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method IncrementReadCount not implemented")
}
func (UnimplementedPostStoreServer) SubscribePostChanges(*wrapperspb.StringValue, grpc.ServerStreamingServer[structpb.Struct]) error {
	return status.Error(codes.Unimplemented, "method SubscribePostChanges not implemented")
}
func (UnimplementedPostStoreServer) CreatePost(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method CreatePost not implemented")
}
func (UnimplementedPostStoreServer) UpdatePost(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdatePost not implemented")
}
func (UnimplementedPostStoreServer) DeletePost(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeletePost not implemented")
}
func (UnimplementedPostStoreServer) GetDashboardStats(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDashboardStats not implemented")
}
func (UnimplementedPostStoreServer) SubscribeDashboard(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error {
	return status.Error(codes.Unimplemented, "method SubscribeDashboard not implemented")
}
func (UnimplementedPostStoreServer) Summarize(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Summarize not implemented")
}
func (UnimplementedPostStoreServer) SuggestSEO(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SuggestSEO not implemented")
}

func RegisterPostStoreServer(s grpc.ServiceRegistrar, srv PostStoreServer) {
	s.RegisterService(&PostStore_ServiceDesc, srv)
}

func unaryHandler[Req any, Res any](fullMethod string, call func(PostStoreServer, context.Context, *Req) (*Res, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PostStoreServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PostStoreServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _PostStore_SubscribePostChanges_Handler(srv any, stream grpc.ServerStream) error {
	m := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(PostStoreServer).SubscribePostChanges(m, &grpc.GenericServerStream[wrapperspb.StringValue, structpb.Struct]{ServerStream: stream})
}

func _PostStore_SubscribeDashboard_Handler(srv any, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(PostStoreServer).SubscribeDashboard(m, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

var PostStore_ServiceDesc = grpc.ServiceDesc{
	ServiceName: PostStoreServiceName,
	HandlerType: (*PostStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetPost",
			Handler:    unaryHandler(PostStore_GetPost_FullMethodName, PostStoreServer.GetPost),
		},
		{
			MethodName: "ListPosts",
			Handler:    unaryHandler(PostStore_ListPosts_FullMethodName, PostStoreServer.ListPosts),
		},
		{
			MethodName: "IncrementViewCount",
			Handler:    unaryHandler(PostStore_IncrementViewCount_FullMethodName, PostStoreServer.IncrementViewCount),
		},
		{
			MethodName: "IncrementReadCount",
			Handler:    unaryHandler(PostStore_IncrementReadCount_FullMethodName, PostStoreServer.IncrementReadCount),
		},
		{
			MethodName: "CreatePost",
			Handler:    unaryHandler(PostStore_CreatePost_FullMethodName, PostStoreServer.CreatePost),
		},
		{
			MethodName: "UpdatePost",
			Handler:    unaryHandler(PostStore_UpdatePost_FullMethodName, PostStoreServer.UpdatePost),
		},
		{
			MethodName: "DeletePost",
			Handler:    unaryHandler(PostStore_DeletePost_FullMethodName, PostStoreServer.DeletePost),
		},
		{
			MethodName: "GetDashboardStats",
			Handler:    unaryHandler(PostStore_GetDashboardStats_FullMethodName, PostStoreServer.GetDashboardStats),
		},
		{
			MethodName: "Summarize",
			Handler:    unaryHandler(PostStore_Summarize_FullMethodName, PostStoreServer.Summarize),
		},
		{
			MethodName: "SuggestSEO",
			Handler:    unaryHandler(PostStore_SuggestSEO_FullMethodName, PostStoreServer.SuggestSEO),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SubscribePostChanges",
			Handler:       _PostStore_SubscribePostChanges_Handler,
			ServerStreams: true,
		},
		{
			StreamName:    "SubscribeDashboard",
			Handler:       _PostStore_SubscribeDashboard_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "blog/v1/post_store.proto",
}
