// Package adminapi registers the admin gRPC services. Messages travel as
// google.protobuf.Struct values and are converted to the typed messages in
// messages.go on both ends.
package adminapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	AuthServiceName   = "admin.Auth"
	ThemesServiceName = "admin.Themes"
	UsersServiceName  = "admin.Users"
)

// Full method names.
const (
	MethodSignIn = "/admin.Auth/SignIn"

	MethodListThemes  = "/admin.Themes/ListThemes"
	MethodWatchThemes = "/admin.Themes/WatchThemes"
	MethodCreateTheme = "/admin.Themes/CreateTheme"
	MethodUpdateTheme = "/admin.Themes/UpdateTheme"
	MethodDeleteTheme = "/admin.Themes/DeleteTheme"

	MethodListUsers  = "/admin.Users/ListUsers"
	MethodGetUser    = "/admin.Users/GetUser"
	MethodCreateUser = "/admin.Users/CreateUser"
)

// AuthServer is the server API for the admin.Auth service.
type AuthServer interface {
	SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ThemesWatchServer is the server side of a WatchThemes stream.
type ThemesWatchServer = grpc.ServerStreamingServer[structpb.Struct]

// ThemesServer is the server API for the admin.Themes service.
type ThemesServer interface {
	ListThemes(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WatchThemes(*structpb.Struct, ThemesWatchServer) error
	CreateTheme(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateTheme(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTheme(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UsersServer is the server API for the admin.Users service.
type UsersServer interface {
	ListUsers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod[S any] func(S, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler[S any](call unaryMethod[S], fullMethod string) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(S), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchThemesHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ThemesServer).WatchThemes(in, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

// AuthServiceDesc describes the admin.Auth service.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignIn", Handler: unaryHandler(AuthServer.SignIn, MethodSignIn)},
	},
	Metadata: "admin",
}

// ThemesServiceDesc describes the admin.Themes service.
var ThemesServiceDesc = grpc.ServiceDesc{
	ServiceName: ThemesServiceName,
	HandlerType: (*ThemesServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListThemes", Handler: unaryHandler(ThemesServer.ListThemes, MethodListThemes)},
		{MethodName: "CreateTheme", Handler: unaryHandler(ThemesServer.CreateTheme, MethodCreateTheme)},
		{MethodName: "UpdateTheme", Handler: unaryHandler(ThemesServer.UpdateTheme, MethodUpdateTheme)},
		{MethodName: "DeleteTheme", Handler: unaryHandler(ThemesServer.DeleteTheme, MethodDeleteTheme)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchThemes", Handler: watchThemesHandler, ServerStreams: true},
	},
	Metadata: "admin",
}

// UsersServiceDesc describes the admin.Users service.
var UsersServiceDesc = grpc.ServiceDesc{
	ServiceName: UsersServiceName,
	HandlerType: (*UsersServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListUsers", Handler: unaryHandler(UsersServer.ListUsers, MethodListUsers)},
		{MethodName: "GetUser", Handler: unaryHandler(UsersServer.GetUser, MethodGetUser)},
		{MethodName: "CreateUser", Handler: unaryHandler(UsersServer.CreateUser, MethodCreateUser)},
	},
	Metadata: "admin",
}

func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

func RegisterThemesServer(s grpc.ServiceRegistrar, srv ThemesServer) {
	s.RegisterService(&ThemesServiceDesc, srv)
}

func RegisterUsersServer(s grpc.ServiceRegistrar, srv UsersServer) {
	s.RegisterService(&UsersServiceDesc, srv)
}
