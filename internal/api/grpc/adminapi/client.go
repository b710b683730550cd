package adminapi

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls the admin services over a client connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	in, err := Encode(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return err
	}
	return Decode(out, resp)
}

func (c *Client) SignIn(ctx context.Context, req SignInRequest, opts ...grpc.CallOption) (SignInResponse, error) {
	var resp SignInResponse
	err := c.invoke(ctx, MethodSignIn, req, &resp, opts...)
	return resp, err
}

func (c *Client) ListThemes(ctx context.Context, req ThemeQuery, opts ...grpc.CallOption) (ThemeList, error) {
	var resp ThemeList
	err := c.invoke(ctx, MethodListThemes, req, &resp, opts...)
	return resp, err
}

func (c *Client) CreateTheme(ctx context.Context, req ThemeWrite, opts ...grpc.CallOption) (Theme, error) {
	var resp Theme
	err := c.invoke(ctx, MethodCreateTheme, req, &resp, opts...)
	return resp, err
}

func (c *Client) UpdateTheme(ctx context.Context, req ThemeWrite, opts ...grpc.CallOption) (Theme, error) {
	var resp Theme
	err := c.invoke(ctx, MethodUpdateTheme, req, &resp, opts...)
	return resp, err
}

func (c *Client) DeleteTheme(ctx context.Context, req ThemeKey, opts ...grpc.CallOption) (Ack, error) {
	var resp Ack
	err := c.invoke(ctx, MethodDeleteTheme, req, &resp, opts...)
	return resp, err
}

func (c *Client) ListUsers(ctx context.Context, req UserQuery, opts ...grpc.CallOption) (UserList, error) {
	var resp UserList
	err := c.invoke(ctx, MethodListUsers, req, &resp, opts...)
	return resp, err
}

func (c *Client) GetUser(ctx context.Context, req UserRef, opts ...grpc.CallOption) (UserCard, error) {
	var resp UserCard
	err := c.invoke(ctx, MethodGetUser, req, &resp, opts...)
	return resp, err
}

func (c *Client) CreateUser(ctx context.Context, req NewUser, opts ...grpc.CallOption) (CreatedUser, error) {
	var resp CreatedUser
	err := c.invoke(ctx, MethodCreateUser, req, &resp, opts...)
	return resp, err
}

// ThemeWatch receives theme list states from a WatchThemes stream.
type ThemeWatch struct {
	stream grpc.ClientStream
}

// WatchThemes opens a server stream of theme list states for the query.
// The stream ends when ctx is cancelled.
func (c *Client) WatchThemes(ctx context.Context, req ThemeQuery, opts ...grpc.CallOption) (*ThemeWatch, error) {
	in, err := Encode(req)
	if err != nil {
		return nil, err
	}
	stream, err := c.cc.NewStream(ctx, &ThemesServiceDesc.Streams[0], MethodWatchThemes, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, fmt.Errorf("failed to send watch request: %w", err)
	}
	if err := stream.CloseSend(); err != nil {
		return nil, fmt.Errorf("failed to close send side: %w", err)
	}
	return &ThemeWatch{stream: stream}, nil
}

// Recv blocks until the next state arrives. It returns io.EOF when the
// server ends the stream.
func (w *ThemeWatch) Recv() (ThemeList, error) {
	out := new(structpb.Struct)
	if err := w.stream.RecvMsg(out); err != nil {
		return ThemeList{}, err
	}
	var list ThemeList
	err := Decode(out, &list)
	return list, err
}
