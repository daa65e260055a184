package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"github.com/and161185/calcapi/internal/convert"
)

// Client is a typed CalcAPI client over any connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a client connection.
func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

// Calculate calls CalcAPI.Calculate.
func (c *Client) Calculate(ctx context.Context, in *CalculateRequest, opts ...grpc.CallOption) (*convert.ResultResponse, error) {
	out := new(convert.ResultResponse)
	if err := c.invoke(ctx, "Calculate", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Evaluate calls CalcAPI.Evaluate.
func (c *Client) Evaluate(ctx context.Context, in *EvaluateRequest, opts ...grpc.CallOption) (*convert.ResultResponse, error) {
	out := new(convert.ResultResponse)
	if err := c.invoke(ctx, "Evaluate", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUser calls CalcAPI.CreateUser.
func (c *Client) CreateUser(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*convert.UserResponse, error) {
	out := new(convert.UserResponse)
	if err := c.invoke(ctx, "CreateUser", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser calls CalcAPI.GetUser.
func (c *Client) GetUser(ctx context.Context, in *UserIDRequest, opts ...grpc.CallOption) (*convert.UserResponse, error) {
	out := new(convert.UserResponse)
	if err := c.invoke(ctx, "GetUser", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUser calls CalcAPI.UpdateUser.
func (c *Client) UpdateUser(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*convert.UserResponse, error) {
	out := new(convert.UserResponse)
	if err := c.invoke(ctx, "UpdateUser", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteUser calls CalcAPI.DeleteUser.
func (c *Client) DeleteUser(ctx context.Context, in *UserIDRequest, opts ...grpc.CallOption) (*convert.MessageResponse, error) {
	out := new(convert.MessageResponse)
	if err := c.invoke(ctx, "DeleteUser", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
