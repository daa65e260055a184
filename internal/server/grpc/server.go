// Package grpcserver exposes the calculator and user services over gRPC.
//
// Messages are plain Go structs carried by the JSON codec registered in this
// package; clients must call with grpc.CallContentSubtype(CodecName).
package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/and161185/calcapi/internal/convert"
	"github.com/and161185/calcapi/internal/errs"
	"github.com/and161185/calcapi/internal/model"
	"github.com/and161185/calcapi/internal/service"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "calcapi.v1.CalcAPI"

// CalculateRequest applies Op to A and B.
type CalculateRequest struct {
	Op string  `json:"op"`
	A  float64 `json:"a"`
	B  float64 `json:"b"`
}

// EvaluateRequest evaluates an arithmetic expression.
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

// UserRequest carries a user ID and name for create and update.
type UserRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserIDRequest addresses a single user.
type UserIDRequest struct {
	ID int64 `json:"id"`
}

// CalcAPIServer is the server API for the CalcAPI service.
type CalcAPIServer interface {
	Calculate(context.Context, *CalculateRequest) (*convert.ResultResponse, error)
	Evaluate(context.Context, *EvaluateRequest) (*convert.ResultResponse, error)
	CreateUser(context.Context, *UserRequest) (*convert.UserResponse, error)
	GetUser(context.Context, *UserIDRequest) (*convert.UserResponse, error)
	UpdateUser(context.Context, *UserRequest) (*convert.UserResponse, error)
	DeleteUser(context.Context, *UserIDRequest) (*convert.MessageResponse, error)
}

// Server wires services into gRPC handlers.
type Server struct {
	calc  service.CalcService
	users service.UserService
}

var _ CalcAPIServer = (*Server)(nil)

// New constructs a gRPC server with injected services.
func New(calc service.CalcService, users service.UserService) *Server {
	return &Server{calc: calc, users: users}
}

// Register attaches srv to a grpc.Server.
func Register(s grpc.ServiceRegistrar, srv CalcAPIServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Calculator ---

// Calculate applies a binary operation.
func (s *Server) Calculate(ctx context.Context, req *CalculateRequest) (*convert.ResultResponse, error) {
	op := model.Operation(req.Op)
	if !op.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown operation %q", req.Op)
	}
	v, err := s.calc.Calculate(ctx, op, req.A, req.B)
	if err != nil {
		return nil, toStatus(err, "calculate")
	}
	res := convert.ToResultResponse(v)
	return &res, nil
}

// Evaluate computes an arithmetic expression.
func (s *Server) Evaluate(ctx context.Context, req *EvaluateRequest) (*convert.ResultResponse, error) {
	v, err := s.calc.Evaluate(ctx, req.Expression)
	if err != nil {
		return nil, toStatus(err, "evaluate")
	}
	res := convert.ToResultResponse(v)
	return &res, nil
}

// --- Users ---

// CreateUser registers a new user.
func (s *Server) CreateUser(ctx context.Context, req *UserRequest) (*convert.UserResponse, error) {
	u, err := s.users.Create(ctx, req.ID, req.Name)
	if err != nil {
		return nil, toStatus(err, "create user")
	}
	res := convert.ToUserResponse(u)
	return &res, nil
}

// GetUser returns a user by id.
func (s *Server) GetUser(ctx context.Context, req *UserIDRequest) (*convert.UserResponse, error) {
	u, err := s.users.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err, "get user")
	}
	res := convert.ToUserResponse(u)
	return &res, nil
}

// UpdateUser renames an existing user.
func (s *Server) UpdateUser(ctx context.Context, req *UserRequest) (*convert.UserResponse, error) {
	u, err := s.users.Update(ctx, req.ID, req.Name)
	if err != nil {
		return nil, toStatus(err, "update user")
	}
	res := convert.ToUserResponse(u)
	return &res, nil
}

// DeleteUser removes an existing user.
func (s *Server) DeleteUser(ctx context.Context, req *UserIDRequest) (*convert.MessageResponse, error) {
	if err := s.users.Delete(ctx, req.ID); err != nil {
		return nil, toStatus(err, "delete user")
	}
	res := convert.UserDeleted()
	return &res, nil
}

// toStatus maps domain sentinels to gRPC codes; anything unrecognized is Internal.
func toStatus(err error, op string) error {
	switch {
	case errors.Is(err, errs.ErrDivisionByZero):
		return status.Error(codes.InvalidArgument, "Division by zero is not allowed")
	case errors.Is(err, errs.ErrInvalidInput):
		return status.Errorf(codes.InvalidArgument, "%s: %v", op, err)
	case errors.Is(err, errs.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s: %v", op, err)
	case errors.Is(err, errs.ErrAlreadyExists):
		return status.Errorf(codes.AlreadyExists, "%s: %v", op, err)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Error(codes.Internal, "internal")
	}
}

// --- service descriptor ---

func unary[Req any](method string, call func(CalcAPIServer, context.Context, *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "decode: %v", err)
			}
			h := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CalcAPIServer), ctx, req.(*Req))
			}
			if ic == nil {
				return h(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			return ic(ctx, in, info, h)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalcAPIServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Calculate", func(s CalcAPIServer, ctx context.Context, in *CalculateRequest) (any, error) {
			return s.Calculate(ctx, in)
		}),
		unary("Evaluate", func(s CalcAPIServer, ctx context.Context, in *EvaluateRequest) (any, error) {
			return s.Evaluate(ctx, in)
		}),
		unary("CreateUser", func(s CalcAPIServer, ctx context.Context, in *UserRequest) (any, error) {
			return s.CreateUser(ctx, in)
		}),
		unary("GetUser", func(s CalcAPIServer, ctx context.Context, in *UserIDRequest) (any, error) {
			return s.GetUser(ctx, in)
		}),
		unary("UpdateUser", func(s CalcAPIServer, ctx context.Context, in *UserRequest) (any, error) {
			return s.UpdateUser(ctx, in)
		}),
		unary("DeleteUser", func(s CalcAPIServer, ctx context.Context, in *UserIDRequest) (any, error) {
			return s.DeleteUser(ctx, in)
		}),
	},
	Streams: []grpc.StreamDesc{},
}
