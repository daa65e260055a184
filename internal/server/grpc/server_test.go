package grpcserver

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/and161185/calcapi/internal/errs"
	"github.com/and161185/calcapi/internal/model"
	"github.com/and161185/calcapi/internal/repository/memory"
	"github.com/and161185/calcapi/internal/service"
)

const bufSize = 1 << 20

func startBufGRPC(t *testing.T, srv CalcAPIServer) (*grpc.ClientConn, func()) {
	t.Helper()
	return startBufGRPCWithLogger(t, srv, zaptest.NewLogger(t))
}

func startBufGRPCWithLogger(t *testing.T, srv CalcAPIServer, log *zap.Logger) (*grpc.ClientConn, func()) {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(
		RequestIDUnary(),
		LoggingUnary(log),
		RecoverUnary(log),
	))
	Register(gs, srv)
	healthpb.RegisterHealthServer(gs, health.NewServer())
	go func() { _ = gs.Serve(lis) }()

	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	stop := func() { _ = cc.Close(); gs.Stop(); _ = lis.Close() }
	return cc, stop
}

func newRealServer() *Server {
	return New(service.NewCalcService(), service.NewUserService(memory.NewUserRepo(), 0))
}

func TestServer_E2E_Calculator(t *testing.T) {
	t.Parallel()
	cc, stop := startBufGRPC(t, newRealServer())
	defer stop()
	cl := NewClient(cc)
	ctx := context.Background()

	res, err := cl.Calculate(ctx, &CalculateRequest{Op: "sum", A: 5, B: 3})
	require.NoError(t, err)
	require.Equal(t, 8.0, res.Result)

	res, err = cl.Calculate(ctx, &CalculateRequest{Op: "divide", A: 5, B: 2})
	require.NoError(t, err)
	require.Equal(t, 2.5, res.Result)

	_, err = cl.Calculate(ctx, &CalculateRequest{Op: "divide", A: 10, B: 0})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
	require.Contains(t, status.Convert(err).Message(), "Division by zero")

	_, err = cl.Calculate(ctx, &CalculateRequest{Op: "modulo", A: 1, B: 1})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	res, err = cl.Evaluate(ctx, &EvaluateRequest{Expression: "2+2*2"})
	require.NoError(t, err)
	require.Equal(t, 6.0, res.Result)
}

func TestServer_E2E_UserLifecycle(t *testing.T) {
	t.Parallel()
	cc, stop := startBufGRPC(t, newRealServer())
	defer stop()
	cl := NewClient(cc)
	ctx := context.Background()

	var hdr metadata.MD
	u, err := cl.CreateUser(ctx, &UserRequest{ID: 1, Name: "Alice"}, grpc.Header(&hdr))
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, "Alice", u.Name)
	require.Len(t, hdr.Get(RequestIDHeader), 1)

	_, err = cl.CreateUser(ctx, &UserRequest{ID: 1, Name: "Jane"})
	require.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = cl.CreateUser(ctx, &UserRequest{ID: 2, Name: " "})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	u, err = cl.UpdateUser(ctx, &UserRequest{ID: 1, Name: "Bob"})
	require.NoError(t, err)
	require.Equal(t, "Bob", u.Name)

	u, err = cl.GetUser(ctx, &UserIDRequest{ID: 1})
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, "Bob", u.Name)

	msg, err := cl.DeleteUser(ctx, &UserIDRequest{ID: 1})
	require.NoError(t, err)
	require.Equal(t, "User successfully deleted", msg.Message)

	_, err = cl.GetUser(ctx, &UserIDRequest{ID: 1})
	require.Equal(t, codes.NotFound, status.Code(err))
	_, err = cl.UpdateUser(ctx, &UserRequest{ID: 42, Name: "X"})
	require.Equal(t, codes.NotFound, status.Code(err))
	_, err = cl.DeleteUser(ctx, &UserIDRequest{ID: 1})
	require.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_Health(t *testing.T) {
	t.Parallel()
	cc, stop := startBufGRPC(t, newRealServer())
	defer stop()

	resp, err := healthpb.NewHealthClient(cc).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

type panicUsers struct{ service.UserService }

func (panicUsers) Get(context.Context, int64) (model.User, error) { panic("boom") }

func TestServer_PanicBecomesInternal(t *testing.T) {
	t.Parallel()
	cc, stop := startBufGRPC(t, New(service.NewCalcService(), panicUsers{}))
	defer stop()

	_, err := NewClient(cc).GetUser(context.Background(), &UserIDRequest{ID: 1})
	require.Equal(t, codes.Internal, status.Code(err))
}

func Test_toStatus(t *testing.T) {
	t.Parallel()
	cases := []struct {
		err  error
		want codes.Code
	}{
		{errs.ErrInvalidInput, codes.InvalidArgument},
		{errs.ErrDivisionByZero, codes.InvalidArgument},
		{errs.ErrNotFound, codes.NotFound},
		{errs.ErrAlreadyExists, codes.AlreadyExists},
		{context.Canceled, codes.Canceled},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("db exploded"), codes.Internal},
	}
	for _, c := range cases {
		got := toStatus(c.err, "op")
		require.Equal(t, c.want, status.Code(got), c.err.Error())
	}
	require.NotContains(t, status.Convert(toStatus(errors.New("secret"), "op")).Message(), "secret")
}
