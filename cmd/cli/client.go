package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/and161185/calcapi/internal/convert"
	"github.com/and161185/calcapi/internal/model"
	grpcserver "github.com/and161185/calcapi/internal/server/grpc"
)

// backend is the subset of the API the commands drive; HTTP and gRPC both satisfy it.
type backend interface {
	Calculate(ctx context.Context, op model.Operation, a, b float64) (convert.ResultResponse, error)
	Evaluate(ctx context.Context, expr string) (convert.ResultResponse, error)
	CreateUser(ctx context.Context, id int64, name string) (convert.UserResponse, error)
	GetUser(ctx context.Context, id int64) (convert.UserResponse, error)
	UpdateUser(ctx context.Context, id int64, name string) (convert.UserResponse, error)
	DeleteUser(ctx context.Context, id int64) (convert.MessageResponse, error)
	Close() error
}

// ---- http ----

type httpBackend struct {
	base string
	hc   *http.Client
}

func newHTTPBackend(server string, hc *http.Client) *httpBackend {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &httpBackend{base: strings.TrimRight(server, "/"), hc: hc}
}

// apiError is a non-2xx reply carrying the server's detail message.
type apiError struct {
	Status int
	Detail string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Detail)
}

func (b *httpBackend) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := b.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e convert.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Detail == "" {
			e.Detail = http.StatusText(resp.StatusCode)
		}
		return &apiError{Status: resp.StatusCode, Detail: e.Detail}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func formatOperand(v float64) string {
	return url.PathEscape(strconv.FormatFloat(v, 'g', -1, 64))
}

func userPath(id int64) string { return "/users/" + strconv.FormatInt(id, 10) }

func (b *httpBackend) Calculate(ctx context.Context, op model.Operation, x, y float64) (convert.ResultResponse, error) {
	var out convert.ResultResponse
	path := "/calculator/" + string(op) + "/" + formatOperand(x) + "/" + formatOperand(y)
	err := b.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (b *httpBackend) Evaluate(ctx context.Context, expr string) (convert.ResultResponse, error) {
	var out convert.ResultResponse
	err := b.do(ctx, http.MethodPost, "/calculator/evaluate", map[string]string{"expression": expr}, &out)
	return out, err
}

func (b *httpBackend) CreateUser(ctx context.Context, id int64, name string) (convert.UserResponse, error) {
	var out convert.UserResponse
	err := b.do(ctx, http.MethodPost, userPath(id), map[string]string{"name": name}, &out)
	return out, err
}

func (b *httpBackend) GetUser(ctx context.Context, id int64) (convert.UserResponse, error) {
	var out convert.UserResponse
	err := b.do(ctx, http.MethodGet, userPath(id), nil, &out)
	return out, err
}

func (b *httpBackend) UpdateUser(ctx context.Context, id int64, name string) (convert.UserResponse, error) {
	var out convert.UserResponse
	err := b.do(ctx, http.MethodPut, userPath(id), map[string]string{"name": name}, &out)
	return out, err
}

func (b *httpBackend) DeleteUser(ctx context.Context, id int64) (convert.MessageResponse, error) {
	var out convert.MessageResponse
	err := b.do(ctx, http.MethodDelete, userPath(id), nil, &out)
	return out, err
}

// Info fetches the root metadata document; it has no gRPC counterpart.
func (b *httpBackend) Info(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	err := b.do(ctx, http.MethodGet, "/", nil, &out)
	return out, err
}

func (b *httpBackend) Close() error { return nil }

// ---- grpc ----

type grpcBackend struct {
	conn *grpc.ClientConn
	cli  *grpcserver.Client
}

func newGRPCBackend(addr string, opts ...grpc.DialOption) (*grpcBackend, error) {
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &grpcBackend{conn: conn, cli: grpcserver.NewClient(conn)}, nil
}

// rpcErr flattens a status error the way the server reports it.
func rpcErr(err error) error {
	if s, ok := status.FromError(err); ok {
		return fmt.Errorf("rpc error: code=%s msg=%s", s.Code(), s.Message())
	}
	return err
}

func (b *grpcBackend) Calculate(ctx context.Context, op model.Operation, x, y float64) (convert.ResultResponse, error) {
	out, err := b.cli.Calculate(ctx, &grpcserver.CalculateRequest{Op: string(op), A: x, B: y})
	if err != nil {
		return convert.ResultResponse{}, rpcErr(err)
	}
	return *out, nil
}

func (b *grpcBackend) Evaluate(ctx context.Context, expr string) (convert.ResultResponse, error) {
	out, err := b.cli.Evaluate(ctx, &grpcserver.EvaluateRequest{Expression: expr})
	if err != nil {
		return convert.ResultResponse{}, rpcErr(err)
	}
	return *out, nil
}

func (b *grpcBackend) CreateUser(ctx context.Context, id int64, name string) (convert.UserResponse, error) {
	out, err := b.cli.CreateUser(ctx, &grpcserver.UserRequest{ID: id, Name: name})
	if err != nil {
		return convert.UserResponse{}, rpcErr(err)
	}
	return *out, nil
}

func (b *grpcBackend) GetUser(ctx context.Context, id int64) (convert.UserResponse, error) {
	out, err := b.cli.GetUser(ctx, &grpcserver.UserIDRequest{ID: id})
	if err != nil {
		return convert.UserResponse{}, rpcErr(err)
	}
	return *out, nil
}

func (b *grpcBackend) UpdateUser(ctx context.Context, id int64, name string) (convert.UserResponse, error) {
	out, err := b.cli.UpdateUser(ctx, &grpcserver.UserRequest{ID: id, Name: name})
	if err != nil {
		return convert.UserResponse{}, rpcErr(err)
	}
	return *out, nil
}

func (b *grpcBackend) DeleteUser(ctx context.Context, id int64) (convert.MessageResponse, error) {
	out, err := b.cli.DeleteUser(ctx, &grpcserver.UserIDRequest{ID: id})
	if err != nil {
		return convert.MessageResponse{}, rpcErr(err)
	}
	return *out, nil
}

func (b *grpcBackend) Close() error { return b.conn.Close() }
