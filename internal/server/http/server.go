// Package httpserver exposes the calculator and user services as a JSON REST API.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/and161185/calcapi/internal/convert"
	"github.com/and161185/calcapi/internal/errs"
	"github.com/and161185/calcapi/internal/model"
	"github.com/and161185/calcapi/internal/service"
	"github.com/and161185/calcapi/internal/validate"
)

// Service metadata reported by the root endpoint.
const (
	APIName    = "Calculator API with User Management"
	APIVersion = "1.0.0"
)

// Server wires services into HTTP handlers.
type Server struct {
	calc  service.CalcService
	users service.UserService
	log   *zap.Logger
}

// New constructs an HTTP server with injected services.
func New(calc service.CalcService, users service.UserService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{calc: calc, users: users, log: log}
}

// Handler returns the routed handler wrapped in the standard middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.root)
	mux.HandleFunc("GET /healthz", s.health)

	for _, op := range model.Operations {
		mux.HandleFunc("GET /calculator/"+string(op)+"/{a}/{b}", s.calculate(op))
	}
	mux.HandleFunc("POST /calculator/evaluate", s.evaluate)

	mux.HandleFunc("POST /users/{user_id}", s.createUser)
	mux.HandleFunc("GET /users/{user_id}", s.getUser)
	mux.HandleFunc("PUT /users/{user_id}", s.updateUser)
	mux.HandleFunc("DELETE /users/{user_id}", s.deleteUser)

	return Chain(jsonFallback(mux), RequestID(), Logging(s.log), Recover(s.log))
}

// --- Meta ---

func (s *Server) root(w http.ResponseWriter, _ *http.Request) {
	calc := map[string]string{}
	for _, op := range model.Operations {
		calc[string(op)] = "/calculator/" + string(op) + "/{a}/{b}"
	}
	calc["evaluate"] = "/calculator/evaluate"

	writeJSON(w, http.StatusOK, map[string]any{
		"api_name":    APIName,
		"version":     APIVersion,
		"description": "REST API for mathematical operations and user management",
		"endpoints": map[string]any{
			"root":       "/",
			"health":     "/healthz",
			"calculator": calc,
			"users": map[string]string{
				"create": "/users/{user_id}",
				"read":   "/users/{user_id}",
				"update": "/users/{user_id}",
				"delete": "/users/{user_id}",
			},
		},
		"status": "online",
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	n, err := s.users.Count(r.Context())
	if err != nil {
		s.fail(w, r, err, "Health check failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "users": n})
}

// --- Calculator ---

func (s *Server) calculate(op model.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := validate.Operand("a", r.PathValue("a"))
		if err != nil {
			s.fail(w, r, err, "Calculation error")
			return
		}
		b, err := validate.Operand("b", r.PathValue("b"))
		if err != nil {
			s.fail(w, r, err, "Calculation error")
			return
		}
		v, err := s.calc.Calculate(r.Context(), op, a, b)
		if err != nil {
			s.fail(w, r, err, "Calculation error")
			return
		}
		writeJSON(w, http.StatusOK, convert.ToResultResponse(v))
	}
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) {
	expr, err := validate.DecodeExpressionBody(r.Body)
	if err != nil {
		s.fail(w, r, err, "Calculation error")
		return
	}
	v, err := s.calc.Evaluate(r.Context(), expr)
	if err != nil {
		s.fail(w, r, err, "Calculation error")
		return
	}
	writeJSON(w, http.StatusOK, convert.ToResultResponse(v))
}

// --- Users ---

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	id, name, ok := s.userInput(w, r, "User creation failed")
	if !ok {
		return
	}
	u, err := s.users.Create(r.Context(), id, name)
	if err != nil {
		s.fail(w, r, err, "User creation failed")
		return
	}
	writeJSON(w, http.StatusCreated, convert.ToUserResponse(u))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := validate.UserID(r.PathValue("user_id"))
	if err != nil {
		s.fail(w, r, err, "Invalid request")
		return
	}
	u, err := s.users.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, convert.ToUserResponse(u))
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, name, ok := s.userInput(w, r, "User update failed")
	if !ok {
		return
	}
	u, err := s.users.Update(r.Context(), id, name)
	if err != nil {
		s.fail(w, r, err, "User update failed")
		return
	}
	writeJSON(w, http.StatusOK, convert.ToUserResponse(u))
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := validate.UserID(r.PathValue("user_id"))
	if err != nil {
		s.fail(w, r, err, "Invalid request")
		return
	}
	if err := s.users.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err, "User deletion failed")
		return
	}
	writeJSON(w, http.StatusOK, convert.UserDeleted())
}

// userInput parses the path id and the JSON body; both are checked before any lookup.
func (s *Server) userInput(w http.ResponseWriter, r *http.Request, prefix string) (int64, string, bool) {
	id, err := validate.UserID(r.PathValue("user_id"))
	if err != nil {
		s.fail(w, r, err, prefix)
		return 0, "", false
	}
	name, err := validate.DecodeUserBody(r.Body)
	if err != nil {
		s.fail(w, r, err, prefix)
		return 0, "", false
	}
	return id, name, true
}

// --- errors ---

// StatusFor maps a domain error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidInput),
		errors.Is(err, errs.ErrDivisionByZero),
		errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, prefix string) {
	code := StatusFor(err)
	var detail string
	switch {
	case errors.Is(err, errs.ErrDivisionByZero):
		detail = "Division by zero is not allowed"
	case code == http.StatusInternalServerError:
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFromCtx(r.Context())),
			zap.Error(err),
		)
		detail = "internal error"
	case code == http.StatusServiceUnavailable:
		detail = "request canceled"
	default:
		detail = prefix + ": " + err.Error()
	}
	writeJSON(w, code, convert.ErrorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
