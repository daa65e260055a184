// Command calcapi-server starts the calculator HTTP API and, optionally, its gRPC twin.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/calcapi/internal/config"
	"github.com/and161185/calcapi/internal/repository/memory"
	grpcserver "github.com/and161185/calcapi/internal/server/grpc"
	httpserver "github.com/and161185/calcapi/internal/server/http"
	"github.com/and161185/calcapi/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(start(os.Args[1:]))
}

// start returns the process exit code so deferred cleanup, including the
// logger flush, runs before os.Exit.
func start(args []string) int {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("grpc_addr", cfg.GRPCAddr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		return 1
	}
	logger.Info("shutdown complete")
	return 0
}

// run serves until ctx is done or a listener fails, then drains both servers.
func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	// Services
	userRepo := memory.NewUserRepo()
	calcSvc := service.NewCalcService()
	userSvc := service.NewUserService(userRepo, cfg.MaxNameLength)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpserver.New(calcSvc, userSvc, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	httpLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen http: %w", err)
	}

	var (
		grpcSrv *grpc.Server
		grpcLis net.Listener
	)
	if cfg.GRPCAddr != "" {
		grpcSrv = grpc.NewServer(
			grpc.ChainUnaryInterceptor(
				grpcserver.RequestIDUnary(),
				grpcserver.LoggingUnary(logger),
				grpcserver.RecoverUnary(logger),
			),
		)
		grpcserver.Register(grpcSrv, grpcserver.New(calcSvc, userSvc))

		// Health & reflection (dev)
		hs := health.NewServer()
		healthpb.RegisterHealthServer(grpcSrv, hs)
		if cfg.Dev {
			reflection.Register(grpcSrv)
		}

		grpcLis, err = net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen grpc: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening (http)", zap.String("addr", httpLis.Addr().String()))
		if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	if grpcSrv != nil {
		g.Go(func() error {
			logger.Info("listening (grpc)", zap.String("addr", grpcLis.Addr().String()))
			if err := grpcSrv.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc serve: %w", err)
			}
			return nil
		})
	}

	// Wait for stop
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
		return shutdown(cfg.ShutdownTimeout, httpSrv, grpcSrv)
	})

	return g.Wait()
}

// shutdown drains both servers in parallel, each under its own deadline.
func shutdown(timeout time.Duration, httpSrv *http.Server, grpcSrv *grpc.Server) error {
	var g errgroup.Group
	if grpcSrv != nil {
		g.Go(func() error {
			done := make(chan struct{})
			go func() {
				grpcSrv.GracefulStop()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(timeout):
				grpcSrv.Stop()
			}
			return nil
		})
	}
	g.Go(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			_ = httpSrv.Close()
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
