// Command calcctl is a CLI client for the calculator API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/and161185/calcapi/internal/model"
	"github.com/and161185/calcapi/internal/validate"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the global flags shared by every subcommand.
type app struct {
	out      io.Writer
	server   string
	grpcAddr string
	timeout  time.Duration

	// dialOpts replaces the default insecure transport when set.
	dialOpts []grpc.DialOption
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "calcctl",
		Short: "Client for the calculator API with user management",
		Long: `calcctl calls a running calculator API server.

Requests go over HTTP by default. Pass --grpc HOST:PORT to use the gRPC
transport instead. Use -- before negative operands, e.g. calcctl sum -- -1 2.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetOut(a.out)

	root.PersistentFlags().StringVar(&a.server, "server", "http://localhost:8000", "HTTP server base URL")
	root.PersistentFlags().StringVar(&a.grpcAddr, "grpc", "", "gRPC server address; overrides --server")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "request timeout")

	for _, op := range model.Operations {
		root.AddCommand(a.calcCmd(op))
	}
	root.AddCommand(a.evalCmd(), a.userCmd(), a.infoCmd(), a.versionCmd())
	return root
}

// ---- helpers ----

func (a *app) backend() (backend, error) {
	if a.grpcAddr == "" {
		return newHTTPBackend(a.server, nil), nil
	}
	opts := a.dialOpts
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	return newGRPCBackend(a.grpcAddr, opts...)
}

// call runs fn against the selected backend and prints its result.
func (a *app) call(cmd *cobra.Command, fn func(context.Context, backend) (any, error)) error {
	b, err := a.backend()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()

	v, err := fn(ctx, b)
	if err != nil {
		return err
	}
	return a.printJSON(v)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ---- commands ----

func (a *app) calcCmd(op model.Operation) *cobra.Command {
	return &cobra.Command{
		Use:   string(op) + " <a> <b>",
		Short: "Compute " + string(op) + "(a, b)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := validate.Operand("a", args[0])
			if err != nil {
				return err
			}
			y, err := validate.Operand("b", args[1])
			if err != nil {
				return err
			}
			return a.call(cmd, func(ctx context.Context, b backend) (any, error) {
				return b.Calculate(ctx, op, x, y)
			})
		},
	}
}

func (a *app) evalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an arithmetic expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr := strings.Join(args, " ")
			return a.call(cmd, func(ctx context.Context, b backend) (any, error) {
				return b.Evaluate(ctx, expr)
			})
		},
	}
}

func (a *app) userCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	user.AddCommand(
		&cobra.Command{
			Use:   "create <id> <name>",
			Short: "Create a user",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := validate.UserID(args[0])
				if err != nil {
					return err
				}
				name := strings.Join(args[1:], " ")
				return a.call(cmd, func(ctx context.Context, b backend) (any, error) {
					return b.CreateUser(ctx, id, name)
				})
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := validate.UserID(args[0])
				if err != nil {
					return err
				}
				return a.call(cmd, func(ctx context.Context, b backend) (any, error) {
					return b.GetUser(ctx, id)
				})
			},
		},
		&cobra.Command{
			Use:   "update <id> <name>",
			Short: "Rename a user",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := validate.UserID(args[0])
				if err != nil {
					return err
				}
				name := strings.Join(args[1:], " ")
				return a.call(cmd, func(ctx context.Context, b backend) (any, error) {
					return b.UpdateUser(ctx, id, name)
				})
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := validate.UserID(args[0])
				if err != nil {
					return err
				}
				return a.call(cmd, func(ctx context.Context, b backend) (any, error) {
					return b.DeleteUser(ctx, id)
				})
			},
		},
	)
	return user
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show server metadata (HTTP only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.grpcAddr != "" {
				return errors.New("info is only served over HTTP; drop --grpc")
			}
			return a.call(cmd, func(ctx context.Context, b backend) (any, error) {
				return b.(*httpBackend).Info(ctx)
			})
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(a.out, "calcctl %s (%s)\n", version, buildDate)
			return err
		},
	}
}
