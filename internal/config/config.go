// Package config loads server settings from an optional YAML file and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds server settings. Flags override values read from the file.
type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	GRPCAddr        string        `yaml:"grpc_addr"`
	LogLevel        string        `yaml:"log_level"`
	Dev             bool          `yaml:"dev"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxNameLength   int           `yaml:"max_name_length"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HTTPAddr:        ":8000",
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
		MaxNameLength:   128,
	}
}

// Load parses args (without the program name). A -config file is applied
// first, then any flag given explicitly on the command line.
func Load(args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("calcapi", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.String("config", "", "path to a YAML config file")
	httpAddr := fs.String("http-addr", cfg.HTTPAddr, "HTTP listen address")
	grpcAddr := fs.String("grpc-addr", cfg.GRPCAddr, "gRPC listen address (empty disables gRPC)")
	level := fs.String("log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	dev := fs.Bool("dev", cfg.Dev, "development logging and gRPC reflection")
	timeout := fs.Duration("shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
	maxName := fs.Int("max-name-length", cfg.MaxNameLength, "maximum user name length in runes")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	if *path != "" {
		if err := cfg.readFile(*path); err != nil {
			return Config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "http-addr":
			cfg.HTTPAddr = *httpAddr
		case "grpc-addr":
			cfg.GRPCAddr = *grpcAddr
		case "log-level":
			cfg.LogLevel = *level
		case "dev":
			cfg.Dev = *dev
		case "shutdown-timeout":
			cfg.ShutdownTimeout = *timeout
		case "max-name-length":
			cfg.MaxNameLength = *maxName
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("http_addr must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown_timeout must be positive")
	}
	if c.MaxNameLength <= 0 {
		return errors.New("max_name_length must be positive")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// NewLogger builds a production logger, or a development one when Dev is set.
func (c Config) NewLogger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.Dev {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
