// Package config loads process configuration from an optional .env file,
// the environment and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/Vasu1712/scenyx-remote/internal/storage/valkey"
)

const (
	DefaultOBSAddress = "localhost:4455"
	DefaultInputKind  = "coreaudio_input_capture"
	DefaultListenAddr = ":8080"
	DefaultCORSOrigin = "http://127.0.0.1:5173"
)

// Config is everything the binary needs to start.
type Config struct {
	OBSAddress  string
	OBSPassword string
	InputKind   string

	ListenAddr string
	CORSOrigin string
	JWTSecret  string // Empty disables auth on command routes

	ValkeyAddress string // Empty disables the snapshot publisher
	ValkeyChannel string

	LogLevel   string
	PrettyLogs bool
}

// Load reads envFile if it exists, then the environment, then args.
// A missing envFile is not an error.
func Load(envFile string, args []string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	pretty, err := envBool("LOG_PRETTY", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	flags := pflag.NewFlagSet("scenyx-remote", pflag.ContinueOnError)
	flags.StringVar(&cfg.OBSAddress, "obs-address", env("OBS_ADDRESS", DefaultOBSAddress), "obs-websocket host:port")
	flags.StringVar(&cfg.OBSPassword, "obs-password", env("OBS_PASSWORD", ""), "obs-websocket password")
	flags.StringVar(&cfg.InputKind, "input-kind", env("OBS_INPUT_KIND", DefaultInputKind), "input kind whose mute state is mirrored")
	flags.StringVar(&cfg.ListenAddr, "listen", env("LISTEN_ADDR", DefaultListenAddr), "HTTP listen address")
	flags.StringVar(&cfg.CORSOrigin, "cors-origin", env("CORS_ORIGIN", DefaultCORSOrigin), "allowed CORS origin")
	flags.StringVar(&cfg.JWTSecret, "jwt-secret", env("JWT_SECRET", ""), "HS256 secret for command routes (empty disables auth)")
	flags.StringVar(&cfg.ValkeyAddress, "valkey-address", env("VALKEY_ADDRESS", ""), "valkey host:port for snapshot publishing")
	flags.StringVar(&cfg.ValkeyChannel, "valkey-channel", env("VALKEY_CHANNEL", valkey.DefaultChannel), "valkey channel for snapshots")
	flags.StringVar(&cfg.LogLevel, "log-level", env("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	flags.BoolVar(&cfg.PrettyLogs, "log-pretty", pretty, "human readable console logs")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if extra := flags.Args(); len(extra) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", extra[0])
	}
	if cfg.OBSAddress == "" {
		return nil, errors.New("obs address must not be empty")
	}
	return cfg, nil
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
