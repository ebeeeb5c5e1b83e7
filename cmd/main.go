package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/Vasu1712/scenyx-remote/internal/api/remote"
	"github.com/Vasu1712/scenyx-remote/internal/config"
	"github.com/Vasu1712/scenyx-remote/internal/logging"
	"github.com/Vasu1712/scenyx-remote/internal/middleware"
	"github.com/Vasu1712/scenyx-remote/internal/session"
	"github.com/Vasu1712/scenyx-remote/internal/storage/valkey"
	"github.com/Vasu1712/scenyx-remote/internal/ws"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("scenyx-remote stopped")
	}
}

func run() error {
	cfg, err := config.Load(".env", os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := logging.Setup(cfg.LogLevel, cfg.PrettyLogs); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := session.New(session.Config{
		Address:   cfg.OBSAddress,
		Password:  cfg.OBSPassword,
		InputKind: cfg.InputKind,
	})
	defer sess.Deactivate()

	hub := ws.NewHub()
	go hub.Run(ctx)
	defer sess.Watch(hub.Publish)()
	hub.Publish(sess.Snapshot())

	if cfg.ValkeyAddress != "" {
		publisher, err := valkey.NewPublisher(cfg.ValkeyAddress, cfg.ValkeyChannel)
		if err != nil {
			log.Warn().Err(err).Msg("snapshot publishing disabled")
		} else {
			go publisher.Run(ctx)
			defer sess.Watch(publisher.Enqueue)()
			log.Info().Str("address", cfg.ValkeyAddress).Str("channel", publisher.Channel()).Msg("publishing snapshots to valkey")
		}
	}

	handler := &remote.RemoteHandler{Session: sess, Hub: hub, AllowedOrigin: cfg.CORSOrigin}
	router := remote.NewRouter(handler, middleware.RequireToken(cfg.JWTSecret))
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           middleware.CORS(cfg.CORSOrigin)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// SIGUSR1 and SIGUSR2 stand in for the control surface being shown and hidden.
	visibility := make(chan os.Signal, 1)
	signal.Notify(visibility, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(visibility)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-visibility:
				if sig == syscall.SIGUSR2 {
					sess.Deactivate()
					continue
				}
				go activate(ctx, sess)
			}
		}
	}()

	go activate(ctx, sess)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("server started")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func activate(ctx context.Context, sess *session.Session) {
	if err := sess.Activate(ctx); err != nil {
		log.Warn().Err(err).Msg("obs not connected; activate again to retry")
	}
}
