package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-school-session/auth"
	"github.com/jrsteele09/go-school-session/identity"
	"github.com/jrsteele09/go-school-session/internal/config"
	"github.com/jrsteele09/go-school-session/oauthclient"
	"github.com/jrsteele09/go-school-session/server"
	"github.com/jrsteele09/go-school-session/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running session agent")
	}
	log.Info().Msg("Session agent stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load()
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx := context.Background()

	backend, closeBackend, err := openBackend(ctx, c)
	if err != nil {
		return err
	}
	defer closeBackend()

	gateway, err := identity.NewClient(identity.Config{
		BaseURL:          c.GetBackendBaseURL(),
		LoginPath:        c.GetLoginPath(),
		MemberSignupPath: c.GetMemberSignupPath(),
		ParentSignupPath: c.GetParentSignupPath(),
		ProfilePath:      c.GetProfilePath(),
		RedirectURL:      c.GetRedirectURL(),
		Timeout:          c.GetBackendTimeout(),
	})
	if err != nil {
		return fmt.Errorf("identity.NewClient: %w", err)
	}

	authorizer, err := oauthclient.NewAuthorizer(ctx, oauthclient.Config{
		ClientID:    c.GetClientID(),
		RedirectURL: c.GetRedirectURL(),
		AuthURL:     c.GetAuthURL(),
		TokenURL:    c.GetTokenURL(),
		Issuer:      c.GetIssuer(),
		Scopes:      c.GetScopes(),
	})
	if err != nil {
		return fmt.Errorf("oauthclient.NewAuthorizer: %w", err)
	}

	store := session.NewStore(backend, session.WithKeyPrefix(c.GetStoreKeyPrefix()))
	controller, err := auth.NewSessionController(gateway, store, auth.WithLogger(log.Logger))
	if err != nil {
		return fmt.Errorf("auth.NewSessionController: %w", err)
	}
	snap := controller.Restore(ctx)
	log.Info().Str("state", string(snap.State)).Msg("Session restored")

	handler, err := server.New(c, controller, authorizer)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	srv := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(srv) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

// openBackend builds the session backend chosen by SESSION_BACKEND.
func openBackend(ctx context.Context, c config.Config) (session.Backend, func(), error) {
	noop := func() {}
	switch c.GetStoreKind() {
	case config.StoreKindMemory:
		log.Warn().Msg("Using in-memory session storage, the session is lost on restart")
		return session.NewMemoryBackend(), noop, nil
	case config.StoreKindRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", c.GetRedisAddr(), err)
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Using redis session storage")
		return session.NewRedisBackend(client), func() { _ = client.Close() }, nil
	case config.StoreKindPostgres:
		backend, err := session.OpenPostgres(ctx, c.GetDatabaseURL())
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("Using postgres session storage")
		return backend, backend.Close, nil
	default:
		var options []session.FileOption
		if key := c.GetStoreFileKey(); key != "" {
			options = append(options, session.WithSealKey(key))
		}
		backend := session.NewFileBackend(c.GetStoreFilePath(), options...)
		log.Info().Str("path", backend.Path()).Bool("sealed", len(options) > 0).Msg("Using file session storage")
		return backend, noop, nil
	}
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
}

func listenAndServe(srv *http.Server) error {
	log.Info().Msgf("Session agent listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
