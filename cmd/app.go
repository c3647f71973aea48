package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"moviebook-cli/account"
	"moviebook-cli/admin"
	"moviebook-cli/booking"
	"moviebook-cli/catalog"
	"moviebook-cli/config"
	"moviebook-cli/logging"
	"moviebook-cli/model"
	"moviebook-cli/service"
	"moviebook-cli/session"
	"moviebook-cli/telemetry"
)

// app is everything a command needs, built once per run.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	client   *service.Client
	session  *session.Session
	catalog  *catalog.Reader
	accounts *account.Service
	shutdown telemetry.Shutdown
}

func newApp(ctx context.Context, configPath string, version string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, err
	}

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		CollectorAddr:  cfg.Telemetry.CollectorAddr,
	})
	if err != nil {
		logger.Warn("telemetry disabled", zap.Error(err))
		shutdown = func(context.Context) error { return nil }
	}

	sess, err := session.Restore(cfg.Booking.MaxSeats, time.Now())
	if err != nil {
		logger.Warn("restore session", zap.Error(err))
	}

	client := service.NewClient(telemetry.HTTPClient(&http.Client{Timeout: cfg.API.Timeout}))
	client.SetBaseURL(cfg.API.BaseURL)
	client.SetMaxAttempts(cfg.API.MaxAttempts)
	client.SetLogger(logger.Named("api"))
	client.SetTokenSource(sess.Token)

	logger.Debug("client ready",
		zap.String("base_url", cfg.API.BaseURL),
		zap.Bool("signed_in", sess.LoggedIn()),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		session:  sess,
		catalog:  catalog.NewReader(client, catalog.WithLogger(logger.Named("catalog"))),
		accounts: account.NewService(client, logger.Named("account")),
		shutdown: shutdown,
	}, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func (a *app) orchestrator() *booking.Orchestrator {
	return booking.New(a.client, booking.WithLogger(a.logger.Named("booking")))
}

func (a *app) console() (*admin.Console, error) {
	user := a.session.User()
	if user == nil {
		return nil, errors.New("log in with a cinema admin account first")
	}
	return admin.NewConsole(a.client, user, a.logger.Named("admin"))
}

// login stores the identity. The client picks the token up from the session.
func (a *app) login(user model.User, token string) error {
	a.session.Login(user, token)
	if err := a.session.Persist(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// check maps a rejected token to a readable error and forgets it.
func (a *app) check(err error) error {
	if err == nil || !service.IsUnauthorized(err) {
		return err
	}
	a.session.HandleUnauthorized()
	if perr := a.session.Persist(); perr != nil {
		a.logger.Warn("persist session", zap.Error(perr))
	}
	return errors.New("your session has expired, please log in again")
}
