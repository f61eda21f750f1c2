package service

import (
	"context"
	"io"
	"os"
	"time"

	"thermolog/internal/config"
	"thermolog/internal/logger"
	"thermolog/internal/models"
	"thermolog/internal/repository"
)

type Authorization interface {
	// Enabled reports whether a signing key is configured.
	Enabled() bool
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Recorder runs the serial read loop. Stop via context cancellation.
type Recorder interface {
	Run(ctx context.Context) error
	Handle(ctx context.Context, message string) error
}

// Monitoring exposes the latest recorder snapshot.
type Monitoring interface {
	GetState(ctx context.Context) (models.ThermoState, error)
}

// LogQuery exposes read access to the retention-managed logs.
type LogQuery interface {
	List(ctx context.Context, f LogFilter) ([]models.LogEntry, error)
}

type Service struct {
	Recorder
	Monitoring
	LogQuery
	Authorization
}

// Options carries what the services need beyond the repositories.
type Options struct {
	Source               LineSource
	Echo                 io.Writer // defaults to os.Stdout
	Log                  *logger.Logger
	InvalidReadingPolicy string // config.PolicySkip or config.PolicyTerminate
	ReadRetryDelay       time.Duration
	Auth                 config.AuthConfig
	Now                  func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Echo == nil {
		o.Echo = os.Stdout
	}
	if o.Log == nil {
		o.Log = logger.Nop()
	}
	if o.InvalidReadingPolicy == "" {
		o.InvalidReadingPolicy = config.PolicySkip
	}
	if o.ReadRetryDelay <= 0 {
		o.ReadRetryDelay = defaultReadRetryDelay
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// NewService wires the repository layer into the concrete services.
func NewService(repos *repository.Repository, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		Recorder:      NewRecorderService(opts.Source, repos, opts),
		Monitoring:    NewMonitoringService(repos.StateRepo, opts.Now),
		LogQuery:      NewLogQueryService(repos),
		Authorization: NewAuthService(repos.Auth, opts.Auth),
	}
}
