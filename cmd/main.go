package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"thermolog/internal/config"
	"thermolog/internal/handlers"
	"thermolog/internal/logger"
	"thermolog/internal/observability"
	"thermolog/internal/repository"
	"thermolog/internal/repository/db"
	"thermolog/internal/serialport"
	"thermolog/internal/server"
	"thermolog/internal/service"
)

// @title           Thermolog API
// @version         1.0
// @description     Read-only access to a serial temperature logger: live state, retained logs and metrics.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.

const (
	exitOK           = 0
	exitFailure      = 1 // config, storage or invalid reading under the terminate policy
	exitUsage        = -1
	exitPortNotFound = -2

	usage = "Usage: thermolog [port]"

	// simulatedPort selects the built-in probe simulator instead of a device.
	simulatedPort = "sim://"

	shutdownTimeout = 10 * time.Second
)

// lineSource is a serial port or the simulator.
type lineSource interface {
	ReadLine() (string, error)
	Close() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// run is the whole program; stdout receives usage, the port error and the echoed readings.
func run(ctx context.Context, args []string, stdout io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stdout, usage)
		return exitUsage
	}
	portName := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
		return exitFailure
	}

	// init logger
	log := logger.GetWithEncoding(cfg.Log.Level, cfg.Log.Encoding)
	defer func() { _ = log.Sync() }()

	flushSentry, sentryOn, err := observability.InitSentry(cfg.Sentry)
	if err != nil {
		log.Warnw("sentry_init_failed", "err", err)
	}
	defer flushSentry()
	log.Infow("starting", "port", portName, "backend", cfg.Storage.Backend,
		"policy", cfg.Recorder.InvalidReadingPolicy, "http", cfg.HTTP.Enabled, "sentry", sentryOn)

	src, err := openSource(portName)
	if err != nil {
		log.Errorw("serial_open_failed", "port", portName, "err", err)
		fmt.Fprintf(stdout, "Failed to open port '%s'! Terminating...\n", portName)
		return exitPortNotFound
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.Warnw("serial_close_failed", "err", cerr)
		}
	}()

	repos, closeStore, err := openRepository(cfg)
	if err != nil {
		log.Errorw("storage_init_failed", "backend", cfg.Storage.Backend, "err", err)
		observability.CaptureError(err, map[string]string{"op": "storage_init"}, nil)
		return exitFailure
	}
	defer closeStore(log)

	// wire dependencies
	services := service.NewService(repos, service.Options{
		Source:               src,
		Echo:                 stdout,
		Log:                  log,
		InvalidReadingPolicy: cfg.Recorder.InvalidReadingPolicy,
		ReadRetryDelay:       serialport.ReadTimeout,
		Auth:                 cfg.Auth,
	})

	srv := runHTTPServer(cfg, services, log)

	loopErr := services.Recorder.Run(ctx)

	shutdownHTTPServer(srv, log)

	if loopErr != nil {
		log.Errorw("recorder_failed", "err", loopErr)
		if !errors.Is(loopErr, service.ErrInvalidReading) {
			observability.CaptureError(loopErr, map[string]string{"op": "recorder"}, nil)
		}
		return exitFailure
	}
	log.Infow("shutdown_complete")
	return exitOK
}

func openSource(name string) (lineSource, error) {
	if strings.HasPrefix(name, simulatedPort) {
		return service.NewSimulatorSource(serialport.ReadTimeout, time.Now().UnixNano()), nil
	}
	p, err := serialport.Open(name)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// openRepository builds the configured storage backend. The returned func
// releases it.
func openRepository(cfg *config.Config) (*repository.Repository, func(*logger.Logger), error) {
	auth := repository.NewConfigUserRepository(cfg.Auth.Username, cfg.Auth.PasswordHash)

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		conn, err := db.InitDB(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func(log *logger.Logger) {
			if cerr := conn.Close(); cerr != nil {
				log.Warnw("failed to close sqlite", "err", cerr)
			}
		}
		return repository.NewSQLiteRepository(conn, auth), closeDB, nil
	default:
		if err := os.MkdirAll(cfg.Storage.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir %q: %w", cfg.Storage.Dir, err)
		}
		return repository.NewFileRepository(cfg.Storage.Dir, auth), func(*logger.Logger) {}, nil
	}
}

// runHTTPServer starts the API in a separate goroutine; nil when disabled.
func runHTTPServer(cfg *config.Config, services *service.Service, log *logger.Logger) *server.Server {
	if !cfg.HTTP.Enabled {
		return nil
	}
	if !strings.EqualFold(cfg.Log.Level, logger.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	apiHandler := handlers.NewHandler(services, log)
	srv := server.New(cfg.HTTP.Port, apiHandler.InitRoutes())
	go func() {
		log.Infow("http_listening", "addr", srv.Addr(), "auth", services.Enabled())
		if err := srv.Run(); err != nil {
			log.Errorw("error starting server", "err", err)
			observability.CaptureError(err, map[string]string{"op": "http"}, nil)
		}
	}()
	return srv
}

// shutdownHTTPServer allows in-flight requests to complete.
func shutdownHTTPServer(srv *server.Server, log *logger.Logger) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnw("server forced to shutdown", "err", err)
	}
}
