// Package observability reports recorder and storage failures to Sentry.
package observability

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"thermolog/internal/config"
)

const (
	appTag       = "thermolog"
	flushTimeout = 2 * time.Second
)

var enabled atomic.Bool

func noopFlush() {}

// InitSentry configures the global Sentry hub from cfg.
// An empty DSN leaves reporting off; the returned flush is always callable.
func InitSentry(cfg config.SentryConfig) (flush func(), ok bool, err error) {
	enabled.Store(false)

	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return noopFlush, false, nil
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      strings.TrimSpace(cfg.Environment),
		Release:          strings.TrimSpace(cfg.Release),
		AttachStacktrace: true,
	})
	if err != nil {
		return noopFlush, false, err
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("app", appTag)
	})

	enabled.Store(true)
	return func() { sentry.Flush(flushTimeout) }, true, nil
}

// CaptureError sends err tagged with the failing log and operation.
func CaptureError(err error, tags map[string]string, extra map[string]interface{}) {
	if err == nil || !enabled.Load() {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		for k, v := range extra {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

func Enabled() bool { return enabled.Load() }
