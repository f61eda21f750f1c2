package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"thermolog/internal/config"
	"thermolog/internal/logger"
	"thermolog/internal/metrics"
	"thermolog/internal/models"
	"thermolog/internal/observability"
	"thermolog/internal/repository"
)

// Retention windows and averaging periods.
const (
	AllRetention    = 24 * time.Hour
	HourlyRetention = 30 * 24 * time.Hour
	DailyRetention  = 365 * 24 * time.Hour

	HourlyPeriod = time.Hour
	DailyPeriod  = 24 * time.Hour

	defaultReadRetryDelay = time.Second
)

// LineSource yields one device line per call, "" when the read timed out.
type LineSource interface {
	ReadLine() (string, error)
}

// RecorderService is the read-parse-log-rotate loop.
//
// Run and Handle must be called from a single goroutine; the state they
// publish goes through the StateRepo, which is safe for concurrent readers.
type RecorderService struct {
	source LineSource
	repos  *repository.Repository
	out    io.Writer
	log    *logger.Logger
	policy string
	now    func() time.Time

	retryDelay time.Duration

	sessionID  string
	hourly     SampleWindow
	daily      SampleWindow
	epoch      time.Time // start of the current daily cycle
	lastHourly time.Time // last hourly flush, or epoch before the first one
	lastTemp   float64
	lastMsg    string
	lastAt     time.Time
	readings   int
	invalid    int
}

// NewRecorderService starts the hourly and daily cycles at now().
func NewRecorderService(source LineSource, repos *repository.Repository, opts Options) *RecorderService {
	opts = opts.withDefaults()
	start := opts.Now()
	return &RecorderService{
		source:     source,
		repos:      repos,
		out:        opts.Echo,
		log:        opts.Log,
		policy:     opts.InvalidReadingPolicy,
		now:        opts.Now,
		retryDelay: opts.ReadRetryDelay,
		sessionID:  uuid.NewString(),
		epoch:      start,
		lastHourly: start,
	}
}

// Run reads lines until ctx is canceled. It returns nil on cancellation and
// an ErrInvalidReading error when the policy is terminate.
func (r *RecorderService) Run(ctx context.Context) error {
	r.log.Infow("recorder_started", "session", r.sessionID, "policy", r.policy, "epoch", r.epoch)
	defer r.log.Infow("recorder_stopped", "session", r.sessionID, "readings", r.readings, "invalid", r.invalid)

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := r.source.ReadLine()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			metrics.SerialReadErrors.Inc()
			r.log.Warnw("serial_read_failed", "err", err)
			if !sleepCtx(ctx, r.retryDelay) {
				return nil
			}
			continue
		}
		// a line already read is fully processed even if ctx is canceled meanwhile
		if err := r.Handle(context.WithoutCancel(ctx), line); err != nil {
			return err
		}
	}
}

// Handle runs one iteration for a line already read from the device.
// An empty line is a no-op.
func (r *RecorderService) Handle(ctx context.Context, message string) error {
	if message == "" {
		return nil
	}
	now := r.now()

	fmt.Fprintln(r.out, message)
	r.appendEntry(ctx, r.repos.All, models.LogEntry{Timestamp: now, Text: message})

	temp, err := ParseTemperature(message)
	if err != nil {
		r.invalid++
		metrics.InvalidReadingsTotal.Inc()
		if r.policy == config.PolicyTerminate {
			r.log.Errorw("invalid_reading_terminating", "message", message, "err", err)
			return err
		}
		r.log.Warnw("invalid_reading_skipped", "message", message, "err", err)
	} else {
		r.record(temp, message, now)
	}

	r.flushDue(ctx, now)
	r.rotateAll(ctx, now)
	r.saveState(ctx, now)
	return nil
}

func (r *RecorderService) record(temp float64, message string, now time.Time) {
	r.hourly.Add(temp)
	r.daily.Add(temp)
	r.readings++
	r.lastTemp = temp
	r.lastMsg = message
	r.lastAt = now

	metrics.ReadingsTotal.Inc()
	metrics.LastTemperature.Set(temp)
	r.log.Debugw("reading", "temp_c", temp, "hourly_samples", r.hourly.Len(), "daily_samples", r.daily.Len())
}

// flushDue emits the hourly average once a full hour has passed since the
// previous hourly flush, and the daily average once a full day has passed
// since the epoch. Each window is emptied when its average is flushed.
func (r *RecorderService) flushDue(ctx context.Context, now time.Time) {
	if now.Sub(r.lastHourly) >= HourlyPeriod {
		r.flushAverage(ctx, r.repos.Hourly, &r.hourly, now)
		r.lastHourly = now
	}
	if now.Sub(r.epoch) >= DailyPeriod {
		r.flushAverage(ctx, r.repos.Daily, &r.daily, now)
		r.epoch = now
	}
}

func (r *RecorderService) flushAverage(ctx context.Context, store repository.LogStore, w *SampleWindow, now time.Time) {
	samples := w.Values()
	w.Reset()

	written, err := LogAverage(ctx, store, samples, now)
	if err != nil {
		r.storeFailed(store.Name(), "append", err)
		return
	}
	if !written {
		r.log.Infow("average_skipped_empty_window", "log", store.Name())
		return
	}
	mean, _ := Mean(samples)
	metrics.AverageFlushes.WithLabelValues(store.Name()).Inc()
	r.log.Infow("average_logged", "log", store.Name(), "mean_c", mean, "samples", len(samples))
}

func (r *RecorderService) rotateAll(ctx context.Context, now time.Time) {
	for _, rl := range []struct {
		store  repository.LogStore
		window time.Duration
	}{
		{r.repos.All, AllRetention},
		{r.repos.Hourly, HourlyRetention},
		{r.repos.Daily, DailyRetention},
	} {
		started := time.Now()
		dropped, err := rl.store.Rotate(ctx, now, rl.window)
		metrics.RotationDuration.WithLabelValues(rl.store.Name()).Observe(time.Since(started).Seconds())
		if err != nil {
			r.storeFailed(rl.store.Name(), "rotate", err)
			continue
		}
		if dropped > 0 {
			metrics.RotationDropped.WithLabelValues(rl.store.Name()).Add(float64(dropped))
			r.log.Debugw("log_rotated", "log", rl.store.Name(), "dropped", dropped)
		}
	}
}

func (r *RecorderService) appendEntry(ctx context.Context, store repository.LogStore, e models.LogEntry) {
	if err := store.Append(ctx, e); err != nil {
		r.storeFailed(store.Name(), "append", err)
	}
}

// storeFailed records a store error; the loop itself carries on.
func (r *RecorderService) storeFailed(log, op string, err error) {
	metrics.StoreErrors.WithLabelValues(log, op).Inc()
	if errors.Is(err, context.Canceled) {
		return
	}
	r.log.Warnw("store_"+op+"_failed", "log", log, "err", err)
	observability.CaptureError(err, map[string]string{"log": log, "op": op}, map[string]interface{}{"session": r.sessionID})
}

func (r *RecorderService) saveState(ctx context.Context, now time.Time) {
	if err := r.repos.StateRepo.Save(ctx, r.snapshot(now)); err != nil {
		r.storeFailed("state", "save", err)
	}
}

func (r *RecorderService) snapshot(now time.Time) models.ThermoState {
	hourlyMean, _ := r.hourly.Mean()
	dailyMean, _ := r.daily.Mean()
	return models.ThermoState{
		ID:                1,
		SessionID:         r.sessionID,
		LastTempC:         r.lastTemp,
		LastMessage:       r.lastMsg,
		LastReadingAt:     r.lastAt,
		HourlySamples:     r.hourly.Len(),
		DailySamples:      r.daily.Len(),
		HourlyMeanC:       hourlyMean,
		DailyMeanC:        dailyMean,
		CycleStartedAt:    r.epoch,
		LastHourlyFlushAt: r.lastHourly,
		ReadingsTotal:     r.readings,
		InvalidReadings:   r.invalid,
		UpdatedAt:         now,
	}
}

// sleepCtx waits d or until ctx is done; false means ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
