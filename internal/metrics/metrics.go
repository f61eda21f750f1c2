package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// recorder
	ReadingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thermolog_readings_total",
		Help: "Total number of valid temperature readings",
	})

	InvalidReadingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thermolog_invalid_readings_total",
		Help: "Total number of device lines that did not parse as a temperature",
	})

	LastTemperature = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "thermolog_last_temperature_celsius",
		Help: "Most recent valid temperature reading",
	})

	AverageFlushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thermolog_average_flushes_total",
		Help: "Number of averages appended, per log",
	}, []string{"log"})

	SerialReadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thermolog_serial_read_errors_total",
		Help: "Number of failed serial reads",
	})

	// stores
	RotationDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thermolog_rotation_dropped_total",
		Help: "Entries removed by retention, per log",
	}, []string{"log"})

	RotationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "thermolog_rotation_duration_seconds",
		Help:    "Time spent rotating a log",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms .. ~1s
	}, []string{"log"})

	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thermolog_store_errors_total",
		Help: "Failed store operations, per log and operation",
	}, []string{"log", "op"})

	// HTTP
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)
