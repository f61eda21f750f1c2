package models

import "time"

// ThermoState is the latest snapshot of the recorder loop.
type ThermoState struct {
	ID                int       `json:"id"`
	SessionID         string    `json:"session_id"`
	LastTempC         float64   `json:"last_temp_c"`            // °C
	LastMessage       string    `json:"last_message,omitempty"` // raw device line
	LastReadingAt     time.Time `json:"last_reading_at"`
	HourlySamples     int       `json:"hourly_samples"`
	DailySamples      int       `json:"daily_samples"`
	HourlyMeanC       float64   `json:"hourly_mean_c,omitempty"`
	DailyMeanC        float64   `json:"daily_mean_c,omitempty"`
	CycleStartedAt    time.Time `json:"cycle_started_at"`     // loop epoch
	LastHourlyFlushAt time.Time `json:"last_hourly_flush_at"` // hourly reference point
	ReadingsTotal     int       `json:"readings_total"`
	InvalidReadings   int       `json:"invalid_readings"`
	UpdatedAt         time.Time `json:"updated_at"`
}
