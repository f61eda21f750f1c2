package service

import (
	"math/rand"
	"strconv"
	"time"
)

// ----------- Simulation constants -----------
const (
	AmbientC         = 21.0 // room temperature °C
	MaxDriftCPerRead = 0.25 // random walk step
	MaxDeviationC    = 6.0  // clamp around ambient
)

// SimulatorSource stands in for a serial probe: every interval it yields one
// temperature line following a bounded random walk around ambient.
type SimulatorSource struct {
	interval time.Duration
	tempC    float64
	rng      *rand.Rand
	sleep    func(time.Duration)
}

// NewSimulatorSource returns a simulator with defaults.
func NewSimulatorSource(interval time.Duration, seed int64) *SimulatorSource {
	return &SimulatorSource{
		interval: interval,
		tempC:    AmbientC,
		rng:      rand.New(rand.NewSource(seed)),
		sleep:    time.Sleep,
	}
}

// ReadLine blocks for one interval and returns the next reading.
func (s *SimulatorSource) ReadLine() (string, error) {
	if s.interval > 0 {
		s.sleep(s.interval)
	}
	s.tempC += (s.rng.Float64()*2 - 1) * MaxDriftCPerRead
	s.tempC = clamp(s.tempC, AmbientC-MaxDeviationC, AmbientC+MaxDeviationC)
	return strconv.FormatFloat(s.tempC, 'f', 2, 64), nil
}

func (s *SimulatorSource) Close() error { return nil }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
