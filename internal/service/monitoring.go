package service

import (
	"context"
	"time"

	"thermolog/internal/models"
	"thermolog/internal/repository"
)

type MonitoringService struct {
	stateRepo repository.StateRepo
	now       func() time.Time
}

func NewMonitoringService(stateRepo repository.StateRepo, now func() time.Time) *MonitoringService {
	if now == nil {
		now = time.Now
	}
	return &MonitoringService{stateRepo: stateRepo, now: now}
}

// GetState returns the latest persisted recorder snapshot.
// If nothing has been recorded yet, returns an empty baseline snapshot.
func (s *MonitoringService) GetState(ctx context.Context) (models.ThermoState, error) {
	state, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.ThermoState{}, err
	}
	if state.ID == 0 {
		return s.baselineState(), nil
	}
	state.LastReadingAt = normalizeToUTC(state.LastReadingAt)
	state.CycleStartedAt = normalizeToUTC(state.CycleStartedAt)
	state.LastHourlyFlushAt = normalizeToUTC(state.LastHourlyFlushAt)
	state.UpdatedAt = normalizeToUTC(state.UpdatedAt)
	return state, nil
}

// baselineState is served before the first line has been processed.
func (s *MonitoringService) baselineState() models.ThermoState {
	return models.ThermoState{
		ID:        1, // single-row state with id=1
		UpdatedAt: s.now().UTC(),
	}
}
