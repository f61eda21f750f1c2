package handlers

import (
	"context"
	"net/http"
	"sync"

	"thermolog/internal/models"
	"thermolog/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	disabled      bool
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastGenUsername string
	lastGenPassword string
	lastParseToken  string
}

func (m *mockAuth) Enabled() bool { return !m.disabled }

func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}

func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockMonitoring struct {
	mu    sync.Mutex
	state models.ThermoState
	err   error
	calls int
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.ThermoState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.state, m.err
}

func (m *mockMonitoring) setState(st models.ThermoState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = st
}

type mockLogQuery struct {
	resp    []models.LogEntry
	err     error
	calls   int
	lastReq service.LogFilter
}

func (m *mockLogQuery) List(ctx context.Context, f service.LogFilter) ([]models.LogEntry, error) {
	m.calls++
	m.lastReq = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
