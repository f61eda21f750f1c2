package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"thermolog/internal/models"
	"thermolog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 1 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=20s", 1 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=20000", 1 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 1 * time.Second},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 1 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

func TestChanged(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if changed(models.ThermoState{UpdatedAt: ts}, ts) {
		t.Fatalf("same UpdatedAt must not count as a change")
	}
	if !changed(models.ThermoState{UpdatedAt: ts.Add(time.Second)}, ts) {
		t.Fatalf("newer UpdatedAt must count as a change")
	}
	if !changed(models.ThermoState{}, ts) {
		t.Fatalf("zero UpdatedAt is always pushed")
	}
}

// --- websocket integration tests ---

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialWS(t *testing.T, s *service.Service, query string) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = query

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn, within time.Duration) (envelope, error) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(within))
	var env envelope
	err := conn.ReadJSON(&env)
	return env, err
}

func TestWebSocket_StateStream_InitialAndOnChange(t *testing.T) {
	first := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	mon := &mockMonitoring{state: models.ThermoState{
		ID:            1,
		LastTempC:     23.5,
		HourlySamples: 4,
		UpdatedAt:     first,
	}}
	conn := dialWS(t, &service.Service{Monitoring: mon}, "interval_ms=20")

	env, err := readEnvelope(t, conn, time.Second)
	if err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != msgState || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var st models.ThermoState
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.LastTempC != 23.5 || st.HourlySamples != 4 {
		t.Fatalf("unexpected state: %+v", st)
	}

	// unchanged snapshot is not re-sent
	if _, err := readEnvelope(t, conn, 150*time.Millisecond); err == nil {
		t.Fatalf("expected no message while state is unchanged")
	}

	// a read deadline error poisons the gorilla conn, so use a fresh one
	conn = dialWS(t, &service.Service{Monitoring: mon}, "interval_ms=20")
	if _, err := readEnvelope(t, conn, time.Second); err != nil {
		t.Fatalf("read initial on second conn: %v", err)
	}
	mon.setState(models.ThermoState{ID: 1, LastTempC: 24, UpdatedAt: first.Add(time.Second)})

	env, err = readEnvelope(t, conn, time.Second)
	if err != nil {
		t.Fatalf("read update: %v", err)
	}
	st = models.ThermoState{}
	_ = json.Unmarshal(env.Data, &st)
	if env.Type != msgState || st.LastTempC != 24 {
		t.Fatalf("expected updated state, got %+v", env)
	}
}

func TestWebSocket_InitialGetStateError_Closes(t *testing.T) {
	mon := &mockMonitoring{err: errors.New("boom")}
	conn := dialWS(t, &service.Service{Monitoring: mon}, "")

	env, err := readEnvelope(t, conn, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("expected an error envelope before close, got %v", err)
	}
	if env.Type != msgError || env.Error != errGetState {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	if _, err := readEnvelope(t, conn, 500*time.Millisecond); err == nil {
		t.Fatalf("expected read error (closed)")
	}
}
