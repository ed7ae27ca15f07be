package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"robo_advisor/internal/dialog"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDispatcher struct {
	resp dialog.Response
	err  error
	got  dialog.Event
}

func (d *stubDispatcher) Dispatch(ctx context.Context, ev dialog.Event) (dialog.Response, error) {
	d.got = ev
	return d.resp, d.err
}

func newTestServer(d Dispatcher) *Server {
	return New(Config{
		Log:        zerolog.Nop(),
		Dispatcher: d,
		Port:       0,
		Version:    "v1.2.3",
	})
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

const fulfillmentEvent = `{
	"currentIntent": {
		"name": "RecommendPortfolio",
		"slots": {"firstName": "Alex", "age": "35", "investmentAmount": "5000", "riskLevel": "medium"}
	},
	"invocationSource": "FulfillmentCodeHook",
	"sessionAttributes": {"session": "s-1"}
}`

func TestHealth(t *testing.T) {
	s := newTestServer(&stubDispatcher{})

	rec, body := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "v1.2.3", body["version"])
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestDialog_Close(t *testing.T) {
	d := &stubDispatcher{
		resp: dialog.NewClose(map[string]string{"session": "s-1"}, dialog.Fulfilled, dialog.PlainText("Alex, the forecast")),
	}
	s := newTestServer(d)

	rec, body := do(t, s, http.MethodPost, "/v1/dialog", fulfillmentEvent)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, dialog.IntentRecommendPortfolio, d.got.CurrentIntent.Name)
	v, ok := d.got.CurrentIntent.Slots.Get(dialog.SlotRiskLevel)
	assert.True(t, ok)
	assert.Equal(t, "medium", v)

	action := body["dialogAction"].(map[string]interface{})
	assert.Equal(t, "Close", action["type"])
	assert.Equal(t, dialog.Fulfilled, action["fulfillmentState"])
	msg := action["message"].(map[string]interface{})
	assert.Equal(t, "Alex, the forecast", msg["content"])
	assert.Equal(t, "s-1", body["sessionAttributes"].(map[string]interface{})["session"])
}

func TestDialog_FailedCloseIsStillDelivered(t *testing.T) {
	d := &stubDispatcher{
		resp: dialog.NewClose(nil, dialog.Failed, dialog.PlainText("sorry")),
		err:  errors.New("simulation service unavailable"),
	}
	s := newTestServer(d)

	rec, body := do(t, s, http.MethodPost, "/v1/dialog", fulfillmentEvent)
	require.Equal(t, http.StatusOK, rec.Code)
	action := body["dialogAction"].(map[string]interface{})
	assert.Equal(t, dialog.Failed, action["fulfillmentState"])
}

func TestDialog_Errors(t *testing.T) {
	tests := []struct {
		name       string
		dispatcher *stubDispatcher
		body       string
		wantStatus int
	}{
		{
			name:       "malformed json",
			dispatcher: &stubDispatcher{},
			body:       `{"currentIntent":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing intent name",
			dispatcher: &stubDispatcher{},
			body:       `{"invocationSource": "DialogCodeHook"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unsupported intent",
			dispatcher: &stubDispatcher{err: dialog.ErrUnsupportedIntent},
			body:       `{"currentIntent": {"name": "OrderFlowers"}, "invocationSource": "DialogCodeHook"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "handler error without response",
			dispatcher: &stubDispatcher{err: errors.New("boom")},
			body:       fulfillmentEvent,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(tt.dispatcher)
			rec, body := do(t, s, http.MethodPost, "/v1/dialog", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetAllocation(t *testing.T) {
	s := newTestServer(&stubDispatcher{})

	tests := []struct {
		level    string
		bond     float64
		equity   float64
		fallback bool
	}{
		{"none", 1.0, 0.0, false},
		{"veryLow", 0.8, 0.2, false},
		{"low", 0.6, 0.4, false},
		{"medium", 0.4, 0.6, false},
		{"high", 0.2, 0.8, false},
		{"extreme", 0.0, 1.0, true},
		{"Medium", 0.0, 1.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			rec, body := do(t, s, http.MethodGet, "/v1/allocations/"+tt.level, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.level, body["risk_level"])
			assert.InDelta(t, tt.bond, body["bond"], 1e-9)
			assert.InDelta(t, tt.equity, body["equity"], 1e-9)
			assert.Equal(t, tt.fallback, body["fallback"])
		})
	}
}

func TestListAllocations(t *testing.T) {
	s := newTestServer(&stubDispatcher{})

	rec, body := do(t, s, http.MethodGet, "/v1/allocations", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rows := body["allocations"].([]interface{})
	assert.Len(t, rows, 5)
	for _, r := range rows {
		row := r.(map[string]interface{})
		assert.Equal(t, false, row["fallback"])
		assert.InDelta(t, 1.0, row["bond"].(float64)+row["equity"].(float64), 1e-9)
	}
}

func TestRequestIDHeaderIsPropagated(t *testing.T) {
	var seen string
	s := newTestServer(dispatchFunc(func(ctx context.Context, ev dialog.Event) (dialog.Response, error) {
		seen = middleware.GetReqID(ctx)
		return dialog.NewDelegate(nil, ev.CurrentIntent.Slots), nil
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/dialog", strings.NewReader(fulfillmentEvent))
	req.Header.Set("X-Request-Id", "req-abc")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-abc", seen)
}

type dispatchFunc func(ctx context.Context, ev dialog.Event) (dialog.Response, error)

func (f dispatchFunc) Dispatch(ctx context.Context, ev dialog.Event) (dialog.Response, error) {
	return f(ctx, ev)
}
