package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goanalytics/app"
	"goanalytics/domain/analysis"
	"goanalytics/domain/core"
	"goanalytics/internal"
	"goanalytics/internal/api"
	"goanalytics/internal/catalog"
	"goanalytics/internal/notify"
	"goanalytics/ports"
)

// gatedClient blocks every job until a result is pushed or ctx is cancelled
type gatedClient struct {
	results chan *analysis.AnalysisResult
}

func (c *gatedClient) Submit(ctx context.Context, req analysis.AnalysisRequest) (*analysis.AnalysisResult, error) {
	select {
	case r := <-c.results:
		return r, nil
	case <-ctx.Done():
		return nil, core.ErrUserCancelled
	}
}

type testServer struct {
	server    *Server
	client    *gatedClient
	settled   chan analysis.Notification
	workbench *app.WorkbenchService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := internal.NewLogger(internal.LogLevelError)

	ts := &testServer{
		client:  &gatedClient{results: make(chan *analysis.AnalysisResult, 1)},
		settled: make(chan analysis.Notification, 4),
	}
	hub := api.NewSSEHub(logger)
	t.Cleanup(hub.Close)

	wb, err := app.NewWorkbenchService(context.Background(), app.WorkbenchConfig{
		Methods: catalog.NewStatic(),
		Datasets: catalog.NewStatic(
			analysis.DatasetDescriptor{Name: "sales", DocumentCount: 50000, NumericFields: []string{"amount"}},
		),
		JobClient: ts.client,
		Sink: notify.Fanout{hub, ports.NotificationSinkFunc(func(n analysis.Notification) {
			ts.settled <- n
		})},
		Logger: logger,
	})
	require.NoError(t, err)
	t.Cleanup(wb.Shutdown)

	ts.workbench = wb
	ts.server = NewServer(wb, hub, notify.NewPermission(notify.Fixed(true)), logger)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts *testServer) waitSettled(t *testing.T) analysis.Notification {
	t.Helper()
	select {
	case n := <-ts.settled:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("session did not settle")
		return analysis.Notification{}
	}
}

func TestHealthAndCatalog(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/healthz", "").Code)

	methods := decode[struct {
		Methods []analysis.MethodDescriptor `json:"methods"`
	}](t, ts.do(t, http.MethodGet, "/api/methods", ""))
	assert.Len(t, methods.Methods, 5)

	datasets := decode[struct {
		Datasets []analysis.DatasetDescriptor `json:"datasets"`
	}](t, ts.do(t, http.MethodGet, "/api/datasets", ""))
	require.Len(t, datasets.Datasets, 1)
	assert.Equal(t, "sales", datasets.Datasets[0].Name)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/catalog/refresh", "").Code)
}

func TestRunWithoutSelectionIsRejected(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/session/run", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	session := decode[analysis.Session](t, ts.do(t, http.MethodGet, "/api/session", ""))
	assert.Equal(t, analysis.SessionStateIdle, session.State)
}

func TestSelectionAndParameters(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/session/method", `{"method_id": "prediction"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/session/dataset", `{"dataset_name": "sales"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	session := decode[map[string]any](t, rec)
	assert.Equal(t, map[string]any{"target_col": "amount", "days_ahead": 30.0, "sample_size": 1000.0}, session["parameters"])

	rec = ts.do(t, http.MethodPut, "/api/session/parameters/days_ahead", `{"value": "14"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	session = decode[map[string]any](t, rec)
	assert.Equal(t, 14.0, session["parameters"].(map[string]any)["days_ahead"])

	assert.Equal(t, http.StatusUnprocessableEntity, ts.do(t, http.MethodPut, "/api/session/parameters/days_ahead", `{"value": "soon"}`).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPut, "/api/session/parameters/days_ahead", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPut, "/api/session/parameters/days_ahead", `{"value": 1.5}`).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/api/session/dataset", `{"dataset_name": "missing"}`).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/session/method", `not json`).Code)
}

func TestRunSettleAndReport(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/session/method", `{"method_id": "clustering"}`)
	ts.do(t, http.MethodPost, "/api/session/dataset", `{"dataset_name": "sales"}`)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/session/last", "").Code)

	rec := ts.do(t, http.MethodPost, "/api/session/run", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, analysis.SessionStateRunning, decode[analysis.Session](t, rec).State)

	assert.Equal(t, http.StatusConflict, ts.do(t, http.MethodPost, "/api/session/run", "").Code)
	assert.Equal(t, http.StatusConflict, ts.do(t, http.MethodPost, "/api/session/method", `{"method_id": "anomaly"}`).Code)

	ts.client.results <- &analysis.AnalysisResult{
		MethodID:    analysis.MethodClustering,
		DatasetName: "sales",
		RecordCount: 1000,
		Payload: map[string]any{
			"n_clusters":       4,
			"silhouette_score": 0.62,
			"recommendations":  []any{"Target cluster 3 first"},
		},
	}
	assert.Equal(t, analysis.EventCompleted, ts.waitSettled(t).Kind)

	last := decode[analysis.Session](t, ts.do(t, http.MethodGet, "/api/session/last", ""))
	assert.Equal(t, analysis.SessionStateSucceeded, last.State)
	require.NotNil(t, last.Interpretation)
	assert.Equal(t, "4 groups formed, silhouette score 0.62", last.Interpretation.Summary)

	rec = ts.do(t, http.MethodGet, "/api/session/last/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "Target cluster 3 first")

	rec = ts.do(t, http.MethodGet, "/api/session/last/report?format=html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1")
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/session/last/report?format=pdf", "").Code)

	history := decode[struct {
		Entries []analysis.HistoryEntry `json:"entries"`
	}](t, ts.do(t, http.MethodGet, "/api/history", ""))
	require.Len(t, history.Entries, 1)
	assert.Equal(t, analysis.OutcomeSucceeded, history.Entries[0].Outcome)

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/history", "").Code)
	history = decode[struct {
		Entries []analysis.HistoryEntry `json:"entries"`
	}](t, ts.do(t, http.MethodGet, "/api/history", ""))
	assert.Empty(t, history.Entries)
}

func TestCancel(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/session/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["cancelled"])

	ts.do(t, http.MethodPost, "/api/session/method", `{"method_id": "anomaly"}`)
	ts.do(t, http.MethodPost, "/api/session/dataset", `{"dataset_name": "sales"}`)
	require.Equal(t, http.StatusAccepted, ts.do(t, http.MethodPost, "/api/session/run", "").Code)

	rec = ts.do(t, http.MethodPost, "/api/session/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Cancelled bool             `json:"cancelled"`
		Session   analysis.Session `json:"session"`
	}](t, rec)
	assert.True(t, body.Cancelled)
	assert.Equal(t, analysis.SessionStateIdle, body.Session.State)
	assert.Equal(t, analysis.EventCancelled, ts.waitSettled(t).Kind)

	last := decode[analysis.Session](t, ts.do(t, http.MethodGet, "/api/session/last", ""))
	assert.Equal(t, analysis.SessionStateCancelled, last.State)
	assert.Equal(t, analysis.CancelledMessage, last.ErrorMessage)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/session/last/report", "").Code)
}

func TestNotificationPermission(t *testing.T) {
	ts := newTestServer(t)

	state := decode[map[string]string](t, ts.do(t, http.MethodGet, "/api/notifications/permission", ""))
	assert.Equal(t, string(notify.StateGranted), state["state"])

	state = decode[map[string]string](t, ts.do(t, http.MethodPost, "/api/notifications/permission", `{"granted": false}`))
	assert.Equal(t, string(notify.StateDenied), state["state"])

	state = decode[map[string]string](t, ts.do(t, http.MethodPost, "/api/notifications/permission", ""))
	assert.Equal(t, string(notify.StateGranted), state["state"])
}
