package rest

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/module/irrecoverable"
	"github.com/agentjobs/validation-gateway/module/metrics"
	"github.com/agentjobs/validation-gateway/storage"
	"github.com/agentjobs/validation-gateway/utils/unittest"
)

type fakeAPI struct {
	list    validation.AssignmentList
	records map[validation.JobID][]*validation.CommitRecord
	err     error
}

func (f *fakeAPI) ListAssignments() validation.AssignmentList {
	return f.list
}

func (f *fakeAPI) CommitRecords(jobID validation.JobID) ([]*validation.CommitRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[jobID], nil
}

func apiFixture() *fakeAPI {
	validator := unittest.AddressFixture()
	return &fakeAPI{
		list: validation.AssignmentList{
			Active: []validation.Snapshot{{
				JobID:     5,
				Validator: validator,
				Status:    validation.StatusCommitted,
				Attempts:  2,
			}},
			History: []validation.Snapshot{{
				JobID:     4,
				Validator: validator,
				Status:    validation.StatusRevealed,
			}},
		},
		records: map[validation.JobID][]*validation.CommitRecord{
			5: {{JobID: 5, Validator: validation.AddressKey(validator), Approve: true}},
		},
	}
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestListAssignments(t *testing.T) {
	api := apiFixture()
	router := NewRouter(unittest.Logger(), api, nil, nil, nil)

	rr := get(t, router, "/v1/validation/assignments")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var list validation.AssignmentList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Active, 1)
	assert.Equal(t, validation.JobID(5), list.Active[0].JobID)
	assert.Equal(t, validation.StatusCommitted, list.Active[0].Status)
	assert.Equal(t, uint(2), list.Active[0].Attempts)
	require.Len(t, list.History, 1)
	assert.Equal(t, validation.StatusRevealed, list.History[0].Status)
}

func TestJobRecords(t *testing.T) {
	api := apiFixture()
	router := NewRouter(unittest.Logger(), api, nil, nil, nil)

	t.Run("records", func(t *testing.T) {
		rr := get(t, router, "/v1/validation/jobs/5/records")
		require.Equal(t, http.StatusOK, rr.Code)

		var records []*validation.CommitRecord
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
		require.Len(t, records, 1)
		assert.True(t, records[0].Approve)
	})

	t.Run("no records", func(t *testing.T) {
		rr := get(t, router, "/v1/validation/jobs/6/records")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("invalid job id", func(t *testing.T) {
		rr := get(t, router, "/v1/validation/jobs/abc/records")
		require.Equal(t, http.StatusBadRequest, rr.Code)

		var modelErr ModelError
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &modelErr))
		assert.Equal(t, http.StatusBadRequest, modelErr.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		api.err = fmt.Errorf("disk failure: %w", storage.ErrNotFound)
		defer func() { api.err = nil }()

		rr := get(t, router, "/v1/validation/jobs/5/records")
		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "disk failure")
	})
}

func TestMetricsRoute(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewValidationCollector(registry)
	collector.CommitSubmitted(true)

	router := NewRouter(unittest.Logger(), apiFixture(), nil, registry, metrics.NewRestCollector(registry))
	require.Equal(t, http.StatusOK, get(t, router, "/v1/validation/assignments").Code)

	rr := get(t, router, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "validation_chain_commits_total")
	assert.Contains(t, rr.Body.String(), `validation_rest_requests_total{method="GET",route="ListAssignments"} 1`)
	assert.Contains(t, rr.Body.String(), "validation_rest_http_request_duration_seconds")

	// without a gatherer the route does not exist
	router = NewRouter(unittest.Logger(), apiFixture(), nil, nil, nil)
	assert.Equal(t, http.StatusNotFound, get(t, router, "/metrics").Code)
}

// TestSocketRoute verifies that websocket upgrades pass through the middleware.
func TestSocketRoute(t *testing.T) {
	upgrader := websocket.Upgrader{}
	socket := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte("hello"))
	})

	server := httptest.NewServer(NewRouter(unittest.Logger(), apiFixture(), socket, nil, metrics.NewNoopCollector()))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/v1/agents/socket", nil)
	require.NoError(t, err)
	defer conn.Close()

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(msg))
}

func TestEngine_Lifecycle(t *testing.T) {
	engine := NewEngine(unittest.Logger(), "127.0.0.1:0", apiFixture(), nil, nil, nil)

	ctx, cancel := irrecoverable.NewMockSignalerContextWithCancel(t, context.Background())
	engine.Start(ctx)
	unittest.RequireClosed(t, engine.Ready(), time.Second, "REST engine did not start")
	require.NotNil(t, engine.Address())

	resp, err := http.Get("http://" + engine.Address().String() + "/v1/validation/assignments")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"active"`)

	// cross-origin requests are allowed
	req, err := http.NewRequest(http.MethodGet, "http://"+engine.Address().String()+"/v1/validation/assignments", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://dashboard.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	cancel()
	unittest.RequireClosed(t, engine.Done(), 5*time.Second, "REST engine did not stop")

	_, err = http.Get("http://" + engine.Address().String() + "/v1/validation/assignments")
	require.Error(t, err)
}

func TestEngine_ListenFailure(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	engine := NewEngine(unittest.Logger(), occupied.Addr().String(), apiFixture(), nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signalerCtx := irrecoverable.NewCapturingSignalerContext(ctx)
	engine.Start(signalerCtx)

	unittest.RequireClosed(t, signalerCtx.Thrown(), time.Second, "listen failure was not thrown")
	require.Len(t, signalerCtx.Errors(), 1)
	assert.Contains(t, signalerCtx.Errors()[0].Error(), "failed to start the REST server")

	cancel()
	unittest.RequireClosed(t, engine.Done(), time.Second, "engine did not stop")
	assert.Nil(t, engine.Address())
}
