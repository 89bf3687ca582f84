// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/relational-matrix/internal/evidence"
	"github.com/pdiddy/relational-matrix/internal/repository"
	"github.com/pdiddy/relational-matrix/pkg/types"
)

const growth = "Economic growth"

func testServer(t *testing.T, health Pinger) *httptest.Server {
	t.Helper()
	ds := repository.NewDataset()
	ds.Effects[types.SourceEstimated] = []types.EffectFinding{
		{ID: 1, Level: string(types.LevelNational), SelectionDependent: types.AIDependentVariable,
			SelectionIndependent: growth, EffectDirection: types.EffectIncreases},
	}
	engine := evidence.New(repository.NewMemory(ds), types.EngineConfig{Parallel: 2}, nil)
	srv := httptest.NewServer(NewServer(engine, health, types.ServerConfig{}, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

const validBody = `{
	"level": "National (compare countries)",
	"dependent": {"selection": "Unequal Income distribution (individuals or social groups)"},
	"independent": {"selection": "Economic growth"}
}`

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		health Pinger
		want   int
	}{
		{"no pinger", nil, http.StatusOK},
		{"reachable", stubPinger{}, http.StatusOK},
		{"unreachable", stubPinger{err: errors.New("down")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t, tt.health)
			resp, err := http.Get(srv.URL + "/healthz")
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestResults(t *testing.T) {
	srv := testServer(t, nil)

	resp, body := post(t, srv.URL+"/api/results", validBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["query_id"])

	results := body["results"].(map[string]any)
	overall := results["overall"].(map[string]any)
	assert.Equal(t, "Positive", overall["label"])
	assert.Equal(t, "100.0", overall["percentage"])
	assert.Equal(t, "Very High", overall["confidence"])

	sources := results["sources"].([]any)
	require.Len(t, sources, types.NumSources)
	first := sources[0].(map[string]any)
	assert.Equal(t, "estimated", first["source"])
	assert.Equal(t, "positive", first["verdict"])
}

func TestResultsErrors(t *testing.T) {
	srv := testServer(t, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"level":`, http.StatusBadRequest},
		{"unknown field", `{"lvl": "x"}`, http.StatusBadRequest},
		{"missing dependent", `{"level": "National (compare countries)", "independent": {"selection": "Economic growth"}}`, http.StatusBadRequest},
		{"unknown level", `{"level": "Planetary", "dependent": {"selection": "A"}, "independent": {"selection": "B"}}`, http.StatusBadRequest},
		{"other without text", `{"level": "Other", "dependent": {"selection": "Other"}, "independent": {"selection": "B"}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, srv.URL+"/api/results", tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestFindings(t *testing.T) {
	srv := testServer(t, nil)

	resp, body := post(t, srv.URL+"/api/sources/estimated/findings", validBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	detail := body["detail"].(map[string]any)
	effects := detail["effects"].([]any)
	require.Len(t, effects, 1)
	row := effects[0].(map[string]any)
	assert.Equal(t, "Estimated Inputs", row["table"])
	assert.Equal(t, "Positive", row["impact"].(map[string]any)["label"])

	tally := detail["tally"].(map[string]any)
	assert.Equal(t, float64(1), tally["positive"])
}

func TestFindingsUnknownSource(t *testing.T) {
	srv := testServer(t, nil)

	resp, body := post(t, srv.URL+"/api/sources/blogs/findings", validBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "unknown evidence source")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&types.QueryKeyError{Field: "level", Reason: "x"}, http.StatusBadRequest},
		{types.ErrUnknownSource, http.StatusBadRequest},
		{errors.Join(types.ErrRepositoryUnavailable, errors.New("connection refused")), http.StatusServiceUnavailable},
		{errors.Join(types.ErrRepositoryUnavailable, context.Canceled), http.StatusGatewayTimeout},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestStatusForAbandonedComputation(t *testing.T) {
	engine := evidence.New(repository.NewMemory(nil), types.EngineConfig{}, nil)
	key := types.QueryKey{
		Level:       types.LevelNational,
		Dependent:   types.ParseVariable(types.AIDependentVariable, ""),
		Independent: types.ParseVariable(growth, ""),
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, stop := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer stop()

	for name, ctx := range map[string]context.Context{"cancelled": cancelled, "deadline": expired} {
		t.Run(name, func(t *testing.T) {
			_, err := engine.ComputeSourceResults(ctx, key)
			require.Error(t, err)
			assert.Equal(t, http.StatusGatewayTimeout, statusFor(err), err.Error())
		})
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	engine := evidence.New(repository.NewMemory(nil), types.EngineConfig{}, nil)
	s := NewServer(engine, nil, types.ServerConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
