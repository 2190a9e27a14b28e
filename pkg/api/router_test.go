package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LambdaTest/forkplan/config"
	"github.com/LambdaTest/forkplan/pkg/constants"
	"github.com/LambdaTest/forkplan/pkg/core"
	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/LambdaTest/forkplan/pkg/planqueue"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	messages []*core.PlanMessage
}

func (r *recordingProducer) Enqueue(payload interface{}) error {
	r.messages = append(r.messages, payload.(*core.PlanMessage))
	return nil
}

func (r *recordingProducer) Close() error { return nil }

func newRouter(t *testing.T, signalCtx context.Context, store core.TimingStore, publisher *planqueue.Publisher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, err := lumber.NewLogger(&lumber.LoggingConfig{ConsoleLevel: lumber.Debug}, false, lumber.InstanceZapLogger)
	require.NoError(t, err)
	cfg := &config.Config{Env: constants.Prod, ForkCount: 1, MatchMode: string(core.ClassMatch)}
	router := New(signalCtx, cfg, store, publisher, logger)
	return router.Handler()
}

func emptyStore() core.TimingStore {
	return core.TimingStoreFunc(func(ctx context.Context) ([]core.TestTiming, error) { return nil, nil })
}

func do(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	handler := newRouter(t, ctx, emptyStore(), nil)

	assert.Equal(t, http.StatusOK, do(t, handler, http.MethodGet, "/health", nil).Code)
	cancel()
	assert.Equal(t, http.StatusInternalServerError, do(t, handler, http.MethodGet, "/health", nil).Code)
}

type planResponse struct {
	PlanID  string                `json:"plan_id"`
	Summary core.TestPlanSummary  `json:"summary"`
	Forks   []core.ForkAssignment `json:"forks"`
}

func TestPlanWithInlineTimings(t *testing.T) {
	handler := newRouter(t, context.Background(), emptyStore(), nil)
	w := do(t, handler, http.MethodPost, "/plan", gin.H{
		"fork_count": 2,
		"sources": []gin.H{
			{"task": "unit", "prefixes": []string{"a", "b", "c"}},
		},
		"timings": []gin.H{
			{"name": "a.x", "duration_seconds": 10},
			{"name": "b.x", "duration_seconds": 5},
			{"name": "c.x", "duration_seconds": 4},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp planResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.PlanID)
	assert.Equal(t, core.TestPlanSummary{ForkCount: 2, TotalTestCount: 3}, resp.Summary)
	require.Len(t, resp.Forks, 2)
	assert.Equal(t, []string{"a"}, resp.Forks[0].Buckets["unit"])
	assert.Equal(t, []string{"b", "c"}, resp.Forks[1].Buckets["unit"])
	assert.Equal(t, 10.0, resp.Forks[0].Duration)
	assert.Equal(t, 9.0, resp.Forks[1].Duration)
}

func TestPlanUsesConfiguredStore(t *testing.T) {
	calls := 0
	store := core.TimingStoreFunc(func(ctx context.Context) ([]core.TestTiming, error) {
		calls++
		return []core.TestTiming{{Name: "b.x", DurationSeconds: 3}}, nil
	})
	handler := newRouter(t, context.Background(), store, nil)
	w := do(t, handler, http.MethodPost, "/plan", gin.H{
		"fork_count": 1,
		"sources":    []gin.H{{"task": "unit", "prefixes": []string{"a", "b"}}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, calls)

	var resp planResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// a is estimated at the mean and keeps its place behind b
	assert.Equal(t, []string{"b", "a"}, resp.Forks[0].Buckets["unit"])
}

func TestPlanRejectsInvalidRequests(t *testing.T) {
	handler := newRouter(t, context.Background(), emptyStore(), nil)
	tests := []struct {
		name string
		body gin.H
	}{
		{name: "missing fork count", body: gin.H{"sources": []gin.H{{"task": "unit", "prefixes": []string{"a"}}}}},
		{name: "no sources", body: gin.H{"fork_count": 2, "sources": []gin.H{}}},
		{name: "source without prefixes", body: gin.H{"fork_count": 2, "sources": []gin.H{{"task": "unit"}}}},
		{name: "unknown match mode", body: gin.H{"fork_count": 2, "match_mode": "package",
			"sources": []gin.H{{"task": "unit", "prefixes": []string{"a"}}}}},
		{name: "negative duration", body: gin.H{"fork_count": 2,
			"sources": []gin.H{{"task": "unit", "prefixes": []string{"a"}}},
			"timings": []gin.H{{"name": "a", "duration_seconds": -1}}}},
		{name: "overlapping prefixes", body: gin.H{"fork_count": 2, "strict_prefixes": true,
			"sources": []gin.H{{"task": "unit", "prefixes": []string{"a", "a.B"}}}}},
		{name: "publish without kafka", body: gin.H{"fork_count": 2, "publish": true,
			"sources": []gin.H{{"task": "unit", "prefixes": []string{"a"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, handler, http.MethodPost, "/plan", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestPlanPublish(t *testing.T) {
	logger, err := lumber.NewLogger(&lumber.LoggingConfig{ConsoleLevel: lumber.Debug}, false, lumber.InstanceZapLogger)
	require.NoError(t, err)
	producer := &recordingProducer{}
	handler := newRouter(t, context.Background(), emptyStore(), planqueue.NewPublisher(producer, logger))

	w := do(t, handler, http.MethodPost, "/plan", gin.H{
		"fork_count": 3,
		"publish":    true,
		"sources": []gin.H{
			{"task": "unit", "prefixes": []string{"a", "b"}},
			{"task": "unit", "prefixes": []string{"c"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp planResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.PlanID)
	require.Len(t, producer.messages, 3)
	for fork, msg := range producer.messages {
		assert.Equal(t, resp.PlanID, msg.PlanID)
		assert.Equal(t, fork, msg.Fork)
		assert.Equal(t, core.TaskID("unit"), msg.Task)
	}
}

type shardResponse struct {
	Seed  int64      `json:"seed"`
	Fork  *int       `json:"fork"`
	Tests []string   `json:"tests"`
	Forks [][]string `json:"forks"`
}

func TestShard(t *testing.T) {
	handler := newRouter(t, context.Background(), emptyStore(), nil)
	tests := []string{"t1", "t2", "t3", "t4", "t5"}

	w := do(t, handler, http.MethodPost, "/shard", gin.H{"tests": tests, "forks": 2, "seed": 7})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var all shardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Equal(t, int64(7), all.Seed)
	require.Len(t, all.Forks, 2)
	assert.ElementsMatch(t, tests, append(append([]string{}, all.Forks[0]...), all.Forks[1]...))

	w = do(t, handler, http.MethodPost, "/shard", gin.H{"tests": tests, "forks": 2, "seed": 7, "fork": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var one shardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &one))
	require.NotNil(t, one.Fork)
	assert.Equal(t, 1, *one.Fork)
	assert.Equal(t, all.Forks[1], one.Tests)
}

func TestShardDerivesSeed(t *testing.T) {
	handler := newRouter(t, context.Background(), emptyStore(), nil)
	body := gin.H{"tests": []string{"a", "b", "c"}, "forks": 2, "revision": "abc123", "user": "dev", "task": "test"}

	var first, second shardResponse
	require.NoError(t, json.Unmarshal(do(t, handler, http.MethodPost, "/shard", body).Body.Bytes(), &first))
	require.NoError(t, json.Unmarshal(do(t, handler, http.MethodPost, "/shard", body).Body.Bytes(), &second))
	assert.Equal(t, first, second)

	body["seed_override"] = 1
	var shifted shardResponse
	require.NoError(t, json.Unmarshal(do(t, handler, http.MethodPost, "/shard", body).Body.Bytes(), &shifted))
	assert.Equal(t, first.Seed+1, shifted.Seed)
}

func TestShardRejectsInvalidRequests(t *testing.T) {
	handler := newRouter(t, context.Background(), emptyStore(), nil)
	for name, body := range map[string]gin.H{
		"zero forks":      {"tests": []string{"a"}, "forks": 0},
		"duplicate tests": {"tests": []string{"a", "a"}, "forks": 2},
		"fork too large":  {"tests": []string{"a"}, "forks": 2, "fork": 2},
		"empty test name": {"tests": []string{""}, "forks": 1},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, do(t, handler, http.MethodPost, "/shard", body).Code)
		})
	}
}
