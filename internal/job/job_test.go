package job

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fishcast/internal/acquisition"
	"fishcast/internal/config"
	"fishcast/internal/decision"
	"fishcast/internal/external"
	"fishcast/internal/telemetry"
	"fishcast/internal/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)        {}
func (nopLogger) Warn(string, ...any)        {}
func (nopLogger) Error(string, ...any)       {}
func (n nopLogger) With(...any) types.Logger { return n }

type recordingLogger struct {
	nopLogger
	infos map[string][]any
}

func (r *recordingLogger) Info(msg string, args ...any) {
	if r.infos == nil {
		r.infos = make(map[string][]any)
	}
	r.infos[msg] = args
}

// fields turns alternating key/value log args into a map.
func fields(args []any) map[string]any {
	out := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		out[args[i].(string)] = args[i+1]
	}
	return out
}

type mockAcquirer struct{ mock.Mock }

func (m *mockAcquirer) Acquire(ctx context.Context, at time.Time) (*acquisition.Result, error) {
	args := m.Called(ctx, at)
	res, _ := args.Get(0).(*acquisition.Result)
	return res, args.Error(1)
}

type mockDecider struct{ mock.Mock }

func (m *mockDecider) Generate(ctx context.Context, req decision.Request) (*types.Decision, error) {
	args := m.Called(ctx, req)
	doc, _ := args.Get(0).(*types.Decision)
	return doc, args.Error(1)
}

type mockPublisher struct {
	docs   []*types.Decision
	runIDs []string
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, doc *types.Decision) error {
	m.docs = append(m.docs, doc)
	m.runIDs = append(m.runIDs, types.GetRunID(ctx))
	return m.err
}

type recordingMetrics struct {
	fallbacks []string
	decisions []*types.Decision
	latencies []time.Duration
}

func (r *recordingMetrics) RecordDecision(_ context.Context, doc *types.Decision, latency time.Duration) {
	r.decisions = append(r.decisions, doc)
	r.latencies = append(r.latencies, latency)
}

func (r *recordingMetrics) RecordProviderFallback(_ context.Context, provider string) {
	r.fallbacks = append(r.fallbacks, provider)
}

func (r *recordingMetrics) RecordPublish(context.Context, telemetry.Result) {}

var now = time.Date(2026, 10, 15, 3, 0, 0, 0, time.UTC)

func acquired() *acquisition.Result {
	return &acquisition.Result{
		Conditions: types.Conditions{DataQuality: types.DataQualityFallback},
		Outcomes: []acquisition.Outcome{
			{Provider: external.ProviderWeather, Quality: types.DataQualityLive},
			{Provider: external.ProviderMarine, Quality: types.DataQualityFallback, Err: errors.New("503")},
		},
	}
}

func TestRunPipeline(t *testing.T) {
	acq := &mockAcquirer{}
	acq.On("Acquire", mock.Anything, now).Return(acquired(), nil)
	doc := &types.Decision{Meta: types.DecisionMeta{RunID: "run-7"}}
	dec := &mockDecider{}
	dec.On("Generate", mock.Anything, decision.Request{
		Conditions:  acquired().Conditions,
		EvaluatedAt: now,
		TraceLevel:  types.TraceMinimal,
	}).Return(doc, nil)
	pub := &mockPublisher{}
	metrics := &recordingMetrics{}

	j := &Job{
		Acquirer: acq, Decider: dec, Publisher: pub, Metrics: metrics,
		Clock: types.FixedClock{T: now}, Logger: nopLogger{}, DefaultTrace: types.TraceMinimal,
	}
	got, err := j.Run(context.Background(), RunRequest{})
	require.NoError(t, err)

	assert.Same(t, doc, got)
	assert.Equal(t, []string{external.ProviderMarine}, metrics.fallbacks)
	assert.Equal(t, []*types.Decision{doc}, metrics.decisions)
	assert.Equal(t, []string{"run-7"}, pub.runIDs)
	acq.AssertExpectations(t)
	dec.AssertExpectations(t)
}

func TestRunRequestOverridesDefaults(t *testing.T) {
	at := time.Date(2026, 10, 14, 18, 0, 0, 0, time.UTC)
	acq := &mockAcquirer{}
	acq.On("Acquire", mock.Anything, at).Return(acquired(), nil)
	dec := &mockDecider{}
	dec.On("Generate", mock.Anything, mock.MatchedBy(func(r decision.Request) bool {
		return r.EvaluatedAt.Equal(at) && r.TraceLevel == types.TraceFull
	})).Return(&types.Decision{}, nil)

	j := &Job{Acquirer: acq, Decider: dec, Clock: types.FixedClock{T: now}, Logger: nopLogger{}}
	_, err := j.Run(context.Background(), RunRequest{EvaluatedAt: at, TraceLevel: types.TraceFull})
	require.NoError(t, err)
	dec.AssertExpectations(t)
}

func TestRunWithoutLoggerOrMetrics(t *testing.T) {
	acq := &mockAcquirer{}
	acq.On("Acquire", mock.Anything, now).Return(acquired(), nil)
	dec := &mockDecider{}
	dec.On("Generate", mock.Anything, mock.Anything).Return(&types.Decision{Meta: types.DecisionMeta{RunID: "run-9"}}, nil)

	j := &Job{Acquirer: acq, Decider: dec, Clock: types.FixedClock{T: now}}
	var got *types.Decision
	require.NotPanics(t, func() {
		var err error
		got, err = j.Run(context.Background(), RunRequest{})
		require.NoError(t, err)
	})
	assert.Equal(t, "run-9", got.Meta.RunID)
}

func TestRunFailures(t *testing.T) {
	t.Run("acquisition", func(t *testing.T) {
		acq := &mockAcquirer{}
		acq.On("Acquire", mock.Anything, now).Return(nil, context.Canceled)
		j := &Job{Acquirer: acq, Decider: &mockDecider{}, Clock: types.FixedClock{T: now}, Logger: nopLogger{}}

		_, err := j.Run(context.Background(), RunRequest{})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("engine invariant", func(t *testing.T) {
		acq := &mockAcquirer{}
		acq.On("Acquire", mock.Anything, now).Return(acquired(), nil)
		dec := &mockDecider{}
		invariant := types.NewAppError(types.ErrCodeInvariantScore, "score out of bounds", nil)
		dec.On("Generate", mock.Anything, mock.Anything).Return(nil, invariant)
		pub := &mockPublisher{}
		j := &Job{Acquirer: acq, Decider: dec, Publisher: pub, Clock: types.FixedClock{T: now}, Logger: nopLogger{}}

		_, err := j.Run(context.Background(), RunRequest{})
		var appErr *types.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, types.ErrCodeInvariantScore, appErr.Code)
		assert.Empty(t, pub.docs, "nothing is published for a failed run")
	})

	t.Run("publish", func(t *testing.T) {
		acq := &mockAcquirer{}
		acq.On("Acquire", mock.Anything, now).Return(acquired(), nil)
		dec := &mockDecider{}
		dec.On("Generate", mock.Anything, mock.Anything).Return(&types.Decision{}, nil)
		pub := &mockPublisher{err: errors.New("queue gone")}
		j := &Job{Acquirer: acq, Decider: dec, Publisher: pub, Clock: types.FixedClock{T: now}, Logger: nopLogger{}}

		_, err := j.Run(context.Background(), RunRequest{})
		assert.ErrorContains(t, err, "publish decision")
	})
}

func TestParsePayload(t *testing.T) {
	scheduled := `{
	  "version": "0", "id": "53dc4d37", "detail-type": "Scheduled Event", "source": "aws.events",
	  "account": "123456789012", "time": "2026-10-15T03:00:00Z", "region": "eu-central-1",
	  "resources": ["arn:aws:events:eu-central-1:123456789012:rule/fishcast-morning"],
	  "detail": {"traceLevel": "minimal"}
	}`

	tests := []struct {
		name    string
		payload string
		want    RunRequest
		wantErr bool
	}{
		{"empty", "", RunRequest{}, false},
		{"null", "null", RunRequest{}, false},
		{"scheduled event", scheduled, RunRequest{EvaluatedAt: now, TraceLevel: types.TraceMinimal}, false},
		{"manual", `{"evaluatedAt": "2026-10-15T03:00:00Z", "traceLevel": "full"}`, RunRequest{EvaluatedAt: now, TraceLevel: types.TraceFull}, false},
		{"garbage", `[1, 2`, RunRequest{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePayload(json.RawMessage(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.EvaluatedAt.Equal(got.EvaluatedAt), "evaluatedAt = %v", got.EvaluatedAt)
			assert.Equal(t, tt.want.TraceLevel, got.TraceLevel)
		})
	}
}

func offlineConfig() *config.Config {
	return &config.Config{
		Environment: "local",
		Engine: config.EngineConfig{
			DefaultTraceLevel: "full",
			Timezone:          "Europe/Istanbul",
			Workers:           2,
		},
		Provider: config.ProviderConfig{
			Offline:      true,
			Timeout:      time.Second,
			ReferenceLat: 41.01,
			ReferenceLon: 28.98,
		},
		Build: config.NewBuildInfo(),
	}
}

func TestNewOfflineJobProducesCompleteDecision(t *testing.T) {
	metrics := &recordingMetrics{}
	pub := &mockPublisher{}
	j, err := New(context.Background(), offlineConfig(), Deps{
		Slog:      discardSlog(),
		Logger:    nopLogger{},
		Clock:     types.FixedClock{T: now},
		Publisher: pub,
		Metrics:   metrics,
	})
	require.NoError(t, err)

	resp, err := j.Handler(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, pub.docs, 1)
	doc := pub.docs[0]
	assert.Equal(t, doc.Meta.RunID, resp.RunID)
	assert.Equal(t, types.DataQualityFallback, resp.DataQuality)
	assert.Equal(t, types.DataQualityFallback, doc.DaySummary.DataQuality)
	assert.Contains(t, doc.Health.Reasons, external.IssueOffline)
	assert.NotEmpty(t, doc.Regions)
	assert.Equal(t, types.TraceFull, doc.Meta.TraceLevelRequested)
	assert.Equal(t, types.TraceMinimal, doc.Meta.TraceLevelApplied, "full trace is gated off by default")
	assert.Empty(t, metrics.fallbacks, "offline data is not a provider failure")
}

func TestNewLogsRuleCountsAndModes(t *testing.T) {
	logger := &recordingLogger{}
	_, err := New(context.Background(), offlineConfig(), Deps{
		Slog:   discardSlog(),
		Logger: logger,
		Clock:  types.FixedClock{T: now},
	})
	require.NoError(t, err)

	args, ok := logger.infos["decision job ready"]
	require.True(t, ok, "ready line missing")
	got := fields(args)
	assert.Equal(t, 21, got["rules_active"])
	assert.Equal(t, 1, got["rules_disabled"])
	assert.Equal(t, false, got["allow_trace_full"])
	assert.Equal(t, true, got["offline"])
}

func TestNewWithoutLogger(t *testing.T) {
	j, err := New(context.Background(), offlineConfig(), Deps{Slog: discardSlog(), Clock: types.FixedClock{T: now}})
	require.NoError(t, err)
	assert.Equal(t, types.NopLogger{}, j.Logger)
}

func TestLoadCatalogDirError(t *testing.T) {
	_, err := LoadCatalog(t.TempDir() + "/missing")
	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeConfigCatalog, appErr.Code)
}

func discardSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
