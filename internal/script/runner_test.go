package script_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurokit/triggerline/internal/dispatch"
	"github.com/neurokit/triggerline/internal/mapping"
	"github.com/neurokit/triggerline/internal/script"
	"github.com/neurokit/triggerline/internal/session"
	"github.com/neurokit/triggerline/internal/testutil"
)

func readySession(t *testing.T, tr *testutil.RecordingTransport, doc mapping.Document) *session.Manager {
	t.Helper()
	m := session.NewManager(
		session.WithEngine(dispatch.New(dispatch.WithTransport(tr))),
		session.WithTokenGenerator(session.NewFixedGenerator()),
		session.WithLoader(func(string) (mapping.Document, error) { return doc, nil }),
	)
	require.NoError(t, m.Initialize(context.Background(), "h", 1, ""))
	require.NoError(t, tr.WaitForRequests(1, time.Second))
	// Awaited mode: script steps settle one at a time.
	m.Engine().SetLowLatency(false)
	m.Engine().SetSkipResponse(false)
	return m
}

func intp(v int64) *int64 { return &v }

func TestRunner_Run_AllSteps(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := readySession(t, tr, mapping.FromMap(map[string]any{
		"system": map[string]any{"test": 1},
		"scenes": map[string]any{"go": 20},
	}))

	s := &script.Script{
		Name: "demo",
		Steps: []script.Step{
			{Event: "scenes.go"},
			{Value: intp(42), Label: "pulse"},
		},
	}
	require.NoError(t, s.Validate())

	results, err := script.NewRunner(m).Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "scenes.go", results[0].Event)
	assert.Equal(t, int64(20), results[0].Value)
	assert.Equal(t, dispatch.StatusOK, results[0].Status)
	assert.Equal(t, int64(42), results[1].Value)

	reqs := tr.Requests()
	require.Len(t, reqs, 3, "self-test plus two steps")
	assert.Equal(t, `{"trigger_value":20}`, reqs[1].Body)
	assert.Equal(t, `{"trigger_value":42}`, reqs[2].Body)
}

func TestRunner_Run_StopsAtFirstFailure(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := readySession(t, tr, mapping.Default())

	s := &script.Script{
		Name: "halts",
		Steps: []script.Step{
			{Event: "scenes.unknown"},
			{Value: intp(2)},
		},
	}

	results, err := script.NewRunner(m).Run(context.Background(), s)
	require.Error(t, err)
	assert.True(t, mapping.IsNotFound(err))
	require.Len(t, results, 1, "execution stops at the failed step")
	assert.Equal(t, "error", results[0].Status)
}

func TestRunner_Run_ContinueOnError(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := readySession(t, tr, mapping.Default())

	s := &script.Script{
		Name: "persists",
		Steps: []script.Step{
			{Event: "scenes.unknown"},
			{Value: intp(2)},
		},
	}

	runner := script.NewRunner(m, script.WithContinueOnError(true))
	results, err := runner.Run(context.Background(), s)
	require.Error(t, err, "the first error is still reported")
	require.Len(t, results, 2, "later steps still execute")
	assert.Equal(t, dispatch.StatusOK, results[1].Status)
}

func TestRunner_Run_LogsFailedSteps(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := readySession(t, tr, mapping.Default())

	var buf bytes.Buffer
	runner := script.NewRunner(m,
		script.WithRunnerLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	s := &script.Script{
		Name:  "noisy",
		Steps: []script.Step{{Event: "scenes.unknown"}},
	}

	_, err := runner.Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "script step failed")
	assert.Contains(t, buf.String(), "noisy")
}

func TestRunner_Run_PacedSteps(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := readySession(t, tr, mapping.Default())

	var waits []time.Duration
	runner := script.NewRunner(m, script.WithSleep(func(d time.Duration) {
		waits = append(waits, d)
	}))

	s := &script.Script{
		Name: "paced",
		Steps: []script.Step{
			{Value: intp(1), WaitMillis: 500},
			{Value: intp(2)},
		},
	}

	_, err := runner.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, waits)
}

func TestRunner_Run_NoWaitAfterFailedStep(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := readySession(t, tr, mapping.Default())

	var slept bool
	runner := script.NewRunner(m,
		script.WithContinueOnError(true),
		script.WithSleep(func(time.Duration) { slept = true }))

	s := &script.Script{
		Name: "failfast-pause",
		Steps: []script.Step{
			{Event: "scenes.unknown", WaitMillis: 500},
			{Value: intp(2)},
		},
	}

	_, err := runner.Run(context.Background(), s)
	require.Error(t, err)
	assert.False(t, slept, "pauses apply only after settled steps")
}
