package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurokit/triggerline/internal/dispatch"
	"github.com/neurokit/triggerline/internal/mapping"
	"github.com/neurokit/triggerline/internal/session"
	"github.com/neurokit/triggerline/internal/testutil"
)

// newTestManager builds a Ready-capable manager on a stub transport with a
// deterministic clock and token sequence.
func newTestManager(t *testing.T, tr *testutil.RecordingTransport, doc mapping.Document) *session.Manager {
	t.Helper()
	clock := testutil.NewTickingClock(time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC))
	return session.NewManager(
		session.WithEngine(dispatch.New(dispatch.WithTransport(tr))),
		session.WithTokenGenerator(session.NewFixedGenerator()),
		session.WithClock(clock.Now),
		session.WithLoader(func(string) (mapping.Document, error) { return doc, nil }),
	)
}

func TestManager_Initialize_Succeeds(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := newTestManager(t, tr, mapping.Default())

	require.NoError(t, m.Initialize(context.Background(), "127.0.0.1", 5000, "triggers.json"))

	assert.Equal(t, session.Ready, m.State())
	assert.False(t, m.UsedFallbackMapping())

	history := m.History()
	require.Len(t, history, 1, "self-test dispatch is recorded")
	assert.Equal(t, int64(1), history[0].Value)
	assert.Contains(t, history[0].Label, "system.test")
}

func TestManager_Initialize_AppliesManagedPosture(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := newTestManager(t, tr, mapping.Default())

	require.NoError(t, m.Initialize(context.Background(), "rig-1", 6000, ""))

	cfg := m.Engine().Config()
	assert.Equal(t, "rig-1", cfg.Host)
	assert.Equal(t, 6000, cfg.Port)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.LowLatency)
	assert.True(t, cfg.SkipResponse)
}

func TestManager_Initialize_FallsBackOnLoadFailure(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	clock := testutil.NewTickingClock(time.Unix(0, 0))
	m := session.NewManager(
		session.WithEngine(dispatch.New(dispatch.WithTransport(tr))),
		session.WithClock(clock.Now),
		session.WithLoader(func(file string) (mapping.Document, error) {
			return mapping.Document{}, &mapping.LoadError{File: file, Err: errors.New("no such file")}
		}),
	)

	require.NoError(t, m.Initialize(context.Background(), "h", 1, "missing.json"),
		"load failure is recovered locally, initialization continues")

	assert.Equal(t, session.Ready, m.State())
	assert.True(t, m.UsedFallbackMapping(), "fallback must be surfaced, not silent")

	// The fallback document resolves the system triad.
	_, err := m.Mapping().Resolve("system.initialized")
	assert.NoError(t, err)
}

func TestManager_Initialize_FailsWhenSelfTestUnresolvable(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	// A loaded document without the system.test event breaks the self-test.
	m := newTestManager(t, tr, mapping.FromMap(map[string]any{"scenes": map[string]any{"go": 1}}))

	err := m.Initialize(context.Background(), "h", 1, "triggers.json")
	require.Error(t, err)
	assert.Equal(t, session.Failed, m.State())
	assert.True(t, mapping.IsNotFound(err))
	assert.Empty(t, tr.Requests(), "no dispatch when resolution fails")
}

func TestManager_Initialize_Reentrant(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := newTestManager(t, tr, mapping.Default())

	require.NoError(t, m.Initialize(context.Background(), "h", 1, "triggers.json"))
	require.NoError(t, tr.WaitForRequests(1, time.Second))
	require.NoError(t, m.Initialize(context.Background(), "h", 1, "triggers.json"))

	assert.Equal(t, session.Ready, m.State())
	assert.Len(t, m.History(), 2, "one extra self-test entry per initialize")
	assert.False(t, m.UsedFallbackMapping())
}

func TestManager_SendTrigger_BeforeInitialize(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := newTestManager(t, tr, mapping.Default())

	_, err := m.SendTrigger(context.Background(), 42, "too early")
	require.Error(t, err)
	assert.True(t, session.IsNotReady(err))
	assert.Empty(t, m.History(), "nothing appended on a rejected send")
	assert.Empty(t, tr.Requests(), "nothing dispatched on a rejected send")
}

func TestManager_SendTrigger_AppendsBeforeDispatchSettles(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	tr.Err = &dispatch.TransportError{Status: 500}
	m := newTestManager(t, tr, mapping.Default())
	require.NoError(t, m.Initialize(context.Background(), "h", 1, ""))

	// Awaited mode so the failure is observable.
	m.Engine().SetLowLatency(false)
	m.Engine().SetSkipResponse(false)

	_, err := m.SendTrigger(context.Background(), 42, "stim onset")
	require.Error(t, err)
	assert.True(t, dispatch.IsTransportError(err))

	history := m.History()
	require.Len(t, history, 2)
	assert.Equal(t, int64(42), history[1].Value, "ledger records intent-to-send even when delivery fails")
	assert.Equal(t, "stim onset", history[1].Label)
}

func TestManager_SendTrigger_OneEntryPerSendAcrossModes(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := newTestManager(t, tr, mapping.Default())
	require.NoError(t, m.Initialize(context.Background(), "h", 1, ""))

	require.NoError(t, tr.WaitForRequests(1, time.Second))
	base := len(m.History())

	_, err := m.SendTrigger(context.Background(), 1, "skip mode")
	require.NoError(t, err)

	// Let the skip-response dispatch settle before switching modes.
	require.NoError(t, tr.WaitForRequests(2, time.Second))

	m.Engine().SetSkipResponse(false)
	_, err = m.SendTrigger(context.Background(), 2, "low-latency awaited")
	require.NoError(t, err)

	m.Engine().SetLowLatency(false)
	_, err = m.SendTrigger(context.Background(), 3, "standard")
	require.NoError(t, err)

	assert.Equal(t, base+3, len(m.History()))
}

func TestManager_SendTriggerByEvent_ResolutionFailureHasNoSideEffects(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := newTestManager(t, tr, mapping.Default())
	require.NoError(t, m.Initialize(context.Background(), "h", 1, ""))

	// Let the self-test's skip-response dispatch settle before counting.
	require.NoError(t, tr.WaitForRequests(1, time.Second))
	sent := len(tr.Requests())
	recorded := len(m.History())

	_, err := m.SendTriggerByEvent(context.Background(), "scenes.unknown", "")
	require.Error(t, err)
	assert.True(t, mapping.IsNotFound(err))
	assert.Len(t, m.History(), recorded, "resolution failure leaves the ledger untouched")
	require.NoError(t, tr.WaitForRequests(sent, 100*time.Millisecond))
	assert.Len(t, tr.Requests(), sent, "resolution failure reaches no network call")
}

func TestManager_SendTriggerByEvent_DispatchesResolvedCode(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := newTestManager(t, tr, mapping.FromMap(map[string]any{
		"system": map[string]any{"test": 99},
	}))
	require.NoError(t, m.Initialize(context.Background(), "h", 1, "triggers.json"))
	require.NoError(t, tr.WaitForRequests(1, time.Second))

	out, err := m.SendTriggerByEvent(context.Background(), "system.test", "")
	require.NoError(t, err)
	assert.Equal(t, int64(99), out.Value)

	// Managed posture is skip-response; the wire settles asynchronously.
	require.NoError(t, tr.WaitForRequests(2, time.Second))
	reqs := tr.Requests()
	assert.Equal(t, `{"trigger_value":99}`, reqs[1].Body)

	history := m.History()
	assert.Equal(t, "system.test", history[len(history)-1].Label)
}

func TestManager_SendTriggerByEvent_LabelExtendsPath(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := newTestManager(t, tr, mapping.Default())
	require.NoError(t, m.Initialize(context.Background(), "h", 1, ""))
	require.NoError(t, tr.WaitForRequests(1, time.Second))

	_, err := m.SendTriggerByEvent(context.Background(), "system.error", "operator abort")
	require.NoError(t, err)

	history := m.History()
	assert.Equal(t, "system.error operator abort", history[len(history)-1].Label)
}

func TestManager_SendBatch(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := newTestManager(t, tr, mapping.Default())
	require.NoError(t, m.Initialize(context.Background(), "h", 1, ""))

	base := len(m.History())
	out, err := m.SendBatch(context.Background(), []int64{10, 11, 12}, "block markers")
	require.NoError(t, err)
	assert.Equal(t, dispatch.StatusOK, out.Status, "batch is always awaited")
	assert.Len(t, m.History(), base+3, "one ledger entry per batch value")
}

func TestManager_History_SnapshotIsolation(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := newTestManager(t, tr, mapping.Default())
	require.NoError(t, m.Initialize(context.Background(), "h", 1, ""))
	require.NoError(t, tr.WaitForRequests(1, time.Second))

	snap := m.History()
	_, err := m.SendTrigger(context.Background(), 7, "after snapshot")
	require.NoError(t, err)

	assert.Len(t, snap, 1, "later appends never mutate an already-returned snapshot")
	assert.Len(t, m.History(), 2)
}

func TestManager_LedgerTimestampsAreMonotonic(t *testing.T) {
	tr := testutil.NewRecordingTransport()
	m := newTestManager(t, tr, mapping.Default())
	require.NoError(t, m.Initialize(context.Background(), "h", 1, ""))
	require.NoError(t, tr.WaitForRequests(1, time.Second))

	// Awaited mode so sequential sends never overlap on the wire.
	m.Engine().SetSkipResponse(false)

	for i := int64(0); i < 5; i++ {
		_, err := m.SendTrigger(context.Background(), i, "tick")
		require.NoError(t, err)
	}

	history := m.History()
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i].Timestamp.After(history[i-1].Timestamp),
			"insertion order is the record of temporal order")
	}
}
