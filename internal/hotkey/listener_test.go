package hotkey

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirbread/tarrow/internal/errors"
)

// edgeRecorder counts down/up callbacks thread-safely.
type edgeRecorder struct {
	mu    sync.Mutex
	downs int
	ups   int
}

func (r *edgeRecorder) down() {
	r.mu.Lock()
	r.downs++
	r.mu.Unlock()
}

func (r *edgeRecorder) up() {
	r.mu.Lock()
	r.ups++
	r.mu.Unlock()
}

func (r *edgeRecorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.downs, r.ups
}

func newRegisteredListener(t *testing.T, combo string) (*TerminalListener, *edgeRecorder) {
	t.Helper()
	l := NewTerminalListener(nil)
	l.SetHoldWindow(30 * time.Millisecond)

	rec := &edgeRecorder{}
	require.NoError(t, l.Register(combo, rec.down, rec.up))
	t.Cleanup(l.Unregister)
	return l, rec
}

func waitForUps(t *testing.T, rec *edgeRecorder, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ups := rec.counts(); ups >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	_, ups := rec.counts()
	t.Fatalf("timed out waiting for %d up edges, have %d", want, ups)
}

func TestListener_FirstPressEmitsSingleDownEdge(t *testing.T) {
	l, rec := newRegisteredListener(t, "ctrl+p")

	assert.True(t, l.Feed("ctrl+p"))
	assert.True(t, l.Held())

	downs, ups := rec.counts()
	assert.Equal(t, 1, downs)
	assert.Equal(t, 0, ups)
}

func TestListener_AutorepeatExtendsHoldWithoutNewEdges(t *testing.T) {
	l, rec := newRegisteredListener(t, "ctrl+p")

	// Repeats arrive faster than the hold window, as autorepeat does.
	for i := 0; i < 5; i++ {
		assert.True(t, l.Feed("ctrl+p"))
		time.Sleep(10 * time.Millisecond)
	}

	downs, ups := rec.counts()
	assert.Equal(t, 1, downs, "held key emits exactly one down edge")
	assert.Equal(t, 0, ups)
	assert.True(t, l.Held())
}

func TestListener_HoldWindowLapseEmitsUpEdge(t *testing.T) {
	l, rec := newRegisteredListener(t, "ctrl+p")

	l.Feed("ctrl+p")
	waitForUps(t, rec, 1)

	downs, ups := rec.counts()
	assert.Equal(t, 1, downs)
	assert.Equal(t, 1, ups)
	assert.False(t, l.Held())
}

func TestListener_PressAfterReleaseIsNewEdgePair(t *testing.T) {
	l, rec := newRegisteredListener(t, "ctrl+p")

	l.Feed("ctrl+p")
	waitForUps(t, rec, 1)

	l.Feed("ctrl+p")
	waitForUps(t, rec, 2)

	downs, ups := rec.counts()
	assert.Equal(t, 2, downs)
	assert.Equal(t, 2, ups)
}

func TestListener_OtherKeysNotConsumed(t *testing.T) {
	l, rec := newRegisteredListener(t, "ctrl+p")

	assert.False(t, l.Feed("ctrl+o"))
	assert.False(t, l.Feed("q"))

	downs, _ := rec.counts()
	assert.Equal(t, 0, downs)
}

func TestListener_RegisterConflict(t *testing.T) {
	first := NewTerminalListener(nil)
	require.NoError(t, first.Register("ctrl+k", nil, nil))
	t.Cleanup(first.Unregister)

	second := NewTerminalListener(nil)
	err := second.Register("ctrl+k", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrHotkey))
}

func TestListener_RegisterTwiceOnSameListenerFails(t *testing.T) {
	l, _ := newRegisteredListener(t, "ctrl+p")
	assert.Error(t, l.Register("ctrl+o", nil, nil))
}

func TestListener_RegisterEmptyComboFails(t *testing.T) {
	l := NewTerminalListener(nil)
	assert.Error(t, l.Register("", nil, nil))
}

func TestListener_UnregisterReleasesClaim(t *testing.T) {
	l := NewTerminalListener(nil)
	require.NoError(t, l.Register("ctrl+j", nil, nil))
	l.Unregister()

	other := NewTerminalListener(nil)
	require.NoError(t, other.Register("ctrl+j", nil, nil))
	other.Unregister()
}

func TestListener_UnregisterIsIdempotent(t *testing.T) {
	l := NewTerminalListener(nil)
	require.NoError(t, l.Register("ctrl+u", nil, nil))

	l.Unregister()
	l.Unregister()
	assert.Empty(t, l.Combo())
}

func TestListener_NoCallbacksAfterUnregister(t *testing.T) {
	l, rec := newRegisteredListener(t, "ctrl+p")

	l.Feed("ctrl+p")
	l.Unregister()

	downs, ups := rec.counts()
	time.Sleep(100 * time.Millisecond)

	downsAfter, upsAfter := rec.counts()
	assert.Equal(t, downs, downsAfter)
	assert.Equal(t, ups, upsAfter, "the pending hold-window expiry must not fire an up edge")

	assert.False(t, l.Feed("ctrl+p"))
}

func TestListener_RebindSwitchesCombo(t *testing.T) {
	l, rec := newRegisteredListener(t, "ctrl+p")

	require.NoError(t, l.Rebind("ctrl+o"))
	assert.Equal(t, "ctrl+o", l.Combo())

	assert.False(t, l.Feed("ctrl+p"), "the old combo is no longer consumed")
	assert.True(t, l.Feed("ctrl+o"))

	downs, _ := rec.counts()
	assert.Equal(t, 1, downs, "callbacks survive a rebind")
}

func TestListener_RebindConflictRestoresOldBinding(t *testing.T) {
	other := NewTerminalListener(nil)
	require.NoError(t, other.Register("ctrl+k", nil, nil))
	t.Cleanup(other.Unregister)

	l, _ := newRegisteredListener(t, "ctrl+p")

	err := l.Rebind("ctrl+k")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrHotkey))
	assert.Equal(t, "ctrl+p", l.Combo(), "failed rebind keeps the old combo")
	assert.True(t, l.Feed("ctrl+p"), "the old claim is restored")
}

func TestListener_RebindSameComboIsNoOp(t *testing.T) {
	l, _ := newRegisteredListener(t, "ctrl+p")
	assert.NoError(t, l.Rebind("ctrl+p"))
	assert.Equal(t, "ctrl+p", l.Combo())
}

func TestListener_RebindWithoutRegisterFails(t *testing.T) {
	l := NewTerminalListener(nil)
	assert.Error(t, l.Rebind("ctrl+p"))
}

func TestListener_RebindReleasesActiveHold(t *testing.T) {
	l, rec := newRegisteredListener(t, "ctrl+p")

	l.Feed("ctrl+p")
	require.NoError(t, l.Rebind("ctrl+o"))
	assert.False(t, l.Held())

	_, ups := rec.counts()
	assert.Equal(t, 1, ups, "a hold interrupted by rebind fires the up edge")

	// The cancelled timer must not fire a second up edge later.
	time.Sleep(100 * time.Millisecond)
	_, ups = rec.counts()
	assert.Equal(t, 1, ups)
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "down", KindDown.String())
	assert.Equal(t, "up", KindUp.String())
}
