package locker_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starhold_server/internal/locker"
	"starhold_server/pkg/logger"
)

// silentLogger :
// Discards every message so that the tests stay quiet.
type silentLogger struct{}

func (l silentLogger) Trace(level logger.Severity, module string, message string) {}

func newTestLocker() *locker.PlanetLocker {
	return locker.NewPlanetLockerWithTimings(50*time.Millisecond, 5*time.Millisecond, silentLogger{})
}

func TestAcquireAndRelease(t *testing.T) {
	pl := newTestLocker()

	require.NoError(t, pl.Acquire("1:1:1"))
	pl.Release("1:1:1")

	// A released resource can be acquired again.
	require.NoError(t, pl.Acquire("1:1:1"))
	pl.Release("1:1:1")
}

func TestAcquire_DistinctResourcesDoNotContend(t *testing.T) {
	pl := newTestLocker()

	require.NoError(t, pl.Acquire("1:1:1"))
	require.NoError(t, pl.Acquire("1:1:2"))

	pl.Release("1:1:1")
	pl.Release("1:1:2")
}

func TestAcquire_HeldResourceFailsWithBusy(t *testing.T) {
	pl := newTestLocker()

	require.NoError(t, pl.Acquire("1:1:1"))

	err := pl.Acquire("1:1:1")
	assert.Equal(t, locker.ErrBusy, err)

	pl.Release("1:1:1")
}

func TestAcquire_WaitsForTheHolder(t *testing.T) {
	pl := newTestLocker()

	require.NoError(t, pl.Acquire("1:1:1"))

	go func() {
		time.Sleep(15 * time.Millisecond)
		pl.Release("1:1:1")
	}()

	// The acquisition polls until the holder lets go.
	assert.NoError(t, pl.Acquire("1:1:1"))
	pl.Release("1:1:1")
}

func TestRelease_UnheldResourceIsANoOp(t *testing.T) {
	pl := newTestLocker()

	pl.Release("1:1:1")

	assert.NoError(t, pl.Acquire("1:1:1"))
	pl.Release("1:1:1")
}

func TestAcquireAll_LocksEveryResourceOnce(t *testing.T) {
	pl := newTestLocker()

	// Duplicates are locked a single time so releasing
	// once per key frees everything.
	require.NoError(t, pl.AcquireAll([]string{"1:1:2", "1:1:1", "1:1:2"}))

	assert.Equal(t, locker.ErrBusy, pl.Acquire("1:1:1"))
	assert.Equal(t, locker.ErrBusy, pl.Acquire("1:1:2"))

	pl.ReleaseAll([]string{"1:1:1", "1:1:2"})

	assert.NoError(t, pl.Acquire("1:1:1"))
	pl.Release("1:1:1")
}

func TestAcquireAll_ReleasesEverythingOnFailure(t *testing.T) {
	pl := newTestLocker()

	require.NoError(t, pl.Acquire("1:1:2"))

	err := pl.AcquireAll([]string{"1:1:1", "1:1:2", "1:1:3"})
	require.Equal(t, locker.ErrBusy, err)

	// The locks acquired before the failure were rolled
	// back.
	assert.NoError(t, pl.Acquire("1:1:1"))
	assert.NoError(t, pl.Acquire("1:1:3"))

	pl.ReleaseAll([]string{"1:1:1", "1:1:2", "1:1:3"})
}
