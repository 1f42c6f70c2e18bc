package timer

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

type signals struct {
	ticks   chan int // remaining seconds
	expires chan int // generation
}

func newTimerForTest(fc clockwork.Clock) (*TurnTimer, signals) {
	sig := signals{
		ticks:   make(chan int, 16),
		expires: make(chan int, 16),
	}
	tt := New(fc, Callbacks{
		Tick:   func(gen, remaining int) { sig.ticks <- remaining },
		Expire: func(gen int) { sig.expires <- gen },
	})
	return tt, sig
}

func recvInt(t *testing.T, ch <-chan int) int {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for signal")
		return 0
	}
}

func recvNone(t *testing.T, ch <-chan int, within time.Duration) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("expected no signal, got %d", v)
	case <-time.After(within):
	}
}

func TestTimer_TicksDownAndExpiresOnce(t *testing.T) {
	fc := clockwork.NewFakeClock()
	tt, sig := newTimerForTest(fc)

	tt.Start(2)
	fc.BlockUntil(1)

	fc.Advance(time.Second)
	require.Equal(t, 1, recvInt(t, sig.ticks))

	fc.Advance(time.Second)
	require.Equal(t, 0, recvInt(t, sig.ticks))
	require.Equal(t, 1, recvInt(t, sig.expires))

	// The generation is spent: no further signals.
	fc.Advance(5 * time.Second)
	recvNone(t, sig.ticks, 50*time.Millisecond)
	recvNone(t, sig.expires, 50*time.Millisecond)
}

func TestTimer_PauseFreezesElapsed(t *testing.T) {
	fc := clockwork.NewFakeClock()
	tt, sig := newTimerForTest(fc)

	tt.Start(3)
	fc.BlockUntil(1)

	fc.Advance(time.Second)
	require.Equal(t, 2, recvInt(t, sig.ticks))

	tt.Pause()
	fc.Advance(2 * time.Second)
	recvNone(t, sig.ticks, 50*time.Millisecond)
	require.Equal(t, 2, tt.Remaining())

	tt.Resume()
	fc.Advance(time.Second)
	require.Equal(t, 1, recvInt(t, sig.ticks))
}

func TestTimer_StopIsIdempotent(t *testing.T) {
	fc := clockwork.NewFakeClock()
	tt, sig := newTimerForTest(fc)

	tt.Start(1)
	fc.BlockUntil(1)

	tt.Stop()
	tt.Stop() // second stop must not panic or re-fire anything

	fc.Advance(3 * time.Second)
	recvNone(t, sig.ticks, 50*time.Millisecond)
	recvNone(t, sig.expires, 50*time.Millisecond)
}

func TestTimer_ExpiredNeedsRestartNotResume(t *testing.T) {
	fc := clockwork.NewFakeClock()
	tt, sig := newTimerForTest(fc)

	tt.Start(1)
	fc.BlockUntil(1)
	fc.Advance(time.Second)
	require.Equal(t, 0, recvInt(t, sig.ticks))
	require.Equal(t, 1, recvInt(t, sig.expires))
	require.True(t, tt.Expired())

	// Resume cannot revive a spent generation.
	tt.Resume()
	require.True(t, tt.Expired())
	fc.Advance(3 * time.Second)
	recvNone(t, sig.ticks, 50*time.Millisecond)

	// Start does.
	tt.Start(2)
	require.False(t, tt.Expired())
	require.Equal(t, 2, tt.Gen())
	require.Equal(t, 2, tt.Remaining())
}

func TestTimer_RestartSupersedesOldGeneration(t *testing.T) {
	fc := clockwork.NewFakeClock()
	tt, sig := newTimerForTest(fc)

	tt.Start(10)
	fc.BlockUntil(1)
	tt.Start(1)
	require.Equal(t, 2, tt.Gen())

	// The old loop may still be winding down; keep advancing until the
	// new generation's ticker fires.
	gen := 0
	for i := 0; i < 5 && gen == 0; i++ {
		fc.Advance(time.Second)
		select {
		case gen = <-sig.expires:
		case <-time.After(50 * time.Millisecond):
		}
	}
	require.Equal(t, 2, gen, "expiry must carry the superseding generation")

	fc.Advance(10 * time.Second)
	recvNone(t, sig.expires, 50*time.Millisecond)
}
