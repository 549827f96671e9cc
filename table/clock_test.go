package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestActionClockFires(t *testing.T) {
	fired := make(chan ClockToken, 1)
	clock := NewActionClock(func(token ClockToken) { fired <- token })

	token := clock.Arm(10 * time.Millisecond)
	require.NotZero(t, token)

	select {
	case got := <-fired:
		require.Equal(t, token, got)
	case <-time.After(time.Second):
		t.Fatal("clock never fired")
	}

	// A fired token does not fire again.
	select {
	case <-fired:
		t.Fatal("clock fired twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestActionClockCancel(t *testing.T) {
	fired := make(chan ClockToken, 1)
	clock := NewActionClock(func(token ClockToken) { fired <- token })

	token := clock.Arm(20 * time.Millisecond)
	clock.Cancel(token)

	select {
	case <-fired:
		t.Fatal("canceled clock fired")
	case <-time.After(100 * time.Millisecond):
	}

	// Cancel is idempotent, including for stale tokens.
	clock.Cancel(token)
	clock.Cancel(0)
}

func TestActionClockArmSupersedes(t *testing.T) {
	fired := make(chan ClockToken, 2)
	clock := NewActionClock(func(token ClockToken) { fired <- token })

	first := clock.Arm(20 * time.Millisecond)
	second := clock.Arm(20 * time.Millisecond)
	require.NotEqual(t, first, second)

	select {
	case got := <-fired:
		require.Equal(t, second, got, "only the latest armed token may fire")
	case <-time.After(time.Second):
		t.Fatal("clock never fired")
	}

	select {
	case got := <-fired:
		t.Fatalf("superseded token %d fired", got)
	case <-time.After(50 * time.Millisecond):
	}
}
