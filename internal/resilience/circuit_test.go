package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(target string, settings BreakerSettings) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	b := NewBreaker(target, settings)
	b.now = clock.now
	return b, clock
}

func TestBreakerTransitions(t *testing.T) {
	b, clock := newTestBreaker("transitions", BreakerSettings{
		MinRequests:  2,
		FailureRatio: 0.5,
		OpenFor:      time.Second,
	})
	ctx := context.Background()

	require.NoError(t, b.Allow(ctx))
	b.Report(ctx, false)
	require.Equal(t, Closed, b.State(), "below MinRequests")
	require.NoError(t, b.Allow(ctx))
	b.Report(ctx, false)

	require.ErrorIs(t, b.Allow(ctx), ErrOpenCircuit)
	require.Equal(t, Open, b.State())

	clock.advance(999 * time.Millisecond)
	require.ErrorIs(t, b.Allow(ctx), ErrOpenCircuit)

	clock.advance(time.Millisecond)
	require.NoError(t, b.Allow(ctx), "probe after cool off")
	require.Equal(t, HalfOpen, b.State())
	require.ErrorIs(t, b.Allow(ctx), ErrOpenCircuit, "only one probe in flight")

	b.Report(ctx, true)
	require.Equal(t, Closed, b.State())
	require.NoError(t, b.Allow(ctx))
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	b, clock := newTestBreaker("reopen", BreakerSettings{MinRequests: 1, OpenFor: 10 * time.Millisecond})
	ctx := context.Background()

	b.Report(ctx, false)
	require.Equal(t, Open, b.State())

	clock.advance(10 * time.Millisecond)
	require.NoError(t, b.Allow(ctx))
	b.Report(ctx, false)
	require.Equal(t, Open, b.State())
	require.ErrorIs(t, b.Allow(ctx), ErrOpenCircuit)
}

func TestBreakerWindowForgetsOldFailures(t *testing.T) {
	b, _ := newTestBreaker("window", BreakerSettings{MinRequests: 4, FailureRatio: 0.5, Window: 4})
	ctx := context.Background()

	// F S S S keeps the ratio at 1/4.
	b.Report(ctx, false)
	for range 3 {
		b.Report(ctx, true)
	}
	require.Equal(t, Closed, b.State())

	// The first failure rolls out of the window: S S S F, then S S F F reaches 2/4.
	b.Report(ctx, false)
	require.Equal(t, Closed, b.State())
	b.Report(ctx, false)
	require.Equal(t, Open, b.State())
}

func TestNilBreakerAllowsEverything(t *testing.T) {
	var b *Breaker
	require.NoError(t, b.Allow(context.Background()))
	b.Report(context.Background(), false)
	require.Equal(t, "default", b.Target())
}

func TestBreakerSettingsDefaults(t *testing.T) {
	s := BreakerSettings{MinRequests: 3, FailureRatio: 4}.normalised()
	require.Equal(t, 1.0, s.FailureRatio)
	require.Equal(t, 30*time.Second, s.OpenFor)
	require.Equal(t, 10, s.Window)
	require.Equal(t, "half_open", HalfOpen.String())
	require.Equal(t, "unknown", State(7).String())
}

func TestBreakerMetricsTransitions(t *testing.T) {
	const target = "quote-form-metrics"
	b, clock := newTestBreaker(target, BreakerSettings{MinRequests: 1, OpenFor: 20 * time.Millisecond})
	ctx := context.Background()
	require.Equal(t, 0.0, testutil.ToFloat64(breakerState.WithLabelValues(target)))

	require.NoError(t, b.Allow(ctx))
	b.Report(ctx, false)
	require.Equal(t, 1.0, testutil.ToFloat64(breakerState.WithLabelValues(target)))

	clock.advance(20 * time.Millisecond)
	require.NoError(t, b.Allow(ctx))
	require.Equal(t, 2.0, testutil.ToFloat64(breakerState.WithLabelValues(target)))

	b.Report(ctx, true)
	require.Equal(t, 0.0, testutil.ToFloat64(breakerState.WithLabelValues(target)))

	require.Equal(t, 1.0, testutil.ToFloat64(breakerOpened.WithLabelValues(target)))
	require.Equal(t, 1.0, testutil.ToFloat64(breakerTransitions.WithLabelValues(target, "closed", "open")))
	require.Equal(t, 1.0, testutil.ToFloat64(breakerTransitions.WithLabelValues(target, "open", "half_open")))
	require.Equal(t, 1.0, testutil.ToFloat64(breakerTransitions.WithLabelValues(target, "half_open", "closed")))
}

func TestBackoffWithJitter(t *testing.T) {
	base := 100 * time.Millisecond
	require.Equal(t, base, Backoff(base, 0, 0))
	require.Equal(t, base*4, Backoff(base, 3, 0))
	require.Equal(t, defaultBackoffBase, Backoff(0, 1, 0))

	for range 20 {
		d := Backoff(base, 2, 0.2)
		require.GreaterOrEqual(t, d, base*2-base*2/5)
		require.LessOrEqual(t, d, base*2+base*2/5)
	}
}
