package resilience

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// ErrOpenCircuit is returned while a breaker refuses calls to its target.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

// State is the position of a breaker in its closed → open → half-open cycle.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

var stateNames = [...]string{Closed: "closed", Open: "open", HalfOpen: "half_open"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// BreakerSettings tunes a breaker. The failure ratio is evaluated over the last Window outcomes
// once at least MinRequests of them have been seen.
type BreakerSettings struct {
	MinRequests  int
	FailureRatio float64
	OpenFor      time.Duration
	Window       int
}

func (s BreakerSettings) normalised() BreakerSettings {
	if s.MinRequests < 1 {
		s.MinRequests = 1
	}
	switch {
	case s.FailureRatio <= 0:
		s.FailureRatio = 0.5
	case s.FailureRatio > 1:
		s.FailureRatio = 1
	}
	if s.OpenFor <= 0 {
		s.OpenFor = 30 * time.Second
	}
	if s.Window < s.MinRequests {
		s.Window = max(2*s.MinRequests, 10)
	}
	return s
}

// Breaker guards one upstream target. The zero value is not usable; a nil *Breaker admits
// every call.
type Breaker struct {
	target   string
	settings BreakerSettings
	now      func() time.Time

	mu       sync.Mutex
	state    State
	outcomes []bool // ring of recent results, true = failure
	next     int
	filled   int
	failed   int
	openedAt time.Time
	probing  bool
	logger   zerolog.Logger
}

// NewBreaker returns a closed breaker for target.
func NewBreaker(target string, settings BreakerSettings) *Breaker {
	settings = settings.normalised()
	b := &Breaker{
		target:   strings.TrimSpace(target),
		settings: settings,
		now:      time.Now,
		outcomes: make([]bool, settings.Window),
		logger:   zerolog.Nop(),
	}
	if b.target == "" {
		b.target = "default"
	}
	breakerState.WithLabelValues(b.target).Set(gaugeValue(Closed))
	return b
}

// WithLogger sets the logger used for state transitions.
func (b *Breaker) WithLogger(logger zerolog.Logger) *Breaker {
	b.mu.Lock()
	b.logger = logger
	b.mu.Unlock()
	return b
}

// Target is the label used in logs and metrics.
func (b *Breaker) Target() string {
	if b == nil {
		return "default"
	}
	return b.target
}

// State reports the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call may proceed. Once OpenFor has elapsed an open breaker turns
// half-open and admits exactly one probe until that probe is reported.
func (b *Breaker) Allow(ctx context.Context) error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) < b.settings.OpenFor {
			return ErrOpenCircuit
		}
		b.transition(ctx, HalfOpen)
	case HalfOpen:
		if b.probing {
			return ErrOpenCircuit
		}
	default:
		return nil
	}
	b.probing = true
	return nil
}

// Report feeds the outcome of an admitted call back into the breaker.
func (b *Breaker) Report(ctx context.Context, success bool) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
	case HalfOpen:
		b.probing = false
		if success {
			b.transition(ctx, Closed)
		} else {
			b.transition(ctx, Open)
		}
	default:
		b.record(!success)
		if b.filled >= b.settings.MinRequests &&
			float64(b.failed)/float64(b.filled) >= b.settings.FailureRatio {
			b.transition(ctx, Open)
		}
	}
}

func (b *Breaker) record(failure bool) {
	if b.filled == len(b.outcomes) {
		if b.outcomes[b.next] {
			b.failed--
		}
	} else {
		b.filled++
	}
	b.outcomes[b.next] = failure
	if failure {
		b.failed++
	}
	b.next = (b.next + 1) % len(b.outcomes)
}

func (b *Breaker) transition(ctx context.Context, to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.next, b.filled, b.failed = 0, 0, 0
	if to == Open {
		b.openedAt = b.now()
	}

	breakerState.WithLabelValues(b.target).Set(gaugeValue(to))
	breakerTransitions.WithLabelValues(b.target, from.String(), to.String()).Inc()
	if to == Open {
		breakerOpened.WithLabelValues(b.target).Inc()
	}

	logger := b.logger
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		logger = *l
	}
	evt := logger.Info()
	if to == Open {
		evt = logger.Warn()
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		evt = evt.Str("trace_id", sc.TraceID().String())
	}
	evt.Str("target", b.target).
		Str("from_state", from.String()).
		Str("to_state", to.String()).
		Msg("breaker_transition")
}

func gaugeValue(s State) float64 {
	return float64(s)
}
