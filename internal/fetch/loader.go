package fetch

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

const DefaultTimeout = 30 * time.Second

type Func[T any] func(ctx context.Context) (T, error)

type State[T any] struct {
	Value     T
	Err       error
	Loaded    bool
	FetchedAt time.Time
}

// Loader fetches on mount, again on focus, and whenever its dependencies change.
// Fetches are neither deduplicated nor cancelled: when two overlap, the one that
// completes last overwrites the state.
type Loader[T any] struct {
	fetch   Func[T]
	Timeout time.Duration
	Logger  *slog.Logger
	Now     func() time.Time

	mu    sync.Mutex
	state State[T]
	deps  []any
}

func New[T any](fn Func[T]) *Loader[T] {
	return &Loader[T]{fetch: fn, Timeout: DefaultTimeout, Now: time.Now}
}

func (l *Loader[T]) Mount(ctx context.Context) error { return l.load(ctx, "mount") }

func (l *Loader[T]) Focus(ctx context.Context) error { return l.load(ctx, "focus") }

// Refresh is the explicit re-fetch after a successful action.
func (l *Loader[T]) Refresh(ctx context.Context) error { return l.load(ctx, "refresh") }

// Deps re-fetches when deps differ from the previous call. The first call always fetches.
func (l *Loader[T]) Deps(ctx context.Context, deps ...any) error {
	l.mu.Lock()
	same := l.deps != nil && reflect.DeepEqual(l.deps, deps)
	if !same {
		l.deps = append([]any{}, deps...)
	}
	l.mu.Unlock()
	if same {
		return nil
	}
	return l.load(ctx, "deps")
}

func (l *Loader[T]) Get() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Value is shorthand for Get().Value.
func (l *Loader[T]) Value() T {
	return l.Get().Value
}

// Update applies a local change, e.g. dropping a row after the server confirmed a delete.
func (l *Loader[T]) Update(fn func(T) T) {
	l.mu.Lock()
	l.state.Value = fn(l.state.Value)
	l.mu.Unlock()
}

func (l *Loader[T]) load(ctx context.Context, trigger string) error {
	if _, ok := ctx.Deadline(); !ok && l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	v, err := l.fetch(ctx)
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		// Keep the last good value on screen.
		l.state.Err = err
		l.logger().Warn("fetch failed", "trigger", trigger, "err", err)
		return err
	}
	l.state = State[T]{Value: v, Loaded: true, FetchedAt: now()}
	return nil
}

func (l *Loader[T]) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}
