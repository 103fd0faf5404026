package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_MountFocusRefresh(t *testing.T) {
	var calls atomic.Int32
	l := New(func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	})

	require.NoError(t, l.Mount(context.Background()))
	assert.Equal(t, 1, l.Value())
	require.NoError(t, l.Focus(context.Background()))
	require.NoError(t, l.Refresh(context.Background()))
	assert.Equal(t, 3, l.Value())
	assert.True(t, l.Get().Loaded)
}

func TestLoader_ErrorKeepsLastValue(t *testing.T) {
	fail := false
	l := New(func(ctx context.Context) (string, error) {
		if fail {
			return "", errors.New("boom")
		}
		return "ok", nil
	})
	require.NoError(t, l.Mount(context.Background()))

	fail = true
	require.Error(t, l.Focus(context.Background()))
	st := l.Get()
	assert.Equal(t, "ok", st.Value)
	assert.EqualError(t, st.Err, "boom")
}

func TestLoader_DepsOnlyRefetchOnChange(t *testing.T) {
	var calls atomic.Int32
	l := New(func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	})

	require.NoError(t, l.Deps(context.Background(), "12", 3))
	require.NoError(t, l.Deps(context.Background(), "12", 3))
	assert.Equal(t, int32(1), calls.Load())
	require.NoError(t, l.Deps(context.Background(), "13", 3))
	assert.Equal(t, int32(2), calls.Load())
}

func TestLoader_LastResponseWins(t *testing.T) {
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	var n atomic.Int32
	l := New(func(ctx context.Context) (string, error) {
		if n.Add(1) == 1 {
			close(slowStarted)
			<-releaseSlow
			return "stale", nil
		}
		return "fresh", nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.Mount(context.Background())
	}()
	<-slowStarted
	require.NoError(t, l.Focus(context.Background()))
	assert.Equal(t, "fresh", l.Value())

	close(releaseSlow)
	wg.Wait()
	// No deduplication: the slow mount completes last and overwrites.
	assert.Equal(t, "stale", l.Value())
}

func TestLoader_DefaultTimeoutOnlyWithoutDeadline(t *testing.T) {
	var got time.Duration
	l := New(func(ctx context.Context) (int, error) {
		d, ok := ctx.Deadline()
		require.True(t, ok)
		got = time.Until(d)
		return 0, nil
	})
	l.Timeout = time.Minute

	require.NoError(t, l.Mount(context.Background()))
	assert.Greater(t, got, 50*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Mount(ctx))
	assert.LessOrEqual(t, got, 5*time.Second)
}

func TestLoader_Update(t *testing.T) {
	l := New(func(ctx context.Context) ([]int, error) { return []int{1, 2, 3}, nil })
	require.NoError(t, l.Mount(context.Background()))
	l.Update(func(v []int) []int { return append(v[:1:1], v[2:]...) })
	assert.Equal(t, []int{1, 3}, l.Value())
}
