package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForEach(t *testing.T) {
	t.Run("Visits All", func(t *testing.T) {
		var sum atomic.Int64
		items := []int64{1, 2, 3, 4, 5, 6, 7, 8}
		err := ForEach(context.Background(), items, 3, func(_ context.Context, v int64) error {
			sum.Add(v)
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, int64(36), sum.Load())
	})

	t.Run("Respects Limit", func(t *testing.T) {
		var running, peak atomic.Int32
		items := make([]int, 32)
		err := ForEach(context.Background(), items, 2, func(_ context.Context, _ int) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			running.Add(-1)
			return nil
		})
		require.NoError(t, err)
		require.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("First Error", func(t *testing.T) {
		boom := errors.New("boom")
		err := ForEach(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, v int) error {
			if v == 2 {
				return boom
			}
			return nil
		})
		require.ErrorIs(t, err, boom)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var calls atomic.Int32
		err := ForEach(ctx, []int{1, 2, 3}, 0, func(_ context.Context, _ int) error {
			calls.Add(1)
			return nil
		})
		require.ErrorIs(t, err, context.Canceled)
		require.Zero(t, calls.Load())
	})
}

func TestMap(t *testing.T) {
	out, err := Map(context.Background(), []int{1, 2, 3, 4}, 0, func(_ context.Context, v int) (int, error) {
		return v * v, nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 4, 9, 16}, out)

	boom := errors.New("boom")
	_, err = Map(context.Background(), []int{1, 2}, 2, func(_ context.Context, v int) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
}
