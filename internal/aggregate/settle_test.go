package aggregate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettle_AllOutcomesInOrder(t *testing.T) {
	errBoom := errors.New("boom")

	errs := Settle(context.Background(), time.Second,
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return errBoom },
		func(ctx context.Context) error { return nil },
	)

	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], errBoom)
	assert.NoError(t, errs[2])
}

func TestSettle_FailureDoesNotCancelSiblings(t *testing.T) {
	var completed atomic.Int32

	errs := Settle(context.Background(), time.Second,
		func(ctx context.Context) error { return errors.New("first one fails fast") },
		func(ctx context.Context) error {
			select {
			case <-time.After(50 * time.Millisecond):
				completed.Add(1)
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		func(ctx context.Context) error {
			select {
			case <-time.After(50 * time.Millisecond):
				completed.Add(1)
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	)

	assert.Error(t, errs[0])
	assert.NoError(t, errs[1])
	assert.NoError(t, errs[2])
	assert.Equal(t, int32(2), completed.Load())
}

func TestSettle_PerTaskTimeout(t *testing.T) {
	errs := Settle(context.Background(), 20*time.Millisecond,
		func(ctx context.Context) error {
			select {
			case <-time.After(time.Second):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		func(ctx context.Context) error { return nil },
	)

	assert.ErrorIs(t, errs[0], context.DeadlineExceeded)
	assert.NoError(t, errs[1])
}

func TestSettle_NoTasks(t *testing.T) {
	errs := Settle(context.Background(), time.Second)
	assert.Empty(t, errs)
}
