package display

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitingSpinner behaves like a spinner left to run until the action ends.
func waitingSpinner(_ string, wait func()) error {
	wait()
	return nil
}

// quittingSpinner behaves like a spinner the user closed with Ctrl-C: it
// returns nil straight away without waiting for the action.
func quittingSpinner(_ string, _ func()) error {
	return nil
}

func TestSpin(t *testing.T) {
	t.Run("RunsAction", func(t *testing.T) {
		ran := false
		err := spin(context.Background(), "working", func(context.Context) error {
			ran = true
			return nil
		}, waitingSpinner)
		assert.NoError(t, err)
		assert.True(t, ran)
	})
	t.Run("ReturnsActionError", func(t *testing.T) {
		errBoom := errors.New("boom")
		err := spin(context.Background(), "working", func(context.Context) error { return errBoom }, waitingSpinner)
		assert.ErrorIs(t, err, errBoom)
	})
	t.Run("ReturnsSpinnerError", func(t *testing.T) {
		errTTY := errors.New("no tty")
		err := spin(context.Background(), "working", func(context.Context) error { return nil }, func(_ string, wait func()) error {
			wait()
			return errTTY
		})
		assert.ErrorIs(t, err, errTTY)
	})
	t.Run("QuitBeforeActionFinishes", func(t *testing.T) {
		finished := false
		start := time.Now()
		err := spin(context.Background(), "working", func(ctx context.Context) error {
			defer func() { finished = true }()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(15 * time.Second):
				return nil
			}
		}, quittingSpinner)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInterrupted)
		assert.ErrorIs(t, err, context.Canceled)
		// spin must not return while the action is still running
		assert.True(t, finished)
		assert.Less(t, time.Since(start), 5*time.Second)
	})
	t.Run("NoTerminal", func(t *testing.T) {
		if IsTerminal() {
			t.Skip("stdout is a terminal")
		}
		ran := false
		err := Spin(context.Background(), "working", func(context.Context) error {
			ran = true
			return nil
		})
		assert.NoError(t, err)
		assert.True(t, ran)
	})
}
