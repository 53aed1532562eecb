/*-------------------------------------------------------------------------
 *
 * runner_test.go
 *    Tests for the background job runner
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/jobs/runner_test.go
 *
 *-------------------------------------------------------------------------
 */

package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerExecutesTasks(t *testing.T) {
	runner := NewRunner(2, time.Second)
	runner.Start()
	defer runner.Stop()

	var count int32
	for i := 0; i < 5; i++ {
		ok := runner.Submit(Task{
			Name: "increment",
			Run: func(ctx context.Context) error {
				atomic.AddInt32(&count, 1)
				return nil
			},
		})
		require.True(t, ok)
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&count) == 5
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunnerTaskErrorDoesNotStopWorker(t *testing.T) {
	runner := NewRunner(1, time.Second)
	runner.Start()
	defer runner.Stop()

	var ran int32
	runner.Submit(Task{Name: "fails", Run: func(ctx context.Context) error {
		return fmt.Errorf("boom")
	}})
	runner.Submit(Task{Name: "succeeds", Run: func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	}})

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&ran) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunnerTaskTimeout(t *testing.T) {
	runner := NewRunner(1, 20*time.Millisecond)
	runner.Start()
	defer runner.Stop()

	done := make(chan error, 1)
	runner.Submit(Task{Name: "slow", Run: func(ctx context.Context) error {
		<-ctx.Done()
		done <- ctx.Err()
		return ctx.Err()
	}})

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("task context never expired")
	}
}

func TestSubmitDropsWhenQueueFull(t *testing.T) {
	/* Not started: nothing drains the queue */
	runner := NewRunner(1, time.Second)

	task := Task{Name: "noop", Run: func(ctx context.Context) error { return nil }}
	for i := 0; i < 256; i++ {
		require.True(t, runner.Submit(task))
	}
	assert.False(t, runner.Submit(task))
}

func TestRunnerDefaults(t *testing.T) {
	runner := NewRunner(0, 0)
	assert.Equal(t, 2, runner.workers)
	assert.Equal(t, 30*time.Second, runner.timeout)
}
