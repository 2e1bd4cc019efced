package osal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpcc-project/gpcc/osal"
	"github.com/gpcc-project/gpcc/xtime"
)

func Test_ConditionVariable_Signal_Wakes_One_Waiter(t *testing.T) {
	t.Parallel()

	mu := osal.NewMutex()
	cond := osal.NewConditionVariable(mu)

	ready := false
	woken := make(chan struct{})

	go func() {
		mu.Lock()
		defer mu.Unlock()

		for !ready {
			cond.Wait(nil)
		}

		close(woken)
	}()

	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	ready = true
	cond.Signal()
	mu.Unlock()

	select {
	case <-woken:
	case <-time.After(time.Second):
		t.Fatal("waiter was never woken")
	}
}

func Test_ConditionVariable_TimeLimitedWait_Reports_Timeout(t *testing.T) {
	t.Parallel()

	mu := osal.NewMutex()
	cond := osal.NewConditionVariable(mu)

	span, err := xtime.TimeSpanFromMS(10)
	require.NoError(t, err)

	deadline, err := xtime.Now(time.Now).Add(span)
	require.NoError(t, err)

	mu.Lock()
	timedOut := cond.TimeLimitedWait(nil, deadline)
	mu.Unlock()

	assert.True(t, timedOut)
}

func Test_Semaphore_Wait_Blocks_Until_Post(t *testing.T) {
	t.Parallel()

	sem := osal.NewSemaphore(0)
	done := make(chan struct{})

	go func() {
		sem.Wait(nil)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("semaphore acquired before Post")
	case <-time.After(20 * time.Millisecond):
	}

	sem.Post()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("semaphore never acquired after Post")
	}
}

func Test_Semaphore_TryWait_Respects_Deadline(t *testing.T) {
	t.Parallel()

	sem := osal.NewSemaphore(0)

	span, err := xtime.TimeSpanFromMS(10)
	require.NoError(t, err)

	deadline, err := xtime.Now(time.Now).Add(span)
	require.NoError(t, err)

	acquired := sem.TryWait(nil, deadline)
	assert.False(t, acquired)
}
