package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestScheduler_Fires(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := NewScheduler()
	defer s.Stop()

	fired := make(chan struct{})
	s.Schedule("c1", TaskReply, 10*time.Millisecond, func() { close(fired) })
	assert.True(t, s.Pending("c1", TaskReply))

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("task did not fire")
	}
	assert.Eventually(t, func() bool { return !s.Pending("c1", TaskReply) }, time.Second, 5*time.Millisecond)
}

func TestScheduler_CancelPreventsRun(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := NewScheduler()
	defer s.Stop()

	var runs atomic.Int32
	s.Schedule("c1", TaskReply, 30*time.Millisecond, func() { runs.Add(1) })
	assert.True(t, s.Cancel("c1", TaskReply))
	assert.False(t, s.Cancel("c1", TaskReply), "second cancel finds nothing")

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, runs.Load())
}

func TestScheduler_RescheduleReplaces(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := NewScheduler()
	defer s.Stop()

	var first, second atomic.Int32
	s.Schedule("c1", TaskNudge, 20*time.Millisecond, func() { first.Add(1) })
	s.Schedule("c1", TaskNudge, 40*time.Millisecond, func() { second.Add(1) })

	require.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, first.Load())
}

func TestScheduler_KeysAreIndependent(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := NewScheduler()
	defer s.Stop()

	var reply, nudge, other atomic.Int32
	s.Schedule("c1", TaskReply, 20*time.Millisecond, func() { reply.Add(1) })
	s.Schedule("c1", TaskNudge, 20*time.Millisecond, func() { nudge.Add(1) })
	s.Schedule("c2", TaskReply, 20*time.Millisecond, func() { other.Add(1) })

	s.CancelAll("c1")
	assert.False(t, s.Pending("c1", TaskReply))
	assert.False(t, s.Pending("c1", TaskNudge))
	assert.True(t, s.Pending("c2", TaskReply))

	require.Eventually(t, func() bool { return other.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, reply.Load())
	assert.Zero(t, nudge.Load())
}

func TestScheduler_StopRefusesNewTasks(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := NewScheduler()

	var runs atomic.Int32
	s.Schedule("c1", TaskReply, time.Hour, func() { runs.Add(1) })
	s.Stop()
	assert.False(t, s.Pending("c1", TaskReply))

	s.Schedule("c1", TaskReply, time.Millisecond, func() { runs.Add(1) })
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, runs.Load())
}
