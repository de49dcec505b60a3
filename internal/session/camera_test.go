package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestMonitor(t *testing.T) (*CameraMonitor, *Queue) {
	t.Helper()
	sched := NewScheduler()
	t.Cleanup(sched.Stop)
	events := NewQueue(64, zap.NewNop())
	m := NewCameraMonitor(sched, NullPlayer{}, testPolicy(), events, "sess-1", "stu-1", zap.NewNop())
	return m, events
}

func TestCameraOffEntersWarning(t *testing.T) {
	m, events := newTestMonitor(t)

	m.SetCameraEnabled(false)
	assert.Equal(t, CameraWarning, m.State())

	e := <-events.Events()
	assert.Equal(t, EventCameraCompliance, e.Type)
	assert.Equal(t, CameraWarning, e.Payload.(CameraCompliancePayload).State)
}

func TestCameraGraceExpiryLocks(t *testing.T) {
	m, _ := newTestMonitor(t)

	m.SetCameraEnabled(false)
	assert.Eventually(t, func() bool { return m.State() == CameraLocked }, time.Second, 5*time.Millisecond)
	assert.True(t, m.Locked())
}

func TestCameraRestoredWithinGraceClears(t *testing.T) {
	m, _ := newTestMonitor(t)

	m.SetCameraEnabled(false)
	m.SetCameraEnabled(true)
	assert.Equal(t, CameraOK, m.State())

	// The cancelled grace timer must not fire late and lock anyway.
	time.Sleep(2 * testPolicy().CameraGrace)
	assert.Equal(t, CameraOK, m.State())
}

func TestCameraRestoredFromLockClears(t *testing.T) {
	m, _ := newTestMonitor(t)

	m.SetCameraEnabled(false)
	assert.Eventually(t, func() bool { return m.Locked() }, time.Second, 5*time.Millisecond)

	m.SetCameraEnabled(true)
	assert.Equal(t, CameraOK, m.State())
	assert.False(t, m.Locked())
}

func TestCameraRepeatedEdgeIsNoOp(t *testing.T) {
	m, events := newTestMonitor(t)

	m.SetCameraEnabled(true) // already on
	select {
	case e := <-events.Events():
		t.Fatalf("unexpected event %v", e.Type)
	default:
	}

	m.SetCameraEnabled(false)
	<-events.Events()
	m.SetCameraEnabled(false) // repeated off, no second event
	select {
	case e := <-events.Events():
		t.Fatalf("unexpected event %v", e.Type)
	default:
	}
}
