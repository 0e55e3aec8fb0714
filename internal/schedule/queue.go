package schedule

import (
	"sync"
	"time"
)

// ActionType names a queued mutation intent.
type ActionType string

const (
	ActionCancel     ActionType = "CANCEL"
	ActionReschedule ActionType = "RESCHEDULE"
	ActionCheckIn    ActionType = "CHECKIN"
)

// ReschedulePayload captures the target time window of a reschedule intent so
// it can be replayed after connectivity returns.
type ReschedulePayload struct {
	StartTime time.Time
	EndTime   time.Time
}

// PendingAction is a mutation that failed while offline, buffered for replay.
// It is created on the failed attempt, destroyed on successful replay, and
// re-enqueued (never dropped) when a replay attempt fails.
type PendingAction struct {
	Type      ActionType
	BookingID string
	Payload   *ReschedulePayload
	Timestamp time.Time
	Attempts  int
}

// offlineQueue is a FIFO buffer of pending actions. The queue lives in memory
// only; process restart loses its contents.
type offlineQueue struct {
	mu      sync.Mutex
	actions []PendingAction
}

func newOfflineQueue() *offlineQueue {
	return &offlineQueue{}
}

// push appends an action to the tail.
func (q *offlineQueue) push(a PendingAction) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.actions = append(q.actions, a)
}

// drain removes and returns every queued action in enqueue order. Actions
// that fail replay are pushed back by the caller, landing behind anything
// queued in the meantime.
func (q *offlineQueue) drain() []PendingAction {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.actions
	q.actions = nil
	return out
}

// len returns the number of queued actions.
func (q *offlineQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

// snapshot returns a copy of the queued actions for inspection.
func (q *offlineQueue) snapshot() []PendingAction {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]PendingAction, len(q.actions))
	copy(out, q.actions)
	return out
}
