package schedule

import (
	"sync"

	"go.uber.org/zap"
)

// SyncState reflects the health of the last interaction with the backend.
// There is exactly one current value per service, owned by its controller.
type SyncState string

const (
	// StateSynced means the last operation succeeded and no error is known.
	StateSynced SyncState = "SYNCED"
	// StateSyncing means a refresh or queue replay is in flight.
	StateSyncing SyncState = "SYNCING"
	// StateOffline means the connectivity monitor reports no network.
	StateOffline SyncState = "OFFLINE"
	// StateError means the last refresh failed while the network was up.
	StateError SyncState = "ERROR"
)

// stateController holds the current sync state and notifies subscribers
// synchronously on every transition.
type stateController struct {
	mu      sync.Mutex
	state   SyncState
	subs    map[int]func(SyncState)
	nextSub int

	logger *zap.Logger
}

func newStateController(initial SyncState, logger *zap.Logger) *stateController {
	return &stateController{
		state:  initial,
		subs:   make(map[int]func(SyncState)),
		logger: logger,
	}
}

func (c *stateController) current() SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *stateController) subscribe(fn func(SyncState)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// set records a new state and notifies subscribers. Setting the same state
// twice is a no-op so observers only see transitions.
func (c *stateController) set(state SyncState) {
	c.mu.Lock()
	if c.state == state {
		c.mu.Unlock()
		return
	}
	prev := c.state
	c.state = state
	fns := make([]func(SyncState), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	c.logger.Debug("sync state changed",
		zap.String("from", string(prev)),
		zap.String("to", string(state)),
	)
	for _, fn := range fns {
		fn(state)
	}
}
