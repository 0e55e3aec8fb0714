// Package connectivity observes network reachability and reports transitions
// between online and offline to interested components.
package connectivity

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Monitor reports the host's current reachability and notifies subscribers on
// every transition.
type Monitor interface {
	// Online returns the last observed reachability.
	Online() bool
	// Subscribe registers fn to be called with the new value on each
	// transition; the returned handle unsubscribes.
	Subscribe(fn func(online bool)) func()
}

// ManualMonitor is a Monitor driven entirely by explicit SetOnline calls.
// The demo binary and tests use it in place of a real network probe.
type ManualMonitor struct {
	mu      sync.Mutex
	online  bool
	subs    map[int]func(bool)
	nextSub int
}

// NewManualMonitor creates a ManualMonitor with the given initial state.
func NewManualMonitor(online bool) *ManualMonitor {
	return &ManualMonitor{
		online: online,
		subs:   make(map[int]func(bool)),
	}
}

// Online returns the current state.
func (m *ManualMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records a new state and, if it changed, notifies subscribers
// synchronously.
func (m *ManualMonitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	fns := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}

// Subscribe registers fn for transition notifications.
func (m *ManualMonitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// ProbeMonitor derives reachability by polling a health URL on an interval.
// It stands in for the host-environment online/offline events a mobile or
// browser runtime would provide.
type ProbeMonitor struct {
	*ManualMonitor

	url      string
	interval time.Duration
	client   *http.Client
	logger   *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewProbeMonitor creates a ProbeMonitor polling url every interval. The
// monitor starts optimistic (online) until the first probe completes.
func NewProbeMonitor(url string, interval time.Duration, logger *zap.Logger) *ProbeMonitor {
	return &ProbeMonitor{
		ManualMonitor: NewManualMonitor(true),
		url:           url,
		interval:      interval,
		client:        &http.Client{Timeout: 5 * time.Second},
		logger:        logger,
	}
}

// Start begins probing in the background until Stop is called.
func (p *ProbeMonitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.probe(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.probe(ctx)
			}
		}
	}()
}

// Stop halts probing and waits for the background goroutine to exit.
func (p *ProbeMonitor) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}

func (p *ProbeMonitor) probe(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		p.logger.Error("failed to build probe request", zap.Error(err))
		return
	}

	resp, err := p.client.Do(req)
	online := err == nil
	if resp != nil {
		_ = resp.Body.Close()
	}

	if online != p.Online() {
		p.logger.Info("connectivity changed", zap.Bool("online", online))
	}
	p.SetOnline(online)
}
