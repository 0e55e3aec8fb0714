package connectivity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManualMonitorNotifiesOnTransitions(t *testing.T) {
	m := NewManualMonitor(true)
	assert.True(t, m.Online())

	var events []bool
	unsub := m.Subscribe(func(online bool) { events = append(events, online) })

	m.SetOnline(false)
	m.SetOnline(false) // no transition, no event
	m.SetOnline(true)

	assert.False(t, events[0])
	require.Len(t, events, 2)
	assert.True(t, events[1])

	unsub()
	m.SetOnline(false)
	assert.Len(t, events, 2)
}

func TestProbeMonitorStopIdempotentWithoutStart(t *testing.T) {
	p := NewProbeMonitor("http://127.0.0.1:0/health", time.Minute, zap.NewNop())
	p.Stop() // never started

	assert.True(t, p.Online())
}
