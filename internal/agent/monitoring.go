package agent

import (
	"sync"
	"time"
)

// MonitoringState guards against overlapping news fetches per symbol. A
// symbol whose previous fetch has not finished is skipped for the cycle.
// Begin/End must bracket every fetch, with End in a deferred call so the
// guard is released on every path.
type MonitoringState struct {
	mu          sync.Mutex
	inFlight    map[string]bool
	lastChecked map[string]time.Time
}

// NewMonitoringState creates an empty monitoring state.
func NewMonitoringState() *MonitoringState {
	return &MonitoringState{
		inFlight:    make(map[string]bool),
		lastChecked: make(map[string]time.Time),
	}
}

// Begin marks the symbol as in flight. Returns false when the symbol is
// already being monitored, in which case the caller must skip the fetch.
func (m *MonitoringState) Begin(symbol string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inFlight[symbol] {
		return false
	}

	m.inFlight[symbol] = true

	return true
}

// End clears the in-flight flag and stamps the last-checked time.
func (m *MonitoringState) End(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.inFlight, symbol)
	m.lastChecked[symbol] = time.Now()
}

// IsMonitoring reports whether a fetch for the symbol is in flight.
func (m *MonitoringState) IsMonitoring(symbol string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.inFlight[symbol]
}

// LastChecked returns when the symbol's last fetch finished.
func (m *MonitoringState) LastChecked(symbol string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.lastChecked[symbol]

	return t, ok
}
