package analytics

import (
	"context"
	"sync"
)

// MockAnalytics implements AnalyticsService for testing. It records events
// in memory and is safe for concurrent use.
type MockAnalytics struct {
	mu     sync.Mutex
	Events []CalculationEvent
	Err    error
}

// NewMockAnalytics creates an empty mock.
func NewMockAnalytics() *MockAnalytics {
	return &MockAnalytics{}
}

func (m *MockAnalytics) RecordCalculation(ctx context.Context, ev CalculationEvent) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, ev)
	return nil
}

// Recorded returns a copy of the events seen so far.
func (m *MockAnalytics) Recorded() []CalculationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CalculationEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
