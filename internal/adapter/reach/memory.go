package reach

import (
	"context"
	"sync"
	"time"
)

// MemoryEstimator keeps exact last-seen times per viewer. It suits tests
// and single-process development; memory grows with distinct viewers.
type MemoryEstimator struct {
	window time.Duration

	mu   sync.Mutex
	seen map[string]map[string]time.Time
}

func NewMemoryEstimator(window time.Duration) *MemoryEstimator {
	return &MemoryEstimator{window: window, seen: make(map[string]map[string]time.Time)}
}

func (m *MemoryEstimator) Observe(_ context.Context, campaignID, viewerID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	viewers, ok := m.seen[campaignID]
	if !ok {
		viewers = make(map[string]time.Time)
		m.seen[campaignID] = viewers
	}
	if last, ok := viewers[viewerID]; !ok || at.After(last) {
		viewers[viewerID] = at
	}
	return nil
}

// Estimate counts viewers seen in (now-window, now] and drops older ones.
func (m *MemoryEstimator) Estimate(_ context.Context, campaignID string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := now.Add(-m.window)
	var n int64
	for id, at := range m.seen[campaignID] {
		if !at.After(cutoff) {
			delete(m.seen[campaignID], id)
			continue
		}
		if !at.After(now) {
			n++
		}
	}
	return n, nil
}
