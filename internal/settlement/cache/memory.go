package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fkhayef/splitsettle/internal/planner"
)

type memoryEntry struct {
	version    uint64
	writers    int
	leaseUntil time.Time
	plan       []planner.Transaction
	cached     bool
}

func (e *memoryEntry) writing(now time.Time) bool {
	return e.writers > 0 && now.Before(e.leaseUntil)
}

// Memory is an in-process Cache
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemory creates an empty in-process cache
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*memoryEntry), now: time.Now}
}

func (m *Memory) entry(groupID string) *memoryEntry {
	e, ok := m.entries[groupID]
	if !ok {
		e = &memoryEntry{}
		m.entries[groupID] = e
	}
	return e
}

func (m *Memory) Version(_ context.Context, groupID string) (Stamp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(groupID)
	return Stamp{Version: e.version, Writing: e.writing(m.now())}, nil
}

func (m *Memory) Get(_ context.Context, groupID string) ([]planner.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[groupID]
	if !ok || !e.cached {
		return nil, false, nil
	}
	return clonePlan(e.plan), true, nil
}

func (m *Memory) Put(_ context.Context, groupID string, stamp Stamp, plan []planner.Transaction) (bool, error) {
	if stamp.Writing {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(groupID)
	if e.version != stamp.Version || e.writing(m.now()) {
		return false, nil
	}
	e.plan = clonePlan(plan)
	e.cached = true
	return true, nil
}

func (m *Memory) BeginWrite(_ context.Context, groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(groupID)
	now := m.now()
	if !e.writing(now) {
		e.writers = 0
	}
	e.writers++
	e.leaseUntil = now.Add(WriteLease)
	e.drop()
	return nil
}

func (m *Memory) EndWrite(_ context.Context, groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(groupID)
	if e.writers > 0 {
		e.writers--
	}
	e.drop()
	return nil
}

func (e *memoryEntry) drop() {
	e.version++
	e.plan = nil
	e.cached = false
}
