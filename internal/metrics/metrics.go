// Package metrics defines the request metrics sink injected into the transport.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// Sink records one finished request.
type Sink interface {
	Observe(method, code string, took time.Duration)
}

// Nop discards observations.
type Nop struct{}

func (Nop) Observe(string, string, time.Duration) {}

// Stat aggregates observations for one (method, code) pair.
type Stat struct {
	Method string
	Code   string
	Count  int64
	Total  time.Duration
	Max    time.Duration
}

type key struct{ method, code string }

// Memory keeps counters in memory. It is safe for concurrent use.
type Memory struct {
	mu    sync.Mutex
	stats map[key]*Stat
}

// NewMemory constructs an empty in-memory sink.
func NewMemory() *Memory { return &Memory{stats: make(map[key]*Stat)} }

// Observe implements Sink.
func (m *Memory) Observe(method, code string, took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{method, code}
	s, ok := m.stats[k]
	if !ok {
		s = &Stat{Method: method, Code: code}
		m.stats[k] = s
	}
	s.Count++
	s.Total += took
	if took > s.Max {
		s.Max = took
	}
}

// Snapshot returns a copy of all stats ordered by method then code.
func (m *Memory) Snapshot() []Stat {
	m.mu.Lock()
	out := make([]Stat, 0, len(m.stats))
	for _, s := range m.stats {
		out = append(out, *s)
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Method != out[j].Method {
			return out[i].Method < out[j].Method
		}
		return out[i].Code < out[j].Code
	})
	return out
}
