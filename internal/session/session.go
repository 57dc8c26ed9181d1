// Package session holds the shared per-run state of an arbitrage run: the
// discovered key rate and the per-item sell-price caches.
//
// Every map is write-once-per-key with first-write-wins semantics. Concurrent
// evaluations racing to record the same fact are computing it from the same
// source state, so the first successful write stands and later ones are
// no-ops. A fresh Session per run (and per test) replaces the process-wide
// globals this state would otherwise live in.
package session

import (
	"sync"

	"github.com/tf2tools/tf2arb/internal/models"
)

// Session is the explicit per-run context threaded through the pipeline.
type Session struct {
	mu      sync.RWMutex
	keyRate *float64
	minSell map[string]float64
	sells   map[string]models.AggregatedPrice
}

// New creates an empty session.
func New() *Session {
	return &Session{
		minSell: make(map[string]float64),
		sells:   make(map[string]models.AggregatedPrice),
	}
}

// SetKeyRate records the refined-per-key rate. The first positive rate wins;
// later writes are ignored. Returns whether the write took effect.
func (s *Session) SetKeyRate(rate float64) bool {
	if rate <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keyRate != nil {
		return false
	}
	s.keyRate = &rate
	return true
}

// KeyRate returns the rate and whether one is known.
func (s *Session) KeyRate() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.keyRate == nil {
		return 0, false
	}
	return *s.keyRate, true
}

// KeyRatePtr returns a pointer to a copy of the rate, or nil when unknown.
// The pointer form feeds the currency converter directly.
func (s *Session) KeyRatePtr() *float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.keyRate == nil {
		return nil
	}
	rate := *s.keyRate
	return &rate
}

// RecordMinSell stores the minimum convertible sell price seen for an item.
// First write per item wins.
func (s *Session) RecordMinSell(item string, refined float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.minSell[item]; !ok {
		s.minSell[item] = refined
	}
}

// MinSell returns the recorded minimum sell price for an item, if any.
func (s *Session) MinSell(item string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.minSell[item]
	return v, ok
}

// StoreSell caches a successful sell aggregation for reuse by later
// evaluations of the same item. First write per item wins.
func (s *Session) StoreSell(item string, price models.AggregatedPrice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sells[item]; !ok {
		s.sells[item] = price
	}
}

// CachedSell returns the cached sell aggregation for an item, if any.
func (s *Session) CachedSell(item string) (models.AggregatedPrice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.sells[item]
	return p, ok
}
