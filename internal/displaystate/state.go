// Package displaystate tracks the transient per-item view state of
// expanded telemetry items.
//
// All changes go through Reduce, which merges a patch into the entry for a
// single item and leaves every other entry untouched. Concurrent fetches
// for different items therefore never overwrite each other.
package displaystate

import (
	"maps"
	"sync"

	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/telemetry"
)

// Mode selects how readings are shown.
type Mode string

const (
	ModeTable Mode = "table"
	ModeChart Mode = "chart"
)

// Method records which side computed an aggregation.
type Method string

const (
	MethodClient Method = "client"
	MethodServer Method = "server"
)

// Entry is the view state of one item.
type Entry struct {
	Loading           bool             `json:"loading"`
	Readings          []record.Record  `json:"readings,omitempty"`
	IsNumeric         bool             `json:"is_numeric"`
	Mode              Mode             `json:"mode"`
	Period            telemetry.Period `json:"period"`
	Aggregated        bool             `json:"aggregated"`
	AggregationMethod Method           `json:"aggregation_method,omitempty"`
	Error             string           `json:"error,omitempty"`
}

// NewEntry returns the state of a freshly expanded item.
func NewEntry() Entry {
	return Entry{Mode: ModeTable, Period: telemetry.DefaultPeriod}
}

// State maps item IDs to their view state.
type State map[string]Entry

// Patch mutates a copy of an entry.
type Patch func(e *Entry)

// Reduce returns a new State in which only itemID's entry changed. The
// input state is not modified.
func Reduce(s State, itemID string, patches ...Patch) State {
	next := make(State, len(s)+1)
	maps.Copy(next, s)

	e, ok := next[itemID]
	if !ok {
		e = NewEntry()
	}
	for _, p := range patches {
		p(&e)
	}
	next[itemID] = e
	return next
}

// Loading marks an item as fetching.
func Loading() Patch {
	return func(e *Entry) { e.Loading = true }
}

// RawReadings stores freshly fetched readings and clears any previous
// aggregation or error.
func RawReadings(readings []record.Record, isNumeric bool) Patch {
	return func(e *Entry) {
		e.Loading = false
		e.Readings = readings
		e.IsNumeric = isNumeric
		e.Aggregated = false
		e.AggregationMethod = ""
		e.Error = ""
	}
}

// Aggregated stores bucketed readings.
func Aggregated(buckets []record.Record, period telemetry.Period, method Method) Patch {
	return func(e *Entry) {
		e.Loading = false
		e.Readings = buckets
		e.Aggregated = true
		e.Period = period
		e.AggregationMethod = method
		e.Error = ""
	}
}

// Failed records an error and stops the loading indicator. Readings
// already held are kept.
func Failed(msg string) Patch {
	return func(e *Entry) {
		e.Loading = false
		e.Error = msg
	}
}

// WithMode switches between table and chart.
func WithMode(m Mode) Patch {
	return func(e *Entry) { e.Mode = m }
}

// WithPeriod selects the aggregation period without fetching.
func WithPeriod(p telemetry.Period) Patch {
	return func(e *Entry) { e.Period = p }
}

// Store is a goroutine-safe holder of State.
type Store struct {
	mu    sync.Mutex
	state State
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: State{}}
}

// Apply reduces the patches into itemID's entry and returns the result.
func (s *Store) Apply(itemID string, patches ...Patch) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, itemID, patches...)
	return s.state[itemID]
}

// Get returns the entry for itemID.
func (s *Store) Get(itemID string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.state[itemID]
	return e, ok
}

// Snapshot returns the current state. The returned map is never mutated by
// the store.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Forget drops an item's entry, as when it is collapsed.
func (s *Store) Forget(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state[itemID]; !ok {
		return
	}
	next := make(State, len(s.state))
	maps.Copy(next, s.state)
	delete(next, itemID)
	s.state = next
}
