// Package readings loads telemetry readings of collection items into the
// per-item display state.
//
// Every operation writes only the entry of the item it works on, so the
// browser can expand several items at once and let their fetches race.
package readings

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xbocquet/twcatele/internal/displaystate"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/telemetry"
)

// DefaultConcurrency bounds LoadMany.
const DefaultConcurrency = 4

// Service fetches readings through a ReadingSource and records the
// outcome in a display state store.
type Service struct {
	source      domain.ReadingSource
	state       *displaystate.Store
	namespaces  []string
	location    *time.Location
	concurrency int

	mu  sync.Mutex
	raw map[string][]record.Record
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the zone date ranges are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

// WithConcurrency bounds the number of parallel fetches in LoadMany.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New returns a Service reading from source within the project's
// namespaces. A nil state gets a fresh store.
func New(source domain.ReadingSource, project domain.Project, state *displaystate.Store, opts ...Option) *Service {
	if state == nil {
		state = displaystate.NewStore()
	}
	svc := &Service{
		source:      source,
		state:       state,
		namespaces:  project.Namespaces,
		location:    time.Local,
		concurrency: DefaultConcurrency,
		raw:         map[string][]record.Record{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// State returns the display state store.
func (s *Service) State() *displaystate.Store {
	return s.state
}

// SourceID is the id readings of item are filed under: _sourceId, falling
// back to _id.
func SourceID(item record.Record) string {
	if id := item.String("_sourceId"); id != "" {
		return id
	}
	return item.String("_id")
}

// LoadReadings fetches the newest readings of item, optionally limited to
// a date range. Failures are recorded in the item's entry and returned.
func (s *Service) LoadReadings(ctx context.Context, collectionID string, item record.Record, rng *telemetry.DateRange) (displaystate.Entry, error) {
	itemID := item.ID()
	if itemID == "" {
		return displaystate.Entry{}, fmt.Errorf("telemetry item has no _id or _userItemId")
	}
	s.state.Apply(itemID, displaystate.Loading())

	query := telemetry.MatchCriteria(SourceID(item), rng, s.location)
	readings, err := s.source.RelatedReadings(ctx, s.namespaces, collectionID, query, telemetry.FetchPageSize(rng))
	if err != nil {
		entry := s.state.Apply(itemID,
			displaystate.RawReadings([]record.Record{}, false),
			displaystate.Failed(domain.UserMessage(err)),
		)
		return entry, err
	}

	if rng.Enabled() {
		if start, end, err := rng.Bounds(s.location); err == nil {
			readings = telemetry.FilterByRange(readings, start, end)
		}
	}
	if readings == nil {
		readings = []record.Record{}
	}

	s.mu.Lock()
	s.raw[itemID] = readings
	s.mu.Unlock()

	return s.state.Apply(itemID, displaystate.RawReadings(readings, telemetry.IsNumeric(readings))), nil
}

// AggregateServer asks the backend to bucket the item's readings.
//
// A single sample reading is fetched first to learn the value field name;
// the aggregation pipeline is then built around it. Failures are recorded
// as "Server-side aggregation failed: <msg>" in the item's entry and are
// not returned.
func (s *Service) AggregateServer(ctx context.Context, collectionID string, item record.Record, period telemetry.Period, rng *telemetry.DateRange) displaystate.Entry {
	itemID := item.ID()
	if itemID == "" {
		return displaystate.Entry{}
	}
	s.state.Apply(itemID, displaystate.Loading())

	sourceID := SourceID(item)
	valueField := s.probeValueField(ctx, collectionID, sourceID)

	pipeline := telemetry.BuildPipeline(period, telemetry.MatchCriteria(sourceID, rng, s.location), valueField)
	buckets, err := s.source.Aggregate(ctx, s.namespaces, collectionID, pipeline)
	if err != nil {
		return s.state.Apply(itemID, displaystate.Failed("Server-side aggregation failed: "+domain.UserMessage(err)))
	}
	if buckets == nil {
		buckets = []record.Record{}
	}
	return s.state.Apply(itemID, displaystate.Aggregated(buckets, period, displaystate.MethodServer))
}

func (s *Service) probeValueField(ctx context.Context, collectionID, sourceID string) string {
	query := record.Record{}
	if sourceID != "" {
		query = query.Set("_tsMetadata._sourceId", sourceID)
	}
	sample, err := s.source.RelatedReadings(ctx, s.namespaces, collectionID, query, 1)
	if err != nil {
		slog.Warn("could not determine value field, using default", "source", sourceID, "error", err)
		return telemetry.DefaultValueField
	}
	if len(sample) == 0 {
		return telemetry.DefaultValueField
	}
	return telemetry.ProbeValueField(sample[0])
}

// AggregateClient buckets the raw readings last loaded for itemID. It
// returns false when nothing was loaded for the item.
func (s *Service) AggregateClient(itemID string, period telemetry.Period) (displaystate.Entry, bool) {
	raw, ok := s.rawReadings(itemID)
	if !ok {
		entry, _ := s.state.Get(itemID)
		return entry, false
	}
	buckets := telemetry.BucketRecords(telemetry.Aggregate(raw, period))
	return s.state.Apply(itemID, displaystate.Aggregated(buckets, period, displaystate.MethodClient)), true
}

// ShowRaw drops an aggregation and shows the raw readings again.
func (s *Service) ShowRaw(itemID string) (displaystate.Entry, bool) {
	raw, ok := s.rawReadings(itemID)
	if !ok {
		entry, _ := s.state.Get(itemID)
		return entry, false
	}
	return s.state.Apply(itemID, displaystate.RawReadings(raw, telemetry.IsNumeric(raw))), true
}

func (s *Service) rawReadings(itemID string) ([]record.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.raw[itemID]
	return raw, ok
}

// LoadMany loads the readings of several items concurrently. Each fetch
// writes only its own item's entry; one item's failure never stops the
// others. The returned error is the first failure, if any.
func (s *Service) LoadMany(ctx context.Context, collectionID string, items []record.Record, rng *telemetry.DateRange) error {
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, item := range items {
		g.Go(func() error {
			_, err := s.LoadReadings(ctx, collectionID, item, rng)
			return err
		})
	}
	return g.Wait()
}

// Collapse forgets an item's readings.
func (s *Service) Collapse(itemID string) {
	s.mu.Lock()
	delete(s.raw, itemID)
	s.mu.Unlock()
	s.state.Forget(itemID)
}
