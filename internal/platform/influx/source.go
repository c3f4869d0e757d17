// Package influx reads telemetry from an InfluxDB 2 bucket. It is the
// alternative reading backend selected with telemetry-backend=influxdb.
//
// Layout: one measurement per collection (the collection id), the reading
// source id in the source_id tag, and the reading value in a field named
// after the probed value field (value, val or reading).
package influx

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/xbocquet/twcatele/internal/metrics"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/telemetry"
)

// BackendName identifies this source in the backend registry.
const BackendName = "influxdb"

// SourceTag is the tag holding a reading's source id.
const SourceTag = "source_id"

var _ domain.ReadingSource = (*Source)(nil)

// Source implements domain.ReadingSource with Flux queries.
type Source struct {
	client influxdb2.Client
	org    string
	bucket string
}

// New connects to an InfluxDB server. The client is lazy; no request is
// made until the first query.
func New(url, token, org, bucket string) *Source {
	return &Source{
		client: influxdb2.NewClient(url, token),
		org:    org,
		bucket: bucket,
	}
}

// Name returns the backend name.
func (s *Source) Name() string {
	return BackendName
}

// Close releases the underlying HTTP resources.
func (s *Source) Close() {
	s.client.Close()
}

// RelatedReadings returns the newest pageSize readings of the collection
// matching query. Namespaces are ignored; the bucket scopes the data.
func (s *Source) RelatedReadings(ctx context.Context, _ []string, collectionID string, query record.Record, pageSize int) ([]record.Record, error) {
	f := filterFromMatch(query)
	flux := readingsFlux(s.bucket, collectionID, f, pageSize)

	result, err := s.client.QueryAPI(s.org).Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("influx: failed to query readings: %w", err)
	}
	defer result.Close()

	var readings []record.Record
	for result.Next() {
		rec := result.Record()
		source, _ := rec.ValueByKey(SourceTag).(string)
		readings = append(readings, readingRecord(source, rec.Field(), rec.Time(), rec.Value()))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("influx: failed to read query result: %w", err)
	}
	metrics.ReadingsFetched.WithLabelValues(BackendName).Add(float64(len(readings)))
	return readings, nil
}

// Aggregate evaluates the pipeline's match, period and value field with
// aggregateWindow and returns bucket records, newest first.
func (s *Source) Aggregate(ctx context.Context, _ []string, collectionID string, pipeline telemetry.Pipeline) ([]record.Record, error) {
	f := filterFromMatch(pipeline.Match())
	f.field = pipeline.ValueField()
	period := pipeline.Period()
	flux := aggregateFlux(s.bucket, collectionID, f, period)

	result, err := s.client.QueryAPI(s.org).Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("influx: failed to aggregate readings: %w", err)
	}
	defer result.Close()

	acc := newBucketAccumulator(period)
	for result.Next() {
		rec := result.Record()
		acc.add(rec.Result(), rec.Time(), rec.Value())
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("influx: failed to read aggregation result: %w", err)
	}
	return telemetry.BucketRecords(acc.buckets()), nil
}

// readingRecord shapes a Flux row like a platform reading.
func readingRecord(source, field string, ts time.Time, value any) record.Record {
	if field == "" {
		field = telemetry.DefaultValueField
	}
	if i, ok := value.(int64); ok {
		value = float64(i)
	}
	return record.New(
		"_id", fmt.Sprintf("%s-%d", source, ts.UnixMilli()),
		"_ts", telemetry.FormatISO(ts),
		field, value,
		"_tsMetadata", record.New("_sourceId", source),
	)
}

// bucketAccumulator merges the avg/min/max/count yields of an
// aggregation query into buckets keyed by window start.
type bucketAccumulator struct {
	period telemetry.Period
	byKey  map[string]*telemetry.Bucket
}

func newBucketAccumulator(period telemetry.Period) *bucketAccumulator {
	return &bucketAccumulator{period: period, byKey: make(map[string]*telemetry.Bucket)}
}

func (a *bucketAccumulator) add(yield string, ts time.Time, value any) {
	key := a.period.BucketKey(ts)
	b, ok := a.byKey[key]
	if !ok {
		b = &telemetry.Bucket{Timestamp: key}
		a.byKey[key] = b
	}
	n, isNum := telemetry.ToNumber(value)
	if i, ok := value.(int64); ok {
		n, isNum = float64(i), true
	}
	if !isNum {
		return
	}
	switch yield {
	case "avg":
		b.Avg = &n
	case "min":
		b.Min = &n
	case "max":
		b.Max = &n
	case "count":
		b.Count = int(n)
	}
}

func (a *bucketAccumulator) buckets() []telemetry.Bucket {
	out := make([]telemetry.Bucket, 0, len(a.byKey))
	for _, b := range a.byKey {
		if b.Count < 1 {
			continue
		}
		out = append(out, *b)
	}
	slices.SortFunc(out, func(x, y telemetry.Bucket) int {
		return strings.Compare(y.Timestamp, x.Timestamp)
	})
	return out
}
