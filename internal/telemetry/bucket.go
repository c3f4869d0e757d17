package telemetry

import (
	"sort"

	"github.com/xbocquet/twcatele/internal/record"
)

// Bucket is one aggregation group.
type Bucket struct {
	Timestamp string   `json:"_ts"`
	Avg       *float64 `json:"avg"`
	Min       *float64 `json:"min"`
	Max       *float64 `json:"max"`
	Count     int      `json:"count"`
}

// Record converts the bucket to the record shape returned by the server
// pipeline so both aggregation paths share one display path.
func (b Bucket) Record() record.Record {
	return record.New(
		"_ts", b.Timestamp,
		"avg", ptrValue(b.Avg),
		"min", ptrValue(b.Min),
		"max", ptrValue(b.Max),
		"count", float64(b.Count),
	)
}

// BucketFromRecord reads a server-aggregated record.
func BucketFromRecord(r record.Record) Bucket {
	b := Bucket{Timestamp: r.String("_ts")}
	if v, ok := r.Get("avg"); ok {
		b.Avg = numberPtr(v)
	}
	if v, ok := r.Get("min"); ok {
		b.Min = numberPtr(v)
	}
	if v, ok := r.Get("max"); ok {
		b.Max = numberPtr(v)
	}
	if v, ok := r.Get("count"); ok {
		if n, ok := ToNumber(v); ok {
			b.Count = int(n)
		}
	}
	return b
}

// Aggregate buckets raw readings client-side.
//
// Every reading with a parseable _ts counts toward its bucket; avg, min and
// max cover only the readings whose value coerces to a number and stay nil
// when a bucket has none. Buckets come back newest first.
func Aggregate(readings []record.Record, period Period) []Bucket {
	type acc struct {
		sum      float64
		n        int
		min, max float64
		count    int
	}
	groups := map[string]*acc{}
	for _, r := range readings {
		ts, ok := ReadingTime(r)
		if !ok {
			continue
		}
		key := period.BucketKey(ts)
		a, exists := groups[key]
		if !exists {
			a = &acc{}
			groups[key] = a
		}
		a.count++
		v, ok := NumericValue(r)
		if !ok {
			continue
		}
		if a.n == 0 || v < a.min {
			a.min = v
		}
		if a.n == 0 || v > a.max {
			a.max = v
		}
		a.sum += v
		a.n++
	}

	buckets := make([]Bucket, 0, len(groups))
	for key, a := range groups {
		b := Bucket{Timestamp: key, Count: a.count}
		if a.n > 0 {
			avg := a.sum / float64(a.n)
			mn, mx := a.min, a.max
			b.Avg, b.Min, b.Max = &avg, &mn, &mx
		}
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Timestamp > buckets[j].Timestamp
	})
	return buckets
}

// BucketRecords converts buckets to records, keeping their order.
func BucketRecords(buckets []Bucket) []record.Record {
	out := make([]record.Record, len(buckets))
	for i, b := range buckets {
		out[i] = b.Record()
	}
	return out
}

func ptrValue(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func numberPtr(v any) *float64 {
	if v == nil {
		return nil
	}
	n, ok := ToNumber(v)
	if !ok {
		return nil
	}
	return &n
}
