package telemetry

import "github.com/xbocquet/twcatele/internal/record"

// valueFieldCandidates are probed, in order, on a sample reading.
var valueFieldCandidates = []string{"value", "val", "reading"}

// DefaultValueField is used when the probe finds nothing.
const DefaultValueField = "value"

// Stage is one step of an aggregation pipeline.
type Stage = record.Record

// Pipeline is an ordered list of aggregation stages.
type Pipeline []Stage

// ProbeValueField picks the value field name from a sample reading by exact
// key presence, defaulting to "value".
func ProbeValueField(sample record.Record) string {
	for _, name := range valueFieldCandidates {
		if sample.Has(name) {
			return name
		}
	}
	return DefaultValueField
}

// BuildPipeline assembles the server-side bucketing request: match,
// truncate-and-label, group, reshape, sort newest first.
func BuildPipeline(period Period, match record.Record, valueField string) Pipeline {
	if valueField == "" {
		valueField = DefaultValueField
	}
	if match == nil {
		match = record.Record{}
	}
	ref := "$" + valueField

	return Pipeline{
		record.New("$match", match),
		record.New("$project", record.New(
			"tsAsBucket", record.New("$dateToString", record.New(
				"format", period.DateFormat(),
				"date", record.New("$dateTrunc", record.New(
					"date", "$_ts",
					"unit", period.Unit(),
					"binSize", period.BinSize(),
				)),
			)),
			"_ts", 1,
			valueField, 1,
		)),
		record.New("$group", record.New(
			"_id", "$tsAsBucket",
			"avg", record.New("$avg", ref),
			"min", record.New("$min", ref),
			"max", record.New("$max", ref),
			"count", record.New("$sum", 1),
		)),
		record.New("$project", record.New(
			"_ts", "$_id",
			"avg", 1,
			"min", 1,
			"max", 1,
			"count", 1,
		)),
		record.New("$sort", record.New("_ts", -1)),
	}
}

// ValueField reports the field a pipeline aggregates, read back from its
// $group stage.
func (p Pipeline) ValueField() string {
	for _, stage := range p {
		group, ok := stage.Get("$group")
		if !ok {
			continue
		}
		g, ok := group.(record.Record)
		if !ok {
			continue
		}
		if avg, ok := g.Lookup("avg.$avg"); ok {
			if s, ok := avg.(string); ok && len(s) > 1 {
				return s[1:]
			}
		}
	}
	return DefaultValueField
}

// Match returns the $match criteria of the pipeline.
func (p Pipeline) Match() record.Record {
	for _, stage := range p {
		if m, ok := stage.Get("$match"); ok {
			if r, ok := m.(record.Record); ok {
				return r
			}
		}
	}
	return nil
}

// Period reads the bucket width back from the $dateTrunc expression.
func (p Pipeline) Period() Period {
	for _, stage := range p {
		proj, ok := stage.Get("$project")
		if !ok {
			continue
		}
		pr, ok := proj.(record.Record)
		if !ok {
			continue
		}
		trunc, ok := pr.Lookup("tsAsBucket.$dateToString.date.$dateTrunc")
		if !ok {
			continue
		}
		t, ok := trunc.(record.Record)
		if !ok {
			continue
		}
		unit := t.String("unit")
		bin, _ := t.Get("binSize")
		size, _ := ToNumber(bin)
		for _, candidate := range Periods {
			if candidate.Unit() == unit && float64(candidate.BinSize()) == size {
				return candidate
			}
		}
	}
	return DefaultPeriod
}
