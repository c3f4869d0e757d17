package itemsort

import (
	"fmt"
	"strings"
)

// Item classes of platform collections.
const (
	ClassUserCollection      = "NamedUserCollection"
	ClassFileCollection      = "NamedFileCollection"
	ClassCompositeItem       = "NamedCompositeItem"
	ClassTelemetryCollection = "NamedTelemetryCollection"
)

// CollectionFilter narrows the collection picker.
type CollectionFilter string

const (
	FilterAll           CollectionFilter = "all"
	FilterNamedUserItem CollectionFilter = "namedUserItem"
	FilterTelemetry     CollectionFilter = "telemetry"
	FilterOther         CollectionFilter = "other"
)

// CollectionFilters lists the filters in picker order.
var CollectionFilters = []CollectionFilter{FilterAll, FilterNamedUserItem, FilterTelemetry, FilterOther}

// ParseCollectionFilter accepts a filter name case-insensitively. The empty
// string means all.
func ParseCollectionFilter(s string) (CollectionFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range CollectionFilters {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown collection filter %q (valid: all, namedUserItem, telemetry, other)", s)
}

// Allows reports whether a collection of the given item class passes.
func (f CollectionFilter) Allows(itemClass string) bool {
	switch f {
	case FilterNamedUserItem:
		return itemClass == ClassUserCollection
	case FilterTelemetry:
		return itemClass == ClassTelemetryCollection
	case FilterOther:
		return itemClass != ClassUserCollection && itemClass != ClassTelemetryCollection
	}
	return true
}

// Next cycles to the following filter.
func (f CollectionFilter) Next() CollectionFilter {
	for i, c := range CollectionFilters {
		if c == f {
			return CollectionFilters[(i+1)%len(CollectionFilters)]
		}
	}
	return FilterAll
}
