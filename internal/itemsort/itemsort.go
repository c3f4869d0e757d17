// Package itemsort orders collection items by the browser's sortable
// columns and tracks the sort/pagination state of the item table.
package itemsort

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xbocquet/twcatele/internal/record"
)

// Column is a sortable item column.
type Column string

const (
	ColumnName  Column = "name"
	ColumnEquip Column = "equip"
	ColumnDesc  Column = "desc"
	ColumnKind  Column = "kind"
	ColumnUnit  Column = "unit"
)

// Columns lists the sortable columns in table order.
var Columns = []Column{ColumnName, ColumnEquip, ColumnDesc, ColumnKind, ColumnUnit}

// ParseColumn validates a column name.
func ParseColumn(s string) (Column, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Columns {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown sort column %q (valid: name, equip, desc, kind, unit)", s)
}

// Direction is the sort direction. The zero value means unsorted.
type Direction string

const (
	Unsorted   Direction = ""
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Value returns the value an item contributes to a column.
//
// name, equip and desc use the first non-reserved matching field; only name
// falls back to the display name. kind and unit use the first matching
// field of any kind.
func Value(item record.Record, col Column, isTelemetry bool) any {
	switch col {
	case ColumnName, ColumnEquip, ColumnDesc:
		if pairs := record.FindAll(item, string(col)); len(pairs) > 0 {
			return pairs[0].Value
		}
		if col == ColumnName {
			return record.DisplayName(item, isTelemetry)
		}
		return nil
	case ColumnKind, ColumnUnit:
		v, _ := record.FindFirst(item, string(col))
		return v
	}
	return nil
}

func sortKey(item record.Record, col Column, isTelemetry bool) string {
	return strings.ToLower(record.Stringify(Value(item, col, isTelemetry)))
}

// Sort returns items ordered by col. Unsorted returns a copy in the
// original order. The sort is stable.
func Sort(items []record.Record, col Column, dir Direction, isTelemetry bool) []record.Record {
	out := slices.Clone(items)
	if col == "" || dir == Unsorted {
		return out
	}
	keys := make([]string, len(out))
	idx := make([]int, len(out))
	for i, it := range out {
		idx[i] = i
		keys[i] = sortKey(it, col, isTelemetry)
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		c := strings.Compare(keys[a], keys[b])
		if dir == Descending {
			return -c
		}
		return c
	})
	sorted := make([]record.Record, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}
