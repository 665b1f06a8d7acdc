package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/worklog"
)

// SortKey selects the column entries are ordered by.
type SortKey string

const (
	SortByTag      SortKey = "tag"
	SortByDuration SortKey = "duration"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseSortKey validates a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortByTag, SortByDuration:
		return k, nil
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("sort must be one of: tag, duration (got %q)", s))
}

// ParseOrder validates a sort direction.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case Asc, Desc:
		return o, nil
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("order must be one of: asc, desc (got %q)", s))
}

// Sort returns a sorted copy of entries. Tags compare with locale-aware
// collation, durations numerically. Equal keys keep their input order.
func Sort(entries []Entry, key SortKey, order Order) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)

	var cmp func(a, b Entry) int
	switch key {
	case SortByDuration:
		cmp = func(a, b Entry) int { return a.Duration - b.Duration }
	default:
		col := worklog.NewCollator()
		cmp = func(a, b Entry) int { return col.CompareString(a.Tag, b.Tag) }
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if order == Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// Toggle returns the sort state after the user clicks a column header.
// Clicking the active column flips the direction; another column starts ascending.
func Toggle(key SortKey, order Order, clicked SortKey) (SortKey, Order) {
	if clicked != key {
		return clicked, Asc
	}
	if order == Asc {
		return key, Desc
	}
	return key, Asc
}
