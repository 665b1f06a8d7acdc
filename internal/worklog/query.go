package worklog

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hpungsan/worklog/internal/timeutil"
)

// SuggestField selects which record field Suggest draws values from.
type SuggestField string

const (
	SuggestTag         SuggestField = "tag"
	SuggestDescription SuggestField = "description"
)

// NewCollator returns the collator used for user-facing tag ordering.
func NewCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase)
}

// ItemsAtDate returns copies of the records whose start falls on day's calendar date,
// in store order.
func (s *Store) ItemsAtDate(day time.Time) []Record {
	var out []Record
	for _, r := range s.records {
		if timeutil.SameDay(day, r.Start) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Dates returns the sorted unique date keys of all record starts plus today.
func (s *Store) Dates(today time.Time) []string {
	seen := map[string]bool{timeutil.DateKey(today): true}
	for _, r := range s.records {
		seen[timeutil.DateKey(r.Start.In(today.Location()))] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Tags returns the unique non-empty tags in collation order.
func (s *Store) Tags() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range s.records {
		if r.Tag == "" || seen[r.Tag] {
			continue
		}
		seen[r.Tag] = true
		out = append(out, r.Tag)
	}
	NewCollator().SortStrings(out)
	return out
}

// RenameTag retags every record tagged from and returns how many changed.
func (s *Store) RenameTag(from, to string) int {
	if from == to {
		return 0
	}
	n := 0
	for i := range s.records {
		if s.records[i].Tag == from {
			s.records[i].Tag = to
			n++
		}
	}
	if n > 0 {
		s.notify(ChangeRenameTag, "")
	}
	return n
}

// Suggest returns up to limit distinct values of field matching query,
// case-insensitively. Prefix matches come before substring matches; within each
// group values keep the order of their most recent use. A limit <= 0 means no limit.
func (s *Store) Suggest(field SuggestField, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	seen := make(map[string]bool)
	var prefix, contains []string

	for _, r := range s.records {
		v := r.Tag
		if field == SuggestDescription {
			v = r.Description
		}
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true

		lv := strings.ToLower(v)
		switch {
		case strings.HasPrefix(lv, q):
			prefix = append(prefix, v)
		case strings.Contains(lv, q):
			contains = append(contains, v)
		}
	}

	out := append(prefix, contains...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
