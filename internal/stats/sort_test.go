package stats

import (
	"fmt"
	"testing"
)

func tags(entries []Entry) string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Tag
	}
	return fmt.Sprint(out)
}

func TestSort(t *testing.T) {
	entries := []Entry{
		{Tag: "beta", Duration: 30},
		{Tag: "Alpha", Duration: 90},
		{Tag: "émile", Duration: 30},
		{Tag: "delta", Duration: 10},
	}

	tests := []struct {
		name  string
		key   SortKey
		order Order
		want  string
	}{
		{"tag asc", SortByTag, Asc, "[Alpha beta delta émile]"},
		{"tag desc", SortByTag, Desc, "[émile delta beta Alpha]"},
		{"duration asc keeps ties stable", SortByDuration, Asc, "[delta beta émile Alpha]"},
		{"duration desc keeps ties stable", SortByDuration, Desc, "[Alpha beta émile delta]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tags(Sort(entries, tt.key, tt.order)); got != tt.want {
				t.Errorf("Sort() = %s, want %s", got, tt.want)
			}
		})
	}

	if got := tags(entries); got != "[beta Alpha émile delta]" {
		t.Errorf("Sort() modified its input: %s", got)
	}
}

func TestToggle(t *testing.T) {
	key, order := SortByTag, Asc

	key, order = Toggle(key, order, SortByTag)
	if key != SortByTag || order != Desc {
		t.Fatalf("first click = %s %s, want tag desc", key, order)
	}
	key, order = Toggle(key, order, SortByTag)
	if key != SortByTag || order != Asc {
		t.Fatalf("second click = %s %s, want tag asc", key, order)
	}
	key, order = Toggle(key, order, SortByDuration)
	if key != SortByDuration || order != Asc {
		t.Fatalf("new column = %s %s, want duration asc", key, order)
	}

	// The same state always produces the same result.
	for i := 0; i < 3; i++ {
		k, o := Toggle(SortByDuration, Desc, SortByDuration)
		if k != SortByDuration || o != Asc {
			t.Fatalf("Toggle(duration desc) = %s %s", k, o)
		}
	}
}

func TestParseSortKeyAndOrder(t *testing.T) {
	if k, err := ParseSortKey("Duration"); err != nil || k != SortByDuration {
		t.Errorf("ParseSortKey() = %q, %v", k, err)
	}
	if _, err := ParseSortKey("name"); err == nil {
		t.Error("ParseSortKey(name) expected error")
	}
	if o, err := ParseOrder("DESC"); err != nil || o != Desc {
		t.Errorf("ParseOrder() = %q, %v", o, err)
	}
	if _, err := ParseOrder("up"); err == nil {
		t.Error("ParseOrder(up) expected error")
	}
}
