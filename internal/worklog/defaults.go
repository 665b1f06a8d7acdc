package worklog

import (
	"time"

	"github.com/hpungsan/worklog/internal/timeutil"
)

// DefaultRecords returns the example dataset a fresh store is seeded with:
// three finished records on now's day, newest first.
func DefaultRecords(now time.Time, newID func() string) []Record {
	span := func(tag, desc string, sh, sm, eh, em int) Record {
		end := timeutil.At(now, eh, em)
		return Record{
			ID:          newID(),
			Tag:         tag,
			Description: desc,
			Start:       timeutil.At(now, sh, sm),
			End:         &end,
		}
	}
	return []Record{
		span("task 2", "dev", 15, 15, 15, 35),
		span("task 1", "dev", 14, 5, 15, 0),
		span(IdleTag, "dinner", 13, 20, 14, 0),
	}
}

// EmptyRecords returns the placeholder collection used by "reset empty":
// one finished zero-length record at now.
func EmptyRecords(now time.Time, newID func() string) []Record {
	t := now.Truncate(time.Minute)
	end := t
	return []Record{{ID: newID(), Start: t, End: &end}}
}
