// Package worklog is the record store: an ordered, newest-first collection of
// time-interval records with at most one in-progress record at the head.
package worklog

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/timeutil"
)

// IdleTag marks break time. It is used by gap filling and rendered differently,
// but it has no special storage meaning.
const IdleTag = "idle"

// Record is one logged or in-progress interval.
type Record struct {
	ID          string
	Description string
	Tag         string
	Start       time.Time
	End         *time.Time // nil while the record is running
}

// InProgress reports whether the record has no end yet.
func (r Record) InProgress() bool {
	return r.End == nil
}

// EndOr returns the end time, or fallback when the record is still running.
func (r Record) EndOr(fallback time.Time) time.Time {
	if r.End == nil {
		return fallback
	}
	return *r.End
}

// Minutes returns the record duration using fn, measuring a running record up to now.
func (r Record) Minutes(now time.Time, fn timeutil.DurationFunc) int {
	return fn(r.Start, r.EndOr(now))
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	c := r
	if r.End != nil {
		end := *r.End
		c.End = &end
	}
	return c
}

// Patch is a partial field update. Nil fields are left unchanged.
type Patch struct {
	Description *string
	Tag         *string
	Start       *time.Time
	End         *time.Time
}

// IsEmpty reports whether the patch sets no field.
func (p Patch) IsEmpty() bool {
	return p.Description == nil && p.Tag == nil && p.Start == nil && p.End == nil
}

func (p Patch) apply(r *Record) {
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Tag != nil {
		r.Tag = *p.Tag
	}
	if p.Start != nil {
		r.Start = *p.Start
	}
	if p.End != nil {
		end := *p.End
		r.End = &end
	}
}

// ClockField names the timestamp a manual "HH:MM" edit targets.
type ClockField string

const (
	FieldStart ClockField = "start"
	FieldEnd   ClockField = "end"
)

// NewID generates a new ULID.
func NewID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Validate checks the collection invariants: non-empty, unique non-empty IDs,
// set start times, and at most one running record which must be the head.
func Validate(records []Record) error {
	if len(records) == 0 {
		return errors.NewInvalidRequest("record collection must not be empty")
	}
	seen := make(map[string]bool, len(records))
	for i, r := range records {
		if r.ID == "" {
			return errors.NewInvalidRequest(fmt.Sprintf("record at position %d has no id", i))
		}
		if seen[r.ID] {
			return errors.NewInvalidRequest(fmt.Sprintf("duplicate record id: %s", r.ID))
		}
		seen[r.ID] = true
		if r.Start.IsZero() {
			return errors.NewInvalidRequest(fmt.Sprintf("record %s has no start time", r.ID))
		}
		if i > 0 && r.End == nil {
			return errors.NewInvalidRequest(fmt.Sprintf("record %s is in progress but is not the most recent record", r.ID))
		}
	}
	return nil
}
