package worklog

import (
	"time"

	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/timeutil"
)

// Default gap-fill window for StartLog.
const (
	DefaultGapFillMin = 20 * time.Minute
	DefaultGapFillMax = 120 * time.Minute
)

// ChangeKind identifies the mutation that triggered a Change.
type ChangeKind string

const (
	ChangeCreate    ChangeKind = "create"
	ChangeUpdate    ChangeKind = "update"
	ChangeStart     ChangeKind = "start"
	ChangeFill      ChangeKind = "fill"
	ChangeFinish    ChangeKind = "finish"
	ChangeTap       ChangeKind = "tap"
	ChangeAdd       ChangeKind = "add"
	ChangeDuplicate ChangeKind = "duplicate"
	ChangeRemove    ChangeKind = "remove"
	ChangeMove      ChangeKind = "move"
	ChangeRenameTag ChangeKind = "rename_tag"
	ChangeReplace   ChangeKind = "replace"
	ChangeReset     ChangeKind = "reset"
)

// Change is delivered to subscribers after every successful mutation.
type Change struct {
	Kind ChangeKind
	ID   string // affected record, empty for bulk changes
}

type subscriber struct {
	id int
	fn func(Change)
}

// Store owns the ordered record sequence. Index 0 is the head, the most
// recently started record. It is not safe for concurrent use; callers that
// share a Store across goroutines must serialise access.
type Store struct {
	records []Record
	now     func() time.Time
	newID   func() string
	gapMin  time.Duration
	gapMax  time.Duration

	subs    []subscriber
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithClock injects the source of the current instant.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator injects the record ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithGapFill sets the inclusive window of gaps that StartLog fills with an idle record.
func WithGapFill(min, max time.Duration) Option {
	return func(s *Store) {
		s.gapMin = min
		s.gapMax = max
	}
}

// New creates a store seeded with the default dataset.
func New(opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		newID:  NewID,
		gapMin: DefaultGapFillMin,
		gapMax: DefaultGapFillMax,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.records = DefaultRecords(s.now(), s.id)
	return s
}

// NewWithRecords creates a store hydrated from records. The records are validated
// and copied; the caller keeps ownership of the slice.
func NewWithRecords(records []Record, opts ...Option) (*Store, error) {
	if err := Validate(records); err != nil {
		return nil, err
	}
	s := New(opts...)
	s.records = cloneAll(records)
	return s, nil
}

// Now returns the store's current instant.
func (s *Store) Now() time.Time {
	return s.now()
}

// Subscribe registers fn for change notifications and returns a function that
// removes it.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(kind ChangeKind, id string) {
	c := Change{Kind: kind, ID: id}
	for _, sub := range s.subs {
		sub.fn(c)
	}
}

// id returns a fresh ID that no record in the store uses.
func (s *Store) id() string {
	for {
		id := s.newID()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) mustIndex(id string) (int, error) {
	i := s.indexOf(id)
	if i < 0 {
		return -1, errors.NewNotFound(id)
	}
	return i, nil
}

func (s *Store) insertAt(i int, r Record) {
	s.records = append(s.records, Record{})
	copy(s.records[i+1:], s.records[i:])
	s.records[i] = r
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Head returns a copy of the most recently started record.
func (s *Store) Head() Record {
	return s.records[0].Clone()
}

// IsInProgress reports whether the head record is still running.
func (s *Store) IsInProgress() bool {
	return s.records[0].End == nil
}

// Get returns a copy of the record with the given ID.
func (s *Store) Get(id string) (Record, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Record{}, false
	}
	return s.records[i].Clone(), true
}

// Snapshot returns a deep copy of the whole collection in order.
func (s *Store) Snapshot() []Record {
	return cloneAll(s.records)
}

// ReplaceAll swaps the whole collection after validating it.
func (s *Store) ReplaceAll(records []Record) error {
	if err := Validate(records); err != nil {
		return err
	}
	s.records = cloneAll(records)
	s.notify(ChangeReplace, "")
	return nil
}

// ResetToDefault replaces the collection with the seeded example dataset.
func (s *Store) ResetToDefault() {
	s.records = DefaultRecords(s.now(), s.newID)
	s.notify(ChangeReset, "")
}

// ResetEmpty replaces the collection with a single placeholder record.
func (s *Store) ResetEmpty() {
	s.records = EmptyRecords(s.now(), s.newID)
	s.notify(ChangeReset, "")
}

// Create builds a record from p plus defaults (start=now, end unset) and
// inserts it at the head. A running record cannot be created while another
// one is in progress, and a completed one goes in behind the running head.
func (s *Store) Create(p Patch) (Record, error) {
	r := Record{ID: s.id(), Start: s.now()}
	p.apply(&r)
	pos := 0
	if s.IsInProgress() {
		if r.End == nil {
			return Record{}, errors.NewInProgress("create")
		}
		pos = 1
	}
	s.insertAt(pos, r)
	s.notify(ChangeCreate, r.ID)
	return r.Clone(), nil
}

// Update applies p to the record with the given ID. Ordering is unchanged.
func (s *Store) Update(id string, p Patch) error {
	i, err := s.mustIndex(id)
	if err != nil {
		return err
	}
	p.apply(&s.records[i])
	s.notify(ChangeUpdate, id)
	return nil
}

// UpdateClock applies a manual "HH:MM" edit to the start or end of a record,
// keeping its calendar day. Unparsable input leaves the record untouched.
func (s *Store) UpdateClock(id string, field ClockField, hhmm string) error {
	i, err := s.mustIndex(id)
	if err != nil {
		return err
	}
	r := &s.records[i]

	switch field {
	case FieldStart:
		t, err := timeutil.ApplyClock(r.Start, hhmm)
		if err != nil {
			return errors.NewInvalidTimestamp(hhmm)
		}
		r.Start = t
	case FieldEnd:
		if r.End == nil {
			return errors.NewInProgress("edit end")
		}
		t, err := timeutil.ApplyClock(*r.End, hhmm)
		if err != nil {
			return errors.NewInvalidTimestamp(hhmm)
		}
		r.End = &t
	default:
		return errors.NewInvalidRequest("field must be one of: start, end")
	}

	s.notify(ChangeUpdate, id)
	return nil
}

// StartLog begins tracking a new activity now. The head must be finished.
// A gap since the head's end that lies inside the gap-fill window is first
// covered by an idle record, which is returned as the second value.
func (s *Store) StartLog(p Patch) (Record, *Record, error) {
	r, idle, err := s.startLog(p)
	if err != nil {
		return Record{}, nil, err
	}
	s.notify(ChangeStart, r.ID)
	return r, idle, nil
}

func (s *Store) startLog(p Patch) (Record, *Record, error) {
	head := s.records[0]
	if head.End == nil {
		return Record{}, nil, errors.NewInProgress("start")
	}
	now := s.now()

	var idle *Record
	gap := now.Sub(*head.End)
	if gap > 0 && gap >= s.gapMin && gap <= s.gapMax {
		end := now
		filler := Record{ID: s.id(), Tag: IdleTag, Start: *head.End, End: &end}
		s.insertAt(0, filler)
		c := filler.Clone()
		idle = &c
	}

	r := Record{ID: s.id(), Start: now}
	p.apply(&r)
	r.End = nil
	s.insertAt(0, r)
	return r.Clone(), idle, nil
}

// StartSelected starts a new record carrying the tag and description of an
// existing one.
func (s *Store) StartSelected(id string) (Record, *Record, error) {
	i, err := s.mustIndex(id)
	if err != nil {
		return Record{}, nil, err
	}
	src := s.records[i]
	return s.StartLog(Patch{Tag: &src.Tag, Description: &src.Description})
}

// FillLog logs a finished record spanning from the head's end to now without
// starting anything. The head must be finished.
func (s *Store) FillLog(p Patch) (Record, error) {
	head := s.records[0]
	if head.End == nil {
		return Record{}, errors.NewInProgress("fill")
	}
	end := s.now()
	r := Record{ID: s.id(), Start: *head.End, End: &end}
	p.apply(&r)
	s.insertAt(0, r)
	s.notify(ChangeFill, r.ID)
	return r.Clone(), nil
}

// FinishLog sets the running head's end to now.
func (s *Store) FinishLog() (Record, error) {
	r, err := s.finishLog()
	if err != nil {
		return Record{}, err
	}
	s.notify(ChangeFinish, r.ID)
	return r, nil
}

func (s *Store) finishLog() (Record, error) {
	if s.records[0].End != nil {
		return Record{}, errors.NewNotInProgress("finish")
	}
	end := s.now()
	s.records[0].End = &end
	return s.records[0].Clone(), nil
}

// TapLog finishes the running record and starts a new untagged one at the same instant.
func (s *Store) TapLog() (Record, Record, error) {
	finished, err := s.finishLog()
	if err != nil {
		return Record{}, Record{}, errors.NewNotInProgress("tap")
	}
	started, _, err := s.startLog(Patch{Start: finished.End})
	if err != nil {
		return Record{}, Record{}, err
	}
	s.notify(ChangeTap, started.ID)
	return finished, started, nil
}

// AddRow inserts a finished 12:00-12:05 placeholder on date's day at the
// position that keeps newest-first order. It never displaces a running head.
func (s *Store) AddRow(date time.Time) (Record, error) {
	start := timeutil.At(date, 12, 0)
	end := timeutil.At(date, 12, 5)
	r := Record{ID: s.id(), Start: start, End: &end}

	pos := len(s.records)
	for i := range s.records {
		if s.records[i].Start.Before(start) {
			pos = i
			break
		}
	}
	if pos == 0 && s.IsInProgress() {
		pos = 1
	}
	s.insertAt(pos, r)
	s.notify(ChangeAdd, r.ID)
	return r.Clone(), nil
}

// DuplicateRow clones a record under a new ID and places the clone directly
// after the original.
func (s *Store) DuplicateRow(id string) (Record, error) {
	i, err := s.mustIndex(id)
	if err != nil {
		return Record{}, err
	}
	if s.records[i].End == nil {
		return Record{}, errors.NewInProgress("duplicate")
	}
	clone := s.records[i].Clone()
	clone.ID = s.id()
	s.insertAt(i+1, clone)
	s.notify(ChangeDuplicate, clone.ID)
	return clone.Clone(), nil
}

// RemoveRow deletes a record and returns the ID of the record that followed it,
// or "" if it was the last one. The only remaining record cannot be removed.
func (s *Store) RemoveRow(id string) (string, error) {
	i, err := s.mustIndex(id)
	if err != nil {
		return "", err
	}
	if len(s.records) == 1 {
		return "", errors.NewLastRecord(id)
	}

	next := ""
	if i+1 < len(s.records) {
		next = s.records[i+1].ID
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	s.notify(ChangeRemove, id)
	return next, nil
}

// MoveRowUp swaps a record with its neighbour toward the head. No-op at index 0.
func (s *Store) MoveRowUp(id string) error {
	i, err := s.mustIndex(id)
	if err != nil {
		return err
	}
	if i == 0 {
		return nil
	}
	return s.swap(i-1, i)
}

// MoveRowDown swaps a record with its neighbour toward the tail. No-op at the end.
func (s *Store) MoveRowDown(id string) error {
	i, err := s.mustIndex(id)
	if err != nil {
		return err
	}
	if i == len(s.records)-1 {
		return nil
	}
	return s.swap(i, i+1)
}

// swap exchanges positions a and a+1; the running head stays pinned to index 0.
func (s *Store) swap(a, b int) error {
	if s.records[a].End == nil {
		return errors.NewInProgress("move")
	}
	s.records[a], s.records[b] = s.records[b], s.records[a]
	s.notify(ChangeMove, s.records[a].ID)
	return nil
}

func cloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
