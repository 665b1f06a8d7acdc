package worklog

import (
	"fmt"
	"testing"
	"time"

	"github.com/hpungsan/worklog/internal/errors"
)

// fakeClock is a settable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func at(h, m int) time.Time {
	return time.Date(2026, 10, 17, h, m, 0, 0, time.Local)
}

func newTestStore(t *testing.T, start time.Time) (*Store, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: start}
	return New(WithClock(clk.now), WithIDGenerator(seqIDs())), clk
}

func strp(s string) *string { return &s }

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func assertInvariants(t *testing.T, s *Store) {
	t.Helper()
	if s.Len() == 0 {
		t.Fatal("store is empty")
	}
	if err := Validate(s.Snapshot()); err != nil {
		t.Fatalf("invariants violated: %v", err)
	}
}

func TestNew_SeedsDefaultDataset(t *testing.T) {
	s, _ := newTestStore(t, at(16, 0))

	recs := s.Snapshot()
	if len(recs) != 3 {
		t.Fatalf("Len() = %d, want 3", len(recs))
	}
	if recs[0].Tag != "task 2" || !recs[0].Start.Equal(at(15, 15)) || !recs[0].End.Equal(at(15, 35)) {
		t.Errorf("head = %+v", recs[0])
	}
	if recs[2].Tag != IdleTag || recs[2].Description != "dinner" {
		t.Errorf("tail = %+v", recs[2])
	}
	if s.IsInProgress() {
		t.Error("default dataset should not be in progress")
	}
}

func TestStartLog_GapFill(t *testing.T) {
	tests := []struct {
		name     string
		gap      time.Duration
		wantIdle bool
	}{
		{"no gap", 0, false},
		{"short gap", 10 * time.Minute, false},
		{"lower bound inclusive", 20 * time.Minute, true},
		{"inside window", 45 * time.Minute, true},
		{"upper bound inclusive", 120 * time.Minute, true},
		{"long gap", 150 * time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t, at(15, 35).Add(tt.gap))
			before := s.Len()

			rec, idle, err := s.StartLog(Patch{Tag: strp("task 3")})
			if err != nil {
				t.Fatalf("StartLog() error = %v", err)
			}
			if (idle != nil) != tt.wantIdle {
				t.Fatalf("idle = %v, wantIdle %v", idle, tt.wantIdle)
			}

			want := before + 1
			if tt.wantIdle {
				want++
				if idle.Tag != IdleTag || !idle.Start.Equal(at(15, 35)) || !idle.End.Equal(rec.Start) {
					t.Errorf("idle = %+v", idle)
				}
				if got, _ := s.Get(idle.ID); got.ID != s.Snapshot()[1].ID {
					t.Errorf("idle record should sit directly behind the new head")
				}
			}
			if s.Len() != want {
				t.Errorf("Len() = %d, want %d", s.Len(), want)
			}
			if head := s.Head(); head.ID != rec.ID || head.End != nil || head.Tag != "task 3" {
				t.Errorf("head = %+v", head)
			}
			assertInvariants(t, s)
		})
	}
}

func TestStartLog_RefusesWhileRunning(t *testing.T) {
	s, _ := newTestStore(t, at(16, 0))
	if _, _, err := s.StartLog(Patch{}); err != nil {
		t.Fatalf("StartLog() error = %v", err)
	}
	before := s.Snapshot()

	_, _, err := s.StartLog(Patch{})
	if !errors.Is(err, errors.ErrInProgress) {
		t.Fatalf("StartLog() error = %v, want IN_PROGRESS", err)
	}
	if len(s.Snapshot()) != len(before) {
		t.Error("failed StartLog modified the store")
	}
}

func TestStartLog_IgnoresEndOverride(t *testing.T) {
	s, _ := newTestStore(t, at(16, 0))
	end := at(17, 0)
	rec, _, err := s.StartLog(Patch{End: &end, Description: strp("review")})
	if err != nil {
		t.Fatalf("StartLog() error = %v", err)
	}
	if rec.End != nil || !s.IsInProgress() {
		t.Errorf("StartLog() kept End override: %+v", rec)
	}
	if rec.Description != "review" {
		t.Errorf("Description = %q, want review", rec.Description)
	}
}

func TestStartSelected_CopiesTagAndDescription(t *testing.T) {
	s, clk := newTestStore(t, at(15, 40))
	src := s.Snapshot()[1]
	clk.advance(time.Minute)

	rec, idle, err := s.StartSelected(src.ID)
	if err != nil {
		t.Fatalf("StartSelected() error = %v", err)
	}
	if idle != nil {
		t.Error("unexpected idle record for a short gap")
	}
	if rec.Tag != src.Tag || rec.Description != src.Description {
		t.Errorf("StartSelected() = %+v, want tag/description of %+v", rec, src)
	}
	if _, _, err := s.StartSelected("missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("StartSelected(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestFinishLog(t *testing.T) {
	s, clk := newTestStore(t, at(16, 0))

	if _, err := s.FinishLog(); !errors.Is(err, errors.ErrNotInProgress) {
		t.Fatalf("FinishLog() error = %v, want NOT_IN_PROGRESS", err)
	}

	if _, _, err := s.StartLog(Patch{}); err != nil {
		t.Fatalf("StartLog() error = %v", err)
	}
	clk.advance(25 * time.Minute)

	rec, err := s.FinishLog()
	if err != nil {
		t.Fatalf("FinishLog() error = %v", err)
	}
	if rec.End == nil || !rec.End.Equal(at(16, 25)) {
		t.Errorf("End = %v, want 16:25", rec.End)
	}
	if s.IsInProgress() {
		t.Error("IsInProgress() = true after finish")
	}
}

func TestFillLog(t *testing.T) {
	s, _ := newTestStore(t, at(16, 5))

	rec, err := s.FillLog(Patch{Tag: strp("meeting")})
	if err != nil {
		t.Fatalf("FillLog() error = %v", err)
	}
	if !rec.Start.Equal(at(15, 35)) || !rec.End.Equal(at(16, 5)) || rec.Tag != "meeting" {
		t.Errorf("FillLog() = %+v", rec)
	}
	if s.Head().ID != rec.ID {
		t.Error("filled record is not the head")
	}

	if _, _, err := s.StartLog(Patch{}); err != nil {
		t.Fatalf("StartLog() error = %v", err)
	}
	if _, err := s.FillLog(Patch{}); !errors.Is(err, errors.ErrInProgress) {
		t.Errorf("FillLog() while running error = %v, want IN_PROGRESS", err)
	}
}

func TestTapLog(t *testing.T) {
	s, clk := newTestStore(t, at(16, 0))

	if _, _, err := s.TapLog(); !errors.Is(err, errors.ErrNotInProgress) {
		t.Fatalf("TapLog() error = %v, want NOT_IN_PROGRESS", err)
	}

	if _, _, err := s.StartLog(Patch{Tag: strp("a")}); err != nil {
		t.Fatalf("StartLog() error = %v", err)
	}
	clk.advance(10 * time.Minute)

	finished, started, err := s.TapLog()
	if err != nil {
		t.Fatalf("TapLog() error = %v", err)
	}
	if finished.End == nil || !finished.End.Equal(started.Start) {
		t.Errorf("finished.End = %v, started.Start = %v", finished.End, started.Start)
	}
	if started.Tag != "" || started.End != nil {
		t.Errorf("started = %+v", started)
	}
	recs := s.Snapshot()
	if recs[0].ID != started.ID || recs[1].ID != finished.ID {
		t.Errorf("order = %v", ids(recs))
	}
	assertInvariants(t, s)
}

func TestCreate(t *testing.T) {
	s, _ := newTestStore(t, at(16, 0))

	rec, err := s.Create(Patch{Tag: strp("x")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !rec.Start.Equal(at(16, 0)) || rec.End != nil || s.Head().ID != rec.ID {
		t.Errorf("Create() = %+v", rec)
	}

	if _, err := s.Create(Patch{}); !errors.Is(err, errors.ErrInProgress) {
		t.Errorf("second open Create() error = %v, want IN_PROGRESS", err)
	}

	start, end := at(15, 40), at(15, 50)
	done, err := s.Create(Patch{Tag: strp("done"), Start: &start, End: &end})
	if err != nil {
		t.Fatalf("completed Create() error = %v", err)
	}
	recs := s.Snapshot()
	if recs[0].ID != rec.ID || recs[1].ID != done.ID {
		t.Errorf("order = [%s %s], want running head then completed record", recs[0].ID, recs[1].ID)
	}
	if !s.IsInProgress() {
		t.Error("IsInProgress() = false after completed Create()")
	}
	assertInvariants(t, s)
}

func TestUpdateClock(t *testing.T) {
	s, _ := newTestStore(t, at(16, 0))
	id := s.Snapshot()[1].ID

	if err := s.UpdateClock(id, FieldStart, "13:45"); err != nil {
		t.Fatalf("UpdateClock() error = %v", err)
	}
	got, _ := s.Get(id)
	if !got.Start.Equal(at(13, 45)) {
		t.Errorf("Start = %v, want 13:45", got.Start)
	}

	err := s.UpdateClock(id, FieldEnd, "99:99")
	if !errors.Is(err, errors.ErrInvalidTimestamp) {
		t.Fatalf("UpdateClock() error = %v, want INVALID_TIMESTAMP", err)
	}
	got, _ = s.Get(id)
	if !got.End.Equal(at(15, 0)) {
		t.Errorf("End changed after invalid edit: %v", got.End)
	}

	if _, _, err := s.StartLog(Patch{}); err != nil {
		t.Fatalf("StartLog() error = %v", err)
	}
	if err := s.UpdateClock(s.Head().ID, FieldEnd, "17:00"); !errors.Is(err, errors.ErrInProgress) {
		t.Errorf("UpdateClock(end of running) error = %v, want IN_PROGRESS", err)
	}
	if err := s.UpdateClock("missing", FieldStart, "10:00"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("UpdateClock(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestDuplicateRow_Adjacent(t *testing.T) {
	s, _ := newTestStore(t, at(16, 0))
	orig := s.Snapshot()

	for i, src := range orig {
		clone, err := s.DuplicateRow(src.ID)
		if err != nil {
			t.Fatalf("DuplicateRow(%d) error = %v", i, err)
		}
		recs := s.Snapshot()
		var pos int
		for j, r := range recs {
			if r.ID == src.ID {
				pos = j
			}
		}
		if recs[pos+1].ID != clone.ID {
			t.Errorf("clone of %s at wrong position: %v", src.ID, ids(recs))
		}
		if clone.ID == src.ID || clone.Tag != src.Tag || !clone.Start.Equal(src.Start) {
			t.Errorf("clone = %+v, src = %+v", clone, src)
		}
	}
	if s.Len() != 2*len(orig) {
		t.Errorf("Len() = %d, want %d", s.Len(), 2*len(orig))
	}

	if _, err := s.DuplicateRow("missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("DuplicateRow(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestDuplicateRow_RunningHead(t *testing.T) {
	s, _ := newTestStore(t, at(16, 0))
	rec, _, _ := s.StartLog(Patch{})
	if _, err := s.DuplicateRow(rec.ID); !errors.Is(err, errors.ErrInProgress) {
		t.Errorf("DuplicateRow(running) error = %v, want IN_PROGRESS", err)
	}
	assertInvariants(t, s)
}

func TestRemoveRow(t *testing.T) {
	s, _ := newTestStore(t, at(16, 0))
	recs := s.Snapshot()

	next, err := s.RemoveRow(recs[0].ID)
	if err != nil {
		t.Fatalf("RemoveRow() error = %v", err)
	}
	if next != recs[1].ID {
		t.Errorf("RemoveRow() next = %q, want %q", next, recs[1].ID)
	}

	next, err = s.RemoveRow(recs[2].ID)
	if err != nil {
		t.Fatalf("RemoveRow() error = %v", err)
	}
	if next != "" {
		t.Errorf("RemoveRow(last) next = %q, want empty", next)
	}

	if _, err := s.RemoveRow(recs[1].ID); !errors.Is(err, errors.ErrLastRecord) {
		t.Errorf("RemoveRow(only) error = %v, want LAST_RECORD", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if _, err := s.RemoveRow("missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("RemoveRow(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestMoveRow_Boundaries(t *testing.T) {
	s, _ := newTestStore(t, at(16, 0))
	orig := ids(s.Snapshot())

	if err := s.MoveRowUp(orig[0]); err != nil {
		t.Fatalf("MoveRowUp(head) error = %v", err)
	}
	if err := s.MoveRowDown(orig[2]); err != nil {
		t.Fatalf("MoveRowDown(tail) error = %v", err)
	}
	if got := ids(s.Snapshot()); fmt.Sprint(got) != fmt.Sprint(orig) {
		t.Errorf("boundary moves changed order: %v, want %v", got, orig)
	}

	if err := s.MoveRowDown(orig[0]); err != nil {
		t.Fatalf("MoveRowDown() error = %v", err)
	}
	want := []string{orig[1], orig[0], orig[2]}
	if got := ids(s.Snapshot()); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("after MoveRowDown = %v, want %v", got, want)
	}

	if err := s.MoveRowUp(orig[0]); err != nil {
		t.Fatalf("MoveRowUp() error = %v", err)
	}
	if got := ids(s.Snapshot()); fmt.Sprint(got) != fmt.Sprint(orig) {
		t.Errorf("after MoveRowUp = %v, want %v", got, orig)
	}
}

func TestMoveRow_RunningHeadPinned(t *testing.T) {
	s, _ := newTestStore(t, at(16, 0))
	head, _, _ := s.StartLog(Patch{})
	second := s.Snapshot()[1].ID

	if err := s.MoveRowDown(head.ID); !errors.Is(err, errors.ErrInProgress) {
		t.Errorf("MoveRowDown(running) error = %v, want IN_PROGRESS", err)
	}
	if err := s.MoveRowUp(second); !errors.Is(err, errors.ErrInProgress) {
		t.Errorf("MoveRowUp(behind running) error = %v, want IN_PROGRESS", err)
	}
	assertInvariants(t, s)
}

func TestAddRow_Ordering(t *testing.T) {
	s, _ := newTestStore(t, at(16, 0))

	yesterday := at(9, 0).AddDate(0, 0, -1)
	rec, err := s.AddRow(yesterday)
	if err != nil {
		t.Fatalf("AddRow() error = %v", err)
	}
	if !rec.Start.Equal(at(12, 0).AddDate(0, 0, -1)) || !rec.End.Equal(at(12, 5).AddDate(0, 0, -1)) {
		t.Errorf("AddRow() = %+v", rec)
	}
	recs := s.Snapshot()
	if recs[len(recs)-1].ID != rec.ID {
		t.Errorf("yesterday's row should be last: %v", ids(recs))
	}

	tomorrow := at(9, 0).AddDate(0, 0, 1)
	if _, _, err := s.StartLog(Patch{}); err != nil {
		t.Fatalf("StartLog() error = %v", err)
	}
	rec, err = s.AddRow(tomorrow)
	if err != nil {
		t.Fatalf("AddRow() error = %v", err)
	}
	recs = s.Snapshot()
	if recs[1].ID != rec.ID {
		t.Errorf("row must not displace the running head: %v", ids(recs))
	}
	assertInvariants(t, s)
}

func TestResets(t *testing.T) {
	s, clk := newTestStore(t, at(16, 0))
	clk.t = clk.t.Add(42 * time.Second)

	s.ResetEmpty()
	if s.Len() != 1 {
		t.Fatalf("ResetEmpty() Len = %d, want 1", s.Len())
	}
	head := s.Head()
	if !head.Start.Equal(at(16, 0)) || head.End == nil || !head.End.Equal(head.Start) {
		t.Errorf("placeholder = %+v", head)
	}

	s.ResetToDefault()
	if s.Len() != 3 {
		t.Errorf("ResetToDefault() Len = %d, want 3", s.Len())
	}
}

func TestReplaceAll_Validates(t *testing.T) {
	s, _ := newTestStore(t, at(16, 0))
	end := at(10, 0)

	tests := []struct {
		name    string
		records []Record
	}{
		{"empty", nil},
		{"missing id", []Record{{Start: at(9, 0), End: &end}}},
		{"duplicate id", []Record{{ID: "a", Start: at(9, 0), End: &end}, {ID: "a", Start: at(8, 0), End: &end}}},
		{"open tail", []Record{{ID: "a", Start: at(9, 0), End: &end}, {ID: "b", Start: at(8, 0)}}},
		{"zero start", []Record{{ID: "a", End: &end}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.ReplaceAll(tt.records); !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("ReplaceAll() error = %v, want INVALID_REQUEST", err)
			}
			if s.Len() != 3 {
				t.Errorf("store modified by rejected ReplaceAll")
			}
		})
	}

	if err := s.ReplaceAll([]Record{{ID: "a", Start: at(9, 0)}}); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	if !s.IsInProgress() || s.Head().ID != "a" {
		t.Errorf("ReplaceAll() head = %+v", s.Head())
	}
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	s, _ := newTestStore(t, at(16, 0))
	snap := s.Snapshot()
	*snap[0].End = at(23, 0)
	snap[0].Tag = "mutated"

	head := s.Head()
	if head.Tag == "mutated" || head.End.Equal(at(23, 0)) {
		t.Error("Snapshot() shares memory with the store")
	}
}

func TestSubscribe_NotifiesOncePerMutation(t *testing.T) {
	s, clk := newTestStore(t, at(16, 0))
	var got []ChangeKind
	unsubscribe := s.Subscribe(func(c Change) { got = append(got, c.Kind) })

	if _, _, err := s.StartLog(Patch{}); err != nil {
		t.Fatal(err)
	}
	clk.advance(time.Minute)
	if _, _, err := s.TapLog(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.FillLog(Patch{}); err == nil {
		t.Fatal("FillLog() expected error while running")
	}
	if _, err := s.FinishLog(); err != nil {
		t.Fatal(err)
	}

	want := []ChangeKind{ChangeStart, ChangeTap, ChangeFinish}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("changes = %v, want %v", got, want)
	}

	unsubscribe()
	s.ResetEmpty()
	if len(got) != len(want) {
		t.Error("notified after unsubscribe")
	}
}

// TestInvariants_RandomSequence drives a long deterministic mix of operations and
// checks the head invariant and non-emptiness after every step.
func TestInvariants_RandomSequence(t *testing.T) {
	s, clk := newTestStore(t, at(8, 0))

	for i := 0; i < 500; i++ {
		clk.advance(time.Duration(i%37+1) * time.Minute)
		recs := s.Snapshot()
		target := recs[i%len(recs)].ID

		switch i % 12 {
		case 0:
			s.StartLog(Patch{Tag: strp(fmt.Sprintf("t%d", i%4))})
		case 1:
			s.FinishLog()
		case 2:
			s.TapLog()
		case 3:
			s.FillLog(Patch{})
		case 4:
			s.DuplicateRow(target)
		case 5:
			s.RemoveRow(target)
		case 6:
			s.MoveRowUp(target)
		case 7:
			s.MoveRowDown(target)
		case 8:
			s.AddRow(clk.t.AddDate(0, 0, -(i % 3)))
		case 9:
			s.Create(Patch{Tag: strp("open")})
		case 10:
			start := clk.t.Add(-10 * time.Minute)
			end := clk.t.Add(-5 * time.Minute)
			s.Create(Patch{Start: &start, End: &end})
		case 11:
			end := clk.t
			s.Update(target, Patch{Description: strp("edited"), End: &end})
		}
		assertInvariants(t, s)
	}
}
