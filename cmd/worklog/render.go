package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hpungsan/worklog/internal/ops"
	"github.com/hpungsan/worklog/internal/stats"
	"github.com/hpungsan/worklog/internal/timeutil"
	"github.com/hpungsan/worklog/internal/worklog"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#874BFD"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func endText(v ops.RecordView) string {
	if v.End == nil {
		return runningStyle.Render("running")
	}
	return timeutil.FormatClock(*v.End)
}

func renderList(out *ops.ListOutput) string {
	t := newTable("ID", "Tag", "Description", "Start", "End", "Duration")
	for _, it := range out.Items {
		t.Row(it.ID, it.Tag, it.Description, timeutil.FormatClock(it.Start), endText(it), timeutil.FormatMinutes(it.Minutes))
	}
	title := "All records"
	if out.Date != "" {
		title = out.Date
	}
	footer := mutedStyle.Render(fmt.Sprintf("%d records, %s", len(out.Items), timeutil.FormatMinutes(out.Total)))
	return lipgloss.JoinVertical(lipgloss.Left, headerStyle.Render(title), t.Render(), footer)
}

func renderStatus(out *ops.StatusOutput) string {
	return statusLine(time.Time{}, out)
}

// statusLine is a one-line summary of the head record. A zero now omits the
// clock prefix.
func statusLine(now time.Time, out *ops.StatusOutput) string {
	var b strings.Builder
	if !now.IsZero() {
		b.WriteString(mutedStyle.Render(timeutil.FormatClock(now)))
		b.WriteString(" ")
	}
	head := out.Head
	label := head.Tag
	if label == "" {
		label = "(no tag)"
	}
	if head.Description != "" {
		label += ": " + head.Description
	}
	if out.InProgress {
		b.WriteString(runningStyle.Render("● " + label))
		fmt.Fprintf(&b, " since %s (%s)", timeutil.FormatClock(head.Start), out.Elapsed)
	} else {
		b.WriteString("○ " + label)
		fmt.Fprintf(&b, " %s-%s (%s)", timeutil.FormatClock(head.Start), endText(head), timeutil.FormatMinutes(head.Minutes))
	}
	return b.String()
}

func renderStats(out *ops.StatsOutput) string {
	t := newTable("Tag", "Duration", "Pomodoros")
	for _, e := range out.Entries {
		tag := e.Tag
		if tag == "" {
			tag = mutedStyle.Render("(no tag)")
		}
		t.Row(tag, timeutil.FormatMinutes(e.Duration), pomodoroText(e.Tag, e.Pomodoros))
	}
	t.Row("Total", out.TotalText, "")
	title := fmt.Sprintf("%s %s (by %s %s)", out.Range, out.Label, out.SortBy, out.SortOrder)
	return lipgloss.JoinVertical(lipgloss.Left, headerStyle.Render(title), t.Render())
}

// pomodoroText matches the web page: break time gets no pomodoros, a remainder
// counts from half a pomodoro and more than four collapse to a count.
func pomodoroText(tag string, p float64) string {
	if tag == worklog.IdleTag {
		return mutedStyle.Render("break")
	}
	whole, frac := stats.SplitPomodoros(p)
	var s string
	if whole > 4 {
		s = fmt.Sprintf("■ x%d", whole)
	} else {
		s = strings.Repeat("■", whole)
		if frac >= 0.5 {
			s += "□"
		}
	}
	return s + " " + strconv.FormatFloat(p, 'f', 1, 64)
}

func renderTags(out *ops.TagsOutput) string {
	t := newTable("Tag")
	for _, tag := range out.Tags {
		t.Row(tag)
	}
	return t.Render()
}
