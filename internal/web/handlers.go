package web

import (
	"net/http"
	"strings"

	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/ops"
	"github.com/hpungsan/worklog/internal/stats"
	"github.com/hpungsan/worklog/internal/timeutil"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	session  *ops.Session
	renderer *Renderer
}

// HandleDay handles GET /day: the selected day's records and the statistics
// for the stored range. ?date=YYYY-MM-DD views another day without changing
// the stored selection.
func (h *Handlers) HandleDay(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	list, err := ops.List(h.session, ops.ListInput{Date: date})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	st, err := ops.Stats(h.session, ops.StatsInput{Date: list.Date})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	status, err := ops.Status(h.session)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	settings, err := ops.Settings(h.session)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	anchor, err := timeutil.ParseDate(list.Date)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"list":   list,
			"stats":  st,
			"status": status,
		})
		return
	}

	h.renderer.renderPage(w, r, "day", DayPageData{
		PageData: PageData{
			Title:   "Worklog " + list.Date,
			Version: h.renderer.version,
		},
		List:        list,
		Stats:       st,
		Status:      status,
		Settings:    settings,
		Ranges:      []string{"day", "week", "month", "year", "all"},
		ActiveHours: len(stats.ActiveHours(h.session.Snapshot(), anchor, h.session.Now())),
	})
}

// HandleAction handles POST /actions/{action}. Browsers are redirected back to
// /day; JSON clients receive the operation output.
func (h *Handlers) HandleAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	out, err := h.dispatch(r.PathValue("action"), r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	http.Redirect(w, r, "/day", http.StatusSeeOther)
}

func (h *Handlers) dispatch(action string, r *http.Request) (any, error) {
	s := h.session
	id := r.PostFormValue("id")

	switch action {
	case "start":
		return ops.Start(s, ops.StartInput{
			Tag:         formString(r, "tag"),
			Description: formString(r, "description"),
			FromID:      r.PostFormValue("from_id"),
		})
	case "resume":
		return ops.StartSelected(s, ops.StartSelectedInput{ID: r.PostFormValue("id")})
	case "finish":
		return ops.Finish(s)
	case "tap":
		return ops.Tap(s)
	case "fill":
		return ops.Fill(s, ops.FillInput{
			Tag:         formString(r, "tag"),
			Description: formString(r, "description"),
		})
	case "update":
		return ops.Update(s, ops.UpdateInput{
			ID:          id,
			Tag:         formString(r, "tag"),
			Description: formString(r, "description"),
			Start:       formNonEmpty(r, "start"),
			End:         formNonEmpty(r, "end"),
		})
	case "add":
		return ops.Add(s, ops.AddInput{Date: r.PostFormValue("date")})
	case "duplicate":
		return ops.Duplicate(s, ops.DuplicateInput{ID: id})
	case "remove":
		return ops.Remove(s, ops.RemoveInput{ID: id})
	case "up", "down":
		return ops.Move(s, ops.MoveInput{ID: id, Direction: ops.Direction(action)})
	case "prev":
		return ops.MoveDate(s, ops.MoveDateInput{Delta: -1})
	case "next":
		return ops.MoveDate(s, ops.MoveDateInput{Delta: 1})
	case "today":
		return ops.Today(s)
	case "date":
		return ops.SetDate(s, ops.SetDateInput{Date: r.PostFormValue("date")})
	case "range":
		return ops.Stats(s, ops.StatsInput{Range: r.PostFormValue("range")})
	case "sort":
		return ops.Stats(s, ops.StatsInput{Toggle: r.PostFormValue("key")})
	case "settings":
		input := ops.UpdateSettingsInput{JiraHost: formString(r, "jira_host")}
		// The page sends a hidden "false" ahead of the checkbox; the last value wins.
		if vals := r.PostForm["skip_empty_days"]; len(vals) > 0 {
			v := parseBool(vals[len(vals)-1])
			input.SkipEmptyDays = &v
		}
		return ops.UpdateSettings(s, input)
	default:
		return nil, errors.NewInvalidRequest("unknown action: " + action)
	}
}

// formString returns a pointer to a submitted form value, or nil when the
// field was not submitted at all. An empty submitted value clears the field.
func formString(r *http.Request, name string) *string {
	vals, ok := r.PostForm[name]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

// formNonEmpty is formString for fields where an empty value means "unchanged".
func formNonEmpty(r *http.Request, name string) *string {
	v := formString(r, name)
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}

func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "on"
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
