package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/ops"
	"github.com/hpungsan/worklog/internal/stats"
	"github.com/hpungsan/worklog/internal/timeutil"
	"github.com/hpungsan/worklog/internal/worklog"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
}

// DayPageData is the template data for the day page.
type DayPageData struct {
	PageData
	List     *ops.ListOutput
	Stats    *ops.StatsOutput
	Status   *ops.StatusOutput
	Settings *ops.SettingsOutput
	Ranges   []string
	// ActiveHours counts the day-hour slots of the month with non-idle work.
	ActiveHours int
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	funcMap := template.FuncMap{
		"clock":     formatClock,
		"endClock":  formatEndClock,
		"minutes":   timeutil.FormatMinutes,
		"markdown":  renderMarkdown,
		"tagParts":  tagParts,
		"tagLabel":  tagLabel,
		"pomodoros": pomodoroBar,
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"day":   "day.html",
		"error": "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		log.Printf("template %q not found", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("template execution error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var wErr *errors.WorklogError
	if !stderrors.As(err, &wErr) {
		wErr = errors.NewInternal(err)
	}

	if wantsJSON(req) {
		renderJSON(w, wErr.Status, map[string]any{
			"error": map[string]any{
				"code":    string(wErr.Code),
				"message": wErr.Message,
				"status":  wErr.Status,
			},
		})
		return
	}

	r.renderPageStatus(w, req, wErr.Status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", wErr.Status),
			Version: r.version,
		},
		StatusCode: wErr.Status,
		Message:    wErr.Message,
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts a record description to HTML using goldmark.
// Raw HTML in the source is dropped by goldmark's default renderer.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

var jiraKey = regexp.MustCompile(`(?:^|\s)([A-Z][A-Z0-9]+-[0-9]+)`)

// TagPart is a run of tag text; URL is set when the run is an issue key.
type TagPart struct {
	Text string
	URL  string
}

// tagParts splits a tag around the issue keys it contains so each key can be
// linked on its own. Without a Jira host the tag is a single plain part.
func tagParts(host, tag string) []TagPart {
	if host == "" {
		return []TagPart{{Text: tagLabel(tag)}}
	}
	var parts []TagPart
	last := 0
	for _, m := range jiraKey.FindAllStringSubmatchIndex(tag, -1) {
		start, end := m[2], m[3]
		if start > last {
			parts = append(parts, TagPart{Text: tag[last:start]})
		}
		key := tag[start:end]
		parts = append(parts, TagPart{Text: key, URL: host + "/browse/" + url.PathEscape(key)})
		last = end
	}
	if last < len(tag) || len(parts) == 0 {
		parts = append(parts, TagPart{Text: tagLabel(tag[last:])})
	}
	return parts
}

// tagLabel shows empty tags with a placeholder.
func tagLabel(tag string) string {
	if tag == "" {
		return stats.EmptyTagLabel
	}
	return tag
}

func formatClock(t time.Time) string {
	return timeutil.FormatClock(t)
}

func formatEndClock(t *time.Time) string {
	if t == nil {
		return "…"
	}
	return timeutil.FormatClock(*t)
}

// Pomodoro rendering limits.
const (
	breakGlyphs    = "🌞 🌴 ⛱️ 🧘 🍹"
	maxPomodoroRow = 4
)

// pomodoroBar draws one filled square per whole pomodoro and a hollow one for
// a remainder of at least half a pomodoro. Idle time shows break glyphs and
// long runs collapse to a count.
func pomodoroBar(tag string, p float64) string {
	if tag == worklog.IdleTag {
		return breakGlyphs
	}
	whole, frac := stats.SplitPomodoros(p)
	if whole > maxPomodoroRow {
		return fmt.Sprintf("■ x%d", whole)
	}
	bar := strings.Repeat("■", whole)
	if frac >= 0.5 {
		bar += "□"
	}
	return bar
}
