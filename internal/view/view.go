package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page names accepted by Renderer.Render.
const (
	PageIndex  = "index"
	PageUpdate = "update"
	PageReport = "report"
)

type IndexData struct {
	Tasks []model.Task
}

type UpdateData struct {
	Task model.Task
}

type ReportData struct {
	Rows []model.ReportRow
}

// Renderer holds one parsed template set per page, each sharing the base layout.
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"date": formatDate,
		"days": formatDays,
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageIndex, PageUpdate, PageReport} {
		tmpl, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render executes page into w.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	return nil
}

func formatDate(v any) string {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return ""
		}
		return d.Format(model.DateLayout)
	case *time.Time:
		return model.FormatDate(d)
	default:
		return ""
	}
}

func formatDays(d *int) string {
	if d == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *d)
}
