package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"positions-console/internal/model"
	"positions-console/internal/positions"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{
	"home",
	"login",
	"register",
	"register_success",
	"dashboard",
	"positions",
	"confirm_delete",
}

// PageData is shared by every view; each template reads what it needs.
type PageData struct {
	Authenticated bool
	Session       model.Session
	Username      string
	Error         string
	ShowToken     bool
	Token         string
	View          positions.View
	Prompt        string
	PositionID    int64
	Position      *model.Position
	CSRFField     template.HTML
}

type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.templates[page] = t
	}
	return r, nil
}

// Render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, page string, data PageData) {
	data.CSRFField = csrf.TemplateField(req)

	t, ok := r.templates[page]
	if !ok {
		slog.Error("unknown template", "page", page)
		http.Error(w, "Unexpected server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render template", "page", page, "error", err)
		http.Error(w, "Unexpected server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
