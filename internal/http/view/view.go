// Package view отвечает за рендеринг встроенных HTML-шаблонов.
package view

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/billkeeper/internal/lib/sl"
	"github.com/magabrotheeeer/billkeeper/web"
)

// Flash передается в шаблоны для отображения одноразовых сообщений.
type Flash struct {
	Message  string
	Category string
}

// View рендерит именованные шаблоны из встроенной файловой системы.
type View struct {
	templates *template.Template
	log       *slog.Logger
}

// New парсит все встроенные шаблоны один раз при старте.
func New(log *slog.Logger) (*View, error) {
	tmpl, err := template.ParseFS(web.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &View{templates: tmpl, log: log}, nil
}

// Render выполняет шаблон name с данными data.
func (v *View) Render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := v.templates.ExecuteTemplate(w, name, data); err != nil {
		v.log.Error("failed to execute template", slog.String("template", name), sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
