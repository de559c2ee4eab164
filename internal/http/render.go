package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/example/barbershop-booking/internal/calendar"
	"github.com/example/barbershop-booking/internal/slots"
)

//go:embed templates/*.html
var templateFS embed.FS

// IndexPage is the data behind the single customer page. SelectedDate is
// empty until the customer picks a day.
type IndexPage struct {
	Week         []calendar.WeekDay
	SelectedDate string
	DayName      string
	Slots        []slots.Slot
	Flashes      []Flash
}

// Renderer executes the embedded HTML templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("pages").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// RenderIndex writes the index page. Output is buffered so a template failure
// never leaves a half written response.
func (r *Renderer) RenderIndex(w io.Writer, page IndexPage) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "index.html", page); err != nil {
		return fmt.Errorf("render index: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
