package render

import (
	"RandomWalkService/internal/chart"
	"RandomWalkService/internal/core"
	"RandomWalkService/internal/model"
	"RandomWalkService/internal/service"
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
)

//go:embed templates/page.html
var templates embed.FS

// Page texts
const (
	PageTitle       = "Econophysics Random Walk"
	ObservationText = "**Observation:** No smooth trend. Irregular fluctuations characteristic of a random walk."
)

// Row is one editable grid row as displayed. Number is the 1-based label
// used in error messages, Index the 0-based position posted for deletion.
type Row struct {
	Number int
	Index  int
	Time   string
	Price  string
}

// StatsView holds the formatted statistics
type StatsView struct {
	Start string
	End   string
	Max   string
	Min   string
}

// PageData is everything the page template needs
type PageData struct {
	Title           string
	ChartTitle      string
	Source          model.Source
	Accept          string
	LastDefaultTime int
	DefaultStart    string
	Notice          *model.Notice
	OriginalColumns []string
	NormalizedText  string
	HasSeries       bool
	Rows            []Row
	Observation     template.HTML
	Stats           *StatsView
	EmptyMessage    string
}

// DefaultsView describes the default walk in the page text
type DefaultsView struct {
	Length     int
	StartPrice float64
}

// Renderer renders the interactive page
type Renderer struct {
	page        *template.Template
	observation template.HTML
	defaults    DefaultsView
}

// NewRenderer parses the page template and converts the observation markdown once
func NewRenderer(defaults DefaultsView) (*Renderer, error) {
	page, err := template.ParseFS(templates, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	observation, err := Markdown(ObservationText)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		page:        page,
		observation: observation,
		defaults:    defaults,
	}, nil
}

// Markdown converts trusted static markdown into HTML
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(strings.TrimSpace(buf.String())), nil
}

// BuildPageData maps a session onto the template data. extraRows appends blank
// rows to the grid for the user to fill in.
func (r *Renderer) BuildPageData(s model.Session, extraRows int) PageData {
	data := PageData{
		Title:           PageTitle,
		ChartTitle:      chart.Title,
		Source:          s.Source,
		Accept:          strings.Join(core.SupportedExtensions(), ","),
		LastDefaultTime: r.defaults.Length - 1,
		DefaultStart:    strconv.FormatFloat(r.defaults.StartPrice, 'f', -1, 64),
		Notice:          s.Notice,
		OriginalColumns: s.OriginalColumns,
		NormalizedText:  service.MsgNormalized,
		HasSeries:       len(s.Series) > 0,
		Observation:     r.observation,
		EmptyMessage:    service.MsgAwaitingUpload,
	}
	if data.Source == "" {
		data.Source = model.SourceGenerate
	}

	times, prices := service.ToTable(s.Series)
	for i := range times {
		data.Rows = append(data.Rows, Row{Number: i + 1, Index: i, Time: times[i], Price: prices[i]})
	}
	for i := 0; i < extraRows; i++ {
		n := len(data.Rows)
		data.Rows = append(data.Rows, Row{Number: n + 1, Index: n})
	}

	if stats, err := service.ComputeStats(s.Series); err == nil {
		data.Stats = &StatsView{
			Start: service.FormatMoney(stats.Start),
			End:   service.FormatMoney(stats.End),
			Max:   service.FormatMoney(stats.Max),
			Min:   service.FormatMoney(stats.Min),
		}
	}
	return data
}

// Page writes the full HTML page for the session
func (r *Renderer) Page(w io.Writer, s model.Session, extraRows int) error {
	if err := r.page.Execute(w, r.BuildPageData(s, extraRows)); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
