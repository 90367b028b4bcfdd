package service

import (
	"RandomWalkService/internal/core"
	"RandomWalkService/internal/model"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// User visible messages
const (
	MsgGenerated      = "Default random walk generated!"
	MsgUploaded       = "File uploaded successfully!"
	MsgNormalized     = "Columns normalized to 'Time' and 'Price'"
	MsgAwaitingUpload = "Please upload a file or generate default random walk to continue."
	MsgEdited         = "Table updated."
)

// ErrEmptySeries is returned when statistics are requested for an empty series
var ErrEmptySeries = errors.New("series is empty")

// Generator produces the default series
type Generator interface {
	Generate() model.Series
}

// Ingestor parses uploads and edited tables into series
type Ingestor interface {
	ParseUpload(filename string, r io.Reader) (core.Upload, error)
	ParseTable(times, prices []string) (model.Series, error)
}

// WalkService implements the page interactions. Every operation takes the
// current session and returns the next one; it holds no session state itself.
type WalkService struct {
	generator Generator
	ingestor  Ingestor
	logger    *slog.Logger
}

// NewWalkService creates a new walk service
func NewWalkService(generator Generator, ingestor Ingestor, logger *slog.Logger) *WalkService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WalkService{
		generator: generator,
		ingestor:  ingestor,
		logger:    logger,
	}
}

// NewSession returns the state of a fresh session: the default walk
func (ws *WalkService) NewSession(id string) model.Session {
	return ws.Generate(model.Session{ID: id})
}

// SelectSource switches the data source. Choosing generate regenerates the
// default walk, choosing upload clears the series until a file arrives.
func (ws *WalkService) SelectSource(s model.Session, source model.Source) (model.Session, error) {
	if !source.Valid() {
		return s, fmt.Errorf("unknown data source %q", source)
	}
	if source == model.SourceGenerate {
		return ws.Generate(s), nil
	}

	next := s.Clone()
	if next.Source != model.SourceUpload {
		next.Series = nil
		next.OriginalColumns = nil
	}
	next.Source = model.SourceUpload
	if len(next.Series) == 0 {
		next.Notice = &model.Notice{Level: model.NoticeWarning, Message: MsgAwaitingUpload}
	}
	return next, nil
}

// Generate replaces the series with the default random walk
func (ws *WalkService) Generate(s model.Session) model.Session {
	next := s.Clone()
	next.Source = model.SourceGenerate
	next.Series = ws.generator.Generate()
	next.OriginalColumns = nil
	next.Notice = &model.Notice{Level: model.NoticeSuccess, Message: MsgGenerated}

	ws.logger.Debug("generated default walk",
		"session_id", s.ID,
		"points", len(next.Series))
	return next
}

// Upload parses a file into the session. On failure the session is returned
// unchanged apart from the error notice, so no partial series is ever kept.
func (ws *WalkService) Upload(s model.Session, filename string, r io.Reader) (model.Session, error) {
	upload, err := ws.ingestor.ParseUpload(filename, r)
	if err != nil {
		next := s.Clone()
		next.Notice = &model.Notice{Level: model.NoticeError, Message: fmt.Sprintf("Error reading file: %v", err)}
		return next, fmt.Errorf("failed to ingest %s: %w", filename, err)
	}

	next := s.Clone()
	next.Source = model.SourceUpload
	next.Series = upload.Series
	next.OriginalColumns = upload.Columns
	next.Notice = &model.Notice{Level: model.NoticeSuccess, Message: MsgUploaded}

	ws.logger.Info("session series uploaded",
		"session_id", s.ID,
		"file", filename,
		"points", len(upload.Series))
	return next, nil
}

// Edit replaces the series with the rows of the edited grid. Rows may have
// been added or removed; they are validated like an upload.
func (ws *WalkService) Edit(s model.Session, times, prices []string) (model.Session, error) {
	series, err := ws.ingestor.ParseTable(times, prices)
	if err != nil {
		next := s.Clone()
		next.Notice = &model.Notice{Level: model.NoticeError, Message: fmt.Sprintf("Invalid table: %v", err)}
		return next, fmt.Errorf("failed to apply edit: %w", err)
	}

	next := s.Clone()
	next.Series = series
	next.Notice = &model.Notice{Level: model.NoticeInfo, Message: MsgEdited}
	return next, nil
}

// ReplaceSeries sets the series from already typed points, as sent by JSON clients
func (ws *WalkService) ReplaceSeries(s model.Session, series model.Series) (model.Session, error) {
	times, prices := ToTable(series)
	return ws.Edit(s, times, prices)
}

// Stats summarises the session series
func (ws *WalkService) Stats(series model.Series) (model.Stats, error) {
	return ComputeStats(series)
}

// ComputeStats returns the start, end, max and min prices
func ComputeStats(series model.Series) (model.Stats, error) {
	if len(series) == 0 {
		return model.Stats{}, ErrEmptySeries
	}

	stats := model.Stats{
		Count: len(series),
		Start: series[0].Price,
		End:   series[len(series)-1].Price,
		Max:   series[0].Price,
		Min:   series[0].Price,
	}
	for _, p := range series[1:] {
		if p.Price > stats.Max {
			stats.Max = p.Price
		}
		if p.Price < stats.Min {
			stats.Min = p.Price
		}
	}
	return stats, nil
}

// Export writes the session series as csv or xlsx
func (ws *WalkService) Export(series model.Series, format string, w io.Writer) error {
	if len(series) == 0 {
		return ErrEmptySeries
	}
	if err := core.Export(w, series, format); err != nil {
		return fmt.Errorf("failed to export series as %s: %w", format, err)
	}
	return nil
}

// ToTable renders a series as the raw cell text of the grid
func ToTable(series model.Series) ([]string, []string) {
	times := make([]string, len(series))
	prices := make([]string, len(series))
	for i, p := range series {
		times[i] = fmt.Sprintf("%d", p.Time)
		prices[i] = formatPrice(p.Price)
	}
	return times, prices
}
