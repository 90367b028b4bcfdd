package model

import "time"

// Source identifies where the series of a session comes from
type Source string

const (
	SourceUpload   Source = "upload"
	SourceGenerate Source = "generate"
)

// Valid reports whether s is a known source
func (s Source) Valid() bool {
	return s == SourceUpload || s == SourceGenerate
}

// Point is a single (Time, Price) record of a series
type Point struct {
	Time  int64   `json:"time"`
	Price float64 `json:"price"`
}

// Series is an ordered sequence of points, Time strictly ascending
type Series []Point

// Clone returns a copy that shares no memory with s
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Prices returns the price column
func (s Series) Prices() []float64 {
	prices := make([]float64, len(s))
	for i, p := range s {
		prices[i] = p.Price
	}
	return prices
}

// Times returns the time column
func (s Series) Times() []int64 {
	times := make([]int64, len(s))
	for i, p := range s {
		times[i] = p.Time
	}
	return times
}

// NoticeLevel is the severity of a user visible message
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is the last message surfaced to the user
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Session is the whole application state of one browser session.
// Handlers load it, pass it through the service and store what comes back.
type Session struct {
	ID              string    `json:"id"`
	Source          Source    `json:"source"`
	Series          Series    `json:"series"`
	OriginalColumns []string  `json:"original_columns,omitempty"`
	Notice          *Notice   `json:"notice,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the session
func (s Session) Clone() Session {
	out := s
	out.Series = s.Series.Clone()
	if s.OriginalColumns != nil {
		out.OriginalColumns = append([]string(nil), s.OriginalColumns...)
	}
	if s.Notice != nil {
		n := *s.Notice
		out.Notice = &n
	}
	return out
}

// Stats summarises the prices of a series
type Stats struct {
	Count int     `json:"count"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Max   float64 `json:"max"`
	Min   float64 `json:"min"`
}
