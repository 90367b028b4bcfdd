package service

import (
	"RandomWalkService/internal/core"
	"RandomWalkService/internal/mock"
	"RandomWalkService/internal/model"
	"bytes"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIngestor is a mock implementation of Ingestor for testing
type MockIngestor struct {
	testifymock.Mock
}

func (m *MockIngestor) ParseUpload(filename string, r io.Reader) (core.Upload, error) {
	args := m.Called(filename, r)
	return args.Get(0).(core.Upload), args.Error(1)
}

func (m *MockIngestor) ParseTable(times, prices []string) (model.Series, error) {
	args := m.Called(times, prices)
	series, _ := args.Get(0).(model.Series)
	return series, args.Error(1)
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRealService() *WalkService {
	return NewWalkService(
		mock.NewRandomWalkGenerator(),
		core.NewSeriesIngestionService(0, setupTestLogger()),
		setupTestLogger(),
	)
}

func sampleSeries() model.Series {
	return model.Series{{Time: 0, Price: 100}, {Time: 1, Price: 102}, {Time: 2, Price: 99}}
}

func TestNewWalkService(t *testing.T) {
	ingestor := &MockIngestor{}
	generator := mock.NewRandomWalkGenerator()

	ws := NewWalkService(generator, ingestor, nil)

	require.NotNil(t, ws)
	assert.Equal(t, generator, ws.generator)
	assert.Equal(t, ingestor, ws.ingestor)
	assert.NotNil(t, ws.logger)
}

func TestNewSessionStartsWithDefaultWalk(t *testing.T) {
	s := newRealService().NewSession("abc")

	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, model.SourceGenerate, s.Source)
	require.Len(t, s.Series, 16)
	assert.Equal(t, 100.0, s.Series[0].Price)
	require.NotNil(t, s.Notice)
	assert.Equal(t, MsgGenerated, s.Notice.Message)
}

func TestGenerateDoesNotMutateInput(t *testing.T) {
	ws := newRealService()
	before := model.Session{ID: "a", Source: model.SourceUpload, Series: sampleSeries()}

	after := ws.Generate(before)

	assert.Equal(t, sampleSeries(), before.Series)
	assert.Equal(t, model.SourceUpload, before.Source)
	assert.Len(t, after.Series, 16)
}

func TestSelectSource(t *testing.T) {
	ws := newRealService()

	t.Run("upload clears generated series", func(t *testing.T) {
		s, err := ws.SelectSource(ws.NewSession("a"), model.SourceUpload)

		require.NoError(t, err)
		assert.Equal(t, model.SourceUpload, s.Source)
		assert.Empty(t, s.Series)
		assert.Equal(t, model.NoticeWarning, s.Notice.Level)
		assert.Equal(t, MsgAwaitingUpload, s.Notice.Message)
	})

	t.Run("upload keeps uploaded series", func(t *testing.T) {
		current := model.Session{ID: "a", Source: model.SourceUpload, Series: sampleSeries()}

		s, err := ws.SelectSource(current, model.SourceUpload)

		require.NoError(t, err)
		assert.Equal(t, sampleSeries(), s.Series)
	})

	t.Run("generate regenerates", func(t *testing.T) {
		current := model.Session{ID: "a", Source: model.SourceUpload, Series: sampleSeries()}

		s, err := ws.SelectSource(current, model.SourceGenerate)

		require.NoError(t, err)
		assert.Equal(t, model.SourceGenerate, s.Source)
		assert.Len(t, s.Series, 16)
	})

	t.Run("unknown source", func(t *testing.T) {
		current := ws.NewSession("a")

		s, err := ws.SelectSource(current, "database")

		assert.Error(t, err)
		assert.Equal(t, current, s)
	})
}

func TestUploadExampleCSV(t *testing.T) {
	ws := newRealService()

	s, err := ws.Upload(ws.NewSession("a"), "walk.csv", strings.NewReader("Time,Price\n0,100\n1,102\n2,99"))

	require.NoError(t, err)
	assert.Equal(t, model.SourceUpload, s.Source)
	assert.Equal(t, sampleSeries(), s.Series)
	assert.Equal(t, []string{"Time", "Price"}, s.OriginalColumns)
	assert.Equal(t, MsgUploaded, s.Notice.Message)
}

func TestUploadMissingPriceKeepsPreviousSeries(t *testing.T) {
	ws := newRealService()
	current := model.Session{ID: "a", Source: model.SourceUpload, Series: sampleSeries()}

	s, err := ws.Upload(current, "walk.csv", strings.NewReader("Time,Volume\n0,1\n"))

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSchema)
	assert.Equal(t, sampleSeries(), s.Series)
	assert.Equal(t, model.NoticeError, s.Notice.Level)
	assert.Contains(t, s.Notice.Message, "Price")
}

func TestUploadUsesIngestor(t *testing.T) {
	ingestor := &MockIngestor{}
	ws := NewWalkService(mock.NewRandomWalkGenerator(), ingestor, setupTestLogger())
	body := strings.NewReader("ignored")

	ingestor.On("ParseUpload", "walk.xlsx", body).Return(core.Upload{Series: sampleSeries(), Columns: []string{"a", "b"}}, nil)

	s, err := ws.Upload(model.Session{ID: "a"}, "walk.xlsx", body)

	require.NoError(t, err)
	assert.Equal(t, sampleSeries(), s.Series)
	assert.Equal(t, []string{"a", "b"}, s.OriginalColumns)
	ingestor.AssertExpectations(t)
}

func TestEditRoundTrip(t *testing.T) {
	ws := newRealService()
	s := ws.NewSession("a")

	times, prices := ToTable(s.Series)
	prices[3] = "123.456"

	edited, err := ws.Edit(s, times, prices)
	require.NoError(t, err)

	assert.Equal(t, 123.456, edited.Series[3].Price)
	for i := range s.Series {
		if i == 3 {
			continue
		}
		assert.Equal(t, s.Series[i], edited.Series[i], "row %d changed", i)
	}

	// re-reading the edited series through the grid is idempotent
	times, prices = ToTable(edited.Series)
	again, err := ws.Edit(edited, times, prices)
	require.NoError(t, err)
	assert.Equal(t, edited.Series, again.Series)
}

func TestToTableKeepsExtremePricesExact(t *testing.T) {
	series := model.Series{
		{Time: 0, Price: 1e-300},
		{Time: 1, Price: 1e300},
		{Time: 2, Price: -math.MaxFloat64},
		{Time: 3, Price: math.SmallestNonzeroFloat64},
		{Time: 4, Price: 1234567.25},
		{Time: 5, Price: 0.000123},
	}

	times, prices := ToTable(series)

	assert.Equal(t, []string{"1e-300", "1e+300", "-1.7976931348623157e+308", "5e-324", "1234567.25", "0.000123"}, prices)
	for _, p := range prices {
		assert.LessOrEqual(t, len(p), 32)
	}

	s, err := newRealService().Edit(model.Session{ID: "a"}, times, prices)
	require.NoError(t, err)
	assert.Equal(t, series, s.Series)
}

func TestEditRejectsInvalidRows(t *testing.T) {
	ws := newRealService()
	s := model.Session{ID: "a", Series: sampleSeries()}

	next, err := ws.Edit(s, []string{"0", "1"}, []string{"100", "abc"})

	assert.ErrorIs(t, err, core.ErrParse)
	assert.Equal(t, sampleSeries(), next.Series)
	assert.Equal(t, model.NoticeError, next.Notice.Level)
}

func TestEditPropagatesIngestorError(t *testing.T) {
	ingestor := &MockIngestor{}
	ws := NewWalkService(mock.NewRandomWalkGenerator(), ingestor, setupTestLogger())
	boom := errors.New("boom")

	ingestor.On("ParseTable", []string{"0"}, []string{"1"}).Return(nil, boom)

	_, err := ws.Edit(model.Session{ID: "a"}, []string{"0"}, []string{"1"})

	assert.ErrorIs(t, err, boom)
	ingestor.AssertExpectations(t)
}

func TestReplaceSeries(t *testing.T) {
	ws := newRealService()
	series := model.Series{{Time: 0, Price: 0.1 + 0.2}, {Time: 4, Price: -7}}

	s, err := ws.ReplaceSeries(model.Session{ID: "a"}, series)

	require.NoError(t, err)
	assert.Equal(t, series, s.Series)

	_, err = ws.ReplaceSeries(model.Session{ID: "a"}, model.Series{{Time: 1}, {Time: 1}})
	assert.ErrorIs(t, err, core.ErrSchema)
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name     string
		series   model.Series
		expected model.Stats
		wantErr  bool
	}{
		{
			name:     "three points",
			series:   sampleSeries(),
			expected: model.Stats{Count: 3, Start: 100, End: 99, Max: 102, Min: 99},
		},
		{
			name:     "single point",
			series:   model.Series{{Time: 0, Price: 5}},
			expected: model.Stats{Count: 1, Start: 5, End: 5, Max: 5, Min: 5},
		},
		{
			name:     "negative prices",
			series:   model.Series{{Time: 0, Price: -1}, {Time: 1, Price: -3}, {Time: 2, Price: 2}},
			expected: model.Stats{Count: 3, Start: -1, End: 2, Max: 2, Min: -3},
		},
		{name: "empty", series: model.Series{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := newRealService().Stats(tt.series)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptySeries)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stats)
		})
	}
}

func TestExport(t *testing.T) {
	ws := newRealService()

	var buf bytes.Buffer
	require.NoError(t, ws.Export(sampleSeries(), core.FormatCSV, &buf))
	assert.Equal(t, "Time,Price\n0,100\n1,102\n2,99\n", buf.String())

	assert.ErrorIs(t, ws.Export(nil, core.FormatCSV, &buf), ErrEmptySeries)
	assert.ErrorIs(t, ws.Export(sampleSeries(), "pdf", &buf), core.ErrFileFormat)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "₹100.00", FormatMoney(100))
	assert.Equal(t, "₹101.99", FormatMoney(101.985431))
	assert.Equal(t, "₹-3.50", FormatMoney(-3.5))
	assert.Equal(t, "₹0.13", FormatMoney(0.125))
}
