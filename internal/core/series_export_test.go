package core

import (
	"RandomWalkService/internal/model"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, model.Series{{Time: 0, Price: 100}, {Time: 1, Price: 102.125}})

	require.NoError(t, err)
	assert.Equal(t, "Time,Price\n0,100\n1,102.125\n", buf.String())
}

func TestExportRoundTrip(t *testing.T) {
	series := model.Series{
		{Time: 0, Price: 100},
		{Time: 1, Price: 101.98431812419218},
		{Time: 2, Price: -3.5},
		{Time: 5, Price: 1e-7},
	}

	tests := []struct {
		format   string
		filename string
	}{
		{format: FormatCSV, filename: "export.csv"},
		{format: FormatXLSX, filename: "export.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Export(&buf, series, tt.format))

			upload, err := newTestService().ParseUpload(tt.filename, &buf)

			require.NoError(t, err)
			assert.Equal(t, series, upload.Series)
			assert.Equal(t, []string{TimeColumn, PriceColumn}, upload.Columns)
		})
	}
}

func TestExportUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Export(&buf, model.Series{{Time: 0, Price: 1}}, "json")

	assert.ErrorIs(t, err, ErrFileFormat)
	assert.Zero(t, buf.Len())
}
