package api

import (
	"RandomWalkService/internal/core"
	"RandomWalkService/internal/model"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// maxCellLength bounds one grid cell. Longer cells are rejected, never cut.
const maxCellLength = 64

// Validator handles validation logic separate from HTTP concerns
type Validator struct {
	supportedSources map[string]model.Source
	supportedExports map[string]bool
}

var (
	validatorInstance *Validator
	validatorOnce     sync.Once
)

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		validatorInstance = &Validator{
			supportedSources: map[string]model.Source{
				"upload":   model.SourceUpload,
				"generate": model.SourceGenerate,
			},
			supportedExports: map[string]bool{
				core.FormatCSV:  true,
				core.FormatXLSX: true,
			},
		}
	})
	return validatorInstance
}

// ValidateSource validates the data source choice
func (v *Validator) ValidateSource(source string) (model.Source, error) {
	clean := strings.ToLower(v.sanitizeInput(source))
	if clean == "" {
		return "", errors.New("source parameter is required")
	}
	s, ok := v.supportedSources[clean]
	if !ok {
		return "", fmt.Errorf("invalid source '%s'. Supported values: upload, generate", clean)
	}
	return s, nil
}

// ValidateSessionID reports whether id looks like a session id we issued
func (v *Validator) ValidateSessionID(id string) (string, bool) {
	clean := v.sanitizeInput(id)
	if clean == "" {
		return "", false
	}
	if _, err := uuid.Parse(clean); err != nil {
		return "", false
	}
	return clean, true
}

// ValidateFilename keeps only the base name of an uploaded file
func (v *Validator) ValidateFilename(name string) (string, error) {
	clean := v.sanitizeInput(name)
	clean = filepath.Base(strings.ReplaceAll(clean, "\\", "/"))
	if clean == "" || clean == "." || clean == "/" {
		return "", errors.New("uploaded file has no name")
	}
	return clean, nil
}

// ValidateExportFormat validates the export format
func (v *Validator) ValidateExportFormat(format string) (string, error) {
	clean := strings.ToLower(v.sanitizeInput(format))
	if !v.supportedExports[clean] {
		return "", fmt.Errorf("invalid export format '%s'. Supported values: csv, xlsx", clean)
	}
	return clean, nil
}

// ValidateEditForm pairs the grid columns and drops the rows marked for deletion
func (v *Validator) ValidateEditForm(times, prices, deleted []string) ([]string, []string, error) {
	if len(times) != len(prices) {
		return nil, nil, fmt.Errorf("edit form has %d time cells but %d price cells", len(times), len(prices))
	}

	drop := make(map[int]bool, len(deleted))
	for _, d := range deleted {
		idx, err := strconv.Atoi(v.sanitizeInput(d))
		if err != nil || idx < 0 || idx >= len(times) {
			return nil, nil, fmt.Errorf("invalid row to delete '%s'", d)
		}
		drop[idx] = true
	}

	keptTimes := make([]string, 0, len(times))
	keptPrices := make([]string, 0, len(prices))
	for i := range times {
		if drop[i] {
			continue
		}
		t, err := v.cleanCell(i, core.TimeColumn, times[i])
		if err != nil {
			return nil, nil, err
		}
		p, err := v.cleanCell(i, core.PriceColumn, prices[i])
		if err != nil {
			return nil, nil, err
		}
		keptTimes = append(keptTimes, t)
		keptPrices = append(keptPrices, p)
	}
	return keptTimes, keptPrices, nil
}

// cleanCell strips control characters from a grid cell and rejects cells too
// long to be a number. idx is the 0-based grid index.
func (v *Validator) cleanCell(idx int, column, cell string) (string, error) {
	clean := stripControl(cell)
	if len(clean) > maxCellLength {
		return "", &core.IngestError{
			Kind:   core.KindParse,
			Row:    idx + 1,
			Column: column,
			Table:  true,
			Msg:    fmt.Sprintf("value is longer than %d characters", maxCellLength),
		}
	}
	return clean, nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func (v *Validator) sanitizeInput(input string) string {
	input = stripControl(input)

	// Limit length to prevent DoS
	if len(input) > 255 {
		input = input[:255]
	}

	return input
}

// stripControl trims whitespace and removes null bytes and control characters
func stripControl(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 { // Keep tab, LF, CR
			return -1
		}
		return r
	}, input)
}
