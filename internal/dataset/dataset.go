// Package dataset reads float profile files and flattens them into
// observation records.
//
// Supported input is one float per file: the platform number is read once and
// applied to every record. Multi-float files are not supported.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
)

// ReferenceDate is the epoch of numeric JULD values.
var ReferenceDate = time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)

// Dataset holds the variables of a profile file indexed by [profile][level].
// Missing values are NaN.
type Dataset struct {
	PlatformNumber []string
	Latitude       []float64
	Longitude      []float64
	Juld           []Juld
	Pres           [][]float64
	Temp           [][]float64
	Psal           [][]float64
}

// Reader loads a dataset from its source.
type Reader interface {
	Read(ctx context.Context) (*Dataset, error)
}

// FileReader reads the JSON export of a profile file.
type FileReader struct {
	Path string
	// FillValue, when set, is treated as missing in addition to null and the
	// file's own fill_value.
	FillValue *float64
}

// Read implements Reader.
func (r FileReader) Read(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, domain.Wrap("read dataset", domain.ErrSourceRead, err)
	}
	defer f.Close()
	return Decode(f, r.FillValue)
}

// LoadFile reads and validates the dataset at path.
func LoadFile(path string) (*Dataset, error) {
	return FileReader{Path: path}.Read(context.Background())
}

type fileFormat struct {
	PlatformNumber []string     `json:"platform_number"`
	Latitude       []*float64   `json:"latitude"`
	Longitude      []*float64   `json:"longitude"`
	Juld           []Juld       `json:"juld"`
	Pres           [][]*float64 `json:"pres"`
	Temp           [][]*float64 `json:"temp"`
	Psal           [][]*float64 `json:"psal"`
	FillValue      *float64     `json:"fill_value,omitempty"`
}

// Decode parses a JSON profile export and validates its shape.
func Decode(r io.Reader, fillValue *float64) (*Dataset, error) {
	var raw fileFormat
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, domain.Wrap("decode dataset", domain.ErrSourceRead, err)
	}
	missing := []*float64{raw.FillValue, fillValue}
	for name, v := range map[string]any{
		"platform_number": raw.PlatformNumber,
		"latitude":        raw.Latitude,
		"longitude":       raw.Longitude,
		"juld":            raw.Juld,
		"pres":            raw.Pres,
		"temp":            raw.Temp,
		"psal":            raw.Psal,
	} {
		if isNilSlice(v) {
			return nil, domain.Wrap("decode dataset", domain.ErrSourceRead, fmt.Errorf("missing variable %s", name))
		}
	}
	ds := &Dataset{
		PlatformNumber: raw.PlatformNumber,
		Latitude:       column(raw.Latitude, missing),
		Longitude:      column(raw.Longitude, missing),
		Juld:           juldColumn(raw.Juld, missing),
		Pres:           grid(raw.Pres, missing),
		Temp:           grid(raw.Temp, missing),
		Psal:           grid(raw.Psal, missing),
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Validate checks that all per-profile variables agree on the number of
// profiles. Level rows may be ragged; cells past the end of a row are missing.
func (d *Dataset) Validate() error {
	n := len(d.Pres)
	checks := []struct {
		name string
		len  int
	}{
		{"temp", len(d.Temp)},
		{"psal", len(d.Psal)},
		{"latitude", len(d.Latitude)},
		{"longitude", len(d.Longitude)},
		{"juld", len(d.Juld)},
	}
	for _, c := range checks {
		if c.len != n {
			return domain.Wrap("validate dataset", domain.ErrSourceRead,
				fmt.Errorf("%s has %d profiles, pres has %d", c.name, c.len, n))
		}
	}
	for i, j := range d.Juld {
		if err := j.Check(); err != nil {
			return domain.Wrap("validate dataset", domain.ErrSourceRead, fmt.Errorf("profile %d: %w", i, err))
		}
	}
	if n > 0 && d.FloatID() == "" {
		return domain.Wrap("validate dataset", domain.ErrSourceRead, fmt.Errorf("platform_number is empty"))
	}
	return nil
}

// Profiles returns the number of profiles in the dataset.
func (d *Dataset) Profiles() int { return len(d.Pres) }

// FloatID returns the platform number of the file's float.
func (d *Dataset) FloatID() string {
	if len(d.PlatformNumber) == 0 {
		return ""
	}
	return strings.TrimSpace(d.PlatformNumber[0])
}

func column(values []*float64, missing []*float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = value(v, missing)
	}
	return out
}

func juldColumn(values []Juld, missing []*float64) []Juld {
	out := make([]Juld, len(values))
	for i, j := range values {
		out[i] = j.orMissing(missing)
	}
	return out
}

func grid(rows [][]*float64, missing []*float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = column(row, missing)
	}
	return out
}

func value(v *float64, missing []*float64) float64 {
	if v == nil {
		return math.NaN()
	}
	for _, m := range missing {
		if m != nil && *v == *m {
			return math.NaN()
		}
	}
	return *v
}

func isNilSlice(v any) bool {
	switch s := v.(type) {
	case []string:
		return s == nil
	case []*float64:
		return s == nil
	case []Juld:
		return s == nil
	case [][]*float64:
		return s == nil
	}
	return false
}
