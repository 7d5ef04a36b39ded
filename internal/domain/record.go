package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Metadata keys attached to every summary document.
const (
	MetaFloatID       = "float_id"
	MetaProfileNumber = "profile_number"
	MetaTime          = "time"
	MetaLat           = "lat"
	MetaLon           = "lon"
)

// TimeLayout is the layout used whenever a record timestamp is stored as text.
const TimeLayout = "2006-01-02 15:04:05"

// Metadata returns the stringified metadata of the record. All values are
// strings so every vector backend can store them as-is. Missing time and
// coordinates are empty strings.
func (r ObservationRecord) Metadata() map[string]string {
	return map[string]string{
		MetaFloatID:       r.FloatID,
		MetaProfileNumber: strconv.Itoa(r.ProfileNumber),
		MetaTime:          FormatRecordTime(r.Time),
		MetaLat:           formatCoord(r.Lat),
		MetaLon:           formatCoord(r.Lon),
	}
}

// FormatRecordTime renders t with TimeLayout, or "" for the zero time.
func FormatRecordTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

func formatCoord(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DocumentID derives the identity of the document built from the record at
// the given global offset of the tabular store. The offset makes ids unique
// across batches; identical store contents always yield identical ids.
func DocumentID(r ObservationRecord, offset int) string {
	return fmt.Sprintf("profile_%s_%d_%d", r.FloatID, r.ProfileNumber, offset)
}

// ParseRecordTime parses a timestamp produced with TimeLayout or RFC 3339.
// The empty string is the zero time.
func ParseRecordTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}
