package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Juld is a profile timestamp. It is either a day offset from ReferenceDate
// or an already resolved calendar time.
type Juld struct {
	days     float64
	at       time.Time
	resolved bool
}

// Days returns a Juld expressed as days since ReferenceDate.
func Days(d float64) Juld { return Juld{days: d} }

// At returns a Juld holding a resolved calendar time.
func At(t time.Time) Juld { return Juld{at: t, resolved: true} }

// maxJuldDays is the largest day offset a time.Duration can hold.
var maxJuldDays = float64(math.MaxInt64) / float64(24*time.Hour)

// Missing reports whether the value carries no timestamp.
func (j Juld) Missing() bool {
	return !j.resolved && math.IsNaN(j.days)
}

// Check rejects day offsets that cannot be turned into a time.
func (j Juld) Check() error {
	if j.resolved || math.IsNaN(j.days) {
		return nil
	}
	if math.IsInf(j.days, 0) || math.Abs(j.days) >= maxJuldDays {
		return fmt.Errorf("juld: %g days is out of range", j.days)
	}
	return nil
}

// Time normalizes the value to a UTC time. A missing or out-of-range value
// yields the zero time.
func (j Juld) Time() time.Time {
	if j.resolved {
		return j.at.UTC()
	}
	if j.Missing() || j.Check() != nil {
		return time.Time{}
	}
	return ReferenceDate.Add(time.Duration(math.Round(j.days * float64(24*time.Hour))))
}

// orMissing returns a missing Juld when the day offset equals a fill value.
func (j Juld) orMissing(fills []*float64) Juld {
	if j.resolved {
		return j
	}
	for _, f := range fills {
		if f != nil && j.days == *f {
			return Days(math.NaN())
		}
	}
	return j
}

var juldLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON accepts a number of days, a timestamp string or null.
func (j *Juld) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*j = Days(math.NaN())
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		for _, layout := range juldLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				*j = At(t)
				return nil
			}
		}
		return fmt.Errorf("juld: unsupported timestamp %q", s)
	}
	var d float64
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("juld: %w", err)
	}
	*j = Days(d)
	return nil
}
