// Package summarizer renders observation records as natural-language text
// for embedding. Rendering is deterministic: equal records give equal text.
package summarizer

import (
	"fmt"
	"math"
	"time"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
)

// RenderRecord describes one observation.
func RenderRecord(r domain.ObservationRecord) string {
	return fmt.Sprintf(
		"Argo float %s profile taken on %s %s. "+
			"Data includes temperature of %.2f°C, salinity of %.2f PSU, and pressure at %.2f dbar.",
		r.FloatID, date(r.Time), position(r.Lat, r.Lon),
		r.Temperature, r.Salinity, r.Depth,
	)
}

// RenderOverview describes the whole tabular store in one sentence.
func RenderOverview(ov domain.StoreOverview) string {
	if ov.Rows == 0 {
		return "No observations loaded."
	}
	span := "dates unknown"
	if !ov.First.IsZero() {
		span = fmt.Sprintf("%s to %s", date(ov.First), date(ov.Last))
	}
	return fmt.Sprintf(
		"%d observations from %d float(s) across %d profiles, %s, pressure %.2f to %.2f dbar.",
		ov.Rows, ov.Floats, ov.Profiles, span, ov.MinDepth, ov.MaxDepth,
	)
}

func date(t time.Time) string {
	if t.IsZero() {
		return "an unknown date"
	}
	return t.UTC().Format("2006-01-02")
}

func position(lat, lon float64) string {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return "at an unknown position"
	}
	return fmt.Sprintf("at coordinates (%.2f, %.2f)", lat, lon)
}
