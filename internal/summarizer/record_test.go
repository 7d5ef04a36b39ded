package summarizer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
)

var sample = domain.ObservationRecord{
	FloatID:       "5906142",
	ProfileNumber: 4,
	Time:          time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC),
	Lat:           -10.456,
	Lon:           70.1,
	Depth:         1000.5,
	Temperature:   4.123,
	Salinity:      34.7,
}

func TestRenderRecord(t *testing.T) {
	assert.Equal(t,
		"Argo float 5906142 profile taken on 2024-01-01 at coordinates (-10.46, 70.10). "+
			"Data includes temperature of 4.12°C, salinity of 34.70 PSU, and pressure at 1000.50 dbar.",
		RenderRecord(sample))
}

func TestRenderRecord_Pure(t *testing.T) {
	copyOf := sample
	assert.Equal(t, RenderRecord(sample), RenderRecord(copyOf))
}

func TestRenderRecord_DateIsUTC(t *testing.T) {
	r := sample
	r.Time = time.Date(2024, 1, 2, 1, 0, 0, 0, time.FixedZone("UTC+2", 2*3600))
	assert.Contains(t, RenderRecord(r), "taken on 2024-01-01")
}

func TestRenderOverview(t *testing.T) {
	assert.Equal(t, "No observations loaded.", RenderOverview(domain.StoreOverview{}))

	got := RenderOverview(domain.StoreOverview{
		Rows: 5, Floats: 1, Profiles: 2,
		First: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Last:  time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
		MinDepth: 5, MaxDepth: 20,
	})
	assert.Equal(t, "5 observations from 1 float(s) across 2 profiles, 2024-01-01 to 2024-01-11, pressure 5.00 to 20.00 dbar.", got)
}

func TestRenderRecord_MissingDateAndPosition(t *testing.T) {
	r := sample
	r.Time = time.Time{}
	got := RenderRecord(r)
	assert.Contains(t, got, "taken on an unknown date at coordinates (-10.46, 70.10)")
	assert.NotContains(t, got, "0001")

	r = sample
	r.Lat = math.NaN()
	got = RenderRecord(r)
	assert.Contains(t, got, "taken on 2024-01-01 at an unknown position.")
	assert.NotContains(t, got, "NaN")
}

func TestRenderOverview_UnknownDates(t *testing.T) {
	got := RenderOverview(domain.StoreOverview{Rows: 2, Floats: 1, Profiles: 2, MinDepth: 5, MaxDepth: 5})
	assert.Equal(t, "2 observations from 1 float(s) across 2 profiles, dates unknown, pressure 5.00 to 5.00 dbar.", got)
}
