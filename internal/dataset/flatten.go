package dataset

import (
	"iter"
	"math"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
)

// Flatten yields one record per (profile, level) cell in row-major order,
// skipping cells where pressure, temperature or salinity is missing.
// Per-profile values are broadcast across the profile's levels. The dataset
// must have passed Validate.
func Flatten(ds *Dataset) iter.Seq[domain.ObservationRecord] {
	floatID := ds.FloatID()
	return func(yield func(domain.ObservationRecord) bool) {
		for i := range ds.Pres {
			ts := ds.Juld[i].Time()
			levels := max(len(ds.Pres[i]), len(ds.Temp[i]), len(ds.Psal[i]))
			for j := 0; j < levels; j++ {
				p, t, s := cell(ds.Pres[i], j), cell(ds.Temp[i], j), cell(ds.Psal[i], j)
				if math.IsNaN(p) || math.IsNaN(t) || math.IsNaN(s) {
					continue
				}
				rec := domain.ObservationRecord{
					FloatID:       floatID,
					ProfileNumber: i,
					Time:          ts,
					Lat:           ds.Latitude[i],
					Lon:           ds.Longitude[i],
					Depth:         p,
					Temperature:   t,
					Salinity:      s,
				}
				if !yield(rec) {
					return
				}
			}
		}
	}
}

func cell(row []float64, j int) float64 {
	if j >= len(row) {
		return math.NaN()
	}
	return row[j]
}
