// Package matching ranks eligible drivers for a ride request.
package matching

import (
	"iter"
	"sort"

	"github.com/unirides/dispatch/core/model"
)

// DriverSource provides the registry snapshot the matcher ranks over.
type DriverSource interface {
	ListAvailable(near model.Location, radiusKm float64) iter.Seq[model.Driver]
}

// Matcher builds candidate lists. It is a pure function of the registry
// snapshot and the request; it never mutates state.
type Matcher struct {
	source        DriverSource
	radiusKm      float64
	maxCandidates int
}

// New creates a Matcher searching within radiusKm and returning at most
// maxCandidates drivers per request.
func New(source DriverSource, radiusKm float64, maxCandidates int) *Matcher {
	return &Matcher{source: source, radiusKm: radiusKm, maxCandidates: maxCandidates}
}

// BuildCandidateList returns the ranked driver identifiers eligible to
// receive an offer for the request: distance ascending, then rating
// descending, then identifier ascending. An empty list means no drivers are
// available and the caller must treat the request as exhausted.
func (m *Matcher) BuildCandidateList(req model.RideRequest) []string {
	type ranked struct {
		id       string
		distance float64
		rating   float64
	}
	var candidates []ranked
	for d := range m.source.ListAvailable(req.Pickup, m.radiusKm) {
		candidates = append(candidates, ranked{
			id:       d.ID,
			distance: d.Location.DistanceKm(req.Pickup),
			rating:   d.Rating,
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		if candidates[i].rating != candidates[j].rating {
			return candidates[i].rating > candidates[j].rating
		}
		return candidates[i].id < candidates[j].id
	})
	if m.maxCandidates > 0 && len(candidates) > m.maxCandidates {
		candidates = candidates[:m.maxCandidates]
	}
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}
	return ids
}
