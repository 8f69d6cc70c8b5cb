package recal

import "math"

const DefaultTimeCut = 0.2

// Values used in place of a missing neighbour at either end of a group.
const (
	sentinelChannel = -999
	sentinelWidth   = 0.0
)

var sentinelTime = math.Inf(1)

// IsolationFilter rejects hits that sit too close in time to a hit on the
// same channel, follow a wide pulse on the same channel, or are wide
// themselves. Such hits are afterpulses or reflections rather than
// genuine single photoelectrons.
type IsolationFilter struct {
	TimeCut float64
}

func (f IsolationFilter) neighbour(hits []Hit, i int) (channel int, startTime, width float64) {
	if i < 0 || i >= len(hits) {
		return sentinelChannel, sentinelTime, sentinelWidth
	}
	return hits[i].Channel, hits[i].StartTime, hits[i].Width
}

// Mask returns, for each hit of a time-ordered group, whether the hit is isolated.
func (f IsolationFilter) Mask(hits []Hit) []bool {
	mask := make([]bool, len(hits))
	for i, hit := range hits {
		prevCh, prevTime, prevWidth := f.neighbour(hits, i-1)
		nextCh, nextTime, _ := f.neighbour(hits, i+1)

		adjacent := hit.Channel == prevCh || hit.Channel == nextCh
		closeInTime := math.Abs(hit.StartTime-prevTime) < f.TimeCut ||
			math.Abs(nextTime-hit.StartTime) < f.TimeCut

		timeMask := adjacent && closeInTime
		prevWidthMask := adjacent && prevWidth > f.TimeCut
		widthMask := hit.Width > f.TimeCut

		mask[i] = !(timeMask || prevWidthMask || widthMask)
	}
	return mask
}

// Apply returns a copy of the group holding only its isolated hits.
func (f IsolationFilter) Apply(group EventGroup) EventGroup {
	mask := f.Mask(group.Hits)
	kept := EventGroup{Event: group.Event, Hits: make([]Hit, 0, len(group.Hits))}
	for i, hit := range group.Hits {
		if mask[i] {
			kept.Hits = append(kept.Hits, hit)
		}
	}
	return kept
}
