package recal

import (
	"cmp"

	"golang.org/x/exp/slices"
)

// SelectPE keeps the hits whose PE count lies in [min, max]. NaN counts
// are dropped.
func SelectPE(hits []Hit, min, max float64) []Hit {
	selected := make([]Hit, 0, len(hits))
	for _, hit := range hits {
		if hit.PE >= min && hit.PE <= max {
			selected = append(selected, hit)
		}
	}
	return selected
}

// GroupByEvent partitions hits by event id and orders each partition by
// start time. Groups are returned in ascending event order; hits with equal
// start times keep their input order.
func GroupByEvent(hits []Hit) []EventGroup {
	index := make(map[int]int)
	groups := make([]EventGroup, 0)
	for _, hit := range hits {
		i, ok := index[hit.Event]
		if !ok {
			i = len(groups)
			index[hit.Event] = i
			groups = append(groups, EventGroup{Event: hit.Event})
		}
		groups[i].Hits = append(groups[i].Hits, hit)
	}

	slices.SortFunc(groups, func(a, b EventGroup) int {
		return cmp.Compare(a.Event, b.Event)
	})
	for _, group := range groups {
		slices.SortStableFunc(group.Hits, func(a, b Hit) int {
			return cmp.Compare(a.StartTime, b.StartTime)
		})
	}
	return groups
}
