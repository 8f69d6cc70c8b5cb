package recal

import (
	"math"
	"reflect"
	"testing"
)

func TestSelectPE(t *testing.T) {
	hits := []Hit{
		{Event: 1, PE: -0.5},
		{Event: 1, PE: 0},
		{Event: 1, PE: 3.2},
		{Event: 1, PE: 10},
		{Event: 1, PE: 10.01},
		{Event: 1, PE: math.NaN()},
		{Event: 1, PE: math.Inf(1)},
	}
	got := SelectPE(hits, 0, 10)
	want := []Hit{hits[1], hits[2], hits[3]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid selection:\ngot= %+v\nwant=%+v", got, want)
	}
}

func TestGroupByEvent(t *testing.T) {
	hits := []Hit{
		{Event: 7, Channel: 1, StartTime: 3.0},
		{Event: 2, Channel: 2, StartTime: 1.0},
		{Event: 7, Channel: 3, StartTime: 1.5},
		{Event: 2, Channel: 4, StartTime: 0.5},
		{Event: 7, Channel: 5, StartTime: 1.5},
	}
	groups := GroupByEvent(hits)
	if got, want := len(groups), 2; got != want {
		t.Fatalf("invalid number of groups: got=%d, want=%d", got, want)
	}
	if got, want := groups[0].Event, 2; got != want {
		t.Fatalf("invalid first event: got=%d, want=%d", got, want)
	}

	channels := func(g EventGroup) []int {
		chs := make([]int, len(g.Hits))
		for i, h := range g.Hits {
			chs[i] = h.Channel
		}
		return chs
	}
	if got, want := channels(groups[0]), []int{4, 2}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid event 2 order: got=%v, want=%v", got, want)
	}
	// equal start times keep their input order
	if got, want := channels(groups[1]), []int{3, 5, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid event 7 order: got=%v, want=%v", got, want)
	}
}

func TestGroupByEventInputOrder(t *testing.T) {
	a := []Hit{
		{Event: 1, Channel: 1, StartTime: 0.1},
		{Event: 1, Channel: 2, StartTime: 0.4},
		{Event: 3, Channel: 3, StartTime: 0.2},
		{Event: 2, Channel: 4, StartTime: 0.9},
	}
	b := []Hit{a[3], a[2], a[0], a[1]}
	if got, want := GroupByEvent(b), GroupByEvent(a); !reflect.DeepEqual(got, want) {
		t.Fatalf("grouping depends on event order:\ngot= %+v\nwant=%+v", got, want)
	}
}

func TestGroupByEventEmpty(t *testing.T) {
	if got := GroupByEvent(nil); len(got) != 0 {
		t.Fatalf("expected no groups, got=%+v", got)
	}
}
