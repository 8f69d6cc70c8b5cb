package recal

// Hit is a single PMT pulse.
type Hit struct {
	Run       int
	Event     int
	Channel   int
	PE        float64
	StartTime float64
	Width     float64
}

// Batch is a chunk of hits read from a single source file.
// ExpectedRun is the run the file name claims to hold.
type Batch struct {
	Source      string
	ExpectedRun int
	Chunk       int
	Hits        []Hit
}

// EventGroup holds the hits of one event ordered by start time.
type EventGroup struct {
	Event int
	Hits  []Hit
}

// RunSet is a set of run numbers.
type RunSet map[int]struct{}

func NewRunSet(runs []int) RunSet {
	set := make(RunSet, len(runs))
	for _, run := range runs {
		set[run] = struct{}{}
	}
	return set
}

func (s RunSet) Contains(run int) bool {
	_, ok := s[run]
	return ok
}
