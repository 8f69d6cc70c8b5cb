package recal

import (
	"fmt"

	"go-hep.org/x/hep/hbook"
	"golang.org/x/exp/slices"
)

// Output directories, one per processing stage.
const (
	StageNormalizedPE      = "NormalizedPE"
	StageRecalibratedPE    = "RecalibratedPE"
	StageSumPE             = "SumPE"
	StageSumPERecal        = "SumPERecal"
	StageRecalibratedFitPE = "RecalibratedFitPE"
	StageSumPEFitRecal     = "SumPEFitRecal"
)

type Binning struct {
	NBins int     `json:"nbins"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// RunHistograms are the accumulators of a single data run.
type RunHistograms struct {
	Run           int
	NormPE        []*hbook.H1D
	RecalPE       []*hbook.H1D
	RecalFitPE    []*hbook.H1D
	SumPE         *hbook.H1D
	SumPERecal    *hbook.H1D
	SumPEFitRecal *hbook.H1D
}

// Stage is a named set of histograms written to the same directory.
type Stage struct {
	Name       string
	Histograms []*hbook.H1D
}

// Stages lists the histograms of the run in output order.
func (rh *RunHistograms) Stages() []Stage {
	return []Stage{
		{Name: StageNormalizedPE, Histograms: rh.NormPE},
		{Name: StageRecalibratedPE, Histograms: rh.RecalPE},
		{Name: StageSumPE, Histograms: []*hbook.H1D{rh.SumPE}},
		{Name: StageSumPERecal, Histograms: []*hbook.H1D{rh.SumPERecal}},
		{Name: StageRecalibratedFitPE, Histograms: rh.RecalFitPE},
		{Name: StageSumPEFitRecal, Histograms: []*hbook.H1D{rh.SumPEFitRecal}},
	}
}

// Histograms holds the accumulators of all runs of a job.
type Histograms struct {
	runs  []int
	byRun map[int]*RunHistograms
}

func newH1D(name, title string, b Binning) *hbook.H1D {
	h := hbook.NewH1D(b.NBins, b.Min, b.Max)
	h.Annotation()["name"] = name
	h.Annotation()["title"] = title
	return h
}

func newChannelH1Ds(quantity string, run int, nChannels int, b Binning) []*hbook.H1D {
	hists := make([]*hbook.H1D, nChannels)
	for ch := range hists {
		hists[ch] = newH1D(
			fmt.Sprintf("h_%s_run%d_chan%d", quantity, run, ch),
			fmt.Sprintf("Run %d Channel %d %s", run, ch, quantity),
			b,
		)
	}
	return hists
}

func newSumH1D(quantity string, run int, b Binning) *hbook.H1D {
	return newH1D(fmt.Sprintf("h_%s_run%d", quantity, run), fmt.Sprintf("Run %d %s", run, quantity), b)
}

// NewHistograms books the histograms of every run.
func NewHistograms(runs []int, nChannels int, channelBins, sumBins Binning) *Histograms {
	sorted := slices.Clone(runs)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	h := &Histograms{runs: sorted, byRun: make(map[int]*RunHistograms, len(sorted))}
	for _, run := range sorted {
		h.byRun[run] = &RunHistograms{
			Run:           run,
			NormPE:        newChannelH1Ds("normPE", run, nChannels, channelBins),
			RecalPE:       newChannelH1Ds("recalPE", run, nChannels, channelBins),
			RecalFitPE:    newChannelH1Ds("recalFitPE", run, nChannels, channelBins),
			SumPE:         newSumH1D("sumPE", run, sumBins),
			SumPERecal:    newSumH1D("sumPERecal", run, sumBins),
			SumPEFitRecal: newSumH1D("sumPEFitRecal", run, sumBins),
		}
	}
	return h
}

// Run returns the histograms of a run, or nil if the run was not booked.
func (h *Histograms) Run(run int) *RunHistograms {
	return h.byRun[run]
}

func (h *Histograms) Runs() []int {
	return slices.Clone(h.runs)
}
