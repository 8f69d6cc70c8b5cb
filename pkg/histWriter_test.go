package recal

import (
	"path/filepath"
	"testing"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/riofs"
)

func TestOutputFilename(t *testing.T) {
	for _, tc := range []struct {
		out  string
		want string
	}{
		{out: "/data/out", want: "/data/out/pmtPEHistograms_9300_9319.root"},
		{out: ".", want: "pmtPEHistograms_9300_9319.root"},
		{out: "/data/custom.root", want: "/data/custom.root"},
	} {
		if got := OutputFilename(tc.out, 9300, 9319); got != tc.want {
			t.Fatalf("%q: got=%q, want=%q", tc.out, got, tc.want)
		}
	}
}

func TestWriteHistograms(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "hists.root")

	hists := NewHistograms([]int{9400, 9390}, 2, Binning{NBins: 20, Min: 0, Max: 20}, Binning{NBins: 100, Min: 0, Max: 100})
	rh := hists.Run(9400)
	rh.NormPE[1].Fill(1.5, 1)
	rh.NormPE[1].Fill(2.5, 1)
	rh.SumPE.Fill(4, 1)

	w, err := NewHistWriter(fname)
	if err != nil {
		t.Fatalf("could not create writer: %+v", err)
	}
	if err := w.WriteHistograms(hists); err != nil {
		t.Fatalf("could not write histograms: %+v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("could not close writer: %+v", err)
	}

	f, err := groot.Open(fname)
	if err != nil {
		t.Fatalf("could not open output: %+v", err)
	}
	defer f.Close()

	for _, tc := range []struct {
		path    string
		entries float64
	}{
		{path: "run9400/NormalizedPE/h_normPE_run9400_chan1", entries: 2},
		{path: "run9400/NormalizedPE/h_normPE_run9400_chan0", entries: 0},
		{path: "run9400/SumPE/h_sumPE_run9400", entries: 1},
		{path: "run9390/RecalibratedPE/h_recalPE_run9390_chan1", entries: 0},
		{path: "run9390/RecalibratedFitPE/h_recalFitPE_run9390_chan0", entries: 0},
		{path: "run9390/SumPERecal/h_sumPERecal_run9390", entries: 0},
		{path: "run9390/SumPEFitRecal/h_sumPEFitRecal_run9390", entries: 0},
	} {
		obj, err := riofs.Dir(f).Get(tc.path)
		if err != nil {
			t.Fatalf("could not retrieve %q: %+v", tc.path, err)
		}
		if got, want := obj.Class(), "TH1D"; got != want {
			t.Fatalf("%q: invalid class: got=%q, want=%q", tc.path, got, want)
		}
		h, ok := obj.(rhist.H1)
		if !ok {
			t.Fatalf("%q: invalid type %T", tc.path, obj)
		}
		if got := h.Entries(); got != tc.entries {
			t.Fatalf("%q: invalid entries: got=%v, want=%v", tc.path, got, tc.entries)
		}
	}
}
