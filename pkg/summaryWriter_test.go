package recal

import (
	"path/filepath"
	"testing"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

func TestSummaryWriter(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "summary.h5")

	table := NewGainTable()
	table.Add(9390, uniformGains(3, 250))
	table.Add(9400, uniformGains(2, 260))

	w, err := NewSummaryWriter(fname, DefaultCompression())
	if err != nil {
		t.Fatalf("could not create summary writer: %+v", err)
	}
	summaries := []RunSummary{
		{Run: 9391, SPERun: 9390, Status: RunCalibrated, Batches: 3, Hits: 100, Selected: 80, Isolated: 60, Events: 10},
		{Run: 9380, SPERun: -1, Status: RunUncalibrated, Batches: 1, Hits: 10, Selected: 8, Isolated: 6, Events: 2},
	}
	if err := w.WriteRunSummaries(summaries); err != nil {
		t.Fatalf("could not write summaries: %+v", err)
	}
	if err := w.WriteRunSummaries(summaries[:1]); err != nil {
		t.Fatalf("could not append summaries: %+v", err)
	}
	if err := w.WriteGainTable(table); err != nil {
		t.Fatalf("could not write gains: %+v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("could not close summary writer: %+v", err)
	}

	f, err := hdf5.OpenFile(fname, hdf5.F_ACC_RDONLY)
	if err != nil {
		t.Fatalf("could not open summary: %+v", err)
	}
	defer f.Close()

	for _, tc := range []struct {
		path string
		rows uint
	}{
		{path: "Runs/summary", rows: 3},
		{path: "Gains/run9390", rows: 3},
		{path: "Gains/run9400", rows: 2},
	} {
		dset, err := f.OpenDataset(tc.path)
		if err != nil {
			t.Fatalf("could not open %q: %+v", tc.path, err)
		}
		space := dset.Space()
		dims, _, err := space.SimpleExtentDims()
		if err != nil {
			t.Fatalf("could not read %q dimensions: %+v", tc.path, err)
		}
		if got := dims[0]; got != tc.rows {
			t.Fatalf("%q: invalid number of rows: got=%d, want=%d", tc.path, got, tc.rows)
		}
		space.Close()
		dset.Close()
	}
}
