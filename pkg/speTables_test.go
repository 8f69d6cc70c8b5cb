package recal

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

const speTable = `pmt,q,eq,fitstatus,chi2,ndf
0,1.6,0.02,0,40,20
1,1.5,0.03,0,30,30
2,1.4,0.05,3,90,10
`

func TestReadSPEFitTable(t *testing.T) {
	gains, err := ReadSPEFitTable(strings.NewReader(speTable))
	if err != nil {
		t.Fatalf("could not decode table: %+v", err)
	}
	if got, want := len(gains), 3; got != want {
		t.Fatalf("invalid number of rows: got=%d, want=%d", got, want)
	}
	if got, want := gains[1].Gain, ChargeToADC(1.5); got != want {
		t.Fatalf("invalid gain: got=%v, want=%v", got, want)
	}
	if got, want := gains[0].Chi2NDF, 2.0; got != want {
		t.Fatalf("invalid chi2/ndf: got=%v, want=%v", got, want)
	}
	if got, want := gains[2].Gain, -1.0; got != want {
		t.Fatalf("failed fit should have gain -1: got=%v", got)
	}
}

func TestReadSPEFitTableInvalid(t *testing.T) {
	_, err := ReadSPEFitTable(strings.NewReader("pmt,q\nzero,1.2\n"))
	if err == nil {
		t.Fatalf("expected an error decoding a malformed table")
	}
}

func TestLoadGainTable(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "bkg_run9390.csv")
	writeFile(t, good, speTable)

	table := LoadGainTable(map[int]string{
		9390: good,
		9400: filepath.Join(dir, "bkg_run9400.csv"),
	}, 0)
	if got, want := table.Len(), 1; got != want {
		t.Fatalf("invalid number of SPE runs: got=%d, want=%d", got, want)
	}
	if got, want := len(table.Entries(9390)), 3; got != want {
		t.Fatalf("invalid number of channels: got=%d, want=%d", got, want)
	}
}

func TestLoadGainsFromCSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bkg_run9390.csv"), speTable)
	writeFile(t, filepath.Join(dir, "bkg_run9395.csv"), speTable)

	cfg := DefaultConfiguration()
	cfg.SPEDir = dir
	cfg.BadRuns = []int{9395}
	table, err := LoadGains(context.Background(), cfg)
	if err != nil {
		t.Fatalf("could not load gains: %+v", err)
	}
	if got, want := table.Runs(), []int{9390}; len(got) != 1 || got[0] != want[0] {
		t.Fatalf("invalid SPE runs: got=%v, want=%v", got, want)
	}

	cfg.SPEDir = ""
	if _, err := LoadGains(context.Background(), cfg); err == nil {
		t.Fatalf("expected an error without SPE source")
	}
	cfg.GainSource = "carrier-pigeon"
	if _, err := LoadGains(context.Background(), cfg); err == nil {
		t.Fatalf("expected an error with an unknown gain source")
	}
}
