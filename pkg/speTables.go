package recal

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"golang.org/x/exp/slices"
)

// speFitRow is one line of an SPE fit table.
type speFitRow struct {
	PMT       int     `csv:"pmt"`
	Q         float64 `csv:"q"`
	EQ        float64 `csv:"eq"`
	FitStatus int     `csv:"fitstatus"`
	Chi2      float64 `csv:"chi2"`
	NDF       float64 `csv:"ndf"`
}

// ReadSPEFitTable decodes an SPE fit table in CSV format.
func ReadSPEFitTable(r io.Reader) ([]ChannelGain, error) {
	var rows []speFitRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("error decoding SPE fit table: %w", err)
	}
	gains := make([]ChannelGain, 0, len(rows))
	for _, row := range rows {
		gains = append(gains, NewChannelGain(row.PMT, row.Q, row.EQ, row.FitStatus, row.Chi2, row.NDF))
	}
	return gains, nil
}

func readSPEFitFile(path string) ([]ChannelGain, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ErrOpenFile{Filename: path, Err: err}
	}
	defer file.Close()
	gains, err := ReadSPEFitTable(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return gains, nil
}

// LoadGainTable reads the SPE fit tables of files, keyed by SPE run.
// Files that cannot be read are reported and left out of the table.
func LoadGainTable(files map[int]string, verbosity int) *GainTable {
	runs := make([]int, 0, len(files))
	for run := range files {
		runs = append(runs, run)
	}
	slices.Sort(runs)

	table := NewGainTable()
	for _, run := range runs {
		gains, err := readSPEFitFile(files[run])
		if err != nil {
			logger.Error(err.Error())
			continue
		}
		if verbosity > 1 {
			logger.Info(fmt.Sprintf("SPE run %d: %d channels from %s", run, len(gains), files[run]), "gains")
		}
		table.Add(run, gains)
	}
	return table
}
