package recal

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// SummaryWriter stores the per-run processing summary and the SPE gain
// tables in an HDF5 file.
type SummaryWriter struct {
	File         *hdf5.File
	Filename     string
	RunsGroup    *hdf5.Group
	GainsGroup   *hdf5.Group
	SummaryTable *hdf5.Dataset
	GainTables   []*hdf5.Dataset
	Compression  Compression
	nSummaries   int
}

func NewSummaryWriter(filename string, compression Compression) (*SummaryWriter, error) {
	w := &SummaryWriter{Filename: filename, Compression: compression}
	logger.Info(fmt.Sprintf("Creating file: %s", filename), "summaryWriter")

	var err error
	if w.File, err = openFile(filename); err != nil {
		return nil, err
	}
	if w.RunsGroup, err = createGroup(w.File, "Runs"); err != nil {
		w.Close()
		return nil, err
	}
	if w.GainsGroup, err = createGroup(w.File, "Gains"); err != nil {
		w.Close()
		return nil, err
	}
	if w.SummaryTable, err = createTable(w.RunsGroup, "summary", RunSummaryHDF5{}, compression); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func (w *SummaryWriter) WriteRunSummaries(summaries []RunSummary) error {
	rows := make([]RunSummaryHDF5, len(summaries))
	for i, s := range summaries {
		rows[i] = RunSummaryHDF5{
			Run:            int32(s.Run),
			SPERun:         int32(s.SPERun),
			Status:         int32(s.Status),
			Batches:        int32(s.Batches),
			SkippedBatches: int32(s.SkippedBatches),
			Hits:           s.Hits,
			Selected:       s.Selected,
			Isolated:       s.Isolated,
			Events:         s.Events,
		}
	}
	if err := writeArrayToTable(w.SummaryTable, rows, w.nSummaries); err != nil {
		return fmt.Errorf("error writing run summary: %w", err)
	}
	w.nSummaries += len(rows)
	return nil
}

// WriteGainTable writes one table per SPE run, named after the run.
func (w *SummaryWriter) WriteGainTable(table *GainTable) error {
	for _, run := range table.Runs() {
		entries := table.Entries(run)
		rows := make([]ChannelGainHDF5, len(entries))
		for i, e := range entries {
			rows[i] = ChannelGainHDF5{
				Channel:   int32(e.Channel),
				Gain:      e.Gain,
				GainErr:   e.GainErr,
				FitStatus: int32(e.FitStatus),
				Chi2NDF:   e.Chi2NDF,
			}
		}
		name := fmt.Sprintf("run%d", run)
		dset, err := createTable(w.GainsGroup, name, ChannelGainHDF5{}, w.Compression)
		if err != nil {
			return err
		}
		w.GainTables = append(w.GainTables, dset)
		if err := writeArrayToTable(dset, rows, 0); err != nil {
			return fmt.Errorf("error writing gains of SPE run %d: %w", run, err)
		}
	}
	return nil
}

func (w *SummaryWriter) Close() error {
	logger.Info(fmt.Sprintf("Closing file %s", w.Filename), "summaryWriter")
	var errs []error

	for _, dset := range w.GainTables {
		if err := dset.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing gain table: %w", err))
		}
	}
	if w.SummaryTable != nil {
		if err := w.SummaryTable.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing summary table: %w", err))
		}
	}
	if w.GainsGroup != nil {
		if err := w.GainsGroup.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing gains group: %w", err))
		}
	}
	if w.RunsGroup != nil {
		if err := w.RunsGroup.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing runs group: %w", err))
		}
	}
	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
