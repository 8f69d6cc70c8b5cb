package recal

import (
	"fmt"
	"path/filepath"
	"strings"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/riofs"
)

// OutputFilename returns out itself when it names a ROOT file, and the
// default histogram file name for the run range inside out otherwise.
func OutputFilename(out string, start, stop int) string {
	if strings.HasSuffix(out, ".root") {
		return out
	}
	return filepath.Join(out, fmt.Sprintf("pmtPEHistograms_%d_%d.root", start, stop))
}

// HistWriter stores histograms in a ROOT file, one directory per run and
// one sub-directory per stage.
type HistWriter struct {
	File     *riofs.File
	Filename string
}

func NewHistWriter(filename string) (*HistWriter, error) {
	f, err := groot.Create(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	logger.Info(fmt.Sprintf("Creating file: %s", filename), "histWriter")
	return &HistWriter{File: f, Filename: filename}, nil
}

func (w *HistWriter) WriteHistograms(hists *Histograms) error {
	for _, run := range hists.Runs() {
		runName := fmt.Sprintf("run%d", run)
		runDir, err := riofs.Dir(w.File).Mkdir(runName)
		if err != nil {
			return &ErrCreateGroup{GroupName: runName, Err: err}
		}
		for _, stage := range hists.Run(run).Stages() {
			stageDir, err := runDir.Mkdir(stage.Name)
			if err != nil {
				return &ErrCreateGroup{GroupName: runName + "/" + stage.Name, Err: err}
			}
			for _, h := range stage.Histograms {
				name, _ := h.Annotation()["name"].(string)
				if err := stageDir.Put(name, rhist.NewH1DFrom(h)); err != nil {
					return fmt.Errorf("error writing %s/%s/%s: %w", runName, stage.Name, name, err)
				}
			}
		}
	}
	return nil
}

func (w *HistWriter) Close() error {
	logger.Info(fmt.Sprintf("Closing file %s", w.Filename), "histWriter")
	if err := w.File.Close(); err != nil {
		return fmt.Errorf("error closing file %q: %w", w.Filename, err)
	}
	return nil
}
