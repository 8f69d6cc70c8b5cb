package recal

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Gain sources.
const (
	GainsFromCSV = "csv"
	GainsFromDB  = "db"
)

type Configuration struct {
	RunStart      int         `json:"run_start"`
	RunStop       int         `json:"run_stop"`
	Index         int         `json:"index"`
	BlockSize     int         `json:"block_size"`
	FileOut       string      `json:"file_out"`
	SummaryOut    string      `json:"summary_out"`
	CalFileList   string      `json:"cal_files"`
	SPEDir        string      `json:"spe_dir"`
	SPEFileList   string      `json:"spe_files"`
	GainSource    string      `json:"gain_source"`
	Grid          bool        `json:"grid"`
	TokenCommand  []string    `json:"token_command"`
	TreePath      string      `json:"tree_path"`
	Branches      BranchNames `json:"branches"`
	ChunkSize     string      `json:"chunk_size"`
	NChannels     int         `json:"n_channels"`
	PEMin         float64     `json:"pe_min"`
	PEMax         float64     `json:"pe_max"`
	TimeCut       float64     `json:"time_cut"`
	Threshold     float64     `json:"threshold"`
	ReferenceGain float64     `json:"reference_gain"`
	FitGain       LinearGain  `json:"fit_gain"`
	ChannelBins   Binning     `json:"channel_bins"`
	SumBins       Binning     `json:"sum_bins"`
	BadRuns       []int       `json:"bad_runs"`
	NumWorkers    int         `json:"num_workers"`
	Verbosity     int         `json:"verbosity"`
	Host          string      `json:"host"`
	User          string      `json:"user"`
	Passwd        string      `json:"pass"`
	DBName        string      `json:"dbname"`
	Compression   Compression `json:"compression"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Index:         -1,
		BlockSize:     20,
		FileOut:       ".",
		GainSource:    GainsFromCSV,
		TokenCommand:  []string{"htgettoken", "-a", "htvaultprod.fnal.gov", "-i", "icarus"},
		TreePath:      DefaultTreePath,
		Branches:      DefaultBranchNames(),
		ChunkSize:     "200 MB",
		NChannels:     360,
		PEMin:         0,
		PEMax:         10,
		TimeCut:       DefaultTimeCut,
		Threshold:     DefaultThreshold,
		ReferenceGain: DefaultReferenceGain,
		FitGain:       LinearGain{Y: 261.71273, M: -0.01136},
		ChannelBins:   Binning{NBins: 200, Min: 0, Max: 20},
		SumBins:       Binning{NBins: 5000, Min: 0, Max: 2000000},
		NumWorkers:    1,
		Verbosity:     0,
		Host:          "localhost",
		User:          "pmtreader",
		Passwd:        "readonly",
		DBName:        "PMTCalibration",
		Compression:   DefaultCompression(),
	}
}

// ChunkBytes parses the chunk size budget, e.g. "200 MB".
func (c Configuration) ChunkBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.ChunkSize)
	if err != nil {
		return 0, fmt.Errorf("invalid chunk size %q: %w", c.ChunkSize, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid chunk size %q: must be positive", c.ChunkSize)
	}
	return int64(n), nil
}

func (c Configuration) Settings() Settings {
	return Settings{
		NChannels:     c.NChannels,
		PEMin:         c.PEMin,
		PEMax:         c.PEMax,
		TimeCut:       c.TimeCut,
		Threshold:     c.Threshold,
		ReferenceGain: c.ReferenceGain,
		Fit:           c.FitGain,
		NumWorkers:    c.NumWorkers,
		Verbosity:     c.Verbosity,
	}
}

func (c Configuration) BadRunSet() RunSet {
	return NewRunSet(c.BadRuns)
}

// BlockRange returns the run range processed by grid job index: blocks of
// BlockSize runs starting at firstRun.
func (c Configuration) BlockRange(firstRun int) (int, int) {
	start := firstRun + c.Index*c.BlockSize
	return start, start + c.BlockSize - 1
}
