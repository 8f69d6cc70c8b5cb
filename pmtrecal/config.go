package main

import (
	"encoding/json"
	"fmt"
	"os"

	recal "github.com/next-exp/pmtrecal_go/pkg"
)

// LoadConfiguration reads a JSON configuration on top of the defaults.
// An empty filename returns the defaults.
func LoadConfiguration(filename string) (recal.Configuration, error) {
	config := recal.DefaultConfiguration()
	if filename == "" {
		return config, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config recal.Configuration, logger recal.Logger) {
	logger.Info(fmt.Sprintf("Run start: %d", config.RunStart), "config")
	logger.Info(fmt.Sprintf("Run stop: %d", config.RunStop), "config")
	logger.Info(fmt.Sprintf("Index: %d", config.Index), "config")
	logger.Info(fmt.Sprintf("Block size: %d", config.BlockSize), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Summary out: %s", config.SummaryOut), "config")
	logger.Info(fmt.Sprintf("Calibration file list: %s", config.CalFileList), "config")
	logger.Info(fmt.Sprintf("SPE dir: %s", config.SPEDir), "config")
	logger.Info(fmt.Sprintf("SPE file list: %s", config.SPEFileList), "config")
	logger.Info(fmt.Sprintf("Gain source: %s", config.GainSource), "config")
	logger.Info(fmt.Sprintf("Grid: %t", config.Grid), "config")
	logger.Info(fmt.Sprintf("Tree: %s", config.TreePath), "config")
	logger.Info(fmt.Sprintf("Branches: %+v", config.Branches), "config")
	logger.Info(fmt.Sprintf("Chunk size: %s", config.ChunkSize), "config")
	logger.Info(fmt.Sprintf("Channels: %d", config.NChannels), "config")
	logger.Info(fmt.Sprintf("PE range: [%g, %g]", config.PEMin, config.PEMax), "config")
	logger.Info(fmt.Sprintf("Time cut: %g", config.TimeCut), "config")
	logger.Info(fmt.Sprintf("Reference gain: %g", config.ReferenceGain), "config")
	logger.Info(fmt.Sprintf("Fit gain: %g + %g*run", config.FitGain.Y, config.FitGain.M), "config")
	logger.Info(fmt.Sprintf("Bad runs: %d", len(config.BadRuns)), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Compression: %v", config.Compression), "config")
	if config.GainSource == recal.GainsFromDB {
		logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
		logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	}
}
