package main

import (
	"encoding/json"
	"fmt"
	"os"

	recal "github.com/next-exp/pmtrecal_go/pkg"
)

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
	return config, err
}

func printConfiguration(config recal.Configuration, logger recal.Logger) {
	logger.Info(fmt.Sprintf("Gain source: %s", config.GainSource), "config")
	logger.Info(fmt.Sprintf("SPE dir: %s", config.SPEDir), "config")
	logger.Info(fmt.Sprintf("SPE file list: %s", config.SPEFileList), "config")
	logger.Info(fmt.Sprintf("Run stop: %d", config.RunStop), "config")
	logger.Info(fmt.Sprintf("Channels: %d", config.NChannels), "config")
	logger.Info(fmt.Sprintf("Bad runs: %d", len(config.BadRuns)), "config")
	logger.Info(fmt.Sprintf("Compression: %v", config.Compression), "config")
	if config.GainSource == recal.GainsFromDB {
		logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
		logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	}
}
