package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	recal "github.com/next-exp/pmtrecal_go/pkg"
)

var logger recal.SlogLogger

func init() {
	logger = recal.NewSlogLogger(os.Stdout, os.Stderr)
}

// gainStats summarises the fit quality of one SPE run.
type gainStats struct {
	Channels int
	Failed   int
	Mean     float64
	Min      float64
	Max      float64
}

func computeStats(entries []recal.ChannelGain) gainStats {
	stats := gainStats{Channels: len(entries)}
	valid := 0
	for _, g := range entries {
		if !g.Valid() {
			stats.Failed++
			continue
		}
		if valid == 0 || g.Gain < stats.Min {
			stats.Min = g.Gain
		}
		if valid == 0 || g.Gain > stats.Max {
			stats.Max = g.Gain
		}
		stats.Mean += g.Gain
		valid++
	}
	if valid > 0 {
		stats.Mean /= float64(valid)
	}
	return stats
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	out := flag.String("out", "speGains.h5", "Output HDF5 file")
	speDir := flag.String("spe-dir", "", "Directory with SPE fit tables (*.csv)")
	source := flag.String("source", "", "Gain source: csv or db")
	flag.Parse()

	config, err := LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if *speDir != "" {
		config.SPEDir = *speDir
	}
	if *source != "" {
		config.GainSource = *source
	}
	recal.SetLogger(logger)
	if config.Verbosity > 0 {
		printConfiguration(config, logger)
	}

	start := time.Now()
	table, err := recal.LoadGains(context.Background(), config)
	if err != nil {
		logger.Error(fmt.Errorf("Error loading gains: %w", err).Error())
		os.Exit(1)
	}

	for _, run := range table.Runs() {
		stats := computeStats(table.Entries(run))
		message := fmt.Sprintf("SPE run %d: %d channels, %d failed fits, gain mean %.2f [%.2f, %.2f]",
			run, stats.Channels, stats.Failed, stats.Mean, stats.Min, stats.Max)
		logger.Info(message, "speGains")
		if _, err := table.ChannelGains(run, config.NChannels); err != nil {
			logger.Error(err.Error())
		}
	}

	writer, err := recal.NewSummaryWriter(*out, config.Compression)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	if err := writer.WriteGainTable(table); err != nil {
		logger.Error(err.Error())
		writer.Close()
		os.Exit(1)
	}
	if err := writer.Close(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("Wrote %d SPE runs to %s in %d ms", table.Len(), *out, time.Since(start).Milliseconds()), "speGains")
}
