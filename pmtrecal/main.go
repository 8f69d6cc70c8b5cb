package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/pkg/profile"

	recal "github.com/next-exp/pmtrecal_go/pkg"
)

var logger recal.SlogLogger

func init() {
	logger = recal.NewSlogLogger(os.Stdout, os.Stderr)
}

func main() {
	os.Exit(run())
}

func run() int {
	configFilename := flag.String("config", "", "Configuration file path")
	start := flag.Int("start", 0, "First run to process")
	stop := flag.Int("stop", 0, "Last run to process")
	index := flag.Int("index", -1, "Grid job index: process the index-th block of runs after the first SPE run")
	out := flag.String("out", "", "Output directory, or output file if it ends in .root")
	grid := flag.Bool("grid", false, "Running on the grid: do not request a token")
	calFiles := flag.String("cal-files", "", "Calibration file list")
	speDir := flag.String("spe-dir", "", "Directory with SPE fit tables (*.csv)")
	cpuProfile := flag.String("cpuprofile", "", "Write a CPU profile into this directory")
	flag.Parse()

	config, err := LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return 1
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "start":
			config.RunStart = *start
		case "stop":
			config.RunStop = *stop
		case "index":
			config.Index = *index
		case "out":
			config.FileOut = *out
		case "grid":
			config.Grid = *grid
		case "cal-files":
			config.CalFileList = *calFiles
		case "spe-dir":
			config.SPEDir = *speDir
		}
	})
	recal.SetLogger(logger)

	if *cpuProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuProfile), profile.Quiet).Stop()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	begin := time.Now()
	if err := recalibrate(ctx, config); err != nil {
		logger.Error(err.Error())
		return 1
	}
	logger.Info(fmt.Sprintf("Total time: %d ms", time.Since(begin).Milliseconds()), "main")
	return 0
}

func recalibrate(ctx context.Context, config recal.Configuration) (err error) {
	if config.Verbosity > 0 {
		printConfiguration(config, logger)
	}

	if needsToken(config) {
		if err := getToken(config.TokenCommand); err != nil {
			logger.Error(fmt.Errorf("error getting token: %w", err).Error())
		}
	}

	chunkBytes, err := config.ChunkBytes()
	if err != nil {
		return err
	}
	if config.CalFileList == "" && config.SPEDir != "" {
		config.CalFileList = filepath.Join(config.SPEDir, "calFiles.list")
	}

	table, err := recal.LoadGains(ctx, config)
	if err != nil {
		return fmt.Errorf("error loading gains: %w", err)
	}
	if config.Index >= 0 {
		speRuns := table.Runs()
		if len(speRuns) == 0 {
			return fmt.Errorf("no SPE runs found to define block %d", config.Index)
		}
		config.RunStart, config.RunStop = config.BlockRange(speRuns[0])
		logger.Info(fmt.Sprintf("Running for runs: %d to %d", config.RunStart, config.RunStop), "main")
	}

	writer, err := recal.NewHistWriter(recal.OutputFilename(config.FileOut, config.RunStart, config.RunStop))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := writer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	calFiles, err := recal.ReadCalFileList(config.CalFileList, config.RunStart, config.RunStop, config.BadRunSet())
	if err != nil {
		return fmt.Errorf("error reading calibration file list: %w", err)
	}
	logger.Info(fmt.Sprintf("Number of cal files found: %d", len(calFiles)), "main")
	if len(calFiles) == 0 {
		logger.Info("No calibration files found for the specified run range.", "main")
		return nil
	}

	runs := recal.UniqueRuns(calFiles)
	logger.Info(fmt.Sprintf("There are %d calibration files to process over %d runs.", len(calFiles), len(runs)), "main")

	hists := recal.NewHistograms(runs, config.NChannels, config.ChannelBins, config.SumBins)
	processor := recal.NewProcessor(config.Settings(), table, runs, hists)
	reader := recal.NewTreeReader(calFiles, config.TreePath, config.Branches, chunkBytes, config.Verbosity)
	if err := processor.Run(ctx, reader); err != nil {
		return fmt.Errorf("error processing calibration files: %w", err)
	}

	if err := writer.WriteHistograms(hists); err != nil {
		return fmt.Errorf("error writing histograms: %w", err)
	}

	summaries := processor.Summaries()
	for _, s := range summaries {
		logger.Info(fmt.Sprintf("Run %d (SPE run %d, %v): %d/%d batches used, %d hits, %d selected, %d isolated, %d events",
			s.Run, s.SPERun, s.Status, s.Batches-s.SkippedBatches, s.Batches, s.Hits, s.Selected, s.Isolated, s.Events), "main")
	}
	if config.SummaryOut != "" {
		if err := writeSummary(config, summaries, table); err != nil {
			return fmt.Errorf("error writing summary: %w", err)
		}
	}
	return nil
}

func writeSummary(config recal.Configuration, summaries []recal.RunSummary, table *recal.GainTable) (err error) {
	w, err := recal.NewSummaryWriter(config.SummaryOut, config.Compression)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := w.WriteRunSummaries(summaries); err != nil {
		return err
	}
	return w.WriteGainTable(table)
}
