package recal

import (
	"context"
	"errors"
	"fmt"
)

// LoadGains builds the gain table from the configured source: SPE fit
// tables on disk or the PmtGains database table.
func LoadGains(ctx context.Context, cfg Configuration) (*GainTable, error) {
	badRuns := cfg.BadRunSet()
	switch cfg.GainSource {
	case GainsFromDB:
		db, err := ConnectToDatabase(cfg.User, cfg.Passwd, cfg.Host, cfg.DBName)
		if err != nil {
			return nil, fmt.Errorf("error connecting to database: %w", err)
		}
		defer db.Close()
		maxRun := cfg.RunStop
		if cfg.Index >= 0 {
			maxRun = 0
		}
		return LoadGainTableFromDB(ctx, db, maxRun, badRuns, cfg.Verbosity)

	case GainsFromCSV:
		var (
			files map[int]string
			err   error
		)
		switch {
		case cfg.SPEDir != "":
			files, err = FindSPEFiles(cfg.SPEDir, badRuns)
		case cfg.SPEFileList != "":
			files, err = ReadSPEFileList(cfg.SPEFileList, badRuns)
		default:
			return nil, errors.New("no SPE fit directory or file list configured")
		}
		if err != nil {
			return nil, err
		}
		if cfg.Verbosity > 0 {
			logger.Info(fmt.Sprintf("Found %d SPE runs", len(files)), "gains")
		}
		return LoadGainTable(files, cfg.Verbosity), nil

	default:
		return nil, fmt.Errorf("unknown gain source %q", cfg.GainSource)
	}
}
