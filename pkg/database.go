package recal

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

const queryTimeout = 30 * time.Second

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type gainEntry struct {
	Run       int     `db:"Run"`
	Channel   int     `db:"Channel"`
	Q         float64 `db:"Q"`
	EQ        float64 `db:"EQ"`
	FitStatus int     `db:"FitStatus"`
	Chi2      float64 `db:"Chi2"`
	NDF       float64 `db:"NDF"`
}

// LoadGainTableFromDB reads the SPE fits of every run up to maxRun from the
// PmtGains table. A non-positive maxRun loads all runs.
func LoadGainTableFromDB(ctx context.Context, db *sqlx.DB, maxRun int, badRuns RunSet, verbosity int) (*GainTable, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := "SELECT Run, Channel, Q, EQ, FitStatus, Chi2, NDF FROM PmtGains ORDER BY Run, Channel"
	args := []interface{}{}
	if maxRun > 0 {
		query = "SELECT Run, Channel, Q, EQ, FitStatus, Chi2, NDF FROM PmtGains WHERE Run <= ? ORDER BY Run, Channel"
		args = append(args, maxRun)
	}
	if verbosity > 0 {
		logger.Info("Reading PMT gains from database", "database")
	}
	if verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s %v", query, args), "database")
	}

	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	byRun := make(map[int][]ChannelGain)
	order := make([]int, 0)
	for rows.Next() {
		result := gainEntry{}
		if err := rows.StructScan(&result); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		if badRuns.Contains(result.Run) {
			continue
		}
		if _, ok := byRun[result.Run]; !ok {
			order = append(order, result.Run)
		}
		byRun[result.Run] = append(byRun[result.Run],
			NewChannelGain(result.Channel, result.Q, result.EQ, result.FitStatus, result.Chi2, result.NDF))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating DB rows: %w", err)
	}

	table := NewGainTable()
	for _, run := range order {
		table.Add(run, byRun[run])
	}
	return table, nil
}
