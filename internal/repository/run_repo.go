package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Run is one recorded reconciliation run: which channel was reviewed,
// what the batch looked like, and whether upstream verification was
// available. Amounts are stored as exact decimal strings.
type Run struct {
	ID             string          `json:"id"`
	Environment    string          `json:"environment"`
	ChannelID      int64           `json:"channel_id"`
	RecordCount    int             `json:"record_count"`
	MismatchCount  int             `json:"mismatch_count"`
	MatchRate      float64         `json:"match_rate"`
	TotalProfit    decimal.Decimal `json:"total_profit"`
	TotalPayAmount decimal.Decimal `json:"total_pay_amount"`
	APIVerified    bool            `json:"api_verified"`
	CreatedAt      time.Time       `json:"created_at"`
}

type RunRepo struct {
	db *sql.DB
}

func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) Insert(run *Run) error {
	_, err := r.db.Exec(
		`INSERT INTO reconciliation_runs
		(id, environment, channel_id, record_count, mismatch_count,
		 match_rate, total_profit, total_pay_amount, api_verified, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.Environment, run.ChannelID, run.RecordCount, run.MismatchCount,
		run.MatchRate, run.TotalProfit.String(), run.TotalPayAmount.String(),
		boolToInt(run.APIVerified), run.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (r *RunRepo) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(
		`SELECT id, environment, channel_id, record_count, mismatch_count,
		        match_rate, total_profit, total_pay_amount, api_verified, created_at
		 FROM reconciliation_runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

// Latest returns the most recent run for a channel, or nil when the
// channel has never been reviewed.
func (r *RunRepo) Latest(channelID int64) (*Run, error) {
	rows, err := r.db.Query(
		`SELECT id, environment, channel_id, record_count, mismatch_count,
		        match_rate, total_profit, total_pay_amount, api_verified, created_at
		 FROM reconciliation_runs
		 WHERE channel_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`, channelID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

func (r *RunRepo) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM reconciliation_runs").Scan(&n)
	return n, err
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var run Run
		var profit, pay, createdAt string
		var verified int
		if err := rows.Scan(
			&run.ID, &run.Environment, &run.ChannelID, &run.RecordCount,
			&run.MismatchCount, &run.MatchRate, &profit, &pay, &verified, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		var err error
		if run.TotalProfit, err = decimal.NewFromString(profit); err != nil {
			return nil, fmt.Errorf("run %s: bad total_profit %q: %w", run.ID, profit, err)
		}
		if run.TotalPayAmount, err = decimal.NewFromString(pay); err != nil {
			return nil, fmt.Errorf("run %s: bad total_pay_amount %q: %w", run.ID, pay, err)
		}
		if run.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("run %s: bad created_at %q: %w", run.ID, createdAt, err)
		}
		run.APIVerified = verified != 0

		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
