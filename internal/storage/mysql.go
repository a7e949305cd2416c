package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"gtp/internal/domain"
)

const queryTimeout = 30 * time.Second

const createRunsTable = `CREATE TABLE IF NOT EXISTS gtp_runs (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	run_id CHAR(36) NOT NULL UNIQUE,
	command TEXT NOT NULL,
	total INT NOT NULL,
	passed INT NOT NULL,
	failed INT NOT NULL,
	skipped INT NOT NULL,
	errored INT NOT NULL,
	exit_code INT NOT NULL,
	cancelled BOOLEAN NOT NULL,
	signature_detected BOOLEAN NOT NULL,
	duration_seconds DOUBLE NOT NULL,
	created_at VARCHAR(64) NOT NULL
)`

const createOutcomesTable = `CREATE TABLE IF NOT EXISTS gtp_outcomes (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	run_id CHAR(36) NOT NULL,
	test_id TEXT NOT NULL,
	label TEXT NOT NULL,
	suite TEXT NOT NULL,
	outcome VARCHAR(16) NOT NULL,
	message MEDIUMTEXT NOT NULL,
	duration_ms DOUBLE NOT NULL,
	dynamic BOOLEAN NOT NULL,
	file TEXT NOT NULL,
	line INT NOT NULL,
	INDEX idx_gtp_outcomes_run (run_id)
)`

const insertRun = `INSERT INTO gtp_runs
	(run_id, command, total, passed, failed, skipped, errored, exit_code, cancelled, signature_detected, duration_seconds, created_at)
	VALUES (:run_id, :command, :total, :passed, :failed, :skipped, :errored, :exit_code, :cancelled, :signature_detected, :duration_seconds, :created_at)`

const insertOutcome = `INSERT INTO gtp_outcomes
	(run_id, test_id, label, suite, outcome, message, duration_ms, dynamic, file, line)
	VALUES (:run_id, :test_id, :label, :suite, :outcome, :message, :duration_ms, :dynamic, :file, :line)`

const selectLatestRun = `SELECT run_id, command, total, passed, failed, skipped, errored, exit_code,
	cancelled, signature_detected, duration_seconds, created_at
	FROM gtp_runs ORDER BY id DESC LIMIT 1`

const selectOutcomes = `SELECT run_id, test_id, label, suite, outcome, message, duration_ms, dynamic, file, line
	FROM gtp_outcomes WHERE run_id = ? ORDER BY id`

type runRow struct {
	RunID             string  `db:"run_id"`
	Command           string  `db:"command"`
	Total             int     `db:"total"`
	Passed            int     `db:"passed"`
	Failed            int     `db:"failed"`
	Skipped           int     `db:"skipped"`
	Errored           int     `db:"errored"`
	ExitCode          int     `db:"exit_code"`
	Cancelled         bool    `db:"cancelled"`
	SignatureDetected bool    `db:"signature_detected"`
	DurationSeconds   float64 `db:"duration_seconds"`
	CreatedAt         string  `db:"created_at"`
}

type outcomeRow struct {
	RunID      string  `db:"run_id"`
	TestID     string  `db:"test_id"`
	Label      string  `db:"label"`
	Suite      string  `db:"suite"`
	Outcome    string  `db:"outcome"`
	Message    string  `db:"message"`
	DurationMs float64 `db:"duration_ms"`
	Dynamic    bool    `db:"dynamic"`
	File       string  `db:"file"`
	Line       int     `db:"line"`
}

func newRunRow(m domain.RunMeta) runRow {
	return runRow{
		RunID: m.RunID, Command: m.Command,
		Total: m.Total, Passed: m.Passed, Failed: m.Failed, Skipped: m.Skipped, Errored: m.Errored,
		ExitCode: m.ExitCode, Cancelled: m.Cancelled, SignatureDetected: m.SignatureDetected,
		DurationSeconds: m.DurationSeconds, CreatedAt: m.Timestamp,
	}
}

func (r runRow) meta() domain.RunMeta {
	return domain.RunMeta{
		RunID: r.RunID, Command: r.Command,
		Total: r.Total, Passed: r.Passed, Failed: r.Failed, Skipped: r.Skipped, Errored: r.Errored,
		ExitCode: r.ExitCode, Cancelled: r.Cancelled, SignatureDetected: r.SignatureDetected,
		Duration:        time.Duration(r.DurationSeconds * float64(time.Second)).Round(time.Millisecond).String(),
		DurationSeconds: r.DurationSeconds,
		Timestamp:       r.CreatedAt,
	}
}

func newOutcomeRow(runID string, d domain.TestOutcome) outcomeRow {
	return outcomeRow{
		RunID: runID, TestID: d.ID, Label: d.Label, Suite: d.Suite,
		Outcome: string(d.Outcome), Message: d.Message, DurationMs: d.DurationMs,
		Dynamic: d.Dynamic, File: d.File, Line: d.Line,
	}
}

func (r outcomeRow) outcome() domain.TestOutcome {
	return domain.TestOutcome{
		ID: r.TestID, Label: r.Label, Suite: r.Suite,
		Outcome: domain.Outcome(r.Outcome), Message: r.Message, DurationMs: r.DurationMs,
		Dynamic: r.Dynamic, File: r.File, Line: r.Line,
	}
}

// MySQLStorage stores every run in a MySQL database
type MySQLStorage struct {
	db     *sqlx.DB
	schema bool
}

// NewMySQLStorage validates dsn and prepares a connection pool. No
// connection is made until the first Save or Load.
func NewMySQLStorage(dsn string) (*MySQLStorage, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse results dsn: %w", err)
	}
	if cfg.DBName == "" {
		return nil, errors.New("parse results dsn: no database name")
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("create mysql connector: %w", err)
	}
	db := sqlx.NewDb(sql.OpenDB(connector), "mysql")
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &MySQLStorage{db: db}, nil
}

// Close releases the connection pool
func (s *MySQLStorage) Close() error {
	return s.db.Close()
}

// Save inserts the run and its outcomes in one transaction
func (s *MySQLStorage) Save(record *domain.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	runID := record.Meta.RunID
	if _, err := tx.NamedExecContext(ctx, insertRun, newRunRow(record.Meta)); err != nil {
		return fmt.Errorf("insert run %s: %w", runID, err)
	}

	stmt, err := tx.PrepareNamedContext(ctx, insertOutcome)
	if err != nil {
		return fmt.Errorf("prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range record.Details {
		if _, err := stmt.ExecContext(ctx, newOutcomeRow(runID, d)); err != nil {
			return fmt.Errorf("insert outcome %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", runID, err)
	}
	return nil
}

// Load returns the most recently saved run
func (s *MySQLStorage) Load() (*domain.RunRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	var run runRow
	err := s.db.GetContext(ctx, &run, selectLatestRun)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoResults
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}

	var rows []outcomeRow
	if err := s.db.SelectContext(ctx, &rows, selectOutcomes, run.RunID); err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}

	record := &domain.RunRecord{Meta: run.meta()}
	for _, r := range rows {
		record.Details = append(record.Details, r.outcome())
	}
	return record, nil
}

func (s *MySQLStorage) ensureSchema(ctx context.Context) error {
	if s.schema {
		return nil
	}
	for _, stmt := range []string{createRunsTable, createOutcomesTable} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create results tables: %w", err)
		}
	}
	s.schema = true
	return nil
}
