// Package store persists finished attempts ("marks") in SQLite or
// PostgreSQL behind database/sql. The exam engine is its only writer
// inside the daemon; the reporter and admin API are read-only users.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

// Driver selects the SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Timestamps are stored as strings so one schema serves both backends.
const timeLayout = time.RFC3339Nano

// Store is the result store.
type Store struct {
	db     *sql.DB
	driver Driver
	log    zerolog.Logger
}

// MarkRecord is one persisted attempt.
type MarkRecord struct {
	Username   string    `json:"username"`
	Testname   string    `json:"testname"`
	Mark       float64   `json:"mark"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Open connects to the database, pings it, and applies pending
// migrations.
func Open(ctx context.Context, driver Driver, dsn string, log zerolog.Logger) (*Store, error) {
	s, err := Connect(ctx, driver, dsn, log)
	if err != nil {
		return nil, err
	}
	if err := s.MigrateUp(); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	s.log.Info().Str("driver", string(driver)).Msg("Result store ready")
	return s, nil
}

// Connect opens the database without touching the schema. cmd/migrate
// uses this to drive migrations explicitly.
func Connect(ctx context.Context, driver Driver, dsn string, log zerolog.Logger) (*Store, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite"
		if dsn == "" {
			dsn = "file:marks.db?_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx"
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{
		db:     db,
		driver: driver,
		log:    log.With().Str("component", "store").Logger(),
	}, nil
}

// Close releases the underlying connections.
func (s *Store) Close() error { return s.db.Close() }

// rebind turns ?-style placeholders into $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// AttemptsUsed counts the persisted attempts for (user, test).
func (s *Store) AttemptsUsed(ctx context.Context, user, test string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM attempts WHERE username = ? AND testname = ?`),
		user, test,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

// PriorMarks returns the score history for (user, test), oldest first.
func (s *Store) PriorMarks(ctx context.Context, user, test string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT mark FROM attempts
		          WHERE username = ? AND testname = ?
		          ORDER BY finished_at`),
		user, test,
	)
	if err != nil {
		return nil, fmt.Errorf("load marks: %w", err)
	}
	defer rows.Close()

	var marks []float64
	for rows.Next() {
		var m float64
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	return marks, rows.Err()
}

// RecordAttempt persists one finished attempt.
func (s *Store) RecordAttempt(ctx context.Context, user, test string, mark float64, startedAt, finishedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO attempts (id, username, testname, mark, started_at, finished_at)
		          VALUES (?, ?, ?, ?, ?, ?)`),
		uuid.NewString(), user, test, mark,
		startedAt.Format(timeLayout), finishedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// Users lists every user with at least one finished attempt.
func (s *Store) Users(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT username FROM attempts ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ResultsFor returns every recorded attempt of one user, oldest first.
func (s *Store) ResultsFor(ctx context.Context, user string) ([]MarkRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT username, testname, mark, started_at, finished_at
		          FROM attempts WHERE username = ?
		          ORDER BY finished_at`),
		user,
	)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// AllResults returns every recorded attempt, grouped by user then time.
func (s *Store) AllResults(ctx context.Context) ([]MarkRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, testname, mark, started_at, finished_at
		 FROM attempts ORDER BY username, finished_at`)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]MarkRecord, error) {
	var records []MarkRecord
	for rows.Next() {
		var (
			r                 MarkRecord
			started, finished string
		)
		if err := rows.Scan(&r.Username, &r.Testname, &r.Mark, &started, &finished); err != nil {
			return nil, err
		}
		var err error
		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if r.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
