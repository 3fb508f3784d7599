package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

func (s *Store) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// EnsureSchema creates the archive table if missing. The payload column
// holds the frozen report JSON exactly as it was served.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS attendance_reports (
			id          uuid PRIMARY KEY,
			lesson_date date NOT NULL,
			scope       text NOT NULL,
			payload     jsonb NOT NULL,
			created_at  timestamptz NOT NULL DEFAULT now()
		)
	`)
	return err
}

type ArchivedReport struct {
	ID         uuid.UUID
	LessonDate time.Time
	Scope      string
	Payload    []byte
	CreatedAt  time.Time
}

func (s *Store) InsertReport(ctx context.Context, rep ArchivedReport) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO attendance_reports (id, lesson_date, scope, payload, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, rep.ID, rep.LessonDate, rep.Scope, rep.Payload, rep.CreatedAt)
		return err
	})
}

func (s *Store) GetReport(ctx context.Context, id uuid.UUID) (ArchivedReport, error) {
	var rep ArchivedReport
	row := s.Pool.QueryRow(ctx, `
		SELECT id, lesson_date, scope, payload, created_at
		FROM attendance_reports
		WHERE id = $1
	`, id)
	err := row.Scan(&rep.ID, &rep.LessonDate, &rep.Scope, &rep.Payload, &rep.CreatedAt)
	return rep, err
}

func (s *Store) ListReports(ctx context.Context, from, to time.Time) ([]ArchivedReport, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, lesson_date, scope, payload, created_at
		FROM attendance_reports
		WHERE lesson_date >= $1 AND lesson_date <= $2
		ORDER BY lesson_date, created_at
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []ArchivedReport
	for rows.Next() {
		var rep ArchivedReport
		if err := rows.Scan(&rep.ID, &rep.LessonDate, &rep.Scope, &rep.Payload, &rep.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (s *Store) DeleteReportsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM attendance_reports WHERE lesson_date < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
