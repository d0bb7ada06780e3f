package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/cinema-booking-wizard/internal/model"
)

// JournalRepo stores one row per submission run in the submission_journal
// table.  Seat lists are kept as comma separated ids since they are only
// ever read back whole.
type JournalRepo struct {
	db *sql.DB
}

// NewJournalRepo returns a JournalRepo bound to the given database.
func NewJournalRepo(db *sql.DB) *JournalRepo { return &JournalRepo{db: db} }

const journalSchema = `CREATE TABLE IF NOT EXISTS submission_journal (
    id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    booking_id   VARCHAR(32)  NOT NULL,
    user_phone   VARCHAR(32)  NOT NULL,
    movie_id     BIGINT       NOT NULL,
    address      VARCHAR(255) NOT NULL,
    show_date    VARCHAR(32)  NOT NULL,
    show_time    VARCHAR(8)   NOT NULL,
    seats        VARCHAR(512) NOT NULL,
    total_price  BIGINT       NOT NULL,
    outcome      VARCHAR(16)  NOT NULL,
    stage        VARCHAR(16)  NOT NULL DEFAULT '',
    failed_seats VARCHAR(512) NOT NULL DEFAULT '',
    compensated  BOOLEAN      NOT NULL DEFAULT FALSE,
    message      VARCHAR(255) NOT NULL DEFAULT '',
    created_at   DATETIME     NOT NULL,
    KEY idx_journal_outcome_created (outcome, created_at),
    KEY idx_journal_booking (booking_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates the journal table when it does not exist yet.
func (r *JournalRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, journalSchema)
	return err
}

// Record inserts one submission run.
func (r *JournalRepo) Record(ctx context.Context, rec model.SubmissionRecord) error {
	const q = `INSERT INTO submission_journal
        (booking_id, user_phone, movie_id, address, show_date, show_time, seats, total_price,
         outcome, stage, failed_seats, compensated, message, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		rec.BookingID, rec.UserPhone, rec.MovieID, rec.Address, rec.ShowDate, rec.ShowTime,
		strings.Join(rec.Seats, ","), rec.TotalPrice, rec.Outcome, rec.Stage,
		strings.Join(rec.FailedSeats, ","), rec.Compensated, rec.Message, createdAt,
	)
	return err
}

// Recent lists the newest runs, optionally filtered by outcome.  A limit
// outside 1..200 falls back to 50.
func (r *JournalRepo) Recent(ctx context.Context, outcome string, limit int) ([]model.SubmissionRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT booking_id, user_phone, movie_id, address, show_date, show_time, seats, total_price,
        outcome, stage, failed_seats, compensated, message, created_at
        FROM submission_journal`
	args := []any{}
	if outcome != "" {
		q += ` WHERE outcome = ?`
		args = append(args, outcome)
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SubmissionRecord
	for rows.Next() {
		var (
			rec          model.SubmissionRecord
			seats, fails string
		)
		if err := rows.Scan(
			&rec.BookingID, &rec.UserPhone, &rec.MovieID, &rec.Address, &rec.ShowDate, &rec.ShowTime,
			&seats, &rec.TotalPrice, &rec.Outcome, &rec.Stage, &fails, &rec.Compensated,
			&rec.Message, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.Seats = splitSeats(seats)
		rec.FailedSeats = splitSeats(fails)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func splitSeats(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
