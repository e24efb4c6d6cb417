package meetings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

// Querier is the subset of pgxpool.Pool the store needs. pgxmock
// satisfies it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is the durable Store backed by Postgres. Slot exclusivity
// is enforced by a partial unique index on (slot_id) WHERE
// status = 'confirmed'; everything above it is advisory.
type PostgresStore struct {
	db     Querier
	logger *logging.Logger
}

func NewPostgresStore(db Querier, logger *logging.Logger) *PostgresStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &PostgresStore{db: db, logger: logger}
}

const meetingColumns = `id, slot_id, user_name, user_email, meeting_type, start_time, duration_minutes, notes, status, calendar_event_id, meeting_link, created_at, updated_at`

func (s *PostgresStore) Insert(ctx context.Context, m *Meeting) error {
	query := `
		INSERT INTO meetings (id, slot_id, user_name, user_email, meeting_type, start_time, duration_minutes, notes, status, calendar_event_id, meeting_link, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := s.db.Exec(ctx, query,
		m.ID, m.SlotID, m.UserName, m.UserEmail, m.MeetingType,
		m.StartTime, int(m.Duration.Minutes()), m.Notes, m.Status,
		m.CalendarEventID, m.MeetingLink, now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotUnavailable
		}
		return fmt.Errorf("meetings: insert: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`
	return s.scanOne(s.db.QueryRow(ctx, query, id))
}

func (s *PostgresStore) GetConfirmedBySlotID(ctx context.Context, slotID string) (*Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE slot_id = $1 AND status = 'confirmed'`
	return s.scanOne(s.db.QueryRow(ctx, query, slotID))
}

func (s *PostgresStore) ConfirmedSlotIDs(ctx context.Context, from, to time.Time) ([]string, error) {
	query := `
		SELECT slot_id FROM meetings
		WHERE status = 'confirmed' AND start_time >= $1 AND start_time < $2`

	rows, err := s.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("meetings: confirmed slot ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("meetings: scan slot id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("meetings: confirmed slot ids: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore) UpdateSchedule(ctx context.Context, id uuid.UUID, slotID string, start time.Time, notes string) error {
	query := `
		UPDATE meetings
		SET slot_id = $2, start_time = $3, notes = COALESCE(NULLIF($4, ''), notes), updated_at = $5
		WHERE id = $1 AND status = 'confirmed'`

	tag, err := s.db.Exec(ctx, query, id, slotID, start, notes, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotUnavailable
		}
		return fmt.Errorf("meetings: update schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Cancel(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE meetings
		SET status = 'cancelled', updated_at = $2
		WHERE id = $1 AND status = 'confirmed'`

	tag, err := s.db.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("meetings: cancel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListUpcomingByEmail(ctx context.Context, email string, now time.Time) ([]Meeting, error) {
	query := `
		SELECT ` + meetingColumns + ` FROM meetings
		WHERE user_email = $1 AND status = 'confirmed' AND start_time > $2
		ORDER BY start_time ASC`

	rows, err := s.db.Query(ctx, query, email, now)
	if err != nil {
		return nil, fmt.Errorf("meetings: list by email: %w", err)
	}
	defer rows.Close()

	var list []Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("meetings: list by email: %w", err)
	}
	return list, nil
}

func (s *PostgresStore) GetStats(ctx context.Context, now time.Time) (*Stats, error) {
	query := `
		SELECT status, meeting_type, COUNT(*), COUNT(*) FILTER (WHERE status = 'confirmed' AND start_time > $1)
		FROM meetings
		GROUP BY status, meeting_type`

	rows, err := s.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("meetings: stats: %w", err)
	}
	defer rows.Close()

	stats := &Stats{ByStatus: map[string]int{}, ByType: map[string]int{}}
	for rows.Next() {
		var status, meetingType string
		var count, upcoming int
		if err := rows.Scan(&status, &meetingType, &count, &upcoming); err != nil {
			return nil, fmt.Errorf("meetings: scan stats: %w", err)
		}
		stats.Total += count
		stats.ByStatus[status] += count
		stats.ByType[meetingType] += count
		stats.Upcoming += upcoming
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("meetings: stats: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) scanOne(row pgx.Row) (*Meeting, error) {
	m, err := scanMeeting(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func scanMeeting(row pgx.Row) (*Meeting, error) {
	var m Meeting
	var durationMinutes int
	err := row.Scan(
		&m.ID, &m.SlotID, &m.UserName, &m.UserEmail, &m.MeetingType,
		&m.StartTime, &durationMinutes, &m.Notes, &m.Status,
		&m.CalendarEventID, &m.MeetingLink, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("meetings: scan: %w", err)
	}
	m.Duration = time.Duration(durationMinutes) * time.Minute
	return &m, nil
}
