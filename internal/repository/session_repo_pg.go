package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

// SessionRepository persists booking sessions. Update is optimistic: it
// only succeeds when the stored version equals session.Version, and bumps it.
// ListStale returns drafts and pending checkouts last updated at or before the
// given time, oldest first.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	ListStale(ctx context.Context, before time.Time) ([]domain.Session, error)
}

type PGSessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) SessionRepository {
	return &PGSessionRepository{db: db}
}

func (r *PGSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	session.Version = 1
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO booking_sessions (token, flight_id, status, payment_status, payload, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.Token, flightID(session), session.Status, session.PaymentStatus, payload, session.Version, session.CreatedAt, session.UpdatedAt)
	return err
}

func (r *PGSessionRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var payload []byte
	var version int64
	err := r.db.QueryRow(ctx, `SELECT payload, version FROM booking_sessions WHERE token=$1`, token).Scan(&payload, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", token, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(payload, version)
}

func (r *PGSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	expected := session.Version
	next := *session
	next.Version = expected + 1
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	res, err := r.db.Exec(ctx, `UPDATE booking_sessions
		SET flight_id=$2, status=$3, payment_status=$4, payload=$5, version=$6, updated_at=$7
		WHERE token=$1 AND version=$8`,
		session.Token, flightID(session), session.Status, session.PaymentStatus, payload, next.Version, session.UpdatedAt, expected)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	session.Version = next.Version
	return nil
}

func (r *PGSessionRepository) ListStale(ctx context.Context, before time.Time) ([]domain.Session, error) {
	rows, err := r.db.Query(ctx, `SELECT payload, version FROM booking_sessions WHERE status IN ($1, $2) AND updated_at <= $3 ORDER BY updated_at`,
		string(domain.SessionStatusDraft), string(domain.SessionStatusPendingPayment), before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []domain.Session
	for rows.Next() {
		var payload []byte
		var version int64
		if err := rows.Scan(&payload, &version); err != nil {
			return nil, err
		}
		s, err := decodeSession(payload, version)
		if err != nil {
			return nil, err
		}
		stale = append(stale, *s)
	}
	return stale, rows.Err()
}

func decodeSession(payload []byte, version int64) (*domain.Session, error) {
	var s domain.Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s.Version = version
	return &s, nil
}

func flightID(s *domain.Session) *int64 {
	if s.Flight == nil {
		return nil
	}
	id := s.Flight.ID
	return &id
}

var _ SessionRepository = (*PGSessionRepository)(nil)
