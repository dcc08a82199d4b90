package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"gorm.io/gorm"
)

// sessionRecord mirrors the booking_sessions table for the gorm store.
type sessionRecord struct {
	Token         string `gorm:"primaryKey"`
	FlightID      *int64
	Status        string `gorm:"index"`
	PaymentStatus string
	Payload       []byte
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time `gorm:"index"`
}

func (sessionRecord) TableName() string { return "booking_sessions" }

// GormSessionRepository is the local development store (sqlite).
type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) (*GormSessionRepository, error) {
	if err := db.AutoMigrate(&sessionRecord{}); err != nil {
		return nil, fmt.Errorf("migrate booking_sessions: %w", err)
	}
	return &GormSessionRepository{db: db}, nil
}

func (r *GormSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	session.Version = 1
	rec, err := toRecord(session)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *GormSessionRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var rec sessionRecord
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("session %s: %w", token, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(rec.Payload, rec.Version)
}

func (r *GormSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	expected := session.Version
	next := *session
	next.Version = expected + 1
	rec, err := toRecord(&next)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&sessionRecord{}).
		Where("token = ? AND version = ?", session.Token, expected).
		Updates(map[string]interface{}{
			"flight_id":      rec.FlightID,
			"status":         rec.Status,
			"payment_status": rec.PaymentStatus,
			"payload":        rec.Payload,
			"version":        rec.Version,
			"updated_at":     rec.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	session.Version = next.Version
	return nil
}

func (r *GormSessionRepository) ListStale(ctx context.Context, before time.Time) ([]domain.Session, error) {
	var recs []sessionRecord
	err := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at <= ?", []string{string(domain.SessionStatusDraft), string(domain.SessionStatusPendingPayment)}, before).
		Order("updated_at").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	stale := make([]domain.Session, 0, len(recs))
	for _, rec := range recs {
		s, err := decodeSession(rec.Payload, rec.Version)
		if err != nil {
			return nil, err
		}
		stale = append(stale, *s)
	}
	return stale, nil
}

func toRecord(s *domain.Session) (*sessionRecord, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return &sessionRecord{
		Token:         s.Token,
		FlightID:      flightID(s),
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		Payload:       payload,
		Version:       s.Version,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}, nil
}

var _ SessionRepository = (*GormSessionRepository)(nil)
