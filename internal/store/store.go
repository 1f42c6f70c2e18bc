// Package store persists the append-only draft pick log to postgres.
// The session never blocks on it; rows arrive fire-and-forget and the
// in-memory log stays authoritative until acknowledged.
package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/engine"
)

// PickRecord is one persisted draft pick.
type PickRecord struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	SessionCode string    `gorm:"index:idx_session_pick,unique" json:"session_code"`
	PickNumber  int       `gorm:"index:idx_session_pick,unique" json:"pick_number"`
	LeagueID    string    `gorm:"index" json:"league_id"`
	Round       int       `json:"round"`
	TeamID      string    `json:"team_id"`
	Category    string    `json:"category"`
	AssetID     int64     `json:"asset_id"`
	AssetName   string    `json:"asset_name"`
	MadeBy      string    `json:"made_by"`
	PickedAt    time.Time `json:"picked_at"`
	CreatedAt   time.Time `json:"-"`
}

// SessionRecord archives a session once its draft completes.
type SessionRecord struct {
	ID          uint   `gorm:"primaryKey"`
	SessionCode string `gorm:"uniqueIndex"`
	Status      string
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open connects and migrates the pick tables.
func Open(dsn string, logger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&PickRecord{}, &SessionRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, log: logger}, nil
}

// SavePick appends one pick row. The (session, pick number) unique
// index makes retried writes idempotent.
func (s *Store) SavePick(ctx context.Context, code, leagueID string, p engine.Pick) error {
	rec := PickRecord{
		SessionCode: code,
		PickNumber:  p.PickNumber,
		LeagueID:    leagueID,
		Round:       p.Round,
		TeamID:      string(p.TeamID),
		Category:    string(p.Category),
		AssetID:     p.AssetID,
		AssetName:   p.AssetName,
		MadeBy:      string(p.MadeBy),
		PickedAt:    p.PickedAt,
	}
	err := s.db.WithContext(ctx).
		Where("session_code = ? AND pick_number = ?", code, p.PickNumber).
		FirstOrCreate(&rec).Error
	if err != nil {
		return fmt.Errorf("save pick %d: %w", p.PickNumber, err)
	}
	return nil
}

// MarkComplete archives the session.
func (s *Store) MarkComplete(ctx context.Context, code string) error {
	now := time.Now()
	rec := SessionRecord{SessionCode: code}
	err := s.db.WithContext(ctx).
		Where("session_code = ?", code).
		Assign(SessionRecord{Status: string(engine.StatusComplete), CompletedAt: &now}).
		FirstOrCreate(&rec).Error
	if err != nil {
		return fmt.Errorf("mark complete: %w", err)
	}
	return nil
}

// Picks returns the persisted log for a session in pick order, for
// collaborators rebuilding permanent rosters.
func (s *Store) Picks(ctx context.Context, code string) ([]PickRecord, error) {
	var out []PickRecord
	err := s.db.WithContext(ctx).
		Where("session_code = ?", code).
		Order("pick_number asc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("load picks: %w", err)
	}
	return out, nil
}
