package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/pkg/enums"
)

// Ballot is a fairness-constrained draw for race-day badges or a stable
// visit. AllocationCap, when set, is the racecourse's own limit and caps the
// effective winner count below MaxWinners.
type Ballot struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	HorseID       *uuid.UUID         `gorm:"column:horse_id;type:uuid;index"`
	Type          enums.BallotType   `gorm:"column:type;type:ballot_type;not null"`
	Title         string             `gorm:"column:title;not null"`
	CutoffAt      time.Time          `gorm:"column:cutoff_at;not null"`
	MaxWinners    int                `gorm:"column:max_winners;not null"`
	AllocationCap *int               `gorm:"column:allocation_cap"`
	Status        enums.BallotStatus `gorm:"column:status;type:ballot_status;not null;default:'open'"`
	DrawnAt       *time.Time         `gorm:"column:drawn_at"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// WinnerLimit is the effective number of winner slots for a draw.
func (b Ballot) WinnerLimit() int {
	limit := b.MaxWinners
	if b.AllocationCap != nil && *b.AllocationCap < limit {
		limit = *b.AllocationCap
	}
	if limit < 0 {
		return 0
	}
	return limit
}

// AcceptsEntriesAt reports whether a new entry may be created at t.
func (b Ballot) AcceptsEntriesAt(t time.Time) bool {
	return b.Status == enums.BallotStatusOpen && t.Before(b.CutoffAt)
}
