package models

import (
	"time"

	"github.com/google/uuid"
)

// Promotion is a "first N buyers of at least M shares" campaign on a horse.
// Quota counts distinct qualifying buyers, and MinShares applies to a single
// order's quantity, not cumulative holdings.
type Promotion struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	HorseID   uuid.UUID  `gorm:"column:horse_id;type:uuid;not null;index"`
	Enabled   bool       `gorm:"column:enabled;not null;default:false"`
	Quota     int        `gorm:"column:quota;not null;default:0"`
	MinShares int        `gorm:"column:min_shares;not null;default:0"`
	StartsAt  *time.Time `gorm:"column:starts_at"`
	EndsAt    *time.Time `gorm:"column:ends_at"`
	Label     string     `gorm:"column:label;not null"`
	Reward    string     `gorm:"column:reward;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// InWindow reports whether t falls inside the promotion's time window.
// Missing bounds are unbounded on that side; both bounds are inclusive.
func (p Promotion) InWindow(t time.Time) bool {
	if p.StartsAt != nil && t.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && t.After(*p.EndsAt) {
		return false
	}
	return true
}

// IsActiveAt reports whether the promotion is configured and currently live,
// ignoring quota consumption (which is derived from the purchase ledger).
func (p Promotion) IsActiveAt(t time.Time) bool {
	return p.Enabled && p.Quota > 0 && p.MinShares > 0 && p.InWindow(t)
}
