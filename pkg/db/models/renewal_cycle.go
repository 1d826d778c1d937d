package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/pkg/enums"
)

// RenewalCycle is an admin-created renewal term for a horse, e.g. "2027 flat
// season". Owners renew their existing shares at PricePerSharePence while the
// cycle window is open.
type RenewalCycle struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	HorseID           uuid.UUID                `gorm:"column:horse_id;type:uuid;not null;index"`
	TermLabel         string                   `gorm:"column:term_label;not null"`
	OpensAt           time.Time                `gorm:"column:opens_at;not null"`
	ClosesAt          time.Time                `gorm:"column:closes_at;not null"`
	PricePerSharePence int64                   `gorm:"column:price_per_share_pence;not null"`
	Status            enums.RenewalCycleStatus `gorm:"column:status;type:renewal_cycle_status;not null;default:'open'"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// AcceptsResponsesAt reports whether a renewal may be recorded at t.
func (c RenewalCycle) AcceptsResponsesAt(t time.Time) bool {
	if c.Status != enums.RenewalCycleStatusOpen {
		return false
	}
	return !t.Before(c.OpensAt) && !t.After(c.ClosesAt)
}
