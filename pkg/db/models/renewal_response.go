package models

import (
	"time"

	"github.com/google/uuid"
)

// RenewalResponse records one user's renewal of their shares for a cycle.
// Unique per (cycle, user).
type RenewalResponse struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CycleID        uuid.UUID `gorm:"column:cycle_id;type:uuid;not null;uniqueIndex:idx_renewal_responses_cycle_user"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_renewal_responses_cycle_user"`
	SharesRenewed  int       `gorm:"column:shares_renewed;not null"`
	UnitPricePence int64     `gorm:"column:unit_price_pence;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
