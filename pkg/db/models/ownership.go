package models

import (
	"time"

	"github.com/google/uuid"
)

// Ownership is the running share total for one user on one horse.
// At most one row exists per (user, horse); purchases increment it and the
// append-only Purchase ledger keeps the event history.
type Ownership struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_ownerships_user_horse"`
	HorseID   uuid.UUID  `gorm:"column:horse_id;type:uuid;not null;uniqueIndex:idx_ownerships_user_horse"`
	Shares    int        `gorm:"column:shares;not null;default:0"`
	RenewedAt *time.Time `gorm:"column:renewed_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
