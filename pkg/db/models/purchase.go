package models

import (
	"time"

	"github.com/google/uuid"
)

// Purchase is one immutable entry in the share purchase ledger. Promotion
// eligibility replays this ledger in (occurred_at, id) order, so OccurredAt
// is always stamped server-side at commit time.
type Purchase struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	HorseID        uuid.UUID  `gorm:"column:horse_id;type:uuid;not null;index"`
	BasketID       *uuid.UUID `gorm:"column:basket_id;type:uuid"`
	Quantity       int        `gorm:"column:quantity;not null"`
	UnitPricePence int64      `gorm:"column:unit_price_pence;not null"`
	OccurredAt     time.Time  `gorm:"column:occurred_at;not null;index"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
