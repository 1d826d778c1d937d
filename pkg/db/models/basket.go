package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/pkg/enums"
)

// Basket is a user's shopping basket. A partial unique index in the schema
// guarantees at most one open basket per user; closed baskets are kept for
// audit and receipts.
type Basket struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Status    enums.BasketStatus `gorm:"column:status;type:basket_status;not null;default:'open'"`
	ClosedAt  *time.Time         `gorm:"column:closed_at"`
	Lines     []BasketLine       `gorm:"foreignKey:BasketID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
