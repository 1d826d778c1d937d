package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Horse is a syndicated racehorse. TotalShares caps the sum of all
// ownership shares; the sold count is always derived from the ownership
// rows, never stored.
type Horse struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string         `gorm:"column:name;not null;uniqueIndex"`
	Trainer         string         `gorm:"column:trainer"`
	Description     string         `gorm:"column:description"`
	TotalShares     int            `gorm:"column:total_shares;not null;default:0"`
	SharePricePence int64          `gorm:"column:share_price_pence;not null;default:0"`
	Tags            pq.StringArray `gorm:"column:tags;type:text[]"`
	IsActive        bool           `gorm:"column:is_active;not null;default:true"`
	Promotions      []Promotion    `gorm:"foreignKey:HorseID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
