package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/pkg/enums"
)

// BasketLine is one item in a basket. TargetID references a horse for share
// lines or a renewal cycle for renewal lines. UnitPricePence is captured when
// the line is added so later price changes never alter a basket in progress.
type BasketLine struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BasketID       uuid.UUID            `gorm:"column:basket_id;type:uuid;not null;uniqueIndex:idx_basket_lines_target"`
	LineType       enums.BasketLineType `gorm:"column:line_type;type:basket_line_type;not null;uniqueIndex:idx_basket_lines_target"`
	TargetID       uuid.UUID            `gorm:"column:target_id;type:uuid;not null;uniqueIndex:idx_basket_lines_target"`
	Quantity       int                  `gorm:"column:quantity;not null"`
	UnitPricePence int64                `gorm:"column:unit_price_pence;not null"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// SubtotalPence is the line contribution to the basket subtotal.
func (l BasketLine) SubtotalPence() int64 {
	return l.UnitPricePence * int64(l.Quantity)
}
