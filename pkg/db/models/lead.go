package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/pkg/enums"
)

// Lead is a public interest/lead/contact submission. Fire-and-forget from the
// website; no workflow state beyond creation.
type Lead struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind      enums.LeadKind `gorm:"column:kind;type:lead_kind;not null"`
	Name      string         `gorm:"column:name;not null"`
	Email     string         `gorm:"column:email;not null"`
	Message   string         `gorm:"column:message"`
	HorseID   *uuid.UUID     `gorm:"column:horse_id;type:uuid"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}
