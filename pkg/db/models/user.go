package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/pkg/enums"
)

// User is an owner account on the syndicate platform.
type User struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string           `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	DisplayName  string           `gorm:"column:display_name;not null"`
	Role         enums.MemberRole `gorm:"column:role;type:member_role;not null;default:'owner'"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
