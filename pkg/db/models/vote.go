package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/pkg/enums"
)

// Vote is a single-choice syndicate decision with 2-10 options.
type Vote struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	HorseID   *uuid.UUID       `gorm:"column:horse_id;type:uuid;index"`
	Title     string           `gorm:"column:title;not null"`
	CutoffAt  time.Time        `gorm:"column:cutoff_at;not null"`
	Status    enums.VoteStatus `gorm:"column:status;type:vote_status;not null;default:'open'"`
	Options   []VoteOption     `gorm:"foreignKey:VoteID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// AcceptsResponsesAt reports whether a new response may be cast at t.
func (v Vote) AcceptsResponsesAt(t time.Time) bool {
	return v.Status == enums.VoteStatusOpen && t.Before(v.CutoffAt)
}

// VoteOption is one selectable answer on a vote.
type VoteOption struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VoteID    uuid.UUID `gorm:"column:vote_id;type:uuid;not null;index"`
	Label     string    `gorm:"column:label;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// VoteResponse is one user's immutable single choice, unique per (vote, user).
type VoteResponse struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VoteID    uuid.UUID `gorm:"column:vote_id;type:uuid;not null;uniqueIndex:idx_vote_responses_vote_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_vote_responses_vote_user"`
	OptionID  uuid.UUID `gorm:"column:option_id;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
