package models

import (
	"time"

	"github.com/google/uuid"
)

// BallotEntry is one user's entry into a ballot, unique per (ballot, user).
type BallotEntry struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BallotID  uuid.UUID `gorm:"column:ballot_id;type:uuid;not null;uniqueIndex:idx_ballot_entries_ballot_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_ballot_entries_ballot_user"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
