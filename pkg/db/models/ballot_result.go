package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/pkg/enums"
)

// BallotResult is the immutable per-entrant outcome written exactly once by
// the draw. A drawn ballot never regenerates or edits its results.
type BallotResult struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BallotID  uuid.UUID           `gorm:"column:ballot_id;type:uuid;not null;uniqueIndex:idx_ballot_results_ballot_user"`
	UserID    uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_ballot_results_ballot_user"`
	Outcome   enums.BallotOutcome `gorm:"column:outcome;type:ballot_outcome;not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}
