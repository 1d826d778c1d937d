package basket

import (
	"context"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
)

// horseReader is the slice of the horses repository the basket needs for
// price resolution.
type horseReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Horse, error)
}

// cycleReader resolves renewal cycles for renewal lines.
type cycleReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.RenewalCycle, error)
}

// ownershipReader answers how many shares the user currently holds.
type ownershipReader interface {
	Find(ctx context.Context, userID, horseID uuid.UUID) (*models.Ownership, error)
}
