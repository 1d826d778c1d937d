package promotions

import (
	"time"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
)

// QualifyingPurchase is one ledger row that met the promotion's single-order
// share threshold, in ledger order.
type QualifyingPurchase struct {
	UserID     uuid.UUID
	Quantity   int
	OccurredAt time.Time
}

// Evaluation summarizes quota consumption for display.
type Evaluation struct {
	Claimed   int  `json:"claimed"`
	Remaining int  `json:"remaining"`
	Active    bool `json:"active"`
}

// Qualification reports whether a user holds one of the first-N slots.
// Rank is 1-based within the deduplicated qualifier order, 0 when the user
// never placed a qualifying order.
type Qualification struct {
	Qualified bool `json:"qualified"`
	Rank      int  `json:"rank,omitempty"`
}

// qualifierOrder walks the ledger in order and returns each user's first
// qualifying position. Later qualifying orders by the same user never
// re-rank them.
func qualifierOrder(purchases []QualifyingPurchase) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(purchases))
	order := make([]uuid.UUID, 0, len(purchases))
	for _, p := range purchases {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		order = append(order, p.UserID)
	}
	return order
}

// Evaluate computes claimed/remaining quota for a promotion given the full
// ordered history of qualifying purchases.
func Evaluate(promo models.Promotion, purchases []QualifyingPurchase, asOf time.Time) Evaluation {
	order := qualifierOrder(purchases)
	claimed := len(order)
	if claimed > promo.Quota {
		claimed = promo.Quota
	}
	remaining := promo.Quota - claimed
	if remaining < 0 {
		remaining = 0
	}
	return Evaluation{
		Claimed:   claimed,
		Remaining: remaining,
		Active:    promo.IsActiveAt(asOf) && remaining > 0,
	}
}

// UserQualifies ranks the user against the complete deduplicated qualifier
// list, not the quota-capped one, so a user who took a slot before the quota
// filled keeps it no matter when the question is asked.
func UserQualifies(promo models.Promotion, purchases []QualifyingPurchase, userID uuid.UUID) Qualification {
	for i, id := range qualifierOrder(purchases) {
		if id == userID {
			rank := i + 1
			return Qualification{Qualified: rank <= promo.Quota, Rank: rank}
		}
	}
	return Qualification{}
}
