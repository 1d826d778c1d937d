package promotions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
)

// Issue explains why a planned purchase would not earn the promotion.
type Issue struct {
	HorseID          uuid.UUID `json:"horse_id"`
	Reason           string    `json:"reason"`
	NeededAdditional int       `json:"needed_additional,omitempty"`
}

const (
	// IssueReasonFull means another buyer took the last quota slot.
	IssueReasonFull = "full"
	// IssueReasonNeedsMore means the planned single-order quantity is below
	// the promotion threshold.
	IssueReasonNeedsMore = "needs_more"
)

// Banner is the horse-page promotion summary.
type Banner struct {
	PromotionID uuid.UUID     `json:"promotion_id"`
	Label       string        `json:"label"`
	Reward      string        `json:"reward"`
	MinShares   int           `json:"min_shares"`
	Evaluation  Evaluation    `json:"evaluation"`
	You         Qualification `json:"you,omitempty"`
}

// Service evaluates promotion state for display and for checkout-time
// verification.
type Service interface {
	BannerForHorse(ctx context.Context, horseID uuid.UUID, userID uuid.UUID) (*Banner, error)
	// VerifyPlanned re-checks, against the live ledger, whether buying
	// plannedQty shares now still earns the horse's promotion. A nil issue
	// means the buyer is fine (already qualified, will qualify, or there is
	// no live promotion). A store failure is returned as an error so callers
	// never grant promotion credit on unverified data.
	VerifyPlanned(ctx context.Context, userID, horseID uuid.UUID, plannedQty int) (*Issue, error)

	Create(ctx context.Context, input CreatePromotionInput) (*models.Promotion, error)
	Update(ctx context.Context, id uuid.UUID, input UpdatePromotionInput) (*models.Promotion, error)
	ListByHorse(ctx context.Context, horseID uuid.UUID) ([]models.Promotion, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires a promotions service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promotions repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// BannerForHorse builds the display summary for the horse's live promotion.
// Fails closed: a store error propagates so the caller renders "promotion
// unavailable" instead of an optimistic banner.
func (s *service) BannerForHorse(ctx context.Context, horseID uuid.UUID, userID uuid.UUID) (*Banner, error) {
	if horseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "horse id is required")
	}

	promo, err := s.repo.FindEnabledByHorse(ctx, horseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promotion")
	}

	now := s.now().UTC()
	if !promo.IsActiveAt(now) {
		return nil, nil
	}

	purchases, err := s.repo.ListQualifyingPurchases(ctx, *promo)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replay purchase ledger")
	}

	banner := &Banner{
		PromotionID: promo.ID,
		Label:       promo.Label,
		Reward:      promo.Reward,
		MinShares:   promo.MinShares,
		Evaluation:  Evaluate(*promo, purchases, now),
	}
	if userID != uuid.Nil {
		banner.You = UserQualifies(*promo, purchases, userID)
	}
	return banner, nil
}

func (s *service) VerifyPlanned(ctx context.Context, userID, horseID uuid.UUID, plannedQty int) (*Issue, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if horseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "horse id is required")
	}

	promo, err := s.repo.FindEnabledByHorse(ctx, horseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promotion")
	}

	now := s.now().UTC()
	if !promo.IsActiveAt(now) {
		// Expired or disabled campaigns are not surfaced as issues; there is
		// simply nothing to earn.
		return nil, nil
	}

	purchases, err := s.repo.ListQualifyingPurchases(ctx, *promo)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replay purchase ledger")
	}

	if UserQualifies(*promo, purchases, userID).Qualified {
		return nil, nil
	}

	if plannedQty < promo.MinShares {
		return &Issue{
			HorseID:          horseID,
			Reason:           IssueReasonNeedsMore,
			NeededAdditional: promo.MinShares - plannedQty,
		}, nil
	}

	if Evaluate(*promo, purchases, now).Remaining == 0 {
		return &Issue{HorseID: horseID, Reason: IssueReasonFull}, nil
	}
	return nil, nil
}

// CreatePromotionInput captures the admin payload for a new promotion.
type CreatePromotionInput struct {
	HorseID   uuid.UUID
	Enabled   bool
	Quota     int
	MinShares int
	StartsAt  *time.Time
	EndsAt    *time.Time
	Label     string
	Reward    string
}

// UpdatePromotionInput carries partial promotion updates.
type UpdatePromotionInput struct {
	Enabled   *bool
	Quota     *int
	MinShares *int
	StartsAt  *time.Time
	EndsAt    *time.Time
	Label     *string
	Reward    *string
}

func (s *service) Create(ctx context.Context, input CreatePromotionInput) (*models.Promotion, error) {
	if input.HorseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "horse id is required")
	}
	if input.Quota <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quota must be positive")
	}
	if input.MinShares <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min shares must be positive")
	}
	if input.StartsAt != nil && input.EndsAt != nil && input.EndsAt.Before(*input.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promotion window ends before it starts")
	}
	if input.Label == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "label is required")
	}

	promo := &models.Promotion{
		HorseID:   input.HorseID,
		Enabled:   input.Enabled,
		Quota:     input.Quota,
		MinShares: input.MinShares,
		StartsAt:  input.StartsAt,
		EndsAt:    input.EndsAt,
		Label:     input.Label,
		Reward:    input.Reward,
	}
	if err := s.repo.Create(ctx, promo); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create promotion")
	}
	return promo, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdatePromotionInput) (*models.Promotion, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promotion id is required")
	}

	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promotion not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promotion")
	}

	if input.Enabled != nil {
		promo.Enabled = *input.Enabled
	}
	if input.Quota != nil {
		if *input.Quota <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quota must be positive")
		}
		promo.Quota = *input.Quota
	}
	if input.MinShares != nil {
		if *input.MinShares <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min shares must be positive")
		}
		promo.MinShares = *input.MinShares
	}
	if input.StartsAt != nil {
		promo.StartsAt = input.StartsAt
	}
	if input.EndsAt != nil {
		promo.EndsAt = input.EndsAt
	}
	if input.Label != nil {
		promo.Label = *input.Label
	}
	if input.Reward != nil {
		promo.Reward = *input.Reward
	}

	if err := s.repo.Update(ctx, promo); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update promotion")
	}
	return promo, nil
}

func (s *service) ListByHorse(ctx context.Context, horseID uuid.UUID) ([]models.Promotion, error) {
	if horseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "horse id is required")
	}
	promos, err := s.repo.ListByHorse(ctx, horseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promotions")
	}
	return promos, nil
}
