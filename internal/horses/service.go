package horses

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/internal/promotions"
	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

// Detail is the horse page payload: the horse, its live availability, and
// the promotion banner when one can be computed.
type Detail struct {
	Horse           models.Horse       `json:"horse"`
	SoldShares      int                `json:"sold_shares"`
	RemainingShares int                `json:"remaining_shares"`
	Promotion       *promotions.Banner `json:"promotion,omitempty"`
	// PromotionUnavailable is set when a promotion exists but its state could
	// not be verified. The page shows a neutral notice instead of a banner.
	PromotionUnavailable bool `json:"promotion_unavailable,omitempty"`
}

// Summary is the catalogue listing payload.
type Summary struct {
	Horse           models.Horse `json:"horse"`
	SoldShares      int          `json:"sold_shares"`
	RemainingShares int          `json:"remaining_shares"`
}

// Service serves the public catalogue and the admin horse surface.
type Service interface {
	List(ctx context.Context, params ListParams) ([]Summary, error)
	Detail(ctx context.Context, horseID uuid.UUID, viewerID uuid.UUID) (*Detail, error)

	Create(ctx context.Context, input CreateHorseInput) (*models.Horse, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateHorseInput) (*models.Horse, error)
}

// ServiceParams wires the service dependencies.
type ServiceParams struct {
	Repo   Repository
	Promos promotions.Service
	Logger *logger.Logger
}

type service struct {
	repo   Repository
	promos promotions.Service
	logg   *logger.Logger
}

// NewService wires a horses service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("horses repository required")
	}
	if params.Promos == nil {
		return nil, fmt.Errorf("promotions service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: params.Repo, promos: params.Promos, logg: params.Logger}, nil
}

func (s *service) List(ctx context.Context, params ListParams) ([]Summary, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 50
	}
	horses, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list horses")
	}

	summaries := make([]Summary, 0, len(horses))
	for _, horse := range horses {
		sold, err := s.repo.SoldShares(ctx, horse.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum sold shares")
		}
		summaries = append(summaries, Summary{
			Horse:           horse,
			SoldShares:      sold,
			RemainingShares: remaining(horse.TotalShares, sold),
		})
	}
	return summaries, nil
}

// Detail loads the horse page. Promotion state fails closed: when the banner
// cannot be computed the page still renders, flagged unavailable, and never
// shows qualification the ledger did not confirm.
func (s *service) Detail(ctx context.Context, horseID uuid.UUID, viewerID uuid.UUID) (*Detail, error) {
	if horseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "horse id is required")
	}

	horse, err := s.repo.FindByID(ctx, horseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "horse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load horse")
	}

	sold, err := s.repo.SoldShares(ctx, horseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum sold shares")
	}

	detail := &Detail{
		Horse:           *horse,
		SoldShares:      sold,
		RemainingShares: remaining(horse.TotalShares, sold),
	}

	banner, err := s.promos.BannerForHorse(ctx, horseID, viewerID)
	if err != nil {
		s.logg.Error(s.logg.WithHorseID(ctx, horseID.String()), "promotion banner unavailable", err)
		detail.PromotionUnavailable = true
		return detail, nil
	}
	detail.Promotion = banner
	return detail, nil
}

// CreateHorseInput captures the admin payload for a new horse.
type CreateHorseInput struct {
	Name            string
	Trainer         string
	Description     string
	TotalShares     int
	SharePricePence int64
	Tags            []string
}

// UpdateHorseInput carries partial horse updates.
type UpdateHorseInput struct {
	Trainer         *string
	Description     *string
	TotalShares     *int
	SharePricePence *int64
	Tags            []string
	IsActive        *bool
}

func (s *service) Create(ctx context.Context, input CreateHorseInput) (*models.Horse, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.TotalShares <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total shares must be positive")
	}
	if input.SharePricePence <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "share price must be positive")
	}

	horse := &models.Horse{
		Name:            input.Name,
		Trainer:         input.Trainer,
		Description:     input.Description,
		TotalShares:     input.TotalShares,
		SharePricePence: input.SharePricePence,
		Tags:            input.Tags,
		IsActive:        true,
	}
	if err := s.repo.Create(ctx, horse); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create horse")
	}
	return horse, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateHorseInput) (*models.Horse, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "horse id is required")
	}

	horse, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "horse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load horse")
	}

	if input.Trainer != nil {
		horse.Trainer = *input.Trainer
	}
	if input.Description != nil {
		horse.Description = *input.Description
	}
	if input.TotalShares != nil {
		if *input.TotalShares <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "total shares must be positive")
		}
		sold, err := s.repo.SoldShares(ctx, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum sold shares")
		}
		if *input.TotalShares < sold {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "total shares below shares already sold")
		}
		horse.TotalShares = *input.TotalShares
	}
	if input.SharePricePence != nil {
		if *input.SharePricePence <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "share price must be positive")
		}
		horse.SharePricePence = *input.SharePricePence
	}
	if input.Tags != nil {
		horse.Tags = input.Tags
	}
	if input.IsActive != nil {
		horse.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, horse); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update horse")
	}
	return horse, nil
}

func remaining(total, sold int) int {
	if rem := total - sold; rem > 0 {
		return rem
	}
	return 0
}
