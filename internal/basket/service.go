package basket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
)

const (
	maxShareLineQuantity   = 100
	maxRenewalLineQuantity = 1000
)

// View is a basket plus its derived totals.
type View struct {
	Basket        models.Basket `json:"basket"`
	SubtotalPence int64         `json:"subtotal_pence"`
}

// AddLineInput describes a line to add or merge into the open basket.
type AddLineInput struct {
	LineType enums.BasketLineType
	TargetID uuid.UUID
	Quantity int
}

// Service manages the user's single open basket.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	AddLine(ctx context.Context, userID uuid.UUID, input AddLineInput) (*View, error)
	UpdateLineQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*View, error)
	RemoveLine(ctx context.Context, userID, lineID uuid.UUID) (*View, error)
}

// ServiceParams wires the basket service dependencies.
type ServiceParams struct {
	Repo       Repository
	Horses     horseReader
	Cycles     cycleReader
	Ownerships ownershipReader
}

type service struct {
	repo       Repository
	horses     horseReader
	cycles     cycleReader
	ownerships ownershipReader
	now        func() time.Time
}

// NewService wires a basket service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("basket repository required")
	}
	if params.Horses == nil {
		return nil, fmt.Errorf("horse reader required")
	}
	if params.Cycles == nil {
		return nil, fmt.Errorf("cycle reader required")
	}
	if params.Ownerships == nil {
		return nil, fmt.Errorf("ownership reader required")
	}
	return &service{
		repo:       params.Repo,
		horses:     params.Horses,
		cycles:     params.Cycles,
		ownerships: params.Ownerships,
		now:        time.Now,
	}, nil
}

// Get returns the user's open basket, creating an empty one if none exists.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	basket, err := s.openBasket(ctx, userID)
	if err != nil {
		return nil, err
	}
	return viewOf(basket), nil
}

func (s *service) AddLine(ctx context.Context, userID uuid.UUID, input AddLineInput) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.LineType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown line type")
	}
	if input.TargetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	unitPrice, err := s.resolveUnitPrice(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	basket, err := s.openBasket(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindLineByTarget(ctx, basket.ID, input.LineType, input.TargetID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket line")
	}

	if existing != nil {
		existing.Quantity = clampQuantity(existing.Quantity+input.Quantity, input.LineType)
		if err := s.repo.UpdateLine(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket line")
		}
	} else {
		line := &models.BasketLine{
			BasketID:       basket.ID,
			LineType:       input.LineType,
			TargetID:       input.TargetID,
			Quantity:       clampQuantity(input.Quantity, input.LineType),
			UnitPricePence: unitPrice,
		}
		if err := s.repo.CreateLine(ctx, line); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create basket line")
		}
	}

	return s.reload(ctx, userID)
}

func (s *service) UpdateLineQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line id is required")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	basket, err := s.openBasket(ctx, userID)
	if err != nil {
		return nil, err
	}

	line, err := s.repo.FindLine(ctx, basket.ID, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket line")
	}

	line.Quantity = clampQuantity(quantity, line.LineType)
	if err := s.repo.UpdateLine(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket line")
	}
	return s.reload(ctx, userID)
}

func (s *service) RemoveLine(ctx context.Context, userID, lineID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line id is required")
	}

	basket, err := s.openBasket(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindLine(ctx, basket.ID, lineID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket line")
	}

	if err := s.repo.DeleteLine(ctx, lineID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete basket line")
	}
	return s.reload(ctx, userID)
}

// resolveUnitPrice captures the current unit price for the line target. The
// price lives on the line from then on, so later repricing never changes a
// basket already in progress.
func (s *service) resolveUnitPrice(ctx context.Context, userID uuid.UUID, input AddLineInput) (int64, error) {
	switch input.LineType {
	case enums.BasketLineTypeShare:
		horse, err := s.horses.FindByID(ctx, input.TargetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, pkgerrors.New(pkgerrors.CodeNotFound, "horse not found")
			}
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load horse")
		}
		if !horse.IsActive {
			return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "horse is not open for purchase")
		}
		if horse.SharePricePence <= 0 {
			return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "horse has no valid share price")
		}
		return horse.SharePricePence, nil

	case enums.BasketLineTypeRenewal:
		cycle, err := s.cycles.FindByID(ctx, input.TargetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, pkgerrors.New(pkgerrors.CodeNotFound, "renewal cycle not found")
			}
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load renewal cycle")
		}
		if !cycle.AcceptsResponsesAt(s.now().UTC()) {
			return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "renewal cycle is not open")
		}
		if cycle.PricePerSharePence <= 0 {
			return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "renewal cycle has no valid price")
		}

		ownership, err := s.ownerships.Find(ctx, userID, cycle.HorseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "no shares to renew for this horse")
			}
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ownership")
		}
		if ownership.Shares <= 0 {
			return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "no shares to renew for this horse")
		}
		if input.Quantity > ownership.Shares {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "cannot renew more shares than owned")
		}
		return cycle.PricePerSharePence, nil
	}
	return 0, pkgerrors.New(pkgerrors.CodeValidation, "unknown line type")
}

func (s *service) openBasket(ctx context.Context, userID uuid.UUID) (*models.Basket, error) {
	basket, err := s.repo.FindOpenByUser(ctx, userID)
	if err == nil {
		return basket, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}

	fresh := &models.Basket{UserID: userID, Status: enums.BasketStatusOpen}
	if err := s.repo.Create(ctx, fresh); err != nil {
		// A concurrent request may have created the basket first; the
		// partial unique index rejects the second insert.
		if existing, findErr := s.repo.FindOpenByUser(ctx, userID); findErr == nil {
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create basket")
	}
	return fresh, nil
}

func (s *service) reload(ctx context.Context, userID uuid.UUID) (*View, error) {
	basket, err := s.repo.FindOpenByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload basket")
	}
	return viewOf(basket), nil
}

func clampQuantity(quantity int, lineType enums.BasketLineType) int {
	limit := maxShareLineQuantity
	if lineType == enums.BasketLineTypeRenewal {
		limit = maxRenewalLineQuantity
	}
	if quantity > limit {
		return limit
	}
	return quantity
}

func viewOf(basket *models.Basket) *View {
	view := &View{Basket: *basket}
	for _, line := range basket.Lines {
		view.SubtotalPence += line.SubtotalPence()
	}
	return view
}
