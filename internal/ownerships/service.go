package ownerships

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
)

// Holding pairs an ownership row with its horse for the "my stable" page.
type Holding struct {
	Ownership models.Ownership `json:"ownership"`
	Horse     models.Horse     `json:"horse"`
}

// Service reads a user's holdings and purchase history.
type Service interface {
	MyStable(ctx context.Context, userID uuid.UUID) ([]Holding, error)
	PurchaseHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.Purchase, error)
}

type horseReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Horse, error)
}

type service struct {
	repo   Repository
	horses horseReader
}

// NewService wires an ownerships service.
func NewService(repo Repository, horses horseReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ownerships repository required")
	}
	if horses == nil {
		return nil, fmt.Errorf("horse reader required")
	}
	return &service{repo: repo, horses: horses}, nil
}

func (s *service) MyStable(ctx context.Context, userID uuid.UUID) ([]Holding, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ownerships")
	}

	holdings := make([]Holding, 0, len(rows))
	for _, row := range rows {
		horse, err := s.horses.FindByID(ctx, row.HorseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load horse")
		}
		holdings = append(holdings, Holding{Ownership: row, Horse: *horse})
	}
	return holdings, nil
}

func (s *service) PurchaseHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.Purchase, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.repo.ListPurchasesByUser(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases")
	}
	return rows, nil
}
