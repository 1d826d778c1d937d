package renewals

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

// CreateCycleInput captures the admin payload for a new renewal cycle.
type CreateCycleInput struct {
	HorseID            uuid.UUID
	TermLabel          string
	OpensAt            time.Time
	ClosesAt           time.Time
	PricePerSharePence int64
}

// Service manages renewal cycles. Responses are recorded by checkout, not
// here; a renewal is paid for like any other basket line.
type Service interface {
	CreateCycle(ctx context.Context, input CreateCycleInput) (*models.RenewalCycle, error)
	CloseCycle(ctx context.Context, cycleID uuid.UUID) (*models.RenewalCycle, error)
	ListByHorse(ctx context.Context, horseID uuid.UUID) ([]models.RenewalCycle, error)
	ListResponses(ctx context.Context, cycleID uuid.UUID) ([]models.RenewalResponse, error)
	// CloseExpired sweeps open cycles whose window has passed. Returns the
	// number of cycles closed.
	CloseExpired(ctx context.Context, asOf time.Time) (int, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires a renewals service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("renewals repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) CreateCycle(ctx context.Context, input CreateCycleInput) (*models.RenewalCycle, error) {
	if input.HorseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "horse id is required")
	}
	if input.TermLabel == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "term label is required")
	}
	if input.PricePerSharePence <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price per share must be positive")
	}
	if !input.ClosesAt.After(input.OpensAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cycle closes before it opens")
	}

	cycle := &models.RenewalCycle{
		HorseID:            input.HorseID,
		TermLabel:          input.TermLabel,
		OpensAt:            input.OpensAt.UTC(),
		ClosesAt:           input.ClosesAt.UTC(),
		PricePerSharePence: input.PricePerSharePence,
		Status:             enums.RenewalCycleStatusOpen,
	}
	if err := s.repo.Create(ctx, cycle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create renewal cycle")
	}
	return cycle, nil
}

func (s *service) CloseCycle(ctx context.Context, cycleID uuid.UUID) (*models.RenewalCycle, error) {
	if cycleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cycle id is required")
	}
	cycle, err := s.repo.FindByID(ctx, cycleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "renewal cycle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load renewal cycle")
	}
	if cycle.Status == enums.RenewalCycleStatusClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "renewal cycle already closed")
	}

	cycle.Status = enums.RenewalCycleStatusClosed
	if err := s.repo.Update(ctx, cycle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close renewal cycle")
	}
	return cycle, nil
}

func (s *service) ListByHorse(ctx context.Context, horseID uuid.UUID) ([]models.RenewalCycle, error) {
	if horseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "horse id is required")
	}
	cycles, err := s.repo.ListByHorse(ctx, horseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list renewal cycles")
	}
	return cycles, nil
}

func (s *service) ListResponses(ctx context.Context, cycleID uuid.UUID) ([]models.RenewalResponse, error) {
	if cycleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cycle id is required")
	}
	responses, err := s.repo.ListResponses(ctx, cycleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list renewal responses")
	}
	return responses, nil
}

func (s *service) CloseExpired(ctx context.Context, asOf time.Time) (int, error) {
	cycles, err := s.repo.ListOpenPastClose(ctx, asOf.UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired cycles")
	}

	closed := 0
	for i := range cycles {
		cycles[i].Status = enums.RenewalCycleStatusClosed
		if err := s.repo.Update(ctx, &cycles[i]); err != nil {
			return closed, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close renewal cycle")
		}
		closed++
	}
	return closed, nil
}
