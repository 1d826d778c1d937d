package leads

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	maxMessageLen    = 4000
)

// CreateInput is a public interest, lead, or contact submission.
type CreateInput struct {
	Kind    enums.LeadKind `json:"kind" validate:"required"`
	Name    string         `json:"name" validate:"required"`
	Email   string         `json:"email" validate:"required,email"`
	Message string         `json:"message"`
	HorseID *uuid.UUID     `json:"horse_id,omitempty"`
}

// Service records lead submissions and serves the admin listing.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Lead, error)
	List(ctx context.Context, kind string, limit, offset int) ([]models.Lead, error)
}

type repository interface {
	Create(ctx context.Context, lead *models.Lead) error
	List(ctx context.Context, params ListParams) ([]models.Lead, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Lead, error) {
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid lead kind")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
	}
	message := strings.TrimSpace(input.Message)
	if len(message) > maxMessageLen {
		message = message[:maxMessageLen]
	}

	lead := &models.Lead{
		Kind:    input.Kind,
		Name:    name,
		Email:   email,
		Message: message,
		HorseID: input.HorseID,
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create lead")
	}
	return lead, nil
}

func (s *service) List(ctx context.Context, kind string, limit, offset int) ([]models.Lead, error) {
	if kind != "" {
		if _, err := enums.ParseLeadKind(kind); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid lead kind")
		}
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.repo.List(ctx, ListParams{Kind: kind, Limit: limit, Offset: offset})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list leads")
	}
	return rows, nil
}
