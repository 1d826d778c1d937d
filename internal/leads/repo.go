package leads

import (
	"context"

	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
)

// Repository persists public lead submissions.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

// ListParams filters the admin lead listing.
type ListParams struct {
	Kind   string
	Limit  int
	Offset int
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]models.Lead, error) {
	query := r.db.WithContext(ctx).Model(&models.Lead{})
	if params.Kind != "" {
		query = query.Where("kind = ?", params.Kind)
	}
	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}
	if params.Offset > 0 {
		query = query.Offset(params.Offset)
	}

	var rows []models.Lead
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
