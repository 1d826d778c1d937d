package horses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
)

// Repository persists horses and answers capacity questions from the
// ownership rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, horse *models.Horse) error
	Update(ctx context.Context, horse *models.Horse) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Horse, error)
	// FindByIDForUpdate row-locks the horse so concurrent checkouts serialize
	// on the capacity check. Only meaningful inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Horse, error)
	List(ctx context.Context, params ListParams) ([]models.Horse, error)
	// SoldShares sums ownership shares for the horse.
	SoldShares(ctx context.Context, horseID uuid.UUID) (int, error)
}

// ListParams filters the catalogue listing.
type ListParams struct {
	ActiveOnly bool
	Tag        string
	Limit      int
	Offset     int
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a horses repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, horse *models.Horse) error {
	return r.db.WithContext(ctx).Create(horse).Error
}

func (r *repository) Update(ctx context.Context, horse *models.Horse) error {
	return r.db.WithContext(ctx).Save(horse).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Horse, error) {
	var horse models.Horse
	if err := r.db.WithContext(ctx).First(&horse, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &horse, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Horse, error) {
	var horse models.Horse
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&horse, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &horse, nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]models.Horse, error) {
	query := r.db.WithContext(ctx).Model(&models.Horse{})
	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if params.Tag != "" {
		query = query.Where("? = ANY(tags)", params.Tag)
	}
	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}
	if params.Offset > 0 {
		query = query.Offset(params.Offset)
	}

	var horses []models.Horse
	if err := query.Order("name ASC").Find(&horses).Error; err != nil {
		return nil, err
	}
	return horses, nil
}

func (r *repository) SoldShares(ctx context.Context, horseID uuid.UUID) (int, error) {
	var sold int64
	err := r.db.WithContext(ctx).
		Model(&models.Ownership{}).
		Where("horse_id = ?", horseID).
		Select("COALESCE(SUM(shares), 0)").
		Scan(&sold).Error
	if err != nil {
		return 0, err
	}
	return int(sold), nil
}
