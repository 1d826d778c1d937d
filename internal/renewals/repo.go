package renewals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
)

// Repository persists renewal cycles and responses.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, cycle *models.RenewalCycle) error
	Update(ctx context.Context, cycle *models.RenewalCycle) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.RenewalCycle, error)
	ListByHorse(ctx context.Context, horseID uuid.UUID) ([]models.RenewalCycle, error)
	ListOpenPastClose(ctx context.Context, cutoff time.Time) ([]models.RenewalCycle, error)

	CreateResponse(ctx context.Context, response *models.RenewalResponse) error
	FindResponse(ctx context.Context, cycleID, userID uuid.UUID) (*models.RenewalResponse, error)
	ListResponses(ctx context.Context, cycleID uuid.UUID) ([]models.RenewalResponse, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a renewals repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, cycle *models.RenewalCycle) error {
	return r.db.WithContext(ctx).Create(cycle).Error
}

func (r *repository) Update(ctx context.Context, cycle *models.RenewalCycle) error {
	return r.db.WithContext(ctx).Save(cycle).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RenewalCycle, error) {
	var cycle models.RenewalCycle
	if err := r.db.WithContext(ctx).First(&cycle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cycle, nil
}

func (r *repository) ListByHorse(ctx context.Context, horseID uuid.UUID) ([]models.RenewalCycle, error) {
	var cycles []models.RenewalCycle
	err := r.db.WithContext(ctx).
		Where("horse_id = ?", horseID).
		Order("opens_at DESC").
		Find(&cycles).Error
	if err != nil {
		return nil, err
	}
	return cycles, nil
}

func (r *repository) ListOpenPastClose(ctx context.Context, cutoff time.Time) ([]models.RenewalCycle, error) {
	var cycles []models.RenewalCycle
	err := r.db.WithContext(ctx).
		Where("status = ? AND closes_at < ?", enums.RenewalCycleStatusOpen, cutoff).
		Find(&cycles).Error
	if err != nil {
		return nil, err
	}
	return cycles, nil
}

func (r *repository) CreateResponse(ctx context.Context, response *models.RenewalResponse) error {
	return r.db.WithContext(ctx).Create(response).Error
}

func (r *repository) FindResponse(ctx context.Context, cycleID, userID uuid.UUID) (*models.RenewalResponse, error) {
	var response models.RenewalResponse
	err := r.db.WithContext(ctx).
		Where("cycle_id = ? AND user_id = ?", cycleID, userID).
		First(&response).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *repository) ListResponses(ctx context.Context, cycleID uuid.UUID) ([]models.RenewalResponse, error) {
	var responses []models.RenewalResponse
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Order("created_at ASC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}
