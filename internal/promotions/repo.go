package promotions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
)

// Repository manages persistence for promotions and the qualifying slice of
// the purchase ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, promo *models.Promotion) error
	Update(ctx context.Context, promo *models.Promotion) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error)
	FindEnabledByHorse(ctx context.Context, horseID uuid.UUID) (*models.Promotion, error)
	ListByHorse(ctx context.Context, horseID uuid.UUID) ([]models.Promotion, error)
	ListQualifyingPurchases(ctx context.Context, promo models.Promotion) ([]QualifyingPurchase, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a promotions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, promo *models.Promotion) error {
	return r.db.WithContext(ctx).Create(promo).Error
}

func (r *repository) Update(ctx context.Context, promo *models.Promotion) error {
	return r.db.WithContext(ctx).Save(promo).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	var promo models.Promotion
	if err := r.db.WithContext(ctx).First(&promo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *repository) FindEnabledByHorse(ctx context.Context, horseID uuid.UUID) (*models.Promotion, error) {
	var promo models.Promotion
	err := r.db.WithContext(ctx).
		Where("horse_id = ? AND enabled = ?", horseID, true).
		Order("created_at DESC").
		First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *repository) ListByHorse(ctx context.Context, horseID uuid.UUID) ([]models.Promotion, error) {
	var promos []models.Promotion
	if err := r.db.WithContext(ctx).
		Where("horse_id = ?", horseID).
		Order("created_at DESC").
		Find(&promos).Error; err != nil {
		return nil, err
	}
	return promos, nil
}

// ListQualifyingPurchases replays the purchase ledger for the promotion's
// horse: single orders of at least MinShares, inside the window (inclusive on
// both bounds), in (occurred_at, id) order. The id tie-break keeps the order
// total when two purchases share a timestamp.
func (r *repository) ListQualifyingPurchases(ctx context.Context, promo models.Promotion) ([]QualifyingPurchase, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("horse_id = ? AND quantity >= ?", promo.HorseID, promo.MinShares)
	if promo.StartsAt != nil {
		query = query.Where("occurred_at >= ?", promo.StartsAt.UTC())
	}
	if promo.EndsAt != nil {
		query = query.Where("occurred_at <= ?", promo.EndsAt.UTC())
	}

	var rows []models.Purchase
	if err := query.Order("occurred_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	purchases := make([]QualifyingPurchase, 0, len(rows))
	for _, row := range rows {
		purchases = append(purchases, QualifyingPurchase{
			UserID:     row.UserID,
			Quantity:   row.Quantity,
			OccurredAt: row.OccurredAt,
		})
	}
	return purchases, nil
}
