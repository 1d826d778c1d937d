package ownerships

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
)

// Repository persists ownership totals and the append-only purchase ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, userID, horseID uuid.UUID) (*models.Ownership, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Ownership, error)
	ListByHorse(ctx context.Context, horseID uuid.UUID) ([]models.Ownership, error)
	// AddShares increments the user's running total for the horse, creating
	// the row on first purchase. Callers run this inside a transaction.
	AddShares(ctx context.Context, userID, horseID uuid.UUID, quantity int) error
	MarkRenewed(ctx context.Context, userID, horseID uuid.UUID) error

	CreatePurchase(ctx context.Context, purchase *models.Purchase) error
	ListPurchasesByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Purchase, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an ownerships repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context, userID, horseID uuid.UUID) (*models.Ownership, error) {
	var ownership models.Ownership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND horse_id = ?", userID, horseID).
		First(&ownership).Error
	if err != nil {
		return nil, err
	}
	return &ownership, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Ownership, error) {
	var rows []models.Ownership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND shares > 0", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByHorse(ctx context.Context, horseID uuid.UUID) ([]models.Ownership, error) {
	var rows []models.Ownership
	err := r.db.WithContext(ctx).
		Where("horse_id = ? AND shares > 0", horseID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) AddShares(ctx context.Context, userID, horseID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "horse_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"shares": gorm.Expr("ownerships.shares + ?", quantity),
			}),
		}).
		Create(&models.Ownership{
			UserID:  userID,
			HorseID: horseID,
			Shares:  quantity,
		}).Error
}

func (r *repository) MarkRenewed(ctx context.Context, userID, horseID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Ownership{}).
		Where("user_id = ? AND horse_id = ?", userID, horseID).
		Update("renewed_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *repository) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *repository) ListPurchasesByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Purchase, error) {
	var rows []models.Purchase
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
