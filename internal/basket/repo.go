package basket

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
)

// Repository persists baskets and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, basket *models.Basket) error
	FindOpenByUser(ctx context.Context, userID uuid.UUID) (*models.Basket, error)
	// FindOpenByUserForUpdate row-locks the open basket so checkout and
	// concurrent edits serialize. Only meaningful inside a transaction.
	FindOpenByUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.Basket, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Basket, error)
	Close(ctx context.Context, basket *models.Basket) error

	CreateLine(ctx context.Context, line *models.BasketLine) error
	UpdateLine(ctx context.Context, line *models.BasketLine) error
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
	FindLine(ctx context.Context, basketID, lineID uuid.UUID) (*models.BasketLine, error)
	FindLineByTarget(ctx context.Context, basketID uuid.UUID, lineType enums.BasketLineType, targetID uuid.UUID) (*models.BasketLine, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a basket repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, basket *models.Basket) error {
	return r.db.WithContext(ctx).Create(basket).Error
}

func (r *repository) FindOpenByUser(ctx context.Context, userID uuid.UUID) (*models.Basket, error) {
	var basket models.Basket
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ? AND status = ?", userID, enums.BasketStatusOpen).
		First(&basket).Error
	if err != nil {
		return nil, err
	}
	return &basket, nil
}

func (r *repository) FindOpenByUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.Basket, error) {
	var basket models.Basket
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND status = ?", userID, enums.BasketStatusOpen).
		First(&basket).Error
	if err != nil {
		return nil, err
	}

	var lines []models.BasketLine
	if err := r.db.WithContext(ctx).
		Where("basket_id = ?", basket.ID).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	basket.Lines = lines
	return &basket, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Basket, error) {
	var basket models.Basket
	if err := r.db.WithContext(ctx).Preload("Lines").First(&basket, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &basket, nil
}

func (r *repository) Close(ctx context.Context, basket *models.Basket) error {
	return r.db.WithContext(ctx).
		Model(&models.Basket{}).
		Where("id = ?", basket.ID).
		Updates(map[string]any{
			"status":    enums.BasketStatusClosed,
			"closed_at": basket.ClosedAt,
		}).Error
}

func (r *repository) CreateLine(ctx context.Context, line *models.BasketLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) UpdateLine(ctx context.Context, line *models.BasketLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *repository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.BasketLine{}, "id = ?", lineID).Error
}

func (r *repository) FindLine(ctx context.Context, basketID, lineID uuid.UUID) (*models.BasketLine, error) {
	var line models.BasketLine
	err := r.db.WithContext(ctx).
		Where("id = ? AND basket_id = ?", lineID, basketID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) FindLineByTarget(ctx context.Context, basketID uuid.UUID, lineType enums.BasketLineType, targetID uuid.UUID) (*models.BasketLine, error) {
	var line models.BasketLine
	err := r.db.WithContext(ctx).
		Where("basket_id = ? AND line_type = ? AND target_id = ?", basketID, lineType, targetID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}
