package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
)

// Repository persists the wallet transaction ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.WalletTransaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.WalletTransaction, error)
	// PostedTotals returns the summed posted credits and debits for the user.
	PostedTotals(ctx context.Context, userID uuid.UUID) (credits int64, debits int64, err error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, txn *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	var rows []models.WalletTransaction
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) PostedTotals(ctx context.Context, userID uuid.UUID) (int64, int64, error) {
	type row struct {
		Type  enums.WalletTransactionType
		Total int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Select("type, COALESCE(SUM(amount_pence), 0) AS total").
		Where("user_id = ? AND status = ?", userID, enums.WalletTransactionStatusPosted).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}

	var credits, debits int64
	for _, r := range rows {
		switch r.Type {
		case enums.WalletTransactionTypeCredit:
			credits = r.Total
		case enums.WalletTransactionTypeDebit:
			debits = r.Total
		}
	}
	return credits, debits, nil
}
