package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
)

// Service exposes wallet balances, statements and credit grants.
type Service interface {
	// Balance replays the posted ledger for the user. A history of grants and
	// spends can never drive it below zero; corrupt data floors at zero.
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	Statement(ctx context.Context, userID uuid.UUID, limit int) ([]models.WalletTransaction, error)
	// GrantCredit posts a promotional or goodwill credit. Admin only at the
	// route layer.
	GrantCredit(ctx context.Context, userID uuid.UUID, amountPence int64, memo string) (*models.WalletTransaction, error)
	// Debit appends a posted debit row. Callers are responsible for holding
	// a transaction and for having verified the balance covers the amount.
	Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amountPence int64, basketID uuid.UUID, memo string) (*models.WalletTransaction, error)
}

type service struct {
	repo Repository
}

// NewService wires a wallet service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	credits, debits, err := s.repo.PostedTotals(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replay wallet ledger")
	}
	balance := credits - debits
	if balance < 0 {
		balance = 0
	}
	return balance, nil
}

func (s *service) Statement(ctx context.Context, userID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet transactions")
	}
	return rows, nil
}

func (s *service) GrantCredit(ctx context.Context, userID uuid.UUID, amountPence int64, memo string) (*models.WalletTransaction, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if amountPence <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}

	txn := &models.WalletTransaction{
		UserID:      userID,
		Type:        enums.WalletTransactionTypeCredit,
		Status:      enums.WalletTransactionStatusPosted,
		AmountPence: amountPence,
		Memo:        memo,
	}
	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post wallet credit")
	}
	return txn, nil
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amountPence int64, basketID uuid.UUID, memo string) (*models.WalletTransaction, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if amountPence <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be positive")
	}

	txn := &models.WalletTransaction{
		UserID:      userID,
		Type:        enums.WalletTransactionTypeDebit,
		Status:      enums.WalletTransactionStatusPosted,
		AmountPence: amountPence,
		Memo:        memo,
	}
	if basketID != uuid.Nil {
		txn.BasketID = &basketID
	}
	if err := s.repo.WithTx(tx).Create(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post wallet debit")
	}
	return txn, nil
}
