package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/pkg/enums"
)

// WalletTransaction is one immutable wallet ledger row. The balance is never
// stored; it is the sum of posted credits minus posted debits, floored at zero.
type WalletTransaction struct {
	ID          uuid.UUID                     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID                     `gorm:"column:user_id;type:uuid;not null;index"`
	Type        enums.WalletTransactionType   `gorm:"column:type;type:wallet_transaction_type;not null"`
	Status      enums.WalletTransactionStatus `gorm:"column:status;type:wallet_transaction_status;not null;default:'posted'"`
	AmountPence int64                         `gorm:"column:amount_pence;not null"`
	Memo        string                        `gorm:"column:memo"`
	BasketID    *uuid.UUID                    `gorm:"column:basket_id;type:uuid"`
	CreatedAt   time.Time                     `gorm:"column:created_at;autoCreateTime"`
}
