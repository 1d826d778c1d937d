package enums

import "fmt"

// WalletTransactionType records whether money entered or left the wallet.
type WalletTransactionType string

const (
	WalletTransactionTypeCredit WalletTransactionType = "credit"
	WalletTransactionTypeDebit  WalletTransactionType = "debit"
)

var validWalletTransactionTypes = []WalletTransactionType{
	WalletTransactionTypeCredit,
	WalletTransactionTypeDebit,
}

// String implements fmt.Stringer.
func (w WalletTransactionType) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WalletTransactionType.
func (w WalletTransactionType) IsValid() bool {
	for _, candidate := range validWalletTransactionTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// WalletTransactionStatus gates whether a transaction counts towards the balance.
// Only posted rows are replayed; pending and void rows are ignored.
type WalletTransactionStatus string

const (
	WalletTransactionStatusPosted  WalletTransactionStatus = "posted"
	WalletTransactionStatusPending WalletTransactionStatus = "pending"
	WalletTransactionStatusVoid    WalletTransactionStatus = "void"
)

var validWalletTransactionStatuses = []WalletTransactionStatus{
	WalletTransactionStatusPosted,
	WalletTransactionStatusPending,
	WalletTransactionStatusVoid,
}

// String implements fmt.Stringer.
func (w WalletTransactionStatus) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WalletTransactionStatus.
func (w WalletTransactionStatus) IsValid() bool {
	for _, candidate := range validWalletTransactionStatuses {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWalletTransactionType converts raw input into a WalletTransactionType.
func ParseWalletTransactionType(value string) (WalletTransactionType, error) {
	for _, candidate := range validWalletTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet transaction type %q", value)
}
