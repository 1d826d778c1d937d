package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/internal/basket"
	"github.com/paddockshare/paddockshare-backend/internal/horses"
	"github.com/paddockshare/paddockshare-backend/internal/ownerships"
	"github.com/paddockshare/paddockshare-backend/internal/renewals"
	"github.com/paddockshare/paddockshare-backend/internal/wallet"
	"github.com/paddockshare/paddockshare-backend/pkg/db"
	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

func newCheckoutDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	// Schema written by hand: the production defaults use Postgres
	// functions sqlite does not know.
	ddl := []string{
		`CREATE TABLE horses (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			trainer TEXT,
			description TEXT,
			total_shares INTEGER NOT NULL DEFAULT 0,
			share_price_pence INTEGER NOT NULL DEFAULT 0,
			tags TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE baskets (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'open',
			closed_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE basket_lines (
			id TEXT PRIMARY KEY,
			basket_id TEXT NOT NULL,
			line_type TEXT NOT NULL,
			target_id TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price_pence INTEGER NOT NULL,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE (basket_id, line_type, target_id)
		)`,
		`CREATE TABLE ownerships (
			id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
			user_id TEXT NOT NULL,
			horse_id TEXT NOT NULL,
			shares INTEGER NOT NULL DEFAULT 0,
			renewed_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE (user_id, horse_id)
		)`,
		`CREATE TABLE purchases (
			id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
			user_id TEXT NOT NULL,
			horse_id TEXT NOT NULL,
			basket_id TEXT,
			quantity INTEGER NOT NULL,
			unit_price_pence INTEGER NOT NULL,
			occurred_at DATETIME NOT NULL,
			created_at DATETIME
		)`,
		`CREATE TABLE wallet_transactions (
			id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'posted',
			amount_pence INTEGER NOT NULL,
			memo TEXT,
			basket_id TEXT,
			created_at DATETIME
		)`,
	}
	for _, stmt := range ddl {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}

// purchaseFailRepo delegates to a real repository but refuses ledger writes,
// simulating a write failing after the wallet debit has been posted.
type purchaseFailRepo struct {
	ownerships.Repository
}

func (r *purchaseFailRepo) WithTx(tx *gorm.DB) ownerships.Repository {
	return &purchaseFailRepo{Repository: r.Repository.WithTx(tx)}
}

func (r *purchaseFailRepo) CreatePurchase(ctx context.Context, _ *models.Purchase) error {
	return errors.New("ledger write refused")
}

func newSQLiteCheckout(t *testing.T, conn *gorm.DB, owners ownerships.Repository) Service {
	t.Helper()
	if owners == nil {
		owners = ownerships.NewRepository(conn)
	}
	svc, err := NewService(ServiceParams{
		Tx:         db.NewWithConn(conn),
		Baskets:    basket.NewRepository(conn),
		Horses:     horses.NewRepository(conn),
		Ownerships: owners,
		Renewals:   renewals.NewRepository(conn),
		Wallet:     wallet.NewRepository(conn),
		Promos:     &fakeVerifier{},
		Notifier:   &recordingNotifier{},
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedHorseRow(t *testing.T, conn *gorm.DB, totalShares int, pricePence int64) *models.Horse {
	t.Helper()
	h := &models.Horse{
		ID:              uuid.New(),
		Name:            "Harbour Light " + uuid.NewString()[:8],
		TotalShares:     totalShares,
		SharePricePence: pricePence,
		IsActive:        true,
	}
	if err := conn.Create(h).Error; err != nil {
		t.Fatalf("seed horse: %v", err)
	}
	return h
}

func seedOpenBasketRow(t *testing.T, conn *gorm.DB, userID, horseID uuid.UUID, qty int, unitPrice int64) *models.Basket {
	t.Helper()
	b := &models.Basket{ID: uuid.New(), UserID: userID, Status: enums.BasketStatusOpen}
	if err := conn.Create(b).Error; err != nil {
		t.Fatalf("seed basket: %v", err)
	}
	line := &models.BasketLine{
		ID:             uuid.New(),
		BasketID:       b.ID,
		LineType:       enums.BasketLineTypeShare,
		TargetID:       horseID,
		Quantity:       qty,
		UnitPricePence: unitPrice,
	}
	if err := conn.Create(line).Error; err != nil {
		t.Fatalf("seed basket line: %v", err)
	}
	return b
}

func seedWalletCredit(t *testing.T, conn *gorm.DB, userID uuid.UUID, amount int64) {
	t.Helper()
	err := conn.Create(&models.WalletTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        enums.WalletTransactionTypeCredit,
		Status:      enums.WalletTransactionStatusPosted,
		AmountPence: amount,
		Memo:        "seed",
	}).Error
	if err != nil {
		t.Fatalf("seed wallet credit: %v", err)
	}
}

func TestExecuteRollsBackWalletDebitOnLedgerFailure(t *testing.T) {
	conn := newCheckoutDB(t)
	user := uuid.New()
	horse := seedHorseRow(t, conn, 100, 10_000)
	basketRow := seedOpenBasketRow(t, conn, user, horse.ID, 2, horse.SharePricePence)
	seedWalletCredit(t, conn, user, 20_000)

	svc := newSQLiteCheckout(t, conn, &purchaseFailRepo{Repository: ownerships.NewRepository(conn)})

	_, err := svc.Execute(context.Background(), user, Input{WalletOffsetRequestedPence: 20_000})
	if err == nil {
		t.Fatal("expected ledger failure to abort checkout")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}

	// The debit posted before the failing write must not survive the
	// rollback; only the seeded credit remains.
	var txns []models.WalletTransaction
	if err := conn.Where("user_id = ?", user).Find(&txns).Error; err != nil {
		t.Fatalf("list wallet rows: %v", err)
	}
	if len(txns) != 1 || txns[0].Type != enums.WalletTransactionTypeCredit {
		t.Fatalf("expected only the seeded credit to survive, got %d rows", len(txns))
	}

	var ownershipCount int64
	if err := conn.Model(&models.Ownership{}).Count(&ownershipCount).Error; err != nil {
		t.Fatalf("count ownerships: %v", err)
	}
	if ownershipCount != 0 {
		t.Fatalf("expected ownership upsert rolled back, got %d rows", ownershipCount)
	}

	var reloaded models.Basket
	if err := conn.First(&reloaded, "id = ?", basketRow.ID).Error; err != nil {
		t.Fatalf("reload basket: %v", err)
	}
	if reloaded.Status != enums.BasketStatusOpen {
		t.Fatalf("basket must stay open after rollback, got %s", reloaded.Status)
	}
}

func TestExecuteSecondBuyerBlockedByCommittedShares(t *testing.T) {
	conn := newCheckoutDB(t)
	horse := seedHorseRow(t, conn, 5, 10_000)

	first := uuid.New()
	second := uuid.New()
	seedOpenBasketRow(t, conn, first, horse.ID, 3, horse.SharePricePence)
	seedOpenBasketRow(t, conn, second, horse.ID, 3, horse.SharePricePence)

	svc := newSQLiteCheckout(t, conn, nil)

	receipt, err := svc.Execute(context.Background(), first, Input{})
	if err != nil {
		t.Fatalf("first checkout must succeed: %v", err)
	}
	if receipt.SubtotalPence != 30_000 {
		t.Fatalf("expected subtotal 30000, got %d", receipt.SubtotalPence)
	}

	var purchaseCount int64
	if err := conn.Model(&models.Purchase{}).Where("user_id = ?", first).Count(&purchaseCount).Error; err != nil {
		t.Fatalf("count purchases: %v", err)
	}
	if purchaseCount != 1 {
		t.Fatalf("expected committed purchase row, got %d", purchaseCount)
	}

	// The second buyer re-reads capacity under the same locked path and
	// must see the first buyer's committed shares.
	_, err = svc.Execute(context.Background(), second, Input{})
	if err == nil {
		t.Fatal("expected capacity conflict for the second buyer")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	var loserOwnerships int64
	if err := conn.Model(&models.Ownership{}).Where("user_id = ?", second).Count(&loserOwnerships).Error; err != nil {
		t.Fatalf("count ownerships: %v", err)
	}
	if loserOwnerships != 0 {
		t.Fatal("blocked checkout must leave no ownership rows")
	}
}
