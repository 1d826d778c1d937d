package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/internal/basket"
	"github.com/paddockshare/paddockshare-backend/internal/horses"
	"github.com/paddockshare/paddockshare-backend/internal/ownerships"
	"github.com/paddockshare/paddockshare-backend/internal/promotions"
	"github.com/paddockshare/paddockshare-backend/internal/renewals"
	"github.com/paddockshare/paddockshare-backend/internal/wallet"
	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type promoVerifier interface {
	VerifyPlanned(ctx context.Context, userID, horseID uuid.UUID, plannedQty int) (*promotions.Issue, error)
}

// notifier receives the receipt after a successful commit. Failures are
// logged, never surfaced; the purchase already happened.
type notifier interface {
	CheckoutCompleted(ctx context.Context, userID uuid.UUID, receipt Receipt)
}

type nopNotifier struct{}

func (nopNotifier) CheckoutCompleted(context.Context, uuid.UUID, Receipt) {}

// Input is the checkout request.
type Input struct {
	WalletOffsetRequestedPence int64
	// ConfirmPromotionIssues accepts a checkout the buyer knows will not earn
	// the promotion. Without it, issues abort with a state conflict.
	ConfirmPromotionIssues bool
}

// Receipt summarizes a committed checkout.
type Receipt struct {
	BasketID           uuid.UUID                `json:"basket_id"`
	SubtotalPence      int64                    `json:"subtotal_pence"`
	WalletAppliedPence int64                    `json:"wallet_applied_pence"`
	AmountDuePence     int64                    `json:"amount_due_pence"`
	Purchases          []models.Purchase        `json:"purchases,omitempty"`
	Renewals           []models.RenewalResponse `json:"renewals,omitempty"`
	PromotionIssues    []promotions.Issue       `json:"promotion_issues,omitempty"`
	CompletedAt        time.Time                `json:"completed_at"`
}

// capacityShortfall is the 422 detail row for a horse that cannot cover the
// requested quantity.
type capacityShortfall struct {
	HorseID         uuid.UUID `json:"horse_id"`
	Requested       int       `json:"requested"`
	RemainingShares int       `json:"remaining_shares"`
}

// Service executes checkout: re-verify, commit atomically, notify.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID, input Input) (*Receipt, error)
}

// ServiceParams wires the checkout service dependencies.
type ServiceParams struct {
	Tx         txRunner
	Baskets    basket.Repository
	Horses     horses.Repository
	Ownerships ownerships.Repository
	Renewals   renewals.Repository
	Wallet     wallet.Repository
	Promos     promoVerifier
	Notifier   notifier
	Logger     *logger.Logger
}

type service struct {
	tx         txRunner
	baskets    basket.Repository
	horses     horses.Repository
	ownerships ownerships.Repository
	renewals   renewals.Repository
	wallet     wallet.Repository
	promos     promoVerifier
	notifier   notifier
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Baskets == nil {
		return nil, fmt.Errorf("basket repository required")
	}
	if params.Horses == nil {
		return nil, fmt.Errorf("horses repository required")
	}
	if params.Ownerships == nil {
		return nil, fmt.Errorf("ownerships repository required")
	}
	if params.Renewals == nil {
		return nil, fmt.Errorf("renewals repository required")
	}
	if params.Wallet == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if params.Promos == nil {
		return nil, fmt.Errorf("promotion verifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifier == nil {
		params.Notifier = nopNotifier{}
	}
	return &service{
		tx:         params.Tx,
		baskets:    params.Baskets,
		horses:     params.Horses,
		ownerships: params.Ownerships,
		renewals:   params.Renewals,
		wallet:     params.Wallet,
		promos:     params.Promos,
		notifier:   params.Notifier,
		logg:       params.Logger,
		now:        time.Now,
	}, nil
}

// Execute runs checkout for the user's open basket. Capacity, promotion
// state and the wallet balance are all re-verified under the transaction;
// nothing is written until every check passes, and everything commits
// together or not at all.
func (s *service) Execute(ctx context.Context, userID uuid.UUID, input Input) (*Receipt, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.WalletOffsetRequestedPence < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wallet offset cannot be negative")
	}

	var receipt *Receipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		committed, err := s.executeInTx(ctx, tx, userID, input)
		if err != nil {
			return err
		}
		receipt = committed
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Confirmation email and in-app notification are best effort; the
	// purchase is already committed.
	s.notifier.CheckoutCompleted(ctx, userID, *receipt)
	return receipt, nil
}

func (s *service) executeInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, input Input) (*Receipt, error) {
	baskets := s.baskets.WithTx(tx)
	horsesRepo := s.horses.WithTx(tx)
	ownershipsRepo := s.ownerships.WithTx(tx)
	renewalsRepo := s.renewals.WithTx(tx)
	walletRepo := s.wallet.WithTx(tx)

	openBasket, err := baskets.FindOpenByUserForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no open basket to check out")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock basket")
	}
	if len(openBasket.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "basket is empty")
	}

	shareLines, renewalLines := splitLines(openBasket.Lines)

	// Horse rows are locked one by one in line order; competing checkouts
	// for the same horse serialize here, so every later read sees the
	// winner's committed writes.
	lockedHorses := make(map[uuid.UUID]*models.Horse, len(shareLines))
	var shortfalls []capacityShortfall
	for _, line := range shareLines {
		horse, err := horsesRepo.FindByIDForUpdate(ctx, line.TargetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "horse no longer available")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock horse")
		}
		if !horse.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "horse is no longer open for purchase")
		}
		lockedHorses[horse.ID] = horse

		sold, err := horsesRepo.SoldShares(ctx, horse.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum sold shares")
		}
		if sold+line.Quantity > horse.TotalShares {
			shortfalls = append(shortfalls, capacityShortfall{
				HorseID:         horse.ID,
				Requested:       line.Quantity,
				RemainingShares: maxInt(horse.TotalShares-sold, 0),
			})
		}
	}
	if len(shortfalls) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "not enough shares remaining").
			WithDetails(map[string]any{"capacity": shortfalls})
	}

	// Promotion state is re-verified now, after the horse locks, so the
	// answer cannot be invalidated by a concurrent buyer. A verification
	// failure aborts before any write; promotion credit is never granted
	// on unverified data.
	var issues []promotions.Issue
	for _, line := range shareLines {
		issue, err := s.promos.VerifyPlanned(ctx, userID, line.TargetID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if issue != nil {
			issues = append(issues, *issue)
		}
	}
	if len(issues) > 0 && !input.ConfirmPromotionIssues {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "promotion terms no longer met").
			WithDetails(map[string]any{"promotion_issues": issues})
	}

	var subtotal int64
	for _, line := range openBasket.Lines {
		subtotal += line.SubtotalPence()
	}

	walletApplied, err := s.applyWalletOffset(ctx, walletRepo, userID, openBasket.ID, input.WalletOffsetRequestedPence, subtotal)
	if err != nil {
		return nil, err
	}

	completedAt := s.now().UTC()
	receipt := &Receipt{
		BasketID:           openBasket.ID,
		SubtotalPence:      subtotal,
		WalletAppliedPence: walletApplied,
		AmountDuePence:     subtotal - walletApplied,
		PromotionIssues:    issues,
		CompletedAt:        completedAt,
	}

	for _, line := range shareLines {
		if err := ownershipsRepo.AddShares(ctx, userID, line.TargetID, line.Quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record ownership")
		}
		purchase := &models.Purchase{
			UserID:         userID,
			HorseID:        line.TargetID,
			BasketID:       &openBasket.ID,
			Quantity:       line.Quantity,
			UnitPricePence: line.UnitPricePence,
			OccurredAt:     completedAt,
		}
		if err := ownershipsRepo.CreatePurchase(ctx, purchase); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append purchase ledger")
		}
		receipt.Purchases = append(receipt.Purchases, *purchase)
	}

	for _, line := range renewalLines {
		cycle, err := renewalsRepo.FindByID(ctx, line.TargetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "renewal cycle no longer exists")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load renewal cycle")
		}
		if !cycle.AcceptsResponsesAt(completedAt) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "renewal cycle has closed")
		}
		if _, err := renewalsRepo.FindResponse(ctx, cycle.ID, userID); err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shares already renewed for this cycle")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check renewal response")
		}

		response := &models.RenewalResponse{
			CycleID:        cycle.ID,
			UserID:         userID,
			SharesRenewed:  line.Quantity,
			UnitPricePence: line.UnitPricePence,
		}
		if err := renewalsRepo.CreateResponse(ctx, response); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record renewal")
		}
		if err := ownershipsRepo.MarkRenewed(ctx, userID, cycle.HorseID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark ownership renewed")
		}
		receipt.Renewals = append(receipt.Renewals, *response)
	}

	openBasket.ClosedAt = &completedAt
	if err := baskets.Close(ctx, openBasket); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close basket")
	}
	return receipt, nil
}

// applyWalletOffset posts the debit covering min(requested, balance,
// subtotal). The balance check and the debit run under the same transaction
// so the wallet can never go negative.
func (s *service) applyWalletOffset(ctx context.Context, walletRepo wallet.Repository, userID, basketID uuid.UUID, requested, subtotal int64) (int64, error) {
	if requested == 0 || subtotal == 0 {
		return 0, nil
	}

	credits, debits, err := walletRepo.PostedTotals(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replay wallet ledger")
	}
	balance := credits - debits
	if balance < 0 {
		balance = 0
	}

	applied := requested
	if balance < applied {
		applied = balance
	}
	if subtotal < applied {
		applied = subtotal
	}
	if applied == 0 {
		return 0, nil
	}

	debit := &models.WalletTransaction{
		UserID:      userID,
		Type:        enums.WalletTransactionTypeDebit,
		Status:      enums.WalletTransactionStatusPosted,
		AmountPence: applied,
		Memo:        "checkout offset",
		BasketID:    &basketID,
	}
	if err := walletRepo.Create(ctx, debit); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post wallet debit")
	}
	return applied, nil
}

func splitLines(lines []models.BasketLine) (shares, renewalLines []models.BasketLine) {
	for _, line := range lines {
		switch line.LineType {
		case enums.BasketLineTypeShare:
			shares = append(shares, line)
		case enums.BasketLineTypeRenewal:
			renewalLines = append(renewalLines, line)
		}
	}
	return shares, renewalLines
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
