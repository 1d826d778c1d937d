package promotions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
)

type stubRepo struct {
	promo     *models.Promotion
	promoErr  error
	purchases []QualifyingPurchase
	ledgerErr error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }
func (s *stubRepo) Create(ctx context.Context, promo *models.Promotion) error {
	promo.ID = uuid.New()
	return nil
}
func (s *stubRepo) Update(ctx context.Context, promo *models.Promotion) error { return nil }
func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	if s.promo == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.promo, nil
}
func (s *stubRepo) FindEnabledByHorse(ctx context.Context, horseID uuid.UUID) (*models.Promotion, error) {
	if s.promoErr != nil {
		return nil, s.promoErr
	}
	if s.promo == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.promo, nil
}
func (s *stubRepo) ListByHorse(ctx context.Context, horseID uuid.UUID) ([]models.Promotion, error) {
	if s.promo == nil {
		return nil, nil
	}
	return []models.Promotion{*s.promo}, nil
}
func (s *stubRepo) ListQualifyingPurchases(ctx context.Context, promo models.Promotion) ([]QualifyingPurchase, error) {
	if s.ledgerErr != nil {
		return nil, s.ledgerErr
	}
	return s.purchases, nil
}

func TestBannerForHorseNoPromotion(t *testing.T) {
	svc, _ := NewService(&stubRepo{})
	banner, err := svc.BannerForHorse(context.Background(), uuid.New(), uuid.Nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if banner != nil {
		t.Fatal("expected no banner without a promotion")
	}
}

func TestBannerForHorseFailsClosedOnStoreError(t *testing.T) {
	svc, _ := NewService(&stubRepo{promoErr: errors.New("connection reset")})
	_, err := svc.BannerForHorse(context.Background(), uuid.New(), uuid.Nil)
	if err == nil {
		t.Fatal("expected error when the store is unavailable")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestBannerForHorseFailsClosedOnLedgerError(t *testing.T) {
	promo := activePromo(3, 2)
	svc, _ := NewService(&stubRepo{promo: &promo, ledgerErr: errors.New("timeout")})
	_, err := svc.BannerForHorse(context.Background(), promo.HorseID, uuid.New())
	if err == nil {
		t.Fatal("expected error when the ledger cannot be replayed")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestBannerForHorseIncludesQualification(t *testing.T) {
	promo := activePromo(2, 3)
	user := uuid.New()
	now := time.Now().UTC()
	svc, _ := NewService(&stubRepo{
		promo:     &promo,
		purchases: []QualifyingPurchase{qualifying(user, 3, now.Add(-time.Hour))},
	})

	banner, err := svc.BannerForHorse(context.Background(), promo.HorseID, user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if banner == nil {
		t.Fatal("expected a banner")
	}
	if banner.Evaluation.Claimed != 1 || banner.Evaluation.Remaining != 1 {
		t.Fatalf("unexpected evaluation %+v", banner.Evaluation)
	}
	if !banner.You.Qualified || banner.You.Rank != 1 {
		t.Fatalf("expected viewer qualified at rank 1, got %+v", banner.You)
	}
}

func TestVerifyPlannedNoPromotion(t *testing.T) {
	svc, _ := NewService(&stubRepo{})
	issue, err := svc.VerifyPlanned(context.Background(), uuid.New(), uuid.New(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issue != nil {
		t.Fatalf("expected no issue, got %+v", issue)
	}
}

func TestVerifyPlannedErrorsBeforeGrantingCredit(t *testing.T) {
	svc, _ := NewService(&stubRepo{promoErr: errors.New("connection reset")})
	_, err := svc.VerifyPlanned(context.Background(), uuid.New(), uuid.New(), 3)
	if err == nil {
		t.Fatal("expected error when the store is unavailable")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestVerifyPlannedNeedsMore(t *testing.T) {
	promo := activePromo(2, 5)
	svc, _ := NewService(&stubRepo{promo: &promo})

	issue, err := svc.VerifyPlanned(context.Background(), uuid.New(), promo.HorseID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issue == nil || issue.Reason != IssueReasonNeedsMore {
		t.Fatalf("expected needs_more issue, got %+v", issue)
	}
	if issue.NeededAdditional != 2 {
		t.Fatalf("expected 2 additional shares needed, got %d", issue.NeededAdditional)
	}
}

func TestVerifyPlannedQuotaFull(t *testing.T) {
	promo := activePromo(1, 1)
	now := time.Now().UTC()
	svc, _ := NewService(&stubRepo{
		promo:     &promo,
		purchases: []QualifyingPurchase{qualifying(uuid.New(), 1, now.Add(-time.Hour))},
	})

	issue, err := svc.VerifyPlanned(context.Background(), uuid.New(), promo.HorseID, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issue == nil || issue.Reason != IssueReasonFull {
		t.Fatalf("expected full issue, got %+v", issue)
	}
}

func TestVerifyPlannedAlreadyQualified(t *testing.T) {
	promo := activePromo(1, 3)
	user := uuid.New()
	now := time.Now().UTC()
	svc, _ := NewService(&stubRepo{
		promo:     &promo,
		purchases: []QualifyingPurchase{qualifying(user, 3, now.Add(-time.Hour))},
	})

	// Buyer already holds the slot; a small top-up order raises no issue.
	issue, err := svc.VerifyPlanned(context.Background(), user, promo.HorseID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issue != nil {
		t.Fatalf("expected no issue for a qualified buyer, got %+v", issue)
	}
}

func TestVerifyPlannedInactivePromotionSilent(t *testing.T) {
	promo := activePromo(2, 3)
	promo.Enabled = false
	svc, _ := NewService(&stubRepo{promo: &promo})

	issue, err := svc.VerifyPlanned(context.Background(), uuid.New(), promo.HorseID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issue != nil {
		t.Fatalf("expected disabled promotion to be silent, got %+v", issue)
	}
}

func TestCreatePromotionValidation(t *testing.T) {
	svc, _ := NewService(&stubRepo{})

	cases := []CreatePromotionInput{
		{Quota: 5, MinShares: 1, Label: "x"},
		{HorseID: uuid.New(), MinShares: 1, Label: "x"},
		{HorseID: uuid.New(), Quota: 5, Label: "x"},
		{HorseID: uuid.New(), Quota: 5, MinShares: 1},
	}
	for i, input := range cases {
		if _, err := svc.Create(context.Background(), input); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		} else if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestCreatePromotionRejectsInvertedWindow(t *testing.T) {
	svc, _ := NewService(&stubRepo{})
	start := time.Now().UTC()
	end := start.Add(-time.Hour)
	_, err := svc.Create(context.Background(), CreatePromotionInput{
		HorseID:   uuid.New(),
		Quota:     3,
		MinShares: 2,
		Label:     "founders",
		StartsAt:  &start,
		EndsAt:    &end,
	})
	if err == nil {
		t.Fatal("expected validation error for inverted window")
	}
}

func TestUpdatePromotionNotFound(t *testing.T) {
	svc, _ := NewService(&stubRepo{})
	enabled := true
	_, err := svc.Update(context.Background(), uuid.New(), UpdatePromotionInput{Enabled: &enabled})
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
