package horses

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/internal/promotions"
	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

type stubRepo struct {
	horse   *models.Horse
	sold    int
	soldErr error
	updated *models.Horse
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }
func (s *stubRepo) Create(ctx context.Context, horse *models.Horse) error {
	horse.ID = uuid.New()
	return nil
}
func (s *stubRepo) Update(ctx context.Context, horse *models.Horse) error {
	s.updated = horse
	return nil
}
func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Horse, error) {
	if s.horse == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.horse, nil
}
func (s *stubRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Horse, error) {
	return s.FindByID(ctx, id)
}
func (s *stubRepo) List(ctx context.Context, params ListParams) ([]models.Horse, error) {
	if s.horse == nil {
		return nil, nil
	}
	return []models.Horse{*s.horse}, nil
}
func (s *stubRepo) SoldShares(ctx context.Context, horseID uuid.UUID) (int, error) {
	if s.soldErr != nil {
		return 0, s.soldErr
	}
	return s.sold, nil
}

type stubPromos struct {
	banner *promotions.Banner
	err    error
}

func (s *stubPromos) BannerForHorse(ctx context.Context, horseID uuid.UUID, userID uuid.UUID) (*promotions.Banner, error) {
	return s.banner, s.err
}
func (s *stubPromos) VerifyPlanned(ctx context.Context, userID, horseID uuid.UUID, plannedQty int) (*promotions.Issue, error) {
	return nil, nil
}
func (s *stubPromos) Create(ctx context.Context, input promotions.CreatePromotionInput) (*models.Promotion, error) {
	return nil, nil
}
func (s *stubPromos) Update(ctx context.Context, id uuid.UUID, input promotions.UpdatePromotionInput) (*models.Promotion, error) {
	return nil, nil
}
func (s *stubPromos) ListByHorse(ctx context.Context, horseID uuid.UUID) ([]models.Promotion, error) {
	return nil, nil
}

func newTestService(t *testing.T, repo Repository, promos promotions.Service) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Promos: promos,
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func testHorse(total int) *models.Horse {
	return &models.Horse{
		ID:              uuid.New(),
		Name:            "Harbour Light",
		TotalShares:     total,
		SharePricePence: 9_500,
		IsActive:        true,
	}
}

func TestDetailComputesRemaining(t *testing.T) {
	horse := testHorse(100)
	svc := newTestService(t, &stubRepo{horse: horse, sold: 37}, &stubPromos{})

	detail, err := svc.Detail(context.Background(), horse.ID, uuid.Nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.SoldShares != 37 || detail.RemainingShares != 63 {
		t.Fatalf("unexpected availability %d/%d", detail.SoldShares, detail.RemainingShares)
	}
}

func TestDetailNotFound(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubPromos{})
	_, err := svc.Detail(context.Background(), uuid.New(), uuid.Nil)
	if err == nil {
		t.Fatal("expected not found")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDetailPromotionFailsClosed(t *testing.T) {
	horse := testHorse(100)
	svc := newTestService(t, &stubRepo{horse: horse}, &stubPromos{err: errors.New("timeout")})

	detail, err := svc.Detail(context.Background(), horse.ID, uuid.New())
	if err != nil {
		t.Fatalf("page must render despite banner failure: %v", err)
	}
	if detail.Promotion != nil {
		t.Fatal("no banner may be shown on unverified data")
	}
	if !detail.PromotionUnavailable {
		t.Fatal("expected the unavailable flag")
	}
}

func TestDetailIncludesBanner(t *testing.T) {
	horse := testHorse(100)
	banner := &promotions.Banner{PromotionID: uuid.New(), Label: "founders"}
	svc := newTestService(t, &stubRepo{horse: horse}, &stubPromos{banner: banner})

	detail, err := svc.Detail(context.Background(), horse.ID, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Promotion == nil || detail.Promotion.PromotionID != banner.PromotionID {
		t.Fatal("banner not forwarded")
	}
	if detail.PromotionUnavailable {
		t.Fatal("unavailable flag must stay clear on success")
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	horse := testHorse(10)
	svc := newTestService(t, &stubRepo{horse: horse, sold: 12}, &stubPromos{})

	detail, err := svc.Detail(context.Background(), horse.ID, uuid.Nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.RemainingShares != 0 {
		t.Fatalf("remaining must floor at zero, got %d", detail.RemainingShares)
	}
}

func TestUpdateRejectsShrinkBelowSold(t *testing.T) {
	horse := testHorse(100)
	repo := &stubRepo{horse: horse, sold: 40}
	svc := newTestService(t, repo, &stubPromos{})

	total := 30
	_, err := svc.Update(context.Background(), horse.ID, UpdateHorseInput{TotalShares: &total})
	if err == nil {
		t.Fatal("expected state conflict")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubPromos{})
	cases := []CreateHorseInput{
		{TotalShares: 100, SharePricePence: 1000},
		{Name: "x", SharePricePence: 1000},
		{Name: "x", TotalShares: 100},
	}
	for i, input := range cases {
		if _, err := svc.Create(context.Background(), input); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
