package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
	"github.com/paddockshare/paddockshare-backend/pkg/pagination"
)

type stubRepo struct {
	rows       []models.Notification
	next       *pagination.Cursor
	lastQuery  listNotificationsParams
	mark       notificationMarkResult
	markAllN   int64
	failCreate error
	failList   error
	created    []*models.Notification
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, n *models.Notification) error {
	if s.failCreate != nil {
		return s.failCreate
	}
	n.ID = uuid.New()
	s.created = append(s.created, n)
	return nil
}

func (s *stubRepo) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	if s.failList != nil {
		return nil, nil, s.failList
	}
	s.lastQuery = params
	return s.rows, s.next, nil
}

func (s *stubRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	return s.mark, nil
}

func (s *stubRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	return s.markAllN, nil
}

func (s *stubRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestListRequiresUser(t *testing.T) {
	svc, _ := NewService(&stubRepo{})

	_, err := svc.List(context.Background(), ListParams{})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestListPassesCursorAndEncodesNext(t *testing.T) {
	next := pagination.Cursor{CreatedAt: time.Now().UTC(), ID: uuid.New()}
	repo := &stubRepo{
		rows: []models.Notification{{Title: "Draw complete"}},
		next: &next,
	}
	svc, _ := NewService(repo)

	userID := uuid.New()
	result, err := svc.List(context.Background(), ListParams{
		UserID:     userID,
		Limit:      10,
		Cursor:     pagination.EncodeCursor(next),
		UnreadOnly: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected one row got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatalf("expected next cursor to be encoded")
	}
	if repo.lastQuery.Cursor == nil || !repo.lastQuery.UnreadOnly {
		t.Fatalf("expected cursor and unread filter to reach the repo")
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	svc, _ := NewService(&stubRepo{})

	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "not-a-cursor"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestMarkReadNotFound(t *testing.T) {
	svc, _ := NewService(&stubRepo{mark: notificationMarkResult{Found: false}})

	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestMarkAllReadReturnsCount(t *testing.T) {
	svc, _ := NewService(&stubRepo{markAllN: 7})

	updated, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != 7 {
		t.Fatalf("expected 7 updated got %d", updated)
	}
}

func TestNotifyValidates(t *testing.T) {
	svc, _ := NewService(&stubRepo{})

	cases := []struct {
		name  string
		input NotifyInput
	}{
		{"missing user", NotifyInput{Type: enums.NotificationTypeGeneral, Title: "t"}},
		{"bad type", NotifyInput{UserID: uuid.New(), Type: "bogus", Title: "t"}},
		{"missing title", NotifyInput{UserID: uuid.New(), Type: enums.NotificationTypeGeneral}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Notify(context.Background(), tc.input)
			if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error got %v", err)
			}
		})
	}
}

func TestNotifyCreatesRow(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := NewService(repo)

	horseID := uuid.New()
	n, err := svc.Notify(context.Background(), NotifyInput{
		UserID:  uuid.New(),
		Type:    enums.NotificationTypeBallotResult,
		Title:   "You won",
		Body:    "Badge ballot result",
		HorseID: &horseID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.ID == uuid.Nil {
		t.Fatalf("expected assigned id")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one created row")
	}
}

func TestNotifyWrapsRepoFailure(t *testing.T) {
	svc, _ := NewService(&stubRepo{failCreate: errors.New("db down")})

	_, err := svc.Notify(context.Background(), NotifyInput{
		UserID: uuid.New(),
		Type:   enums.NotificationTypeGeneral,
		Title:  "t",
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error got %v", err)
	}
}
