package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/internal/checkout"
	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
	"github.com/paddockshare/paddockshare-backend/pkg/mail"
)

type captureSender struct {
	sent chan mail.Message
}

func (c *captureSender) Send(ctx context.Context, msg mail.Message) error {
	c.sent <- msg
	return nil
}

type stubUsers struct {
	user *models.User
}

func (s *stubUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.user, nil
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *stubRepo, *captureSender) {
	t.Helper()
	repo := &stubRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	sender := &captureSender{sent: make(chan mail.Message, 1)}
	users := &stubUsers{user: &models.User{Email: "owner@example.com", DisplayName: "Jo Bloggs"}}
	dispatcher, err := NewDispatcher(svc, sender, users, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return dispatcher, repo, sender
}

func waitForMail(t *testing.T, sender *captureSender) mail.Message {
	t.Helper()
	select {
	case msg := <-sender.sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for email")
		return mail.Message{}
	}
}

func TestCheckoutCompletedNotifiesAndEmails(t *testing.T) {
	dispatcher, repo, sender := newTestDispatcher(t)

	dispatcher.CheckoutCompleted(context.Background(), uuid.New(), checkout.Receipt{
		SubtotalPence: 19000,
		Purchases:     []models.Purchase{{Quantity: 2}},
	})

	msg := waitForMail(t, sender)
	if msg.ToEmail != "owner@example.com" {
		t.Fatalf("unexpected recipient %s", msg.ToEmail)
	}
	if msg.Subject != "Purchase confirmed" {
		t.Fatalf("unexpected subject %s", msg.Subject)
	}
	if len(repo.created) != 1 || repo.created[0].Type != enums.NotificationTypePurchaseConfirmed {
		t.Fatalf("expected a purchase notification row")
	}
}

func TestCheckoutCompletedRenewalOnlyUsesRenewalType(t *testing.T) {
	dispatcher, repo, sender := newTestDispatcher(t)

	dispatcher.CheckoutCompleted(context.Background(), uuid.New(), checkout.Receipt{
		SubtotalPence: 9500,
		Renewals:      []models.RenewalResponse{{SharesRenewed: 1}},
	})

	msg := waitForMail(t, sender)
	if msg.Subject != "Renewal confirmed" {
		t.Fatalf("unexpected subject %s", msg.Subject)
	}
	if len(repo.created) != 1 || repo.created[0].Type != enums.NotificationTypeRenewalConfirmed {
		t.Fatalf("expected a renewal notification row")
	}
}

func TestBallotDecidedWinnerAndNonWinner(t *testing.T) {
	dispatcher, repo, sender := newTestDispatcher(t)
	ballot := models.Ballot{Title: "Spring stable visit"}

	dispatcher.BallotDecided(context.Background(), uuid.New(), ballot, enums.BallotOutcomeWinner)
	winner := waitForMail(t, sender)

	dispatcher.BallotDecided(context.Background(), uuid.New(), ballot, enums.BallotOutcomeNonWinner)
	nonWinner := waitForMail(t, sender)

	if winner.PlainBody == nonWinner.PlainBody {
		t.Fatalf("expected distinct winner and non-winner wording")
	}
	if len(repo.created) != 2 {
		t.Fatalf("expected two notification rows got %d", len(repo.created))
	}
	for _, n := range repo.created {
		if n.Type != enums.NotificationTypeBallotResult {
			t.Fatalf("unexpected notification type %s", n.Type)
		}
	}
}
