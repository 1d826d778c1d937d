package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/internal/checkout"
	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
	"github.com/paddockshare/paddockshare-backend/pkg/mail"
)

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Dispatcher turns domain events into in-app notifications and
// transactional email. Every dispatch is best effort: the triggering
// operation has already committed, so failures are logged and dropped.
type Dispatcher struct {
	svc     Service
	mailer  mail.Sender
	users   userReader
	logg    *logger.Logger
	timeout time.Duration
}

// NewDispatcher wires the notification dispatcher.
func NewDispatcher(svc Service, mailer mail.Sender, users userReader, logg *logger.Logger) (*Dispatcher, error) {
	if svc == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if users == nil {
		return nil, fmt.Errorf("user reader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{
		svc:     svc,
		mailer:  mailer,
		users:   users,
		logg:    logg,
		timeout: 15 * time.Second,
	}, nil
}

// CheckoutCompleted records the purchase confirmation and emails the buyer.
// Runs in its own goroutine with a detached context; the request that
// triggered it has already returned.
func (d *Dispatcher) CheckoutCompleted(ctx context.Context, userID uuid.UUID, receipt checkout.Receipt) {
	go func() {
		dctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		dctx = d.logg.WithUserID(dctx, userID.String())

		title := "Purchase confirmed"
		notifType := enums.NotificationTypePurchaseConfirmed
		if len(receipt.Purchases) == 0 && len(receipt.Renewals) > 0 {
			title = "Renewal confirmed"
			notifType = enums.NotificationTypeRenewalConfirmed
		}
		body := fmt.Sprintf("Order total £%.2f, wallet credit applied £%.2f.",
			float64(receipt.SubtotalPence)/100, float64(receipt.WalletAppliedPence)/100)

		if _, err := d.svc.Notify(dctx, NotifyInput{
			UserID: userID,
			Type:   notifType,
			Title:  title,
			Body:   body,
		}); err != nil {
			d.logg.Error(dctx, "record checkout notification", err)
		}

		d.email(dctx, userID, title, body)
	}()
}

// BallotDecided records the draw outcome for one entrant and emails them.
func (d *Dispatcher) BallotDecided(ctx context.Context, userID uuid.UUID, ballot models.Ballot, outcome enums.BallotOutcome) {
	go func() {
		dctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		dctx = d.logg.WithUserID(dctx, userID.String())

		title := fmt.Sprintf("Ballot result: %s", ballot.Title)
		body := "You were not drawn this time. Every entry counts the same in the next draw."
		if outcome == enums.BallotOutcomeWinner {
			body = "You were drawn! Check your email for what happens next."
		}

		if _, err := d.svc.Notify(dctx, NotifyInput{
			UserID:  userID,
			Type:    enums.NotificationTypeBallotResult,
			Title:   title,
			Body:    body,
			HorseID: ballot.HorseID,
		}); err != nil {
			d.logg.Error(dctx, "record ballot notification", err)
		}

		d.email(dctx, userID, title, body)
	}()
}

func (d *Dispatcher) email(ctx context.Context, userID uuid.UUID, subject, body string) {
	user, err := d.users.FindByID(ctx, userID)
	if err != nil {
		d.logg.Error(ctx, "load user for email", err)
		return
	}
	err = d.mailer.Send(ctx, mail.Message{
		ToEmail:   user.Email,
		ToName:    user.DisplayName,
		Subject:   subject,
		PlainBody: body,
	})
	if err != nil {
		d.logg.Error(ctx, "send email", err)
	}
}
