package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/paddockshare/paddockshare-backend/pkg/config"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

// Message is one outbound transactional email.
type Message struct {
	ToEmail   string
	ToName    string
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client sends mail through Sendgrid.
type Client struct {
	sg       *sendgrid.Client
	fromMail string
	fromName string
}

// New builds a Sendgrid-backed sender. Returns an error when the API key is
// missing; callers that tolerate a disabled mailer should use NewFromConfig.
func New(cfg config.MailConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	return &Client{
		sg:       sendgrid.NewSendClient(cfg.SendgridAPIKey),
		fromMail: cfg.DefaultFrom,
		fromName: cfg.DefaultName,
	}, nil
}

// NewFromConfig returns a working client when mail is configured and a
// logging no-op sender otherwise, so environments without a Sendgrid key
// still boot.
func NewFromConfig(cfg config.MailConfig, logg *logger.Logger) Sender {
	client, err := New(cfg)
	if err != nil {
		if logg != nil {
			logg.Warn(context.Background(), "outbound mail disabled: no sendgrid key")
		}
		return discardSender{logg: logg}
	}
	return client
}

// Send delivers one message. Sendgrid treats 2xx as accepted.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if msg.ToEmail == "" {
		return fmt.Errorf("recipient email is required")
	}

	from := sgmail.NewEmail(c.fromName, c.fromMail)
	to := sgmail.NewEmail(msg.ToName, msg.ToEmail)
	plain := msg.PlainBody
	if plain == "" {
		plain = msg.Subject
	}
	email := sgmail.NewSingleEmail(from, msg.Subject, to, plain, msg.HTMLBody)

	resp, err := c.sg.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected mail: status %d", resp.StatusCode)
	}
	return nil
}

type discardSender struct {
	logg *logger.Logger
}

func (d discardSender) Send(ctx context.Context, msg Message) error {
	if d.logg != nil {
		d.logg.Info(d.logg.WithField(ctx, "subject", msg.Subject), "mail discarded: sender disabled")
	}
	return nil
}
