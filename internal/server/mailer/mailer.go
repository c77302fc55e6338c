// Package mailer sends outgoing email over SMTP. Delivery goes through a
// circuit breaker so a dead mail server fails requests fast instead of
// holding them for the SMTP dial timeout.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/qaboard/internal/logging"
	"github.com/dmitrijs2005/qaboard/internal/server/config"
	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"
)

// Email is a plain-text message.
type Email struct {
	To      []string
	Subject string
	Body    string
}

// Sender delivers a single email.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	from   string
	dialer dialer
	cb     *gobreaker.CircuitBreaker
	logger logging.Logger
}

func NewMailer(cfg *config.Config, logger logging.Logger) *Mailer {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return newMailer(cfg.SMTPFrom, d, logger)
}

func newMailer(from string, d dialer, logger logging.Logger) *Mailer {
	logger = logger.With("module", "mailer")

	st := gobreaker.Settings{
		Name:        "SMTP",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn(context.Background(), "circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &Mailer{
		from:   from,
		dialer: d,
		cb:     gobreaker.NewCircuitBreaker(st),
		logger: logger,
	}
}

func (m *Mailer) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/plain", email.Body)

	_, err := m.cb.Execute(func() (interface{}, error) {
		return nil, m.dialer.DialAndSend(msg)
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.logger.Info(ctx, "email sent", "subject", email.Subject)
	return nil
}
