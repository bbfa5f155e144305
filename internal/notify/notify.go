// Package notify emails tenants about overdue rent.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/diewo77/go-rentals/internal/config"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(m Message) error
}

// Mailer sends messages through an SMTP relay.
type Mailer struct {
	cfg    config.MailConfig
	logger *logrus.Logger
}

// NewMailer returns a mailer using the relay in cfg.
func NewMailer(cfg config.MailConfig, logger *logrus.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// Send delivers m.
func (s *Mailer) Send(m Message) error {
	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = []string{m.To}
	e.Subject = m.Subject
	e.Text = []byte(m.Body)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := e.Send(s.cfg.Addr(), auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", m.To, err)
		return fmt.Errorf("send email: %w", err)
	}
	s.logger.Infof("Email sent to %s: %s", m.To, m.Subject)
	return nil
}

// LogSender writes messages to the log instead of mailing them. It is used
// when no SMTP relay is configured.
type LogSender struct {
	Logger *logrus.Logger
}

// Send logs m.
func (s LogSender) Send(m Message) error {
	s.Logger.WithFields(logrus.Fields{"to": m.To, "subject": m.Subject}).Info("email not sent: no SMTP relay configured")
	return nil
}

// New returns a Mailer when cfg names a relay and a LogSender otherwise.
func New(cfg config.MailConfig, logger *logrus.Logger) Sender {
	if cfg.Enabled() {
		return NewMailer(cfg, logger)
	}
	return LogSender{Logger: logger}
}

// OverdueNotice builds the reminder for an overdue payment. The payment must
// have its contract and tenant loaded.
func OverdueNotice(p *models.Payment) (Message, error) {
	if p.Contract == nil || p.Contract.Tenant == nil {
		return Message{}, fmt.Errorf("payment %d: contract and tenant not loaded", p.ID)
	}
	t := p.Contract.Tenant
	if t.Email == "" {
		return Message{}, fmt.Errorf("tenant %d has no email", t.ID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Estimado/a %s,\n\n", t.FullName)
	fmt.Fprintf(&b, "El alquiler del periodo %s (contrato %s", p.Period, p.Contract.Number)
	if prop := p.Contract.Property; prop != nil {
		fmt.Fprintf(&b, ", %s", prop.Address)
	}
	fmt.Fprintf(&b, ") venció el %s.\n", time.Time(p.DueDate).Format("02/01/2006"))
	fmt.Fprintf(&b, "Monto pendiente: Bs. %s\n", p.Outstanding().StringFixed(2))
	fmt.Fprintf(&b, "Días de atraso: %d\n", p.DaysLate)
	fmt.Fprintf(&b, "Mora acumulada: Bs. %s\n", p.LateFee.StringFixed(2))
	b.WriteString("\nLe solicitamos regularizar el pago a la brevedad.\n\nAdministración")

	return Message{
		To:      t.Email,
		Subject: fmt.Sprintf("Alquiler vencido %s - contrato %s", p.Period, p.Contract.Number),
		Body:    b.String(),
	}, nil
}
