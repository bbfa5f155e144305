package services

import (
	"context"
	"time"

	"github.com/diewo77/go-rentals/internal/notify"
	"github.com/sirupsen/logrus"
)

// NoticeReport counts the overdue notices of one run.
type NoticeReport struct {
	Overdue int `json:"overdue"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// NotificationService emails tenants with overdue payments.
type NotificationService struct {
	payments *PaymentService
	sender   notify.Sender
	log      *logrus.Logger
}

// NewNotificationService returns a service sending through sender.
func NewNotificationService(payments *PaymentService, sender notify.Sender, log *logrus.Logger) *NotificationService {
	return &NotificationService{payments: payments, sender: sender, log: newLogger(log)}
}

// NotifyOverdue sends one notice per overdue payment as of asOf. Tenants
// without an email are skipped; a failed delivery does not stop the run.
func (s *NotificationService) NotifyOverdue(ctx context.Context, asOf time.Time) (*NoticeReport, error) {
	payments, err := s.payments.Overdue(ctx, asOf)
	if err != nil {
		return nil, err
	}
	rep := &NoticeReport{Overdue: len(payments)}
	for i := range payments {
		p := &payments[i]
		msg, err := notify.OverdueNotice(p)
		if err != nil {
			rep.Skipped++
			s.log.WithError(err).WithField("payment_id", p.ID).Debug("notice skipped")
			continue
		}
		if err := s.sender.Send(msg); err != nil {
			rep.Failed++
			continue
		}
		rep.Sent++
	}
	s.log.WithFields(logrus.Fields{
		"overdue": rep.Overdue, "sent": rep.Sent, "skipped": rep.Skipped, "failed": rep.Failed,
	}).Info("overdue notices processed")
	return rep, nil
}
