package email

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/medpraxis/practice-api/internal/config"
	"github.com/medpraxis/practice-api/internal/model"
)

// Service sends approval-decision notifications. Failures are logged, never
// surfaced: a decision must not fail because mail is down.
type Service interface {
	SendApprovalDecision(to, fullName, entity string, status model.ApprovalStatus)
}

type service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg config.SMTPConfig) Service {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *service) SendApprovalDecision(to, fullName, entity string, status model.ApprovalStatus) {
	subject := fmt.Sprintf("Your %s registration was %s", entity, status)
	body := fmt.Sprintf(
		"Dear %s,\r\n\r\nYour %s registration has been %s.\r\n\r\nMedPraxis",
		fullName, entity, status,
	)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		log.Warn().Err(err).Str("to", to).Str("entity", entity).Msg("failed to send approval notification")
	}
}

// Noop is used when SMTP is not configured.
type Noop struct{}

func (Noop) SendApprovalDecision(string, string, string, model.ApprovalStatus) {}
