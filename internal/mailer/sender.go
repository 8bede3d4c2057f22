package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

//go:generate mockgen -source=sender.go -destination=mocks/mocks.go -package=mocks

// Sender отправляет письмо с html и текстовой версией тела.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, text, html string) error
}

type SMTPSender struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewSMTPSender(host, port, user, pass, from string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from}
}

func (s *SMTPSender) SendEmail(_ context.Context, to, subject, text, html string) error {
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	auth := smtp.PlainAuth("", s.user, s.pass, s.host)

	e := email.NewEmail()
	e.From = s.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(text)
	if html != "" {
		e.HTML = []byte(html)
	}

	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("sending email to %s: %w", to, err)
	}
	return nil
}
