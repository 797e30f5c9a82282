package services

import (
	"fmt"
	"net/smtp"

	"github.com/taskhive/taskhive-api/internal/config"
)

type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

func (s *EmailService) SendProjectInvite(to, projectTitle, inviterName, accessLevel string) error {
	subject := fmt.Sprintf("You've been given access to %s", projectTitle)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Project Access</h2>
			<p>Hi,</p>
			<p><strong>%s</strong> has shared the project <strong>%s</strong> with you (%s access).</p>
		</body>
		</html>
	`, inviterName, projectTitle, accessLevel)

	return s.Send(to, subject, body)
}

func (s *EmailService) SendServerInvite(to, serverName, inviterName, inviteURL string) error {
	subject := fmt.Sprintf("You've been invited to join %s", serverName)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Server Invitation</h2>
			<p>Hi,</p>
			<p><strong>%s</strong> has invited you to join <strong>%s</strong>.</p>
			<p><a href="%s">Click here to join</a></p>
		</body>
		</html>
	`, inviterName, serverName, inviteURL)

	return s.Send(to, subject, body)
}
