package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/budgetbook/backend/internal/config"
)

// Sender delivers outgoing mail over SMTP.
type Sender interface {
	SendPasswordReset(to, resetURL string) error
}

type Mailer struct {
	dialer *gomail.Dialer
	sender string
}

func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		sender: cfg.Sender,
	}
}

// SendPasswordReset sends the reset link. Delivery is best effort; the caller
// logs failures and shows the user a generic message either way.
func (m *Mailer) SendPasswordReset(to, resetURL string) error {
	body := fmt.Sprintf(`Click the link to reset your password:

%s

If you did not make this request, do nothing and the password will not be changed.
`, resetURL)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password reset request")
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}
