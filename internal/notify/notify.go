// Package notify delivers one-time verification codes out of band. The code
// issuer only depends on the Notify method, so the delivery channel is
// swappable without touching the authentication state machine.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/otpgate/internal/domain"
	"github.com/otpgate/internal/infrastructure/smtp"
	"github.com/otpgate/internal/infrastructure/sns"
)

// LogNotifier writes the code to the process log. This is the local/dev
// channel matching the deployment where the code is simply echoed back.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, user *domain.User, code string) error {
	slog.Info("verification code issued", "username", user.Username, "code", code)
	return nil
}

// EmailNotifier sends the code to the user's registered email address.
type EmailNotifier struct {
	mailer smtp.Mailer
}

func NewEmail(mailer smtp.Mailer) *EmailNotifier {
	return &EmailNotifier{mailer: mailer}
}

func (n *EmailNotifier) Notify(_ context.Context, user *domain.User, code string) error {
	body := fmt.Sprintf("Your login verification code is %s. It expires in 5 minutes.", code)
	return n.mailer.SendEmail(user.Email, "Login verification code", body)
}

// SMSNotifier sends the code to a configured destination number. User records
// carry no phone number, so this channel routes to a shared operator number.
type SMSNotifier struct {
	sender sns.SMSSender
	to     string
}

func NewSMS(sender sns.SMSSender, to string) *SMSNotifier {
	return &SMSNotifier{sender: sender, to: to}
}

func (n *SMSNotifier) Notify(ctx context.Context, user *domain.User, code string) error {
	msg := fmt.Sprintf("Verification code for %s: %s", user.Username, code)
	return n.sender.SendSMS(ctx, n.to, msg)
}
