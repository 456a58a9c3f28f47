// Package notify delivers email to users.
package notify

import (
	"context"
	"fmt"
	"sync"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/send"
	"github.com/pkg/errors"
)

const passwordResetSubject = "Password reset token"

// Mailer sends one email and reports whether delivery failed.
type Mailer interface {
	Send(context.Context, message.Email) error
}

// SenderMailer delivers email through a grip sender. Sends are serialized so
// that a delivery failure is reported to the caller that caused it.
type SenderMailer struct {
	sender send.Sender
	mu     sync.Mutex
}

// NewSenderMailer wraps the environment's email sender.
func NewSenderMailer(env devcamper.Environment) (*SenderMailer, error) {
	sender, err := env.GetSender(devcamper.SenderEmail)
	if err != nil {
		return nil, errors.Wrap(err, "getting email sender")
	}
	return &SenderMailer{sender: sender}, nil
}

func (m *SenderMailer) Send(ctx context.Context, email message.Email) error {
	if len(email.Recipients) == 0 {
		return errors.New("email has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var sendErr error
	prev := m.sender.ErrorHandler()
	if err := m.sender.SetErrorHandler(func(err error, c message.Composer) {
		if err != nil {
			sendErr = err
		}
		if prev != nil {
			prev(err, c)
		}
	}); err != nil {
		return errors.Wrap(err, "capturing email delivery errors")
	}
	defer func() { _ = m.sender.SetErrorHandler(prev) }()

	m.sender.Send(message.NewEmailMessage(level.Notice, email))

	return errors.Wrapf(sendErr, "sending email '%s'", email.Subject)
}

// DisabledMailer rejects every email. It stands in when no mail server is
// configured.
type DisabledMailer struct{}

func (DisabledMailer) Send(context.Context, message.Email) error {
	return errors.New("email is not configured")
}

// MockMailer records the emails it is asked to send.
type MockMailer struct {
	Emails []message.Email
	Err    error
	mu     sync.Mutex
}

func (m *MockMailer) Send(_ context.Context, email message.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Emails = append(m.Emails, email)
	return nil
}

// PasswordResetEmail tells a user where to send their new password.
func PasswordResetEmail(to, resetURL string) message.Email {
	return message.Email{
		Recipients: []string{to},
		Subject:    passwordResetSubject,
		Body: fmt.Sprintf("You are receiving this email because a password reset was requested for your account. "+
			"Make a PUT request with your new password to:\n\n%s\n\n"+
			"The link expires in 10 minutes. If you did not request a reset you can ignore this email.", resetURL),
		PlainTextContents: true,
	}
}
