// Package email sends notification emails over SMTP.
package email

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"settlement_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers a notification to one recipient.
type Sender interface {
	SendOutcomeEmail(ctx context.Context, toEmail, propertyAddress, outcome string, nextSteps []string) error
	SendMilestoneReminder(ctx context.Context, toEmail, propertyAddress, milestone string, targetDate time.Time) error
}

// NewSender builds the configured Sender. With email disabled it returns
// nil, which callers treat as delivery switched off.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return nil
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
	)
}

// SMTPSender implements Sender with a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
	}
}

var outcomeSubjects = map[string]string{
	"completed":   "Due diligence completed",
	"negotiating": "Due diligence outcome: negotiation required",
	"withdrawn":   "Due diligence outcome: withdrawal",
}

// SendOutcomeEmail sends the finalized outcome and its next steps.
func (s *SMTPSender) SendOutcomeEmail(ctx context.Context, toEmail, propertyAddress, outcome string, nextSteps []string) error {
	subject, ok := outcomeSubjects[outcome]
	if !ok {
		subject = "Due diligence update"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Due diligence for %s has finished with outcome: %s.\n\n", propertyAddress, outcome)
	body.WriteString("Next steps:\n")
	for i, step := range nextSteps {
		fmt.Fprintf(&body, "%d. %s\n", i+1, step)
	}

	return s.send(ctx, toEmail, fmt.Sprintf("%s: %s", subject, propertyAddress), body.String())
}

// SendMilestoneReminder warns a recipient that a critical milestone is coming up.
func (s *SMTPSender) SendMilestoneReminder(ctx context.Context, toEmail, propertyAddress, milestone string, targetDate time.Time) error {
	subject := fmt.Sprintf("Reminder: %s due %s", milestone, targetDate.Format("2 Jan 2006"))
	body := fmt.Sprintf("The %s milestone for %s is due on %s.\n", milestone, propertyAddress, targetDate.Format("Monday, 2 January 2006"))
	return s.send(ctx, toEmail, subject, body)
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

var _ Sender = (*SMTPSender)(nil)
