package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends the service's transactional emails.
type Mailer interface {
	SendInvite(toEmail, senderName, groupName string, token uuid.UUID, expiresAt time.Time) error
	SendDebtReminder(toEmail, toName, senderName, groupName string, amount int64, message string) error
	SendMemberAdded(toEmail, toName, adderName, groupName string) error
}

// SendGridMailer sends email through SendGrid.
type SendGridMailer struct {
	client  *sendgrid.Client
	from    *mail.Email
	appName string
	appURL  string
	log     *slog.Logger
}

func NewSendGridMailer(apiKey, fromEmail, appName, appURL string, log *slog.Logger) *SendGridMailer {
	return &SendGridMailer{
		client:  sendgrid.NewSendClient(apiKey),
		from:    mail.NewEmail(appName, fromEmail),
		appName: appName,
		appURL:  appURL,
		log:     log,
	}
}

func (m *SendGridMailer) send(toEmail, toName, subject, htmlBody string) error {
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(m.from, subject, to, "", htmlBody)

	resp, err := m.client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}

	m.log.Info("email sent", "to", toEmail, "subject", subject)
	return nil
}

func (m *SendGridMailer) SendInvite(toEmail, senderName, groupName string, token uuid.UUID, expiresAt time.Time) error {
	subject := fmt.Sprintf("%s invited you to join %q on %s", senderName, groupName, m.appName)
	link := fmt.Sprintf("%s/invites/%s", m.appURL, token)
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #1DB954; margin-top: 0;">You're invited!</h2>
		<p><strong>%s</strong> invited you to join <strong>%q</strong> on %s.</p>
		<p>%s makes it easy to track shared spending with friends, roommates and groups.</p>
		<div style="margin: 24px 0;">
			<a href="%s" style="background: #1DB954; color: white; padding: 12px 32px; border-radius: 8px; text-decoration: none; font-weight: bold;">Join Now</a>
		</div>
		<p style="color: #999; font-size: 12px;">This invitation expires %s.</p>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">&mdash; %s</p>
	</div>
</body>
</html>`, senderName, groupName, m.appName, m.appName, link, expiresAt.Format("Jan 2 at 15:04 MST"), m.appName)

	return m.send(toEmail, "", subject, body)
}

func (m *SendGridMailer) SendDebtReminder(toEmail, toName, senderName, groupName string, amount int64, message string) error {
	subject := fmt.Sprintf("Reminder: you owe %s in %q", FormatAmount(amount), groupName)
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #e53e3e; margin-top: 0;">Friendly reminder</h2>
		<p>Hi <strong>%s</strong>,</p>
		<p><strong>%s</strong> reminds you that you owe <strong>%s</strong> in <strong>%q</strong>.</p>
		<div style="background: #f8f9fa; border-radius: 8px; padding: 16px; margin: 16px 0;">
			<p style="margin: 4px 0; color: #666;">%s</p>
		</div>
		<p>Open the app to settle up.</p>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">&mdash; %s</p>
	</div>
</body>
</html>`, toName, senderName, FormatAmount(amount), groupName, message, m.appName)

	return m.send(toEmail, toName, subject, body)
}

func (m *SendGridMailer) SendMemberAdded(toEmail, toName, adderName, groupName string) error {
	subject := fmt.Sprintf("You were added to %q", groupName)
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #1DB954; margin-top: 0;">Welcome to the group!</h2>
		<p>Hi <strong>%s</strong>,</p>
		<p><strong>%s</strong> added you to the group <strong>%q</strong>.</p>
		<p>Open the app to start tracking shared spending with your group.</p>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">&mdash; %s</p>
	</div>
</body>
</html>`, toName, adderName, groupName, m.appName)

	return m.send(toEmail, toName, subject, body)
}

// NoopMailer is used when no SendGrid key is configured: it logs instead of
// sending, so flows that end in an email still work in development.
type NoopMailer struct {
	log *slog.Logger
}

func NewNoopMailer(log *slog.Logger) *NoopMailer {
	return &NoopMailer{log: log}
}

func (m *NoopMailer) SendInvite(toEmail, senderName, groupName string, token uuid.UUID, expiresAt time.Time) error {
	m.log.Info("email disabled, skipping invite", "to", toEmail, "group", groupName, "token", token)
	return nil
}

func (m *NoopMailer) SendDebtReminder(toEmail, toName, senderName, groupName string, amount int64, message string) error {
	m.log.Info("email disabled, skipping debt reminder", "to", toEmail, "group", groupName)
	return nil
}

func (m *NoopMailer) SendMemberAdded(toEmail, toName, adderName, groupName string) error {
	m.log.Info("email disabled, skipping member added mail", "to", toEmail, "group", groupName)
	return nil
}

// FormatAmount renders an amount in minor units as a decimal string, e.g.
// 12345 -> "123.45".
func FormatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
