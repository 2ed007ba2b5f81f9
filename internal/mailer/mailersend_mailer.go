package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendMagicLink(toEmail, magicLink string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Your Magic Link for Lead Chat App"
	html := fmt.Sprintf(`
		<h1>Welcome to Lead Chat App!</h1>
		<p>Click the button below to log in:</p>
		<p><a href="%s" style="background-color: #4CAF50; color: white; padding: 15px 32px; text-decoration: none; display: inline-block; font-size: 16px;">Log In</a></p>
		<p>If the button doesn't work, copy and paste this link into your browser:</p>
		<p>%s</p>
		<p>This link will expire in 1 hour for security reasons.</p>
		<p>If you didn't request this login link, please ignore this email.</p>
	`, magicLink, magicLink)

	text := fmt.Sprintf("Log in to Lead Chat App with this link: %s\n\nThis link will expire in 1 hour.", magicLink)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(text)
	msg.SetHTML(html)

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
