package mailer

import (
	"fmt"

	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/logger"
)

type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendMagicLink(toEmail, magicLink string) error {
	logger.Info("📧 [DEV MAIL] Magic Link Email",
		"to", toEmail,
		"magic_link", magicLink,
	)

	fmt.Printf("\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"📧 MAGIC LINK EMAIL (DEV MODE)\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"To: %s\n"+
		"Subject: Your Magic Link for Lead Chat App\n"+
		"\n"+
		"Magic Link: %s\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n",
		toEmail, magicLink)

	return nil
}
