package mailer

type Service interface {
	SendMagicLink(toEmail, magicLink string) error
}
