package mailer

import "embed"

const (
	FromName               = "ParkHere"
	maxRetires             = 3
	UserWelcomeTemplate    = "user_welcome.tmpl"
	PaymentReceiptTemplate = "payment_receipt.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
