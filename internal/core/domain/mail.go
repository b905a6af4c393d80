package domain

// Mail job types understood by the mailer.
const (
	MailResetPassword = "reset_password"
)

// MailMessage is a queued outbound email.
type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

// ResetPasswordMailData fills the reset password template.
type ResetPasswordMailData struct {
	Name       string `json:"name"`
	Token      string `json:"token"`
	Expiration int    `json:"expiration"` // minutes
}
