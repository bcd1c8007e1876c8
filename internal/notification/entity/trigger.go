package entity

// TriggerKey names the event an e-mail is sent for.
type TriggerKey string

const (
	TriggerKeyOtpCode       TriggerKey = "otp_code"
	TriggerKeyPasswordReset TriggerKey = "password_reset"
)

func (t TriggerKey) String() string {
	return string(t)
}

// Subject returns the e-mail subject line of the trigger.
func (t TriggerKey) Subject() string {
	switch t {
	case TriggerKeyOtpCode:
		return "Your verification code"
	case TriggerKeyPasswordReset:
		return "Reset your password"
	default:
		return ""
	}
}

// Template returns the file name of the trigger's HTML body.
func (t TriggerKey) Template() string {
	return string(t) + ".html"
}
