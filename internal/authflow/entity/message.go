package entity

type MessageKind int8

const (
	MessageKindNone MessageKind = iota
	MessageKindError
	MessageKindInfo
)

func (k MessageKind) String() string {
	switch k {
	case MessageKindError:
		return "error"
	case MessageKindInfo:
		return "info"
	case MessageKindNone:
		return ""
	default:
		return ""
	}
}

const (
	MsgIncompleteFields = "Please complete all fields"
	MsgInvalidEmail     = "Please enter a valid email address"
	MsgResetLinkSent    = "Password reset link sent to your email!"
	MsgGenericFailure   = "Something went wrong. Please try again."
	MsgIncompleteCode   = "Please enter all 6 digits"
	MsgInvalidCode      = "Invalid verification code"
	MsgResendFailed     = "Failed to resend code. Please try again."
)

// Message is the single user visible line of a form. The zero value is no message.
type Message struct {
	Text string
	Kind MessageKind
}

func ErrorMessage(text string) Message {
	return Message{Text: text, Kind: MessageKindError}
}

func InfoMessage(text string) Message {
	return Message{Text: text, Kind: MessageKindInfo}
}

func (m Message) IsZero() bool {
	return m.Text == ""
}
