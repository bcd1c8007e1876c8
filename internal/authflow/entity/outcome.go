package entity

// Outcome is the result of a flow action as seen by the presentation layer.
type Outcome int8

const (
	// OutcomeIgnored mean the action was a no-op (pending request, cooldown, wrong mode).
	OutcomeIgnored Outcome = iota
	// OutcomeInvalid mean local validation failed and no provider call was made.
	OutcomeInvalid
	// OutcomeFailed mean the identity provider rejected the call.
	OutcomeFailed
	// OutcomeAuthenticated mean the flow completed with a session.
	OutcomeAuthenticated
	// OutcomeOtpRequired mean signup succeeded and the flow now waits for the code.
	OutcomeOtpRequired
	// OutcomeResetSent mean the password reset link was requested.
	OutcomeResetSent
	// OutcomeResent mean a new code was sent.
	OutcomeResent
	// OutcomeStale mean the result arrived after the flow moved on and was discarded.
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeFailed:
		return "failed"
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeOtpRequired:
		return "otp_required"
	case OutcomeResetSent:
		return "reset_sent"
	case OutcomeResent:
		return "resent"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}
