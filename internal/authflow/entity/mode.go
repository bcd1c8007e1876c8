package entity

import (
	"errors"
	"strings"
)

var (
	ErrAuthModeUnknown    = errors.New("authflow: auth mode is unknown")
	ErrAuthModeTransition = errors.New("authflow: auth mode transition not allowed")
)

type AuthMode int8

const (
	// AuthModeUnknown is mean mode is not known / not set.
	AuthModeUnknown AuthMode = 0

	// AuthModeLogin mean the flow collects email and password for sign in.
	AuthModeLogin AuthMode = 1

	// AuthModeSignup mean the flow collects email, password and display name for a new account.
	AuthModeSignup AuthMode = 2

	// AuthModeForgot mean the flow collects an email for a password reset link.
	AuthModeForgot AuthMode = 3

	// AuthModeOtp mean the flow is verifying the code sent after signup.
	AuthModeOtp AuthMode = 4
)

func (m AuthMode) String() string {
	switch m {
	case AuthModeLogin:
		return "login"
	case AuthModeSignup:
		return "signup"
	case AuthModeForgot:
		return "forgot"
	case AuthModeOtp:
		return "otp"
	case AuthModeUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

func ParseAuthMode(raw string) (AuthMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "login":
		return AuthModeLogin, nil
	case "signup":
		return AuthModeSignup, nil
	case "forgot":
		return AuthModeForgot, nil
	case "otp":
		return AuthModeOtp, nil
	default:
		return AuthModeUnknown, ErrAuthModeUnknown
	}
}

// CanSwitchTo reports whether a user initiated switch from m to next is allowed.
// Switching to the current mode resets it. Otp is entered only by a successful signup.
func (m AuthMode) CanSwitchTo(next AuthMode) bool {
	switch next {
	case AuthModeOtp, AuthModeUnknown:
		return false
	case AuthModeLogin, AuthModeSignup, AuthModeForgot:
	default:
		return false
	}

	if m == next {
		return true
	}

	switch m {
	case AuthModeLogin:
		return next == AuthModeSignup || next == AuthModeForgot
	case AuthModeSignup:
		return next == AuthModeLogin
	case AuthModeForgot:
		return next == AuthModeLogin
	case AuthModeOtp:
		return next == AuthModeSignup
	case AuthModeUnknown:
		return false
	default:
		return false
	}
}

// RequiresPassword reports whether the credential form of m carries a password.
func (m AuthMode) RequiresPassword() bool {
	return m == AuthModeLogin || m == AuthModeSignup
}
