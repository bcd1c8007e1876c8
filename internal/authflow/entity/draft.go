package entity

import "strings"

// CredentialDraft is the credential form input of the active mode.
type CredentialDraft struct {
	Email       string
	Password    string
	DisplayName string
}

// Normalized returns a copy with the email trimmed and lower cased and the display name trimmed.
// The password is kept as typed.
func (d CredentialDraft) Normalized() CredentialDraft {
	return CredentialDraft{
		Email:       strings.ToLower(strings.TrimSpace(d.Email)),
		Password:    d.Password,
		DisplayName: strings.TrimSpace(d.DisplayName),
	}
}

// SubmissionStatus is owned by whichever component issued the in-flight request.
type SubmissionStatus struct {
	Pending bool
	Message Message
}
