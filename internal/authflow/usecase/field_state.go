package usecase

import (
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/numsphere/internal/authflow/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/validator"
)

type emailForm struct {
	Email string `validate:"email"`
}

// FieldState holds the credential draft of the active mode.
type FieldState struct {
	draft entity.CredentialDraft
}

func (f *FieldState) Set(d entity.CredentialDraft) {
	f.draft = d
}

func (f *FieldState) Reset() {
	f.draft = entity.CredentialDraft{}
}

func (f FieldState) Draft() entity.CredentialDraft {
	return f.draft
}

func (f FieldState) required(mode entity.AuthMode) []string {
	switch mode {
	case entity.AuthModeLogin:
		return []string{f.draft.Email, f.draft.Password}
	case entity.AuthModeSignup:
		return []string{f.draft.Email, f.draft.Password, f.draft.DisplayName}
	case entity.AuthModeForgot:
		return []string{f.draft.Email}
	case entity.AuthModeOtp, entity.AuthModeUnknown:
		return nil
	default:
		return nil
	}
}

// Submittable reports whether every field required by mode is non-blank.
func (f FieldState) Submittable(mode entity.AuthMode) bool {
	values := f.required(mode)
	if len(values) == 0 {
		return false
	}

	return lo.EveryBy(values, func(v string) bool {
		return strings.TrimSpace(v) != ""
	})
}

// Validate returns the message to show for mode, or the zero Message when the draft can be submitted.
func (f FieldState) Validate(v validator.Validator, mode entity.AuthMode) entity.Message {
	if !f.Submittable(mode) {
		return entity.ErrorMessage(entity.MsgIncompleteFields)
	}

	if v == nil {
		return entity.Message{}
	}

	if err := v.Validate(emailForm{Email: f.draft.Normalized().Email}); err != nil {
		return entity.ErrorMessage(entity.MsgInvalidEmail)
	}

	return entity.Message{}
}
