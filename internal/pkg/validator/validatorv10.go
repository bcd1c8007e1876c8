package validator

import (
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"slices"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"
	"github.com/shandysiswandi/numsphere/internal/pkg/strcase"
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

type customRule struct {
	tag     string
	match   func(string) bool
	message string
}

var (
	// Based on NIST 800-63B Guidelines
	rePassword = regexp.MustCompile(`^.{8,72}$`)
	reOTPCode  = regexp.MustCompile(`^[0-9]{6}$`)

	// alphaspace is a built-in rule, only its English message is replaced.
	customRules = []customRule{
		{tag: "password", match: rePassword.MatchString, message: "{0} must be 8-72 characters"},
		{tag: "otpcode", match: reOTPCode.MatchString, message: "{0} must be exactly 6 digits"},
		{tag: "alphaspace", message: "{0} can contain only letters and spaces"},
	}
)

// V10ValidationError is a field-to-message map returned when validation fails.
//
// Keys are field names in snake_case to match typical JSON conventions.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}
	//nolint:errcheck // a map of strings always marshals
	b, _ := json.Marshal(map[string]string(vs))
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// First returns the message of the alphabetically first failing field, so a
// form that shows a single message always shows the same one.
func (vs V10ValidationError) First() string {
	if len(vs) == 0 {
		return ""
	}
	keys := lo.Keys(vs)
	slices.Sort(keys)
	return vs[keys[0]]
}

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewV10Validator constructs a V10Validator with English translations and custom rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	trans, ok := ut.New(enLang, enLang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	if err := registerCustomRules(validate, trans); err != nil {
		return nil, err
	}

	return &V10Validator{validate: validate, translator: trans}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(V10ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
	}
	return out
}

func registerCustomRules(validate *validator.Validate, trans ut.Translator) error {
	for _, rule := range customRules {
		if rule.match != nil {
			if err := validate.RegisterValidation(rule.tag, func(fl validator.FieldLevel) bool {
				s, ok := fl.Field().Interface().(string)
				return ok && rule.match(s)
			}); err != nil {
				return err
			}
		}

		if err := validate.RegisterTranslation(rule.tag, trans,
			func(t ut.Translator) error {
				return t.Add(rule.tag, rule.message, true)
			},
			translateField,
		); err != nil {
			return err
		}
	}
	return nil
}

func translateField(t ut.Translator, fe validator.FieldError) string {
	msg, err := t.T(fe.Tag(), fe.Field())
	if err != nil {
		slog.Warn("failed to translate validation message", "tag", fe.Tag(), "error", err)
		return fe.Error()
	}
	return msg
}
