package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/numsphere/internal/notification/entity"
)

type ConsumeUserOtpDispatchInput struct {
	UserID           int64  `validate:"required,gt=0"`
	Email            string `validate:"required,email"`
	FullName         string `validate:"required,max=100"`
	Code             string `validate:"required,otpcode"`
	ExpiresInMinutes int64  `validate:"gt=0"`
}

// ConsumeUserOtpDispatch e-mails a verification code. Invalid events are dropped.
func (s *Usecase) ConsumeUserOtpDispatch(ctx context.Context, in ConsumeUserOtpDispatchInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserOtpDispatch")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "user_id", in.UserID, "error", err)
		return nil
	}

	data := s.baseEmailTemplateData()
	data["full_name"] = in.FullName
	data["code"] = in.Code
	data["expires_in_minutes"] = in.ExpiresInMinutes

	return s.sendEmail(ctx, emailInput{
		UserID:       in.UserID,
		Email:        in.Email,
		TriggerKey:   entity.TriggerKeyOtpCode,
		TemplateData: data,
	})
}
