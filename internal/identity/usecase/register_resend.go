package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/numsphere/internal/identity/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
)

type RegisterResendInput struct {
	Email string `validate:"required,email"`
}

// RegisterResend sends a new code to an unverified account, once per cooldown.
// Unknown or already verified emails succeed silently, so a verification
// screen left open after the account was activated elsewhere does not error.
func (s *Usecase) RegisterResend(ctx context.Context, in RegisterResendInput) error {
	ctx, span := s.startSpan(ctx, "RegisterResend")
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, goerror.ErrNotFound):
		slog.InfoContext(ctx, "otp resend requested for unknown email")
		return nil
	case err != nil:
		slog.ErrorContext(ctx, "failed to repo get user by email", "error", err)
		return goerror.NewServer(err)
	case user.Status.Ensure() != entity.UserStatusUnverified:
		slog.InfoContext(ctx, "otp resend requested for verified account", "user_id", user.ID, "status", user.Status.String())
		return nil
	}

	acquired, err := s.repoCache.AcquireOtpCooldown(ctx, user.Email, s.otpCooldown())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo acquire otp cooldown", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}
	if !acquired {
		return goerror.NewBusiness("Please wait before requesting a new code", goerror.CodeTooManyRequest)
	}

	return s.issueOtp(ctx, user.ID, user.Email, user.FullName)
}
