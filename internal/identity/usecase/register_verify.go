package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/numsphere/internal/identity/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
)

type RegisterVerifyInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required,otpcode"`
}

// RegisterVerify activates the account when the code matches and signs the user in.
func (s *Usecase) RegisterVerify(ctx context.Context, in RegisterVerifyInput) (*SessionOutput, error) {
	ctx, span := s.startSpan(ctx, "RegisterVerify")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "verification for unknown account", "email", in.Email)
		return nil, goerror.NewBusiness("Invalid verification code", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if user.Status != entity.UserStatusUnverified {
		if err := s.ensureUserStatusAllowed(ctx, user.ID, user.Status); err != nil {
			return nil, err
		}
		return nil, goerror.NewBusiness("Account already verified", goerror.CodeConflict)
	}

	chal, err := s.repoCache.GetOtp(ctx, user.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "otp challenge expired", "user_id", user.ID)
		return nil, goerror.NewBusiness("Verification code expired", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp challenge", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	attempts, err := s.repoCache.IncrOtpAttempt(ctx, user.Email, s.otpTTL())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count otp attempt", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if attempts > s.otpMaxAttempts() {
		if err := s.repoCache.DeleteOtp(ctx, user.Email); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete otp challenge", "user_id", user.ID, "error", err)
		}
		return nil, goerror.NewBusiness("Too many attempts, request a new code", goerror.CodeTooManyRequest)
	}

	if chal.UserID != user.ID || !s.hmac.Verify(chal.CodeHash, in.Code) {
		slog.WarnContext(ctx, "otp code not match", "user_id", user.ID, "attempts", attempts)
		return nil, goerror.NewBusiness("Invalid verification code", goerror.CodeUnauthorized)
	}

	if err := s.repoDB.ActivateUser(ctx, user.ID); err != nil {
		slog.ErrorContext(ctx, "failed to repo activate user", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoCache.DeleteOtp(ctx, user.Email); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete otp challenge", "user_id", user.ID, "error", err)
	}

	return s.session(ctx, user.ID, user.Email)
}
