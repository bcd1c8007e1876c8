package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/numsphere/internal/identity/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
)

type PasswordResetInput struct {
	ChallengeToken string `validate:"required"`
	NewPassword    string `validate:"required,password"`
}

func errInvalidResetToken() error {
	return goerror.NewBusiness("Invalid or expired reset token", goerror.CodeUnauthorized)
}

// PasswordReset replaces the password of the account a reset link was sent
// to. The link works once, even when the new password is rejected.
func (s *Usecase) PasswordReset(ctx context.Context, in PasswordResetInput) error {
	ctx, span := s.startSpan(ctx, "PasswordReset")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.redeemResetToken(ctx, in.ChallengeToken)
	if err != nil {
		return err
	}

	newHash, err := s.bcrypt.Hash(in.NewPassword)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash new password", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.UpdateUserCredential(ctx, user.ID, string(newHash)); err != nil {
		slog.ErrorContext(ctx, "failed to repo update user credential", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "user password reset", "user_id", user.ID)
	return nil
}

// redeemResetToken consumes token and returns its owner when the owner may
// still sign in.
func (s *Usecase) redeemResetToken(ctx context.Context, token string) (*entity.User, error) {
	tokenHash, err := s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash reset token", "error", err)
		return nil, goerror.NewServer(err)
	}

	userID, err := s.repoCache.TakeResetToken(ctx, string(tokenHash))
	switch {
	case errors.Is(err, goerror.ErrNotFound):
		return nil, errInvalidResetToken()
	case err != nil:
		slog.ErrorContext(ctx, "failed to repo take reset token", "error", err)
		return nil, goerror.NewServer(err)
	}

	user, err := s.repoDB.GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, goerror.ErrNotFound):
		slog.WarnContext(ctx, "reset token points to missing user", "user_id", userID)
		return nil, errInvalidResetToken()
	case err != nil:
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.ensureUserStatusAllowed(ctx, user.ID, user.Status); err != nil {
		return nil, err
	}
	return user, nil
}
