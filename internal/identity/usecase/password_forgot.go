package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
)

const (
	defaultResetTokenTTL = 30 * time.Minute
	defaultResetCooldown = time.Minute
)

type PasswordForgotInput struct {
	Email string `validate:"required,email"`
}

// PasswordForgot e-mails a reset link to an active account, at most once per
// cooldown. Unknown, ineligible or cooling down emails succeed silently so the
// response never tells whether an account exists.
func (s *Usecase) PasswordForgot(ctx context.Context, in PasswordForgotInput) error {
	ctx, span := s.startSpan(ctx, "PasswordForgot")
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, goerror.ErrNotFound):
		slog.InfoContext(ctx, "password reset requested for unknown email")
		return nil
	case err != nil:
		slog.ErrorContext(ctx, "failed to repo get user by email", "error", err)
		return goerror.NewServer(err)
	}

	if denial := user.Status.SignInDenial(); denial != "" {
		slog.InfoContext(ctx, "password reset requested for ineligible user", "user_id", user.ID, "status", user.Status.String())
		return nil
	}

	acquired, err := s.repoCache.AcquireResetCooldown(ctx, user.Email, s.resetCooldown())
	if err != nil {
		slog.WarnContext(ctx, "failed to repo acquire reset cooldown, sending anyway", "user_id", user.ID, "error", err)
	} else if !acquired {
		slog.InfoContext(ctx, "password reset link already sent recently", "user_id", user.ID)
		return nil
	}

	token := s.oid.Generate()
	tokenHash, err := s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash reset token", "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoCache.SaveResetToken(ctx, string(tokenHash), user.ID, s.resetTokenTTL()); err != nil {
		slog.ErrorContext(ctx, "failed to repo save reset token", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	// the flow tells the user to check their inbox, so a link that is never sent is a failure
	if err := s.repoMessaging.PublishUserForgotPassword(ctx, UserForgotPasswordEvent{
		UserID:         user.ID,
		Email:          user.Email,
		ChallengeToken: token,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish user forgot password", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

func (s *Usecase) resetTokenTTL() time.Duration {
	if d := s.cfg.GetMinute("modules.identity.reset_token_ttl_minutes"); d > 0 {
		return d
	}
	return defaultResetTokenTTL
}

func (s *Usecase) resetCooldown() time.Duration {
	if d := s.cfg.GetSecond("modules.identity.reset_cooldown_seconds"); d > 0 {
		return d
	}
	return defaultResetCooldown
}
