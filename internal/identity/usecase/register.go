package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/numsphere/internal/identity/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
)

type RegisterInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
	FullName string `validate:"required,min=2,max=100,alphaspace"`
}

type RegisterOutput struct {
	UserID int64
	Email  string
}

// Register creates an unverified account and sends its first code.
// Registering again an unverified account with the same password sends a new code instead.
func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	existing, err := s.repoDB.GetUserLoginInfo(ctx, in.Email)
	if err == nil {
		return s.registerExisting(ctx, existing, in)
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	hashedPassword, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	newUser := entity.NewUser{
		ID:       s.uid.Generate(),
		Email:    in.Email,
		FullName: in.FullName,
		Status:   entity.UserStatusUnverified,
		Credits:  entity.StartingCredits,
	}

	err = s.repoDB.NewRegistration(ctx, newUser, string(hashedPassword))
	if errors.Is(err, goerror.ErrConflict) {
		return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo user registration", "email", newUser.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if _, err := s.repoCache.AcquireOtpCooldown(ctx, newUser.Email, s.otpCooldown()); err != nil {
		slog.WarnContext(ctx, "failed to repo start otp cooldown", "user_id", newUser.ID, "error", err)
	}

	if err := s.issueOtp(ctx, newUser.ID, newUser.Email, newUser.FullName); err != nil {
		return nil, err
	}

	return &RegisterOutput{UserID: newUser.ID, Email: newUser.Email}, nil
}

func (s *Usecase) registerExisting(ctx context.Context, user *entity.UserLoginInfo, in RegisterInput) (*RegisterOutput, error) {
	switch user.Status.Ensure() {
	case entity.UserStatusUnverified:
	case entity.UserStatusActive:
		return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	case entity.UserStatusInactive:
		return nil, goerror.NewBusiness("Account deactivated", goerror.CodeConflict)
	case entity.UserStatusBanned, entity.UserStatusUnknown:
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	default:
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	if !s.bcrypt.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "re-registration password not match", "user_id", user.ID)
		return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	}

	ok, err := s.repoCache.AcquireOtpCooldown(ctx, user.Email, s.otpCooldown())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo acquire otp cooldown", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if ok {
		if err := s.issueOtp(ctx, user.ID, user.Email, in.FullName); err != nil {
			return nil, err
		}
	}

	return &RegisterOutput{UserID: user.ID, Email: user.Email}, nil
}
