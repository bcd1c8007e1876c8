package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/numsphere/internal/identity/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/clock"
	"github.com/shandysiswandi/numsphere/internal/pkg/config"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
	"github.com/shandysiswandi/numsphere/internal/pkg/hash"
	"github.com/shandysiswandi/numsphere/internal/pkg/instrument"
	"github.com/shandysiswandi/numsphere/internal/pkg/jwt"
	"github.com/shandysiswandi/numsphere/internal/pkg/otp"
	"github.com/shandysiswandi/numsphere/internal/pkg/uid"
	"github.com/shandysiswandi/numsphere/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type UserOtpDispatchEvent struct {
	UserID    int64
	Email     string
	FullName  string
	Code      string
	ExpiresIn time.Duration
}

type UserForgotPasswordEvent struct {
	UserID         int64
	Email          string
	ChallengeToken string
}

type repoMessaging interface {
	PublishUserOtpDispatch(ctx context.Context, msg UserOtpDispatchEvent) error
	PublishUserForgotPassword(ctx context.Context, msg UserForgotPasswordEvent) error
}

type repoCache interface {
	SaveOtp(ctx context.Context, email string, chal entity.OtpChallenge, ttl time.Duration) error
	GetOtp(ctx context.Context, email string) (*entity.OtpChallenge, error)
	IncrOtpAttempt(ctx context.Context, email string, ttl time.Duration) (int64, error)
	DeleteOtp(ctx context.Context, email string) error
	AcquireOtpCooldown(ctx context.Context, email string, cooldown time.Duration) (bool, error)
	AcquireResetCooldown(ctx context.Context, email string, cooldown time.Duration) (bool, error)

	SaveResetToken(ctx context.Context, tokenHash string, userID int64, ttl time.Duration) error
	TakeResetToken(ctx context.Context, tokenHash string) (int64, error)
}

type repoDB interface {
	GetUserLoginInfo(ctx context.Context, email string) (*entity.UserLoginInfo, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)

	NewRegistration(ctx context.Context, user entity.NewUser, hash string) error

	ActivateUser(ctx context.Context, id int64) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdateUserCredential(ctx context.Context, id int64, hash string) error
}

type Usecase struct {
	repoDB        repoDB
	repoCache     repoCache
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	bcrypt        hash.Hash
	uid           uid.NumberID
	oid           uid.StringID
	otp           otp.OTP
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	RepoCache     repoCache
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Bcrypt        hash.Hash
	UID           uid.NumberID
	OID           uid.StringID
	OTP           otp.OTP
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoCache:     dep.RepoCache,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		bcrypt:        dep.Bcrypt,
		uid:           dep.UID,
		oid:           dep.OID,
		otp:           dep.OTP,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) ensureUserStatusAllowed(ctx context.Context, userID int64, status entity.UserStatus) error {
	denial := status.SignInDenial()
	if denial == "" {
		return nil
	}

	slog.WarnContext(ctx, "user account is not allowed to sign in", "user_id", userID, "status", status.Ensure().String())
	return goerror.NewBusiness(denial, goerror.CodeForbidden)
}

func (s *Usecase) otpTTL() time.Duration {
	if d := s.cfg.GetMinute("modules.identity.otp_ttl_minutes"); d > 0 {
		return d
	}
	return 10 * time.Minute
}

func (s *Usecase) otpCooldown() time.Duration {
	if d := s.cfg.GetSecond("modules.identity.otp_resend_cooldown_seconds"); d > 0 {
		return d
	}
	return time.Minute
}

func (s *Usecase) otpMaxAttempts() int64 {
	if n := s.cfg.GetInt64("modules.identity.otp_max_attempts"); n > 0 {
		return n
	}
	return 5
}

// session issues an access token for an active user.
func (s *Usecase) session(ctx context.Context, userID int64, email string) (*SessionOutput, error) {
	token, err := s.jwt.Generate(userID, email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoDB.UpdateLastLogin(ctx, userID, s.clock.Now()); err != nil {
		slog.ErrorContext(ctx, "failed to repo update last login", "user_id", userID, "error", err)
	}

	return &SessionOutput{
		UserID:      userID,
		Email:       email,
		AccessToken: token.Value,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}

// issueOtp stores a fresh code for the account and publishes it for delivery.
// It replaces any previous code and restarts the attempt counter.
func (s *Usecase) issueOtp(ctx context.Context, userID int64, email, fullName string) error {
	code, err := s.otp.GenerateCode()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	ttl := s.otpTTL()
	if err := s.repoCache.SaveOtp(ctx, email, entity.OtpChallenge{UserID: userID, CodeHash: string(codeHash)}, ttl); err != nil {
		slog.ErrorContext(ctx, "failed to repo save otp challenge", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishUserOtpDispatch(ctx, UserOtpDispatchEvent{
		UserID:    userID,
		Email:     email,
		FullName:  fullName,
		Code:      code,
		ExpiresIn: ttl,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish user otp dispatch", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
