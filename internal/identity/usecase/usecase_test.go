package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/numsphere/internal/identity/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/clock"
	"github.com/shandysiswandi/numsphere/internal/pkg/config"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
	"github.com/shandysiswandi/numsphere/internal/pkg/hash"
	"github.com/shandysiswandi/numsphere/internal/pkg/instrument"
	"github.com/shandysiswandi/numsphere/internal/pkg/jwt"
	"github.com/shandysiswandi/numsphere/internal/pkg/uid"
	"github.com/shandysiswandi/numsphere/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCode     = "482913"
	testPassword = "correct horse"
	testEmail    = "ana@example.com"
)

const testConfig = `
modules:
  identity:
    otp_ttl_minutes: 10
    otp_resend_cooldown_seconds: 60
    otp_max_attempts: 3
    reset_token_ttl_minutes: 30
`

type testDeps struct {
	db    *fakeDB
	cache *fakeCache
	mq    *fakeMessaging
	clock *clock.Fake
}

func newTestUsecase(t *testing.T) (*Usecase, *testDeps) {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	clk := clock.NewFake(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	token, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "numsphere",
		Audiences: []string{"numsphere"},
		TTL:       15 * time.Minute,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	deps := &testDeps{db: newFakeDB(), cache: newFakeCache(), mq: &fakeMessaging{}, clock: clk}
	uc := New(Dependency{
		RepoDB:        deps.db,
		RepoCache:     deps.cache,
		RepoMessaging: deps.mq,
		Validator:     v,
		Config:        cfg,
		HMAC:          hash.NewHMACSHA256("otp-secret"),
		Bcrypt:        hash.NewBcrypt(4, "pepper"),
		UID:           &seqID{next: 100},
		OID:           fixedString("reset-token"),
		OTP:           fixedOTP(testCode),
		Clock:         clk,
		JWT:           token,
		Instrument:    instrument.NewNoop(),
	})

	return uc, deps
}

func requireBusiness(t *testing.T, err error, code goerror.Code, msg string) {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, code, gerr.Code())
	if msg != "" {
		assert.Equal(t, msg, gerr.Msg())
	}
}

func register(t *testing.T, uc *Usecase) *RegisterOutput {
	t.Helper()

	out, err := uc.Register(context.Background(), RegisterInput{Email: " Ana@Example.com ", Password: testPassword, FullName: "Ana Lee"})
	require.NoError(t, err)
	return out
}

func TestUsecase_RegisterAndVerify(t *testing.T) {
	// Arrange
	ctx := context.Background()
	uc, deps := newTestUsecase(t)

	// Act
	reg := register(t, uc)

	// Assert
	assert.Equal(t, testEmail, reg.Email)
	require.Len(t, deps.mq.otps, 1)
	assert.Equal(t, testCode, deps.mq.lastOtp().Code)
	assert.Equal(t, 10*time.Minute, deps.mq.lastOtp().ExpiresIn)

	_, err := uc.Login(ctx, LoginInput{Email: testEmail, Password: testPassword})
	requireBusiness(t, err, goerror.CodeForbidden, "Email not verified")

	_, err = uc.RegisterVerify(ctx, RegisterVerifyInput{Email: testEmail, Code: "000000"})
	requireBusiness(t, err, goerror.CodeUnauthorized, "Invalid verification code")

	sess, err := uc.RegisterVerify(ctx, RegisterVerifyInput{Email: testEmail, Code: testCode})
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, sess.UserID)
	assert.NotEmpty(t, sess.AccessToken)
	assert.Equal(t, deps.clock.Now().Add(15*time.Minute), sess.ExpiresAt)

	user, err := deps.db.GetUserByID(ctx, reg.UserID)
	require.NoError(t, err)
	assert.Equal(t, entity.UserStatusActive, user.Status)
	assert.Equal(t, entity.StartingCredits, user.Credits)
	require.NotNil(t, user.LastLoginAt)

	_, err = uc.RegisterVerify(ctx, RegisterVerifyInput{Email: testEmail, Code: testCode})
	requireBusiness(t, err, goerror.CodeConflict, "Account already verified")

	sess, err = uc.Login(ctx, LoginInput{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, testEmail, sess.Email)
}

func TestUsecase_RegisterVerify_TooManyAttempts(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUsecase(t)
	register(t, uc)

	for range 3 {
		_, err := uc.RegisterVerify(ctx, RegisterVerifyInput{Email: testEmail, Code: "111111"})
		requireBusiness(t, err, goerror.CodeUnauthorized, "Invalid verification code")
	}

	_, err := uc.RegisterVerify(ctx, RegisterVerifyInput{Email: testEmail, Code: testCode})
	requireBusiness(t, err, goerror.CodeTooManyRequest, "")

	// the code is burned after too many attempts
	_, err = uc.RegisterVerify(ctx, RegisterVerifyInput{Email: testEmail, Code: testCode})
	requireBusiness(t, err, goerror.CodeUnauthorized, "Verification code expired")
}

func TestUsecase_Register_Existing(t *testing.T) {
	tests := []struct {
		name     string
		password string
		verified bool
		cooldown bool
		wantCode goerror.Code
		wantOtps int
	}{
		{name: "unverified same password reissues code", password: testPassword, wantOtps: 2},
		{name: "unverified inside cooldown keeps code", password: testPassword, cooldown: true, wantOtps: 1},
		{name: "unverified other password", password: "another secret", wantCode: goerror.CodeConflict, wantOtps: 1},
		{name: "verified account", password: testPassword, verified: true, wantCode: goerror.CodeConflict, wantOtps: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			ctx := context.Background()
			uc, deps := newTestUsecase(t)
			reg := register(t, uc)
			if tt.verified {
				require.NoError(t, deps.db.ActivateUser(ctx, reg.UserID))
			}
			if !tt.cooldown {
				deps.cache.expireCooldown(testEmail)
			}

			// Act
			out, err := uc.Register(ctx, RegisterInput{Email: testEmail, Password: tt.password, FullName: "Ana Lee"})

			// Assert
			if tt.wantCode != goerror.CodeInternal {
				requireBusiness(t, err, tt.wantCode, "")
			} else {
				require.NoError(t, err)
				assert.Equal(t, reg.UserID, out.UserID)
			}
			assert.Len(t, deps.mq.otps, tt.wantOtps)
		})
	}
}

func TestUsecase_Register_InvalidInput(t *testing.T) {
	uc, deps := newTestUsecase(t)

	_, err := uc.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "short", FullName: "A"})

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.TypeValidation, gerr.Type())
	assert.Empty(t, deps.mq.otps)
}

func TestUsecase_Register_PublishFailure(t *testing.T) {
	uc, deps := newTestUsecase(t)
	deps.mq.failOtp = errors.New("nats down")

	_, err := uc.Register(context.Background(), RegisterInput{Email: testEmail, Password: testPassword, FullName: "Ana Lee"})

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.TypeServer, gerr.Type())
}

func TestUsecase_RegisterResend(t *testing.T) {
	ctx := context.Background()
	uc, deps := newTestUsecase(t)
	register(t, uc)

	err := uc.RegisterResend(ctx, RegisterResendInput{Email: testEmail})
	requireBusiness(t, err, goerror.CodeTooManyRequest, "Please wait before requesting a new code")

	deps.cache.expireCooldown(testEmail)
	require.NoError(t, uc.RegisterResend(ctx, RegisterResendInput{Email: testEmail}))
	assert.Len(t, deps.mq.otps, 2)

	require.NoError(t, uc.RegisterResend(ctx, RegisterResendInput{Email: "ghost@example.com"}))
	assert.Len(t, deps.mq.otps, 2)
}

func TestUsecase_Login(t *testing.T) {
	ctx := context.Background()
	uc, deps := newTestUsecase(t)
	reg := register(t, uc)
	require.NoError(t, deps.db.ActivateUser(ctx, reg.UserID))

	_, err := uc.Login(ctx, LoginInput{Email: testEmail, Password: "wrong password"})
	requireBusiness(t, err, goerror.CodeUnauthorized, "Invalid email or password")

	_, err = uc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: testPassword})
	requireBusiness(t, err, goerror.CodeUnauthorized, "Invalid email or password")

	deps.db.failGet = errors.New("pool closed")
	_, err = uc.Login(ctx, LoginInput{Email: testEmail, Password: testPassword})
	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.TypeServer, gerr.Type())
}

func TestUsecase_PasswordForgotAndReset(t *testing.T) {
	// Arrange
	ctx := context.Background()
	uc, deps := newTestUsecase(t)
	reg := register(t, uc)

	// unverified accounts get no reset link
	require.NoError(t, uc.PasswordForgot(ctx, PasswordForgotInput{Email: testEmail}))
	assert.Empty(t, deps.mq.resets)

	require.NoError(t, deps.db.ActivateUser(ctx, reg.UserID))

	// Act
	require.NoError(t, uc.PasswordForgot(ctx, PasswordForgotInput{Email: testEmail}))
	require.NoError(t, uc.PasswordForgot(ctx, PasswordForgotInput{Email: "ghost@example.com"}))
	// a second request inside the cooldown sends nothing
	require.NoError(t, uc.PasswordForgot(ctx, PasswordForgotInput{Email: testEmail}))

	// Assert
	require.Len(t, deps.mq.resets, 1)
	assert.Equal(t, "reset-token", deps.mq.resets[0].ChallengeToken)

	err := uc.PasswordReset(ctx, PasswordResetInput{ChallengeToken: "reset-token", NewPassword: "brand new secret"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, LoginInput{Email: testEmail, Password: testPassword})
	requireBusiness(t, err, goerror.CodeUnauthorized, "")
	_, err = uc.Login(ctx, LoginInput{Email: testEmail, Password: "brand new secret"})
	require.NoError(t, err)

	err = uc.PasswordReset(ctx, PasswordResetInput{ChallengeToken: "reset-token", NewPassword: "another secret"})
	requireBusiness(t, err, goerror.CodeUnauthorized, "Invalid or expired reset token")
}

func TestUsecase_PasswordForgot_PublishFailure(t *testing.T) {
	ctx := context.Background()
	uc, deps := newTestUsecase(t)
	reg := register(t, uc)
	require.NoError(t, deps.db.ActivateUser(ctx, reg.UserID))
	deps.mq.failReset = errors.New("nats: connection closed")

	err := uc.PasswordForgot(ctx, PasswordForgotInput{Email: testEmail})

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.TypeServer, gerr.Type())
	assert.Empty(t, deps.mq.resets)
}

func TestUsecase_Profile(t *testing.T) {
	ctx := context.Background()
	uc, deps := newTestUsecase(t)
	reg := register(t, uc)

	_, err := uc.Profile(ctx)
	requireBusiness(t, err, goerror.CodeUnauthorized, "Authentication required")

	authCtx := jwt.SetAuth(ctx, jwt.Claims{UserID: reg.UserID, UserEmail: testEmail})
	_, err = uc.Profile(authCtx)
	requireBusiness(t, err, goerror.CodeForbidden, "Email not verified")

	_, err = uc.RegisterVerify(ctx, RegisterVerifyInput{Email: testEmail, Code: testCode})
	require.NoError(t, err)

	out, err := uc.Profile(authCtx)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lee", out.FullName)
	assert.Equal(t, entity.StartingCredits, out.Credits)
	assert.Equal(t, entity.UserStatusActive.String(), out.Status)
	require.NotNil(t, out.LastLoginAt)
	assert.Equal(t, deps.clock.Now(), *out.LastLoginAt)
}
