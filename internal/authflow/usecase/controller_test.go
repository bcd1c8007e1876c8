package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/numsphere/internal/authflow/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/clock"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
	"github.com/shandysiswandi/numsphere/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hostRecorder struct {
	mu            sync.Mutex
	closed        int
	authenticated []entity.Session
}

func (h *hostRecorder) host() Host {
	return Host{
		OnClose: func() {
			h.mu.Lock()
			h.closed++
			h.mu.Unlock()
		},
		OnAuthenticated: func(s entity.Session) {
			h.mu.Lock()
			h.authenticated = append(h.authenticated, s)
			h.mu.Unlock()
		},
	}
}

func (h *hostRecorder) sessions() []entity.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]entity.Session(nil), h.authenticated...)
}

func newTestController(t *testing.T, p *fakeProvider) (*Controller, *hostRecorder) {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	h := &hostRecorder{}
	c := NewController(ControllerConfig{
		Provider:  p,
		Validator: v,
		Clock:     clock.NewFake(epoch),
		Host:      h.host(),
	})
	c.Open()
	t.Cleanup(c.Dispose)

	return c, h
}

func TestController_SwitchModeStartsBlank(t *testing.T) {
	paths := [][]entity.AuthMode{
		{entity.AuthModeSignup},
		{entity.AuthModeForgot},
		{entity.AuthModeSignup, entity.AuthModeLogin},
		{entity.AuthModeForgot, entity.AuthModeLogin},
		{entity.AuthModeLogin},
	}

	for _, path := range paths {
		t.Run(path[len(path)-1].String(), func(t *testing.T) {
			c, _ := newTestController(t, &fakeProvider{})

			for _, mode := range path {
				// Arrange
				c.SetFields(entity.CredentialDraft{Email: "ana@example.com", DisplayName: "Ana"})
				c.Submit(context.Background())
				require.False(t, c.State().Message.IsZero())

				// Act
				err := c.SwitchMode(mode)

				// Assert
				require.NoError(t, err)
				st := c.State()
				assert.Equal(t, mode, st.Mode)
				assert.Empty(t, st.Email)
				assert.Empty(t, st.DisplayName)
				assert.True(t, st.Message.IsZero())
				assert.False(t, st.Pending)
				assert.Empty(t, c.fields.Draft().Password)
			}
		})
	}
}

func TestController_SwitchModeRejected(t *testing.T) {
	c, _ := newTestController(t, &fakeProvider{})
	c.SetFields(entity.CredentialDraft{Email: "ana@example.com"})

	assert.ErrorIs(t, c.SwitchMode(entity.AuthModeOtp), entity.ErrAuthModeTransition)
	assert.Equal(t, entity.AuthModeLogin, c.State().Mode)
	assert.Equal(t, "ana@example.com", c.State().Email)

	c.Close()
	assert.ErrorIs(t, c.SwitchMode(entity.AuthModeSignup), ErrFlowClosed)
}

func TestController_SubmitValidation(t *testing.T) {
	tests := []struct {
		name  string
		mode  entity.AuthMode
		draft entity.CredentialDraft
		want  string
	}{
		{"login without password", entity.AuthModeLogin, entity.CredentialDraft{Email: "ana@example.com"}, entity.MsgIncompleteFields},
		{"login without email", entity.AuthModeLogin, entity.CredentialDraft{Password: "secret-pass"}, entity.MsgIncompleteFields},
		{"login blank password", entity.AuthModeLogin, entity.CredentialDraft{Email: "ana@example.com", Password: "   "}, entity.MsgIncompleteFields},
		{"signup without name", entity.AuthModeSignup, entity.CredentialDraft{Email: "ana@example.com", Password: "secret-pass"}, entity.MsgIncompleteFields},
		{"signup without anything", entity.AuthModeSignup, entity.CredentialDraft{}, entity.MsgIncompleteFields},
		{"forgot without email", entity.AuthModeForgot, entity.CredentialDraft{Password: "ignored"}, entity.MsgIncompleteFields},
		{"login malformed email", entity.AuthModeLogin, entity.CredentialDraft{Email: "ana", Password: "secret-pass"}, entity.MsgInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			p := &fakeProvider{}
			c, _ := newTestController(t, p)
			require.NoError(t, c.SwitchMode(tt.mode))
			c.SetFields(tt.draft)

			// Act
			out := c.Submit(context.Background())

			// Assert
			assert.Equal(t, entity.OutcomeInvalid, out)
			assert.Equal(t, entity.ErrorMessage(tt.want), c.State().Message)
			assert.Equal(t, 0, p.count("Authenticate"))
			assert.Equal(t, 0, p.count("Register"))
			assert.Equal(t, 0, p.count("RequestPasswordReset"))
		})
	}
}

func TestController_Login(t *testing.T) {
	t.Run("success authenticates", func(t *testing.T) {
		p := &fakeProvider{}
		c, h := newTestController(t, p)
		c.SetFields(entity.CredentialDraft{Email: " Ana@Example.com ", Password: "secret-pass"})
		require.True(t, c.State().Submittable)

		out := c.Submit(context.Background())

		assert.Equal(t, entity.OutcomeAuthenticated, out)
		require.Len(t, h.sessions(), 1)
		assert.Equal(t, "ana@example.com", h.sessions()[0].Email)
	})

	t.Run("business rejection is shown verbatim", func(t *testing.T) {
		p := &fakeProvider{authenticate: func(context.Context, string, string) (*entity.Session, error) {
			return nil, goerror.NewBusiness("Invalid email or password", goerror.CodeUnauthorized)
		}}
		c, h := newTestController(t, p)
		c.SetFields(entity.CredentialDraft{Email: "ana@example.com", Password: "wrong-pass"})

		out := c.Submit(context.Background())

		assert.Equal(t, entity.OutcomeFailed, out)
		assert.Equal(t, entity.ErrorMessage("Invalid email or password"), c.State().Message)
		assert.False(t, c.State().Pending)
		assert.Empty(t, h.sessions())
	})

	t.Run("server failure is generic", func(t *testing.T) {
		p := &fakeProvider{authenticate: func(context.Context, string, string) (*entity.Session, error) {
			return nil, goerror.NewServer(errors.New("dial tcp: connection refused"))
		}}
		c, _ := newTestController(t, p)
		c.SetFields(entity.CredentialDraft{Email: "ana@example.com", Password: "secret-pass"})

		c.Submit(context.Background())

		assert.Equal(t, entity.ErrorMessage(entity.MsgGenericFailure), c.State().Message)
	})
}

func TestController_ForgotKeepsFlowOpen(t *testing.T) {
	p := &fakeProvider{}
	c, h := newTestController(t, p)
	require.NoError(t, c.SwitchMode(entity.AuthModeForgot))
	c.SetFields(entity.CredentialDraft{Email: "ana@example.com"})

	out := c.Submit(context.Background())

	assert.Equal(t, entity.OutcomeResetSent, out)
	assert.Equal(t, 1, p.count("RequestPasswordReset"))
	st := c.State()
	assert.True(t, st.Open)
	assert.Equal(t, entity.AuthModeForgot, st.Mode)
	assert.Equal(t, entity.InfoMessage(entity.MsgResetLinkSent), st.Message)
	assert.Empty(t, h.sessions())
}

func TestController_SignupThenVerify(t *testing.T) {
	// Arrange
	p := &fakeProvider{}
	c, h := newTestController(t, p)
	require.NoError(t, c.SwitchMode(entity.AuthModeSignup))
	c.SetFields(entity.CredentialDraft{Email: "ana@example.com", Password: "secret-pass", DisplayName: "Ana Lee"})

	// Act
	out := c.Submit(context.Background())

	// Assert
	assert.Equal(t, entity.OutcomeOtpRequired, out)
	assert.Empty(t, h.sessions())
	st := c.State()
	assert.Equal(t, entity.AuthModeOtp, st.Mode)
	require.NotNil(t, st.Otp)
	assert.Equal(t, "ana@example.com", st.Otp.Email)
	assert.Equal(t, 60, st.Otp.Cooldown)
	assert.Empty(t, st.Email)

	assert.Equal(t, entity.OutcomeIgnored, c.Submit(context.Background()))
	assert.False(t, c.SetFields(entity.CredentialDraft{Email: "x@example.com"}))

	c.Paste("123456")
	assert.Equal(t, entity.OutcomeAuthenticated, c.Verify(context.Background()))
	require.Len(t, h.sessions(), 1)
	assert.Equal(t, "ana@example.com", h.sessions()[0].Email)
}

func TestController_BackFromOtp(t *testing.T) {
	c, h := newTestController(t, &fakeProvider{})
	require.NoError(t, c.SwitchMode(entity.AuthModeSignup))
	c.SetFields(entity.CredentialDraft{Email: "ana@example.com", Password: "secret-pass", DisplayName: "Ana Lee"})
	require.Equal(t, entity.OutcomeOtpRequired, c.Submit(context.Background()))
	c.Paste("123456")

	require.NoError(t, c.SwitchMode(entity.AuthModeSignup))

	st := c.State()
	assert.Equal(t, entity.AuthModeSignup, st.Mode)
	assert.Nil(t, st.Otp)
	assert.Empty(t, st.Email)
	assert.Equal(t, entity.OutcomeIgnored, c.Verify(context.Background()))
	assert.False(t, c.SetDigit(0, "1"))
	assert.Empty(t, h.sessions())
}

func TestController_SubmitWhilePending(t *testing.T) {
	// Arrange
	g := newGate()
	p := &fakeProvider{authenticate: func(_ context.Context, email, _ string) (*entity.Session, error) {
		g.wait()
		return &entity.Session{Email: email}, nil
	}}
	c, h := newTestController(t, p)
	c.SetFields(entity.CredentialDraft{Email: "ana@example.com", Password: "secret-pass"})

	// Act
	done := make(chan entity.Outcome, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-g.started
	second := c.Submit(context.Background())
	close(g.release)

	// Assert
	assert.Equal(t, entity.OutcomeIgnored, second)
	assert.Equal(t, entity.OutcomeAuthenticated, <-done)
	assert.Equal(t, 1, p.count("Authenticate"))
	assert.Len(t, h.sessions(), 1)
}

func TestController_StaleSubmission(t *testing.T) {
	g := newGate()
	p := &fakeProvider{authenticate: func(context.Context, string, string) (*entity.Session, error) {
		g.wait()
		return nil, goerror.NewBusiness("Invalid email or password", goerror.CodeUnauthorized)
	}}
	c, h := newTestController(t, p)
	c.SetFields(entity.CredentialDraft{Email: "ana@example.com", Password: "secret-pass"})

	done := make(chan entity.Outcome, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-g.started
	require.True(t, c.State().Pending)
	require.NoError(t, c.SwitchMode(entity.AuthModeForgot))
	close(g.release)

	assert.Equal(t, entity.OutcomeStale, <-done)
	st := c.State()
	assert.Equal(t, entity.AuthModeForgot, st.Mode)
	assert.True(t, st.Message.IsZero())
	assert.False(t, st.Pending)
	assert.Empty(t, h.sessions())
}

func TestController_CloseAndReopen(t *testing.T) {
	clk := clock.NewFake(epoch)
	h := &hostRecorder{}
	c := NewController(ControllerConfig{Provider: &fakeProvider{}, Clock: clk, Host: h.host()})
	assert.False(t, c.State().Open)

	c.Open()
	require.NoError(t, c.SwitchMode(entity.AuthModeSignup))
	c.SetFields(entity.CredentialDraft{Email: "ana@example.com", Password: "secret-pass", DisplayName: "Ana Lee"})
	require.Equal(t, entity.OutcomeOtpRequired, c.Submit(context.Background()))
	otp := c.otp

	c.Close()
	c.Close()

	assert.Equal(t, 1, h.closed)
	assert.False(t, c.State().Open)
	assert.Equal(t, entity.OutcomeIgnored, c.Submit(context.Background()))

	clk.Advance(3 * time.Second)
	assert.Equal(t, 60, otp.Snapshot().Cooldown)

	c.Open()
	st := c.State()
	assert.True(t, st.Open)
	assert.Equal(t, entity.AuthModeLogin, st.Mode)
	assert.Empty(t, st.Email)
	assert.Nil(t, st.Otp)
}

func TestProviderMessage(t *testing.T) {
	verr := validator.V10ValidationError{"password": "Password must be 8-72 characters"}

	assert.Equal(t, "Password must be 8-72 characters", providerMessage(goerror.NewInvalidInput(verr)))
	assert.Equal(t, "Email is taken", providerMessage(goerror.NewInvalidInput(nil, "email", "Email is taken")))
	assert.Equal(t, "Email already registered", providerMessage(goerror.NewBusiness("Email already registered", goerror.CodeConflict)))
	assert.Equal(t, entity.MsgGenericFailure, providerMessage(goerror.NewServer(errors.New("boom"))))
	assert.Equal(t, entity.MsgGenericFailure, providerMessage(errors.New("boom")))
}
