package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shandysiswandi/numsphere/internal/authflow/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/clock"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
	"github.com/shandysiswandi/numsphere/internal/pkg/validator"
)

var ErrFlowClosed = errors.New("authflow: flow is closed")

// Host receives the flow's outward events. Any callback may be nil.
// Callbacks are never invoked while the controller holds its lock.
type Host struct {
	OnClose         func()
	OnAuthenticated func(entity.Session)
	OnChange        func()
}

type ControllerConfig struct {
	Provider        IdentityProvider
	Validator       validator.Validator
	Clock           clock.Clocker
	CooldownSeconds int
	Host            Host

	metrics *metrics
}

// Snapshot is a read only view of a Controller. The password is never exposed.
type Snapshot struct {
	Open        bool
	Mode        entity.AuthMode
	Email       string
	DisplayName string
	Message     entity.Message
	Pending     bool
	Submittable bool
	Otp         *OtpSnapshot
}

// Controller is the auth flow state machine. It starts closed.
type Controller struct {
	provider        IdentityProvider
	validator       validator.Validator
	clock           clock.Clocker
	cooldownSeconds int
	host            Host
	metrics         *metrics

	mu         sync.Mutex
	open       bool
	mode       entity.AuthMode
	fields     FieldState
	status     entity.SubmissionStatus
	otp        *OtpChallenge
	generation uint64
}

func NewController(cfg ControllerConfig) *Controller {
	return &Controller{
		provider:        cfg.Provider,
		validator:       cfg.Validator,
		clock:           cfg.Clock,
		cooldownSeconds: cfg.CooldownSeconds,
		host:            cfg.Host,
		metrics:         cfg.metrics,
		mode:            entity.AuthModeLogin,
	}
}

func (c *Controller) notify() {
	if c.host.OnChange != nil {
		c.host.OnChange()
	}
}

// resetLocked drops the draft, the status and any challenge and moves to mode.
// Results of requests issued before the reset become stale.
func (c *Controller) resetLocked(mode entity.AuthMode) {
	c.generation++
	if c.otp != nil {
		c.otp.Dispose()
		c.otp = nil
	}
	c.mode = mode
	c.fields.Reset()
	c.status = entity.SubmissionStatus{}
}

// Open shows the flow at Login with a fresh draft. Opening an open flow does nothing.
func (c *Controller) Open() {
	c.mu.Lock()
	if c.open {
		c.mu.Unlock()
		return
	}
	c.open = true
	c.resetLocked(entity.AuthModeLogin)
	c.mu.Unlock()

	c.notify()
}

// Close hides the flow, drops all state and calls the host's OnClose.
func (c *Controller) Close() {
	if !c.shutdown() {
		return
	}

	if c.host.OnClose != nil {
		c.host.OnClose()
	}
	c.notify()
}

// Dispose is Close without the host callback.
func (c *Controller) Dispose() {
	c.shutdown()
}

func (c *Controller) shutdown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return false
	}
	c.open = false
	c.resetLocked(entity.AuthModeLogin)
	return true
}

// SwitchMode resets the draft and message and moves to mode.
// It fails without side effects when the flow is closed or the transition is not allowed.
func (c *Controller) SwitchMode(mode entity.AuthMode) error {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return ErrFlowClosed
	}
	if !c.mode.CanSwitchTo(mode) {
		c.mu.Unlock()
		return entity.ErrAuthModeTransition
	}
	c.resetLocked(mode)
	c.mu.Unlock()

	c.notify()
	return nil
}

// SetFields replaces the draft of the credential form. It is ignored in Otp mode.
func (c *Controller) SetFields(d entity.CredentialDraft) bool {
	c.mu.Lock()
	if !c.open || c.mode == entity.AuthModeOtp {
		c.mu.Unlock()
		return false
	}
	c.fields.Set(d)
	c.mu.Unlock()

	c.notify()
	return true
}

// Submit validates the draft and sends it to the identity provider for the active mode.
// A submit while another one is pending is ignored.
func (c *Controller) Submit(ctx context.Context) entity.Outcome {
	mode, out := c.submit(ctx)
	if out != entity.OutcomeIgnored {
		c.metrics.submission(ctx, mode, out)
	}
	return out
}

func (c *Controller) submit(ctx context.Context) (entity.AuthMode, entity.Outcome) {
	c.mu.Lock()
	mode := c.mode
	if !c.open || mode == entity.AuthModeOtp || c.status.Pending {
		c.mu.Unlock()
		return mode, entity.OutcomeIgnored
	}

	if msg := c.fields.Validate(c.validator, mode); !msg.IsZero() {
		c.status.Message = msg
		c.mu.Unlock()
		c.notify()
		return mode, entity.OutcomeInvalid
	}

	draft := c.fields.Draft().Normalized()
	gen := c.generation
	c.status = entity.SubmissionStatus{Pending: true}
	c.mu.Unlock()
	c.notify()

	var (
		session *entity.Session
		account *entity.PendingAccount
		err     error
	)
	switch mode {
	case entity.AuthModeLogin:
		session, err = c.provider.Authenticate(ctx, draft.Email, draft.Password)
		if err == nil && session == nil {
			err = errors.New("authflow: provider returned no session")
		}
	case entity.AuthModeSignup:
		account, err = c.provider.Register(ctx, draft.Email, draft.Password, draft.DisplayName)
	case entity.AuthModeForgot:
		err = c.provider.RequestPasswordReset(ctx, draft.Email)
	case entity.AuthModeOtp, entity.AuthModeUnknown:
	}

	c.mu.Lock()
	if !c.open || gen != c.generation {
		c.mu.Unlock()
		slog.DebugContext(ctx, "discard submission result of outdated flow", "mode", mode.String())
		return mode, entity.OutcomeStale
	}

	c.status.Pending = false
	if err != nil {
		c.status.Message = entity.ErrorMessage(providerMessage(err))
		c.mu.Unlock()
		slog.WarnContext(ctx, "identity provider rejected submission", "mode", mode.String(), "error", err)
		c.notify()
		return mode, entity.OutcomeFailed
	}

	var out entity.Outcome
	switch mode {
	case entity.AuthModeLogin:
		out = entity.OutcomeAuthenticated
	case entity.AuthModeSignup:
		email := draft.Email
		if account != nil && account.Email != "" {
			email = account.Email
		}
		c.resetLocked(entity.AuthModeOtp)
		c.otp = c.newChallengeLocked(email)
		out = entity.OutcomeOtpRequired
	case entity.AuthModeForgot:
		c.status.Message = entity.InfoMessage(entity.MsgResetLinkSent)
		out = entity.OutcomeResetSent
	case entity.AuthModeOtp, entity.AuthModeUnknown:
		out = entity.OutcomeIgnored
	}
	c.mu.Unlock()

	if out == entity.OutcomeAuthenticated && c.host.OnAuthenticated != nil {
		c.host.OnAuthenticated(*session)
	}
	c.notify()

	return mode, out
}

func (c *Controller) newChallengeLocked(email string) *OtpChallenge {
	gen := c.generation
	return NewOtpChallenge(OtpChallengeConfig{
		Email:           email,
		Provider:        c.provider,
		Clock:           c.clock,
		CooldownSeconds: c.cooldownSeconds,
		OnVerified:      func(s entity.Session) { c.verified(gen, s) },
		OnChange:        c.notify,
		metrics:         c.metrics,
	})
}

func (c *Controller) verified(gen uint64, s entity.Session) {
	c.mu.Lock()
	current := c.open && gen == c.generation
	c.mu.Unlock()

	if current && c.host.OnAuthenticated != nil {
		c.host.OnAuthenticated(s)
	}
}

// challenge returns the active OtpChallenge, or nil outside Otp mode.
func (c *Controller) challenge() *OtpChallenge {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil
	}
	return c.otp
}

func (c *Controller) SetDigit(index int, value string) bool {
	if o := c.challenge(); o != nil {
		return o.SetDigit(index, value)
	}
	return false
}

func (c *Controller) Backspace(index int) bool {
	if o := c.challenge(); o != nil {
		return o.Backspace(index)
	}
	return false
}

func (c *Controller) FocusSlot(index int) bool {
	if o := c.challenge(); o != nil {
		return o.Focus(index)
	}
	return false
}

func (c *Controller) BlurSlots() bool {
	if o := c.challenge(); o != nil {
		o.Blur()
		return true
	}
	return false
}

func (c *Controller) Paste(text string) int {
	if o := c.challenge(); o != nil {
		return o.Paste(text)
	}
	return 0
}

func (c *Controller) Verify(ctx context.Context) entity.Outcome {
	if o := c.challenge(); o != nil {
		return o.Verify(ctx)
	}
	return entity.OutcomeIgnored
}

func (c *Controller) Resend(ctx context.Context) entity.Outcome {
	if o := c.challenge(); o != nil {
		return o.Resend(ctx)
	}
	return entity.OutcomeIgnored
}

func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	draft := c.fields.Draft()
	snap := Snapshot{
		Open:        c.open,
		Mode:        c.mode,
		Email:       draft.Email,
		DisplayName: draft.DisplayName,
		Message:     c.status.Message,
		Pending:     c.status.Pending,
		Submittable: c.open && c.fields.Submittable(c.mode),
	}
	if c.otp != nil {
		o := c.otp.Snapshot()
		snap.Otp = &o
	}

	return snap
}

// providerMessage turns a provider error into the single line shown to the user.
// Server and unknown errors never leak their text.
func providerMessage(err error) string {
	gerr, ok := goerror.As(err)
	if !ok {
		return entity.MsgGenericFailure
	}

	switch gerr.Type() {
	case goerror.TypeBusiness:
		if gerr.Msg() != "" {
			return gerr.Msg()
		}
	case goerror.TypeValidation:
		var verr validator.V10ValidationError
		if errors.As(err, &verr) && len(verr) > 0 {
			return verr.First()
		}
		if fields := validator.V10ValidationError(gerr.Fields()); len(fields) > 0 {
			return fields.First()
		}
		if gerr.Msg() != "" {
			return gerr.Msg()
		}
	case goerror.TypeServer:
	}

	return entity.MsgGenericFailure
}
