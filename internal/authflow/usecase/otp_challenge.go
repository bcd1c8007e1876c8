package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/numsphere/internal/authflow/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/clock"
)

// OtpChallengeConfig configures an OtpChallenge. Callbacks may be nil.
type OtpChallengeConfig struct {
	Email           string
	Provider        IdentityProvider
	Clock           clock.Clocker
	CooldownSeconds int
	OnVerified      func(entity.Session)
	OnResend        func()
	OnChange        func()

	metrics *metrics
}

// OtpSnapshot is a read only view of an OtpChallenge.
type OtpSnapshot struct {
	Email     string
	Slots     []string
	Focus     int
	Cooldown  int
	CanResend bool
	Pending   bool
	Message   entity.Message
}

// OtpChallenge owns the code buffer, the resend cooldown and the verify/resend requests
// of a single verification. Only one request is in flight at a time.
type OtpChallenge struct {
	email      string
	provider   IdentityProvider
	clock      clock.Clocker
	metrics    *metrics
	onVerified func(entity.Session)
	onResend   func()
	onChange   func()

	mu       sync.Mutex
	buffer   entity.OtpBuffer
	cooldown entity.Cooldown
	status   entity.SubmissionStatus
	stop     chan struct{}
	disposed bool
}

// NewOtpChallenge starts a challenge with a full cooldown and its countdown running.
func NewOtpChallenge(cfg OtpChallengeConfig) *OtpChallenge {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	c := &OtpChallenge{
		email:      cfg.Email,
		provider:   cfg.Provider,
		clock:      clk,
		metrics:    cfg.metrics,
		onVerified: cfg.OnVerified,
		onResend:   cfg.OnResend,
		onChange:   cfg.OnChange,
		buffer:     entity.NewOtpBuffer(),
		cooldown:   entity.NewCooldown(cfg.CooldownSeconds),
	}

	c.mu.Lock()
	c.startCountdownLocked()
	c.mu.Unlock()

	return c
}

func (c *OtpChallenge) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

// SetDigit stores value at index; see entity.OtpBuffer.SetDigit.
func (c *OtpChallenge) SetDigit(index int, value string) bool {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return false
	}

	ok := c.buffer.SetDigit(index, value)
	if ok {
		c.status.Message = entity.Message{}
	}
	c.mu.Unlock()

	if ok {
		c.notify()
	}
	return ok
}

func (c *OtpChallenge) Backspace(index int) bool {
	c.mu.Lock()
	ok := !c.disposed && c.buffer.Backspace(index)
	c.mu.Unlock()

	if ok {
		c.notify()
	}
	return ok
}

func (c *OtpChallenge) Focus(index int) bool {
	c.mu.Lock()
	ok := !c.disposed && c.buffer.Focus(index)
	c.mu.Unlock()

	if ok {
		c.notify()
	}
	return ok
}

func (c *OtpChallenge) Blur() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.buffer.Blur()
	c.mu.Unlock()

	c.notify()
}

// Paste distributes the digits of text from the first slot and clears the message.
func (c *OtpChallenge) Paste(text string) int {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return 0
	}

	n := c.buffer.Paste(text)
	c.status.Message = entity.Message{}
	c.mu.Unlock()

	c.notify()
	return n
}

func (c *OtpChallenge) Verify(ctx context.Context) entity.Outcome {
	out := c.verify(ctx)
	c.metrics.verification(ctx, out)
	return out
}

func (c *OtpChallenge) verify(ctx context.Context) entity.Outcome {
	c.mu.Lock()
	if c.disposed || c.status.Pending {
		c.mu.Unlock()
		return entity.OutcomeIgnored
	}

	if !c.buffer.Complete() {
		c.status.Message = entity.ErrorMessage(entity.MsgIncompleteCode)
		c.mu.Unlock()
		c.notify()
		return entity.OutcomeInvalid
	}

	c.status = entity.SubmissionStatus{Pending: true}
	code := c.buffer.Code()
	c.mu.Unlock()
	c.notify()

	session, err := c.provider.VerifyOtp(ctx, c.email, code)

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		slog.DebugContext(ctx, "discard verification result of disposed challenge")
		return entity.OutcomeStale
	}

	c.status.Pending = false
	if err != nil || session == nil {
		c.status.Message = entity.ErrorMessage(entity.MsgInvalidCode)
		c.mu.Unlock()
		slog.WarnContext(ctx, "failed to verify otp code", "error", err)
		c.notify()
		return entity.OutcomeFailed
	}
	c.mu.Unlock()

	if c.onVerified != nil {
		c.onVerified(*session)
	}
	c.notify()

	return entity.OutcomeAuthenticated
}

func (c *OtpChallenge) Resend(ctx context.Context) entity.Outcome {
	out := c.resend(ctx)
	c.metrics.resend(ctx, out)
	return out
}

func (c *OtpChallenge) resend(ctx context.Context) entity.Outcome {
	c.mu.Lock()
	if c.disposed || c.status.Pending || !c.cooldown.Elapsed() {
		c.mu.Unlock()
		return entity.OutcomeIgnored
	}

	c.status = entity.SubmissionStatus{Pending: true}
	c.mu.Unlock()
	c.notify()

	err := c.provider.SendOtp(ctx, c.email)

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		slog.DebugContext(ctx, "discard resend result of disposed challenge")
		return entity.OutcomeStale
	}

	c.status.Pending = false
	if err != nil {
		c.status.Message = entity.ErrorMessage(entity.MsgResendFailed)
		c.mu.Unlock()
		slog.WarnContext(ctx, "failed to resend otp code", "error", err)
		c.notify()
		return entity.OutcomeFailed
	}

	c.cooldown.Reset()
	c.buffer.Clear()
	c.startCountdownLocked()
	c.mu.Unlock()

	if c.onResend != nil {
		c.onResend()
	}
	c.notify()

	return entity.OutcomeResent
}

// Dispose stops the countdown. Results of requests still in flight are discarded.
func (c *OtpChallenge) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return
	}

	c.disposed = true
	c.stopCountdownLocked()
}

func (c *OtpChallenge) Snapshot() OtpSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return OtpSnapshot{
		Email:     c.email,
		Slots:     c.buffer.Slots(),
		Focus:     c.buffer.FocusIndex(),
		Cooldown:  c.cooldown.Remaining(),
		CanResend: c.cooldown.Elapsed() && !c.status.Pending && !c.disposed,
		Pending:   c.status.Pending,
		Message:   c.status.Message,
	}
}

func (c *OtpChallenge) stopCountdownLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *OtpChallenge) startCountdownLocked() {
	c.stopCountdownLocked()

	stop := make(chan struct{})
	c.stop = stop
	go c.countdown(c.clock.NewTicker(time.Second), stop)
}

func (c *OtpChallenge) countdown(ticker clock.Ticker, stop chan struct{}) {
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
		}

		c.mu.Lock()
		if c.disposed || c.stop != stop {
			c.mu.Unlock()
			return
		}
		changed := c.cooldown.Tick()
		elapsed := c.cooldown.Elapsed()
		c.mu.Unlock()

		if changed {
			c.notify()
		}
		if elapsed {
			return
		}
	}
}
