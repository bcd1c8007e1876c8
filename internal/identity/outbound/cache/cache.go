package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/numsphere/internal/identity/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
	"github.com/shandysiswandi/numsphere/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyOtp         = "identity:otp:"
	keyOtpAttempts = "identity:otp:attempts:"
	keyOtpCooldown = "identity:otp:cooldown:"
	keyResetToken  = "identity:reset:"
	keyResetSent   = "identity:reset:cooldown:"
)

type Cache struct {
	client *redis.Client
	ins    instrument.Instrumentation
}

func NewCache(client *redis.Client, ins instrument.Instrumentation) *Cache {
	return &Cache{client: client, ins: ins}
}

// SaveOtp replaces the pending code of email and clears its attempt counter.
func (c *Cache) SaveOtp(ctx context.Context, email string, chal entity.OtpChallenge, ttl time.Duration) (err error) {
	ctx, span := c.startSpan(ctx, "SaveOtp")
	defer func() { c.endSpan(span, err) }()

	body, err := json.Marshal(chal)
	if err != nil {
		return err
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyOtp+email, body, ttl)
		pipe.Del(ctx, keyOtpAttempts+email)
		return nil
	})

	return err
}

func (c *Cache) GetOtp(ctx context.Context, email string) (_ *entity.OtpChallenge, err error) {
	ctx, span := c.startSpan(ctx, "GetOtp")
	defer func() { c.endSpan(span, err) }()

	body, err := c.client.Get(ctx, keyOtp+email).Bytes()
	if err != nil {
		return nil, c.mapError(err)
	}

	var chal entity.OtpChallenge
	if err := json.Unmarshal(body, &chal); err != nil {
		return nil, err
	}

	return &chal, nil
}

// IncrOtpAttempt counts one verification attempt. The counter expires with ttl
// after the first attempt.
func (c *Cache) IncrOtpAttempt(ctx context.Context, email string, ttl time.Duration) (_ int64, err error) {
	ctx, span := c.startSpan(ctx, "IncrOtpAttempt")
	defer func() { c.endSpan(span, err) }()

	var incr *redis.IntCmd
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, keyOtpAttempts+email)
		pipe.ExpireNX(ctx, keyOtpAttempts+email, ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return incr.Val(), nil
}

func (c *Cache) DeleteOtp(ctx context.Context, email string) (err error) {
	ctx, span := c.startSpan(ctx, "DeleteOtp")
	defer func() { c.endSpan(span, err) }()

	return c.client.Del(ctx, keyOtp+email, keyOtpAttempts+email).Err()
}

// AcquireOtpCooldown reports false while a previous cooldown of email is still running.
func (c *Cache) AcquireOtpCooldown(ctx context.Context, email string, cooldown time.Duration) (_ bool, err error) {
	ctx, span := c.startSpan(ctx, "AcquireOtpCooldown")
	defer func() { c.endSpan(span, err) }()

	return c.client.SetNX(ctx, keyOtpCooldown+email, 1, cooldown).Result()
}

// AcquireResetCooldown reports false while a reset link sent to email is
// still cooling down.
func (c *Cache) AcquireResetCooldown(ctx context.Context, email string, cooldown time.Duration) (_ bool, err error) {
	ctx, span := c.startSpan(ctx, "AcquireResetCooldown")
	defer func() { c.endSpan(span, err) }()

	return c.client.SetNX(ctx, keyResetSent+email, 1, cooldown).Result()
}

func (c *Cache) SaveResetToken(ctx context.Context, tokenHash string, userID int64, ttl time.Duration) (err error) {
	ctx, span := c.startSpan(ctx, "SaveResetToken")
	defer func() { c.endSpan(span, err) }()

	return c.client.Set(ctx, keyResetToken+tokenHash, userID, ttl).Err()
}

// TakeResetToken returns the owner of the token and removes it, so a token works once.
func (c *Cache) TakeResetToken(ctx context.Context, tokenHash string) (_ int64, err error) {
	ctx, span := c.startSpan(ctx, "TakeResetToken")
	defer func() { c.endSpan(span, err) }()

	val, err := c.client.GetDel(ctx, keyResetToken+tokenHash).Result()
	if err != nil {
		return 0, c.mapError(err)
	}

	return strconv.ParseInt(val, 10, 64)
}

func (c *Cache) mapError(err error) error {
	if errors.Is(err, redis.Nil) {
		return goerror.ErrNotFound
	}
	return err
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("identity.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
