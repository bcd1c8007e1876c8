package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/numsphere/internal/identity/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
	"github.com/shandysiswandi/numsphere/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewCache(rdb, instrument.NewNoop()), mr
}

func TestCache_Otp(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	email := "ana@example.com"

	_, err := c.GetOtp(ctx, email)
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	require.NoError(t, c.SaveOtp(ctx, email, entity.OtpChallenge{UserID: 7, CodeHash: "h1"}, time.Minute))

	got, err := c.GetOtp(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, &entity.OtpChallenge{UserID: 7, CodeHash: "h1"}, got)

	n, err := c.IncrOtpAttempt(ctx, email, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = c.IncrOtpAttempt(ctx, email, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// a fresh code restarts the attempt counter
	require.NoError(t, c.SaveOtp(ctx, email, entity.OtpChallenge{UserID: 7, CodeHash: "h2"}, time.Minute))
	n, err = c.IncrOtpAttempt(ctx, email, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	mr.FastForward(2 * time.Minute)
	_, err = c.GetOtp(ctx, email)
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	require.NoError(t, c.SaveOtp(ctx, email, entity.OtpChallenge{UserID: 7, CodeHash: "h3"}, time.Minute))
	require.NoError(t, c.DeleteOtp(ctx, email))
	_, err = c.GetOtp(ctx, email)
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestCache_AcquireOtpCooldown(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := c.AcquireOtpCooldown(ctx, "ana@example.com", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.AcquireOtpCooldown(ctx, "ana@example.com", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(time.Minute + time.Second)

	ok, err = c.AcquireOtpCooldown(ctx, "ana@example.com", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCache_AcquireResetCooldown(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := c.AcquireResetCooldown(ctx, "ana@example.com", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// otp and reset cooldowns are independent
	ok, err = c.AcquireOtpCooldown(ctx, "ana@example.com", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.AcquireResetCooldown(ctx, "ana@example.com", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists("identity:reset:cooldown:ana@example.com"))
}

func TestCache_ResetToken(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SaveResetToken(ctx, "tok", 99, time.Minute))

	id, err := c.TakeResetToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(99), id)

	_, err = c.TakeResetToken(ctx, "tok")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}
