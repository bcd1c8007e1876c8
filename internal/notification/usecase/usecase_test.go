package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/numsphere/internal/notification/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/clock"
	"github.com/shandysiswandi/numsphere/internal/pkg/config"
	"github.com/shandysiswandi/numsphere/internal/pkg/instrument"
	"github.com/shandysiswandi/numsphere/internal/pkg/mail"
	"github.com/shandysiswandi/numsphere/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
app:
  web: https://numsphere.test
modules:
  notification:
    company_name: NumSphere
    support_email: support@numsphere.test
    mail_max_retries: 2
`

type fakeMail struct {
	mu       sync.Mutex
	failures int
	rejected bool
	calls    int
	sent     []mail.Message
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.rejected {
		return fmt.Errorf("%w: 550 mailbox unavailable", entity.ErrMailRejected)
	}
	if f.calls <= f.failures {
		return errors.New("smtp: 421 service not available")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newTestUsecase(t *testing.T, m *fakeMail) *Usecase {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	return NewNotification(Dependency{
		Config:     cfg,
		Clock:      clock.NewFake(time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)),
		Validator:  v,
		RepoMail:   m,
		Instrument: instrument.NewNoop(),
		RetryBase:  time.Millisecond,
	})
}

func TestUsecase_ConsumeUserOtpDispatch(t *testing.T) {
	tests := []struct {
		name      string
		in        ConsumeUserOtpDispatchInput
		failures  int
		rejected  bool
		wantErr   bool
		wantCalls int
		wantSent  int
	}{
		{
			name:      "sends code",
			in:        ConsumeUserOtpDispatchInput{UserID: 1, Email: "ana@example.com", FullName: "Ana Lee", Code: "123457", ExpiresInMinutes: 10},
			wantCalls: 1,
			wantSent:  1,
		},
		{
			name:      "retries transient failure",
			in:        ConsumeUserOtpDispatchInput{UserID: 1, Email: "ana@example.com", FullName: "Ana Lee", Code: "123457", ExpiresInMinutes: 10},
			failures:  2,
			wantCalls: 3,
			wantSent:  1,
		},
		{
			name:      "gives up after max retries",
			in:        ConsumeUserOtpDispatchInput{UserID: 1, Email: "ana@example.com", FullName: "Ana Lee", Code: "123457", ExpiresInMinutes: 10},
			failures:  5,
			wantErr:   true,
			wantCalls: 3,
		},
		{
			name:      "does not retry rejected mail",
			in:        ConsumeUserOtpDispatchInput{UserID: 1, Email: "ana@example.com", FullName: "Ana Lee", Code: "123457", ExpiresInMinutes: 10},
			rejected:  true,
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name: "drops invalid event",
			in:   ConsumeUserOtpDispatchInput{UserID: 1, Email: "ana@example.com", Code: "12ab"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			m := &fakeMail{failures: tt.failures, rejected: tt.rejected}
			uc := newTestUsecase(t, m)

			// Act
			err := uc.ConsumeUserOtpDispatch(context.Background(), tt.in)

			// Assert
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, m.calls)
			require.Len(t, m.sent, tt.wantSent)
			if tt.wantSent > 0 {
				assert.Equal(t, []string{"ana@example.com"}, m.sent[0].To)
				assert.Equal(t, "Your verification code", m.sent[0].Subject)
				assert.Contains(t, m.sent[0].HTMLBody, "123457")
				assert.Contains(t, m.sent[0].HTMLBody, "Hi Ana Lee")
				assert.Contains(t, m.sent[0].HTMLBody, "expires in 10 minutes")
			}
		})
	}
}

func TestUsecase_ConsumeUserForgotPassword(t *testing.T) {
	m := &fakeMail{}
	uc := newTestUsecase(t, m)

	err := uc.ConsumeUserForgotPassword(context.Background(), ConsumeUserForgotPasswordInput{
		UserID: 9,
		Email:  "ana@example.com",
		Token:  "abc123",
	})

	require.NoError(t, err)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "Reset your password", m.sent[0].Subject)
	assert.Contains(t, m.sent[0].HTMLBody, "https://numsphere.test/reset-password?token=abc123")
	assert.Contains(t, m.sent[0].HTMLBody, "2026")
}
