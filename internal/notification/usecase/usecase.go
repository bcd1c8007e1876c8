package usecase

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/numsphere/internal/notification/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/clock"
	"github.com/shandysiswandi/numsphere/internal/pkg/config"
	"github.com/shandysiswandi/numsphere/internal/pkg/instrument"
	"github.com/shandysiswandi/numsphere/internal/pkg/mail"
	"github.com/shandysiswandi/numsphere/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

//go:embed templates/*.html
var templatesFS embed.FS

var emailTemplates = template.Must(template.New("email").Option("missingkey=zero").ParseFS(templatesFS, "templates/*.html"))

const defaultRetryBase = 500 * time.Millisecond

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type Usecase struct {
	cfg       config.Config
	clock     clock.Clocker
	validator validator.Validator
	repoMail  repoMail
	ins       instrument.Instrumentation
	retryBase time.Duration
}

type Dependency struct {
	Config     config.Config
	Clock      clock.Clocker
	Validator  validator.Validator
	RepoMail   repoMail
	Instrument instrument.Instrumentation
	// RetryBase is the first backoff between mail attempts.
	RetryBase time.Duration
}

func NewNotification(dep Dependency) *Usecase {
	base := dep.RetryBase
	if base <= 0 {
		base = defaultRetryBase
	}

	return &Usecase{
		cfg:       dep.Config,
		clock:     dep.Clock,
		validator: dep.Validator,
		repoMail:  dep.RepoMail,
		ins:       dep.Instrument,
		retryBase: base,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

func (s *Usecase) baseEmailTemplateData() map[string]any {
	return map[string]any{
		"support_email":   s.cfg.GetString("modules.notification.support_email"),
		"company_name":    s.cfg.GetString("modules.notification.company_name"),
		"company_address": s.cfg.GetString("modules.notification.company_address"),
		"year":            s.clock.Now().Format("2006"),
	}
}

func (s *Usecase) mailMaxRetries() uint64 {
	if n := s.cfg.GetUint64("modules.notification.mail_max_retries"); n > 0 {
		return n
	}
	return 3
}

type emailInput struct {
	UserID       int64
	Email        string
	TriggerKey   entity.TriggerKey
	TemplateData map[string]any
}

// sendEmail renders the trigger's template and sends it, retrying failed
// deliveries with exponential backoff.
func (s *Usecase) sendEmail(ctx context.Context, in emailInput) error {
	var body bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&body, in.TriggerKey.Template(), in.TemplateData); err != nil {
		slog.ErrorContext(ctx, "failed to render email body", "user_id", in.UserID, "trigger_key", in.TriggerKey.String(), "error", err)
		return err
	}

	msg := mail.Message{
		To:       []string{in.Email},
		Subject:  in.TriggerKey.Subject(),
		HTMLBody: body.String(),
	}

	b := retry.NewExponential(s.retryBase)
	b = retry.WithCappedDuration(10*time.Second, b)
	b = retry.WithMaxRetries(s.mailMaxRetries(), b)

	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := s.repoMail.Send(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
				errors.Is(err, entity.ErrMailRejected) {
				return err
			}
			slog.WarnContext(ctx, "failed to send email, will retry", "user_id", in.UserID, "trigger_key", in.TriggerKey.String(), "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to send notification email", "user_id", in.UserID, "trigger_key", in.TriggerKey.String(), "attempts", attempt, "error", err)
		return err
	}

	return nil
}
