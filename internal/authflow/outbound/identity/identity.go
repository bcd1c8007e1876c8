package identity

import (
	"context"

	"github.com/shandysiswandi/numsphere/internal/authflow/entity"
	"github.com/shandysiswandi/numsphere/internal/identity/usecase"
	"github.com/shandysiswandi/numsphere/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type accounts interface {
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.SessionOutput, error)
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	RegisterResend(ctx context.Context, in usecase.RegisterResendInput) error
	RegisterVerify(ctx context.Context, in usecase.RegisterVerifyInput) (*usecase.SessionOutput, error)
	PasswordForgot(ctx context.Context, in usecase.PasswordForgotInput) error
}

// Provider serves the flow from the in-process identity module. Errors are
// passed through untouched so their messages reach the user.
type Provider struct {
	accounts accounts
	ins      instrument.Instrumentation
}

func NewProvider(accounts accounts, ins instrument.Instrumentation) *Provider {
	return &Provider{accounts: accounts, ins: ins}
}

func (p *Provider) Authenticate(ctx context.Context, email, password string) (_ *entity.Session, err error) {
	ctx, span := p.startSpan(ctx, "Authenticate")
	defer func() { p.endSpan(span, err) }()

	out, err := p.accounts.Login(ctx, usecase.LoginInput{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	return toSession(out), nil
}

func (p *Provider) Register(ctx context.Context, email, password, displayName string) (_ *entity.PendingAccount, err error) {
	ctx, span := p.startSpan(ctx, "Register")
	defer func() { p.endSpan(span, err) }()

	out, err := p.accounts.Register(ctx, usecase.RegisterInput{
		Email:    email,
		Password: password,
		FullName: displayName,
	})
	if err != nil {
		return nil, err
	}

	return &entity.PendingAccount{UserID: out.UserID, Email: out.Email}, nil
}

func (p *Provider) RequestPasswordReset(ctx context.Context, email string) (err error) {
	ctx, span := p.startSpan(ctx, "RequestPasswordReset")
	defer func() { p.endSpan(span, err) }()

	return p.accounts.PasswordForgot(ctx, usecase.PasswordForgotInput{Email: email})
}

func (p *Provider) SendOtp(ctx context.Context, email string) (err error) {
	ctx, span := p.startSpan(ctx, "SendOtp")
	defer func() { p.endSpan(span, err) }()

	return p.accounts.RegisterResend(ctx, usecase.RegisterResendInput{Email: email})
}

func (p *Provider) VerifyOtp(ctx context.Context, email, code string) (_ *entity.Session, err error) {
	ctx, span := p.startSpan(ctx, "VerifyOtp")
	defer func() { p.endSpan(span, err) }()

	out, err := p.accounts.RegisterVerify(ctx, usecase.RegisterVerifyInput{Email: email, Code: code})
	if err != nil {
		return nil, err
	}

	return toSession(out), nil
}

func toSession(out *usecase.SessionOutput) *entity.Session {
	return &entity.Session{
		UserID:      out.UserID,
		Email:       out.Email,
		AccessToken: out.AccessToken,
		ExpiresAt:   out.ExpiresAt,
	}
}

func (p *Provider) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return p.ins.Tracer("authflow.outbound.identity").Start(ctx, name)
}

func (p *Provider) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
