package usecase

import (
	"context"
	"sync"

	"github.com/shandysiswandi/numsphere/internal/authflow/entity"
)

// fakeProvider records calls and delegates to the optional funcs.
// A nil func succeeds.
type fakeProvider struct {
	mu    sync.Mutex
	calls map[string]int

	authenticate func(ctx context.Context, email, password string) (*entity.Session, error)
	register     func(ctx context.Context, email, password, name string) (*entity.PendingAccount, error)
	reset        func(ctx context.Context, email string) error
	sendOtp      func(ctx context.Context, email string) error
	verifyOtp    func(ctx context.Context, email, code string) (*entity.Session, error)
}

func (p *fakeProvider) record(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[name]++
}

func (p *fakeProvider) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[name]
}

func (p *fakeProvider) Authenticate(ctx context.Context, email, password string) (*entity.Session, error) {
	p.record("Authenticate")
	if p.authenticate != nil {
		return p.authenticate(ctx, email, password)
	}
	return &entity.Session{UserID: 1, Email: email, AccessToken: "token"}, nil
}

func (p *fakeProvider) Register(ctx context.Context, email, password, name string) (*entity.PendingAccount, error) {
	p.record("Register")
	if p.register != nil {
		return p.register(ctx, email, password, name)
	}
	return &entity.PendingAccount{UserID: 2, Email: email}, nil
}

func (p *fakeProvider) RequestPasswordReset(ctx context.Context, email string) error {
	p.record("RequestPasswordReset")
	if p.reset != nil {
		return p.reset(ctx, email)
	}
	return nil
}

func (p *fakeProvider) SendOtp(ctx context.Context, email string) error {
	p.record("SendOtp")
	if p.sendOtp != nil {
		return p.sendOtp(ctx, email)
	}
	return nil
}

func (p *fakeProvider) VerifyOtp(ctx context.Context, email, code string) (*entity.Session, error) {
	p.record("VerifyOtp")
	if p.verifyOtp != nil {
		return p.verifyOtp(ctx, email, code)
	}
	return &entity.Session{UserID: 2, Email: email, AccessToken: "token"}, nil
}

// gate blocks a provider call until released.
type gate struct {
	started chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gate) wait() {
	g.started <- struct{}{}
	<-g.release
}
