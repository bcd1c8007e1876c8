package usecase

import (
	"context"

	"github.com/shandysiswandi/numsphere/internal/authflow/entity"
)

// IdentityProvider is the external service the flow submits to.
type IdentityProvider interface {
	Authenticate(ctx context.Context, email, password string) (*entity.Session, error)
	Register(ctx context.Context, email, password, displayName string) (*entity.PendingAccount, error)
	RequestPasswordReset(ctx context.Context, email string) error
	// SendOtp dispatches a new code. Register sends the first one on its own.
	SendOtp(ctx context.Context, email string) error
	VerifyOtp(ctx context.Context, email, code string) (*entity.Session, error)
}
