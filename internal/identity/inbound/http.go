package inbound

import (
	"context"

	"github.com/shandysiswandi/numsphere/internal/identity/usecase"
	"github.com/shandysiswandi/numsphere/internal/pkg/router"
)

type uc interface {
	PasswordReset(ctx context.Context, in usecase.PasswordResetInput) error
	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
}

// RegisterHTTPEndpoint mounts the identity routes. Sign-in, sign-up and forgot
// password are driven through the authflow module.
func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Password Management
	r.POST("/api/v1/identity/password/reset", end.PasswordReset)

	// User Profile
	r.GET("/api/v1/identity/profile", end.Profile, r.Authenticated())
}
