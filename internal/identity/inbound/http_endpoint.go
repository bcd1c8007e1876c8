package inbound

import (
	"github.com/shandysiswandi/numsphere/internal/identity/usecase"
	"github.com/shandysiswandi/numsphere/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for password reset and profile workflows.
type HTTPEndpoint struct {
	uc uc
}

// PasswordReset completes a password reset using a reset token.
// @Summary Reset password
// @Description Sets a new password using the token from the reset e-mail.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body PasswordResetRequest true "Reset password payload"
// @Success 200 {object} router.successResponse{data=PasswordResetResponse} "Reset result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired reset token"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/password/reset [post]
func (h *HTTPEndpoint) PasswordReset(r *router.Request) (any, error) {
	var req PasswordResetRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordReset(r.Context(), usecase.PasswordResetInput{
		ChallengeToken: req.ChallengeToken,
		NewPassword:    req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return &PasswordResetResponse{}, nil
}

// Profile returns the current user's profile.
// @Summary Get profile
// @Description Returns the authenticated user's profile, credits and last sign-in.
// @Tags Identity, Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=ProfileResponse} "Profile"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Account not allowed"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/profile [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		ID:          resp.ID,
		Email:       resp.Email,
		FullName:    resp.FullName,
		Status:      resp.Status,
		Credits:     resp.Credits,
		LastLoginAt: resp.LastLoginAt,
		CreatedAt:   resp.CreatedAt,
	}, nil
}
