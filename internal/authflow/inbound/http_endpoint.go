package inbound

import (
	"github.com/shandysiswandi/numsphere/internal/authflow/usecase"
	"github.com/shandysiswandi/numsphere/internal/pkg/router"
)

// HTTPEndpoint exposes the auth flow controller over HTTP. Every action answers
// with the flow state after the action settled.
type HTTPEndpoint struct {
	uc uc
}

// OpenFlow starts a new sign in flow.
// @Summary Open auth flow
// @Description Opens a flow in login mode and returns its id and state.
// @Tags AuthFlow
// @Produce json
// @Success 201 {object} router.successResponse{data=FlowResponse} "Flow opened"
// @Failure 429 {object} router.errorResponse "Too many flows in progress"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/authflow/flows [post]
func (h *HTTPEndpoint) OpenFlow(r *router.Request) (any, error) {
	out, err := h.uc.OpenFlow(r.Context())
	if err != nil {
		return nil, err
	}

	return FlowCreatedResponse{FlowResponse: newFlowResponse(out)}, nil
}

// GetFlow returns the current state of a flow.
// @Summary Get auth flow
// @Tags AuthFlow
// @Produce json
// @Param id path string true "Flow ID"
// @Success 200 {object} router.successResponse{data=FlowResponse} "Flow state"
// @Failure 404 {object} router.errorResponse "Flow not found"
// @Router /api/v1/authflow/flows/{id} [get]
func (h *HTTPEndpoint) GetFlow(r *router.Request) (any, error) {
	out, err := h.uc.GetFlow(r.Context(), usecase.FlowInput{FlowID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return newFlowResponse(out), nil
}

// CloseFlow dismisses a flow.
// @Summary Close auth flow
// @Tags AuthFlow
// @Param id path string true "Flow ID"
// @Success 204 "No Content"
// @Failure 404 {object} router.errorResponse "Flow not found"
// @Router /api/v1/authflow/flows/{id} [delete]
func (h *HTTPEndpoint) CloseFlow(r *router.Request) (any, error) {
	return nil, h.uc.CloseFlow(r.Context(), usecase.FlowInput{FlowID: r.GetParam("id")})
}

// SwitchMode moves the flow to another form.
// @Summary Switch auth mode
// @Description Switches between login, signup and forgot. Switching clears the form.
// @Tags AuthFlow
// @Accept json
// @Produce json
// @Param id path string true "Flow ID"
// @Param request body SwitchModeRequest true "Target mode"
// @Success 200 {object} router.successResponse{data=FlowResponse} "Flow state"
// @Failure 404 {object} router.errorResponse "Flow not found"
// @Failure 409 {object} router.errorResponse "Transition not allowed"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/authflow/flows/{id}/mode [put]
func (h *HTTPEndpoint) SwitchMode(r *router.Request) (any, error) {
	var req SwitchModeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.SwitchMode(r.Context(), usecase.SwitchModeInput{
		FlowID: r.GetParam("id"),
		Mode:   req.Mode,
	})
	if err != nil {
		return nil, err
	}

	return newFlowResponse(out), nil
}

// SetFields replaces the credential draft.
// @Summary Set form fields
// @Tags AuthFlow
// @Accept json
// @Produce json
// @Param id path string true "Flow ID"
// @Param request body SetFieldsRequest true "Draft fields"
// @Success 200 {object} router.successResponse{data=FlowResponse} "Flow state"
// @Failure 404 {object} router.errorResponse "Flow not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/authflow/flows/{id}/fields [put]
func (h *HTTPEndpoint) SetFields(r *router.Request) (any, error) {
	var req SetFieldsRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.SetFields(r.Context(), usecase.SetFieldsInput{
		FlowID:      r.GetParam("id"),
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	return newFlowResponse(out), nil
}

// Submit submits the current form.
// @Summary Submit form
// @Description Validates the draft and calls the identity provider for the current mode.
// @Tags AuthFlow
// @Produce json
// @Param id path string true "Flow ID"
// @Success 200 {object} router.successResponse{data=FlowResponse} "Flow state, with the session once signed in"
// @Failure 404 {object} router.errorResponse "Flow not found"
// @Router /api/v1/authflow/flows/{id}/submit [post]
func (h *HTTPEndpoint) Submit(r *router.Request) (any, error) {
	out, err := h.uc.Submit(r.Context(), usecase.FlowInput{FlowID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return newFlowResponse(out), nil
}

// SetDigit writes one character into a code slot.
// @Summary Set code digit
// @Tags AuthFlow
// @Accept json
// @Produce json
// @Param id path string true "Flow ID"
// @Param index path int true "Slot index (0-5)"
// @Param request body SetDigitRequest true "Slot value"
// @Success 200 {object} router.successResponse{data=FlowResponse} "Flow state"
// @Failure 400 {object} router.errorResponse "Invalid slot index"
// @Failure 404 {object} router.errorResponse "Flow not found"
// @Router /api/v1/authflow/flows/{id}/otp/slots/{index} [put]
func (h *HTTPEndpoint) SetDigit(r *router.Request) (any, error) {
	index, err := r.GetParamInt("index")
	if err != nil {
		return nil, err
	}

	var req SetDigitRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.SetDigit(r.Context(), usecase.SetDigitInput{
		FlowID: r.GetParam("id"),
		Index:  index,
		Value:  req.Value,
	})
	if err != nil {
		return nil, err
	}

	return newFlowResponse(out), nil
}

// Backspace handles a backspace key press on a code slot.
// @Summary Code backspace
// @Tags AuthFlow
// @Produce json
// @Param id path string true "Flow ID"
// @Param index path int true "Slot index (0-5)"
// @Success 200 {object} router.successResponse{data=FlowResponse} "Flow state"
// @Failure 400 {object} router.errorResponse "Invalid slot index"
// @Failure 404 {object} router.errorResponse "Flow not found"
// @Router /api/v1/authflow/flows/{id}/otp/slots/{index}/backspace [post]
func (h *HTTPEndpoint) Backspace(r *router.Request) (any, error) {
	index, err := r.GetParamInt("index")
	if err != nil {
		return nil, err
	}

	out, err := h.uc.Backspace(r.Context(), usecase.SlotInput{FlowID: r.GetParam("id"), Index: index})
	if err != nil {
		return nil, err
	}

	return newFlowResponse(out), nil
}

// Focus moves or clears the focused code slot.
// @Summary Focus code slot
// @Tags AuthFlow
// @Accept json
// @Produce json
// @Param id path string true "Flow ID"
// @Param request body FocusRequest true "Slot to focus, null to blur"
// @Success 200 {object} router.successResponse{data=FlowResponse} "Flow state"
// @Failure 404 {object} router.errorResponse "Flow not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/authflow/flows/{id}/otp/focus [put]
func (h *HTTPEndpoint) Focus(r *router.Request) (any, error) {
	var req FocusRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.Focus(r.Context(), usecase.FocusInput{FlowID: r.GetParam("id"), Index: req.Index})
	if err != nil {
		return nil, err
	}

	return newFlowResponse(out), nil
}

// Paste fills the code from clipboard text.
// @Summary Paste code
// @Tags AuthFlow
// @Accept json
// @Produce json
// @Param id path string true "Flow ID"
// @Param request body PasteRequest true "Pasted text"
// @Success 200 {object} router.successResponse{data=FlowResponse} "Flow state"
// @Failure 404 {object} router.errorResponse "Flow not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/authflow/flows/{id}/otp/paste [post]
func (h *HTTPEndpoint) Paste(r *router.Request) (any, error) {
	var req PasteRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.Paste(r.Context(), usecase.PasteInput{FlowID: r.GetParam("id"), Text: req.Text})
	if err != nil {
		return nil, err
	}

	return newFlowResponse(out), nil
}

// VerifyOtp submits the entered code.
// @Summary Verify code
// @Tags AuthFlow
// @Produce json
// @Param id path string true "Flow ID"
// @Success 200 {object} router.successResponse{data=FlowResponse} "Flow state, with the session once verified"
// @Failure 404 {object} router.errorResponse "Flow not found"
// @Router /api/v1/authflow/flows/{id}/otp/verify [post]
func (h *HTTPEndpoint) VerifyOtp(r *router.Request) (any, error) {
	out, err := h.uc.VerifyOtp(r.Context(), usecase.FlowInput{FlowID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return newFlowResponse(out), nil
}

// ResendOtp requests a new code once the cooldown elapsed.
// @Summary Resend code
// @Tags AuthFlow
// @Produce json
// @Param id path string true "Flow ID"
// @Success 200 {object} router.successResponse{data=FlowResponse} "Flow state"
// @Failure 404 {object} router.errorResponse "Flow not found"
// @Router /api/v1/authflow/flows/{id}/otp/resend [post]
func (h *HTTPEndpoint) ResendOtp(r *router.Request) (any, error) {
	out, err := h.uc.ResendOtp(r.Context(), usecase.FlowInput{FlowID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return newFlowResponse(out), nil
}
