package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/numsphere/internal/authflow/usecase"
)

type SwitchModeRequest struct {
	Mode string `json:"mode"`
}

type SetFieldsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type SetDigitRequest struct {
	Value string `json:"digit"`
}

// FocusRequest moves focus to a slot. A null index blurs the code input.
type FocusRequest struct {
	Index *int `json:"index"`
}

type PasteRequest struct {
	Text string `json:"clipboard"`
}

type MessageResponse struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

type OtpStateResponse struct {
	Email     string           `json:"email"`
	Slots     []string         `json:"slots"`
	Focus     *int             `json:"focus"`
	Cooldown  int              `json:"cooldown"`
	CanResend bool             `json:"can_resend"`
	Pending   bool             `json:"pending"`
	Message   *MessageResponse `json:"message,omitempty"`
}

type FlowStateResponse struct {
	Open        bool              `json:"open"`
	Mode        string            `json:"mode"`
	Email       string            `json:"email"`
	DisplayName string            `json:"display_name"`
	Pending     bool              `json:"pending"`
	Submittable bool              `json:"submittable"`
	Message     *MessageResponse  `json:"message,omitempty"`
	Otp         *OtpStateResponse `json:"otp,omitempty"`
}

type SessionResponse struct {
	UserID      int64     `json:"user_id,string"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type FlowResponse struct {
	ID      string            `json:"id"`
	Outcome string            `json:"outcome"`
	State   FlowStateResponse `json:"state"`
	Session *SessionResponse  `json:"session,omitempty"`
}

func (r FlowResponse) Message() string {
	if r.Session != nil {
		return "Signed in successfully"
	}
	if r.State.Message != nil {
		return r.State.Message.Text
	}
	return "Flow updated"
}

type FlowCreatedResponse struct {
	FlowResponse
}

func (FlowCreatedResponse) StatusCode() int {
	return http.StatusCreated
}

func (FlowCreatedResponse) Message() string {
	return "Flow opened"
}

func newFlowResponse(out *usecase.FlowOutput) FlowResponse {
	resp := FlowResponse{
		ID:      out.ID,
		Outcome: out.Outcome.String(),
		State:   newFlowStateResponse(out.State),
	}

	if out.Session != nil {
		resp.Session = &SessionResponse{
			UserID:      out.Session.UserID,
			Email:       out.Session.Email,
			AccessToken: out.Session.AccessToken,
			ExpiresAt:   out.Session.ExpiresAt,
		}
	}

	return resp
}

func newFlowStateResponse(s usecase.Snapshot) FlowStateResponse {
	resp := FlowStateResponse{
		Open:        s.Open,
		Mode:        s.Mode.String(),
		Email:       s.Email,
		DisplayName: s.DisplayName,
		Pending:     s.Pending,
		Submittable: s.Submittable,
	}

	if !s.Message.IsZero() {
		resp.Message = &MessageResponse{Text: s.Message.Text, Kind: s.Message.Kind.String()}
	}

	if s.Otp != nil {
		otp := &OtpStateResponse{
			Email:     s.Otp.Email,
			Slots:     s.Otp.Slots,
			Cooldown:  s.Otp.Cooldown,
			CanResend: s.Otp.CanResend,
			Pending:   s.Otp.Pending,
		}
		if s.Otp.Focus >= 0 {
			focus := s.Otp.Focus
			otp.Focus = &focus
		}
		if !s.Otp.Message.IsZero() {
			otp.Message = &MessageResponse{Text: s.Otp.Message.Text, Kind: s.Otp.Message.Kind.String()}
		}
		resp.Otp = otp
	}

	return resp
}
