package inbound

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/numsphere/internal/authflow/entity"
	"github.com/shandysiswandi/numsphere/internal/authflow/usecase"
	"github.com/shandysiswandi/numsphere/internal/pkg/clock"
	"github.com/shandysiswandi/numsphere/internal/pkg/config"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
	"github.com/shandysiswandi/numsphere/internal/pkg/instrument"
	"github.com/shandysiswandi/numsphere/internal/pkg/jwt"
	"github.com/shandysiswandi/numsphere/internal/pkg/router"
	"github.com/shandysiswandi/numsphere/internal/pkg/uid"
	"github.com/shandysiswandi/numsphere/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct{}

func (stubProvider) Authenticate(_ context.Context, email, password string) (*entity.Session, error) {
	if password != "secret-pass" {
		return nil, goerror.NewBusiness("Invalid email or password", goerror.CodeUnauthorized)
	}
	return &entity.Session{UserID: 7, Email: email, AccessToken: "tok", ExpiresAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func (stubProvider) Register(_ context.Context, email, _, _ string) (*entity.PendingAccount, error) {
	return &entity.PendingAccount{UserID: 8, Email: email}, nil
}

func (stubProvider) RequestPasswordReset(context.Context, string) error { return nil }

func (stubProvider) SendOtp(context.Context, string) error { return nil }

func (stubProvider) VerifyOtp(_ context.Context, email, code string) (*entity.Session, error) {
	if code != "246810" {
		return nil, goerror.NewBusiness(entity.MsgInvalidCode, goerror.CodeUnauthorized)
	}
	return &entity.Session{UserID: 8, Email: email, AccessToken: "tok2"}, nil
}

type envelope struct {
	Message string            `json:"message"`
	Data    FlowResponse      `json:"data"`
	Error   map[string]string `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  authflow:\n    max_flows: 10\n"))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	clk := clock.NewFake(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))
	token, err := jwt.NewHS512(jwt.Config{
		Secret: []byte(strings.Repeat("k", 64)),
		TTL:    time.Minute,
		Clock:  clk,
		UUID:   uid.NewUUID(),
	})
	require.NoError(t, err)

	r := router.NewRouter(router.Config{
		Config:     cfg,
		UUID:       uid.NewUUID(),
		JWT:        token,
		Instrument: instrument.NewNoop(),
	})

	uc := usecase.New(usecase.Dependency{
		Provider:   stubProvider{},
		Validator:  v,
		Config:     cfg,
		Clock:      clk,
		UUID:       uid.NewUUID(),
		Instrument: instrument.NewNoop(),
	})
	t.Cleanup(func() { _ = uc.Shutdown() })

	RegisterHTTPEndpoint(r, uc)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string) (int, envelope) {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}

	return resp.StatusCode, env
}

func TestHTTPEndpoint_LoginFlow(t *testing.T) {
	// Arrange
	srv := newTestServer(t)

	code, opened := call(t, srv, http.MethodPost, "/api/v1/authflow/flows", "")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "login", opened.Data.State.Mode)
	assert.True(t, opened.Data.State.Open)
	base := "/api/v1/authflow/flows/" + opened.Data.ID

	// Act
	code, body := call(t, srv, http.MethodPost, base+"/submit", "")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, body.Data.State.Message)
	assert.Equal(t, entity.MsgIncompleteFields, body.Data.State.Message.Text)
	assert.Equal(t, "invalid", body.Data.Outcome)

	code, _ = call(t, srv, http.MethodPut, base+"/fields", `{"email":"ana@example.com","password":"secret-pass"}`)
	require.Equal(t, http.StatusOK, code)

	code, body = call(t, srv, http.MethodPost, base+"/submit", "")

	// Assert
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Signed in successfully", body.Message)
	require.NotNil(t, body.Data.Session)
	assert.Equal(t, "tok", body.Data.Session.AccessToken)
	assert.False(t, body.Data.State.Open)

	code, _ = call(t, srv, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHTTPEndpoint_SignupOtpFlow(t *testing.T) {
	srv := newTestServer(t)

	_, opened := call(t, srv, http.MethodPost, "/api/v1/authflow/flows", "")
	base := "/api/v1/authflow/flows/" + opened.Data.ID

	code, body := call(t, srv, http.MethodPut, base+"/mode", `{"mode":"signup"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "signup", body.Data.State.Mode)

	call(t, srv, http.MethodPut, base+"/fields", `{"email":"bo@example.com","password":"secret-pass","display_name":"Bo"}`)
	_, body = call(t, srv, http.MethodPost, base+"/submit", "")
	assert.Equal(t, "otp_required", body.Data.Outcome)
	assert.Equal(t, "otp", body.Data.State.Mode)
	require.NotNil(t, body.Data.State.Otp)
	assert.Equal(t, 60, body.Data.State.Otp.Cooldown)
	require.NotNil(t, body.Data.State.Otp.Focus)
	assert.Equal(t, 0, *body.Data.State.Otp.Focus)

	code, _ = call(t, srv, http.MethodPut, base+"/mode", `{"mode":"forgot"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = call(t, srv, http.MethodPut, base+"/otp/slots/abc", `{"digit":"1"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, srv, http.MethodPut, base+"/otp/slots/9", `{"digit":"1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	_, body = call(t, srv, http.MethodPut, base+"/otp/slots/0", `{"digit":"2"}`)
	assert.Equal(t, "2", body.Data.State.Otp.Slots[0])
	assert.Equal(t, 1, *body.Data.State.Otp.Focus)

	_, body = call(t, srv, http.MethodPut, base+"/otp/focus", `{"index":null}`)
	assert.Nil(t, body.Data.State.Otp.Focus)

	_, body = call(t, srv, http.MethodPost, base+"/otp/paste", `{"clipboard":"24-68-10"}`)
	assert.Equal(t, []string{"2", "4", "6", "8", "1", "0"}, body.Data.State.Otp.Slots)

	_, body = call(t, srv, http.MethodPost, base+"/otp/resend", "")
	assert.Equal(t, "ignored", body.Data.Outcome)

	_, body = call(t, srv, http.MethodPost, base+"/otp/verify", "")
	assert.Equal(t, "authenticated", body.Data.Outcome)
	require.NotNil(t, body.Data.Session)
	assert.Equal(t, "tok2", body.Data.Session.AccessToken)
}

func TestHTTPEndpoint_UnknownFlow(t *testing.T) {
	srv := newTestServer(t)

	code, _ := call(t, srv, http.MethodGet, "/api/v1/authflow/flows/5b8e3c7e-7b1f-4d55-9a7c-0d1b8e0f9a11", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body := call(t, srv, http.MethodPost, "/api/v1/authflow/flows/not-a-uuid/submit", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.NotEmpty(t, body.Error)

	code, _ = call(t, srv, http.MethodDelete, "/api/v1/authflow/flows/5b8e3c7e-7b1f-4d55-9a7c-0d1b8e0f9a11", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHTTPEndpoint_StreamFlow(t *testing.T) {
	// Arrange
	srv := newTestServer(t)
	_, opened := call(t, srv, http.MethodPost, "/api/v1/authflow/flows", "")
	base := "/api/v1/authflow/flows/" + opened.Data.ID

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+base+"/stream", nil)
	require.NoError(t, err)

	// Act
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan string, 16)
	go func() {
		defer close(events)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if line := sc.Text(); strings.HasPrefix(line, "event: ") {
				events <- strings.TrimPrefix(line, "event: ")
			}
		}
	}()

	assert.Equal(t, "flow", <-events)

	code, _ := call(t, srv, http.MethodDelete, base, "")
	require.Equal(t, http.StatusNoContent, code)

	var last string
	for evt := range events {
		last = evt
	}
	assert.Equal(t, "closed", last)
}

func TestHTTPEndpoint_StreamUnknownFlow(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/v1/authflow/flows/5b8e3c7e-7b1f-4d55-9a7c-0d1b8e0f9a11/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
