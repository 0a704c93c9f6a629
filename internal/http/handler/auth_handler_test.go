package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CobrasOrg/auth-service/internal/domain"
	"github.com/CobrasOrg/auth-service/internal/service"
)

type handlerEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Errors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
		Input   string `json:"input"`
	} `json:"errors"`
}

type stubAuthService struct {
	registerFn func(in service.RegisterInput, userType domain.UserType) (*service.AuthResult, error)
	loginFn    func(email, password string) (*service.AuthResult, error)
	logoutFn   func(raw string) error
	changeFn   func(userID, current, newPassword string) error
	forgotFn   func(email string) error
	resetFn    func(raw, newPassword string) error
	verifyFn   func(raw string) (*service.TokenIntrospection, error)
}

func (s *stubAuthService) Register(_ context.Context, in service.RegisterInput, userType domain.UserType) (*service.AuthResult, error) {
	if s.registerFn != nil {
		return s.registerFn(in, userType)
	}
	return nil, errors.New("not implemented")
}

func (s *stubAuthService) Login(_ context.Context, email, password string) (*service.AuthResult, error) {
	if s.loginFn != nil {
		return s.loginFn(email, password)
	}
	return nil, errors.New("not implemented")
}

func (s *stubAuthService) Logout(_ context.Context, raw string) error {
	if s.logoutFn != nil {
		return s.logoutFn(raw)
	}
	return nil
}

func (s *stubAuthService) ChangePassword(_ context.Context, userID, current, newPassword string) error {
	if s.changeFn != nil {
		return s.changeFn(userID, current, newPassword)
	}
	return nil
}

func (s *stubAuthService) ForgotPassword(_ context.Context, email string) error {
	if s.forgotFn != nil {
		return s.forgotFn(email)
	}
	return nil
}

func (s *stubAuthService) ResetPassword(_ context.Context, raw, newPassword string) error {
	if s.resetFn != nil {
		return s.resetFn(raw, newPassword)
	}
	return nil
}

func (s *stubAuthService) VerifyToken(_ context.Context, raw string) (*service.TokenIntrospection, error) {
	if s.verifyFn != nil {
		return s.verifyFn(raw)
	}
	return nil, errors.New("not implemented")
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) (*httptest.ResponseRecorder, handlerEnvelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	var env handlerEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, rec.Body.String())
	}
	return rec, env
}

func validRegisterBody() map[string]any {
	return map[string]any{
		"name":            "Pat Tester",
		"email":           "pat@example.com",
		"password":        "Sup3rSecret",
		"confirmPassword": "Sup3rSecret",
		"phone":           "5551234567",
		"address":         "99 Handler Way",
	}
}

func marshalBody(t *testing.T, body map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return string(raw)
}

func TestRegisterOwnerSuccess(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(in service.RegisterInput, userType domain.UserType) (*service.AuthResult, error) {
			if userType != domain.UserTypeOwner {
				t.Fatalf("expected owner registration, got %q", userType)
			}
			return &service.AuthResult{
				User:        &domain.User{ID: "u-1", Email: in.Email, UserType: userType},
				AccessToken: "signed-token",
			}, nil
		},
	}
	h := NewAuthHandler(svc)

	rec, env := postJSON(t, h.RegisterOwner, marshalBody(t, validRegisterBody()))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if !env.Success {
		t.Fatalf("expected success envelope, got %s", rec.Body.String())
	}
	if !strings.Contains(string(env.Data), "signed-token") {
		t.Fatalf("expected token in payload, got %s", env.Data)
	}
}

func TestRegisterValidationFailures(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	cases := []struct {
		name      string
		mutate    func(map[string]any)
		wantField string
	}{
		{"short name", func(b map[string]any) { b["name"] = "A" }, "name"},
		{"bad email", func(b map[string]any) { b["email"] = "not-an-email" }, "email"},
		{"weak password", func(b map[string]any) { b["password"] = "alllowercase1"; b["confirmPassword"] = "alllowercase1" }, "password"},
		{"password mismatch", func(b map[string]any) { b["confirmPassword"] = "Different1X" }, "confirmPassword"},
		{"short phone", func(b map[string]any) { b["phone"] = "12345" }, "phone"},
		{"short address", func(b map[string]any) { b["address"] = "abc" }, "address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := validRegisterBody()
			tc.mutate(body)
			rec, env := postJSON(t, h.RegisterOwner, marshalBody(t, body))
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d (%s)", rec.Code, rec.Body.String())
			}
			found := false
			for _, item := range env.Errors {
				if item.Field == tc.wantField {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected a violation for %q, got %s", tc.wantField, rec.Body.String())
			}
		})
	}
}

func TestRegisterClinicRequiresLocality(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	rec, env := postJSON(t, h.RegisterClinic, marshalBody(t, validRegisterBody()))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	found := false
	for _, item := range env.Errors {
		if item.Field == "locality" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected locality violation, got %s", rec.Body.String())
	}
}

// Validation details must never echo submitted password values.
func TestValidationRedactsPasswordInput(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	body := validRegisterBody()
	body["password"] = "leakme"
	body["confirmPassword"] = "leakme"
	rec, _ := postJSON(t, h.RegisterOwner, marshalBody(t, body))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "leakme") {
		t.Fatalf("password value leaked into validation response: %s", rec.Body.String())
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(service.RegisterInput, domain.UserType) (*service.AuthResult, error) {
			return nil, service.ErrEmailTaken
		},
	}
	h := NewAuthHandler(svc)

	rec, env := postJSON(t, h.RegisterOwner, marshalBody(t, validRegisterBody()))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "EMAIL_TAKEN" {
		t.Fatalf("expected EMAIL_TAKEN envelope, got %s", rec.Body.String())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(string, string) (*service.AuthResult, error) {
			return nil, service.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(svc)

	rec, env := postJSON(t, h.Login, `{"email":"a@example.com","password":"Whatever1"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "INVALID_CREDENTIALS" {
		t.Fatalf("expected INVALID_CREDENTIALS envelope, got %s", rec.Body.String())
	}
}

func TestLoginMalformedBody(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	rec, env := postJSON(t, h.Login, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "BAD_REQUEST" {
		t.Fatalf("expected BAD_REQUEST envelope, got %s", rec.Body.String())
	}
}

func TestLogoutWithoutBearer(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestForgotPasswordAlwaysAccepted(t *testing.T) {
	calls := 0
	svc := &stubAuthService{forgotFn: func(string) error {
		calls++
		return nil
	}}
	h := NewAuthHandler(svc)

	rec, env := postJSON(t, h.ForgotPassword, `{"email":"anyone@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !env.Success {
		t.Fatalf("expected success envelope, got %s", rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("expected one service call, got %d", calls)
	}
}

func TestResetPasswordTokenRevoked(t *testing.T) {
	svc := &stubAuthService{resetFn: func(string, string) error {
		return service.ErrTokenRevoked
	}}
	h := NewAuthHandler(svc)

	rec, env := postJSON(t, h.ResetPassword, `{"token":"tok","newPassword":"NewSecret99","confirmPassword":"NewSecret99"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "TOKEN_REVOKED" {
		t.Fatalf("expected TOKEN_REVOKED envelope, got %s", rec.Body.String())
	}
}

func TestVerifyReportsIntrospection(t *testing.T) {
	svc := &stubAuthService{verifyFn: func(raw string) (*service.TokenIntrospection, error) {
		if raw != "the-token" {
			t.Fatalf("expected bearer token to reach the service, got %q", raw)
		}
		return &service.TokenIntrospection{UserID: "u-9", UserType: domain.UserTypeClinic}, nil
	}}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer the-token")
	rec := httptest.NewRecorder()
	h.Verify(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "u-9") {
		t.Fatalf("expected introspection payload, got %s", rec.Body.String())
	}
}
