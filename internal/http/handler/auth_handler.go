package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/CobrasOrg/auth-service/internal/domain"
	"github.com/CobrasOrg/auth-service/internal/http/middleware"
	"github.com/CobrasOrg/auth-service/internal/http/response"
	"github.com/CobrasOrg/auth-service/internal/observability"
	"github.com/CobrasOrg/auth-service/internal/repository"
	"github.com/CobrasOrg/auth-service/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthServiceInterface
}

func NewAuthHandler(authSvc service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	Locality        string `json:"locality"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *AuthHandler) RegisterOwner(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, domain.UserTypeOwner)
}

func (h *AuthHandler) RegisterClinic(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, domain.UserTypeClinic)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request, userType domain.UserType) {
	endpoint := "register_" + string(userType)
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), endpoint, status, time.Since(start))
	}()

	var req registerRequest
	if !decodeBody(w, r, &req) {
		status = "failure"
		return
	}
	if items := validateRegister(&req, userType); len(items) > 0 {
		status = "failure"
		observability.RecordAuthRegister(r.Context(), string(userType), "invalid_input")
		response.ValidationError(w, r, items)
		return
	}

	result, err := h.authSvc.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		Locality: req.Locality,
	}, userType)
	if err != nil {
		status = "failure"
		if errors.Is(err, service.ErrEmailTaken) {
			observability.Audit(r, "auth.register.failed", "reason", "email_taken")
			observability.RecordAuthRegister(r.Context(), string(userType), "email_taken")
			response.Error(w, r, http.StatusBadRequest, "EMAIL_TAKEN", service.ErrEmailTaken.Error())
			return
		}
		observability.Audit(r, "auth.register.failed", "reason", "internal")
		observability.RecordAuthRegister(r.Context(), string(userType), "failure")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "registration failed")
		return
	}

	observability.Audit(r, "auth.register.success", "user_id", result.User.ID, "user_type", string(userType))
	observability.RecordAuthRegister(r.Context(), string(userType), "success")
	response.JSON(w, r, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", status, time.Since(start))
	}()

	var req loginRequest
	if !decodeBody(w, r, &req) {
		status = "failure"
		return
	}
	var items []response.FieldItem
	items = requireField(items, "email", req.Email)
	items = requireField(items, "password", req.Password)
	if len(items) > 0 {
		status = "failure"
		response.ValidationError(w, r, items)
		return
	}

	result, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		status = "failure"
		if errors.Is(err, service.ErrInvalidCredentials) {
			observability.Audit(r, "auth.login.failed", "reason", "invalid_credentials")
			observability.RecordAuthLogin(r.Context(), "invalid_credentials")
			response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", service.ErrInvalidCredentials.Error())
			return
		}
		observability.Audit(r, "auth.login.failed", "reason", "internal")
		observability.RecordAuthLogin(r.Context(), "failure")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "login failed")
		return
	}

	observability.Audit(r, "auth.login.success", "user_id", result.User.ID)
	observability.RecordAuthLogin(r.Context(), "success")
	response.JSON(w, r, http.StatusOK, result)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "logout", status, time.Since(start))
	}()

	raw, ok := middleware.BearerToken(r)
	if !ok {
		status = "failure"
		observability.Audit(r, "auth.logout.failed", "reason", "missing_token")
		observability.RecordAuthLogout(r.Context(), "failure")
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or malformed authorization header")
		return
	}
	if err := h.authSvc.Logout(r.Context(), raw); err != nil {
		status = "failure"
		if errors.Is(err, service.ErrInvalidOrExpiredToken) {
			observability.Audit(r, "auth.logout.failed", "reason", "invalid_token")
			observability.RecordAuthLogout(r.Context(), "invalid_token")
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", service.ErrInvalidOrExpiredToken.Error())
			return
		}
		observability.Audit(r, "auth.logout.failed", "reason", "revocation_error")
		observability.RecordAuthLogout(r.Context(), "failure")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "logout failed")
		return
	}

	observability.Audit(r, "auth.logout.success")
	observability.RecordAuthLogout(r.Context(), "success")
	observability.RecordTokenRevocation(r.Context(), "logout", "success")
	response.Success(w, r, http.StatusOK, "logged out")
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "password_change", status, time.Since(start))
	}()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		status = "failure"
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}

	var req changePasswordRequest
	if !decodeBody(w, r, &req) {
		status = "failure"
		return
	}
	var items []response.FieldItem
	items = requireField(items, "currentPassword", req.CurrentPassword)
	items = append(items, validatePassword("newPassword", req.NewPassword)...)
	if req.ConfirmPassword != req.NewPassword {
		items = append(items, response.FieldItem{Field: "confirmPassword", Message: "passwords do not match"})
	}
	if len(items) > 0 {
		status = "failure"
		observability.RecordPasswordFlowEvent(r.Context(), "change", "invalid_input")
		response.ValidationError(w, r, items)
		return
	}

	if err := h.authSvc.ChangePassword(r.Context(), claims.Subject, req.CurrentPassword, req.NewPassword); err != nil {
		status = "failure"
		switch {
		case errors.Is(err, service.ErrCurrentPasswordIncorrect):
			observability.Audit(r, "auth.password.change.failed", "user_id", claims.Subject, "reason", "wrong_current_password")
			observability.RecordPasswordFlowEvent(r.Context(), "change", "wrong_current_password")
			response.Error(w, r, http.StatusUnauthorized, "INVALID_PASSWORD", service.ErrCurrentPasswordIncorrect.Error())
		case errors.Is(err, repository.ErrUserNotFound):
			observability.Audit(r, "auth.password.change.failed", "user_id", claims.Subject, "reason", "user_not_found")
			observability.RecordPasswordFlowEvent(r.Context(), "change", "user_not_found")
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found")
		default:
			observability.Audit(r, "auth.password.change.failed", "user_id", claims.Subject, "reason", "internal")
			observability.RecordPasswordFlowEvent(r.Context(), "change", "failure")
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "password change failed")
		}
		return
	}

	observability.Audit(r, "auth.password.change.success", "user_id", claims.Subject)
	observability.RecordPasswordFlowEvent(r.Context(), "change", "success")
	response.Success(w, r, http.StatusOK, "password updated")
}

// ForgotPassword answers identically whether or not the email is
// registered. The only validation surfaced is a missing email field.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "password_forgot", status, time.Since(start))
	}()

	var req forgotPasswordRequest
	if !decodeBody(w, r, &req) {
		status = "failure"
		return
	}
	if items := requireField(nil, "email", req.Email); len(items) > 0 {
		status = "failure"
		response.ValidationError(w, r, items)
		return
	}

	if err := h.authSvc.ForgotPassword(r.Context(), req.Email); err != nil {
		status = "failure"
		observability.RecordPasswordFlowEvent(r.Context(), "forgot", "failure")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "request failed")
		return
	}

	observability.RecordPasswordFlowEvent(r.Context(), "forgot", "accepted")
	response.Success(w, r, http.StatusOK, "if the email is registered, a reset link has been sent")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "password_reset", status, time.Since(start))
	}()

	var req resetPasswordRequest
	if !decodeBody(w, r, &req) {
		status = "failure"
		return
	}
	var items []response.FieldItem
	items = requireField(items, "token", req.Token)
	items = append(items, validatePassword("newPassword", req.NewPassword)...)
	if req.ConfirmPassword != req.NewPassword {
		items = append(items, response.FieldItem{Field: "confirmPassword", Message: "passwords do not match"})
	}
	if len(items) > 0 {
		status = "failure"
		observability.RecordPasswordFlowEvent(r.Context(), "reset", "invalid_input")
		response.ValidationError(w, r, items)
		return
	}

	if err := h.authSvc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		status = "failure"
		switch {
		case errors.Is(err, service.ErrTokenRevoked):
			observability.Audit(r, "auth.password.reset.failed", "reason", "token_revoked")
			observability.RecordPasswordFlowEvent(r.Context(), "reset", "token_revoked")
			response.Error(w, r, http.StatusUnauthorized, "TOKEN_REVOKED", service.ErrTokenRevoked.Error())
		case errors.Is(err, service.ErrInvalidOrExpiredToken):
			observability.Audit(r, "auth.password.reset.failed", "reason", "invalid_token")
			observability.RecordPasswordFlowEvent(r.Context(), "reset", "invalid_token")
			response.Error(w, r, http.StatusUnauthorized, "INVALID_TOKEN", service.ErrInvalidOrExpiredToken.Error())
		default:
			observability.Audit(r, "auth.password.reset.failed", "reason", "internal")
			observability.RecordPasswordFlowEvent(r.Context(), "reset", "failure")
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "password reset failed")
		}
		return
	}

	observability.Audit(r, "auth.password.reset.success")
	observability.RecordPasswordFlowEvent(r.Context(), "reset", "success")
	observability.RecordTokenRevocation(r.Context(), "password_reset", "success")
	response.Success(w, r, http.StatusOK, "password updated")
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "verify", status, time.Since(start))
	}()

	raw, ok := middleware.BearerToken(r)
	if !ok {
		status = "failure"
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or malformed authorization header")
		return
	}

	introspection, err := h.authSvc.VerifyToken(r.Context(), raw)
	if err != nil {
		status = "failure"
		if errors.Is(err, service.ErrTokenRevoked) || errors.Is(err, service.ErrInvalidOrExpiredToken) {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", service.ErrInvalidOrExpiredToken.Error())
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "verification failed")
		return
	}

	response.JSON(w, r, http.StatusOK, introspection)
}
