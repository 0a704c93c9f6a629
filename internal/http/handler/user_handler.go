package handler

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/CobrasOrg/auth-service/internal/domain"
	"github.com/CobrasOrg/auth-service/internal/http/middleware"
	"github.com/CobrasOrg/auth-service/internal/http/response"
	"github.com/CobrasOrg/auth-service/internal/observability"
	"github.com/CobrasOrg/auth-service/internal/repository"
)

type UserHandler struct {
	userRepo repository.UserRepository
}

func NewUserHandler(userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Locality *string `json:"locality"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}
	user, err := h.userRepo.FindByID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "lookup failed")
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}

	var req updateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fields := map[string]any{}
	var items []response.FieldItem
	if req.Name != nil {
		if len(strings.TrimSpace(*req.Name)) < 2 {
			items = append(items, response.FieldItem{Field: "name", Message: "name must be at least 2 characters", Input: *req.Name})
		} else {
			fields["name"] = strings.TrimSpace(*req.Name)
		}
	}
	if req.Email != nil {
		if _, err := mail.ParseAddress(strings.TrimSpace(*req.Email)); err != nil {
			items = append(items, response.FieldItem{Field: "email", Message: "invalid email address", Input: *req.Email})
		} else {
			fields["email"] = *req.Email
		}
	}
	if req.Phone != nil {
		if digitCount(*req.Phone) < 10 {
			items = append(items, response.FieldItem{Field: "phone", Message: "phone must contain at least 10 digits", Input: *req.Phone})
		} else {
			fields["phone"] = *req.Phone
		}
	}
	if req.Address != nil {
		if len(strings.TrimSpace(*req.Address)) < 5 {
			items = append(items, response.FieldItem{Field: "address", Message: "address must be at least 5 characters", Input: *req.Address})
		} else {
			fields["address"] = *req.Address
		}
	}
	if req.Locality != nil {
		// Locality is a clinic attribute; owners have none to update.
		if claims.UserType != domain.UserTypeClinic {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "only clinics can update locality")
			return
		}
		fields["locality"] = *req.Locality
	}
	if len(items) > 0 {
		response.ValidationError(w, r, items)
		return
	}
	if len(fields) == 0 {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "no fields to update")
		return
	}

	user, err := h.userRepo.Update(r.Context(), claims.Subject, fields)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found")
		case errors.Is(err, repository.ErrDuplicateEmail):
			response.Error(w, r, http.StatusBadRequest, "EMAIL_TAKEN", "email already registered")
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "update failed")
		}
		return
	}

	observability.Audit(r, "user.profile.updated", "user_id", claims.Subject)
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}
	if err := h.userRepo.Delete(r.Context(), claims.Subject); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "delete failed")
		return
	}
	observability.Audit(r, "user.account.deleted", "user_id", claims.Subject)
	response.Success(w, r, http.StatusOK, "account deleted")
}
