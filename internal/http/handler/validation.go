package handler

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"unicode"

	"github.com/CobrasOrg/auth-service/internal/domain"
	"github.com/CobrasOrg/auth-service/internal/http/response"
)

// decodeBody parses the JSON request body into dst. On failure it
// writes the 400 itself and returns false so handlers can bail with a
// bare return.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return false
	}
	return true
}

func requireField(items []response.FieldItem, field, value string) []response.FieldItem {
	if strings.TrimSpace(value) == "" {
		items = append(items, response.FieldItem{Field: field, Message: field + " is required"})
	}
	return items
}

// validatePassword enforces the account password policy: at least 8
// characters with an uppercase letter, a lowercase letter and a digit.
func validatePassword(field, password string) []response.FieldItem {
	var items []response.FieldItem
	if len(password) < 8 {
		items = append(items, response.FieldItem{Field: field, Message: "password must be at least 8 characters"})
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		items = append(items, response.FieldItem{Field: field, Message: "password must contain an uppercase letter"})
	}
	if !hasLower {
		items = append(items, response.FieldItem{Field: field, Message: "password must contain a lowercase letter"})
	}
	if !hasDigit {
		items = append(items, response.FieldItem{Field: field, Message: "password must contain a digit"})
	}
	return items
}

func validateRegister(req *registerRequest, userType domain.UserType) []response.FieldItem {
	var items []response.FieldItem

	if len(strings.TrimSpace(req.Name)) < 2 {
		items = append(items, response.FieldItem{Field: "name", Message: "name must be at least 2 characters", Input: req.Name})
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		items = append(items, response.FieldItem{Field: "email", Message: "invalid email address", Input: req.Email})
	}
	items = append(items, validatePassword("password", req.Password)...)
	if req.ConfirmPassword != req.Password {
		items = append(items, response.FieldItem{Field: "confirmPassword", Message: "passwords do not match"})
	}
	if digitCount(req.Phone) < 10 {
		items = append(items, response.FieldItem{Field: "phone", Message: "phone must contain at least 10 digits", Input: req.Phone})
	}
	if len(strings.TrimSpace(req.Address)) < 5 {
		items = append(items, response.FieldItem{Field: "address", Message: "address must be at least 5 characters", Input: req.Address})
	}
	if userType == domain.UserTypeClinic && strings.TrimSpace(req.Locality) == "" {
		items = append(items, response.FieldItem{Field: "locality", Message: "locality is required for clinics"})
	}
	return items
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
