package account

import (
	"strings"

	"github.com/healthportal/portal/internal/platform/backend"
	"github.com/healthportal/portal/pkg/models"
	"github.com/healthportal/portal/pkg/validation"
)

// Persistent storage keys. A workspace keeps exactly these two entries.
const (
	KeyUser  = "user"
	KeyToken = "token"
)

// LoginForm is the body of the login screens.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f LoginForm) Validate() validation.Result {
	var r validation.Result
	r.Required("email", f.Email)
	r.Email("email", f.Email)
	r.Required("password", f.Password)
	return r
}

// RegistrationForm is the body of the registration screen.
type RegistrationForm struct {
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Password        string      `json:"password"`
	ConfirmPassword string      `json:"confirm_password"`
	Role            models.Role `json:"role"`
	Phone           string      `json:"phone,omitempty"`
}

func (f RegistrationForm) Validate() validation.Result {
	var r validation.Result
	r.Required("name", f.Name)
	if r.Required("email", f.Email) {
		r.Email("email", f.Email)
	}
	if r.Required("password", f.Password) {
		r.MinLength("password", f.Password, 6)
	}
	if f.ConfirmPassword != "" && f.ConfirmPassword != f.Password {
		r.Add("confirm_password", "does not match password")
	}
	// Admin accounts are provisioned, never self-registered.
	switch f.Role {
	case models.RolePatient, models.RoleDoctor, models.RoleHospital, models.RoleTrainer:
	case "":
		r.Add("role", "is required")
	default:
		r.Add("role", "cannot register as %q", string(f.Role))
	}
	return r
}

func (f RegistrationForm) request() backend.RegisterRequest {
	return backend.RegisterRequest{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Role:     f.Role,
		Phone:    strings.TrimSpace(f.Phone),
	}
}

// ForgotPasswordForm is the body of the password reset screen.
type ForgotPasswordForm struct {
	Email string `json:"email"`
}

func (f ForgotPasswordForm) Validate() validation.Result {
	var r validation.Result
	if r.Required("email", f.Email) {
		r.Email("email", f.Email)
	}
	return r
}
