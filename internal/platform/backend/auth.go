package backend

import (
	"context"
	"fmt"

	"github.com/healthportal/portal/pkg/models"
)

// AuthResult is the login response: the signed-in user and an opaque token.
type AuthResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
	Phone    string      `json:"phone,omitempty"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.Post(ctx, "", "/auth/login", body, &res); err != nil {
		return nil, err
	}
	if res.Token == "" || res.User.ID == "" {
		return nil, fmt.Errorf("login response missing user or token")
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.Post(ctx, "", "/auth/register", req, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.Post(ctx, "", "/auth/forgot-password", map[string]string{"email": email}, nil)
}
