package account

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthportal/portal/pkg/models"
	"github.com/healthportal/portal/pkg/validation"
)

// Handler exposes the account container of the requesting workspace.
type Handler struct {
	from func(echo.Context) *Container
}

func NewHandler(from func(echo.Context) *Container) *Handler {
	return &Handler{from: from}
}

// RegisterRoutes mounts the auth endpoints. limit guards the credential
// endpoints and may be nil.
func (h *Handler) RegisterRoutes(api *echo.Group, limit echo.MiddlewareFunc) {
	g := api.Group("/auth")
	var mw []echo.MiddlewareFunc
	if limit != nil {
		mw = append(mw, limit)
	}
	g.POST("/login", h.Login, mw...)
	g.POST("/register", h.Register, mw...)
	g.POST("/forgot-password", h.ForgotPassword, mw...)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me)
}

type authResponse struct {
	OK     bool                    `json:"ok"`
	User   *models.User            `json:"user,omitempty"`
	Errors []validation.FieldError `json:"errors,omitempty"`
}

func (h *Handler) Login(c echo.Context) error {
	var form LoginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	acct := h.from(c)
	if !acct.Login(c.Request().Context(), form.Email, form.Password) {
		return c.JSON(http.StatusUnauthorized, authResponse{Errors: acct.LastErrors().Errors})
	}
	return c.JSON(http.StatusOK, authResponse{OK: true, User: acct.User()})
}

func (h *Handler) Register(c echo.Context) error {
	var form RegistrationForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	acct := h.from(c)
	if !acct.Register(c.Request().Context(), form) {
		status := http.StatusBadRequest
		errs := acct.LastErrors()
		if !errs.Valid() {
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, authResponse{Errors: errs.Errors})
	}
	return c.JSON(http.StatusCreated, authResponse{OK: true, User: acct.User()})
}

func (h *Handler) ForgotPassword(c echo.Context) error {
	var form ForgotPasswordForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	acct := h.from(c)
	if !acct.ForgotPassword(c.Request().Context(), form.Email) {
		return c.JSON(http.StatusBadRequest, authResponse{Errors: acct.LastErrors().Errors})
	}
	return c.JSON(http.StatusOK, authResponse{OK: true})
}

func (h *Handler) Logout(c echo.Context) error {
	h.from(c).Logout(c.Request().Context())
	return c.JSON(http.StatusOK, authResponse{OK: true})
}

func (h *Handler) Me(c echo.Context) error {
	u := h.from(c).User()
	if u == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	return c.JSON(http.StatusOK, authResponse{OK: true, User: u})
}
