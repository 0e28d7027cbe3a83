package router

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/healthportal/portal/internal/platform/session"
)

// Handler serves navigation over HTTP. Every response is a rendered View.
type Handler struct {
	renderer *Renderer
	from     func(echo.Context) *session.Workspace
}

func NewHandler(renderer *Renderer, from func(echo.Context) *session.Workspace) *Handler {
	return &Handler{renderer: renderer, from: from}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/navigate", h.HandleNavigate)
	api.POST("/navigate/back", h.HandleBack)
	api.POST("/navigate/forward", h.HandleForward)
	api.GET("/screen", h.HandleScreen)
}

type navigateRequest struct {
	Path string `json:"path"`
}

// HandleNavigate pushes path onto the workspace history and renders it. When
// the path falls back to another screen, history records the fallback.
func (h *Handler) HandleNavigate(c echo.Context) error {
	var req navigateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !strings.HasPrefix(req.Path, "/") {
		return echo.NewHTTPError(http.StatusBadRequest, "path must start with /")
	}
	ws := h.from(c)
	view, code, err := h.renderer.Render(c.Request().Context(), ws, req.Path)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	ws.History.Navigate(view.Path)
	return c.JSON(code, view)
}

func (h *Handler) HandleBack(c echo.Context) error {
	ws := h.from(c)
	path, _ := ws.History.Back()
	return h.render(c, ws, path)
}

func (h *Handler) HandleForward(c echo.Context) error {
	ws := h.from(c)
	path, _ := ws.History.Forward()
	return h.render(c, ws, path)
}

// HandleScreen renders ?path= (or the current entry) without touching
// history.
func (h *Handler) HandleScreen(c echo.Context) error {
	ws := h.from(c)
	path := c.QueryParam("path")
	if path == "" {
		path = ws.History.Current()
	}
	if !strings.HasPrefix(path, "/") {
		return echo.NewHTTPError(http.StatusBadRequest, "path must start with /")
	}
	return h.render(c, ws, path)
}

func (h *Handler) render(c echo.Context, ws *session.Workspace, path string) error {
	view, code, err := h.renderer.Render(c.Request().Context(), ws, path)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(code, view)
}
