package notification

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/healthportal/portal/pkg/models"
)

// Handler exposes the requesting workspace's notification list.
type Handler struct {
	from func(echo.Context) *Container
}

func NewHandler(from func(echo.Context) *Container) *Handler {
	return &Handler{from: from}
}

// RegisterRoutes mounts the endpoints on api behind mw, which the server
// uses to restrict them to signed-in users.
func (h *Handler) RegisterRoutes(api *echo.Group, mw ...echo.MiddlewareFunc) {
	api.GET("/notifications", h.HandleList, mw...)
	api.POST("/notifications", h.HandleAdd, mw...)
	api.POST("/notifications/read-all", h.HandleMarkAllRead, mw...)
	api.POST("/notifications/:id/read", h.HandleMarkRead, mw...)
	api.DELETE("/notifications/:id", h.HandleRemove, mw...)
}

type listResponse struct {
	Data        []models.Notification `json:"data"`
	UnreadCount int                   `json:"unread_count"`
}

func (h *Handler) HandleList(c echo.Context) error {
	n := h.from(c)
	return c.JSON(http.StatusOK, listResponse{Data: n.List(), UnreadCount: n.UnreadCount()})
}

// addRequest accepts either literal content or a template id with data.
type addRequest struct {
	NewNotification
	Template string            `json:"template,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

func (h *Handler) HandleAdd(c echo.Context) error {
	var req addRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	n := h.from(c)
	if req.Template != "" {
		created, err := n.AddFromTemplate(c.Request().Context(), req.Template, req.Data, req.RelatedID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(http.StatusCreated, created)
	}
	if strings.TrimSpace(req.Title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	return c.JSON(http.StatusCreated, n.Add(c.Request().Context(), req.NewNotification))
}

func (h *Handler) HandleMarkRead(c echo.Context) error {
	if !h.from(c).MarkAsRead(c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) HandleMarkAllRead(c echo.Context) error {
	h.from(c).MarkAllAsRead()
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) HandleRemove(c echo.Context) error {
	if !h.from(c).Remove(c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}
	return c.NoContent(http.StatusNoContent)
}
