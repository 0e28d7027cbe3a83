package search

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	from func(echo.Context) *Container
}

func NewHandler(from func(echo.Context) *Container) *Handler {
	return &Handler{from: from}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/search", h.Get)
	api.PUT("/search", h.Put)
	api.DELETE("/search", h.Delete)
}

type queryBody struct {
	Query string `json:"query"`
}

func (h *Handler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, queryBody{Query: h.from(c).Query()})
}

func (h *Handler) Put(c echo.Context) error {
	var b queryBody
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	s := h.from(c)
	s.Set(b.Query)
	return c.JSON(http.StatusOK, queryBody{Query: s.Query()})
}

func (h *Handler) Delete(c echo.Context) error {
	h.from(c).Clear()
	return c.NoContent(http.StatusNoContent)
}
