package datastore

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/healthportal/portal/internal/platform/auth"
	"github.com/healthportal/portal/internal/platform/backend"
	"github.com/healthportal/portal/pkg/models"
	"github.com/healthportal/portal/pkg/pagination"
)

// Handler exposes the requesting workspace's store.
type Handler struct {
	from   func(echo.Context) *Container
	user   func(echo.Context) *models.User
	search func(echo.Context) string
}

// NewHandler builds a handler. search returns the workspace's current search
// term, used when a listing request carries no q parameter.
func NewHandler(from func(echo.Context) *Container, user func(echo.Context) *models.User, search func(echo.Context) string) *Handler {
	return &Handler{from: from, user: user, search: search}
}

// addRoles lists who may create records of each kind. Admins always may.
var addRoles = map[Kind][]string{
	KindDoctors:      {"hospital"},
	KindPatients:     {},
	KindHospitals:    {},
	KindTrainers:     {},
	KindAppointments: {"patient"},
}

// appointmentRoles lists who may apply each appointment action.
var appointmentRoles = map[string][]string{
	"confirm":    {"doctor", "hospital", "trainer"},
	"complete":   {"doctor", "hospital", "trainer"},
	"cancel":     {"patient", "doctor", "hospital", "trainer"},
	"reschedule": {"patient", "doctor", "hospital", "trainer"},
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	store := api.Group("/store", auth.RequireAuthenticated())
	store.GET("/:kind", h.HandleList)
	store.POST("/:kind", h.HandleAdd)
	store.POST("/:kind/refresh", h.HandleRefresh)
	store.POST("/:kind/:id/:action", h.HandleAction)

	admin := api.Group("/admin", auth.RequireRole("admin"))
	admin.GET("/stats", h.HandleStats)
	admin.GET("/:kind", h.HandleAdminList)
}

type listResponse struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Loading bool        `json:"loading"`
}

func (h *Handler) kind(c echo.Context) (Kind, error) {
	k, err := ParseKind(c.Param("kind"))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return k, nil
}

// HandleList returns the mirrored collection filtered by q or the workspace
// search term. Appointments are limited to the caller's own.
func (h *Handler) HandleList(c echo.Context) error {
	kind, err := h.kind(c)
	if err != nil {
		return err
	}
	term := c.QueryParam("q")
	if term == "" && h.search != nil {
		term = h.search(c)
	}
	s := h.from(c)

	var data interface{}
	var total int
	switch kind {
	case KindPatients:
		items := FilterPatients(s.Patients(), term)
		data, total = items, len(items)
	case KindDoctors:
		items := FilterDoctors(s.Doctors(), term)
		data, total = items, len(items)
	case KindHospitals:
		items := FilterHospitals(s.Hospitals(), term)
		data, total = items, len(items)
	case KindTrainers:
		items := FilterTrainers(s.Trainers(), term)
		data, total = items, len(items)
	case KindAppointments:
		items := FilterAppointments(s.AppointmentsFor(h.user(c)), term)
		data, total = items, len(items)
	}
	return c.JSON(http.StatusOK, listResponse{Data: data, Total: total, Loading: s.Loading(kind)})
}

func (h *Handler) HandleRefresh(c echo.Context) error {
	kind, err := h.kind(c)
	if err != nil {
		return err
	}
	if err := h.from(c).Refresh(c.Request().Context(), kind); err != nil {
		return backendError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) HandleAdd(c echo.Context) error {
	kind, err := h.kind(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if !auth.HasRole(ctx, addRoles[kind]...) {
		return echo.NewHTTPError(http.StatusForbidden, "not allowed to add "+string(kind))
	}
	s := h.from(c)

	var created interface{}
	switch kind {
	case KindDoctors:
		var f DoctorForm
		if err := c.Bind(&f); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if u := h.user(c); u != nil && u.Role == models.RoleHospital && f.HospitalID == "" {
			f.HospitalID = u.ID
		}
		created, err = s.AddDoctor(ctx, f)
	case KindPatients:
		var f PatientForm
		if err := c.Bind(&f); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		created, err = s.AddPatient(ctx, f)
	case KindHospitals:
		var f HospitalForm
		if err := c.Bind(&f); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		created, err = s.AddHospital(ctx, f)
	case KindTrainers:
		var f TrainerForm
		if err := c.Bind(&f); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		created, err = s.AddTrainer(ctx, f)
	case KindAppointments:
		var f AppointmentForm
		if err := c.Bind(&f); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if u := h.user(c); u != nil && u.Role == models.RolePatient {
			f.PatientID, f.PatientName = u.ID, u.Name
		}
		created, err = s.Book(ctx, f)
	}
	if err != nil {
		return backendError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

// HandleAction dispatches approve/reject/suspend on administered records and
// confirm/cancel/complete/reschedule on appointments.
func (h *Handler) HandleAction(c echo.Context) error {
	kind, err := h.kind(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	id := c.Param("id")
	action := strings.ToLower(c.Param("action"))
	s := h.from(c)

	if kind == KindAppointments {
		roles, ok := appointmentRoles[action]
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "unknown appointment action "+action)
		}
		if !auth.HasRole(ctx, roles...) {
			return echo.NewHTTPError(http.StatusForbidden, "not allowed to "+action+" appointments")
		}
		switch action {
		case "confirm":
			err = s.Confirm(ctx, id)
		case "complete":
			err = s.Complete(ctx, id)
		case "cancel":
			err = s.Cancel(ctx, id)
		case "reschedule":
			var f RescheduleForm
			if bindErr := c.Bind(&f); bindErr != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
			}
			err = s.Reschedule(ctx, id, f)
		}
	} else {
		if _, ok := Action(action).status(); !ok {
			return echo.NewHTTPError(http.StatusNotFound, "unknown action "+action)
		}
		var roles []string
		if kind == KindDoctors {
			roles = []string{"hospital"}
		}
		if !auth.HasRole(ctx, roles...) {
			return echo.NewHTTPError(http.StatusForbidden, "not allowed to "+action+" "+string(kind))
		}
		err = s.Transition(ctx, kind, id, Action(action))
	}
	if err != nil {
		return backendError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) HandleStats(c echo.Context) error {
	stats, err := h.from(c).Stats(c.Request().Context())
	if err != nil {
		return backendError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// HandleAdminList passes a paginated admin listing through from the backend.
func (h *Handler) HandleAdminList(c echo.Context) error {
	kind, err := h.kind(c)
	if err != nil {
		return err
	}
	p := pagination.FromContext(c)
	page, err := h.from(c).List(c.Request().Context(), kind, backend.ListQuery{
		Page: p.Page, Limit: p.Limit, Sort: p.Sort, Order: p.Order, Search: p.Search,
	})
	if err != nil {
		return backendError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(page.Items, page.Total, page.Page, page.Limit))
}

// backendError maps store errors onto HTTP errors.
func backendError(err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, verr.Result)
	}
	if errors.Is(err, ErrUnknownKind) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if errors.Is(err, backend.ErrUnauthorized) {
		return echo.NewHTTPError(http.StatusUnauthorized, "backend session expired")
	}
	if errors.Is(err, backend.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
		return echo.NewHTTPError(apiErr.StatusCode, apiErr.Message)
	}
	return echo.NewHTTPError(http.StatusBadGateway, err.Error())
}
