package datastore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/healthportal/portal/internal/platform/auth"
	"github.com/healthportal/portal/internal/platform/backend"
	"github.com/healthportal/portal/pkg/models"
)

func newTestHandler(api *fakeBackend, user *models.User, term string) (*Handler, *Container) {
	s, _ := newTestStore(api)
	h := NewHandler(
		func(echo.Context) *Container { return s },
		func(echo.Context) *models.User { return user },
		func(echo.Context) string { return term },
	)
	return h, s
}

func newStoreContext(method, target, body string, user *models.User, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), auth.NewSessionID(), user.ID, []string{user.Role.String()}))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d (%v)", code, he.Code, he.Message)
	}
}

func TestHandler_ListUsesWorkspaceSearch(t *testing.T) {
	api := newFakeBackend()
	api.collections["/patients"] = []models.Patient{{ID: "p1", Name: "John"}, {ID: "p2", Name: "Alice"}}
	admin := &models.User{ID: "a1", Role: models.RoleAdmin}
	h, s := newTestHandler(api, admin, "john")
	if err := s.Refresh(context.Background(), KindPatients); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	c, rec := newStoreContext(http.MethodGet, "/", "", admin, "kind", "patients")
	if err := h.HandleList(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Data  []models.Patient `json:"data"`
		Total int              `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || resp.Data[0].ID != "p1" {
		t.Fatalf("unexpected list: %+v", resp)
	}
}

func TestHandler_ListUnknownKind(t *testing.T) {
	h, _ := newTestHandler(newFakeBackend(), nil, "")
	c, _ := newStoreContext(http.MethodGet, "/", "", nil, "kind", "labs")
	expectHTTPError(t, h.HandleList(c), http.StatusNotFound)
}

func TestHandler_AddDoctorForbiddenForPatient(t *testing.T) {
	api := newFakeBackend()
	patient := &models.User{ID: "p1", Role: models.RolePatient}
	h, _ := newTestHandler(api, patient, "")

	c, _ := newStoreContext(http.MethodPost, "/", `{"name":"X","email":"x@example.com","specialization":"ENT"}`, patient, "kind", "doctors")
	expectHTTPError(t, h.HandleAdd(c), http.StatusForbidden)
	if api.callCount() != 0 {
		t.Fatal("expected no backend call")
	}
}

func TestHandler_AddDoctorValidation(t *testing.T) {
	api := newFakeBackend()
	hospital := &models.User{ID: "h1", Role: models.RoleHospital}
	h, s := newTestHandler(api, hospital, "")

	c, _ := newStoreContext(http.MethodPost, "/", `{"name":"X","email":"x@example.com"}`, hospital, "kind", "doctors")
	expectHTTPError(t, h.HandleAdd(c), http.StatusUnprocessableEntity)
	if api.callCount() != 0 || len(s.Doctors()) != 0 {
		t.Fatal("expected no backend call and no new doctor")
	}
}

func TestHandler_AddDoctorByHospitalSetsHospitalID(t *testing.T) {
	api := newFakeBackend()
	hospital := &models.User{ID: "h1", Role: models.RoleHospital}
	h, _ := newTestHandler(api, hospital, "")

	c, rec := newStoreContext(http.MethodPost, "/", `{"name":"X","email":"x@example.com","specialization":"ENT"}`, hospital, "kind", "doctors")
	if err := h.HandleAdd(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	form, ok := api.calls[0].body.(DoctorForm)
	if !ok || form.HospitalID != "h1" {
		t.Fatalf("expected hospital id to be filled, got %+v", api.calls[0].body)
	}
}

func TestHandler_BookFillsPatient(t *testing.T) {
	api := newFakeBackend()
	patient := &models.User{ID: "p1", Name: "Pat", Role: models.RolePatient}
	h, _ := newTestHandler(api, patient, "")

	body := `{"doctor_id":"d1","type":"video","date":"2026-06-01","time":"09:30"}`
	c, rec := newStoreContext(http.MethodPost, "/", body, patient, "kind", "appointments")
	if err := h.HandleAdd(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	form := api.calls[0].body.(AppointmentForm)
	if form.PatientID != "p1" || form.PatientName != "Pat" {
		t.Fatalf("expected patient to be filled, got %+v", form)
	}
}

func TestHandler_ActionRoles(t *testing.T) {
	api := newFakeBackend()
	patient := &models.User{ID: "p1", Role: models.RolePatient}
	h, _ := newTestHandler(api, patient, "")

	c, _ := newStoreContext(http.MethodPost, "/", "", patient, "kind", "appointments", "id", "a1", "action", "confirm")
	expectHTTPError(t, h.HandleAction(c), http.StatusForbidden)

	c, rec := newStoreContext(http.MethodPost, "/", "", patient, "kind", "appointments", "id", "a1", "action", "cancel")
	if err := h.HandleAction(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	c, _ = newStoreContext(http.MethodPost, "/", "", patient, "kind", "hospitals", "id", "h1", "action", "approve")
	expectHTTPError(t, h.HandleAction(c), http.StatusForbidden)

	c, _ = newStoreContext(http.MethodPost, "/", "", patient, "kind", "appointments", "id", "a1", "action", "teleport")
	expectHTTPError(t, h.HandleAction(c), http.StatusNotFound)
}

func TestHandler_ApproveHospitalAsAdmin(t *testing.T) {
	api := newFakeBackend()
	admin := &models.User{ID: "a1", Role: models.RoleAdmin}
	h, _ := newTestHandler(api, admin, "")

	c, _ := newStoreContext(http.MethodPost, "/", "", admin, "kind", "hospitals", "id", "h1", "action", "approve")
	if err := h.HandleAction(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.calls[0].path != "/admin/hospitals/h1/approve" {
		t.Fatalf("unexpected path %s", api.calls[0].path)
	}
}

func TestHandler_AdminList(t *testing.T) {
	api := newFakeBackend()
	api.page = &backend.Page{Items: []map[string]any{{"id": "d1"}}, Total: 11, Page: 2, Limit: 5}
	admin := &models.User{ID: "a1", Role: models.RoleAdmin}
	h, _ := newTestHandler(api, admin, "")

	c, rec := newStoreContext(http.MethodGet, "/?page=2&limit=5&sort=name&order=asc&search=lee", "", admin, "kind", "doctors")
	if err := h.HandleAdminList(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.lastQuery.Sort != "name" || api.lastQuery.Search != "lee" || api.lastQuery.Page != 2 {
		t.Fatalf("unexpected query: %+v", api.lastQuery)
	}
	if !strings.Contains(rec.Body.String(), `"total_pages":3`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestBackendError(t *testing.T) {
	expectHTTPError(t, backendError(&backend.APIError{StatusCode: 401}), http.StatusUnauthorized)
	expectHTTPError(t, backendError(&backend.APIError{StatusCode: 404}), http.StatusNotFound)
	expectHTTPError(t, backendError(&backend.APIError{StatusCode: 409, Message: "dup"}), http.StatusConflict)
	expectHTTPError(t, backendError(&backend.APIError{StatusCode: 503}), http.StatusBadGateway)
}
