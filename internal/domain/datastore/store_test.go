package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthportal/portal/internal/platform/backend"
	"github.com/healthportal/portal/pkg/models"
)

type call struct {
	method string
	path   string
	token  string
	body   any
}

// fakeBackend answers GETs from collections and echoes POST bodies back as
// created records.
type fakeBackend struct {
	mu          sync.Mutex
	calls       []call
	collections map[string]any
	created     map[string]any
	err         error
	stats       *backend.Stats
	page        *backend.Page
	lastQuery   backend.ListQuery
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{collections: map[string]any{}, created: map[string]any{}}
}

func (f *fakeBackend) record(method, token, path string, body any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: method, path: path, token: token, body: body})
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func roundTrip(in, out any) error {
	if in == nil || out == nil {
		return nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeBackend) Get(_ context.Context, token, path string, _ url.Values, out any) error {
	f.record("GET", token, path, nil)
	if f.err != nil {
		return f.err
	}
	return roundTrip(f.collections[path], out)
}

func (f *fakeBackend) Post(_ context.Context, token, path string, body, out any) error {
	f.record("POST", token, path, body)
	if f.err != nil {
		return f.err
	}
	if resp, ok := f.created[path]; ok {
		return roundTrip(resp, out)
	}
	return roundTrip(body, out)
}

func (f *fakeBackend) Put(_ context.Context, token, path string, body, _ any) error {
	f.record("PUT", token, path, body)
	return f.err
}

func (f *fakeBackend) AdminStats(_ context.Context, token string) (*backend.Stats, error) {
	f.record("GET", token, "/admin/stats", nil)
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

func (f *fakeBackend) AdminList(_ context.Context, token, resource string, q backend.ListQuery) (*backend.Page, error) {
	f.record("GET", token, "/admin/"+resource, nil)
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

type toastLog struct {
	mu    sync.Mutex
	kinds []models.ToastKind
	msgs  []string
}

func (t *toastLog) Toast(kind models.ToastKind, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.kinds = append(t.kinds, kind)
	t.msgs = append(t.msgs, msg)
}

func newTestStore(api Backend) (*Container, *toastLog) {
	s := NewContainer(api, func() string { return "tok" }, zerolog.Nop())
	toasts := &toastLog{}
	s.SetToaster(toasts)
	return s, toasts
}

func TestRefresh_ReplacesMirror(t *testing.T) {
	api := newFakeBackend()
	api.collections["/patients"] = []models.Patient{{ID: "p1", Name: "John", Email: "john@x.com"}}
	s, _ := newTestStore(api)

	require.NoError(t, s.Refresh(context.Background(), KindPatients))
	require.Len(t, s.Patients(), 1)
	assert.Equal(t, "tok", api.calls[0].token)
	assert.False(t, s.Loading(KindPatients))
}

func TestRefresh_FailureKeepsMirror(t *testing.T) {
	api := newFakeBackend()
	api.collections["/doctors"] = []models.Doctor{{ID: "d1"}}
	s, toasts := newTestStore(api)
	require.NoError(t, s.Refresh(context.Background(), KindDoctors))

	api.err = errors.New("connection refused")
	err := s.Refresh(context.Background(), KindDoctors)
	require.Error(t, err)
	assert.Len(t, s.Doctors(), 1)
	assert.Equal(t, []models.ToastKind{models.ToastError}, toasts.kinds)
}

func TestRefresh_UnknownKind(t *testing.T) {
	s, _ := newTestStore(newFakeBackend())
	assert.ErrorIs(t, s.Refresh(context.Background(), Kind("labs")), ErrUnknownKind)
}

func TestRefreshAll(t *testing.T) {
	api := newFakeBackend()
	api.collections["/hospitals"] = []models.Hospital{{ID: "h1"}}
	api.collections["/trainers"] = []models.Trainer{{ID: "t1"}, {ID: "t2"}}
	s, _ := newTestStore(api)

	require.NoError(t, s.RefreshAll(context.Background()))
	assert.Equal(t, len(Kinds), api.callCount())
	assert.Len(t, s.Hospitals(), 1)
	assert.Len(t, s.Trainers(), 2)
}

func TestSearchFilterOverPatients(t *testing.T) {
	api := newFakeBackend()
	api.collections["/patients"] = []models.Patient{{ID: "p1", Name: "John", Email: "john@x.com"}}
	s, _ := newTestStore(api)
	require.NoError(t, s.Refresh(context.Background(), KindPatients))

	assert.Len(t, FilterPatients(s.Patients(), "john"), 1)
	assert.Empty(t, FilterPatients(s.Patients(), "nomatch"))
}

func TestAddDoctor_MissingSpecializationSkipsBackend(t *testing.T) {
	api := newFakeBackend()
	s, toasts := newTestStore(api)

	_, err := s.AddDoctor(context.Background(), DoctorForm{Name: "Dr. Who", Email: "who@example.com"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Result.Has("specialization"))
	assert.Zero(t, api.callCount())
	assert.Empty(t, s.Doctors())
	assert.Equal(t, []models.ToastKind{models.ToastError}, toasts.kinds)
}

func TestAddDoctor_AppendsCreated(t *testing.T) {
	api := newFakeBackend()
	api.created["/doctors"] = models.Doctor{ID: "d9", Name: "Dr. Lee", Specialization: "Cardiology", Status: models.StatusPending}
	s, toasts := newTestStore(api)

	d, err := s.AddDoctor(context.Background(), DoctorForm{Name: "Dr. Lee", Email: "lee@example.com", Specialization: "Cardiology", Fees: 100})
	require.NoError(t, err)
	assert.Equal(t, "d9", d.ID)
	require.Len(t, s.Doctors(), 1)
	assert.Equal(t, "POST", api.calls[0].method)
	assert.Equal(t, "/doctors", api.calls[0].path)
	assert.Equal(t, []string{"Doctor added successfully"}, toasts.msgs)
}

func TestAdd_WithoutIDRefetches(t *testing.T) {
	api := newFakeBackend()
	api.created["/trainers"] = map[string]any{}
	api.collections["/trainers"] = []models.Trainer{{ID: "t1", Name: "Sam"}}
	s, _ := newTestStore(api)

	_, err := s.AddTrainer(context.Background(), TrainerForm{Name: "Sam", Email: "sam@example.com", Specialty: "Yoga"})
	require.NoError(t, err)
	assert.Len(t, s.Trainers(), 1)
	assert.Equal(t, "GET", api.calls[1].method)
}

func TestAdd_BackendFailureLeavesMirror(t *testing.T) {
	api := newFakeBackend()
	api.err = &backend.APIError{StatusCode: 409, Message: "email taken"}
	s, toasts := newTestStore(api)

	_, err := s.AddHospital(context.Background(), HospitalForm{Name: "City", Email: "c@example.com", Address: "1 Main"})
	require.Error(t, err)
	assert.Empty(t, s.Hospitals())
	assert.Equal(t, []string{"Failed to add hospital: email taken"}, toasts.msgs)
}

func TestTransition_PatchesStatus(t *testing.T) {
	api := newFakeBackend()
	api.collections["/doctors"] = []models.Doctor{{ID: "d1", Status: models.StatusPending}, {ID: "d2", Status: models.StatusPending}}
	s, _ := newTestStore(api)
	require.NoError(t, s.Refresh(context.Background(), KindDoctors))

	require.NoError(t, s.Approve(context.Background(), KindDoctors, "d1"))
	require.NoError(t, s.Suspend(context.Background(), KindDoctors, "d2"))

	docs := s.Doctors()
	assert.Equal(t, models.StatusApproved, docs[0].Status)
	assert.Equal(t, models.StatusSuspended, docs[1].Status)
	assert.Equal(t, "/admin/doctors/d1/approve", api.calls[1].path)
	assert.Equal(t, "PUT", api.calls[1].method)
}

func TestBackendPaths_EscapeIDs(t *testing.T) {
	api := newFakeBackend()
	api.collections["/doctors"] = []models.Doctor{{ID: "../users", Status: models.StatusPending}}
	api.collections["/appointments"] = []models.Appointment{{ID: "a/b?x=1", Status: models.AppointmentUpcoming}}
	s, _ := newTestStore(api)
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx, KindDoctors))
	require.NoError(t, s.Refresh(ctx, KindAppointments))

	require.NoError(t, s.Approve(ctx, KindDoctors, "../users"))
	assert.Equal(t, "/admin/doctors/..%2Fusers/approve", api.calls[len(api.calls)-1].path)

	require.NoError(t, s.Confirm(ctx, "a/b?x=1"))
	assert.Equal(t, "/appointments/a%2Fb%3Fx=1/confirm", api.calls[len(api.calls)-1].path)
}

func TestTransition_FailureKeepsStatus(t *testing.T) {
	api := newFakeBackend()
	api.collections["/hospitals"] = []models.Hospital{{ID: "h1", Status: models.StatusPending}}
	s, _ := newTestStore(api)
	require.NoError(t, s.Refresh(context.Background(), KindHospitals))

	api.err = errors.New("timeout")
	require.Error(t, s.Reject(context.Background(), KindHospitals, "h1"))
	assert.Equal(t, models.StatusPending, s.Hospitals()[0].Status)
}

func TestTransition_Appointments_NotAdministered(t *testing.T) {
	s, _ := newTestStore(newFakeBackend())
	assert.ErrorIs(t, s.Approve(context.Background(), KindAppointments, "a1"), ErrUnknownKind)
}

func TestAppointmentLifecycle(t *testing.T) {
	api := newFakeBackend()
	api.collections["/appointments"] = []models.Appointment{{ID: "a1", Status: models.AppointmentUpcoming, Date: "2026-01-01", Time: "09:00"}}
	s, _ := newTestStore(api)
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx, KindAppointments))

	require.NoError(t, s.Confirm(ctx, "a1"))
	a, _ := s.Appointment("a1")
	assert.Equal(t, models.AppointmentConfirmed, a.Status)

	require.NoError(t, s.Reschedule(ctx, "a1", RescheduleForm{Date: "2026-02-03", Time: "14:30"}))
	a, _ = s.Appointment("a1")
	assert.Equal(t, models.AppointmentRescheduled, a.Status)
	assert.Equal(t, "2026-02-03", a.Date)
	assert.Equal(t, "14:30", a.Time)

	require.NoError(t, s.Complete(ctx, "a1"))
	require.NoError(t, s.Cancel(ctx, "a1"))
	a, _ = s.Appointment("a1")
	assert.Equal(t, models.AppointmentCancelled, a.Status)
	assert.Equal(t, "/appointments/a1/cancel", api.calls[len(api.calls)-1].path)
}

func TestReschedule_InvalidSlotSkipsBackend(t *testing.T) {
	api := newFakeBackend()
	s, _ := newTestStore(api)
	err := s.Reschedule(context.Background(), "a1", RescheduleForm{Date: "03/02/2026", Time: "2pm"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"date", "time"}, verr.Result.Fields())
	assert.Zero(t, api.callCount())
}

func TestBook(t *testing.T) {
	api := newFakeBackend()
	api.created["/appointments"] = models.Appointment{ID: "a5", PatientID: "p1", DoctorID: "d1", Status: models.AppointmentUpcoming}
	s, _ := newTestStore(api)

	_, err := s.Book(context.Background(), AppointmentForm{PatientID: "p1", DoctorID: "d1", Type: models.AppointmentVideo, Date: "2026-05-01", Time: "10:00"})
	require.NoError(t, err)
	assert.Len(t, s.AppointmentsFor(&models.User{ID: "p1", Role: models.RolePatient}), 1)
	assert.Empty(t, s.AppointmentsFor(&models.User{ID: "p2", Role: models.RolePatient}))
}

func TestAppointmentsFor(t *testing.T) {
	api := newFakeBackend()
	h1 := "h1"
	api.collections["/appointments"] = []models.Appointment{
		{ID: "a1", PatientID: "p1", DoctorID: "d1", HospitalID: &h1},
		{ID: "a2", PatientID: "p2", DoctorID: "d1"},
		{ID: "a3", PatientID: "p2", DoctorID: "d2"},
	}
	s, _ := newTestStore(api)
	require.NoError(t, s.Refresh(context.Background(), KindAppointments))

	assert.Len(t, s.AppointmentsFor(&models.User{ID: "d1", Role: models.RoleDoctor}), 2)
	assert.Len(t, s.AppointmentsFor(&models.User{ID: "p2", Role: models.RolePatient}), 2)
	assert.Len(t, s.AppointmentsFor(&models.User{ID: "h1", Role: models.RoleHospital}), 1)
	assert.Len(t, s.AppointmentsFor(&models.User{ID: "x", Role: models.RoleAdmin}), 3)
	assert.Nil(t, s.AppointmentsFor(nil))
}

func TestStatsAndList(t *testing.T) {
	api := newFakeBackend()
	api.stats = &backend.Stats{TotalDoctors: 4}
	api.page = &backend.Page{Total: 1, Page: 2, Limit: 5}
	s, _ := newTestStore(api)

	st, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, st.TotalDoctors)

	p, err := s.List(context.Background(), KindDoctors, backend.ListQuery{Page: 2, Limit: 5, Search: "lee"})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, "lee", api.lastQuery.Search)
}

func TestReset(t *testing.T) {
	api := newFakeBackend()
	api.collections["/patients"] = []models.Patient{{ID: "p1"}}
	s, _ := newTestStore(api)
	require.NoError(t, s.Refresh(context.Background(), KindPatients))
	s.Reset()
	assert.Empty(t, s.Patients())
}
