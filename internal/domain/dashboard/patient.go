package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/healthportal/portal/internal/domain/datastore"
	"github.com/healthportal/portal/internal/domain/search"
	"github.com/healthportal/portal/internal/platform/router"
	"github.com/healthportal/portal/pkg/models"
)

var (
	errNoAppointment      = errors.New("no appointment selected")
	errAppointmentMissing = errors.New("appointment not found")
)

// Overview is the landing screen of a role dashboard.
type Overview struct {
	Greeting      string                `json:"greeting"`
	Cards         []Card                `json:"cards"`
	Upcoming      []models.Appointment  `json:"upcoming"`
	Notifications []models.Notification `json:"notifications"`
}

// BookingView lists what the booking form can offer.
type BookingView struct {
	Doctors   []models.Doctor          `json:"doctors"`
	Hospitals []models.Hospital        `json:"hospitals"`
	Types     []models.AppointmentType `json:"types"`
	DoctorID  string                   `json:"doctor_id,omitempty"`
}

// Call is the video-call screen for one appointment.
type Call struct {
	Appointment models.Appointment `json:"appointment"`
	Peer        string             `json:"peer"`
	Room        string             `json:"room"`
}

// ChatView lists conversations.
type ChatView struct {
	Threads []Thread `json:"threads"`
}

func (s *Screens) patientRoutes() []router.Route {
	role := models.RolePatient
	return []router.Route{
		{Path: "/dashboard", Screen: "patient.dashboard", Title: "Dashboard", Role: role, Nav: "Dashboard", Build: s.patientDashboard},
		{Path: "/appointments", Screen: "patient.appointments", Title: "My appointments", Role: role, Nav: "Appointments", Build: s.appointments},
		{Path: "/book-appointment", Screen: "patient.book-appointment", Title: "Book appointment", Role: role, Nav: "Book appointment", Build: s.booking},
		{Path: "/doctors", Screen: "patient.doctors", Title: "Find doctors", Role: role, Nav: "Doctors", Build: s.approvedDoctors},
		{Path: "/hospitals", Screen: "patient.hospitals", Title: "Hospitals", Role: role, Nav: "Hospitals", Build: s.approvedHospitals},
		{Path: "/video-call", Screen: "patient.video-call", Title: "Video call", Role: role,
			Build: router.Boundary(s.videoCall, "The video call could not be started.", s.logger)},
		{Path: "/chat", Screen: "patient.chat", Title: "Chat", Role: role, Nav: "Chat", Build: s.chat},
		{Path: "/medical-records", Screen: "patient.medical-records", Title: "Medical records", Role: role, Nav: "Medical records", Build: s.medicalRecords},
		{Path: "/notifications", Screen: "patient.notifications", Title: "Notifications", Role: role, Nav: "Notifications", Build: s.notifications},
		{Path: "/profile", Screen: "patient.profile", Title: "Profile", Role: role, Nav: "Profile", Build: s.profile},
	}
}

func (s *Screens) patientDashboard(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindAppointments)
	mine := req.Workspace.Data.AppointmentsFor(req.User)
	next := upcoming(mine, 0)
	return Overview{
		Greeting: "Welcome back, " + req.User.Name,
		Cards: []Card{
			{Label: "Upcoming appointments", Value: len(next)},
			{Label: "Completed visits", Value: countStatus(mine, models.AppointmentCompleted)},
			{Label: "Medical records", Value: len(medicalRecords)},
			{Label: "Unread notifications", Value: req.Workspace.Notifications.UnreadCount()},
		},
		Upcoming:      limit(next, 5),
		Notifications: limit(req.Workspace.Notifications.List(), 3),
	}, nil
}

// appointments serves every role's appointment table.
func (s *Screens) appointments(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindAppointments)
	mine := req.Workspace.Data.AppointmentsFor(req.User)
	sortBySlot(mine)
	l := listing(mine, term(req), datastore.FilterAppointments)
	l.Loading = req.Workspace.Data.Loading(datastore.KindAppointments)
	return l, nil
}

func (s *Screens) booking(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindDoctors, datastore.KindHospitals)
	return BookingView{
		Doctors:   approvedDoctors(req.Workspace.Data.Doctors()),
		Hospitals: approvedHospitals(req.Workspace.Data.Hospitals()),
		Types:     appointmentTypes,
		DoctorID:  req.Query.Get("doctorId"),
	}, nil
}

func (s *Screens) approvedDoctors(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindDoctors)
	return listing(approvedDoctors(req.Workspace.Data.Doctors()), term(req), datastore.FilterDoctors), nil
}

func (s *Screens) approvedHospitals(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindHospitals)
	return listing(approvedHospitals(req.Workspace.Data.Hospitals()), term(req), datastore.FilterHospitals), nil
}

// videoCall reads ?appointmentId= and only opens calls the user takes part in.
// It runs inside a boundary, so errors render the retry fallback.
func (s *Screens) videoCall(ctx context.Context, req *router.Request) (any, error) {
	id := req.Query.Get("appointmentId")
	if id == "" {
		return nil, errNoAppointment
	}
	if _, ok := req.Workspace.Data.Appointment(id); !ok {
		s.refresh(ctx, req, datastore.KindAppointments)
	}
	for _, a := range req.Workspace.Data.AppointmentsFor(req.User) {
		if a.ID != id {
			continue
		}
		peer := a.DoctorName
		if req.User.Role != models.RolePatient {
			peer = a.PatientName
		}
		return Call{Appointment: a, Peer: peer, Room: "consult-" + a.ID}, nil
	}
	return nil, fmt.Errorf("%w: %s", errAppointmentMissing, id)
}

func (s *Screens) chat(_ context.Context, req *router.Request) (any, error) {
	var threads []Thread
	for _, a := range req.Workspace.Data.AppointmentsFor(req.User) {
		if a.Type != models.AppointmentChat || !a.Status.Active() {
			continue
		}
		threads = append(threads, Thread{ID: "appt-" + a.ID, With: a.DoctorName, LastMessage: a.Reason})
	}
	threads = append(threads, sampleThreads...)
	return ChatView{Threads: threads}, nil
}

func (s *Screens) medicalRecords(_ context.Context, req *router.Request) (any, error) {
	return listing(medicalRecords, term(req), func(items []MedicalRecord, q string) []MedicalRecord {
		return search.Filter(items, q, func(r MedicalRecord) []string { return []string{r.Title, r.Kind, r.Doctor, r.Date} })
	}), nil
}

func approvedDoctors(items []models.Doctor) []models.Doctor {
	out := make([]models.Doctor, 0, len(items))
	for _, d := range items {
		if visible(d.Status) {
			out = append(out, d)
		}
	}
	return out
}

func approvedHospitals(items []models.Hospital) []models.Hospital {
	out := make([]models.Hospital, 0, len(items))
	for _, h := range items {
		if visible(h.Status) {
			out = append(out, h)
		}
	}
	return out
}

func limit[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
