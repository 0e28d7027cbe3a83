package dashboard

import (
	"context"

	"github.com/healthportal/portal/internal/domain/datastore"
	"github.com/healthportal/portal/internal/platform/router"
	"github.com/healthportal/portal/pkg/models"
)

// Day groups a schedule by date.
type Day struct {
	Date  string               `json:"date"`
	Slots []models.Appointment `json:"slots"`
}

// Meeting is the doctor's view of one patient, opened with ?patientId=.
type Meeting struct {
	PatientID    string               `json:"patient_id"`
	Patient      *models.Patient      `json:"patient,omitempty"`
	Appointments []models.Appointment `json:"appointments"`
}

// Earnings summarises a doctor's income.
type Earnings struct {
	Completed    float64              `json:"completed"`
	Pending      float64              `json:"pending"`
	Monthly      []MonthAmount        `json:"monthly"`
	Transactions []models.Appointment `json:"transactions"`
}

func (s *Screens) doctorRoutes() []router.Route {
	role := models.RoleDoctor
	return []router.Route{
		{Path: "/dashboard", Screen: "doctor.dashboard", Title: "Dashboard", Role: role, Nav: "Dashboard", Build: s.doctorDashboard},
		{Path: "/appointments", Screen: "doctor.appointments", Title: "Appointments", Role: role, Nav: "Appointments", Build: s.appointments},
		{Path: "/patients", Screen: "doctor.patients", Title: "My patients", Role: role, Nav: "Patients", Build: s.doctorPatients},
		{Path: "/schedule", Screen: "doctor.schedule", Title: "Schedule", Role: role, Nav: "Schedule", Build: s.schedule},
		{Path: "/meeting", Screen: "doctor.meeting", Title: "Meeting", Role: role, Build: s.meeting},
		{Path: "/video-call", Screen: "doctor.video-call", Title: "Video call", Role: role,
			Build: router.Boundary(s.videoCall, "The video call could not be started.", s.logger)},
		{Path: "/earnings", Screen: "doctor.earnings", Title: "Earnings", Role: role, Nav: "Earnings", Build: s.earnings},
		{Path: "/notifications", Screen: "doctor.notifications", Title: "Notifications", Role: role, Nav: "Notifications", Build: s.notifications},
		{Path: "/profile", Screen: "doctor.profile", Title: "Profile", Role: role, Nav: "Profile", Build: s.profile},
	}
}

func (s *Screens) doctorDashboard(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindAppointments)
	mine := req.Workspace.Data.AppointmentsFor(req.User)
	today := s.now().Format("2006-01-02")
	todays := 0
	for _, a := range mine {
		if a.Date == today && a.Status.Active() {
			todays++
		}
	}
	next := upcoming(mine, 0)
	return Overview{
		Greeting: "Good day, " + req.User.Name,
		Cards: []Card{
			{Label: "Today's appointments", Value: todays},
			{Label: "Upcoming", Value: len(next)},
			{Label: "Patients", Value: len(patientIDs(mine))},
			{Label: "Completed", Value: countStatus(mine, models.AppointmentCompleted)},
		},
		Upcoming:      limit(next, 5),
		Notifications: limit(req.Workspace.Notifications.List(), 3),
	}, nil
}

// doctorPatients lists the patients the doctor has appointments with.
func (s *Screens) doctorPatients(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindPatients, datastore.KindAppointments)
	ids := patientIDs(req.Workspace.Data.AppointmentsFor(req.User))
	var mine []models.Patient
	for _, p := range req.Workspace.Data.Patients() {
		if ids[p.ID] {
			mine = append(mine, p)
		}
	}
	return listing(mine, term(req), datastore.FilterPatients), nil
}

// schedule groups the user's active appointments by day.
func (s *Screens) schedule(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindAppointments)
	days := []Day{}
	for _, a := range upcoming(req.Workspace.Data.AppointmentsFor(req.User), 0) {
		if n := len(days); n > 0 && days[n-1].Date == a.Date {
			days[n-1].Slots = append(days[n-1].Slots, a)
			continue
		}
		days = append(days, Day{Date: a.Date, Slots: []models.Appointment{a}})
	}
	return days, nil
}

func (s *Screens) meeting(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindPatients, datastore.KindAppointments)
	m := Meeting{PatientID: req.Query.Get("patientId"), Appointments: []models.Appointment{}}
	if m.PatientID == "" {
		return m, nil
	}
	for _, p := range req.Workspace.Data.Patients() {
		if p.ID == m.PatientID {
			m.Patient = &p
			break
		}
	}
	for _, a := range req.Workspace.Data.AppointmentsFor(req.User) {
		if a.PatientID == m.PatientID {
			m.Appointments = append(m.Appointments, a)
		}
	}
	sortBySlot(m.Appointments)
	return m, nil
}

func (s *Screens) earnings(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindAppointments)
	e := Earnings{Monthly: monthlyEarnings, Transactions: []models.Appointment{}}
	for _, a := range req.Workspace.Data.AppointmentsFor(req.User) {
		switch {
		case a.Status == models.AppointmentCompleted:
			e.Completed += a.Fee
			e.Transactions = append(e.Transactions, a)
		case a.Status.Active():
			e.Pending += a.Fee
		}
	}
	return e, nil
}

func patientIDs(items []models.Appointment) map[string]bool {
	ids := make(map[string]bool)
	for _, a := range items {
		ids[a.PatientID] = true
	}
	return ids
}
