package dashboard

import (
	"context"

	"github.com/healthportal/portal/internal/domain/datastore"
	"github.com/healthportal/portal/internal/domain/search"
	"github.com/healthportal/portal/internal/platform/router"
	"github.com/healthportal/portal/pkg/models"
)

// DoctorFormView feeds the add-doctor form. HospitalID is fixed when a
// hospital adds its own staff.
type DoctorFormView struct {
	Specializations []string          `json:"specializations"`
	Hospitals       []models.Hospital `json:"hospitals,omitempty"`
	HospitalID      string            `json:"hospital_id,omitempty"`
}

// ReportsView is the reports screen of hospitals and admins.
type ReportsView struct {
	Cards   []Card          `json:"cards"`
	Reports Listing[Report] `json:"reports"`
	Revenue []MonthAmount   `json:"revenue"`
}

func (s *Screens) hospitalRoutes() []router.Route {
	role := models.RoleHospital
	return []router.Route{
		{Path: "/dashboard", Screen: "hospital.dashboard", Title: "Dashboard", Role: role, Nav: "Dashboard", Build: s.hospitalDashboard},
		{Path: "/doctors", Screen: "hospital.doctors", Title: "Our doctors", Role: role, Nav: "Doctors", Build: s.hospitalDoctors},
		{Path: "/add-doctor", Screen: "hospital.add-doctor", Title: "Add doctor", Role: role, Nav: "Add doctor", Build: s.doctorForm},
		{Path: "/appointments", Screen: "hospital.appointments", Title: "Appointments", Role: role, Nav: "Appointments", Build: s.appointments},
		{Path: "/departments", Screen: "hospital.departments", Title: "Departments", Role: role, Nav: "Departments", Build: s.departments},
		{Path: "/reports", Screen: "hospital.reports", Title: "Reports", Role: role, Nav: "Reports", Build: s.reports},
		{Path: "/notifications", Screen: "hospital.notifications", Title: "Notifications", Role: role, Nav: "Notifications", Build: s.notifications},
		{Path: "/profile", Screen: "hospital.profile", Title: "Profile", Role: role, Nav: "Profile", Build: s.profile},
	}
}

func (s *Screens) hospitalDashboard(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindDoctors, datastore.KindAppointments)
	mine := req.Workspace.Data.AppointmentsFor(req.User)
	next := upcoming(mine, 0)
	return Overview{
		Greeting: req.User.Name,
		Cards: []Card{
			{Label: "Doctors", Value: len(staff(req.Workspace.Data.Doctors(), req.User.ID))},
			{Label: "Appointments", Value: len(mine)},
			{Label: "Upcoming", Value: len(next)},
			{Label: "Departments", Value: len(departments)},
		},
		Upcoming:      limit(next, 5),
		Notifications: limit(req.Workspace.Notifications.List(), 3),
	}, nil
}

func (s *Screens) hospitalDoctors(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindDoctors)
	return listing(staff(req.Workspace.Data.Doctors(), req.User.ID), term(req), datastore.FilterDoctors), nil
}

// doctorForm serves both the hospital and the admin add-doctor screens.
func (s *Screens) doctorForm(ctx context.Context, req *router.Request) (any, error) {
	v := DoctorFormView{Specializations: specializations}
	if req.User.Role == models.RoleHospital {
		v.HospitalID = req.User.ID
		return v, nil
	}
	s.refresh(ctx, req, datastore.KindHospitals)
	v.Hospitals = approvedHospitals(req.Workspace.Data.Hospitals())
	return v, nil
}

func (s *Screens) departments(_ context.Context, req *router.Request) (any, error) {
	return listing(departments, term(req), func(items []Department, q string) []Department {
		return search.Filter(items, q, func(d Department) []string { return []string{d.Name, d.Head} })
	}), nil
}

func (s *Screens) reports(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindAppointments)
	mine := req.Workspace.Data.AppointmentsFor(req.User)
	return ReportsView{
		Cards: []Card{
			{Label: "Appointments", Value: len(mine)},
			{Label: "Completed", Value: countStatus(mine, models.AppointmentCompleted)},
			{Label: "Cancelled", Value: countStatus(mine, models.AppointmentCancelled)},
		},
		Reports: listing(reports, term(req), func(items []Report, q string) []Report {
			return search.Filter(items, q, func(r Report) []string { return []string{r.Title, r.Category, r.Period} })
		}),
		Revenue: monthlyEarnings,
	}, nil
}

func staff(doctors []models.Doctor, hospitalID string) []models.Doctor {
	var out []models.Doctor
	for _, d := range doctors {
		if d.HospitalID != nil && *d.HospitalID == hospitalID {
			out = append(out, d)
		}
	}
	return out
}
