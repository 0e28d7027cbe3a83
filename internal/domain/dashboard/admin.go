package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/healthportal/portal/internal/domain/datastore"
	"github.com/healthportal/portal/internal/domain/search"
	"github.com/healthportal/portal/internal/platform/backend"
	"github.com/healthportal/portal/internal/platform/router"
	"github.com/healthportal/portal/pkg/models"
)

// AdminOverview is the admin dashboard. Stats come from the backend; when the
// call fails they are counted from the local mirror and Stale is set.
type AdminOverview struct {
	Stats    backend.Stats        `json:"stats"`
	Stale    bool                 `json:"stale,omitempty"`
	Cards    []Card               `json:"cards"`
	Pending  []Approval           `json:"pending"`
	Upcoming []models.Appointment `json:"upcoming"`
}

// Approval is a record waiting for an admin decision.
type Approval struct {
	Kind      datastore.Kind `json:"kind"`
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Detail    string         `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// HospitalFormView feeds the add-hospital form.
type HospitalFormView struct {
	Facilities []string `json:"facilities"`
}

func (s *Screens) adminRoutes() []router.Route {
	role := models.RoleAdmin
	return []router.Route{
		{Path: "/dashboard", Screen: "admin.dashboard", Title: "Admin dashboard", Role: role, Nav: "Dashboard", Build: s.adminDashboard},
		{Path: "/patients", Screen: "admin.patients", Title: "Patients", Role: role, Nav: "Patients", Build: s.allPatients},
		{Path: "/doctors", Screen: "admin.doctors", Title: "Doctors", Role: role, Nav: "Doctors", Build: s.allDoctors},
		{Path: "/hospitals", Screen: "admin.hospitals", Title: "Hospitals", Role: role, Nav: "Hospitals", Build: s.allHospitals},
		{Path: "/trainers", Screen: "admin.trainers", Title: "Trainers", Role: role, Nav: "Trainers", Build: s.allTrainers},
		{Path: "/appointments", Screen: "admin.appointments", Title: "Appointments", Role: role, Nav: "Appointments", Build: s.appointments},
		{Path: "/approvals", Screen: "admin.approvals", Title: "Pending approvals", Role: role, Nav: "Approvals", Build: s.approvals},
		{Path: "/add-doctor", Screen: "admin.add-doctor", Title: "Add doctor", Role: role, Build: s.doctorForm},
		{Path: "/add-hospital", Screen: "admin.add-hospital", Title: "Add hospital", Role: role, Build: static(HospitalFormView{Facilities: facilities})},
		{Path: "/reports", Screen: "admin.reports", Title: "Reports", Role: role, Nav: "Reports", Build: s.reports},
		{Path: "/notifications", Screen: "admin.notifications", Title: "Notifications", Role: role, Nav: "Notifications", Build: s.notifications},
		{Path: "/settings", Screen: "admin.settings", Title: "Settings", Role: role, Nav: "Settings", Build: static(defaultSettings)},
	}
}

func (s *Screens) adminDashboard(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.Kinds...)
	data := req.Workspace.Data
	pending := pendingApprovals(data)

	v := AdminOverview{Pending: limit(pending, 5), Upcoming: upcoming(data.Appointments(), 5)}
	if stats, err := data.Stats(ctx); err == nil {
		v.Stats = *stats
	} else {
		v.Stale = true
		v.Stats = backend.Stats{
			TotalPatients:     len(data.Patients()),
			TotalDoctors:      len(data.Doctors()),
			TotalHospitals:    len(data.Hospitals()),
			TotalTrainers:     len(data.Trainers()),
			TotalAppointments: len(data.Appointments()),
			PendingApprovals:  len(pending),
		}
	}
	v.Cards = []Card{
		{Label: "Patients", Value: v.Stats.TotalPatients},
		{Label: "Doctors", Value: v.Stats.TotalDoctors},
		{Label: "Hospitals", Value: v.Stats.TotalHospitals},
		{Label: "Trainers", Value: v.Stats.TotalTrainers},
		{Label: "Appointments", Value: v.Stats.TotalAppointments},
		{Label: "Pending approvals", Value: v.Stats.PendingApprovals},
		{Label: "Revenue", Value: v.Stats.Revenue},
	}
	return v, nil
}

func (s *Screens) allPatients(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindPatients)
	return listing(req.Workspace.Data.Patients(), term(req), datastore.FilterPatients), nil
}

func (s *Screens) allDoctors(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindDoctors)
	return listing(req.Workspace.Data.Doctors(), term(req), datastore.FilterDoctors), nil
}

func (s *Screens) allHospitals(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindHospitals)
	return listing(req.Workspace.Data.Hospitals(), term(req), datastore.FilterHospitals), nil
}

func (s *Screens) allTrainers(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindTrainers)
	return listing(req.Workspace.Data.Trainers(), term(req), datastore.FilterTrainers), nil
}

func (s *Screens) approvals(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindPatients, datastore.KindDoctors, datastore.KindHospitals, datastore.KindTrainers)
	return listing(pendingApprovals(req.Workspace.Data), term(req), func(items []Approval, q string) []Approval {
		return search.Filter(items, q, func(a Approval) []string { return []string{a.Name, a.Email, a.Detail, string(a.Kind)} })
	}), nil
}

// pendingApprovals collects pending records of every administered kind,
// newest first.
func pendingApprovals(data *datastore.Container) []Approval {
	var out []Approval
	for _, p := range data.Patients() {
		if p.Status == models.StatusPending {
			out = append(out, Approval{Kind: datastore.KindPatients, ID: p.ID, Name: p.Name, Email: p.Email, CreatedAt: p.CreatedAt})
		}
	}
	for _, d := range data.Doctors() {
		if d.Status == models.StatusPending {
			out = append(out, Approval{Kind: datastore.KindDoctors, ID: d.ID, Name: d.Name, Email: d.Email, Detail: d.Specialization, CreatedAt: d.CreatedAt})
		}
	}
	for _, h := range data.Hospitals() {
		if h.Status == models.StatusPending {
			out = append(out, Approval{Kind: datastore.KindHospitals, ID: h.ID, Name: h.Name, Email: h.Email, Detail: h.City, CreatedAt: h.CreatedAt})
		}
	}
	for _, t := range data.Trainers() {
		if t.Status == models.StatusPending {
			out = append(out, Approval{Kind: datastore.KindTrainers, ID: t.ID, Name: t.Name, Email: t.Email, Detail: t.Specialty, CreatedAt: t.CreatedAt})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
