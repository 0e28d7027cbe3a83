package dashboard

import (
	"context"

	"github.com/healthportal/portal/internal/domain/datastore"
	"github.com/healthportal/portal/internal/domain/search"
	"github.com/healthportal/portal/internal/platform/router"
	"github.com/healthportal/portal/pkg/models"
)

func (s *Screens) trainerRoutes() []router.Route {
	role := models.RoleTrainer
	return []router.Route{
		{Path: "/dashboard", Screen: "trainer.dashboard", Title: "Dashboard", Role: role, Nav: "Dashboard", Build: s.trainerDashboard},
		{Path: "/clients", Screen: "trainer.clients", Title: "Clients", Role: role, Nav: "Clients", Build: s.clients},
		{Path: "/programs", Screen: "trainer.programs", Title: "Programs", Role: role, Nav: "Programs", Build: s.programs},
		{Path: "/schedule", Screen: "trainer.schedule", Title: "Schedule", Role: role, Nav: "Schedule", Build: s.schedule},
		{Path: "/notifications", Screen: "trainer.notifications", Title: "Notifications", Role: role, Nav: "Notifications", Build: s.notifications},
		{Path: "/profile", Screen: "trainer.profile", Title: "Profile", Role: role, Nav: "Profile", Build: s.profile},
	}
}

func (s *Screens) trainerDashboard(ctx context.Context, req *router.Request) (any, error) {
	s.refresh(ctx, req, datastore.KindAppointments)
	next := upcoming(req.Workspace.Data.AppointmentsFor(req.User), 0)
	enrolled := 0
	for _, p := range programs {
		enrolled += p.Enrolled
	}
	return Overview{
		Greeting: "Welcome back, " + req.User.Name,
		Cards: []Card{
			{Label: "Active clients", Value: len(clients)},
			{Label: "Programs", Value: len(programs)},
			{Label: "Enrolled", Value: enrolled},
			{Label: "Upcoming sessions", Value: len(next)},
		},
		Upcoming:      limit(next, 5),
		Notifications: limit(req.Workspace.Notifications.List(), 3),
	}, nil
}

func (s *Screens) clients(_ context.Context, req *router.Request) (any, error) {
	return listing(clients, term(req), func(items []Client, q string) []Client {
		return search.Filter(items, q, func(c Client) []string { return []string{c.Name, c.Program} })
	}), nil
}

func (s *Screens) programs(_ context.Context, req *router.Request) (any, error) {
	return listing(programs, term(req), func(items []Program, q string) []Program {
		return search.Filter(items, q, func(p Program) []string { return []string{p.Name, p.Level} })
	}), nil
}
