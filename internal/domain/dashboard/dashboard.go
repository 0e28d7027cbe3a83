// Package dashboard registers every portal screen with the route table and
// builds the data each screen renders. List screens read the workspace data
// store and filter by the shared search term; reports, earnings, programs and
// similar screens render fixed sample data.
package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthportal/portal/internal/domain/datastore"
	"github.com/healthportal/portal/internal/platform/router"
	"github.com/healthportal/portal/pkg/models"
)

// Card is a labelled figure on a dashboard.
type Card struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Listing is a searchable table. Total counts the rows before filtering.
type Listing[T any] struct {
	Items   []T    `json:"items"`
	Total   int    `json:"total"`
	Query   string `json:"query,omitempty"`
	Loading bool   `json:"loading,omitempty"`
}

func listing[T any](items []T, term string, filter func([]T, string) []T) Listing[T] {
	filtered := filter(items, term)
	if filtered == nil {
		filtered = []T{}
	}
	return Listing[T]{Items: filtered, Total: len(items), Query: term}
}

// Screens holds the builders. It carries no per-visitor state; everything
// comes from the request's workspace.
type Screens struct {
	logger zerolog.Logger
	now    func() time.Time
}

func New(logger zerolog.Logger) *Screens {
	return &Screens{
		logger: logger.With().Str("component", "dashboard").Logger(),
		now:    time.Now,
	}
}

// Register adds the public and role routes to table.
func Register(table *router.Table, logger zerolog.Logger) error {
	s := New(logger)
	for _, r := range s.Routes() {
		if err := table.Add(r); err != nil {
			return err
		}
	}
	return nil
}

// Routes returns the full route set in registration order.
func (s *Screens) Routes() []router.Route {
	var out []router.Route
	out = append(out, s.publicRoutes()...)
	out = append(out, s.patientRoutes()...)
	out = append(out, s.doctorRoutes()...)
	out = append(out, s.hospitalRoutes()...)
	out = append(out, s.adminRoutes()...)
	out = append(out, s.trainerRoutes()...)
	return out
}

// refresh reloads kinds before a screen reads them. A failed load has already
// been toasted by the store, so the screen renders whatever the mirror holds.
func (s *Screens) refresh(ctx context.Context, req *router.Request, kinds ...datastore.Kind) {
	if err := req.Workspace.Data.RefreshAll(ctx, kinds...); err != nil {
		s.logger.Debug().Err(err).Str("path", req.Path).Msg("rendering from cached data")
	}
}

func term(req *router.Request) string { return req.Workspace.Search.Query() }

// upcoming returns the active appointments of items ordered by slot.
func upcoming(items []models.Appointment, limit int) []models.Appointment {
	out := make([]models.Appointment, 0, len(items))
	for _, a := range items {
		if a.Status.Active() {
			out = append(out, a)
		}
	}
	sortBySlot(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortBySlot(items []models.Appointment) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		return items[i].Time < items[j].Time
	})
}

func countStatus(items []models.Appointment, status models.AppointmentStatus) int {
	n := 0
	for _, a := range items {
		if a.Status == status {
			n++
		}
	}
	return n
}

// visible drops records an admin has not approved. Records without a status
// predate the approval flow and are shown.
func visible(status models.RecordStatus) bool {
	return status == "" || status == models.StatusApproved
}

// NotificationsView is the notification centre of every role.
type NotificationsView struct {
	Items       []models.Notification `json:"items"`
	UnreadCount int                   `json:"unread_count"`
}

func (s *Screens) notifications(_ context.Context, req *router.Request) (any, error) {
	n := req.Workspace.Notifications
	return NotificationsView{Items: n.List(), UnreadCount: n.UnreadCount()}, nil
}

// Profile is the account page of every role.
type Profile struct {
	User  *models.User `json:"user"`
	Cards []Card       `json:"cards,omitempty"`
}

func (s *Screens) profile(_ context.Context, req *router.Request) (any, error) {
	mine := req.Workspace.Data.AppointmentsFor(req.User)
	return Profile{
		User: req.User,
		Cards: []Card{
			{Label: "Appointments", Value: len(mine)},
			{Label: "Completed", Value: countStatus(mine, models.AppointmentCompleted)},
			{Label: "Unread notifications", Value: req.Workspace.Notifications.UnreadCount()},
		},
	}, nil
}
