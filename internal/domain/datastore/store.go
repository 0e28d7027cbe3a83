// Package datastore mirrors the backend collections a workspace works with
// and applies administrative and appointment mutations through the backend.
// A failed call leaves the mirror unchanged.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/healthportal/portal/internal/platform/backend"
	"github.com/healthportal/portal/pkg/models"
)

// Backend is the slice of the REST client the store uses.
type Backend interface {
	Get(ctx context.Context, token, path string, query url.Values, out any) error
	Post(ctx context.Context, token, path string, body, out any) error
	Put(ctx context.Context, token, path string, body, out any) error
	AdminStats(ctx context.Context, token string) (*backend.Stats, error)
	AdminList(ctx context.Context, token, resource string, q backend.ListQuery) (*backend.Page, error)
}

// Toaster receives transient user-facing messages.
type Toaster interface {
	Toast(kind models.ToastKind, message string)
}

// Container holds the workspace's mirrors.
type Container struct {
	api    Backend
	token  func() string
	logger zerolog.Logger

	mu           sync.RWMutex
	patients     []models.Patient
	doctors      []models.Doctor
	hospitals    []models.Hospital
	trainers     []models.Trainer
	appointments []models.Appointment
	loading      map[Kind]int
	toaster      Toaster
}

// NewContainer returns an empty store. token supplies the signed-in user's
// backend token for every call.
func NewContainer(api Backend, token func() string, logger zerolog.Logger) *Container {
	return &Container{
		api:     api,
		token:   token,
		logger:  logger.With().Str("component", "datastore").Logger(),
		loading: make(map[Kind]int),
	}
}

func (c *Container) SetToaster(t Toaster) {
	c.mu.Lock()
	c.toaster = t
	c.mu.Unlock()
}

// Reset drops every mirror.
func (c *Container) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patients, c.doctors, c.hospitals, c.trainers, c.appointments = nil, nil, nil, nil, nil
}

// Loading reports whether a fetch of kind is in flight.
func (c *Container) Loading(kind Kind) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading[kind] > 0
}

func (c *Container) setLoading(kind Kind, delta int) {
	c.mu.Lock()
	c.loading[kind] += delta
	c.mu.Unlock()
}

// Refresh replaces the mirror of kind with the backend's collection.
func (c *Container) Refresh(ctx context.Context, kind Kind) error {
	c.setLoading(kind, 1)
	defer c.setLoading(kind, -1)

	var err error
	switch kind {
	case KindPatients:
		err = load(ctx, c, kind, &c.patients)
	case KindDoctors:
		err = load(ctx, c, kind, &c.doctors)
	case KindHospitals:
		err = load(ctx, c, kind, &c.hospitals)
	case KindTrainers:
		err = load(ctx, c, kind, &c.trainers)
	case KindAppointments:
		err = load(ctx, c, kind, &c.appointments)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		c.logger.Error().Err(err).Str("kind", string(kind)).Msg("refresh failed")
		c.toast(models.ToastError, "Failed to load "+string(kind))
		return fmt.Errorf("refresh %s: %w", kind, err)
	}
	return nil
}

// RefreshAll refreshes kinds concurrently, or every collection when kinds is
// empty. Each failure is reported; successful refreshes are kept.
func (c *Container) RefreshAll(ctx context.Context, kinds ...Kind) error {
	if len(kinds) == 0 {
		kinds = Kinds
	}
	errs := make([]error, len(kinds))
	var g errgroup.Group
	for i, k := range kinds {
		g.Go(func() error {
			errs[i] = c.Refresh(ctx, k)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func load[T any](ctx context.Context, c *Container, kind Kind, dst *[]T) error {
	var items []T
	if err := c.api.Get(ctx, c.token(), "/"+string(kind), nil, &items); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	c.mu.Lock()
	*dst = items
	c.mu.Unlock()
	return nil
}

// ---------------------------------------------------------------------------
// Snapshots
// ---------------------------------------------------------------------------

func (c *Container) Patients() []models.Patient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Patient(nil), c.patients...)
}

func (c *Container) Doctors() []models.Doctor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Doctor(nil), c.doctors...)
}

func (c *Container) Hospitals() []models.Hospital {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Hospital(nil), c.hospitals...)
}

func (c *Container) Trainers() []models.Trainer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Trainer(nil), c.trainers...)
}

func (c *Container) Appointments() []models.Appointment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Appointment(nil), c.appointments...)
}

// Appointment returns the mirrored appointment id.
func (c *Container) Appointment(id string) (models.Appointment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.appointments {
		if a.ID == id {
			return a, true
		}
	}
	return models.Appointment{}, false
}

// AppointmentsFor returns the appointments user takes part in. Admins see all.
func (c *Container) AppointmentsFor(user *models.User) []models.Appointment {
	if user == nil {
		return nil
	}
	all := c.Appointments()
	if user.Role == models.RoleAdmin {
		return all
	}
	out := make([]models.Appointment, 0, len(all))
	for _, a := range all {
		switch user.Role {
		case models.RolePatient:
			if a.PatientID == user.ID {
				out = append(out, a)
			}
		case models.RoleDoctor, models.RoleTrainer:
			if a.DoctorID == user.ID {
				out = append(out, a)
			}
		case models.RoleHospital:
			if a.HospitalID != nil && *a.HospitalID == user.ID {
				out = append(out, a)
			}
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Admin aggregation
// ---------------------------------------------------------------------------

// Stats fetches the admin dashboard aggregate. It is not mirrored.
func (c *Container) Stats(ctx context.Context) (*backend.Stats, error) {
	s, err := c.api.AdminStats(ctx, c.token())
	if err != nil {
		c.logger.Error().Err(err).Msg("admin stats failed")
		c.toast(models.ToastError, "Failed to load dashboard statistics")
		return nil, err
	}
	return s, nil
}

// List fetches one page of an admin listing. It is not mirrored.
func (c *Container) List(ctx context.Context, kind Kind, q backend.ListQuery) (*backend.Page, error) {
	p, err := c.api.AdminList(ctx, c.token(), string(kind), q)
	if err != nil {
		c.logger.Error().Err(err).Str("kind", string(kind)).Msg("admin listing failed")
		c.toast(models.ToastError, "Failed to load "+string(kind))
		return nil, err
	}
	return p, nil
}

func (c *Container) toast(kind models.ToastKind, msg string) {
	c.mu.RLock()
	t := c.toaster
	c.mu.RUnlock()
	if t != nil {
		t.Toast(kind, msg)
	}
}
