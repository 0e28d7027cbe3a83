package datastore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/healthportal/portal/internal/platform/backend"
	"github.com/healthportal/portal/pkg/models"
)

// ---------------------------------------------------------------------------
// Add
// ---------------------------------------------------------------------------

func (c *Container) AddDoctor(ctx context.Context, f DoctorForm) (*models.Doctor, error) {
	return add(ctx, c, KindDoctors, f, &c.doctors, func(d models.Doctor) string { return d.ID })
}

func (c *Container) AddPatient(ctx context.Context, f PatientForm) (*models.Patient, error) {
	return add(ctx, c, KindPatients, f, &c.patients, func(p models.Patient) string { return p.ID })
}

func (c *Container) AddHospital(ctx context.Context, f HospitalForm) (*models.Hospital, error) {
	return add(ctx, c, KindHospitals, f, &c.hospitals, func(h models.Hospital) string { return h.ID })
}

func (c *Container) AddTrainer(ctx context.Context, f TrainerForm) (*models.Trainer, error) {
	return add(ctx, c, KindTrainers, f, &c.trainers, func(t models.Trainer) string { return t.ID })
}

// Book creates an appointment.
func (c *Container) Book(ctx context.Context, f AppointmentForm) (*models.Appointment, error) {
	return add(ctx, c, KindAppointments, f, &c.appointments, func(a models.Appointment) string { return a.ID })
}

// add validates f, posts it and appends the created record. When the backend
// answers without an id the collection is refetched instead.
func add[T any](ctx context.Context, c *Container, kind Kind, f Form, dst *[]T, id func(T) string) (*T, error) {
	entity := kind.singular()
	if res := f.Validate(); !res.Valid() {
		c.logger.Debug().Str("kind", string(kind)).Strs("fields", res.Fields()).Msg("form rejected")
		c.toast(models.ToastError, "Please fill in all required fields")
		return nil, &ValidationError{Entity: entity, Result: res}
	}

	var created T
	if err := c.api.Post(ctx, c.token(), "/"+string(kind), f, &created); err != nil {
		return nil, c.failed(err, kind, "add", "Failed to add "+strings.ToLower(entity))
	}

	if id(created) == "" {
		if err := c.Refresh(ctx, kind); err != nil {
			return nil, err
		}
	} else {
		c.mu.Lock()
		*dst = append(*dst, created)
		c.mu.Unlock()
	}
	c.toast(models.ToastSuccess, entity+" added successfully")
	return &created, nil
}

// ---------------------------------------------------------------------------
// Status transitions
// ---------------------------------------------------------------------------

func (c *Container) Approve(ctx context.Context, kind Kind, id string) error {
	return c.Transition(ctx, kind, id, ActionApprove)
}

func (c *Container) Reject(ctx context.Context, kind Kind, id string) error {
	return c.Transition(ctx, kind, id, ActionReject)
}

func (c *Container) Suspend(ctx context.Context, kind Kind, id string) error {
	return c.Transition(ctx, kind, id, ActionSuspend)
}

// Transition applies action to the administered record id of kind and patches
// its mirrored status on success.
func (c *Container) Transition(ctx context.Context, kind Kind, id string, action Action) error {
	status, ok := action.status()
	if !ok {
		return fmt.Errorf("unknown action %q", action)
	}
	if !kind.Administered() {
		return fmt.Errorf("%w: %q has no approval status", ErrUnknownKind, kind)
	}
	path := fmt.Sprintf("/admin/%s/%s/%s", kind, url.PathEscape(id), action)
	if err := c.api.Put(ctx, c.token(), path, nil, nil); err != nil {
		return c.failed(err, kind, string(action), fmt.Sprintf("Failed to %s %s", action, strings.ToLower(kind.singular())))
	}

	c.mu.Lock()
	switch kind {
	case KindPatients:
		patch(c.patients, func(p *models.Patient) bool { return p.ID == id }, func(p *models.Patient) { p.Status = status })
	case KindDoctors:
		patch(c.doctors, func(d *models.Doctor) bool { return d.ID == id }, func(d *models.Doctor) { d.Status = status })
	case KindHospitals:
		patch(c.hospitals, func(h *models.Hospital) bool { return h.ID == id }, func(h *models.Hospital) { h.Status = status })
	case KindTrainers:
		patch(c.trainers, func(t *models.Trainer) bool { return t.ID == id }, func(t *models.Trainer) { t.Status = status })
	}
	c.mu.Unlock()

	c.toast(models.ToastSuccess, fmt.Sprintf("%s %s successfully", kind.singular(), status))
	return nil
}

// ---------------------------------------------------------------------------
// Appointments
// ---------------------------------------------------------------------------

func (c *Container) Confirm(ctx context.Context, id string) error {
	return c.appointmentAction(ctx, id, "confirm", nil, models.AppointmentConfirmed, nil)
}

func (c *Container) Cancel(ctx context.Context, id string) error {
	return c.appointmentAction(ctx, id, "cancel", nil, models.AppointmentCancelled, nil)
}

func (c *Container) Complete(ctx context.Context, id string) error {
	return c.appointmentAction(ctx, id, "complete", nil, models.AppointmentCompleted, nil)
}

// Reschedule moves appointment id to the slot in f.
func (c *Container) Reschedule(ctx context.Context, id string, f RescheduleForm) error {
	if res := f.Validate(); !res.Valid() {
		c.toast(models.ToastError, "Please choose a valid date and time")
		return &ValidationError{Entity: "Appointment", Result: res}
	}
	return c.appointmentAction(ctx, id, "reschedule", f, models.AppointmentRescheduled, func(a *models.Appointment) {
		a.Date = f.Date
		a.Time = f.Time
	})
}

func (c *Container) appointmentAction(ctx context.Context, id, action string, body any, status models.AppointmentStatus, extra func(*models.Appointment)) error {
	path := fmt.Sprintf("/appointments/%s/%s", url.PathEscape(id), action)
	if err := c.api.Put(ctx, c.token(), path, body, nil); err != nil {
		return c.failed(err, KindAppointments, action, "Failed to "+action+" appointment")
	}

	c.mu.Lock()
	patch(c.appointments, func(a *models.Appointment) bool { return a.ID == id }, func(a *models.Appointment) {
		a.Status = status
		if extra != nil {
			extra(a)
		}
	})
	c.mu.Unlock()

	c.toast(models.ToastSuccess, "Appointment "+string(status))
	return nil
}

func patch[T any](items []T, match func(*T) bool, apply func(*T)) bool {
	for i := range items {
		if match(&items[i]) {
			apply(&items[i])
			return true
		}
	}
	return false
}

func (c *Container) failed(err error, kind Kind, op, message string) error {
	c.logger.Error().Err(err).Str("kind", string(kind)).Str("op", op).Msg("backend mutation failed")
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 && apiErr.Message != "" {
		message = message + ": " + apiErr.Message
	}
	c.toast(models.ToastError, message)
	return fmt.Errorf("%s %s: %w", op, kind, err)
}
