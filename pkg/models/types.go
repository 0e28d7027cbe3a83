package models

import "strings"

// Common value set constants shared by the portal containers and screens.

// Role identifies which dashboard and navigation set a user sees.
type Role string

const (
	RolePatient  Role = "patient"
	RoleDoctor   Role = "doctor"
	RoleHospital Role = "hospital"
	RoleAdmin    Role = "admin"
	RoleTrainer  Role = "trainer"
)

// Roles lists every role in display order.
var Roles = []Role{RolePatient, RoleDoctor, RoleHospital, RoleAdmin, RoleTrainer}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleHospital, RoleAdmin, RoleTrainer:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole normalizes s and returns the matching role. The second return
// value is false for anything outside the known set.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// RecordStatus is the approval state of an administered record.
type RecordStatus string

const (
	StatusPending   RecordStatus = "pending"
	StatusApproved  RecordStatus = "approved"
	StatusRejected  RecordStatus = "rejected"
	StatusSuspended RecordStatus = "suspended"
)

// AppointmentType values.
type AppointmentType string

const (
	AppointmentVideo    AppointmentType = "video"
	AppointmentChat     AppointmentType = "chat"
	AppointmentInPerson AppointmentType = "inperson"
	AppointmentHospital AppointmentType = "hospital"
)

// Valid reports whether t is a known appointment type.
func (t AppointmentType) Valid() bool {
	switch t {
	case AppointmentVideo, AppointmentChat, AppointmentInPerson, AppointmentHospital:
		return true
	}
	return false
}

// AppointmentStatus values.
type AppointmentStatus string

const (
	AppointmentUpcoming    AppointmentStatus = "upcoming"
	AppointmentConfirmed   AppointmentStatus = "confirmed"
	AppointmentCompleted   AppointmentStatus = "completed"
	AppointmentCancelled   AppointmentStatus = "cancelled"
	AppointmentRescheduled AppointmentStatus = "rescheduled"
)

// Active reports whether the appointment still needs attention.
func (s AppointmentStatus) Active() bool {
	return s == AppointmentUpcoming || s == AppointmentConfirmed || s == AppointmentRescheduled
}

// NotificationType values.
type NotificationType string

const (
	NotificationAppointment NotificationType = "appointment"
	NotificationMessage     NotificationType = "message"
	NotificationPayment     NotificationType = "payment"
	NotificationSystem      NotificationType = "system"
	NotificationReminder    NotificationType = "reminder"
	NotificationApproval    NotificationType = "approval"
	NotificationReport      NotificationType = "report"
)

// ToastKind classifies a transient user-facing message.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
	ToastWarning ToastKind = "warning"
)
