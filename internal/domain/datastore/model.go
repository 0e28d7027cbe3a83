package datastore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/healthportal/portal/pkg/models"
	"github.com/healthportal/portal/pkg/validation"
)

// Kind names a mirrored collection. Values double as backend path segments.
type Kind string

const (
	KindPatients     Kind = "patients"
	KindDoctors      Kind = "doctors"
	KindHospitals    Kind = "hospitals"
	KindTrainers     Kind = "trainers"
	KindAppointments Kind = "appointments"
)

// Kinds lists every collection in refresh order.
var Kinds = []Kind{KindPatients, KindDoctors, KindHospitals, KindTrainers, KindAppointments}

var ErrUnknownKind = errors.New("unknown collection")

// ParseKind returns the collection named s.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Administered reports whether records of k carry an approval status.
func (k Kind) Administered() bool {
	return k == KindPatients || k == KindDoctors || k == KindHospitals || k == KindTrainers
}

// singular is the display noun used in toasts.
func (k Kind) singular() string {
	switch k {
	case KindPatients:
		return "Patient"
	case KindDoctors:
		return "Doctor"
	case KindHospitals:
		return "Hospital"
	case KindTrainers:
		return "Trainer"
	case KindAppointments:
		return "Appointment"
	}
	return string(k)
}

// Action is a status transition on an administered record.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionSuspend Action = "suspend"
)

func (a Action) status() (models.RecordStatus, bool) {
	switch a {
	case ActionApprove:
		return models.StatusApproved, true
	case ActionReject:
		return models.StatusRejected, true
	case ActionSuspend:
		return models.StatusSuspended, true
	}
	return "", false
}

// ValidationError is returned when a form is rejected before any network
// call.
type ValidationError struct {
	Entity string
	Result validation.Result
}

func (e *ValidationError) Error() string {
	return "invalid " + strings.ToLower(e.Entity) + ": " + e.Result.Error()
}

// Form is implemented by every typed form the store submits.
type Form interface {
	Validate() validation.Result
}

// DoctorForm is the add-doctor form.
type DoctorForm struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone,omitempty"`
	Specialization string   `json:"specialization"`
	Experience     int      `json:"experience"`
	Fees           float64  `json:"fees"`
	Qualification  string   `json:"qualification,omitempty"`
	HospitalID     string   `json:"hospital_id,omitempty"`
	Availability   []string `json:"availability,omitempty"`
}

func (f DoctorForm) Validate() validation.Result {
	var r validation.Result
	r.Required("name", f.Name)
	if r.Required("email", f.Email) {
		r.Email("email", f.Email)
	}
	r.Required("specialization", f.Specialization)
	r.NonNegative("experience", float64(f.Experience))
	r.NonNegative("fees", f.Fees)
	return r
}

// PatientForm is the add-patient form.
type PatientForm struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Age        int    `json:"age,omitempty"`
	Gender     string `json:"gender,omitempty"`
	BloodGroup string `json:"blood_group,omitempty"`
	Address    string `json:"address,omitempty"`
}

func (f PatientForm) Validate() validation.Result {
	var r validation.Result
	r.Required("name", f.Name)
	if r.Required("email", f.Email) {
		r.Email("email", f.Email)
	}
	if f.Age < 0 || f.Age > 150 {
		r.Add("age", "must be between 0 and 150")
	}
	if f.Gender != "" {
		r.OneOf("gender", strings.ToLower(f.Gender), "male", "female", "other")
	}
	return r
}

// HospitalForm is the add-hospital form.
type HospitalForm struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone,omitempty"`
	Address    string   `json:"address"`
	City       string   `json:"city,omitempty"`
	Facilities []string `json:"facilities,omitempty"`
	Beds       int      `json:"beds,omitempty"`
}

func (f HospitalForm) Validate() validation.Result {
	var r validation.Result
	r.Required("name", f.Name)
	if r.Required("email", f.Email) {
		r.Email("email", f.Email)
	}
	r.Required("address", f.Address)
	r.NonNegative("beds", float64(f.Beds))
	return r
}

// TrainerForm is the add-trainer form.
type TrainerForm struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone,omitempty"`
	Specialty      string   `json:"specialty"`
	Experience     int      `json:"experience"`
	Certifications []string `json:"certifications,omitempty"`
	Fees           float64  `json:"fees,omitempty"`
}

func (f TrainerForm) Validate() validation.Result {
	var r validation.Result
	r.Required("name", f.Name)
	if r.Required("email", f.Email) {
		r.Email("email", f.Email)
	}
	r.Required("specialty", f.Specialty)
	r.NonNegative("experience", float64(f.Experience))
	r.NonNegative("fees", f.Fees)
	return r
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// AppointmentForm is the booking form.
type AppointmentForm struct {
	PatientID   string                 `json:"patient_id"`
	PatientName string                 `json:"patient_name,omitempty"`
	DoctorID    string                 `json:"doctor_id"`
	DoctorName  string                 `json:"doctor_name,omitempty"`
	HospitalID  string                 `json:"hospital_id,omitempty"`
	Type        models.AppointmentType `json:"type"`
	Date        string                 `json:"date"`
	Time        string                 `json:"time"`
	Reason      string                 `json:"reason,omitempty"`
	Fee         float64                `json:"fee,omitempty"`
}

func (f AppointmentForm) Validate() validation.Result {
	var r validation.Result
	r.Required("patient_id", f.PatientID)
	r.Required("doctor_id", f.DoctorID)
	if !f.Type.Valid() {
		r.Add("type", "must be one of video, chat, inperson, hospital")
	}
	if f.Type == models.AppointmentHospital {
		r.Required("hospital_id", f.HospitalID)
	}
	validateSlot(&r, f.Date, f.Time)
	r.NonNegative("fee", f.Fee)
	return r
}

// RescheduleForm moves an appointment to a new slot.
type RescheduleForm struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Reason string `json:"reason,omitempty"`
}

func (f RescheduleForm) Validate() validation.Result {
	var r validation.Result
	validateSlot(&r, f.Date, f.Time)
	return r
}

func validateSlot(r *validation.Result, date, clock string) {
	if r.Required("date", date) {
		if _, err := time.Parse(dateLayout, date); err != nil {
			r.Add("date", "must be formatted as YYYY-MM-DD")
		}
	}
	if r.Required("time", clock) {
		if _, err := time.Parse(timeLayout, clock); err != nil {
			r.Add("time", "must be formatted as HH:MM")
		}
	}
}
