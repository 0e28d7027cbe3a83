package models

import "time"

// User is the signed-in account as returned by the backend.
type User struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Role   Role    `json:"role"`
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// Patient is a patient record managed by admins and read by doctors.
type Patient struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone,omitempty"`
	Age        int          `json:"age,omitempty"`
	Gender     string       `json:"gender,omitempty"`
	BloodGroup string       `json:"blood_group,omitempty"`
	Address    string       `json:"address,omitempty"`
	Status     RecordStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Doctor is a practitioner record.
type Doctor struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone,omitempty"`
	Specialization string       `json:"specialization"`
	Experience     int          `json:"experience"`
	Fees           float64      `json:"fees"`
	Qualification  string       `json:"qualification,omitempty"`
	HospitalID     *string      `json:"hospital_id,omitempty"`
	Availability   []string     `json:"availability,omitempty"`
	Rating         float64      `json:"rating,omitempty"`
	Status         RecordStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Hospital is a facility record.
type Hospital struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone,omitempty"`
	Address    string       `json:"address"`
	City       string       `json:"city,omitempty"`
	Facilities []string     `json:"facilities,omitempty"`
	Beds       int          `json:"beds,omitempty"`
	Status     RecordStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Trainer is a fitness/rehabilitation trainer record.
type Trainer struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone,omitempty"`
	Specialty      string       `json:"specialty"`
	Experience     int          `json:"experience"`
	Certifications []string     `json:"certifications,omitempty"`
	Fees           float64      `json:"fees,omitempty"`
	Status         RecordStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Appointment links a patient to a doctor and optionally a hospital.
type Appointment struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patient_id"`
	PatientName string            `json:"patient_name,omitempty"`
	DoctorID    string            `json:"doctor_id"`
	DoctorName  string            `json:"doctor_name,omitempty"`
	HospitalID  *string           `json:"hospital_id,omitempty"`
	Type        AppointmentType   `json:"type"`
	Status      AppointmentStatus `json:"status"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Reason      string            `json:"reason,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Fee         float64           `json:"fee,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Notification is a single entry in a user's notification list.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Time      time.Time        `json:"time"`
	Unread    bool             `json:"unread"`
	Type      NotificationType `json:"type"`
	RelatedID *string          `json:"related_id,omitempty"`
}

// Toast is a transient message raised by a container for the active screen.
type Toast struct {
	Kind    ToastKind `json:"kind"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}
