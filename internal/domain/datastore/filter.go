package datastore

import (
	"github.com/healthportal/portal/internal/domain/search"
	"github.com/healthportal/portal/pkg/models"
)

func FilterPatients(items []models.Patient, term string) []models.Patient {
	return search.Filter(items, term, func(p models.Patient) []string {
		return []string{p.Name, p.Email, p.Phone}
	})
}

func FilterDoctors(items []models.Doctor, term string) []models.Doctor {
	return search.Filter(items, term, func(d models.Doctor) []string {
		return []string{d.Name, d.Email, d.Specialization}
	})
}

func FilterHospitals(items []models.Hospital, term string) []models.Hospital {
	return search.Filter(items, term, func(h models.Hospital) []string {
		return []string{h.Name, h.Email, h.City, h.Address}
	})
}

func FilterTrainers(items []models.Trainer, term string) []models.Trainer {
	return search.Filter(items, term, func(t models.Trainer) []string {
		return []string{t.Name, t.Email, t.Specialty}
	})
}

func FilterAppointments(items []models.Appointment, term string) []models.Appointment {
	return search.Filter(items, term, func(a models.Appointment) []string {
		return []string{a.PatientName, a.DoctorName, a.Reason, string(a.Status), string(a.Type), a.Date}
	})
}
