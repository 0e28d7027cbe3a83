package models

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"patient", RolePatient, true},
		{" Doctor ", RoleDoctor, true},
		{"HOSPITAL", RoleHospital, true},
		{"trainer", RoleTrainer, true},
		{"nurse", Role("nurse"), false},
		{"", Role(""), false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRole(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAppointmentStatus_Active(t *testing.T) {
	for _, s := range []AppointmentStatus{AppointmentUpcoming, AppointmentConfirmed, AppointmentRescheduled} {
		if !s.Active() {
			t.Errorf("expected %s to be active", s)
		}
	}
	for _, s := range []AppointmentStatus{AppointmentCompleted, AppointmentCancelled} {
		if s.Active() {
			t.Errorf("expected %s to be inactive", s)
		}
	}
}

func TestAppointmentType_Valid(t *testing.T) {
	if !AppointmentInPerson.Valid() {
		t.Error("inperson should be valid")
	}
	if AppointmentType("phone").Valid() {
		t.Error("phone should not be valid")
	}
}
