package notification

import (
	"time"

	"github.com/healthportal/portal/pkg/models"
)

type seed struct {
	template string
	data     map[string]string
	ago      time.Duration
	unread   bool
	related  string
}

// roleSeeds is the mock notification list each role starts with after sign-in.
// Order is newest first.
var roleSeeds = map[models.Role][]seed{
	models.RolePatient: {
		{template: "appointment-confirmed", data: map[string]string{"doctor": "Dr. Sarah Johnson", "date": "tomorrow", "time": "10:00 AM"}, ago: 5 * time.Minute, unread: true, related: "apt-1"},
		{template: "new-message", data: map[string]string{"sender": "Dr. Michael Chen"}, ago: time.Hour, unread: true},
		{template: "report-ready", data: map[string]string{"report": "blood test report"}, ago: 3 * time.Hour, unread: false},
		{template: "appointment-reminder", data: map[string]string{"doctor": "Dr. Emily Brown", "when": "in 2 days"}, ago: 24 * time.Hour, unread: false, related: "apt-2"},
	},
	models.RoleDoctor: {
		{template: "appointment-request", data: map[string]string{"patient": "John Smith", "type": "video", "date": "today"}, ago: 10 * time.Minute, unread: true, related: "apt-3"},
		{template: "payment-received", data: map[string]string{"amount": "$150", "item": "consultation with Jane Doe"}, ago: 2 * time.Hour, unread: true},
		{template: "appointment-cancelled", data: map[string]string{"patient": "Robert Wilson", "date": "Friday"}, ago: 5 * time.Hour, unread: false},
	},
	models.RoleHospital: {
		{template: "approval-pending", data: map[string]string{"count": "3", "kind": "doctor"}, ago: 15 * time.Minute, unread: true},
		{template: "appointment-request", data: map[string]string{"patient": "Maria Garcia", "type": "in-hospital", "date": "Monday"}, ago: time.Hour, unread: true},
		{template: "report-ready", data: map[string]string{"report": "monthly occupancy report"}, ago: 24 * time.Hour, unread: false},
	},
	models.RoleAdmin: {
		{template: "approval-pending", data: map[string]string{"count": "5", "kind": "doctor"}, ago: 5 * time.Minute, unread: true},
		{template: "approval-pending", data: map[string]string{"count": "2", "kind": "hospital"}, ago: 30 * time.Minute, unread: true},
		{template: "system-update", data: map[string]string{"message": "Scheduled maintenance tonight at 2:00 AM."}, ago: 6 * time.Hour, unread: false},
		{template: "report-ready", data: map[string]string{"report": "weekly platform report"}, ago: 48 * time.Hour, unread: false},
	},
	models.RoleTrainer: {
		{template: "session-booked", data: map[string]string{"client": "Alex Turner", "program": "strength training", "date": "tomorrow"}, ago: 20 * time.Minute, unread: true},
		{template: "payment-received", data: map[string]string{"amount": "$60", "item": "yoga program"}, ago: 4 * time.Hour, unread: false},
	},
}

// Seed renders the starting notifications for role relative to now.
func (e *TemplateEngine) Seed(role models.Role, now time.Time, newID func() string) ([]models.Notification, error) {
	seeds := roleSeeds[role]
	out := make([]models.Notification, 0, len(seeds))
	for _, s := range seeds {
		t, err := e.Render(s.template, s.data)
		if err != nil {
			return nil, err
		}
		n := models.Notification{
			ID:      newID(),
			Title:   t.Title,
			Message: t.Message,
			Time:    now.Add(-s.ago),
			Unread:  s.unread,
			Type:    t.Type,
		}
		if s.related != "" {
			rel := s.related
			n.RelatedID = &rel
		}
		out = append(out, n)
	}
	return out, nil
}
