package notification

import (
	"fmt"
	"strings"
	"sync"

	"github.com/healthportal/portal/pkg/models"
)

// Template is a reusable notification with {{key}} placeholders in its title
// and message.
type Template struct {
	ID      string                  `json:"id"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
	Type    models.NotificationType `json:"type"`
}

// TemplateEngine holds templates by id and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine returns an engine with the built-in templates registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	for _, t := range builtInTemplates {
		e.RegisterTemplate(t)
	}
	return e
}

var builtInTemplates = []Template{
	{ID: "appointment-confirmed", Title: "Appointment Confirmed", Message: "Your appointment with {{doctor}} on {{date}} at {{time}} has been confirmed.", Type: models.NotificationAppointment},
	{ID: "appointment-reminder", Title: "Appointment Reminder", Message: "Reminder: you have an appointment with {{doctor}} {{when}}.", Type: models.NotificationReminder},
	{ID: "appointment-request", Title: "New Appointment Request", Message: "{{patient}} requested a {{type}} consultation on {{date}}.", Type: models.NotificationAppointment},
	{ID: "appointment-cancelled", Title: "Appointment Cancelled", Message: "{{patient}} cancelled the appointment on {{date}}.", Type: models.NotificationAppointment},
	{ID: "new-message", Title: "New Message", Message: "{{sender}} sent you a message.", Type: models.NotificationMessage},
	{ID: "payment-received", Title: "Payment Received", Message: "Payment of {{amount}} received for {{item}}.", Type: models.NotificationPayment},
	{ID: "report-ready", Title: "Report Ready", Message: "Your {{report}} is now available.", Type: models.NotificationReport},
	{ID: "approval-pending", Title: "Pending Approval", Message: "{{count}} new {{kind}} registrations are awaiting approval.", Type: models.NotificationApproval},
	{ID: "registration-approved", Title: "Registration Approved", Message: "{{name}} has been approved and is now active.", Type: models.NotificationApproval},
	{ID: "system-update", Title: "System Update", Message: "{{message}}", Type: models.NotificationSystem},
	{ID: "session-booked", Title: "New Session Booked", Message: "{{client}} booked a {{program}} session for {{date}}.", Type: models.NotificationAppointment},
}

// RegisterTemplate adds or replaces t.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render fills the template's placeholders from data. Placeholders without a
// value are left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (Template, error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return Template{}, fmt.Errorf("template %q not found", templateID)
	}

	out := *t
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		out.Title = strings.ReplaceAll(out.Title, placeholder, v)
		out.Message = strings.ReplaceAll(out.Message, placeholder, v)
	}
	return out, nil
}
