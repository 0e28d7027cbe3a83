package dashboard

import "github.com/healthportal/portal/pkg/models"

// Fixed content for marketing pages and the screens that have no backend
// endpoint yet.

var services = []Service{
	{Name: "Video consultations", Description: "See a licensed doctor from home over a secure video call."},
	{Name: "Chat with a doctor", Description: "Ask follow-up questions and share photos with your care team."},
	{Name: "Hospital appointments", Description: "Book in-person visits at partner hospitals near you."},
	{Name: "Medical records", Description: "Keep prescriptions, lab results and visit notes in one place."},
	{Name: "Fitness and rehabilitation", Description: "Work with certified trainers on recovery and wellness programs."},
}

var landingStats = []Card{
	{Label: "Patients served", Value: "50,000+"},
	{Label: "Partner doctors", Value: "1,200+"},
	{Label: "Hospitals", Value: "150+"},
	{Label: "Average rating", Value: 4.8},
}

var aboutPage = Page{
	Heading: "About HealthCare Portal",
	Sections: []Section{
		{Title: "Our mission", Body: "Make quality care reachable for everyone, wherever they are."},
		{Title: "Who we work with", Body: "Independent doctors, partner hospitals and certified trainers."},
	},
}

var contactPage = Page{
	Heading: "Contact us",
	Sections: []Section{
		{Title: "Email", Body: "support@healthcareportal.example"},
		{Title: "Phone", Body: "+1 (555) 010-2030"},
		{Title: "Hours", Body: "Monday to Saturday, 8am to 8pm"},
	},
}

var faqPage = Page{
	Heading: "Frequently asked questions",
	Sections: []Section{
		{Title: "How do I book an appointment?", Body: "Sign in as a patient, open Book appointment and pick a doctor and slot."},
		{Title: "Can I reschedule?", Body: "Yes. Open the appointment and choose a new date and time."},
		{Title: "How are doctors verified?", Body: "Every doctor and hospital is reviewed by an administrator before listing."},
		{Title: "Is my data private?", Body: "Records are only visible to you and the clinicians you book with."},
	},
}

var privacyPage = Page{
	Heading: "Privacy policy",
	Sections: []Section{
		{Title: "What we collect", Body: "Account details, appointment history and the records you upload."},
		{Title: "How we use it", Body: "Only to provide care and run the portal. We never sell personal data."},
	},
}

var termsPage = Page{
	Heading: "Terms of service",
	Sections: []Section{
		{Title: "Not for emergencies", Body: "Call your local emergency number for urgent care."},
		{Title: "Accounts", Body: "You are responsible for keeping your sign-in details safe."},
	},
}

// MedicalRecord is one entry of a patient's history.
type MedicalRecord struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Kind   string `json:"kind"`
	Doctor string `json:"doctor"`
	Date   string `json:"date"`
	Notes  string `json:"notes,omitempty"`
}

var medicalRecords = []MedicalRecord{
	{ID: "rec-1", Title: "Complete blood count", Kind: "lab", Doctor: "Dr. Sarah Johnson", Date: "2024-01-10", Notes: "All values within range."},
	{ID: "rec-2", Title: "Amoxicillin 500mg", Kind: "prescription", Doctor: "Dr. Michael Chen", Date: "2024-01-05", Notes: "Three times daily for seven days."},
	{ID: "rec-3", Title: "Chest X-ray", Kind: "imaging", Doctor: "Dr. Emily Davis", Date: "2023-12-18"},
	{ID: "rec-4", Title: "Annual physical", Kind: "visit", Doctor: "Dr. Sarah Johnson", Date: "2023-11-02", Notes: "Follow up on blood pressure in six months."},
}

// MonthAmount is one bar of an earnings or revenue chart.
type MonthAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

var monthlyEarnings = []MonthAmount{
	{Month: "Jan", Amount: 4200}, {Month: "Feb", Amount: 3800}, {Month: "Mar", Amount: 5100},
	{Month: "Apr", Amount: 4700}, {Month: "May", Amount: 5600}, {Month: "Jun", Amount: 6100},
}

// Department is a hospital unit.
type Department struct {
	Name    string `json:"name"`
	Head    string `json:"head"`
	Doctors int    `json:"doctors"`
	Beds    int    `json:"beds"`
}

var departments = []Department{
	{Name: "Cardiology", Head: "Dr. Sarah Johnson", Doctors: 8, Beds: 40},
	{Name: "Neurology", Head: "Dr. Michael Chen", Doctors: 5, Beds: 25},
	{Name: "Orthopedics", Head: "Dr. Emily Davis", Doctors: 6, Beds: 30},
	{Name: "Pediatrics", Head: "Dr. James Wilson", Doctors: 7, Beds: 35},
	{Name: "Emergency", Head: "Dr. Lisa Anderson", Doctors: 12, Beds: 50},
}

// Report is a generated document on the reports screens.
type Report struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Period   string `json:"period"`
	Status   string `json:"status"`
}

var reports = []Report{
	{ID: "rpt-1", Title: "Monthly appointments", Category: "operations", Period: "2024-01", Status: "ready"},
	{ID: "rpt-2", Title: "Revenue summary", Category: "finance", Period: "2024-Q4", Status: "ready"},
	{ID: "rpt-3", Title: "Patient satisfaction", Category: "quality", Period: "2024-01", Status: "processing"},
	{ID: "rpt-4", Title: "Doctor utilisation", Category: "operations", Period: "2024-01", Status: "ready"},
}

// Program is a trainer's workout or rehabilitation plan.
type Program struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Level    string `json:"level"`
	Weeks    int    `json:"weeks"`
	Enrolled int    `json:"enrolled"`
}

var programs = []Program{
	{ID: "prg-1", Name: "Post-surgery knee rehab", Level: "beginner", Weeks: 8, Enrolled: 12},
	{ID: "prg-2", Name: "Cardiac fitness", Level: "intermediate", Weeks: 12, Enrolled: 9},
	{ID: "prg-3", Name: "Lower back strength", Level: "beginner", Weeks: 6, Enrolled: 15},
	{ID: "prg-4", Name: "Weight management", Level: "advanced", Weeks: 16, Enrolled: 7},
}

// Client is a person enrolled with a trainer.
type Client struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Program  string `json:"program"`
	Progress int    `json:"progress"`
	NextDate string `json:"next_session,omitempty"`
}

var clients = []Client{
	{ID: "cl-1", Name: "John Smith", Program: "Post-surgery knee rehab", Progress: 60, NextDate: "2024-01-16"},
	{ID: "cl-2", Name: "Maria Garcia", Program: "Cardiac fitness", Progress: 35, NextDate: "2024-01-17"},
	{ID: "cl-3", Name: "David Lee", Program: "Lower back strength", Progress: 80},
	{ID: "cl-4", Name: "Emma Brown", Program: "Weight management", Progress: 20, NextDate: "2024-01-18"},
}

// Thread is a patient's conversation with a clinician.
type Thread struct {
	ID          string `json:"id"`
	With        string `json:"with"`
	LastMessage string `json:"last_message"`
	Unread      int    `json:"unread"`
}

var sampleThreads = []Thread{
	{ID: "th-1", With: "Dr. Sarah Johnson", LastMessage: "Your lab results look good.", Unread: 1},
	{ID: "th-2", With: "Dr. Michael Chen", LastMessage: "Remember to finish the antibiotics."},
}

var specializations = []string{
	"Cardiology", "Dermatology", "General Practice", "Neurology",
	"Orthopedics", "Pediatrics", "Psychiatry",
}

var facilities = []string{"Emergency", "ICU", "Laboratory", "Pharmacy", "Radiology", "Surgery"}

var appointmentTypes = []models.AppointmentType{
	models.AppointmentVideo, models.AppointmentChat, models.AppointmentInPerson, models.AppointmentHospital,
}

// Settings is the admin configuration screen.
type Settings struct {
	PlatformName   string          `json:"platform_name"`
	SupportEmail   string          `json:"support_email"`
	Features       map[string]bool `json:"features"`
	AutoApprove    bool            `json:"auto_approve"`
	SessionMinutes int             `json:"session_minutes"`
}

var defaultSettings = Settings{
	PlatformName: "HealthCare Portal",
	SupportEmail: "support@healthcareportal.example",
	Features: map[string]bool{
		"video_consultations": true,
		"chat":                true,
		"trainer_programs":    true,
	},
	SessionMinutes: 30,
}
