package dashboard

import (
	"context"
	"strings"

	"github.com/healthportal/portal/internal/platform/router"
	"github.com/healthportal/portal/pkg/models"
)

// Service is one offering on the marketing pages.
type Service struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Landing is the public home page.
type Landing struct {
	Headline string      `json:"headline"`
	Tagline  string      `json:"tagline"`
	Services []Service   `json:"services"`
	Stats    []Card      `json:"stats"`
	Roles    []RoleEntry `json:"roles"`
}

// RoleEntry links to the sign-in screen of one role.
type RoleEntry struct {
	Role  models.Role `json:"role"`
	Label string      `json:"label"`
	Login string      `json:"login"`
}

// LoginView drives the sign-in screens. Role is empty on the generic screen.
type LoginView struct {
	Role          models.Role `json:"role,omitempty"`
	Roles         []RoleEntry `json:"roles"`
	Authenticated bool        `json:"authenticated"`
}

// RegisterView lists the roles a visitor may sign up for.
type RegisterView struct {
	Roles []RoleEntry `json:"roles"`
}

// Page is a static informational page.
type Page struct {
	Heading  string    `json:"heading"`
	Sections []Section `json:"sections"`
}

type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

var roleLabels = map[models.Role]string{
	models.RolePatient:  "Patient",
	models.RoleDoctor:   "Doctor",
	models.RoleHospital: "Hospital",
	models.RoleAdmin:    "Administrator",
	models.RoleTrainer:  "Trainer",
}

func roleEntries(include func(models.Role) bool) []RoleEntry {
	out := make([]RoleEntry, 0, len(models.Roles))
	for _, r := range models.Roles {
		if include != nil && !include(r) {
			continue
		}
		out = append(out, RoleEntry{Role: r, Label: roleLabels[r], Login: "/login/" + r.String()})
	}
	return out
}

func (s *Screens) publicRoutes() []router.Route {
	routes := []router.Route{
		{Path: "/", Screen: "landing", Title: "HealthCare Portal", Build: s.landing},
		{Path: "/login", Screen: "login", Title: "Sign in", Layout: router.LayoutAuth, Build: s.login},
	}
	for _, r := range models.Roles {
		routes = append(routes, router.Route{
			Path:   "/login/" + r.String(),
			Screen: "login." + r.String(),
			Title:  roleLabels[r] + " sign in",
			Layout: router.LayoutAuth,
			Build:  s.login,
		})
	}
	routes = append(routes,
		router.Route{Path: "/register", Screen: "register", Title: "Create account", Layout: router.LayoutAuth, Build: s.register},
		router.Route{Path: "/forgot-password", Screen: "forgot-password", Title: "Reset password", Layout: router.LayoutAuth, Build: static(Page{
			Heading:  "Reset your password",
			Sections: []Section{{Body: "Enter the email address you signed up with and we will send you a reset link."}},
		})},
		router.Route{Path: "/about", Screen: "about", Title: "About us", Build: static(aboutPage)},
		router.Route{Path: "/contact", Screen: "contact", Title: "Contact", Build: static(contactPage)},
		router.Route{Path: "/services", Screen: "services", Title: "Services", Build: static(servicesPage())},
		router.Route{Path: "/faq", Screen: "faq", Title: "FAQ", Build: static(faqPage)},
		router.Route{Path: "/privacy", Screen: "privacy", Title: "Privacy policy", Build: static(privacyPage)},
		router.Route{Path: "/terms", Screen: "terms", Title: "Terms of service", Build: static(termsPage)},
	)
	return routes
}

func static(data any) router.Builder {
	return func(context.Context, *router.Request) (any, error) { return data, nil }
}

func (s *Screens) landing(context.Context, *router.Request) (any, error) {
	return Landing{
		Headline: "Healthcare that comes to you",
		Tagline:  "Book doctors, join video consultations and keep your records in one place.",
		Services: services,
		Stats:    landingStats,
		Roles:    roleEntries(nil),
	}, nil
}

func (s *Screens) login(_ context.Context, req *router.Request) (any, error) {
	v := LoginView{Roles: roleEntries(nil), Authenticated: req.User != nil}
	if suffix, ok := strings.CutPrefix(req.Path, "/login/"); ok {
		v.Role = models.Role(suffix)
	}
	return v, nil
}

func (s *Screens) register(context.Context, *router.Request) (any, error) {
	return RegisterView{Roles: roleEntries(func(r models.Role) bool { return r != models.RoleAdmin })}, nil
}

func servicesPage() Page {
	p := Page{Heading: "Our services"}
	for _, svc := range services {
		p.Sections = append(p.Sections, Section{Title: svc.Name, Body: svc.Description})
	}
	return p
}
