package backend

import (
	"context"
	"net/url"
	"strconv"
)

// Stats is the admin dashboard aggregate.
type Stats struct {
	TotalPatients        int            `json:"totalPatients"`
	TotalDoctors         int            `json:"totalDoctors"`
	TotalHospitals       int            `json:"totalHospitals"`
	TotalTrainers        int            `json:"totalTrainers"`
	TotalAppointments    int            `json:"totalAppointments"`
	PendingApprovals     int            `json:"pendingApprovals"`
	Revenue              float64        `json:"revenue"`
	AppointmentsByStatus map[string]int `json:"appointmentsByStatus,omitempty"`
}

// ListQuery carries the paginated listing parameters the admin endpoints
// accept.
type ListQuery struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Search string
}

// Values encodes q, omitting zero fields.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

// Page is one page of an admin listing. Items stay raw so the listing
// endpoint can pass them through untouched.
type Page struct {
	Items      []map[string]any `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

func (c *Client) AdminStats(ctx context.Context, token string) (*Stats, error) {
	var s Stats
	if err := c.Get(ctx, token, "/admin/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// AdminList fetches one page of /admin/<resource>.
func (c *Client) AdminList(ctx context.Context, token, resource string, q ListQuery) (*Page, error) {
	var p Page
	if err := c.Get(ctx, token, "/admin/"+resource, q.Values(), &p); err != nil {
		return nil, err
	}
	if p.Page == 0 {
		p.Page = q.Page
	}
	if p.Limit == 0 {
		p.Limit = q.Limit
	}
	return &p, nil
}
