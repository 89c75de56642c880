package reports

import "time"

// Report describes a generated report the backend has made available for
// download. The feed is kept newest first.
type Report struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Period      string    `json:"period"`
	Format      string    `json:"format"`
	GeneratedAt time.Time `json:"generatedAt"`
	URL         string    `json:"url"`
}

// EntityID implements store.Entity.
func (r Report) EntityID() string { return r.ID }
