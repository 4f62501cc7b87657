package models

import "time"

// DefaultResourceType classifies resources without an explicit type.
const DefaultResourceType = "pdf"

// Resource is a downloadable study material linked to a subject. Downloads is
// monotonically non-decreasing and only ever mutated through the store's
// atomic increment, never read-modify-write.
type Resource struct {
	ID           string     `json:"id"`
	SubjectID    string     `json:"subjectId"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	URL          string     `json:"url"`
	Type         string     `json:"type"`
	Tags         []string   `json:"tags,omitempty"`
	Downloads    int64      `json:"downloads"`
	Likes        int64      `json:"likes"`
	Size         int64      `json:"size,omitempty"`
	LastDownload *time.Time `json:"lastDownload,omitempty"`
	CreatedAt    time.Time  `json:"createdAt,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt,omitempty"`
}

// ResourceFilter composes conjunctively: subject equality and tag any-of.
// Search is accepted for interface parity but not implemented; the backing
// store has no full-text search and a production deployment would delegate to
// an external index.
type ResourceFilter struct {
	SubjectID string
	Tags      []string
	Search    string
	Limit     int
}
