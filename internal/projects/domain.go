package projects

import "time"

// Project represents a portfolio entry with an optional uploaded image.
// Invariant, owned by this module: when ImageURL is set it must resolve to a
// stored asset; at most one stored asset is referenced at a time.
type Project struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	ShortDescription string    `json:"shortDescription,omitempty"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	LiveURL          string    `json:"liveUrl,omitempty"`
	GithubURL        string    `json:"githubUrl,omitempty"`
	Tags             []string  `json:"tags"`
	Technologies     []string  `json:"technologies"`
	Featured         bool      `json:"featured"`
	Order            int       `json:"order"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Stats aggregates counts over the whole catalogue.
type Stats struct {
	Total     int `json:"total"`
	Featured  int `json:"featured"`
	TotalTags int `json:"totalTags"`
}

// ListRequest narrows and pages the public listing.
type ListRequest struct {
	Page     int
	Limit    int
	Featured *bool
	Tag      string
}

// Upload carries the raw bytes of a submitted image.
type Upload struct {
	Filename string
	Content  []byte
}

// CreateInput holds the textual fields for a new project.
type CreateInput struct {
	Title            string
	Description      string
	ShortDescription string
	LiveURL          string
	GithubURL        string
	Tags             []string
	Technologies     []string
	Featured         bool
	Order            int
}

// UpdateInput holds a partial update; nil fields keep their current value.
// Tag and technology lists, when present, fully replace the prior set.
type UpdateInput struct {
	Title            *string
	Description      *string
	ShortDescription *string
	LiveURL          *string
	GithubURL        *string
	Tags             []string
	Technologies     []string
	Featured         *bool
	Order            *int
}
