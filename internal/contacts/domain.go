package contacts

import "time"

// Contact statuses walk the life of a submission through the admin inbox.
const (
	StatusNew      = "new"
	StatusRead     = "read"
	StatusReplied  = "replied"
	StatusArchived = "archived"
)

// Contact represents a message submitted through the public contact form.
type Contact struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StatusCount pairs a status with its number of contacts.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Stats aggregates inbox counts.
type Stats struct {
	Total    int           `json:"total"`
	Statuses []StatusCount `json:"statuses"`
}

// ListRequest narrows and pages the admin listing.
type ListRequest struct {
	Page   int
	Limit  int
	Status string
}

// ValidStatus reports whether the status is one of the known values.
func ValidStatus(status string) bool {
	switch status {
	case StatusNew, StatusRead, StatusReplied, StatusArchived:
		return true
	}
	return false
}
