package auth

import "time"

// Admin represents the administrator account behind the portfolio site.
// There is exactly one privileged role; accounts are provisioned once and
// never deleted in normal operation.
type Admin struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DashboardStats aggregates the counts shown on the admin dashboard.
type DashboardStats struct {
	Projects         int `json:"projects"`
	FeaturedProjects int `json:"featuredProjects"`
	Contacts         int `json:"contacts"`
	NewContacts      int `json:"newContacts"`
}
