package models

// World is a shared setting hosted by one user. Membership is granted through
// affiliations approved by the host.
type World struct {
	ID          string `json:"id"`
	HostID      string `json:"host_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
