package models

// AffiliationStatus is the membership lifecycle of a character in a world.
type AffiliationStatus string

const (
	AffiliationPending AffiliationStatus = "Pending"
	AffiliationActive  AffiliationStatus = "Active"
)

// Affiliation links one character to one world. The owner is the character's
// user and never changes; only the world host moves status Pending -> Active.
type Affiliation struct {
	ID          string            `json:"id"`
	WorldID     string            `json:"world_id"`
	CharacterID string            `json:"character_id"`
	OwnerID     string            `json:"owner_id"`
	Status      AffiliationStatus `json:"status"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}
