package models

import "time"

// ActivityStatus is the publication lifecycle of a timeline entry.
type ActivityStatus string

const (
	ActivityPublished       ActivityStatus = "Published"
	ActivityPendingMultiSig ActivityStatus = "PendingMultiSig"
	ActivityRedacted        ActivityStatus = "Redacted"
	ActivityArchivedPending ActivityStatus = "ArchivedPending"
)

// TimeLayout is the fixed-width UTC timestamp format used for CreatedAt and
// ExpiresAt. Fixed-width nanoseconds keep lexicographic order equal to
// chronological order, which the timeline sort key relies on.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t in TimeLayout, normalized to UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Activity is a timeline entry authored through one affiliation, optionally
// co-signed by others. RequiredSignatures always contains the authoring
// affiliation plus every co-creator; Signatures starts with the author and
// only ever grows, staying a subset of RequiredSignatures.
type Activity struct {
	ID                 string         `json:"id"`
	AffiliationID      string         `json:"affiliation_id"`
	WorldID            string         `json:"world_id"`
	OwnerID            string         `json:"owner_id"`
	Content            string         `json:"content"`
	Status             ActivityStatus `json:"status"`
	CreatedAt          string         `json:"created_at"`
	ExpiresAt          string         `json:"expires_at,omitempty"`
	CoCreatorIDs       []string       `json:"co_creator_ids"`
	RequiredSignatures []string       `json:"required_signatures"`
	Signatures         []string       `json:"signatures"`
}

// AllSigned reports whether every required affiliation has signed.
func (a *Activity) AllSigned() bool {
	return containsAll(a.Signatures, a.RequiredSignatures)
}

// HasSigned reports whether the given affiliation already signed.
func (a *Activity) HasSigned(affiliationID string) bool {
	return contains(a.Signatures, affiliationID)
}

// RequiresSignature reports whether the given affiliation is a required signer.
func (a *Activity) RequiresSignature(affiliationID string) bool {
	return contains(a.RequiredSignatures, affiliationID)
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func containsAll(list, required []string) bool {
	for _, r := range required {
		if !contains(list, r) {
			return false
		}
	}
	return true
}
