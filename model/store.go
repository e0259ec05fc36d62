package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Revision is a stored base-revision snapshot of an entity.
type Revision struct {
	ID         int64           `json:"id"`
	EntityID   string          `json:"entity_id"`
	Kind       Kind            `json:"kind"`
	RevisionID int64           `json:"revision_id"`
	SiteIRI    string          `json:"site_iri"`
	Document   json.RawMessage `json:"document"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Decode returns the stored document.
func (r *Revision) Decode() (EntityDocument, error) {
	return UnmarshalDocument(r.Document, r.SiteIRI)
}

// QueuedUpdate is a built update waiting to be submitted.
// Payload is the wire JSON of the update.
type QueuedUpdate struct {
	ID             int64           `json:"id"`
	RID            uuid.UUID       `json:"rid"`
	EntityID       string          `json:"entity_id"`
	Kind           Kind            `json:"kind"`
	BaseRevisionID int64           `json:"base_revision_id"`
	Payload        json.RawMessage `json:"payload"`
	Metadata       Metadata        `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
