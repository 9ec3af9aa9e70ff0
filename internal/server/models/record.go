package models

import (
	"encoding/json"
	"time"
)

// Generic JSON collections exposed through the records API. Entities the
// web client treats as plain documents (no server-side behavior).
const (
	CollectionCustomers = "customers"
	CollectionProjects  = "projects"
	CollectionLeads     = "leads"
)

// RecordCollections lists the collections the records API accepts.
var RecordCollections = []string{
	CollectionCustomers,
	CollectionProjects,
	CollectionLeads,
}

// Record is a schemaless document stored as JSONB in a named collection.
type Record struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	Data       json.RawMessage `json:"data"`
	CreatedBy  string          `json:"createdBy"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// ValidRecordCollection reports whether name is a known record collection.
func ValidRecordCollection(name string) bool {
	for _, c := range RecordCollections {
		if c == name {
			return true
		}
	}
	return false
}
