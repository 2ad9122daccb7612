package models

import "github.com/google/uuid"

// Record is a row of the records table.
type Record struct {
	Versioned
	ID    uuid.UUID `json:"id"`
	Value string    `json:"value"`
}

func (r *Record) GetID() string { return r.ID.String() }
