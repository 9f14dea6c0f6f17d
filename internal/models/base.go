package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is the key and timestamps every table shares. Mongo documents carry
// the same fields under their own names.
type Record struct {
	ID        uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EnsureID keys the record unless the caller already chose an ID.
func (r *Record) EnsureID() uuid.UUID {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return r.ID
}

func (r *Record) BeforeCreate(*gorm.DB) error {
	r.EnsureID()
	return nil
}
