package repository

import (
	"time"

	"github.com/google/uuid"
)

// Record tracks one temporary file created on behalf of an open
// response, so files orphaned by a crash can be removed on the next start.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	Owner     int       `json:"owner,omitempty"` // pid of the creating process
	CreatedAt time.Time `json:"createdAt"`
}

type Repository interface {
	Save(record *Record) error
	Find(id uuid.UUID) (*Record, error)
	FindAll() ([]*Record, error)
	Delete(id uuid.UUID) error
	Close() error
}
