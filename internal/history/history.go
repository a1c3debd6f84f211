// Package history persists answered questions so charts can be listed and
// replayed later.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/chartloom-cli/internal/chart"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("history entry not found")

// Entry is one recorded suggestion.
type Entry struct {
	ID        uuid.UUID       `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Source    string          `json:"source"`
	Question  string          `json:"question"`
	File      string          `json:"file,omitempty"`
	Spec      chart.ChartSpec `json:"spec"`
}

// Store persists entries.
type Store interface {
	Save(ctx context.Context, e *Entry) error
	Get(ctx context.Context, id uuid.UUID) (*Entry, error)
	// List returns the newest entries first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Entry, error)
}

// NewEntry fills in a fresh id and timestamp.
func NewEntry(source, question, file string, spec chart.ChartSpec) *Entry {
	return &Entry{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
		Question:  question,
		File:      file,
		Spec:      spec,
	}
}

func prepare(e *Entry) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
}
