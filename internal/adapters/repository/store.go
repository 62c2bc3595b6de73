// Package repository persists labeled reference actions.
package repository

import (
	"context"
	"time"

	"github.com/okian/motion/internal/domain/model"
)

// Record is one stored reference action.
type Record struct {
	ID        string
	Label     model.Label
	Action    model.Action
	CreatedAt time.Time
}

// Entry is one action to persist under its label.
type Entry struct {
	Label  model.Label
	Action model.Action
}

// Store provides read/write access to the persisted reference set.
type Store interface {
	// Append stores every entry atomically and returns their ids in order.
	Append(ctx context.Context, entries ...Entry) ([]string, error)

	// All returns every record in insertion order.
	All(ctx context.Context) ([]Record, error)

	// Count returns the number of records per label.
	Count(ctx context.Context) (map[model.Label]int, error)

	Close() error
}
