// Package store defines the seams to the persistence layer.
// The pipeline only needs create/find with ordinary validation-error
// reporting, the real storage lives outside of this repository.
package store

import (
	"context"

	"github.com/forgeport/forgeport/internal/pkg/model"
)

// Store is the persistence layer of the destination tenant.
type Store interface {
	// Create validates and saves the object including its children.
	// A validation failure is returned as an ordinary error.
	Create(ctx context.Context, object *model.Object) error
	// Find returns the first object of the kind with all the given
	// attribute values, or nil if there is no match.
	Find(ctx context.Context, kind string, match map[string]any) (*model.Object, error)
}

// FailureSink records import failures. It is append-only and must
// tolerate concurrent appends, the restorer never reads failures back.
type FailureSink interface {
	Append(failure *model.Failure)
}
