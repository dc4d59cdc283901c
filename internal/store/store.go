// Package store provides keyed persistence for derived gene annotations.
package store

import (
	"errors"
	"fmt"

	"github.com/inodb/methview/internal/regions"
)

// GeneStore is a read-only keyed view over derived gene annotations.
// Backends may hold everything resident (Memory) or fetch single entries on
// demand (DuckDB); either way the store is built once and never mutated.
type GeneStore interface {
	// Get returns the annotation for an exact gene identifier.
	// Returns a *NotFoundError when the identifier is unknown.
	Get(geneID string) (*regions.GeneAnnotation, error)

	// ListGenes returns every stored gene identifier, sorted ascending.
	ListGenes() ([]string, error)

	Close() error
}

// NotFoundError reports a gene identifier that resolves to nothing.
type NotFoundError struct {
	Gene string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("gene not found: %s", e.Gene)
}

// IsNotFound reports whether err is a gene NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
