package store

import (
	"sort"

	"github.com/inodb/methview/internal/regions"
)

// Memory is a fully resident gene store.
type Memory struct {
	anns  map[string]*regions.GeneAnnotation
	genes []string
}

// NewMemory creates a memory store over derived annotations.
func NewMemory(anns map[string]*regions.GeneAnnotation) *Memory {
	genes := make([]string, 0, len(anns))
	for id := range anns {
		genes = append(genes, id)
	}
	sort.Strings(genes)
	return &Memory{anns: anns, genes: genes}
}

// Get returns the annotation for an exact gene identifier.
func (m *Memory) Get(geneID string) (*regions.GeneAnnotation, error) {
	ann, ok := m.anns[geneID]
	if !ok {
		return nil, &NotFoundError{Gene: geneID}
	}
	return ann, nil
}

// ListGenes returns all gene identifiers, sorted ascending.
func (m *Memory) ListGenes() ([]string, error) {
	return m.genes, nil
}

// Close is a no-op for the memory store.
func (m *Memory) Close() error {
	return nil
}
