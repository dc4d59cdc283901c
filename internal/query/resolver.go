// Package query answers single-gene methylation queries.
package query

import (
	"strings"

	"github.com/inodb/methview/internal/store"
)

// Resolve maps a user query to a stored gene identifier. Strategies are
// tried in order, first match wins:
//  1. exact match
//  2. match after stripping a "gene-" prefix, or as a suffix after "_"
//  3. case-insensitive substring match, or case-insensitive match after
//     prefix stripping
//
// genes must be sorted ascending (every store returns it that way), which
// makes the substring rule deterministic when several identifiers match.
func Resolve(genes []string, query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", &store.NotFoundError{Gene: query}
	}

	for _, k := range genes {
		if k == q {
			return k, nil
		}
	}

	for _, k := range genes {
		if strings.TrimPrefix(k, "gene-") == q || strings.HasSuffix(k, "_"+q) {
			return k, nil
		}
	}

	lower := strings.ToLower(q)
	for _, k := range genes {
		kl := strings.ToLower(k)
		if strings.Contains(kl, lower) || strings.TrimPrefix(kl, "gene-") == lower {
			return k, nil
		}
	}

	return "", &store.NotFoundError{Gene: query}
}

// FilterGenes returns the identifiers containing the query as a
// case-insensitive substring. An empty query returns the input unchanged.
func FilterGenes(genes []string, q string) []string {
	q = strings.TrimSpace(q)
	if q == "" {
		return genes
	}
	lower := strings.ToLower(q)
	var out []string
	for _, g := range genes {
		if strings.Contains(strings.ToLower(g), lower) {
			out = append(out, g)
		}
	}
	return out
}
