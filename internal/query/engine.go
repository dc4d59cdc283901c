package query

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/inodb/methview/internal/bedmod"
	"github.com/inodb/methview/internal/regions"
	"github.com/inodb/methview/internal/store"
)

// Site is one observed position inside a gene span.
// MethylationRatio is a 0-100 percentage; nil when the site has no coverage.
type Site struct {
	Position         int64    `json:"position"`
	MethylationRatio *float64 `json:"methylation_ratio"`
	Coverage         int64    `json:"coverage"`
}

// Result is the plotting payload for one gene.
type Result struct {
	Sites     []Site           `json:"sites"`
	Regions   []regions.Region `json:"regions"`
	Gene      string           `json:"gene"`
	Chrom     string           `json:"chrom"`
	Strand    string           `json:"strand"`
	SpanStart int64            `json:"span_start"`
	SpanEnd   int64            `json:"span_end"`
	ExonCount int              `json:"exon_count"`
	CDSCount  int              `json:"cds_count"`
}

// Engine answers single-gene queries against a gene store and a resident
// modification table.
type Engine struct {
	store  store.GeneStore
	logger *zap.Logger
}

// NewEngine creates a query engine over the given gene store.
func NewEngine(s store.GeneStore) *Engine {
	return &Engine{store: s, logger: zap.NewNop()}
}

// SetLogger sets the logger for query progress messages.
func (e *Engine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Gene resolves the query to a stored gene, filters the table to the gene's
// span and returns the plotting payload.
func (e *Engine) Gene(geneQuery string, table *bedmod.Table) (*Result, error) {
	genes, err := e.store.ListGenes()
	if err != nil {
		return nil, fmt.Errorf("list genes: %w", err)
	}

	canonical, err := Resolve(genes, geneQuery)
	if err != nil {
		return nil, err
	}

	ann, err := e.store.Get(canonical)
	if err != nil {
		return nil, err
	}

	result := Build(ann, table)

	e.logger.Info("gene query",
		zap.String("query", geneQuery),
		zap.String("gene", canonical),
		zap.Int("sites", len(result.Sites)))

	return result, nil
}

// Build computes the plotting payload for an already-fetched annotation.
func Build(ann *regions.GeneAnnotation, table *bedmod.Table) *Result {
	span := ann.Span()

	var sites []Site
	for _, rec := range table.Records {
		if !regions.SameChrom(rec.Chrom, ann.Chrom) {
			continue
		}
		if rec.End <= span.Start || rec.Start >= span.End {
			continue
		}
		site := Site{Position: rec.Start, Coverage: int64(rec.Total)}
		if rec.Total > 0 {
			ratio := 100.0 * rec.Mod / rec.Total
			site.MethylationRatio = &ratio
		}
		sites = append(sites, site)
	}

	sort.SliceStable(sites, func(i, j int) bool {
		return sites[i].Position < sites[j].Position
	})

	return &Result{
		Sites:     sites,
		Regions:   ann.PlotRegions(),
		Gene:      ann.GeneID,
		Chrom:     ann.Chrom,
		Strand:    ann.Strand,
		SpanStart: span.Start,
		SpanEnd:   span.End,
		ExonCount: ann.ExonCount,
		CDSCount:  ann.CDSCount,
	}
}
