// Package regions derives and indexes per-gene genomic sub-regions.
package regions

import (
	"sort"

	"github.com/inodb/methview/internal/interval"
)

// Kind identifies a structural sub-region of a gene.
type Kind string

const (
	KindGene       Kind = "gene"
	KindExon       Kind = "exon"
	KindIntron     Kind = "intron"
	KindCDS        Kind = "cds"
	KindPromoter   Kind = "promoter"
	KindDownstream Kind = "downstream"
)

// Kinds lists every region kind in derivation order.
var Kinds = []Kind{KindGene, KindExon, KindIntron, KindCDS, KindPromoter, KindDownstream}

// plotKinds is the fixed kind order used when reporting regions for
// plotting. The gene body itself is not reported.
var plotKinds = []Kind{KindPromoter, KindExon, KindIntron, KindCDS, KindDownstream}

// Region is an interval tagged with its kind.
type Region struct {
	Kind  Kind  `json:"region_type"`
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// GeneAnnotation holds the derived region sets for one gene.
// Immutable after derivation.
type GeneAnnotation struct {
	GeneID    string                       `json:"gene_id"`
	Chrom     string                       `json:"chrom"`
	Strand    string                       `json:"strand"`
	Regions   map[Kind][]interval.Interval `json:"regions"`
	ExonCount int                          `json:"exon_count"`
	CDSCount  int                          `json:"cds_count"`
}

// Gene returns the gene-body interval.
func (a *GeneAnnotation) Gene() interval.Interval {
	return a.Regions[KindGene][0]
}

// Promoter returns the promoter window.
func (a *GeneAnnotation) Promoter() interval.Interval {
	return a.Regions[KindPromoter][0]
}

// Downstream returns the downstream window.
func (a *GeneAnnotation) Downstream() interval.Interval {
	return a.Regions[KindDownstream][0]
}

// Span returns the full coordinate span covered by the promoter, gene body
// and downstream window.
func (a *GeneAnnotation) Span() interval.Interval {
	gene, prom, down := a.Gene(), a.Promoter(), a.Downstream()
	span := interval.Interval{Start: gene.Start, End: gene.End}
	for _, iv := range []interval.Interval{prom, down} {
		if iv.Start < span.Start {
			span.Start = iv.Start
		}
		if iv.End > span.End {
			span.End = iv.End
		}
	}
	return span
}

// PlotRegions returns all non-empty regions except the gene body, in the
// fixed kind order promoter, exon, intron, cds, downstream, then sorted by
// (start, end).
func (a *GeneAnnotation) PlotRegions() []Region {
	var out []Region
	for _, kind := range plotKinds {
		for _, iv := range a.Regions[kind] {
			out = append(out, Region{Kind: kind, Start: iv.Start, End: iv.End})
		}
	}
	sortRegions(out)
	return out
}

func sortRegions(rs []Region) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Start != rs[j].Start {
			return rs[i].Start < rs[j].Start
		}
		return rs[i].End < rs[j].End
	})
}
