package regions

import (
	"sync"

	"github.com/inodb/methview/internal/gff"
	"github.com/inodb/methview/internal/interval"
)

// Default widths of the promoter and downstream windows in bases.
const (
	DefaultPromoterUp     = 2000
	DefaultDownstreamDown = 2000
)

// Deriver computes per-gene region sets from a feature table.
type Deriver struct {
	PromoterUp     int64
	DownstreamDown int64
}

// NewDeriver creates a deriver with the default window widths.
func NewDeriver() *Deriver {
	return &Deriver{
		PromoterUp:     DefaultPromoterUp,
		DownstreamDown: DefaultDownstreamDown,
	}
}

// DeriveGene computes the region set for a single gene against the feature
// table rows on its chromosome.
func (d *Deriver) DeriveGene(g gff.GeneRecord, table *gff.Table) *GeneAnnotation {
	gene := interval.Interval{Start: g.Start, End: g.End}

	exons := contained(table.Intervals(g.Chrom, "exon"), gene)
	cds := contained(table.Intervals(g.Chrom, "cds"), gene)

	// intron = gene body minus the union of exon intervals; a gene without
	// exon rows has no introns, not one spanning the whole body
	var introns []interval.Interval
	if len(exons) > 0 {
		introns = interval.Subtract(gene, exons)
	}

	var promoter, downstream interval.Interval
	if g.Strand == "+" {
		tss, tes := gene.Start, gene.End
		promoter = interval.Interval{Start: clamp0(tss - d.PromoterUp), End: tss}
		downstream = interval.Interval{Start: tes, End: tes + d.DownstreamDown}
	} else {
		tss, tes := gene.End, gene.Start
		promoter = interval.Interval{Start: tss, End: tss + d.PromoterUp}
		downstream = interval.Interval{Start: clamp0(tes - d.DownstreamDown), End: tes}
	}

	return &GeneAnnotation{
		GeneID: g.ID,
		Chrom:  g.Chrom,
		Strand: g.Strand,
		Regions: map[Kind][]interval.Interval{
			KindGene:       {gene},
			KindExon:       exons,
			KindIntron:     introns,
			KindCDS:        cds,
			KindPromoter:   {promoter},
			KindDownstream: {downstream},
		},
		ExonCount: len(exons),
		CDSCount:  len(cds),
	}
}

// DeriveAll computes annotations for every gene in the table, one goroutine
// per chromosome. Returns annotations keyed by gene identifier.
func (d *Deriver) DeriveAll(table *gff.Table) map[string]*GeneAnnotation {
	genesByChrom := make(map[string][]gff.GeneRecord)
	for _, g := range table.Genes {
		genesByChrom[g.Chrom] = append(genesByChrom[g.Chrom], g)
	}

	out := make(map[string]*GeneAnnotation, len(table.Genes))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, chrom := range table.Chromosomes() {
		genes := genesByChrom[chrom]
		wg.Add(1)
		go func() {
			defer wg.Done()
			anns := make([]*GeneAnnotation, 0, len(genes))
			for _, g := range genes {
				anns = append(anns, d.DeriveGene(g, table))
			}
			mu.Lock()
			for _, a := range anns {
				out[a.GeneID] = a
			}
			mu.Unlock()
		}()
	}

	wg.Wait()
	return out
}

// contained returns the feature intervals fully inside the gene interval,
// sorted by (start, end).
func contained(feats []interval.Interval, gene interval.Interval) []interval.Interval {
	var out []interval.Interval
	for _, iv := range feats {
		if iv.Start >= gene.Start && iv.End <= gene.End {
			out = append(out, iv)
		}
	}
	interval.Sort(out)
	return out
}

func clamp0(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
