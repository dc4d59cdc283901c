package gff

import (
	"github.com/inodb/methview/internal/interval"
)

// GeneRecord holds the fields of a gene-typed feature row needed for
// region derivation.
type GeneRecord struct {
	ID     string
	Chrom  string
	Start  int64
	End    int64
	Strand string
}

// Table holds the parsed feature table in the shape the region deriver
// consumes: the ordered gene rows, plus exon and CDS intervals grouped by
// chromosome. Built once per GFF file and read-only afterwards.
type Table struct {
	Genes   []GeneRecord
	skipped int

	// chrom -> feature type -> intervals
	feats map[string]map[string][]interval.Interval
}

// Feature types retained for region derivation.
var derivedTypes = map[string]bool{
	"exon": true,
	"cds":  true,
}

// Load reads a GFF file into a Table. Malformed rows are skipped; the error
// is non-nil only when the file itself cannot be opened or read.
func Load(path string) (*Table, error) {
	p, err := NewParser(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	t := &Table{feats: make(map[string]map[string][]interval.Interval)}
	for {
		feat, err := p.Next()
		if err != nil {
			return nil, err
		}
		if feat == nil {
			break
		}
		t.add(feat)
	}
	t.skipped = p.SkippedLines()
	return t, nil
}

func (t *Table) add(feat *Feature) {
	switch {
	case feat.Type == "gene":
		t.Genes = append(t.Genes, GeneRecord{
			ID:     feat.GeneID(),
			Chrom:  feat.Chrom,
			Start:  feat.Start,
			End:    feat.End,
			Strand: feat.Strand,
		})
	case derivedTypes[feat.Type]:
		byType, ok := t.feats[feat.Chrom]
		if !ok {
			byType = make(map[string][]interval.Interval)
			t.feats[feat.Chrom] = byType
		}
		byType[feat.Type] = append(byType[feat.Type], interval.Interval{Start: feat.Start, End: feat.End})
	}
}

// Intervals returns the intervals of the given feature type on a chromosome.
func (t *Table) Intervals(chrom, featureType string) []interval.Interval {
	return t.feats[chrom][featureType]
}

// Chromosomes returns every chromosome that carries at least one gene,
// in first-seen order.
func (t *Table) Chromosomes() []string {
	seen := make(map[string]bool)
	var chroms []string
	for _, g := range t.Genes {
		if !seen[g.Chrom] {
			seen[g.Chrom] = true
			chroms = append(chroms, g.Chrom)
		}
	}
	return chroms
}

// SkippedLines returns the number of malformed rows dropped during Load.
func (t *Table) SkippedLines() int {
	return t.skipped
}
