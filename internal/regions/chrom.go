package regions

// GRCm39 chromosome naming: GFF seqid (RefSeq accession) <-> BED chrom (chrN).
var chromAccessionToChr = map[string]string{
	"NC_000067.7": "chr1", "NC_000068.8": "chr2", "NC_000069.7": "chr3",
	"NC_000070.7": "chr4", "NC_000071.7": "chr5", "NC_000072.7": "chr6",
	"NC_000073.7": "chr7", "NC_000074.7": "chr8", "NC_000075.7": "chr9",
	"NC_000076.7": "chr10", "NC_000077.7": "chr11", "NC_000078.7": "chr12",
	"NC_000079.7": "chr13", "NC_000080.7": "chr14", "NC_000081.7": "chr15",
	"NC_000082.7": "chr16", "NC_000083.7": "chr17", "NC_000084.7": "chr18",
	"NC_000085.7": "chr19", "NC_000086.8": "chrX", "NC_000087.8": "chrY",
}

var chromChrToAccession = func() map[string]string {
	m := make(map[string]string, len(chromAccessionToChr))
	for acc, chr := range chromAccessionToChr {
		m[chr] = acc
	}
	return m
}()

// ChrName returns the short chrN name for a GFF seqid, or the input
// unchanged when no mapping exists.
func ChrName(chrom string) string {
	if chr, ok := chromAccessionToChr[chrom]; ok {
		return chr
	}
	return chrom
}

// AccessionName returns the RefSeq accession for a chrN name, or the input
// unchanged when no mapping exists.
func AccessionName(chrom string) string {
	if acc, ok := chromChrToAccession[chrom]; ok {
		return acc
	}
	return chrom
}

// SameChrom reports whether two chromosome names refer to the same
// chromosome under either naming scheme.
func SameChrom(a, b string) bool {
	return a == b || ChrName(a) == b || a == ChrName(b)
}
