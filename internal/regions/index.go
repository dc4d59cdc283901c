package regions

import "sort"

// Tag identifies one region instance within the index.
type Tag struct {
	GeneID   string
	Kind     Kind
	RegionID int // 1-based instance number within (gene, kind)
}

// entry is one indexed region interval.
type entry struct {
	start int64
	end   int64
	tag   Tag
}

// Index answers overlap queries against every derived region across all
// genes. Per chromosome it keeps regions sorted by start with a prefix-max
// array of ends, giving O(log n + k) range queries. Built once, never
// modified afterwards.
type Index struct {
	byChrom map[string]*chromIndex
	size    int
}

type chromIndex struct {
	entries []entry
	maxEnd  []int64 // maxEnd[i] = max(end) for entries[:i+1]
}

// BuildIndex flattens the annotations into a queryable index. Genes are
// visited in sorted identifier order so the index layout is deterministic.
func BuildIndex(anns map[string]*GeneAnnotation) *Index {
	ids := make([]string, 0, len(anns))
	for id := range anns {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	buckets := make(map[string][]entry)
	size := 0
	for _, id := range ids {
		a := anns[id]
		for _, kind := range Kinds {
			for i, iv := range a.Regions[kind] {
				if iv.Len() <= 0 {
					continue
				}
				buckets[a.Chrom] = append(buckets[a.Chrom], entry{
					start: iv.Start,
					end:   iv.End,
					tag:   Tag{GeneID: id, Kind: kind, RegionID: i + 1},
				})
				size++
			}
		}
	}

	idx := &Index{byChrom: make(map[string]*chromIndex, len(buckets)), size: size}
	for chrom, entries := range buckets {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].start < entries[j].start
		})
		maxEnd := make([]int64, len(entries))
		maxEnd[0] = entries[0].end
		for i := 1; i < len(entries); i++ {
			maxEnd[i] = entries[i].end
			if maxEnd[i-1] > maxEnd[i] {
				maxEnd[i] = maxEnd[i-1]
			}
		}
		idx.byChrom[chrom] = &chromIndex{entries: entries, maxEnd: maxEnd}
	}
	return idx
}

// Len returns the number of indexed region instances.
func (idx *Index) Len() int {
	return idx.size
}

// Find returns the tags of every region overlapping [start, end) on the
// given chromosome. The chromosome name is matched under both the native
// and the translated naming scheme.
func (idx *Index) Find(chrom string, start, end int64) []Tag {
	ci := idx.bucket(chrom)
	if ci == nil || start >= end {
		return nil
	}

	// Candidates have entry.start < end.
	hi := sort.Search(len(ci.entries), func(i int) bool {
		return ci.entries[i].start >= end
	})

	// Scanning downward, maxEnd[i] bounds the end of every remaining
	// candidate, so the first prefix whose max end reaches no further than
	// start ends the scan.
	var tags []Tag
	for i := hi - 1; i >= 0; i-- {
		if ci.maxEnd[i] <= start {
			break
		}
		if ci.entries[i].end > start {
			tags = append(tags, ci.entries[i].tag)
		}
	}
	return tags
}

func (idx *Index) bucket(chrom string) *chromIndex {
	if ci, ok := idx.byChrom[chrom]; ok {
		return ci
	}
	if ci, ok := idx.byChrom[AccessionName(chrom)]; ok {
		return ci
	}
	if ci, ok := idx.byChrom[ChrName(chrom)]; ok {
		return ci
	}
	return nil
}
