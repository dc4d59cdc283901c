// Package aggregate joins modification records against indexed gene regions
// and accumulates per-region methylation sums.
package aggregate

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/methview/internal/bedmod"
	"github.com/inodb/methview/internal/regions"
)

// Key identifies one accumulator: a region instance of a gene.
type Key struct {
	Gene     string
	Region   regions.Kind
	RegionID int
}

// sums is a partial accumulator produced from one chunk.
type sums struct {
	mod float64
	cov float64
}

// SummaryRow is one output row of the bulk aggregation.
type SummaryRow struct {
	Gene        string
	Region      regions.Kind
	RegionID    int
	Condition   string
	Methylation float64 // mod/coverage; NaN when coverage is 0
	MethReads   float64
	Coverage    float64
}

// Aggregator streams modification chunks against a region index.
// Peak memory is bounded by the chunk size plus the accumulator table,
// which grows with distinct region instances, not with record count.
type Aggregator struct {
	index   *regions.Index
	workers int
	logger  *zap.Logger
}

// New creates an aggregator over a built region index.
func New(index *regions.Index) *Aggregator {
	return &Aggregator{index: index, logger: zap.NewNop()}
}

// SetWorkers sets the number of chunk workers. 0 selects runtime.NumCPU().
func (a *Aggregator) SetWorkers(n int) {
	a.workers = n
}

// SetLogger sets the logger for progress messages.
func (a *Aggregator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Run consumes the reader to exhaustion and returns one summary row per
// touched (gene, region kind, region instance), tagged with the condition
// label. Chunks are joined in parallel; each worker builds a partial
// accumulator that a single collector merges, so final sums are exact and
// independent of chunk boundaries.
func (a *Aggregator) Run(r *bedmod.ChunkReader, condition string) ([]SummaryRow, error) {
	workers := a.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	chunks := make(chan []bedmod.Record, workers)
	partials := make(chan map[Key]sums, workers)

	var readErr error
	go func() {
		defer close(chunks)
		for {
			chunk, err := r.Next()
			if err != nil {
				readErr = fmt.Errorf("read modification chunk: %w", err)
				return
			}
			if chunk == nil {
				return
			}
			chunks <- chunk
		}
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for chunk := range chunks {
				partials <- a.joinChunk(chunk)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(partials)
	}()

	acc := make(map[Key]sums)
	for p := range partials {
		for k, s := range p {
			cur := acc[k]
			cur.mod += s.mod
			cur.cov += s.cov
			acc[k] = cur
		}
	}

	if readErr != nil {
		return nil, readErr
	}

	a.logger.Info("aggregation complete",
		zap.String("condition", condition),
		zap.Int64("rows", r.Rows()),
		zap.Int("region_instances", len(acc)))

	return finalize(acc, condition), nil
}

// joinChunk matches every record in the chunk against the region index and
// sums modified and total counts per region instance.
func (a *Aggregator) joinChunk(chunk []bedmod.Record) map[Key]sums {
	part := make(map[Key]sums)
	for _, rec := range chunk {
		for _, tag := range a.index.Find(rec.Chrom, rec.Start, rec.End) {
			k := Key{Gene: tag.GeneID, Region: tag.Kind, RegionID: tag.RegionID}
			cur := part[k]
			cur.mod += rec.Mod
			cur.cov += rec.Total
			part[k] = cur
		}
	}
	return part
}

// finalize emits ratio rows in deterministic (gene, kind, region id) order.
func finalize(acc map[Key]sums, condition string) []SummaryRow {
	kindOrder := make(map[regions.Kind]int, len(regions.Kinds))
	for i, k := range regions.Kinds {
		kindOrder[k] = i
	}

	keys := make([]Key, 0, len(acc))
	for k := range acc {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Gene != keys[j].Gene {
			return keys[i].Gene < keys[j].Gene
		}
		if keys[i].Region != keys[j].Region {
			return kindOrder[keys[i].Region] < kindOrder[keys[j].Region]
		}
		return keys[i].RegionID < keys[j].RegionID
	})

	rows := make([]SummaryRow, 0, len(keys))
	for _, k := range keys {
		s := acc[k]
		meth := math.NaN()
		if s.cov > 0 {
			meth = s.mod / s.cov
		}
		rows = append(rows, SummaryRow{
			Gene:        k.Gene,
			Region:      k.Region,
			RegionID:    k.RegionID,
			Condition:   condition,
			Methylation: meth,
			MethReads:   s.mod,
			Coverage:    s.cov,
		})
	}
	return rows
}
