package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/methview/internal/aggregate"
	"github.com/inodb/methview/internal/bedmod"
	"github.com/inodb/methview/internal/regions"
	"github.com/inodb/methview/internal/store"
)

func runAggregate(args []string) int {
	fs := flag.NewFlagSet("aggregate", flag.ExitOnError)

	var (
		storePath      string
		gffPath        string
		outputPath     string
		promoterUp     int64
		downstreamDown int64
		chunkSize      int
		workers        int
		verbose        bool
	)

	fs.StringVar(&storePath, "store", "", "DuckDB gene store built by 'methview regions'")
	fs.StringVar(&gffPath, "gff", "", "GFF feature table to derive regions from (alternative to --store)")
	fs.StringVar(&outputPath, "output", "", "Output CSV path (default: stdout)")
	fs.StringVar(&outputPath, "o", "", "Output CSV path (shorthand)")
	fs.Int64Var(&promoterUp, "promoter-up", viper.GetInt64("promoter_up"), "Promoter window upstream of the TSS (bp), used with --gff")
	fs.Int64Var(&downstreamDown, "downstream-down", viper.GetInt64("downstream_down"), "Downstream window past the TES (bp), used with --gff")
	fs.IntVar(&chunkSize, "chunk-size", viper.GetInt("chunk_size"), "Rows per chunk when streaming BED input")
	fs.IntVar(&workers, "workers", viper.GetInt("workers"), "Number of worker goroutines (0 = number of CPUs)")
	fs.BoolVar(&verbose, "verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Aggregate methylation calls over gene regions.

Streams one or more modkit bedMethyl files in bounded chunks, joins each
CpG site against the region index and writes per-region methylation
summaries as CSV. Samples are given as condition=path pairs; the
condition labels the rows from that file.

Usage:
  methview aggregate [options] condition=path [condition=path ...]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  methview aggregate --store genes.duckdb -o summary.csv r0081=r0081_m.bed r0082=r0082_m.bed
  methview aggregate --gff genomic.gff tumor=tumor_m.bed.gz
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	samples := fs.Args()
	if len(samples) == 0 {
		fmt.Fprintf(os.Stderr, "Error: at least one condition=path sample is required\n\n")
		fs.Usage()
		return ExitUsage
	}
	if (storePath == "") == (gffPath == "") {
		fmt.Fprintf(os.Stderr, "Error: exactly one of --store or --gff is required\n\n")
		fs.Usage()
		return ExitUsage
	}

	logger := newLogger(verbose)
	defer logger.Sync()

	anns, code := loadAnnotations(storePath, gffPath, promoterUp, downstreamDown, logger)
	if code != ExitSuccess {
		return code
	}

	index := regions.BuildIndex(anns)
	logger.Info("region index built", zap.Int("genes", len(anns)), zap.Int("regions", index.Len()))

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return ExitError
		}
		defer f.Close()
		out = f
	}

	sw := aggregate.NewSummaryWriter(out)
	if err := sw.WriteHeader(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return ExitError
	}

	agg := aggregate.New(index)
	agg.SetWorkers(workers)
	agg.SetLogger(logger)

	for _, sample := range samples {
		condition, path, ok := strings.Cut(sample, "=")
		if !ok || condition == "" || path == "" {
			fmt.Fprintf(os.Stderr, "Error: sample %q is not of the form condition=path\n", sample)
			return ExitUsage
		}

		r, err := bedmod.NewChunkReader(path, chunkSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening BED file %s: %v\n", path, err)
			return ExitError
		}

		rows, err := agg.Run(r, condition)
		r.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error aggregating %s: %v\n", path, err)
			return ExitError
		}
		logger.Info("sample aggregated",
			zap.String("condition", condition),
			zap.String("path", path),
			zap.Int64("bed_rows", r.Rows()),
			zap.Int("summary_rows", len(rows)))

		if err := sw.WriteAll(rows); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			return ExitError
		}
	}

	if err := sw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

// loadAnnotations fetches annotations from a DuckDB store or derives them
// from a GFF, depending on which flag was given.
func loadAnnotations(storePath, gffPath string, promoterUp, downstreamDown int64, logger *zap.Logger) (map[string]*regions.GeneAnnotation, int) {
	if storePath != "" {
		s, err := store.OpenDuckDB(storePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening gene store: %v\n", err)
			return nil, ExitError
		}
		defer s.Close()

		anns, err := s.All()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading gene store: %v\n", err)
			return nil, ExitError
		}
		logger.Info("annotations loaded", zap.String("store", storePath), zap.Int("genes", len(anns)))
		return anns, ExitSuccess
	}
	return deriveAnnotations(gffPath, promoterUp, downstreamDown, logger)
}
