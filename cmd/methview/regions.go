package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/methview/internal/gff"
	"github.com/inodb/methview/internal/regions"
	"github.com/inodb/methview/internal/store"
)

func runRegions(args []string) int {
	fs := flag.NewFlagSet("regions", flag.ExitOnError)

	var (
		gffPath        string
		outputPath     string
		promoterUp     int64
		downstreamDown int64
		verbose        bool
	)

	fs.StringVar(&gffPath, "gff", "", "Input GFF feature table")
	fs.StringVar(&outputPath, "output", "", "Output DuckDB gene store path")
	fs.StringVar(&outputPath, "o", "", "Output DuckDB gene store path (shorthand)")
	fs.Int64Var(&promoterUp, "promoter-up", viper.GetInt64("promoter_up"), "Promoter window upstream of the TSS (bp)")
	fs.Int64Var(&downstreamDown, "downstream-down", viper.GetInt64("downstream_down"), "Downstream window past the TES (bp)")
	fs.BoolVar(&verbose, "verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Build the gene region store from a GFF feature table.

Derives gene body, exon, intron, CDS, promoter and downstream regions for
every gene and writes them to a keyed DuckDB store for on-demand lookup.

Usage:
  methview regions [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  methview regions --gff genomic.gff -o genes.duckdb
  methview regions --gff genomic.gff -o genes.duckdb --promoter-up 1500
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if gffPath == "" || outputPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --gff and --output are required\n\n")
		fs.Usage()
		return ExitUsage
	}

	logger := newLogger(verbose)
	defer logger.Sync()

	anns, code := deriveAnnotations(gffPath, promoterUp, downstreamDown, logger)
	if code != ExitSuccess {
		return code
	}

	s, err := store.OpenDuckDB(outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening gene store: %v\n", err)
		return ExitError
	}
	defer s.Close()

	if err := s.Build(anns); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing gene store: %v\n", err)
		return ExitError
	}

	logger.Info("gene store written", zap.String("path", outputPath), zap.Int("genes", len(anns)))
	return ExitSuccess
}

// deriveAnnotations loads a GFF and derives all gene annotations.
func deriveAnnotations(gffPath string, promoterUp, downstreamDown int64, logger *zap.Logger) (map[string]*regions.GeneAnnotation, int) {
	table, err := gff.Load(gffPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading GFF: %v\n", err)
		return nil, ExitError
	}
	if table.SkippedLines() > 0 {
		logger.Warn("malformed GFF rows skipped", zap.Int("rows", table.SkippedLines()))
	}

	d := &regions.Deriver{PromoterUp: promoterUp, DownstreamDown: downstreamDown}
	anns := d.DeriveAll(table)
	logger.Info("gene regions derived",
		zap.Int("genes", len(anns)),
		zap.Int("chromosomes", len(table.Chromosomes())))
	return anns, ExitSuccess
}
