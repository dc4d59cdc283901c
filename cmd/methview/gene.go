package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/methview/internal/app"
	"github.com/inodb/methview/internal/store"
)

func runGene(args []string) int {
	fs := flag.NewFlagSet("gene", flag.ExitOnError)

	var (
		storePath      string
		gffPath        string
		bedPath        string
		promoterUp     int64
		downstreamDown int64
		verbose        bool
	)

	fs.StringVar(&storePath, "store", "", "DuckDB gene store built by 'methview regions'")
	fs.StringVar(&gffPath, "gff", "", "GFF feature table to derive regions from (alternative to --store)")
	fs.StringVar(&bedPath, "bed", "", "Modkit bedMethyl file with per-site modification calls")
	fs.Int64Var(&promoterUp, "promoter-up", viper.GetInt64("promoter_up"), "Promoter window upstream of the TSS (bp), used with --gff")
	fs.Int64Var(&downstreamDown, "downstream-down", viper.GetInt64("downstream_down"), "Downstream window past the TES (bp), used with --gff")
	fs.BoolVar(&verbose, "verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Query per-site methylation for a single gene.

Resolves the gene name against the annotation store, loads the bedMethyl
dataset and prints the gene's sites and region boundaries as JSON.

Usage:
  methview gene [options] <gene>

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  methview gene --store genes.duckdb --bed r0081_m.bed Xkr4
  methview gene --gff genomic.gff --bed r0081_m.bed.gz gene-Xkr4
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: exactly one gene name is required\n\n")
		fs.Usage()
		return ExitUsage
	}
	geneQuery := fs.Arg(0)

	if bedPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --bed is required\n\n")
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

	var s store.GeneStore
	if storePath != "" {
		ds, err := store.OpenDuckDB(storePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening gene store: %v\n", err)
			return ExitError
		}
		s = ds
	} else {
		anns, code := deriveAnnotations(gffPath, promoterUp, downstreamDown, logger)
		if code != ExitSuccess {
			return code
		}
		s = store.NewMemory(anns)
	}
	defer s.Close()

	a := app.New(s)
	a.SetLogger(logger)

	jobID, err := a.SubmitLoad(bedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dataset: %v\n", err)
		return ExitError
	}

	info, code := waitForJob(a, jobID)
	if code != ExitSuccess {
		return code
	}
	logger.Info("dataset loaded", zap.String("path", bedPath), zap.Int("rows", info.Rows))

	result, err := a.QueryGene(geneQuery)
	if err != nil {
		if store.IsNotFound(err) {
			fmt.Fprintf(os.Stderr, "Error: gene %q not found\n", geneQuery)
			return ExitError
		}
		fmt.Fprintf(os.Stderr, "Error querying gene: %v\n", err)
		return ExitError
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

// waitForJob polls a background load until it settles.
func waitForJob(a *app.App, jobID string) (app.JobInfo, int) {
	for {
		info, err := a.Status(jobID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error checking load status: %v\n", err)
			return app.JobInfo{}, ExitError
		}
		switch info.Status {
		case app.JobReady:
			return info, ExitSuccess
		case app.JobFailed:
			fmt.Fprintf(os.Stderr, "Error loading dataset: %s\n", info.Error)
			return app.JobInfo{}, ExitError
		}
		time.Sleep(50 * time.Millisecond)
	}
}
