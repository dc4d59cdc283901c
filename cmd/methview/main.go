// Package main provides the methview command-line tool.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("methview version %s (%s) built %s\n", version, commit, date)
		return ExitSuccess
	}

	initConfig()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}

	switch args[0] {
	case "regions":
		return runRegions(args[1:])
	case "aggregate":
		return runAggregate(args[1:])
	case "gene":
		return runGene(args[1:])
	case "config":
		return runConfig(args[1:])
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printUsage()
		return ExitUsage
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `methview - gene-region methylation annotation

Usage:
  methview [options] <command> [arguments]

Commands:
  regions     Build the gene region store from a GFF feature table
  aggregate   Aggregate per-region methylation across whole BED datasets
  gene        Report per-site methylation and region boundaries for one gene
  config      Manage methview configuration
  help        Show this help message

Global Options:
  --version   Show version information

Examples:
  # Build the gene store once from the reference annotation
  methview regions --gff genomic.gff -o genes.duckdb

  # Whole-dataset per-region summary for two samples
  methview aggregate --store genes.duckdb -o summary.csv r0081=r0081_m.bed r0082=r0082_m.bed

  # Per-site plot payload for one gene
  methview gene --store genes.duckdb --bed r0081_m.bed Xkr4

For more information on a command, use:
  methview <command> --help
`)
}

// initConfig loads defaults and the optional ~/.methview.yaml config file.
func initConfig() {
	viper.SetDefault("promoter_up", 2000)
	viper.SetDefault("downstream_down", 2000)
	viper.SetDefault("chunk_size", 500000)
	viper.SetDefault("workers", 0)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	viper.SetConfigFile(filepath.Join(home, ".methview.yaml"))
	_ = viper.ReadInConfig() // missing config file is fine
}

// newLogger builds the CLI logger writing to stderr.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
