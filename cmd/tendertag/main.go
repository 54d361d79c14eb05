// Package main implements the tendertag CLI: it builds the AI-tagging
// workbook from tender PDFs, or reports rule coverage without writing one.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/tenderworks/tendertag/internal/catalog"
	"github.com/tenderworks/tendertag/internal/common"
	"github.com/tenderworks/tendertag/internal/pipeline"
	"github.com/tenderworks/tendertag/internal/textsource"
)

var (
	rulesPath       string
	templatePath    string
	outPath         string
	pdfPaths        []string
	amendmentPaths  []string
	parallel        bool
	continueOnError bool
	catalogPath     string

	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tendertag",
	Short: "Build AI-tagging workbooks from power-sector tender PDFs",
	Long: `tendertag extracts tender parameters from PDF documents using a
declarative YAML rule set, reconciles values across the base tender and its
corrigenda/addenda, and writes a multi-sheet XLSX report.`,
	Version: version,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rulesPath, "rules", "", "YAML rule file for regex extractors")
	pf.StringArrayVar(&pdfPaths, "pdf", nil, "path to a main tender PDF (repeatable)")
	pf.StringArrayVar(&amendmentPaths, "amendment", nil, "path to a corrigendum/addendum PDF, in precedence order (repeatable)")
	pf.BoolVar(&parallel, "parallel", false, "extract documents concurrently")
	pf.BoolVar(&continueOnError, "continue-on-error", false, "record template resolution failures instead of aborting")
	pf.StringVar(&catalogPath, "catalog", "", "SQLite run-catalog path (default from TENDERTAG_CATALOG)")
	_ = rootCmd.MarkPersistentFlagRequired("rules")
	_ = rootCmd.MarkPersistentFlagRequired("pdf")

	buildCmd.Flags().StringVar(&templatePath, "template", "", "Excel template whose sheet structure is cloned")
	buildCmd.Flags().StringVar(&outPath, "out", "", "output Excel path")
	_ = buildCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(coverageCmd)
}

// buildCmd runs the full pipeline and writes the workbook
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Extract, reconcile, and write the tagging workbook",
	Long: `Extract parameters from the supplied PDFs, reconcile them across the
base tender and amendments, and write the XLSX report.

Examples:
  tendertag build --rules rules.yaml --pdf rfs.pdf --out tagging.xlsx
  tendertag build --rules rules.yaml --pdf rfs.pdf \
    --amendment corrigendum1.pdf --amendment corrigendum2.pdf \
    --template lakhwar_template.xlsx --out tagging.xlsx`,
	RunE: runBuild,
}

// coverageCmd runs extraction only and prints unfilled parameters
var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Report rule-set parameters that matched nothing",
	Long: `Run extraction and reconciliation without writing a workbook, then
print the (section, parameter) keys that produced no record.

Examples:
  tendertag coverage --rules rules.yaml --pdf rfs.pdf --amendment corr1.pdf`,
	RunE: runCoverage,
}

func runBuild(cmd *cobra.Command, _ []string) error {
	summary, err := run(cmd.Context(), outPath)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d records, %d bid-info fields, %d unfilled parameters\n",
		outPath, summary.Records, len(summary.BidInfo), len(summary.Coverage))
	if summary.Failures > 0 {
		fmt.Printf("skipped %d records due to template resolution failures\n", summary.Failures)
	}
	return nil
}

func runCoverage(cmd *cobra.Command, _ []string) error {
	summary, err := run(cmd.Context(), "")
	if err != nil {
		return err
	}
	if len(summary.Coverage) == 0 {
		fmt.Println("all parameters covered")
		return nil
	}
	for _, k := range summary.Coverage {
		fmt.Printf("unfilled: %s / %s\n", k.Section, k.Parameter)
	}
	return nil
}

func run(ctx context.Context, out string) (pipeline.Summary, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := common.LoadConfig()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	path := catalogPath
	if path == "" {
		path = cfg.Catalog.Path
	}
	var cat *catalog.Catalog
	if path != "" {
		var err error
		cat, err = catalog.Open(path, logger)
		if err != nil {
			return pipeline.Summary{}, err
		}
		defer func() { _ = cat.Close() }()
	}

	source := textsource.NewPDFSource(cfg.PDF.FallbackPdftotext, logger)
	p := pipeline.New(source, cat, logger, pipeline.Options{
		Parallel:        parallel || cfg.Extract.Parallel,
		ContinueOnError: continueOnError || cfg.Extract.ContinueOnError,
	})
	return p.Run(ctx, pipeline.Request{
		RulesPath:    rulesPath,
		TemplatePath: templatePath,
		OutputPath:   out,
		Primaries:    pdfPaths,
		Amendments:   amendmentPaths,
	})
}
