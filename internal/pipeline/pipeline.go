// Package pipeline wires text sources, the extraction engine, the
// reconciler, and the report builder into one run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tenderworks/tendertag/constants"
	"github.com/tenderworks/tendertag/internal/amendments"
	"github.com/tenderworks/tendertag/internal/catalog"
	"github.com/tenderworks/tendertag/internal/engine"
	"github.com/tenderworks/tendertag/internal/entity"
	"github.com/tenderworks/tendertag/internal/reconcile"
	"github.com/tenderworks/tendertag/internal/report"
	"github.com/tenderworks/tendertag/internal/rules"
	"github.com/tenderworks/tendertag/internal/textsource"
)

// Options holds behavior flags for a pipeline run.
type Options struct {
	// Parallel extracts documents concurrently. Results are still joined in
	// declared document order before reconciliation, never by completion
	// order, so override precedence is unaffected.
	Parallel        bool
	ContinueOnError bool
}

// Request names the inputs and output of one run.
type Request struct {
	RulesPath    string
	TemplatePath string
	OutputPath   string // empty skips the workbook, for coverage-only runs
	Primaries    []string
	Amendments   []string // supplied order is amendment precedence order
}

// Summary reports what a run produced.
type Summary struct {
	RunID    uuid.UUID
	Records  int
	Failures int
	Coverage []entity.Key
	BidInfo  []entity.BidInfoEntry
}

type Pipeline struct {
	Logger  *slog.Logger
	Source  textsource.Source
	Catalog *catalog.Catalog // optional, nil disables
	Opts    Options
}

func New(source textsource.Source, cat *catalog.Catalog, logger *slog.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Logger: logger, Source: source, Catalog: cat, Opts: opts}
}

// docExtract holds one document's pages and engine output, indexed by the
// document's declared position.
type docExtract struct {
	doc    entity.Document
	pages  []textsource.Page
	result engine.Result
}

// Run loads the rule set, extracts every document, reconciles across
// documents in declared order, and writes the workbook and catalog row.
func (p *Pipeline) Run(ctx context.Context, req Request) (Summary, error) {
	runID := uuid.New()
	start := time.Now()
	p.Logger.Info("run.start",
		"run_id", runID.String(), "rules", req.RulesPath,
		"primaries", len(req.Primaries), "amendments", len(req.Amendments))

	set, err := rules.Load(req.RulesPath, p.Logger)
	if err != nil {
		return Summary{RunID: runID}, err
	}

	if err := p.Catalog.StartRun(ctx, runID, req.RulesPath, req.OutputPath, len(req.Primaries), len(req.Amendments)); err != nil {
		return Summary{RunID: runID}, err
	}

	summary, err := p.run(ctx, runID, set, req)
	if err != nil {
		_ = p.Catalog.FinishFailure(ctx, runID, err.Error())
		return summary, err
	}

	if err := p.Catalog.FinishSuccess(ctx, runID, summary.Records); err != nil {
		return summary, err
	}
	if err := p.Catalog.RecordCoverage(ctx, runID, summary.Coverage); err != nil {
		return summary, err
	}

	p.Logger.Info("run.ok",
		"run_id", runID.String(), "records", summary.Records,
		"failures", summary.Failures, "uncovered", len(summary.Coverage),
		"elapsed_ms", time.Since(start).Milliseconds())
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, runID uuid.UUID, set *rules.Set, req Request) (Summary, error) {
	summary := Summary{RunID: runID}

	docs := make([]entity.Document, 0, len(req.Primaries)+len(req.Amendments))
	for i, path := range req.Primaries {
		docs = append(docs, entity.NewPrimary(path, i+1))
	}
	for i, path := range req.Amendments {
		docs = append(docs, entity.NewAmendment(path, i+1))
	}
	if len(req.Primaries) == 0 {
		return summary, fmt.Errorf("no primary documents supplied")
	}

	extracts, err := p.extractAll(ctx, set, docs)
	if err != nil {
		return summary, err
	}

	// Join in declared order: primaries form one record stream, each
	// amendment stays its own list for the reconciliation fold.
	var primary []entity.Record
	var amendLists [][]entity.Record
	var amendInfos []amendments.Info
	for _, ex := range extracts {
		summary.Failures += len(ex.result.Failures)
		if ex.doc.Role == constants.RolePrimary {
			primary = append(primary, ex.result.Records...)
			continue
		}
		amendLists = append(amendLists, ex.result.Records)
		amendInfos = append(amendInfos, amendments.Describe(ex.doc.Name, ex.pages))
	}

	merged := reconcile.Merge(primary, amendLists)
	summary.Records = len(merged)
	summary.Coverage = set.Uncovered(merged)
	summary.BidInfo = reconcile.ProjectBidInfo(merged, set.BidInfo, set.Defaults, p.Logger)

	if req.OutputPath == "" {
		return summary, nil
	}

	meta := report.Meta{
		RunID:          runID,
		BuiltAt:        time.Now(),
		SourceCount:    len(req.Primaries),
		AmendmentCount: len(req.Amendments),
	}
	builder := report.NewBuilder(p.Logger)
	if err := builder.BuildFile(meta, merged, summary.BidInfo, amendInfos, req.TemplatePath, req.OutputPath); err != nil {
		return summary, err
	}
	return summary, nil
}

// extractAll runs the engine over every document, optionally in parallel.
// The returned slice is indexed by declared document position regardless of
// completion order.
func (p *Pipeline) extractAll(ctx context.Context, set *rules.Set, docs []entity.Document) ([]docExtract, error) {
	eng := engine.NewEngine(p.Logger, engine.Options{ContinueOnError: p.Opts.ContinueOnError})
	extracts := make([]docExtract, len(docs))

	extractOne := func(ctx context.Context, i int) error {
		doc := docs[i]
		pages, err := p.Source.Pages(ctx, doc.Path)
		if err != nil {
			return fmt.Errorf("document %s: %w", doc.Name, err)
		}
		res, err := eng.Extract(ctx, set, doc, pages)
		if err != nil {
			return err
		}
		extracts[i] = docExtract{doc: doc, pages: pages, result: res}
		return nil
	}

	if p.Opts.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i := range docs {
			g.Go(func() error { return extractOne(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return extracts, nil
	}

	for i := range docs {
		if err := extractOne(ctx, i); err != nil {
			return nil, err
		}
	}
	return extracts, nil
}
