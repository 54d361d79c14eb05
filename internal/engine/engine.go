package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tenderworks/tendertag/constants"
	"github.com/tenderworks/tendertag/internal/entity"
	"github.com/tenderworks/tendertag/internal/rules"
	"github.com/tenderworks/tendertag/internal/textsource"
)

// Options holds behavior flags for an engine run.
type Options struct {
	// ContinueOnError records template resolution failures instead of
	// aborting the run. Off by default: a broken template is a systematic
	// rule-authoring bug, not expected document variance.
	ContinueOnError bool
}

// Engine runs a rule set against one document's pages.
type Engine struct {
	Logger *slog.Logger
	Opts   Options
}

func NewEngine(logger *slog.Logger, opts Options) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{Logger: logger, Opts: opts}
}

// ResolveFailure records one skipped record in continue-on-error mode.
type ResolveFailure struct {
	Parameter string
	Section   string
	Document  string
	Page      int
	Err       error
}

// Result is the output of one engine run over one document.
type Result struct {
	Records  []entity.Record
	Failures []ResolveFailure
}

// Extract applies every rule, in rule-set order, to the document's pages.
// Output is deterministic for a given (rule set, pages) input: rule order,
// then page order, then left-to-right in-page order, with an engine-scoped
// MatchOrder on every record for downstream tie-breaks. A rule with zero
// matches emits zero records and is not an error.
func (e *Engine) Extract(ctx context.Context, set *rules.Set, doc entity.Document, pages []textsource.Page) (Result, error) {
	var res Result
	order := 0
	for i := range set.Rules {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rule := &set.Rules[i]
		for _, page := range pages {
			matches := Match(rule, page.Text)
			if len(matches) == 0 {
				continue
			}
			if rule.Mode == constants.ModeFirst {
				matches = matches[:1]
			}
			for _, m := range matches {
				value, err := Resolve(rule, m)
				if err != nil {
					if e.Opts.ContinueOnError {
						e.Logger.Warn("extract.resolve.skip",
							"doc", doc.Name, "page", page.Number,
							"parameter", rule.Parameter, "error", err)
						res.Failures = append(res.Failures, ResolveFailure{
							Parameter: rule.Parameter,
							Section:   rule.Section,
							Document:  doc.Name,
							Page:      page.Number,
							Err:       err,
						})
						continue
					}
					return res, fmt.Errorf("document %s page %d: %w", doc.Name, page.Number, err)
				}
				res.Records = append(res.Records, entity.Record{
					Section:     rule.Section,
					ClauseRef:   rule.ClauseRef,
					Parameter:   rule.Parameter,
					Value:       value,
					Unit:        rule.Unit,
					Notes:       rule.Notes,
					SourcePage:  page.Number,
					SourceDoc:   doc.Name,
					MatchOrder:  order,
					MultiValued: rule.MultiValued,
				})
				order++
			}
			if rule.Mode == constants.ModeFirst {
				break
			}
		}
	}
	e.Logger.Info("extract.ok",
		"doc", doc.Name, "role", string(doc.Role),
		"pages", len(pages), "records", len(res.Records), "failures", len(res.Failures))
	return res, nil
}
