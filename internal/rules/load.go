package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tenderworks/tendertag/constants"
	"github.com/tenderworks/tendertag/internal/common"
)

// rawFile mirrors the YAML rule file shape.
type rawFile struct {
	Extractors []rawRule         `koanf:"extractors"`
	BidInfoMap []rawBidInfo      `koanf:"bid_info_map"`
	Defaults   map[string]string `koanf:"defaults"`
}

type rawRule struct {
	Section     string   `koanf:"section"`
	Clause      string   `koanf:"clause"`
	Parameter   string   `koanf:"parameter"`
	Pattern     string   `koanf:"pattern"`
	Flags       []string `koanf:"flags"`
	Mode        string   `koanf:"mode"`
	ValueExpr   string   `koanf:"value_expr"`
	Unit        string   `koanf:"unit"`
	Notes       string   `koanf:"notes"`
	MultiValued bool     `koanf:"multi_valued"`
}

type rawBidInfo struct {
	Field     string `koanf:"field"`
	Section   string `koanf:"section"`
	Parameter string `koanf:"parameter"`
}

// Load reads, validates, and compiles a YAML rule file. Every pattern is
// compiled here so that a broken rule fails the whole load, before any
// document is opened.
func Load(path string, logger *slog.Logger) (*Set, error) {
	if logger == nil {
		logger = slog.Default()
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("read rule file %s", path), err)
	}
	set, err := Parse(content, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("rules.load.ok", "path", path, "rules", len(set.Rules), "bid_info", len(set.BidInfo))
	return set, nil
}

// Parse validates and compiles a YAML rule file already in memory.
func Parse(content []byte, logger *slog.Logger) (*Set, error) {
	if logger == nil {
		logger = slog.Default()
	}
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), kyaml.Parser()); err != nil {
		return nil, common.NewAppError(common.CodeConfig, "parse rule yaml", err)
	}

	if err := validateAgainstSchema(BuildRuleFileJSONSchema(), k.Raw()); err != nil {
		return nil, common.NewAppError(common.CodeRuleSet, "rule file does not match schema", err)
	}

	var raw rawFile
	if err := k.Unmarshal("", &raw); err != nil {
		return nil, common.NewAppError(common.CodeRuleSet, "decode rule file", err)
	}

	set := &Set{
		Rules:    make([]Rule, 0, len(raw.Extractors)),
		BidInfo:  make([]BidInfoKey, 0, len(raw.BidInfoMap)),
		Defaults: raw.Defaults,
	}
	for i, rr := range raw.Extractors {
		rule, err := buildRule(rr)
		if err != nil {
			return nil, err
		}
		if rule.Mode == constants.ModeFirst && rule.MultiValued {
			// Mode governs within-document collection, multi_valued governs
			// cross-document merge; the combination is legal but usually a
			// rule-authoring slip, so call it out.
			logger.Warn("rules.first_multi_valued",
				"index", i, "section", rule.Section, "parameter", rule.Parameter)
		}
		set.Rules = append(set.Rules, rule)
	}
	for _, rb := range raw.BidInfoMap {
		set.BidInfo = append(set.BidInfo, BidInfoKey{
			Field:     rb.Field,
			Section:   rb.Section,
			Parameter: rb.Parameter,
		})
	}
	return set, nil
}

func buildRule(rr rawRule) (Rule, error) {
	flags := make([]constants.PatternFlag, 0, len(rr.Flags))
	seen := make(map[constants.PatternFlag]struct{}, len(rr.Flags))
	for _, f := range rr.Flags {
		nf := constants.NormalizeFlag(f)
		if nf == "" {
			return Rule{}, common.NewAppError(common.CodeRuleSet,
				fmt.Sprintf("rule %q: unknown flag %q", rr.Parameter, f), common.ErrValidation)
		}
		if _, dup := seen[nf]; dup {
			continue
		}
		seen[nf] = struct{}{}
		flags = append(flags, nf)
	}

	mode := constants.NormalizeMode(rr.Mode)
	if mode != constants.ModeFirst && mode != constants.ModeAll {
		return Rule{}, common.NewAppError(common.CodeRuleSet,
			fmt.Sprintf("rule %q: unknown mode %q", rr.Parameter, rr.Mode), common.ErrValidation)
	}

	re, err := compilePattern(rr.Pattern, flags)
	if err != nil {
		return Rule{}, common.NewAppError(common.CodePattern,
			fmt.Sprintf("rule %q: pattern does not compile", rr.Parameter), err)
	}

	return Rule{
		Section:       rr.Section,
		ClauseRef:     rr.Clause,
		Parameter:     rr.Parameter,
		Pattern:       rr.Pattern,
		Flags:         flags,
		Mode:          mode,
		ValueTemplate: rr.ValueExpr,
		Unit:          rr.Unit,
		Notes:         rr.Notes,
		MultiValued:   rr.MultiValued,
		re:            re,
	}, nil
}

// compilePattern prefixes the pattern with the Go regexp mode group built
// from the rule's flags.
func compilePattern(pattern string, flags []constants.PatternFlag) (*regexp.Regexp, error) {
	var mode string
	for _, f := range flags {
		switch f {
		case constants.FlagIgnoreCase:
			mode += "i"
		case constants.FlagDotAll:
			mode += "s"
		case constants.FlagMultiline:
			mode += "m"
		}
	}
	if mode != "" {
		pattern = "(?" + mode + ")" + pattern
	}
	return regexp.Compile(pattern)
}

// validateAgainstSchema validates decoded YAML against schemaMap.
func validateAgainstSchema(schemaMap map[string]any, data map[string]any) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("rules.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("rules.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	// Round-trip through JSON so YAML-decoded values use the types the
	// validator expects.
	db, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal rule data: %w", err)
	}
	var v any
	if err := json.Unmarshal(db, &v); err != nil {
		return fmt.Errorf("unmarshal rule data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("rule file does not match schema: %w", err)
	}
	return nil
}
