package rules

// BuildRuleFileJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. The decoded YAML is validated against it before any pattern
// is compiled, so structural mistakes are reported with a schema path
// instead of surfacing later as odd extraction behavior.
func BuildRuleFileJSONSchema() map[string]any {
	flagProp := map[string]any{
		"type": "string",
		"enum": []string{
			"IGNORECASE", "CASE_INSENSITIVE",
			"DOTALL", "DOT_MATCHES_NEWLINE",
			"MULTILINE",
		},
	}
	ruleProps := map[string]any{
		"section":      map[string]any{"type": "string", "minLength": 1},
		"clause":       map[string]any{"type": "string"},
		"parameter":    map[string]any{"type": "string", "minLength": 1},
		"pattern":      map[string]any{"type": "string", "minLength": 1},
		"flags":        map[string]any{"type": "array", "items": flagProp},
		"mode":         map[string]any{"type": "string", "enum": []string{"first", "all"}},
		"value_expr":   map[string]any{"type": "string"},
		"unit":         map[string]any{"type": "string"},
		"notes":        map[string]any{"type": "string"},
		"multi_valued": map[string]any{"type": "boolean"},
	}
	bidInfoProps := map[string]any{
		"field":     map[string]any{"type": "string", "minLength": 1},
		"section":   map[string]any{"type": "string", "minLength": 1},
		"parameter": map[string]any{"type": "string", "minLength": 1},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"extractors": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties":           ruleProps,
					"required":             []string{"section", "parameter", "pattern"},
				},
			},
			"bid_info_map": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties":           bidInfoProps,
					"required":             []string{"field", "section", "parameter"},
				},
			},
			"defaults": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
		},
	}
}
