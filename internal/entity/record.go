package entity

// Record is one resolved (parameter, value, provenance) triple produced by
// applying a rule to a document page. Records are immutable once emitted;
// reconciliation builds new lists rather than mutating them.
type Record struct {
	Section     string `json:"section"`
	ClauseRef   string `json:"clause_ref,omitempty"`
	Parameter   string `json:"parameter"`
	Value       string `json:"value"`
	Unit        string `json:"unit,omitempty"`
	Notes       string `json:"notes,omitempty"`
	SourcePage  int    `json:"source_page"`
	SourceDoc   string `json:"source_doc"`
	MatchOrder  int    `json:"match_order"`
	MultiValued bool   `json:"multi_valued,omitempty"`
}

// Key identifies a parameter within its section.
type Key struct {
	Section   string `json:"section"`
	Parameter string `json:"parameter"`
}

// Key returns the reconciliation key for the record.
func (r Record) Key() Key {
	return Key{Section: r.Section, Parameter: r.Parameter}
}

// BidInfoEntry is one flattened (field, value) pair in the headline summary.
type BidInfoEntry struct {
	Field string `json:"field"`
	Value string `json:"value"`
}
