// Package reconcile merges extraction records from the primary document and
// an ordered set of amendment documents into one authoritative record set.
package reconcile

import (
	"log/slog"

	"github.com/tenderworks/tendertag/internal/entity"
	"github.com/tenderworks/tendertag/internal/rules"
)

// Merge folds the primary record list and each amendment record list, in
// their supplied order, into a new merged list. Per (section, parameter)
// key the last-seen record wins, reflecting amendment precedence; keys
// flagged multi-valued accumulate instead, primary matches first and each
// amendment's matches after, in amendment order. Records keep their true
// SourcePage and SourceDoc; an overridden record is dropped, not shadowed.
func Merge(primary []entity.Record, amendments [][]entity.Record) []entity.Record {
	var keyOrder []entity.Key
	byKey := make(map[entity.Key][]entity.Record)

	fold := func(recs []entity.Record) {
		for _, r := range recs {
			k := r.Key()
			existing, seen := byKey[k]
			if !seen {
				keyOrder = append(keyOrder, k)
			}
			if r.MultiValued {
				byKey[k] = append(existing, r)
				continue
			}
			// Override: last record wins. Within one document, records
			// arrive in MatchOrder, so the later MatchOrder wins too.
			byKey[k] = []entity.Record{r}
		}
	}

	fold(primary)
	for _, amend := range amendments {
		fold(amend)
	}

	merged := make([]entity.Record, 0, len(primary))
	for _, k := range keyOrder {
		merged = append(merged, byKey[k]...)
	}
	return merged
}

// ProjectBidInfo selects the headline keys from merged records, after
// override resolution, and flattens them to (field, value) pairs in headline
// order. A key that produced no record yields no entry unless a static
// default for the field is configured; placeholders are never emitted. For
// multi-valued keys the first surviving record supplies the value.
func ProjectBidInfo(merged []entity.Record, headline []rules.BidInfoKey, defaults map[string]string, logger *slog.Logger) []entity.BidInfoEntry {
	if logger == nil {
		logger = slog.Default()
	}
	first := make(map[entity.Key]string, len(merged))
	for _, r := range merged {
		k := r.Key()
		if _, ok := first[k]; !ok {
			first[k] = r.Value
		}
	}

	entries := make([]entity.BidInfoEntry, 0, len(headline))
	for _, h := range headline {
		k := entity.Key{Section: h.Section, Parameter: h.Parameter}
		if v, ok := first[k]; ok {
			entries = append(entries, entity.BidInfoEntry{Field: h.Field, Value: v})
			continue
		}
		if v, ok := defaults[h.Field]; ok {
			entries = append(entries, entity.BidInfoEntry{Field: h.Field, Value: v})
			continue
		}
		logger.Debug("bidinfo.missing", "field", h.Field, "section", h.Section, "parameter", h.Parameter)
	}
	return entries
}
