package search

import (
	"sort"

	"golang.org/x/text/cases"

	"github.com/sells-group/unisearch/internal/model"
)

var fold = cases.Fold()

// dedupeKey returns the record's dedup key: the casefolded URL when
// present, else the ID. Records with neither have no key and are never
// deduplicated.
func dedupeKey(rec model.UniversalRecord) string {
	if rec.URL != "" {
		return fold.String(rec.URL)
	}
	return rec.ID
}

// Dedupe drops later duplicates by dedup key, keeping the first record
// seen for each key. Keyless records are always kept. Idempotent.
func Dedupe(records []model.UniversalRecord) []model.UniversalRecord {
	seen := make(map[string]bool, len(records))
	out := make([]model.UniversalRecord, 0, len(records))
	for _, rec := range records {
		key := dedupeKey(rec)
		if key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, rec)
	}
	return out
}

// FixedColumns always lead the inferred schema.
var FixedColumns = []string{"name", "headline", "location", "score"}

const maxDynamicColumns = 8

// columnDenylist holds attribute keys that never make useful columns.
// Nested object values are additionally excluded by kind.
var columnDenylist = map[string]bool{
	"raw":    true,
	"avatar": true,
	"icon":   true,
	"debug":  true,
}

// PickColumns infers the result schema from the records seen so far: the
// fixed columns plus the most frequent attribute keys, capped at eight.
// The schema is monotone within a request because it is always recomputed
// from the cumulative record set.
func PickColumns(records []model.UniversalRecord) []string {
	freq := make(map[string]int)
	for _, rec := range records {
		for key, val := range rec.Attributes {
			if columnDenylist[key] || !val.Tabular() {
				continue
			}
			freq[key]++
		}
	}

	keys := make([]string, 0, len(freq))
	for key := range freq {
		keys = append(keys, key)
	}
	// Rank by descending frequency; ties break alphabetically so repeated
	// inference over the same records is stable.
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > maxDynamicColumns {
		keys = keys[:maxDynamicColumns]
	}

	return append(append([]string{}, FixedColumns...), keys...)
}
