package scraper

// Dedupe collapses records sharing the same (name, kind) pair, keeping the
// first occurrence and preserving order. Callers pass records in ascending
// cardno order, so the survivor is the lexicographically smallest cardno.
//
// Treating an equal name and kind as "the same card" is policy, not a fact
// about the catalog: distinct cardnos can be reprints of one card, but they
// can also be alternate arts that merely share a name.
func Dedupe(records []Record) []Record {
	type nameKind struct {
		name, kind string
	}
	seen := make(map[nameKind]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		key := nameKind{rec["name"], rec["kind"]}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
