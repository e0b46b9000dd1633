package quality

import (
	"log"
	"strings"

	"storedw/pkg/records"
)

// dedupStage removes rows repeating the business key, first occurrence wins.
// Rows sharing a descriptive name under distinct keys are flagged for manual
// review, never removed: the keys differ, so the system cannot decide which
// one is the true record.
type dedupStage struct {
	contract Contract
}

func (dedupStage) Name() string { return "dedup" }

func (s dedupStage) Apply(rows []records.Record, rep *Report) []records.Record {
	out := rows[:0:0]
	seen := map[string]struct{}{}
	for _, row := range rows {
		key := records.CanonicalKey(row[s.contract.Key])
		if key == "" {
			// No key at all; the missing-value stage owns that decision.
			out = append(out, row)
			continue
		}
		if _, dup := seen[key]; dup {
			rep.Drop(s.Name(), "key:"+s.contract.Key)
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}

	if s.contract.NameField != "" {
		s.flagSharedNames(out, rep)
	}
	if len(s.contract.DupFlagFields) > 0 {
		s.flagRepeatGroups(out, rep)
	}
	return out
}

// flagSharedNames counts rows whose descriptive name appears under more than
// one business key.
func (s dedupStage) flagSharedNames(rows []records.Record, rep *Report) {
	byName := map[string][]string{}
	for _, row := range rows {
		name := records.CanonicalKey(row[s.contract.NameField])
		if name == "" {
			continue
		}
		byName[name] = append(byName[name], records.String(row[s.contract.Key]))
	}
	flagged := 0
	for name, keys := range byName {
		if len(keys) > 1 {
			flagged += len(keys)
			log.Printf("dedup: dataset=%s shared name=%q keys=%s",
				rep.Dataset, name, strings.Join(keys, ","))
		}
	}
	rep.Flag("shared-name:"+s.contract.NameField, flagged)
}

// flagRepeatGroups counts rows agreeing on every DupFlagFields value, the
// same-customer same-day same-product pattern that usually means a double
// submit.
func (s dedupStage) flagRepeatGroups(rows []records.Record, rep *Report) {
	counts := map[string]int{}
	for _, row := range rows {
		counts[s.groupKey(row)]++
	}
	flagged := 0
	for _, n := range counts {
		if n > 1 {
			flagged += n
		}
	}
	rep.Flag("repeat-group:"+strings.Join(s.contract.DupFlagFields, "+"), flagged)
}

func (s dedupStage) groupKey(row records.Record) string {
	parts := make([]string, len(s.contract.DupFlagFields))
	for i, f := range s.contract.DupFlagFields {
		parts[i] = records.CanonicalKey(row[f])
	}
	return strings.Join(parts, "\x1f")
}
