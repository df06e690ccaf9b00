// Package ranks turns standardized per-site results into the sorted,
// deduplicated named-value lists that rank-based enrichment tools consume.
package ranks

import (
	"fmt"
	"sort"
	"strings"

	"ptmpipeline/internal/config"
	"ptmpipeline/internal/normalize"
)

// windowPad is the unknown-residue placeholder padding sequence windows that
// are truncated at a protein terminus.
const windowPad = "X"

// Entry is one (sequence window, statistic) pair.
type Entry struct {
	Window string
	Stat   float64
}

// List is a rank list: strictly descending by statistic, windows pairwise
// distinct.
type List []Entry

// StatColumns lists the canonical columns a rank list can be built from.
func StatColumns() []string {
	return []string{config.ColStatistic, config.ColDiff, config.ColFDR, config.ColStatProtein}
}

// ValidateStatColumn rejects ranking columns outside the canonical set. Raw
// source headers like "statistic.site" are rejected here rather than quietly
// matching nothing and producing empty rank files.
func ValidateStatColumn(column string) error {
	for _, c := range StatColumns() {
		if c == column {
			return nil
		}
	}
	return fmt.Errorf("unknown ranking statistic %q (expected one of %s)",
		column, strings.Join(StatColumns(), ", "))
}

// Build produces one rank list per contrast for the chosen canonical
// statistic column. Rows with a missing statistic or an empty window are
// excluded; windows are uppercased and trimmed; windows carrying exactly one
// leading or one trailing terminus placeholder are removed; duplicates keep
// the highest-statistic occurrence.
func Build(res *normalize.Result, statColumn string) map[string]List {
	grouped := make(map[string][]Entry)
	for _, rec := range res.Records {
		stat, ok := rec.Stat(statColumn)
		if !ok {
			continue
		}
		window := strings.ToUpper(strings.TrimSpace(rec.Window))
		if window == "" || truncatedAtTerminus(window) {
			continue
		}
		grouped[rec.Contrast] = append(grouped[rec.Contrast], Entry{Window: window, Stat: stat})
	}

	out := make(map[string]List, len(grouped))
	for contrast, entries := range grouped {
		out[contrast] = dedupeSorted(entries)
	}
	return out
}

// Windows returns the distinct sequence windows across all contrasts of a
// build, sorted for stable output.
func Windows(lists map[string]List) []string {
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, e := range list {
			seen[e.Window] = true
		}
	}
	windows := make([]string, 0, len(seen))
	for w := range seen {
		windows = append(windows, w)
	}
	sort.Strings(windows)
	return windows
}

// truncatedAtTerminus reports a window with exactly one leading or exactly
// one trailing placeholder residue: the site sits one residue from a protein
// terminus and the window cannot be centered.
func truncatedAtTerminus(window string) bool {
	if strings.HasPrefix(window, windowPad) && !strings.HasPrefix(window, windowPad+windowPad) {
		return true
	}
	if strings.HasSuffix(window, windowPad) && !strings.HasSuffix(window, windowPad+windowPad) {
		return true
	}
	return false
}

// dedupeSorted sorts descending by statistic (window order breaks ties so
// repeated builds are byte-identical) and keeps the first occurrence of each
// window, so duplicates resolve to their highest statistic.
func dedupeSorted(entries []Entry) List {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Stat != entries[j].Stat {
			return entries[i].Stat > entries[j].Stat
		}
		return entries[i].Window < entries[j].Window
	})

	seen := make(map[string]bool, len(entries))
	list := make(List, 0, len(entries))
	for _, e := range entries {
		if seen[e.Window] {
			continue
		}
		seen[e.Window] = true
		list = append(list, e)
	}
	return list
}
