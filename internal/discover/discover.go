// Package discover locates DEA folders and annotation files inside a
// project directory and extracts contrast names from annotation tables.
package discover

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// phosphoPatterns and proteinPatterns are the DEA folder naming conventions
// the upstream runner has used over time.
var (
	phosphoPatterns = []string{"DEA_*_WUphospho_*", "DEA_*_WUcombined_*", "DEA_*_*STY*"}
	proteinPatterns = []string{"DEA_*_WUprot_*", "DEA_*_WUtotal_*"}
)

// Folders holds discovered DEA directories, newest first.
type Folders struct {
	Phospho []string
	Protein []string
}

// FindDEAFolders scans dir for phospho and protein DEA folders. Results are
// sorted by name descending so the newest date-stamped folder comes first.
func FindDEAFolders(dir string) (Folders, error) {
	var f Folders
	var err error
	if f.Phospho, err = globDirs(dir, phosphoPatterns); err != nil {
		return Folders{}, err
	}
	if f.Protein, err = globDirs(dir, proteinPatterns); err != nil {
		return Folders{}, err
	}
	return f, nil
}

func globDirs(dir string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, p))
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.IsDir() || seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

// FindAnnotationFile looks inside a phospho DEA folder's Inputs_* directory
// for an annotation table, preferring the standard *_annot_*.tsv naming over
// the alternative *_dataset*.tsv format.
func FindAnnotationFile(deaDir string) (string, bool) {
	inputDirs, _ := filepath.Glob(filepath.Join(deaDir, "Inputs_*"))
	sort.Strings(inputDirs)

	for _, inputs := range inputDirs {
		for _, pattern := range []string{"*_annot_*.tsv", "*_dataset*.tsv"} {
			matches, _ := filepath.Glob(filepath.Join(inputs, pattern))
			if len(matches) > 0 {
				sort.Strings(matches)
				return matches[0], true
			}
		}
	}
	return "", false
}

// ParseContrasts extracts unique contrast names from an annotation TSV.
// Two formats exist: an explicit ContrastName column, or Group/Control
// columns from which <treatment>_vs_<control> names are derived.
func ParseContrasts(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse annotation file %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		return -1
	}

	contrasts := make(map[string]bool)

	if idx := col("ContrastName"); idx >= 0 {
		for _, row := range records[1:] {
			if idx >= len(row) {
				continue
			}
			name := strings.TrimSpace(row[idx])
			if name != "" && !strings.EqualFold(name, "NA") {
				contrasts[name] = true
			}
		}
	} else if gIdx, cIdx := col("Group"), col("Control"); gIdx >= 0 && cIdx >= 0 {
		controls := make(map[string]bool)
		treatments := make(map[string]bool)
		for _, row := range records[1:] {
			if gIdx >= len(row) || cIdx >= len(row) {
				continue
			}
			group := strings.TrimSpace(row[gIdx])
			switch strings.ToUpper(strings.TrimSpace(row[cIdx])) {
			case "C":
				controls[group] = true
			case "T":
				treatments[group] = true
			}
		}
		for t := range treatments {
			for c := range controls {
				contrasts[fmt.Sprintf("%s_vs_%s", t, c)] = true
			}
		}
	}

	out := make([]string, 0, len(contrasts))
	for c := range contrasts {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// ExperimentName derives a human-readable experiment name from a phospho DEA
// folder name, taking everything after the phospho tag:
// DEA_20260109_WUphospho_SHP2_vsn yields SHP2_vsn.
func ExperimentName(deaDir string) string {
	parts := strings.Split(filepath.Base(deaDir), "_")
	for i, p := range parts {
		if strings.Contains(strings.ToLower(p), "phospho") && i+1 < len(parts) {
			return strings.Join(parts[i+1:], "_")
		}
	}
	return "experiment"
}
