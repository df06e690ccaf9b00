package ranks

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"ptmpipeline/internal/config"
)

// WriteFiles emits one two-column tab-separated .rnk file per contrast plus
// the companion file listing every distinct window of the variant. Files are
// overwritten on rerun, never appended.
func WriteFiles(dir string, variant config.Variant, statColumn string, lists map[string]List) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create rank directory: %w", err)
	}

	contrasts := make([]string, 0, len(lists))
	for c := range lists {
		contrasts = append(contrasts, c)
	}
	sort.Strings(contrasts)

	for _, contrast := range contrasts {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.rnk", variant, sanitize(contrast)))
		if err := writeRankFile(path, statColumn, lists[contrast]); err != nil {
			return err
		}
	}

	windowsPath := filepath.Join(dir, fmt.Sprintf("%s_sequence_windows.txt", variant))
	var b strings.Builder
	for _, w := range Windows(lists) {
		b.WriteString(w)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(windowsPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", windowsPath, err)
	}
	return nil
}

func writeRankFile(path, statColumn string, list List) error {
	var b strings.Builder
	b.WriteString("SequenceWindow\t")
	b.WriteString(statColumn)
	b.WriteByte('\n')
	for _, e := range list {
		b.WriteString(e.Window)
		b.WriteByte('\t')
		b.WriteString(strconv.FormatFloat(e.Stat, 'g', -1, 64))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// sanitize keeps contrast names usable as filename components.
func sanitize(contrast string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, contrast)
}
