package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"ptmpipeline/internal/config"
)

// Removable returns the init-created files currently present in projectDir.
// DEA folders and result directories are never candidates.
func Removable(projectDir string) []string {
	candidates := append([]string{config.ConfigFileName}, templateFiles...)
	var present []string
	for _, name := range candidates {
		if _, err := os.Stat(filepath.Join(projectDir, name)); err == nil {
			present = append(present, name)
		}
	}
	return present
}

// Clean removes the files init created and returns their names.
func Clean(projectDir string) ([]string, error) {
	removed := Removable(projectDir)
	for _, name := range removed {
		if err := os.Remove(filepath.Join(projectDir, name)); err != nil {
			return nil, fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return removed, nil
}
