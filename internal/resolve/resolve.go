// Package resolve locates upstream result artifacts among the candidate
// directory layouts produced by different versions of the DEA runner.
package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Kind names the logical artifact being requested, for log and error context.
type Kind string

const (
	ResultWorkbook   Kind = "result-workbook"
	AbundanceTable   Kind = "abundance-table"
	MetadataDocument Kind = "metadata-document"
)

// Request describes one logical artifact to locate below a base directory.
type Request struct {
	Kind Kind

	// Pattern is a filename glob matched inside the chosen container.
	Pattern string

	// Preferred is the canonical filename; when present among the matches
	// it is chosen without further tie-breaking.
	Preferred string
}

// NotFoundError reports that no file matched the request in the container
// that was searched.
type NotFoundError struct {
	Kind    Kind
	Dir     string
	Pattern string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s matching %q found in %s", e.Kind, e.Pattern, e.Dir)
}

// containerPattern matches the results container directories the DEA runner
// creates inside a DEA folder (Results_WU_phospho_STY and friends).
var containerPattern = regexp.MustCompile(`^Results_`)

// dateToken extracts an embedded YYYYMMDD version token.
var dateToken = regexp.MustCompile(`\d{8}`)

// Resolver locates artifacts and reports which candidates were chosen.
type Resolver struct {
	log *zap.Logger
}

// New returns a resolver logging its choices through log.
func New(log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{log: log}
}

// Resolve returns the single path for the requested artifact below baseDir.
// It first picks a results container (newest date token wins, lexicographic
// full path breaks ties), falling back to baseDir itself when no container
// subdirectory exists, then picks the matching file inside it.
func (r *Resolver) Resolve(baseDir string, req Request) (string, error) {
	container, err := r.pickContainer(baseDir)
	if err != nil {
		return "", err
	}

	matches, err := filepath.Glob(filepath.Join(container, req.Pattern))
	if err != nil {
		return "", fmt.Errorf("bad pattern %q: %w", req.Pattern, err)
	}
	sort.Strings(matches)

	if len(matches) == 0 {
		return "", &NotFoundError{Kind: req.Kind, Dir: container, Pattern: req.Pattern}
	}

	if req.Preferred != "" {
		for _, m := range matches {
			if filepath.Base(m) == req.Preferred {
				if len(matches) > 1 {
					r.log.Info("multiple artifact candidates, canonical name chosen",
						zap.String("kind", string(req.Kind)),
						zap.String("chosen", m),
						zap.Int("candidates", len(matches)))
				}
				return m, nil
			}
		}
	}

	chosen := matches[0]
	if req.Preferred != "" {
		r.log.Warn("canonical artifact name absent, using first match",
			zap.String("kind", string(req.Kind)),
			zap.String("expected", req.Preferred),
			zap.String("chosen", chosen),
			zap.Int("candidates", len(matches)))
	} else if len(matches) > 1 {
		r.log.Info("multiple artifact candidates, first match chosen",
			zap.String("kind", string(req.Kind)),
			zap.String("chosen", chosen),
			zap.Int("candidates", len(matches)))
	}
	return chosen, nil
}

// pickContainer chooses the results container below baseDir. When several
// containers exist the one with the numerically largest embedded date token
// wins; containers without a token sort below any dated one.
func (r *Resolver) pickContainer(baseDir string) (string, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", baseDir, err)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() && containerPattern.MatchString(e.Name()) {
			candidates = append(candidates, filepath.Join(baseDir, e.Name()))
		}
	}

	switch len(candidates) {
	case 0:
		// Older layouts keep the result files directly in the DEA folder.
		return baseDir, nil
	case 1:
		return candidates[0], nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		ti, tj := dateToken.FindString(filepath.Base(candidates[i])), dateToken.FindString(filepath.Base(candidates[j]))
		if ti != tj {
			return ti > tj
		}
		return candidates[i] > candidates[j]
	})
	r.log.Info("multiple results containers found, newest chosen",
		zap.String("chosen", candidates[0]),
		zap.Strings("candidates", containerNames(candidates)))
	return candidates[0], nil
}

func containerNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

// String implements fmt.Stringer for requests in log output.
func (req Request) String() string {
	var b strings.Builder
	b.WriteString(string(req.Kind))
	b.WriteString(":")
	b.WriteString(req.Pattern)
	return b.String()
}
