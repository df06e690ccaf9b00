// Package abundance joins site- and protein-level normalized abundance
// tables and derives the protein-corrected site abundance matrix.
//
// Abundances arrive long-format (one row per entity and sample) and already
// log-scale normalized; the correction is a plain per-sample subtraction and
// is never re-exponentiated or re-normalized.
package abundance

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Row is one long-format measurement. Entity is the site identifier for
// site-level tables and equals Protein for protein-level tables.
type Row struct {
	Entity  string
	Protein string
	Sample  string
	Value   float64
}

// Matrix is a wide abundance table: one row per entity, one column per
// sample. A missing (entity, sample) measurement is an absent map key, not a
// zero.
type Matrix struct {
	// Key names the entity column when the matrix is serialized.
	Key     string
	Samples []string
	Rows    []MatrixRow
}

// MatrixRow holds one entity's per-sample values.
type MatrixRow struct {
	Entity string
	Values map[string]float64
}

// Value returns the (entity, sample) cell of the matrix.
func (m *Matrix) Value(entity, sample string) (float64, bool) {
	for _, r := range m.Rows {
		if r.Entity == entity {
			v, ok := r.Values[sample]
			return v, ok
		}
	}
	return 0, false
}

// DuplicateKeyError reports two measurements for the same (entity, sample)
// pair where uniqueness was assumed. Averaging or overwriting here would
// corrupt every downstream statistic, so this is fatal.
type DuplicateKeyError struct {
	Level  string
	Entity string
	Sample string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s abundance for entity %q in sample %q", e.Level, e.Entity, e.Sample)
}

// Reconcile pivots both long tables to wide form and computes the
// protein-corrected site matrix. Decoy entities are removed before any join;
// a site contributes a corrected value only for samples where its protein
// was also measured, and sites whose protein is entirely absent are dropped
// from the corrected output.
func Reconcile(siteLong, proteinLong []Row, decoyPrefix string, log *zap.Logger) (site, protein, corrected *Matrix, err error) {
	if log == nil {
		log = zap.NewNop()
	}

	siteLong = dropDecoys(siteLong, decoyPrefix)
	proteinLong = dropDecoys(proteinLong, decoyPrefix)

	site, err = pivot(siteLong, "site", "site")
	if err != nil {
		return nil, nil, nil, err
	}
	protein, err = pivot(proteinLong, "protein", "protein_Id")
	if err != nil {
		return nil, nil, nil, err
	}

	// Inner join on (sample, protein).
	protValues := make(map[[2]string]float64, len(proteinLong))
	for _, r := range proteinLong {
		protValues[[2]string{r.Protein, r.Sample}] = r.Value
	}

	var correctedLong []Row
	var unmatched int
	for _, r := range siteLong {
		pv, ok := protValues[[2]string{r.Protein, r.Sample}]
		if !ok {
			unmatched++
			continue
		}
		correctedLong = append(correctedLong, Row{
			Entity:  r.Entity,
			Protein: r.Protein,
			Sample:  r.Sample,
			Value:   r.Value - pv,
		})
	}
	if unmatched > 0 {
		log.Info("site measurements without protein counterpart excluded from correction",
			zap.Int("excluded", unmatched))
	}

	// Uniqueness was already established by the site pivot.
	corrected, err = pivot(correctedLong, "corrected", "site")
	if err != nil {
		return nil, nil, nil, err
	}
	return site, protein, corrected, nil
}

func dropDecoys(rows []Row, prefix string) []Row {
	if prefix == "" {
		return rows
	}
	kept := rows[:0:0]
	for _, r := range rows {
		if strings.HasPrefix(r.Entity, prefix) || strings.HasPrefix(r.Protein, prefix) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// pivot reshapes long rows into a wide matrix, failing on duplicate
// (entity, sample) keys. Rows and samples come out sorted so repeated runs
// serialize identically.
func pivot(rows []Row, level, key string) (*Matrix, error) {
	byEntity := make(map[string]map[string]float64)
	samples := make(map[string]bool)

	for _, r := range rows {
		cells, ok := byEntity[r.Entity]
		if !ok {
			cells = make(map[string]float64)
			byEntity[r.Entity] = cells
		}
		if _, dup := cells[r.Sample]; dup {
			return nil, &DuplicateKeyError{Level: level, Entity: r.Entity, Sample: r.Sample}
		}
		cells[r.Sample] = r.Value
		samples[r.Sample] = true
	}

	m := &Matrix{Key: key, Samples: make([]string, 0, len(samples))}
	for s := range samples {
		m.Samples = append(m.Samples, s)
	}
	sort.Strings(m.Samples)

	entities := make([]string, 0, len(byEntity))
	for e := range byEntity {
		entities = append(entities, e)
	}
	sort.Strings(entities)
	for _, e := range entities {
		m.Rows = append(m.Rows, MatrixRow{Entity: e, Values: byEntity[e]})
	}
	return m, nil
}
