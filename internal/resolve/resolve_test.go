package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func mkdirs(t *testing.T, base string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(base, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveNewestContainerWins(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "Results_20240101_phospho", "Results_20240615_phospho")
	touch(t, filepath.Join(base, "Results_20240101_phospho", "Result_DPA.xlsx"))
	touch(t, filepath.Join(base, "Results_20240615_phospho", "Result_DPA.xlsx"))

	r := New(nil)
	got, err := r.Resolve(base, Request{Kind: ResultWorkbook, Pattern: "*.xlsx", Preferred: "Result_DPA.xlsx"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := filepath.Join(base, "Results_20240615_phospho", "Result_DPA.xlsx")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestResolveSameDateTieBreak(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "Results_20240601_a", "Results_20240601_b")
	touch(t, filepath.Join(base, "Results_20240601_a", "data.parquet"))
	touch(t, filepath.Join(base, "Results_20240601_b", "data.parquet"))

	r := New(nil)
	got, err := r.Resolve(base, Request{Kind: AbundanceTable, Pattern: "*.parquet"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	// Lexicographically larger full path wins on equal dates.
	want := filepath.Join(base, "Results_20240601_b", "data.parquet")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestResolveFallsBackToBaseDir(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "lfqdata_normalized.parquet"))

	r := New(nil)
	got, err := r.Resolve(base, Request{
		Kind:      AbundanceTable,
		Pattern:   "*.parquet",
		Preferred: "lfqdata_normalized.parquet",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != filepath.Join(base, "lfqdata_normalized.parquet") {
		t.Errorf("unexpected path %s", got)
	}
}

func TestResolvePreferredBeatsSortOrder(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "Results_20240601_x")
	touch(t, filepath.Join(base, "Results_20240601_x", "AAA_old_results.xlsx"))
	touch(t, filepath.Join(base, "Results_20240601_x", "Result_DPU.xlsx"))

	r := New(nil)
	got, err := r.Resolve(base, Request{Kind: ResultWorkbook, Pattern: "*.xlsx", Preferred: "Result_DPU.xlsx"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if filepath.Base(got) != "Result_DPU.xlsx" {
		t.Errorf("expected canonical workbook, got %s", got)
	}
}

func TestResolveNonCanonicalFirstMatch(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "Results_20240601_x")
	touch(t, filepath.Join(base, "Results_20240601_x", "legacy_results.xlsx"))

	r := New(nil)
	got, err := r.Resolve(base, Request{Kind: ResultWorkbook, Pattern: "*.xlsx", Preferred: "Result_DPU.xlsx"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if filepath.Base(got) != "legacy_results.xlsx" {
		t.Errorf("expected fallback to first match, got %s", got)
	}
}

func TestResolveNoMatchIsFatal(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "Results_20240601_x")

	r := New(nil)
	_, err := r.Resolve(base, Request{Kind: ResultWorkbook, Pattern: "*.xlsx"})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Pattern != "*.xlsx" {
		t.Errorf("error should carry the searched pattern, got %q", nf.Pattern)
	}
	if nf.Dir == "" {
		t.Error("error should carry the searched directory")
	}
}
