package ranks

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ptmpipeline/internal/config"
	"ptmpipeline/internal/normalize"
)

func rec(contrast, window string, stat float64) normalize.Record {
	return normalize.Record{
		Protein:   "P1",
		Site:      "P1~" + window,
		Contrast:  contrast,
		Window:    window,
		Statistic: stat,
	}
}

func TestBuildSortedDeduplicated(t *testing.T) {
	res := &normalize.Result{
		Variant: config.Usage,
		Records: []normalize.Record{
			rec("c1", "aaasaaa", 1.0),
			rec("c1", "AAASAAA", 4.0), // same window, higher statistic
			rec("c1", " cccsccc ", 2.0),
			rec("c1", "dddsddd", math.NaN()), // missing statistic
			rec("c1", "", 9.0),               // empty window
		},
	}

	lists := Build(res, config.ColStatistic)
	got := lists["c1"]

	want := List{
		{Window: "AAASAAA", Stat: 4.0},
		{Window: "CCCSCCC", Stat: 2.0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rank list mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildStrictlyNonIncreasingAndDistinct(t *testing.T) {
	res := &normalize.Result{
		Variant: config.Usage,
		Records: []normalize.Record{
			rec("c1", "AAAAAAA", 3.0),
			rec("c1", "BBBBBBB", 3.0),
			rec("c1", "CCCCCCC", -1.0),
			rec("c1", "AAAAAAA", 2.0),
		},
	}

	got := Build(res, config.ColStatistic)["c1"]
	seen := map[string]bool{}
	for i, e := range got {
		if seen[e.Window] {
			t.Errorf("duplicate window %q", e.Window)
		}
		seen[e.Window] = true
		if i > 0 && got[i-1].Stat < e.Stat {
			t.Errorf("statistics increase at index %d", i)
		}
	}
}

func TestBuildRemovesTerminusTruncatedWindows(t *testing.T) {
	res := &normalize.Result{
		Variant: config.Usage,
		Records: []normalize.Record{
			rec("c1", "XAAASAAA", 1.0),  // one leading placeholder: truncated
			rec("c1", "AAASAAAX", 2.0),  // one trailing placeholder: truncated
			rec("c1", "XXAASAAA", 3.0),  // two placeholders: regular padding
			rec("c1", "AAASAAXX", 4.0),
		},
	}

	got := Build(res, config.ColStatistic)["c1"]
	want := List{
		{Window: "AAASAAXX", Stat: 4.0},
		{Window: "XXAASAAA", Stat: 3.0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("terminus filtering mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildIdempotent(t *testing.T) {
	res := &normalize.Result{
		Variant: config.Usage,
		Records: []normalize.Record{
			rec("c1", "AAAAAAA", 2.0),
			rec("c1", "BBBBBBB", 2.0),
			rec("c1", "CCCCCCC", 1.5),
			rec("c2", "AAAAAAA", -0.5),
		},
	}

	dir1, dir2 := t.TempDir(), t.TempDir()
	if err := WriteFiles(dir1, config.Usage, config.ColStatistic, Build(res, config.ColStatistic)); err != nil {
		t.Fatal(err)
	}
	if err := WriteFiles(dir2, config.Usage, config.ColStatistic, Build(res, config.ColStatistic)); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"dpu_c1.rnk", "dpu_c2.rnk", "dpu_sequence_windows.txt"} {
		a, err := os.ReadFile(filepath.Join(dir1, name))
		if err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
		b, err := os.ReadFile(filepath.Join(dir2, name))
		if err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
		if string(a) != string(b) {
			t.Errorf("%s is not byte-identical across runs", name)
		}
	}
}

func TestValidateStatColumn(t *testing.T) {
	for _, c := range StatColumns() {
		if err := ValidateStatColumn(c); err != nil {
			t.Errorf("%s rejected: %v", c, err)
		}
	}
	// Raw source headers must be rejected, not silently match nothing.
	for _, c := range []string{"statistic.site", "diff.site", "pvalue", ""} {
		if err := ValidateStatColumn(c); err == nil {
			t.Errorf("%q accepted", c)
		}
	}
}

func TestBuildUnknownColumnMatchesNoRows(t *testing.T) {
	res := &normalize.Result{
		Variant: config.Usage,
		Records: []normalize.Record{rec("c1", "AAASAAA", 3.2)},
	}
	// Record.Stat cannot serve a raw header, so every row is excluded; the
	// orchestrator guards against this with ValidateStatColumn up front.
	if lists := Build(res, "statistic.site"); len(lists) != 0 {
		t.Errorf("expected no contrasts for an unknown column, got %d", len(lists))
	}
}

func TestWriteFilesFormat(t *testing.T) {
	dir := t.TempDir()
	lists := map[string]List{
		"KO_vs_WT": {
			{Window: "AAASAAA", Stat: 2.5},
			{Window: "CCCSCCC", Stat: -1.25},
		},
	}
	if err := WriteFiles(dir, config.Abundance, config.ColStatistic, lists); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "dpa_KO_vs_WT.rnk"))
	if err != nil {
		t.Fatal(err)
	}
	want := "SequenceWindow\tstatistic\nAAASAAA\t2.5\nCCCSCCC\t-1.25\n"
	if string(data) != want {
		t.Errorf("rank file mismatch:\n got: %q\nwant: %q", string(data), want)
	}

	windows, err := os.ReadFile(filepath.Join(dir, "dpa_sequence_windows.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(windows) != "AAASAAA\nCCCSCCC\n" {
		t.Errorf("window list mismatch: %q", string(windows))
	}
}
