package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFindDEAFoldersNewestFirst(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{
		"DEA_20260109_WUphospho_SHP2_vsn",
		"DEA_20260209_WUphospho_STY_vsn",
		"DEA_20260209_WUtotal_proteome_vsn",
		"DEA_20250101_WUprot_old_vsn",
		"not_a_dea_dir",
	} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0755); err != nil {
			t.Fatal(err)
		}
	}

	f, err := FindDEAFolders(dir)
	if err != nil {
		t.Fatalf("FindDEAFolders failed: %v", err)
	}

	wantPhospho := []string{
		filepath.Join(dir, "DEA_20260209_WUphospho_STY_vsn"),
		filepath.Join(dir, "DEA_20260109_WUphospho_SHP2_vsn"),
	}
	if diff := cmp.Diff(wantPhospho, f.Phospho); diff != "" {
		t.Errorf("phospho folders mismatch (-want +got):\n%s", diff)
	}

	wantProtein := []string{
		filepath.Join(dir, "DEA_20260209_WUtotal_proteome_vsn"),
		filepath.Join(dir, "DEA_20250101_WUprot_old_vsn"),
	}
	if diff := cmp.Diff(wantProtein, f.Protein); diff != "" {
		t.Errorf("protein folders mismatch (-want +got):\n%s", diff)
	}
}

func TestFindAnnotationFilePrefersAnnot(t *testing.T) {
	dea := filepath.Join(t.TempDir(), "DEA_20260209_WUphospho_STY_vsn")
	writeFile(t, filepath.Join(dea, "Inputs_WU_phospho", "exp_dataset_v1.tsv"), "Group\tControl\n")
	writeFile(t, filepath.Join(dea, "Inputs_WU_phospho", "exp_annot_v1.tsv"), "ContrastName\n")

	got, ok := FindAnnotationFile(dea)
	if !ok {
		t.Fatal("annotation file not found")
	}
	if filepath.Base(got) != "exp_annot_v1.tsv" {
		t.Errorf("expected annot file to win, got %s", got)
	}
}

func TestParseContrastsExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annot.tsv")
	writeFile(t, path, "sample\tContrastName\ns1\tKO_vs_WT\ns2\tKO_vs_WT\ns3\tNA\ns4\tTreat_vs_Ctrl\n")

	got, err := ParseContrasts(path)
	if err != nil {
		t.Fatalf("ParseContrasts failed: %v", err)
	}
	want := []string{"KO_vs_WT", "Treat_vs_Ctrl"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("contrasts mismatch (-want +got):\n%s", diff)
	}
}

func TestParseContrastsGroupControl(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.tsv")
	writeFile(t, path, "sample\tGroup\tControl\ns1\tWT\tC\ns2\tKO\tT\ns3\tKO2\tT\n")

	got, err := ParseContrasts(path)
	if err != nil {
		t.Fatalf("ParseContrasts failed: %v", err)
	}
	want := []string{"KO2_vs_WT", "KO_vs_WT"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("contrasts mismatch (-want +got):\n%s", diff)
	}
}

func TestExperimentName(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"DEA_20260109_WUphospho_SHP2_vsn", "SHP2_vsn"},
		{"DEA_20260209_WUcombined_x", "experiment"},
		{"weird", "experiment"},
	}
	for _, tt := range tests {
		if got := ExperimentName(tt.dir); got != tt.want {
			t.Errorf("ExperimentName(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}
