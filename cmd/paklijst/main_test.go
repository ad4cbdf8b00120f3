package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI executes one command against a workbook in dir.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	base := []string{
		"--backend", "sheet",
		"--sheet", filepath.Join(dir, "lijst.xlsx"),
		"--preset-dir", dir,
		"--default-preset=",
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args[:1:1], append(base, args[1:]...)...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dir, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestCLIListFlow(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out := mustRun(t, dir, "add", "--user", "david_and_julia", "--category", "Kamperen & Slaap", "Tent")
	if !strings.Contains(out, "Toegevoegd: Tent (Kamperen & Slaap) #1") {
		t.Errorf("unexpected add output: %q", out)
	}
	mustRun(t, dir, "add", "-u", "David & Julia", "-c", "Elektronica", "-n", "20000 mAh", "Power", "bank")

	out = mustRun(t, dir, "pack", "--user", "david_and_julia", "1")
	if !strings.Contains(out, "Ingepakt: Tent") {
		t.Errorf("unexpected pack output: %q", out)
	}

	out = mustRun(t, dir, "list", "--user", "david_and_julia")
	for _, want := range []string{"[x] 1 Tent", "[ ] 2 Power bank (20000 mAh)", "Totaal: 1/2 (50%)"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, dir, "list", "--user", "david_and_julia", "--filter", "unpacked")
	if strings.Contains(out, "Tent") {
		t.Errorf("packed item listed as unpacked:\n%s", out)
	}

	if _, err := runCLI(t, dir, "unpack-all", "--user", "david_and_julia"); err == nil {
		t.Error("expected unpack-all without --yes to fail")
	}
	out = mustRun(t, dir, "unpack-all", "--user", "david_and_julia", "--yes")
	if !strings.Contains(out, "1 items uitgepakt.") {
		t.Errorf("unexpected unpack output: %q", out)
	}

	out = mustRun(t, dir, "stats", "--user", "david_and_julia")
	if !strings.Contains(out, "Totaal: 0/2 (0%)") || !strings.Contains(out, "Koen & Rumeysa: 0/0 (0%)") {
		t.Errorf("unexpected stats output:\n%s", out)
	}
}

func TestCLIBackup(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	backup := filepath.Join(dir, "backup.csv")
	csv := "Item;Category;Packed;Deleted;Notes\nZaklamp;Elektronica;True;False;\nOud;Overig;False;True;\n"
	if err := os.WriteFile(backup, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, dir, "import", "--user", "koen_and_rumeysa", backup)
	if !strings.Contains(out, "(2 items)") {
		t.Errorf("unexpected import output: %q", out)
	}

	out = mustRun(t, dir, "export", "--user", "koen_and_rumeysa")
	if out != csv {
		t.Errorf("export =\n%s\nwant\n%s", out, csv)
	}

	mustRun(t, dir, "export", "--user", "koen_and_rumeysa", "-o", ".")
	data, err := os.ReadFile(filepath.Join(dir, "koen_and_rumeysa_paklijst.csv"))
	if err != nil || string(data) != csv {
		t.Errorf("export file = %q, %v", data, err)
	}

	out = mustRun(t, dir, "suggestions", "--user", "david_and_julia")
	if !strings.Contains(out, "Zaklamp (Elektronica)") || strings.Contains(out, "Oud") {
		t.Errorf("unexpected suggestions:\n%s", out)
	}
	out = mustRun(t, dir, "suggestions", "--user", "david_and_julia", "--accept", "Zaklamp")
	if !strings.Contains(out, "Toegevoegd: Zaklamp (Elektronica)") {
		t.Errorf("unexpected accept output: %q", out)
	}
}

func TestCLIPresets(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	preset := "Item;Category;Packed;Deleted;Notes\nTent;Kamperen & Slaap;True;False;\nSlaapzak;Kamperen & Slaap;False;False;\n"
	if err := os.WriteFile(filepath.Join(dir, "_weekend.csv"), []byte(preset), 0o644); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, dir, "presets")
	if strings.TrimSpace(out) != "_weekend.csv" {
		t.Errorf("unexpected presets: %q", out)
	}

	if _, err := runCLI(t, dir, "load-preset", "--user", "david_and_julia", "_weekend.csv"); err == nil {
		t.Error("expected load-preset without --yes to fail")
	}
	out = mustRun(t, dir, "load-preset", "--user", "david_and_julia", "--yes", "_weekend.csv")
	if !strings.Contains(out, "(2 items)") {
		t.Errorf("unexpected load output: %q", out)
	}

	out = mustRun(t, dir, "list", "--user", "david_and_julia", "--filter", "packed")
	if !strings.Contains(out, "Geen items gevonden.") {
		t.Errorf("preset items must start unpacked:\n%s", out)
	}

	out = mustRun(t, dir, "suggest", "--user", "david_and_julia", "--pack")
	if !strings.Contains(out, "Suggestie:") || !strings.Contains(out, "Ingepakt:") {
		t.Errorf("unexpected suggest output: %q", out)
	}
}

func TestCLIErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if _, err := runCLI(t, dir, "list", "--user", "nobody"); err == nil {
		t.Error("expected unknown user to fail")
	}
	if _, err := runCLI(t, dir, "list"); err == nil {
		t.Error("expected missing --user to fail")
	}
	if _, err := runCLI(t, dir, "add", "--user", "david_and_julia", "--category", "Gereedschap", "Hamer"); err == nil {
		t.Error("expected unknown category to fail")
	}
	if _, err := runCLI(t, dir, "pack", "--user", "david_and_julia", "abc"); err == nil {
		t.Error("expected invalid id to fail")
	}
	if _, err := runCLI(t, dir, "list", "--backend", "floppy", "--user", "david_and_julia"); err == nil {
		t.Error("expected unknown backend to fail")
	}
}

func TestSetupLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paklijst.log")
	closeLog, err := setupLogger(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer closeLog()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected log file to be created: %v", err)
	}
}
