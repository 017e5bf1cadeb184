package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("SEED_FILE", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	x := &exporter{}
	t.Cleanup(func() { _ = x.close() })
	root := newRootCmd(x)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBuildings(t *testing.T) {
	out, err := run(t, "buildings")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "bld-1") || !strings.Contains(out, "Norwest") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestCSVToStdout(t *testing.T) {
	out, err := run(t, "csv", "bld-1", "-o", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "\ufeff") || !strings.Contains(out, `"TOTAL";"";"";"";"17050";""`) {
		t.Fatalf("unexpected CSV:\n%s", out)
	}
}

func TestPrintWritesNamedFile(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "print", "bld-1", "--dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	path := strings.TrimSpace(out)
	if filepath.Dir(path) != dir || !strings.HasPrefix(filepath.Base(path), "SyndicPulse_Norwest_") || filepath.Ext(path) != ".html" {
		t.Fatalf("written to %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, ".syndicpulse-export-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temporary files left: %v", leftovers)
	}
}

func TestUnknownBuilding(t *testing.T) {
	if _, err := run(t, "screen", "bld-9"); err == nil {
		t.Fatal("expected error for unknown building")
	}
}

func TestInvalidMonthFlag(t *testing.T) {
	if _, err := run(t, "--month", "2026-13", "buildings"); err == nil {
		t.Fatal("expected error for invalid month")
	}
}
