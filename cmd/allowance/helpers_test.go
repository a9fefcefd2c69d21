package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reecedigiacomo/allowance/internal/config"
)

func TestHumanSize(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 << 20, "5.0 MB"},
	}
	for _, tt := range tests {
		got := humanSize(tt.input)
		if got != tt.want {
			t.Errorf("humanSize(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "model.pdf")
	if err := writeFileAtomic(path, []byte("content")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "content" {
		t.Errorf("file content = %q", data)
	}

	// No temp files left behind next to the output.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("output directory has %d entries, want 1", len(entries))
	}
}

func TestParseGenerateArgs(t *testing.T) {
	cfg := config.Config{Banner: "default.png"}

	opts, err := parseGenerateArgs(cfg, []string{"rates.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.input != "rates.csv" || opts.out != defaultOutput || opts.banner != "default.png" {
		t.Errorf("defaults wrong: %+v", opts)
	}

	opts, err = parseGenerateArgs(cfg, []string{"-", "--out", "m.xlsx", "--banner", "h.png", "--classes", "CA, MA,,CO"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.out != "m.xlsx" || opts.banner != "h.png" {
		t.Errorf("flags wrong: %+v", opts)
	}
	if strings.Join(opts.classes, "|") != "CA|MA|CO" {
		t.Errorf("classes = %v", opts.classes)
	}

	if _, err := parseGenerateArgs(cfg, []string{"rates.csv", "--out"}); err == nil {
		t.Error("expected error for --out without value")
	}
	if _, err := parseGenerateArgs(cfg, []string{"rates.csv", "--bogus"}); err == nil {
		t.Error("expected error for unknown option")
	}
}
