package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDeriveOutputPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"data/acek_0-1.transposed.csv", filepath.Join("data", "acek_final.csv")},
		{"acek_0-1.transposed.csv", "acek_final.csv"},
		{"matrix.csv", "matrix_final.csv"},
		{"matrix.tsv.gz", "matrix_final.csv"},
		{"plain", "plain_final.csv"},
	}
	for _, tt := range tests {
		if got := DeriveOutputPath(tt.in, "_0-1.transposed.csv", "_final.csv"); got != tt.want {
			t.Errorf("DeriveOutputPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSafeWriteFileCreatesDirAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "out.txt")
	if err := SafeWriteFile(p, []byte("hello")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("content = %q", b)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestFindWorkspaceRootWalksUp(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "workspace.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := FindWorkspaceRoot(deep)
	if err != nil {
		t.Fatalf("FindWorkspaceRoot: %v", err)
	}
	if got != root {
		t.Fatalf("root = %q, want %q", got, root)
	}
}
