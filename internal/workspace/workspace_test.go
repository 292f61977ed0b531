package workspace_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/syntree-cli/internal/workspace"
	"github.com/google/uuid"
)

func TestInitRecordReopen(t *testing.T) {
	dir := t.TempDir()
	w, err := workspace.Init(dir, "")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if w.Name != filepath.Base(dir) {
		t.Fatalf("default name = %q", w.Name)
	}
	if _, err := workspace.Init(dir, "again"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already-exists error, got %v", err)
	}

	in := filepath.Join(dir, "data", "acek_0-1.transposed.csv")
	out := filepath.Join(dir, "data", "acek_final.csv")
	s := w.Record("rmdup", []string{in}, []string{out, "/elsewhere/x.txt"}, map[string]string{"rows": "3"})
	if _, err := uuid.Parse(s.ID); err != nil {
		t.Fatalf("step id %q is not a uuid: %v", s.ID, err)
	}
	if err := w.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := workspace.Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(got.Steps) != 1 {
		t.Fatalf("steps = %d", len(got.Steps))
	}
	st := got.Steps[0]
	if st.Inputs[0] != filepath.Join("data", "acek_0-1.transposed.csv") || st.Outputs[1] != "/elsewhere/x.txt" {
		t.Fatalf("paths = %v %v", st.Inputs, st.Outputs)
	}
	if st.Summary["rows"] != "3" || st.Command != "rmdup" {
		t.Fatalf("step = %+v", st)
	}
}

func TestLocateWalksUp(t *testing.T) {
	dir := t.TempDir()
	if _, err := workspace.Init(dir, "proj"); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := workspace.Locate(sub)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if w.Name != "proj" || w.RootDir() != dir {
		t.Fatalf("located %q at %s", w.Name, w.RootDir())
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := workspace.Open(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "workspace not found") {
		t.Fatalf("err = %v", err)
	}
}
