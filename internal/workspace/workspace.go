package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/syntree-cli/internal/utils"
	"github.com/google/uuid"
)

const manifestName = "workspace.json"

// Workspace is the run manifest of one analysis directory.
type Workspace struct {
	Name      string    `json:"name"`
	Steps     []*Step   `json:"steps"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Not serialized: directory holding workspace.json
	rootDir string `json:"-"`
}

// Step records one command invocation and the files it touched.
type Step struct {
	ID      string            `json:"id"`
	Command string            `json:"command"`
	Inputs  []string          `json:"inputs"`
	Outputs []string          `json:"outputs"`
	Summary map[string]string `json:"summary,omitempty"`
	At      time.Time         `json:"at"`
}

// New constructs an in-memory workspace. Call Save to persist.
func New(name, rootDir string) *Workspace {
	now := time.Now()
	return &Workspace{
		Name:      name,
		Steps:     []*Step{},
		CreatedAt: now,
		UpdatedAt: now,
		rootDir:   rootDir,
	}
}

// Init creates a workspace in dir. It fails if one already exists.
func Init(dir, name string) (*Workspace, error) {
	path := filepath.Join(dir, manifestName)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("workspace already exists at %s", path)
	}
	if strings.TrimSpace(name) == "" {
		name = filepath.Base(dir)
		if abs, err := filepath.Abs(dir); err == nil {
			name = filepath.Base(abs)
		}
	}
	w := New(name, dir)
	if err := w.Save(); err != nil {
		return nil, err
	}
	return w, nil
}

// Open loads workspace.json from dir.
func Open(dir string) (*Workspace, error) {
	path := filepath.Join(dir, manifestName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("workspace not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	var w Workspace
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("parse workspace %s: %w", path, err)
	}
	w.rootDir = dir
	return &w, nil
}

// Locate opens the workspace containing start, walking up parent directories.
func Locate(start string) (*Workspace, error) {
	dir, err := utils.FindWorkspaceRoot(start)
	if err != nil {
		return nil, err
	}
	return Open(dir)
}

// RootDir returns the directory holding workspace.json.
func (w *Workspace) RootDir() string { return w.rootDir }

// Save writes workspace.json atomically.
func (w *Workspace) Save() error {
	if w.rootDir == "" {
		return errors.New("workspace root directory not set")
	}
	w.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(w)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(w.rootDir, manifestName), data)
}

// Record appends a step with a fresh ID and returns it. Paths under the
// workspace root are stored relative to it.
func (w *Workspace) Record(command string, inputs, outputs []string, summary map[string]string) *Step {
	s := &Step{
		ID:      uuid.NewString(),
		Command: command,
		Inputs:  w.relAll(inputs),
		Outputs: w.relAll(outputs),
		Summary: summary,
		At:      time.Now(),
	}
	w.Steps = append(w.Steps, s)
	w.UpdatedAt = s.At
	return s
}

func (w *Workspace) relAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, w.rel(p))
	}
	return out
}

func (w *Workspace) rel(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	root, err := filepath.Abs(w.rootDir)
	if err != nil {
		return p
	}
	r, err := filepath.Rel(root, abs)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return abs
	}
	return r
}
