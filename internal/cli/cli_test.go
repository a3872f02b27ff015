package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/mindmap/internal/config"
	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/store"
)

// testEnv runs commands against a file store in a temporary directory.
type testEnv struct {
	t        *testing.T
	dir      string
	cfgPath  string
	out      *bytes.Buffer
	storeDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store.Dir = filepath.Join(dir, "maps")
	cfg.Cache.Backend = config.CacheNull
	cfg.Cache.Dir = filepath.Join(dir, "cache")
	cfg.Editor.IDs = config.IDsSequence

	path := filepath.Join(dir, "config.toml")
	if err := config.Save(cfg, path); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	prev := stdout
	stdout = &out
	t.Cleanup(func() { stdout = prev })
	quietSpinners(t)

	return &testEnv{t: t, dir: dir, cfgPath: path, out: &out, storeDir: cfg.Store.Dir}
}

// run executes one command and returns what it printed.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	e.out.Reset()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", e.cfgPath}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return e.out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

// onlyDocument returns the id of the single stored document.
func (e *testEnv) onlyDocument() string {
	e.t.Helper()
	st, err := store.NewFileStore(e.storeDir)
	if err != nil {
		e.t.Fatal(err)
	}
	list, err := st.List(context.Background())
	if err != nil {
		e.t.Fatal(err)
	}
	if len(list) != 1 {
		e.t.Fatalf("store holds %d documents, want 1", len(list))
	}
	return list[0].ID
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestDocumentLifecycle(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("list")
	assertContains(t, out, "No mind maps yet")

	out = env.mustRun("new", "Biology", "--tag", "Science")
	assertContains(t, out, "Created Biology")
	id := env.onlyDocument()

	out = env.mustRun("add", id, "root", "Cells")
	assertContains(t, out, "Added Cells under root", "id: n1 at (200, 0)")
	out = env.mustRun("add", id, "root", "Genetics")
	assertContains(t, out, "id: n2 at (200, 40)")

	out = env.mustRun("connect", id, "n1", "n2")
	assertContains(t, out, "Connected n1 → n2")

	env.mustRun("rename", id, "n1", "Cell", "biology")
	out = env.mustRun("move", id, "n2", "10", "-20.5")
	assertContains(t, out, "Moved n2 to (10, -20.5)")

	out = env.mustRun("show", id)
	assertContains(t, out, "Biology", "science", "3 nodes · 3 edges", "• Cell biology n1", "• Genetics n2", iconRevisit)

	out = env.mustRun("list")
	assertContains(t, out, id, "Biology", "draft")

	out = env.mustRun("delete", id, "n1")
	assertContains(t, out, "Deleted n1", "2 edges removed")

	out = env.mustRun("export", id, "--format", "yaml")
	assertContains(t, out, "label: Genetics", "sourceId: root")
	if strings.Contains(out, "Cell biology") {
		t.Error("deleted node still exported")
	}

	out = env.mustRun("render", id, "--dot")
	assertContains(t, out, "digraph G {", `"root" -> "n2"`)

	env.mustRun("remove", id)
	out = env.mustRun("list")
	assertContains(t, out, "No mind maps yet")
}

func TestCommandErrors(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("new", "Errors")
	id := env.onlyDocument()
	env.mustRun("add", id, "root", "A")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing document", []string{"add", "nope", "root", "x"}, errors.ErrCodePersistence},
		{"missing parent", []string{"add", id, "ghost", "x"}, errors.ErrCodeNotFound},
		{"delete root", []string{"delete", id, "root"}, errors.ErrCodeInvalidOperation},
		{"self loop", []string{"connect", id, "n1", "n1"}, errors.ErrCodeInvalidOperation},
		{"duplicate edge", []string{"connect", id, "root", "n1"}, errors.ErrCodeInvalidOperation},
		{"blank label", []string{"rename", id, "n1", " "}, errors.ErrCodeInvalidOperation},
		{"bad coordinate", []string{"move", id, "n1", "left", "0"}, errors.ErrCodeInvalidInput},
		{"bad visibility", []string{"new", "X", "--visibility", "secret"}, errors.ErrCodeInvalidInput},
		{"bad format", []string{"export", id, "--format", "xml"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}

	// Failed edits leave the stored graph alone.
	out := env.mustRun("show", id)
	assertContains(t, out, "2 nodes · 1 edges")
}

func TestImport(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "plants.json")
	data := `{
  "nodes": [
    {"id": "root", "label": "Plants", "position": {"x": 0, "y": 0}, "isRoot": true},
    {"id": "a", "label": "Leaves", "position": {"x": 200, "y": 0}}
  ],
  "edges": [
    {"id": "e1", "sourceId": "root", "targetId": "a"},
    {"id": "bad", "sourceId": "root", "targetId": "ghost"}
  ]
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	out := env.mustRun("import", path)
	assertContains(t, out, "Repaired 1 issue", "Imported Plants", "2 nodes · 1 edges")

	id := env.onlyDocument()
	out = env.mustRun("show", id)
	assertContains(t, out, "• Leaves a")
}

func TestConfigErrors(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(env.cfgPath, []byte("[store]\nbackend = \"tape\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := env.run("list")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestCacheCommands(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("cache", "path")
	if got := strings.TrimSpace(out); got != filepath.Join(env.dir, "cache") {
		t.Errorf("cache path = %q", got)
	}

	out = env.mustRun("cache", "clear")
	assertContains(t, out, "keeps nothing between runs")
}

func TestCompletion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("completion", "bash")
	assertContains(t, out, "mindmap")

	if _, err := env.run("completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func TestCacheClearFileBackend(t *testing.T) {
	env := newTestEnv(t)
	cfg, err := config.Load(env.cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Cache.Backend = config.CacheFile
	if err := config.Save(cfg, env.cfgPath); err != nil {
		t.Fatal(err)
	}

	entry := filepath.Join(env.dir, "cache", "renders", "ab", "abcdef")
	if err := os.MkdirAll(filepath.Dir(entry), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(entry, []byte("svg"), 0o600); err != nil {
		t.Fatal(err)
	}

	out := env.mustRun("cache", "clear")
	assertContains(t, out, "Cleared 1 cache")
	if _, err := os.Stat(entry); !os.IsNotExist(err) {
		t.Error("cached entry survived clear")
	}
}
