package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const leavesFASTA = `>reference
AAAA
>a
CAAA
>b
ACAA
>c
AACA
>d
AAAC
`

// testEnv isolates config and cache directories and writes input files.
type testEnv struct {
	t   *testing.T
	dir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return &testEnv{t: t, dir: dir}
}

func (e *testEnv) write(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatal(err)
	}
	return path
}

func (e *testEnv) path(name string) string { return filepath.Join(e.dir, name) }

func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("hdag %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func (e *testEnv) build(name string, trees ...string) string {
	e.t.Helper()
	nwk := e.write(name+".nwk", strings.Join(trees, "\n")+"\n")
	fa := e.write("leaves.fasta", leavesFASTA)
	out := e.path(name + ".json")
	e.mustRun("build", "--newick", nwk, "--fasta", fa, "-o", out)
	return out
}

func TestBuildAndCount(t *testing.T) {
	e := newTestEnv(t)
	both := e.build("both", "((a,b),(c,d));", "((a,c),(b,d));")

	if got := e.mustRun("count", both); got != "2\n" {
		t.Errorf("count = %q, want 2", got)
	}

	out := e.mustRun("summary", "--json", both)
	for _, want := range []string{`"histories": "2"`, `"leaves": 4`, `"min_score": 4`} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %s:\n%s", want, out)
		}
	}

	if out := e.mustRun("summary", both); !strings.Contains(out, "Parsimony") {
		t.Errorf("summary table missing header:\n%s", out)
	}
}

func TestBuildUsesCache(t *testing.T) {
	e := newTestEnv(t)
	e.build("first", "((a,b),(c,d));")

	entries, err := os.ReadDir(filepath.Join(e.dir, "cache", "hdag"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("expected cache entries, err=%v", err)
	}

	out := e.mustRun("cache", "clear")
	if !strings.Contains(out, "Cleared") {
		t.Errorf("cache clear output = %q", out)
	}
	if got := strings.TrimSpace(e.mustRun("cache", "path")); got != filepath.Join(e.dir, "cache", "hdag") {
		t.Errorf("cache path = %q", got)
	}
}

func TestMergeEqualCanon(t *testing.T) {
	e := newTestEnv(t)
	t1 := e.build("t1", "((a,b),(c,d));")
	t2 := e.build("t2", "((a,c),(b,d));")
	both := e.build("both", "((a,b),(c,d));", "((a,c),(b,d));")

	merged := e.path("merged.json")
	e.mustRun("merge", t1, t2, "-o", merged)

	if out := e.mustRun("equal", merged, both); !strings.Contains(out, "equal") {
		t.Errorf("equal output = %q", out)
	}
	if _, err := e.run("equal", t1, t2); !errors.Is(err, errDiffer) {
		t.Errorf("equal t1 t2: err = %v, want errDiffer", err)
	}

	canon := e.mustRun("canon", merged)
	data, err := os.ReadFile(both)
	if err != nil {
		t.Fatal(err)
	}
	if canon != string(data) {
		t.Error("canonical output of equal DAGs should be byte-identical")
	}
}

func TestTrimAndHistories(t *testing.T) {
	e := newTestEnv(t)
	both := e.build("both", "((a,b),(c,d));", "((a,c),(b,d));")

	trimmed := e.path("trimmed.json")
	e.mustRun("trim", both, "-o", trimmed)
	if got := e.mustRun("count", trimmed); got != "2\n" {
		t.Errorf("trimmed count = %q, want 2 (all histories tie)", got)
	}

	out := e.mustRun("histories", both)
	if lines := strings.Count(out, ";\n"); lines != 2 {
		t.Errorf("histories printed %d trees, want 2:\n%s", lines, out)
	}
	out = e.mustRun("histories", "-n", "1", both)
	if lines := strings.Count(out, ";\n"); lines != 1 {
		t.Errorf("histories -n 1 printed %d trees", lines)
	}
	if _, err := e.run("histories", "-f", "xml", both); err == nil {
		t.Error("invalid format should fail")
	}
}

func TestSupport(t *testing.T) {
	e := newTestEnv(t)
	both := e.build("both", "((a,b),(c,d));", "((a,c),(b,d));")

	for _, args := range [][]string{{"support", both}, {"support", "--adjusted", both}} {
		out := e.mustRun(args...)
		if !strings.Contains(out, "Support") {
			t.Errorf("%v: missing table header:\n%s", args, out)
		}
		// Every ancestral node lies in exactly one of the two topologies.
		if n := strings.Count(out, "0.5000"); n != 6 {
			t.Errorf("%v: %d nodes at 0.5000, want 6:\n%s", args, n, out)
		}
	}

	if out := e.mustRun("support", "--min", "0.6", both); strings.Contains(out, "0.5000") {
		t.Errorf("--min 0.6 kept low-support nodes:\n%s", out)
	}
}

func TestRenderDOT(t *testing.T) {
	e := newTestEnv(t)
	both := e.build("both", "((a,b),(c,d));")

	out := e.mustRun("render", both, "--edge-mutations")
	if !strings.HasPrefix(out, "digraph G {") {
		t.Errorf("render output = %q", out)
	}
	if _, err := e.run("render", both, "-o", e.path("out.gif")); err == nil {
		t.Error("unknown extension should fail")
	}
}

func TestConfigFlag(t *testing.T) {
	e := newTestEnv(t)
	cfg := e.write("hdag.toml", "[cache]\nbackend = \"none\"\n")
	out := e.mustRun("--config", cfg, "cache", "clear")
	if !strings.Contains(out, "only the file cache") {
		t.Errorf("cache clear with backend none = %q", out)
	}

	bad := e.write("bad.toml", "[log]\nlevel = \"loud\"\n")
	if _, err := e.run("--config", bad, "cache", "path"); err == nil {
		t.Error("invalid config should fail")
	}
	if _, err := e.run("--config", e.path("missing.toml"), "cache", "path"); err == nil {
		t.Error("missing explicit config should fail")
	}
}

func TestBuildRequiresInput(t *testing.T) {
	e := newTestEnv(t)
	if _, err := e.run("build"); err == nil {
		t.Error("build without inputs should fail")
	}
}

func TestCompletion(t *testing.T) {
	e := newTestEnv(t)
	out := e.mustRun("completion", "bash")
	if !strings.Contains(out, "hdag") {
		t.Error("bash completion should mention hdag")
	}
}
