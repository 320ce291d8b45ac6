package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/matzehuels/historydag/pkg/cache"
	herrors "github.com/matzehuels/historydag/pkg/errors"
	"github.com/matzehuels/historydag/pkg/hdag"
	"github.com/matzehuels/historydag/pkg/observability"
	"github.com/matzehuels/historydag/pkg/tree"
)

const ref = "AAAA"

var leafSeqs = map[string]string{"a": "CAAA", "b": "ACAA", "c": "AACA", "d": "AAAC"}

// pairing builds ((p,q),(r,s)) with every internal node at the reference.
func pairing(p, q, r, s string) *tree.Node {
	leaf := func(n string) *tree.Node { return &tree.Node{Name: n, Sequence: leafSeqs[n]} }
	return &tree.Node{Sequence: ref, Children: []*tree.Node{
		{Sequence: ref, Children: []*tree.Node{leaf(p), leaf(q)}},
		{Sequence: ref, Children: []*tree.Node{leaf(r), leaf(s)}},
	}}
}

func threeTopologies() []Input {
	return []Input{
		{Name: "t1", Tree: pairing("a", "b", "c", "d"), Reference: ref},
		{Name: "t2", Tree: pairing("a", "c", "b", "d"), Reference: ref},
		{Name: "t3", Tree: pairing("a", "d", "b", "c"), Reference: ref},
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
		wantErr bool
	}{
		{"default", 0, DefaultWorkers, false},
		{"explicit", 3, 3, false},
		{"capped", 1000, MaxWorkers, false},
		{"negative", -1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Workers: tt.workers}
			err := opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if opts.Workers != min(tt.want, MaxWorkers) {
				t.Errorf("Workers = %d, want %d", opts.Workers, tt.want)
			}
			if opts.Logger == nil {
				t.Error("Logger not defaulted")
			}
		})
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), threeTopologies(), Options{Workers: 2, ReferenceID: "toy"})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit {
		t.Error("null cache reported a hit")
	}
	if got := res.DAG.CountHistories().Int64(); got != 3 {
		t.Errorf("histories = %d, want 3", got)
	}
	if res.Stats.Nodes != 14 || res.DAG.NodeCount() != 14 {
		t.Errorf("nodes = %d, want 14", res.Stats.Nodes)
	}
	if res.Stats.Trees != 3 {
		t.Errorf("trees = %d, want 3", res.Stats.Trees)
	}
	if res.DAG.ReferenceID() != "toy" {
		t.Errorf("reference id = %q", res.DAG.ReferenceID())
	}
}

func TestExecuteMatchesMerge(t *testing.T) {
	inputs := threeTopologies()
	var dags []*hdag.DAG
	for _, in := range inputs {
		d, err := hdag.FromTree(in.Tree, in.Reference, hdag.BuildOptions{})
		if err != nil {
			t.Fatal(err)
		}
		dags = append(dags, d)
	}
	want, err := hdag.Merge(dags...)
	if err != nil {
		t.Fatal(err)
	}

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), inputs, Options{Workers: 3})
	if err != nil {
		t.Fatal(err)
	}
	eq, err := hdag.Equal(res.DAG, want)
	if err != nil || !eq {
		t.Errorf("pipeline result differs from direct merge (err=%v)", err)
	}
}

func TestExecuteCacheHitTakesReferenceID(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	for i, id := range []string{"first", "second", ""} {
		res, err := r.Execute(ctx, threeTopologies(), Options{ReferenceID: id})
		if err != nil {
			t.Fatal(err)
		}
		if hit := i > 0; res.CacheHit != hit {
			t.Errorf("run %d: CacheHit = %v, want %v", i, res.CacheHit, hit)
		}
		if got := res.DAG.ReferenceID(); got != id {
			t.Errorf("run %d: ReferenceID = %q, want %q", i, got, id)
		}
	}
}

func TestExecuteCaches(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	first, err := r.Execute(ctx, threeTopologies(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Fatal("first run should miss")
	}

	second, err := r.Execute(ctx, threeTopologies(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Fatal("second run should hit")
	}
	if second.CacheKey != first.CacheKey {
		t.Errorf("keys differ: %s vs %s", first.CacheKey, second.CacheKey)
	}
	eq, err := hdag.Equal(first.DAG, second.DAG)
	if err != nil || !eq {
		t.Errorf("cached DAG differs (err=%v)", err)
	}

	refreshed, err := r.Execute(ctx, threeTopologies(), Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheHit {
		t.Error("refresh should bypass the cache")
	}

	collapsed, err := r.Execute(ctx, threeTopologies(), Options{Collapse: true})
	if err != nil {
		t.Fatal(err)
	}
	if collapsed.CacheKey == first.CacheKey {
		t.Error("collapse option should change the cache key")
	}
}

func TestExecuteCorruptCacheEntry(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	first, err := r.Execute(ctx, threeTopologies(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(ctx, first.CacheKey, []byte("not json"), 0); err != nil {
		t.Fatal(err)
	}
	again, err := r.Execute(ctx, threeTopologies(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if again.CacheHit {
		t.Error("undecodable entry should be a miss")
	}
}

func TestExecuteErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	if _, err := r.Execute(ctx, nil, Options{}); !herrors.Is(err, herrors.ErrCodeInvalidInput) {
		t.Errorf("no inputs: err = %v", err)
	}

	mixed := threeTopologies()
	mixed[1].Reference = "CCCC"
	if _, err := r.Execute(ctx, mixed, Options{}); !herrors.Is(err, herrors.ErrCodeIncomparable) {
		t.Errorf("mixed references: err = %v", err)
	}

	dup := threeTopologies()
	dup[2].Tree = pairing("a", "a", "b", "c")
	if _, err := r.Execute(ctx, dup, Options{}); !errors.Is(err, hdag.ErrDuplicateLeaf) {
		t.Errorf("duplicate leaf: err = %v", err)
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil, nil, nil).Execute(ctx, threeTopologies(), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLoadNewick(t *testing.T) {
	dir := t.TempDir()
	nwk := filepath.Join(dir, "trees.nwk")
	fa := filepath.Join(dir, "seqs.fasta")
	writeFile(t, nwk, "((a,b),(c,d));\n((a,c),(b,d));\n")
	writeFile(t, fa, ">reference\nAAAA\n>a\nCAAA\n>b\nACAA\n>c\nAACA\n>d\nAAAC\n")

	inputs, err := LoadNewick(nwk, fa, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != 2 {
		t.Fatalf("got %d inputs, want 2", len(inputs))
	}
	if inputs[1].Name != "trees.nwk#2" || inputs[0].Reference != ref {
		t.Errorf("input = %+v", inputs[1])
	}

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), inputs, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.DAG.CountHistories().Int64(); got < 2 {
		t.Errorf("histories = %d, want at least 2", got)
	}
}

func TestLoadNewickMissingLeaf(t *testing.T) {
	dir := t.TempDir()
	nwk := filepath.Join(dir, "trees.nwk")
	fa := filepath.Join(dir, "seqs.fasta")
	writeFile(t, nwk, "((a,b),(c,e));\n")
	writeFile(t, fa, ">a\nCAAA\n>b\nACAA\n>c\nAACA\n>d\nAAAC\n")

	if _, err := LoadNewick(nwk, fa, ref); !errors.Is(err, tree.ErrUnknownLeaf) {
		t.Errorf("err = %v, want ErrUnknownLeaf", err)
	}
	if _, err := LoadNewick(nwk, fa, ""); !herrors.Is(err, herrors.ErrCodeInvalidInput) {
		t.Errorf("missing reference: err = %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

type cacheRecorder struct {
	observability.NoopCacheHooks
	mu   sync.Mutex
	hits map[string]int
}

func (c *cacheRecorder) OnCacheHit(_ context.Context, keyType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits[keyType]++
}

func TestBuildAllReusesCachedTrees(t *testing.T) {
	rec := &cacheRecorder{hits: map[string]int{}}
	observability.SetCacheHooks(rec)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	inputs := threeTopologies()
	if _, err := r.Execute(ctx, inputs[:2], Options{}); err != nil {
		t.Fatal(err)
	}

	res, err := r.Execute(ctx, inputs, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit {
		t.Error("new input set should miss the merge cache")
	}
	if rec.hits["build"] != 2 {
		t.Errorf("build cache hits = %d, want 2", rec.hits["build"])
	}
	if got := res.DAG.CountHistories().Int64(); got != 3 {
		t.Errorf("histories = %d, want 3", got)
	}
}
