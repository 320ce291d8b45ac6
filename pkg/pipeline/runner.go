package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/historydag/pkg/cache"
	"github.com/matzehuels/historydag/pkg/hdag"
	dagio "github.com/matzehuels/historydag/pkg/io"
	"github.com/matzehuels/historydag/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute builds and merges inputs, consulting the cache first.
func (r *Runner) Execute(ctx context.Context, inputs []Input, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	if err := validateInputs(inputs); err != nil {
		return nil, err
	}

	hashes := make([]string, len(inputs))
	for i, in := range inputs {
		hashes[i] = in.Hash()
	}
	key := r.Keyer.MergeKey(hashes, cache.BuildKeyOpts{
		Reference: inputs[0].Reference,
		Collapse:  opts.Collapse,
	})
	result := &Result{CacheKey: key, Stats: Stats{Trees: len(inputs)}}

	if !opts.Refresh {
		if d, ok := r.lookup(ctx, key, "merge"); ok {
			d.SetReferenceID(opts.ReferenceID)
			result.DAG, result.CacheHit = d, true
			result.Stats.Nodes, result.Stats.Edges = d.NodeCount(), d.EdgeCount()
			r.Logger.Info("loaded merged DAG from cache", "trees", len(inputs), "nodes", d.NodeCount())
			return result, nil
		}
	}

	buildStart := time.Now()
	dags, err := r.BuildAll(ctx, inputs, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.BuildTime = time.Since(buildStart)
	r.Logger.Info("built DAGs", "trees", len(dags), "duration", result.Stats.BuildTime)

	mergeStart := time.Now()
	d, err := r.MergeAll(ctx, dags)
	if err != nil {
		return nil, err
	}
	d.SetReferenceID(opts.ReferenceID)
	result.DAG = d
	result.Stats.MergeTime = time.Since(mergeStart)
	result.Stats.Nodes, result.Stats.Edges = d.NodeCount(), d.EdgeCount()
	r.Logger.Info("merged DAGs",
		"nodes", d.NodeCount(),
		"edges", d.EdgeCount(),
		"duration", result.Stats.MergeTime)

	r.store(ctx, key, "merge", d, opts.TTL)
	return result, nil
}

// BuildAll converts every input in parallel, bounded by opts.Workers. The
// first failure cancels the remaining builds. Results keep input order.
// Single-tree DAGs are cached under [cache.Keyer.BuildKey].
func (r *Runner) BuildAll(ctx context.Context, inputs []Input, opts Options) ([]*hdag.DAG, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	out := make([]*hdag.DAG, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := r.Keyer.BuildKey(in.Hash(), cache.BuildKeyOpts{
				Reference: in.Reference,
				Collapse:  opts.Collapse,
			})
			if !opts.Refresh {
				if d, ok := r.lookup(ctx, key, "build"); ok {
					out[i] = d
					return nil
				}
			}
			hooks.OnBuildStart(ctx, in.Name)
			start := time.Now()
			d, err := hdag.FromTree(in.Tree, in.Reference, opts.BuildOptions())
			nodes := 0
			if d != nil {
				nodes = d.NodeCount()
			}
			hooks.OnBuildComplete(ctx, in.Name, nodes, time.Since(start), err)
			if err != nil {
				return inputError(in, err)
			}
			r.Logger.Debug("built tree", "input", in.Name, "nodes", nodes, "ambiguous_leaves", in.ambiguousLeaves())
			r.store(ctx, key, "build", d, opts.TTL)
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// MergeAll folds dags into a copy of the first, in order. Merging stops
// with ctx.Err() when the context is cancelled between steps.
func (r *Runner) MergeAll(ctx context.Context, dags []*hdag.DAG) (*hdag.DAG, error) {
	if len(dags) == 0 {
		return hdag.Merge()
	}
	hooks := observability.Pipeline()
	out := dags[0].Copy()
	for i, d := range dags[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		err := out.Merge(d)
		hooks.OnMergeComplete(ctx, out.NodeCount(), out.EdgeCount(), time.Since(start), err)
		if err != nil {
			r.Logger.Warn("merge failed", "step", i+1, "err", err)
			return nil, err
		}
	}
	return out, nil
}

// lookup returns a cached DAG. Undecodable entries count as misses.
func (r *Runner) lookup(ctx context.Context, key, keyType string) (*hdag.DAG, bool) {
	hooks := observability.Cache()
	var data []byte
	var hit bool
	err := cache.RetryWithBackoff(ctx, 3, 100*time.Millisecond, func() error {
		var err error
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	if err != nil {
		r.Logger.Warn("cache lookup failed", "err", err)
		return nil, false
	}
	if !hit {
		hooks.OnCacheMiss(ctx, keyType)
		return nil, false
	}
	d, err := dagio.UnmarshalDAG(data)
	if err != nil {
		r.Logger.Warn("discarding undecodable cache entry", "key", key, "err", err)
		_ = r.Cache.Delete(ctx, key)
		hooks.OnCacheMiss(ctx, keyType)
		return nil, false
	}
	hooks.OnCacheHit(ctx, keyType)
	return d, true
}

func (r *Runner) store(ctx context.Context, key, keyType string, d *hdag.DAG, ttl time.Duration) {
	data, err := dagio.MarshalDAG(d)
	if err != nil {
		r.Logger.Warn("encode for cache failed", "err", err)
		return
	}
	err = cache.RetryWithBackoff(ctx, 3, 100*time.Millisecond, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
	if err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
