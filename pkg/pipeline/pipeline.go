// Package pipeline provides the build → merge pipeline shared by the CLI and
// the query service.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Build: convert every input tree to a single-history DAG. Trees are
//     independent, so they are converted in parallel by a bounded pool.
//  2. Merge: fold the DAGs into one, in input order, checking for
//     cancellation between steps.
//
// The merged DAG depends only on the input contents and the build options,
// so its exchange-format encoding is cached under a key derived from the
// input hashes.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	inputs, err := pipeline.LoadNewick("trees.nwk", "leaves.fasta", ref)
//	result, err := runner.Execute(ctx, inputs, pipeline.Options{Collapse: true})
//	fmt.Println(result.DAG.CountHistories())
package pipeline

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/historydag/pkg/cache"
	herrors "github.com/matzehuels/historydag/pkg/errors"
	"github.com/matzehuels/historydag/pkg/hdag"
	"github.com/matzehuels/historydag/pkg/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultTTL is how long built and merged DAGs stay cached.
	DefaultTTL = 7 * 24 * time.Hour

	// MaxWorkers caps the build pool regardless of configuration.
	MaxWorkers = 64
)

// DefaultWorkers is the build pool size when none is configured.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Input is one tree to build, with the reference its sequences align to.
type Input struct {
	// Name identifies the input in logs and errors, e.g. "trees.nwk#3".
	Name      string
	Tree      *tree.Node
	Reference string
}

// Hash identifies the input by content.
func (in Input) Hash() string {
	return cache.Hash([]byte(in.Reference + "\n" + in.Tree.Canonical()))
}

// Options configures a pipeline run.
type Options struct {
	// ReferenceID is recorded on the merged DAG.
	ReferenceID string
	// Collapse removes zero-length internal edges before building.
	Collapse bool
	// Workers bounds parallel builds. Zero means DefaultWorkers.
	Workers int
	// Refresh skips the cache lookup and overwrites the entry.
	Refresh bool
	// TTL is the cache entry lifetime. Zero means DefaultTTL.
	TTL time.Duration

	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults fills in defaults and rejects invalid settings.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Workers < 0 {
		return herrors.New(herrors.ErrCodeInvalidInput, "workers must not be negative, got %d", o.Workers)
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	o.Workers = min(o.Workers, MaxWorkers)
	if o.TTL == 0 {
		o.TTL = DefaultTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// BuildOptions returns the options passed to [hdag.FromTree].
func (o *Options) BuildOptions() hdag.BuildOptions {
	return hdag.BuildOptions{Collapse: o.Collapse}
}

// Result is the outcome of [Runner.Execute].
type Result struct {
	DAG      *hdag.DAG
	CacheKey string
	CacheHit bool
	Stats    Stats
}

// Stats holds timings and sizes of a run.
type Stats struct {
	Trees     int
	BuildTime time.Duration
	MergeTime time.Duration
	Nodes     int
	Edges     int
}

func validateInputs(inputs []Input) error {
	if len(inputs) == 0 {
		return herrors.New(herrors.ErrCodeInvalidInput, "no input trees")
	}
	ref := inputs[0].Reference
	for _, in := range inputs {
		if in.Tree == nil {
			return herrors.New(herrors.ErrCodeInvalidInput, "%s: no tree", in.Name)
		}
		if in.Reference != ref {
			return herrors.Wrap(herrors.ErrCodeIncomparable, hdag.ErrReferenceMismatch,
				"%s: reference differs from %s", in.Name, inputs[0].Name)
		}
	}
	return nil
}

func inputError(in Input, err error) error {
	return fmt.Errorf("%s: %w", in.Name, err)
}

// ambiguousLeaves counts leaves whose sequence carries IUPAC ambiguity codes.
// Fitch reconstruction resolves them to a single base at each site.
func (in Input) ambiguousLeaves() int {
	n := 0
	for _, l := range in.Tree.Leaves() {
		if herrors.IsAmbiguous(l.Sequence) {
			n++
		}
	}
	return n
}
