// Package pkg provides the libraries behind hdag, a tool for merging
// phylogenetic trees into history DAGs.
//
// # Overview
//
// A history DAG represents a set of phylogenetic trees whose nodes carry
// sequences. Trees that share subtrees share DAG nodes, so the DAG is
// exponentially smaller than its set of histories and can be queried for
// counts and parsimony scores without enumerating them.
//
//  1. [genome] - Sequences stored as mutations against a reference
//  2. [tree] - Input trees, Fitch reconstruction and normalization
//  3. [hdag] - The history DAG: build, merge, count, score, canonicalize
//  4. [io] - Exchange format, Newick, FASTA and tree documents
//  5. [pipeline] - Parallel build and merge of many trees, with caching
//  6. [render] - Graphviz drawings of a DAG
//
// # Architecture
//
// The typical data flow:
//
//	Newick + FASTA / tree JSON
//	         ↓
//	    [io] + [tree] (parse, annotate, reconstruct)
//	         ↓
//	    [hdag.FromTree] per tree, in parallel ([pipeline])
//	         ↓
//	    [hdag.Merge] into one DAG
//	         ↓
//	    queries, trimming, exchange-format JSON, rendering
//
// Supporting packages: [cache] stores merged DAGs by input hash,
// [observability] reports pipeline, cache and HTTP events, [errors] defines
// the coded errors every package returns, and [buildinfo] carries version
// information.
//
// [genome]: github.com/matzehuels/historydag/pkg/genome
// [tree]: github.com/matzehuels/historydag/pkg/tree
// [hdag]: github.com/matzehuels/historydag/pkg/hdag
// [hdag.FromTree]: github.com/matzehuels/historydag/pkg/hdag.FromTree
// [hdag.Merge]: github.com/matzehuels/historydag/pkg/hdag.Merge
// [io]: github.com/matzehuels/historydag/pkg/io
// [pipeline]: github.com/matzehuels/historydag/pkg/pipeline
// [render]: github.com/matzehuels/historydag/pkg/render
// [cache]: github.com/matzehuels/historydag/pkg/cache
// [observability]: github.com/matzehuels/historydag/pkg/observability
// [errors]: github.com/matzehuels/historydag/pkg/errors
// [buildinfo]: github.com/matzehuels/historydag/pkg/buildinfo
package pkg
