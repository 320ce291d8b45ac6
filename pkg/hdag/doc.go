// Package hdag implements the history DAG: a directed acyclic graph that
// compactly stores a large collection of phylogenetic trees whose nodes are
// annotated with ancestral sequences ("histories").
//
// # Overview
//
// Each node carries a [Label] (a compact genome, plus a name on leaves) and a
// set of child clades: for every child subtree, the set of leaves below it.
// Outgoing edges are grouped by clade. A history is obtained by starting at
// the universal ancestor (UA) root and, at every reached node, choosing one
// edge from every clade. Sharing nodes between histories makes the number of
// represented trees grow multiplicatively with the number of alternatives.
//
// Nodes are identified structurally by (label, clade set). Building and
// merging intern nodes by that key, so identical subtrees from different
// trees collapse into one node and the edges below them are shared.
//
// # Building and Merging
//
// Convert an annotated tree with [FromTree], then combine DAGs with
// [DAG.Merge] (in place) or [Merge] (into a fresh copy):
//
//	d1, _ := hdag.FromTree(t1, ref, hdag.BuildOptions{})
//	d2, _ := hdag.FromTree(t2, ref, hdag.BuildOptions{})
//	merged, err := hdag.Merge(d1, d2)
//
// The merged DAG contains every history of every input. Because clades of
// different trees may recombine at shared nodes, it can also contain new
// histories built from parts of several inputs.
//
// # Queries
//
// All queries are dynamic programs over a postorder traversal and never
// enumerate histories:
//
//   - [DAG.CountHistories]: exact count as a big integer
//   - [DAG.ScoreHistogram]: distribution of history scores under a [ScoreFunc]
//   - [DAG.MinScore], [DAG.MaxScore]: optimal score and how many histories reach it
//   - [DAG.TrimOptimal]: a new DAG holding only the optimal histories
//   - [DAG.CountNodes], [DAG.CountEdges]: per-node and per-edge history support
//   - [DAG.Summarize]: sizes, count and histogram together
//
// [DAG.Histories] enumerates histories as trees and is meant for small DAGs.
//
// # Canonical Form and Equality
//
// [DAG.Canonicalize] flattens a DAG into a sorted [Form]: a label table, nodes
// in canonical postorder and index-based edges. [Equal] compares DAGs through
// their forms, so construction order never matters. [FromForm] rebuilds a DAG
// and is what the JSON exchange format in package io decodes into.
//
// # Errors
//
// Constructors validate once ([DAG.Validate]) and report failures as coded
// errors from package errors: STRUCTURAL_VIOLATION, INCOMPARABLE_REFERENCE
// or MALFORMED_EXCHANGE_FORM, each wrapping a sentinel such as
// [ErrGraphHasCycle]. Queries on a constructed DAG never fail.
package hdag
