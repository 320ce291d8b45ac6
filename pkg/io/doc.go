// Package io reads and writes history DAGs and the trees they are built from.
//
// # Exchange Format
//
// A DAG is persisted as the JSON rendering of its [hdag.Form]:
//
//	{
//	  "refseq": ["MN908947", "ACGT..."],
//	  "sorted": true,
//	  "compact_genomes": [[], [[1, ["A", "C"]], [3, ["G", "T"]]], [[3, ["G", "T"]]]],
//	  "leaf_names": ["", "s1", "s2"],
//	  "nodes": [[1, []], [2, []], [0, [[1], [2]]], [-1, [[1, 2]]]],
//	  "edges": [[2, 0, 0], [2, 1, 1], [3, 2, 0]]
//	}
//
// Fields:
//   - refseq: reference sequence id and the reference sequence itself
//   - sorted: whether the form is canonical; equality requires it
//   - compact_genomes: one mutation list per label, each mutation [site, [ref, alt]]
//     with 1-based sites
//   - leaf_names: optional, parallel to compact_genomes; empty for internal labels
//   - nodes: [label_idx, clades] in postorder, the UA node (label -1) last;
//     each clade lists the label indices of its leaves
//   - edges: [parent_idx, child_idx, clade_idx]
//
// [WriteJSON] always writes the canonical, sorted form. [EncodeForm] and
// [DecodeForm] move raw forms, including unsorted ones produced by other
// tools. [ReadJSON] validates what it decodes and reports problems as
// MALFORMED_EXCHANGE_FORM errors.
//
// # Tree Inputs
//
// Trees are read from Newick ([ReadNewick]) with leaf sequences from FASTA
// ([ReadFASTA]), or from a JSON tree document ([ReadTreeJSON]) carrying the
// reference and per-node sequences.
//
// # Concurrency
//
// All functions are safe to call concurrently with other readers of the same
// DAG, but not with concurrent modifications to it.
package io
