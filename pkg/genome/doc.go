// Package genome provides compact genomes: nucleotide sequences stored as a
// sparse set of substitutions against a shared reference sequence.
//
// A [CompactGenome] is the identity content of a history DAG node label. Two
// genomes are equal iff they record the same mutations relative to the same
// reference, so a 30kb viral genome differing from the reference at a dozen
// sites costs a dozen entries rather than 30k bytes.
//
// # Basic Usage
//
//	ref := "ACGTACGT"
//	g, _ := genome.FromSequence("ACGAACGT", ref)
//	fmt.Println(g)            // T4A
//	g, _ = g.Mutate("C2G", false)
//	seq, _ := g.Sequence()    // AGGAACGT
//
// Mutation strings use 1-based sites and the form <old base><site><new base>.
//
// # Distances
//
// [Hamming] counts differing sites and [Diff] lists the substitutions that
// turn a parent genome into a child genome. Both require the genomes to share
// a reference; comparing genomes built from different references is an error
// rather than a silently meaningless number.
package genome
