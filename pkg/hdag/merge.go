package hdag

import (
	herrors "github.com/matzehuels/historydag/pkg/errors"
)

// Merge folds every input into a copy of the first. The inputs are not
// modified. The result's history set contains every input history.
func Merge(dags ...*DAG) (*DAG, error) {
	if len(dags) == 0 {
		return nil, herrors.New(herrors.ErrCodeInvalidInput, "nothing to merge")
	}
	out := dags[0].Copy()
	for i, o := range dags[1:] {
		if err := out.Merge(o); err != nil {
			return nil, herrors.Wrap(herrors.GetCode(err), err, "merge input %d", i+1)
		}
	}
	return out, nil
}

// Merge adds every node and edge of o to d in place. o is not modified.
//
// Nodes are interned by structural key, so shared subtrees unify and edges
// are de-duplicated by endpoints. Both DAGs must share the reference
// sequence and the leaf set, otherwise an INCOMPARABLE_REFERENCE error is
// returned.
//
// Merge is transactional: if the union would violate an invariant (a cycle
// through unifurcating nodes with equal labels), every addition is rolled
// back and d is left as it was.
func (d *DAG) Merge(o *DAG) error {
	if d.reference != o.reference {
		return herrors.Wrap(herrors.ErrCodeIncomparable, ErrReferenceMismatch, "merge")
	}
	if !d.Root().union.Equal(o.Root().union) {
		return herrors.Wrap(herrors.ErrCodeIncomparable, ErrLeafSetMismatch, "merge")
	}

	tx := d.begin()
	ids := make([]NodeID, len(o.nodes))
	for _, oid := range o.Postorder() {
		on := o.nodes[oid]
		id, _ := d.addNode(on.Label, on.clades)
		ids[oid] = id
		for _, targets := range on.children {
			for _, t := range targets {
				added, err := d.addEdge(id, ids[t])
				if err != nil {
					d.rollback(tx)
					return structural(err, "merge")
				}
				if added {
					tx.edges = append(tx.edges, [2]NodeID{id, ids[t]})
				}
			}
		}
	}
	if err := d.detectCycles(); err != nil {
		d.rollback(tx)
		return structural(err, "merge")
	}
	return nil
}

// journal records additions made by one Merge so they can be undone.
type journal struct {
	base  int
	edges [][2]NodeID
}

func (d *DAG) begin() *journal { return &journal{base: len(d.nodes)} }

func (d *DAG) rollback(tx *journal) {
	for i := len(tx.edges) - 1; i >= 0; i-- {
		p, c := d.nodes[tx.edges[i][0]], d.nodes[tx.edges[i][1]]
		ci := p.cladeIndex(c.union)
		p.children[ci] = p.children[ci][:len(p.children[ci])-1]
		c.parents = c.parents[:len(c.parents)-1]
		d.edges--
	}
	for _, n := range d.nodes[tx.base:] {
		delete(d.index, n.key)
	}
	d.nodes = d.nodes[:tx.base]
}
