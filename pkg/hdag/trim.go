package hdag

// TrimOptimal returns a new DAG holding exactly the histories of d whose
// score under fn is minimal (or maximal when maximize is set). d is not
// modified.
//
// Within each clade only the edges achieving the clade's best score are
// kept, then nodes no longer reachable from the root are dropped.
func (d *DAG) TrimOptimal(fn ScoreFunc, maximize bool) (*DAG, error) {
	opt := d.optima(fn, maximize)
	out := newDAG(d.reference)
	out.refID = d.refID

	ids := make(map[NodeID]NodeID)
	var copyNode func(id NodeID) (NodeID, error)
	copyNode = func(id NodeID) (NodeID, error) {
		if nid, ok := ids[id]; ok {
			return nid, nil
		}
		n := d.nodes[id]
		var keep []NodeID
		for _, targets := range n.children {
			best, first := 0, true
			for _, t := range targets {
				s := opt[t].score + fn(n.Label, d.nodes[t].Label)
				if first || (maximize && s > best) || (!maximize && s < best) {
					best, first = s, false
				}
			}
			for _, t := range targets {
				if opt[t].score+fn(n.Label, d.nodes[t].Label) == best {
					keep = append(keep, t)
				}
			}
		}
		children := make([]NodeID, len(keep))
		for i, t := range keep {
			var err error
			if children[i], err = copyNode(t); err != nil {
				return 0, err
			}
		}
		nid, _ := out.addNode(n.Label, n.clades)
		for _, c := range children {
			if _, err := out.addEdge(nid, c); err != nil {
				return 0, structural(err, "trim")
			}
		}
		ids[id] = nid
		return nid, nil
	}

	root, err := copyNode(d.root)
	if err != nil {
		return nil, err
	}
	out.root = root
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
