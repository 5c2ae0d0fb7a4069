package storage

// Statistics summarises the contents of a GraphSection
type Statistics struct {
	NodeCount        int
	EdgeCount        int
	PlaceholderNodes int
	GroupCount       int
	ChainCount       int
	ReadCount        int // distinct read ids across all nodes
	SourceCount      int
	SinkCount        int
}

// Statistics computes the current statistics of the section
func (g *GraphSection) Statistics() Statistics {
	stats := Statistics{
		NodeCount:  len(g.nodes),
		EdgeCount:  len(g.edges),
		GroupCount: len(g.groups),
	}

	reads := make(map[string]struct{})
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.IsPlaceholder() {
			stats.PlaceholderNodes++
		}
		for _, r := range n.Reads {
			reads[r.ID] = struct{}{}
		}
		if len(g.in[i]) == 0 {
			stats.SourceCount++
		}
		if len(g.out[i]) == 0 {
			stats.SinkCount++
		}
	}
	stats.ReadCount = len(reads)

	for _, grp := range g.groups {
		if grp.Kind == Chain {
			stats.ChainCount++
		}
	}
	return stats
}
