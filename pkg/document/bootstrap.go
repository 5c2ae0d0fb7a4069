package document

import (
	"github.com/dd0wney/cluso-tsg/pkg/logging"
	"github.com/dd0wney/cluso-tsg/pkg/storage"
)

// bootstrapChains completes a section that lacks nodes or edges from its
// chains: even chain positions become placeholder nodes and odd positions
// placeholder edges joining their neighbours. Declared elements are kept.
func (d *Document) bootstrapChains(g *storage.GraphSection) {
	if g.NodeCount() > 0 && g.EdgeCount() > 0 {
		return
	}

	chains := g.Chains()
	if len(chains) == 0 {
		if g.ID != DefaultGraphID {
			d.opts.logger.Warn("graph has no nodes/edges defined and no chains available",
				logging.GraphID(g.ID))
			d.opts.metrics.RecordParseWarning("no_elements")
		}
		return
	}

	var nodes, edges int
	for _, chain := range chains {
		for i, el := range chain.Elements {
			if i%2 == 0 {
				if _, ok := g.NodeIndexOf(el.ID); !ok {
					g.AddNode(storage.Node{ID: el.ID})
					nodes++
				}
				continue
			}
			if _, ok := g.EdgeIndexOf(el.ID); ok {
				continue
			}
			source, sink := chain.Elements[i-1].ID, chain.Elements[i+1].ID
			if _, err := g.AddEdge(source, sink, storage.Edge{ID: el.ID}); err != nil {
				d.opts.logger.Warn("chain edge skipped", logging.GraphID(g.ID),
					logging.GroupID(chain.ID), logging.EdgeID(el.ID), logging.Error(err))
				continue
			}
			edges++
		}
	}
	d.opts.logger.Debug("graph bootstrapped from chains", logging.GraphID(g.ID),
		logging.Int("nodes", nodes), logging.Int("edges", edges))
}
