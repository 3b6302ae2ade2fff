package lower

import "github.com/mjcc/firmlower/internal/firm"

// edgeAnalysis is the block/edge analyzer: a single read-only pass
// over a method's blocks recording each block's predecessor count and
// successor count, used afterward purely to answer isCritical.
type edgeAnalysis struct {
	incoming map[*firm.Block]int
	outgoing map[*firm.Block]int
}

// analyzeEdges walks g's blocks once and builds the incoming/outgoing
// tables isCritical reads from for the rest of the lowering pass.
func analyzeEdges(g *firm.Graph) *edgeAnalysis {
	ea := &edgeAnalysis{
		incoming: make(map[*firm.Block]int),
		outgoing: make(map[*firm.Block]int),
	}
	all := append([]*firm.Block{g.Start, g.End}, g.Blocks...)
	for _, b := range all {
		ea.incoming[b] = b.PredCount()
		ea.outgoing[b] = successorCount(b)
	}
	return ea
}

// successorCount returns the number of distinct control-flow
// successors b's terminator reaches: 0 for Return (or an unset
// terminator), 1 for Jmp, 2 for Cond.
func successorCount(b *firm.Block) int {
	if b.Control == nil {
		return 0
	}
	switch b.Control.Kind {
	case firm.KindJmp:
		return 1
	case firm.KindCond:
		return 2
	default:
		return 0
	}
}

// isCritical reports whether the control edge whose tail is tail and
// whose head block is head is a critical edge: tail's block has more
// than one successor and head has more than one predecessor.
func (ea *edgeAnalysis) isCritical(tail *firm.Node, head *firm.Block) bool {
	return ea.incoming[head] > 1 && ea.outgoing[tail.Block] > 1
}
