package lower

import "github.com/mjcc/firmlower/internal/firm"

// temporariedSet is the output of the φ pre-pass: the set of value-φ
// nodes whose accumulator register must be read into a fresh temporary
// before any other use in their own block, because another φ in that
// same block reads them directly as an operand (the swap problem).
type temporariedSet map[*firm.Node]bool

// computeTemporaried walks every node in g and marks operand φs that
// share a block with the φ consuming them. The pass is conservative:
// over-marking only costs an extra MovRegister, never produces wrong
// code.
func computeTemporaried(g *firm.Graph) temporariedSet {
	marked := make(temporariedSet)
	for _, n := range g.AllNodes() {
		if n.Kind != firm.KindPhi || n.Mode == firm.ModeM {
			continue // memory Phis lower to the block's memory input, not an accumulator
		}
		for _, operand := range n.Args {
			if operand.Kind == firm.KindPhi && operand.Mode != firm.ModeM && operand.Block == n.Block {
				marked[operand] = true
			}
		}
	}
	return marked
}
