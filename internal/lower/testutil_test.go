package lower

import (
	"testing"

	"github.com/mjcc/firmlower/internal/firm"
	"github.com/mjcc/firmlower/internal/llir"
)

// lowerBuilt runs the full pipeline (driver + resolver + finalizer) over a
// *firm.Built produced by the firm test DSL, failing the test on error.
func lowerBuilt(t *testing.T, built *firm.Built) *llir.LlirGraph {
	t.Helper()
	d := NewFirmToLlir(built.Program, built.Method, built.Graph)
	g, _, err := d.Lower()
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	return g
}

// blockFor maps a source block name back to the LlirGraph block it lowered
// to. The driver appends exactly one llir.BasicBlock per firm.Graph.Blocks
// entry, in the same order, before any resolver-inserted splitter blocks —
// so position in firm.Graph.Blocks is position in llir.LlirGraph.Blocks.
func blockFor(t *testing.T, built *firm.Built, g *llir.LlirGraph, name string) *llir.BasicBlock {
	t.Helper()
	target := built.Blocks[name]
	for i, b := range built.Graph.Blocks {
		if b == target {
			return g.Blocks[i]
		}
	}
	t.Fatalf("block %q not found in source graph", name)
	return nil
}

// bodyOps returns the Opcode of every non-terminator instruction in b, in
// emission order, for compact assertions against expected instruction
// shapes.
func bodyOps(b *llir.BasicBlock) []llir.Opcode {
	var ops []llir.Opcode
	for _, n := range b.Body() {
		ops = append(ops, n.Op)
	}
	return ops
}

// findOp returns the first node of the given opcode in b's body, or nil.
func findOp(b *llir.BasicBlock, op llir.Opcode) *llir.LlirNode {
	for _, n := range b.Body() {
		if n.Op == op {
			return n
		}
	}
	return nil
}
