package firm

import (
	"testing"

	"gotest.tools/v3/assert"
)

// TestFunWiresControlEdges checks that the Fun/Bloc DSL produces the control
// edges (Block.Preds, Node.Target) a multi-block program needs, matching the
// shape cmd/internal/ssa/func_test.go's Fun/Bloc asserts implicitly by using
// it to build every other test in that package.
func TestFunWiresControlEdges(t *testing.T) {
	b := Fun("entry", []Mode{ModeIs, ModeIs},
		Bloc("entry",
			ProjVal("a", ModeIs, "start", 0),
			ProjVal("b", ModeIs, "start", 1),
			Val("sum", KindAdd, ModeIs, "a", "b"),
			Ret("sum")))

	entry := b.Blocks["entry"]
	assert.Equal(t, b.Graph.Start.Control.Kind, KindJmp)
	assert.Equal(t, b.Graph.Start.Control.Target, entry)
	assert.Equal(t, len(entry.Preds), 1)
	assert.Equal(t, entry.Preds[0], b.Graph.Start.Control)

	sum := b.Values["sum"]
	assert.Equal(t, sum.Kind, KindAdd)
	assert.Equal(t, len(sum.Args), 2)
	assert.Equal(t, sum.Args[0], b.Values["a"])
	assert.Equal(t, sum.Args[1], b.Values["b"])
}

// TestPhiPredOrderMatchesControlEdges verifies the invariant the φ resolver
// depends on: a join block's Preds order matches the order its Bloc/Goto
// calls were written in, so Phi operand i always corresponds to Preds[i].
func TestPhiPredOrderMatchesControlEdges(t *testing.T) {
	b := Fun("entry", []Mode{ModeIs, ModeIs},
		Bloc("entry",
			ProjVal("a", ModeIs, "start", 0),
			ProjVal("b", ModeIs, "start", 1),
			CmpVal("cmp", RelLess, "a", "b"),
			Branch("cmp", "then", "else")),
		Bloc("then", Goto("join")),
		Bloc("else", Goto("join")),
		Bloc("join",
			PhiVal("x", ModeIs, "b", "a"),
			Ret("x")))

	join := b.Blocks["join"]
	assert.Equal(t, len(join.Preds), 2)
	assert.Equal(t, join.Preds[0].Block, b.Blocks["then"])
	assert.Equal(t, join.Preds[1].Block, b.Blocks["else"])
}

// TestBackEdgesTracksUses confirms the precomputed adjacency map reports
// every consumer of a node, and that it panics if read before being
// enabled, matching an upstream enable/disable contract.
func TestBackEdgesTracksUses(t *testing.T) {
	b := Fun("entry", []Mode{ModeIs, ModeIs},
		Bloc("entry",
			ProjVal("a", ModeIs, "start", 0),
			ProjVal("b", ModeIs, "start", 1),
			Val("sum", KindAdd, ModeIs, "a", "b"),
			Ret("sum")))

	assert.Assert(t, panics(func() { b.Graph.Uses(b.Values["a"]) }))

	b.Graph.EnableBackEdges()
	defer b.Graph.DisableBackEdges()

	uses := b.Graph.Uses(b.Values["a"])
	assert.Equal(t, len(uses), 1)
	assert.Equal(t, uses[0], b.Values["sum"])
}

func panics(f func()) (didPanic bool) {
	defer func() {
		if recover() != nil {
			didPanic = true
		}
	}()
	f()
	return false
}

// TestAllNodesDeterministicOrder checks the id-ordering AllNodes promises:
// any set iterated for effect is ordered by source-node id.
func TestAllNodesDeterministicOrder(t *testing.T) {
	b := Fun("entry", []Mode{ModeIs, ModeIs},
		Bloc("entry",
			ProjVal("a", ModeIs, "start", 0),
			ProjVal("b", ModeIs, "start", 1),
			Val("sum", KindAdd, ModeIs, "a", "b"),
			Ret("sum")))

	nodes := b.Graph.AllNodes()
	for i := 1; i < len(nodes); i++ {
		assert.Assert(t, nodes[i-1].ID < nodes[i].ID)
	}
}

// TestKeepAlivePinsInfiniteLoopBlock exercises the infinite-loop carve-out:
// KeepAlive records, on End, an edge pinning a block that has no Return.
func TestKeepAlivePinsInfiniteLoopBlock(t *testing.T) {
	b := Fun("loop", nil,
		Bloc("loop", Goto("loop")))
	b.KeepAlive("loop")

	foundKeepAlive := false
	for _, a := range b.Graph.EndNode.Args {
		if a.Kind == KindKeepAlive && a.PinnedBlock == b.Blocks["loop"] {
			foundKeepAlive = true
		}
	}
	assert.Assert(t, foundKeepAlive)
}
