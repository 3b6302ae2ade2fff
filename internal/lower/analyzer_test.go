package lower

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/mjcc/firmlower/internal/firm"
)

// TestAnalyzeEdgesDetectsCriticalEdge checks the isCritical predicate
// directly: an edge is critical exactly when its tail block has more than
// one successor and its head block has more than one predecessor.
func TestAnalyzeEdgesDetectsCriticalEdge(t *testing.T) {
	built := firm.Fun("entry", []firm.Mode{firm.ModeIs, firm.ModeIs},
		firm.Bloc("entry",
			firm.ProjVal("a", firm.ModeIs, "start", 0),
			firm.ProjVal("b", firm.ModeIs, "start", 1),
			firm.CmpVal("cmp", firm.RelLess, "a", "b"),
			firm.Branch("cmp", "join", "other")),
		firm.Bloc("other", firm.Goto("join")),
		firm.Bloc("join", firm.Ret("a")))

	ea := analyzeEdges(built.Graph)

	entry := built.Blocks["entry"]
	other := built.Blocks["other"]
	join := built.Blocks["join"]

	assert.Equal(t, ea.outgoing[entry], 2)
	assert.Equal(t, ea.outgoing[other], 1)
	assert.Equal(t, ea.incoming[join], 2)
	assert.Equal(t, ea.incoming[other], 1)

	// entry's true edge (to join): entry has 2 successors, join has 2
	// predecessors -> critical.
	assert.Assert(t, ea.isCritical(entry.Control.TrueEdge, join))
	// entry's false edge (to other): other has only 1 predecessor -> not
	// critical regardless of entry's successor count.
	assert.Assert(t, !ea.isCritical(entry.Control.FalseEdge, other))
	// other's edge to join: other has only 1 successor -> not critical
	// regardless of join's predecessor count.
	assert.Assert(t, !ea.isCritical(other.Control, join))
}

// TestAnalyzeEdgesNonCriticalStraightLine checks the common case: a
// fall-through chain with no branches has no critical edges anywhere.
func TestAnalyzeEdgesNonCriticalStraightLine(t *testing.T) {
	built := firm.Fun("a", nil,
		firm.Bloc("a", firm.Goto("b")),
		firm.Bloc("b", firm.RetVoid()))

	ea := analyzeEdges(built.Graph)
	a, b := built.Blocks["a"], built.Blocks["b"]
	assert.Assert(t, !ea.isCritical(a.Control, b))
}
