package lower

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/mjcc/firmlower/internal/firm"
	"github.com/mjcc/firmlower/internal/llir"
)

// TestConstantReturn checks that a single block `return 7;` lowers to
// one MovImmediate feeding a Return, no inputs, and the block's memory
// input surviving as a block output.
func TestConstantReturn(t *testing.T) {
	built := firm.Fun("entry", nil,
		firm.Bloc("entry",
			firm.ConstVal("seven", firm.ModeIs, 7),
			firm.Ret("seven")))

	g := lowerBuilt(t, built)
	start := blockFor(t, built, g, "entry")

	assert.Equal(t, len(start.Inputs), 0)
	mov := findOp(start, llir.OpMovImmediate)
	assert.Assert(t, mov != nil)
	assert.Equal(t, mov.Immediate, int64(7))

	term := start.Terminator()
	assert.Equal(t, term.Op, llir.OpReturn)
	assert.Equal(t, len(term.Args), 1)
	assert.Equal(t, term.Args[0], mov.Dst)

	assert.Equal(t, len(start.MemoryOutputs), 1)
	assert.Equal(t, start.MemoryOutputs[0], start.MemoryInput)
}

// TestVoidReturnIsJustMemory checks the boundary behavior: a single block
// with `return;` lowers to one block containing only a Return(none) after
// the memory input, with no other nodes.
func TestVoidReturnIsJustMemory(t *testing.T) {
	built := firm.Fun("entry", nil,
		firm.Bloc("entry", firm.RetVoid()))

	g := lowerBuilt(t, built)
	start := blockFor(t, built, g, "entry")

	assert.Equal(t, len(start.Body()), 0)
	term := start.Terminator()
	assert.Equal(t, term.Op, llir.OpReturn)
	assert.Equal(t, len(term.Args), 0)
	assert.Equal(t, len(start.MemoryOutputs), 1)
}

// TestAdditionOfTwoParameters checks that bar(a, b) { return a+b; }
// lowers to two InputNodes on the parameter registers and one Add feeding
// Return.
func TestAdditionOfTwoParameters(t *testing.T) {
	built := firm.Fun("entry", []firm.Mode{firm.ModeIs, firm.ModeIs},
		firm.Bloc("entry",
			firm.ProjVal("a", firm.ModeIs, "start", 0),
			firm.ProjVal("b", firm.ModeIs, "start", 1),
			firm.Val("sum", firm.KindAdd, firm.ModeIs, "a", "b"),
			firm.Ret("sum")))

	g, params, err := NewFirmToLlir(built.Program, built.Method, built.Graph).Lower()
	assert.NilError(t, err)
	assert.Equal(t, len(params), 2)

	start := blockFor(t, built, g, "entry")
	assert.Equal(t, len(start.Inputs), 2)
	assert.Equal(t, start.Inputs[0].Dst, params[0])
	assert.Equal(t, start.Inputs[1].Dst, params[1])

	add := findOp(start, llir.OpAdd)
	assert.Assert(t, add != nil)
	assert.Equal(t, add.Args[0], params[0])
	assert.Equal(t, add.Args[1], params[1])

	term := start.Terminator()
	assert.Equal(t, term.Op, llir.OpReturn)
	assert.Equal(t, term.Args[0], add.Dst)
}

// TestIfThenElseWithPhi checks that entry compares a<b and branches to
// then/else, each writing a φ accumulator, joined by a block that reads
// it via an InputNode.
func TestIfThenElseWithPhi(t *testing.T) {
	built := firm.Fun("entry", []firm.Mode{firm.ModeIs, firm.ModeIs},
		firm.Bloc("entry",
			firm.ProjVal("a", firm.ModeIs, "start", 0),
			firm.ProjVal("b", firm.ModeIs, "start", 1),
			firm.CmpVal("cmp", firm.RelLess, "a", "b"),
			firm.Branch("cmp", "then", "else")),
		firm.Bloc("then",
			firm.ConstVal("one", firm.ModeIs, 1),
			firm.Goto("join")),
		firm.Bloc("else",
			firm.ConstVal("two", firm.ModeIs, 2),
			firm.Goto("join")),
		firm.Bloc("join",
			firm.PhiVal("x", firm.ModeIs, "one", "two"),
			firm.Ret("x")))

	g := lowerBuilt(t, built)

	entry := blockFor(t, built, g, "entry")
	thenB := blockFor(t, built, g, "then")
	elseB := blockFor(t, built, g, "else")
	join := blockFor(t, built, g, "join")

	cmp := findOp(entry, llir.OpCmp)
	assert.Assert(t, cmp != nil)
	assert.Equal(t, cmp.Predicate, llir.CmpLess)

	term := entry.Terminator()
	assert.Equal(t, term.Op, llir.OpBranch)
	assert.Equal(t, term.Args[0], cmp.Dst)
	assert.Equal(t, term.Targets[0], thenB)
	assert.Equal(t, term.Targets[1], elseB)

	assert.Equal(t, len(join.Inputs), 1)
	accumReg := join.Inputs[0].Dst

	thenMov := findOp(thenB, llir.OpMovImmediate)
	assert.Assert(t, thenMov != nil)
	assert.Equal(t, thenMov.Dst, accumReg)
	assert.Equal(t, thenMov.Immediate, int64(1))
	assert.Assert(t, containsReg(thenB.Outputs, accumReg))

	elseMov := findOp(elseB, llir.OpMovImmediate)
	assert.Assert(t, elseMov != nil)
	assert.Equal(t, elseMov.Dst, accumReg)
	assert.Equal(t, elseMov.Immediate, int64(2))
	assert.Assert(t, containsReg(elseB.Outputs, accumReg))

	joinTerm := join.Terminator()
	assert.Equal(t, joinTerm.Op, llir.OpReturn)
	assert.Equal(t, joinTerm.Args[0], accumReg)
}

// TestSwapPhi checks that a loop header with two φs that reference each
// other must temporary both, reading each accumulator into a fresh
// register before any other use, and each predecessor copy must write the
// accumulator (never the temporary).
func TestSwapPhi(t *testing.T) {
	built := firm.Fun("entry", nil,
		firm.Bloc("entry",
			firm.ConstVal("x0", firm.ModeIs, 0),
			firm.ConstVal("y0", firm.ModeIs, 1),
			firm.Goto("header")),
		firm.Bloc("header",
			firm.PhiVal("px", firm.ModeIs, "x0", "py"),
			firm.PhiVal("py", firm.ModeIs, "y0", "px"),
			firm.CmpVal("cond", firm.RelLess, "px", "py"),
			firm.Branch("cond", "body", "exit")),
		firm.Bloc("body", firm.Goto("header")),
		firm.Bloc("exit", firm.Ret("px")))

	g := lowerBuilt(t, built)

	header := blockFor(t, built, g, "header")
	body := blockFor(t, built, g, "body")
	entry := blockFor(t, built, g, "entry")

	assert.Equal(t, len(header.Inputs), 2)
	accumX, accumY := header.Inputs[0].Dst, header.Inputs[1].Dst
	assert.Assert(t, accumX != accumY)

	// Both accumulators are read into a fresh temporary before the Cmp uses
	// them: two MovRegisters appear in header's body ahead of the Cmp, each
	// reading straight from an InputNode register.
	movs := []*llir.LlirNode{}
	for _, n := range header.Body() {
		if n.Op == llir.OpMovRegister {
			movs = append(movs, n)
		}
	}
	assert.Equal(t, len(movs), 2)
	assert.Equal(t, movs[0].Args[0], accumX)
	assert.Equal(t, movs[1].Args[0], accumY)

	cmp := findOp(header, llir.OpCmp)
	assert.Assert(t, cmp != nil)
	// Cmp must read the temporaries, never the raw accumulator registers.
	assert.Equal(t, cmp.Args[0], movs[0].Dst)
	assert.Equal(t, cmp.Args[1], movs[1].Dst)

	// entry writes the accumulators directly (constant operands).
	entryMovs := []*llir.LlirNode{}
	for _, n := range entry.Body() {
		if n.Op == llir.OpMovImmediate && (n.Dst == accumX || n.Dst == accumY) {
			entryMovs = append(entryMovs, n)
		}
	}
	assert.Equal(t, len(entryMovs), 2)

	// body writes the accumulators from the temporaries captured in header
	// (never from the raw accumulator registers — that would reintroduce
	// the swap hazard).
	bodyMovs := []*llir.LlirNode{}
	for _, n := range body.Body() {
		if n.Op == llir.OpMovRegister && (n.Dst == accumX || n.Dst == accumY) {
			bodyMovs = append(bodyMovs, n)
		}
	}
	assert.Equal(t, len(bodyMovs), 2)
	for _, mov := range bodyMovs {
		assert.Assert(t, mov.Args[0] != accumX && mov.Args[0] != accumY)
	}
}

// TestCriticalEdgeInsertsSplitterBlock checks that a Branch whose true
// target has >=2 predecessors and carries a φ must route that edge through
// an inserted block containing only the φ-copy and a Jump.
func TestCriticalEdgeInsertsSplitterBlock(t *testing.T) {
	built := firm.Fun("entry", []firm.Mode{firm.ModeIs, firm.ModeIs},
		firm.Bloc("entry",
			firm.ProjVal("a", firm.ModeIs, "start", 0),
			firm.ProjVal("b", firm.ModeIs, "start", 1),
			firm.CmpVal("cmp", firm.RelLess, "a", "b"),
			// entry has two successors (join, other): its edge to join is a
			// candidate critical edge if join also has >1 predecessors.
			firm.Branch("cmp", "join", "other")),
		firm.Bloc("other", firm.Goto("join")),
		firm.Bloc("join",
			firm.PhiVal("x", firm.ModeIs, "a", "b"),
			firm.Ret("x")))

	g := lowerBuilt(t, built)

	entry := blockFor(t, built, g, "entry")
	other := blockFor(t, built, g, "other")
	join := blockFor(t, built, g, "join")

	term := entry.Terminator()
	assert.Equal(t, term.Op, llir.OpBranch)
	// The true target (join) must have been rewritten away from join itself
	// since entry (2 successors) -> join (2 predecessors) is critical.
	splitter := term.Targets[0]
	assert.Assert(t, splitter != join)
	assert.Equal(t, len(splitter.Body()), 1)
	assert.Equal(t, splitter.Body()[0].Op, llir.OpMovRegister)
	assert.Equal(t, splitter.Terminator().Op, llir.OpJump)
	assert.Equal(t, splitter.Terminator().Targets[0], join)

	// other -> join is not critical (other has only one successor), so its
	// φ-copy lands directly in other, not behind a splitter.
	assert.Equal(t, term.Targets[1], other)
	otherCopy := findOp(other, llir.OpMovRegister)
	assert.Assert(t, otherCopy != nil)
}

// TestLoadStoreOrdering checks that a[0]=1; return a[0]; lowers to one
// MovStore chained off the block's memory input and one MovLoad chained off
// that store, in the same block.
func TestLoadStoreOrdering(t *testing.T) {
	built := firm.Fun("entry", []firm.Mode{firm.ModeP},
		firm.Bloc("entry",
			firm.ProjVal("ptr", firm.ModeP, "start", 0),
			firm.ProjVal("mem0", firm.ModeM, "start", firm.ProjMemory),
			firm.ConstVal("one", firm.ModeIs, 1),
			firm.StoreVal("st", "ptr", "one", "mem0"),
			firm.LoadVal("ld", firm.ModeIs, "ptr", "st"),
			firm.Ret("ld")))

	g := lowerBuilt(t, built)
	entry := blockFor(t, built, g, "entry")

	store := findOp(entry, llir.OpMovStore)
	assert.Assert(t, store != nil)
	assert.Equal(t, store.MemIn, entry.MemoryInput)

	load := findOp(entry, llir.OpMovLoad)
	assert.Assert(t, load != nil)
	assert.Equal(t, load.MemIn, store)

	term := entry.Terminator()
	assert.Equal(t, term.Args[0], load.Dst)
}

// TestStandaloneNotAliasesOperand checks that a Not consumed as an
// ordinary value (outside a Cond selector chain) — `return !done;` —
// aliases its operand's register rather than throwing, since the Cond
// row's "never materialized stand-alone" restriction belongs to Cmp,
// not to Not.
func TestStandaloneNotAliasesOperand(t *testing.T) {
	built := firm.Fun("entry", []firm.Mode{firm.ModeBu},
		firm.Bloc("entry",
			firm.ProjVal("done", firm.ModeBu, "start", 0),
			firm.NotVal("notdone", "done"),
			firm.Ret("notdone")))

	g := lowerBuilt(t, built)
	entry := blockFor(t, built, g, "entry")

	assert.Equal(t, len(entry.Inputs), 1)
	doneReg := entry.Inputs[0].Dst

	term := entry.Terminator()
	assert.Equal(t, term.Op, llir.OpReturn)
	assert.Equal(t, term.Args[0], doneReg)
}

// TestChainedNotCmpBranchPredicate checks that a Cond whose selector is
// Not(Not(Cmp(a, b))) cancels its double inversion back to the plain
// relation, and that neither Not node is materialized as a standalone
// value (the chain is a branch-selector construct per the Cond row,
// same as a bare Cmp).
func TestChainedNotCmpBranchPredicate(t *testing.T) {
	built := firm.Fun("entry", []firm.Mode{firm.ModeIs, firm.ModeIs},
		firm.Bloc("entry",
			firm.ProjVal("a", firm.ModeIs, "start", 0),
			firm.ProjVal("b", firm.ModeIs, "start", 1),
			firm.CmpVal("cmp", firm.RelLess, "a", "b"),
			firm.NotVal("n1", "cmp"),
			firm.NotVal("n2", "n1"),
			firm.Branch("n2", "then", "else")),
		firm.Bloc("then", firm.Goto("exit")),
		firm.Bloc("else", firm.Goto("exit")),
		firm.Bloc("exit", firm.RetVoid()))

	g := lowerBuilt(t, built)
	entry := blockFor(t, built, g, "entry")
	thenB := blockFor(t, built, g, "then")
	elseB := blockFor(t, built, g, "else")

	cmp := findOp(entry, llir.OpCmp)
	assert.Assert(t, cmp != nil)
	assert.Equal(t, cmp.Predicate, llir.CmpLess)

	term := entry.Terminator()
	assert.Equal(t, term.Op, llir.OpBranch)
	assert.Equal(t, term.Targets[0], thenB)
	assert.Equal(t, term.Targets[1], elseB)

	assert.Assert(t, findOp(entry, llir.OpMovRegister) == nil)
}

func containsReg(regs []llir.VirtualRegister, r llir.VirtualRegister) bool {
	for _, x := range regs {
		if x == r {
			return true
		}
	}
	return false
}
