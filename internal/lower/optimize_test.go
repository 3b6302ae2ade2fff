package lower

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/mjcc/firmlower/internal/firm"
	"github.com/mjcc/firmlower/internal/llir"
)

// TestInstructionSelectionFoldsSubtractCompare checks the optimized path's
// signature transformation: `if (a - b) < 0` lowers without ever
// materializing the subtraction, comparing a and b directly instead.
func TestInstructionSelectionFoldsSubtractCompare(t *testing.T) {
	built := firm.Fun("entry", []firm.Mode{firm.ModeIs, firm.ModeIs},
		firm.Bloc("entry",
			firm.ProjVal("a", firm.ModeIs, "start", 0),
			firm.ProjVal("b", firm.ModeIs, "start", 1),
			firm.Val("diff", firm.KindSub, firm.ModeIs, "a", "b"),
			firm.ConstVal("zero", firm.ModeIs, 0),
			firm.CmpVal("cond", firm.RelLess, "diff", "zero"),
			firm.Branch("cond", "then", "else")),
		firm.Bloc("then", firm.Ret("a")),
		firm.Bloc("else", firm.Ret("b")))

	d := NewFirmToLlir(built.Program, built.Method, built.Graph)
	is := NewInstructionSelection(d)
	g, params, err := is.Lower()
	assert.NilError(t, err)

	entry := blockFor(t, built, g, "entry")
	cmp := findOp(entry, llir.OpCmp)
	assert.Assert(t, cmp != nil)
	// The Sub is never emitted: the Cmp reads the two parameters directly.
	assert.Assert(t, findOp(entry, llir.OpSub) == nil)
	assert.Equal(t, cmp.Args[0], params[0])
	assert.Equal(t, cmp.Args[1], params[1])
}

// TestInstructionSelectionFoldsSubtractCompareZeroOnLeft checks the mirror
// form `if (0 < a - b)`: the fold must reverse the operands it hands back
// (to `b, a`) so the comparison's sense survives, not just drop the zero.
func TestInstructionSelectionFoldsSubtractCompareZeroOnLeft(t *testing.T) {
	built := firm.Fun("entry", []firm.Mode{firm.ModeIs, firm.ModeIs},
		firm.Bloc("entry",
			firm.ProjVal("a", firm.ModeIs, "start", 0),
			firm.ProjVal("b", firm.ModeIs, "start", 1),
			firm.Val("diff", firm.KindSub, firm.ModeIs, "a", "b"),
			firm.ConstVal("zero", firm.ModeIs, 0),
			firm.CmpVal("cond", firm.RelLess, "zero", "diff"),
			firm.Branch("cond", "then", "else")),
		firm.Bloc("then", firm.Ret("a")),
		firm.Bloc("else", firm.Ret("b")))

	d := NewFirmToLlir(built.Program, built.Method, built.Graph)
	is := NewInstructionSelection(d)
	g, params, err := is.Lower()
	assert.NilError(t, err)

	entry := blockFor(t, built, g, "entry")
	cmp := findOp(entry, llir.OpCmp)
	assert.Assert(t, cmp != nil)
	assert.Assert(t, findOp(entry, llir.OpSub) == nil)
	// 0 < (a - b) holds iff b < a: the folded compare must read b, a in
	// that order, not a, b, or the branch sense would flip.
	assert.Equal(t, cmp.Args[0], params[1])
	assert.Equal(t, cmp.Args[1], params[0])
}

// TestSubtractedFromZeroRejectsMultiUseSub checks the fold's guard: when
// the subtraction's result is used by something other than the compare,
// it must stay materialized rather than being silently dropped.
func TestSubtractedFromZeroRejectsMultiUseSub(t *testing.T) {
	built := firm.Fun("entry", []firm.Mode{firm.ModeIs, firm.ModeIs},
		firm.Bloc("entry",
			firm.ProjVal("a", firm.ModeIs, "start", 0),
			firm.ProjVal("b", firm.ModeIs, "start", 1),
			firm.Val("diff", firm.KindSub, firm.ModeIs, "a", "b"),
			firm.ConstVal("zero", firm.ModeIs, 0),
			firm.CmpVal("cond", firm.RelLess, "diff", "zero"),
			firm.Branch("cond", "then", "else")),
		firm.Bloc("then", firm.Ret("diff")),
		firm.Bloc("else", firm.Ret("b")))

	d := NewFirmToLlir(built.Program, built.Method, built.Graph)
	is := NewInstructionSelection(d)
	g, _, err := is.Lower()
	assert.NilError(t, err)

	entry := blockFor(t, built, g, "entry")
	// diff has a second use (then's Ret), so the fold must not fire.
	assert.Assert(t, findOp(entry, llir.OpSub) != nil)
}
