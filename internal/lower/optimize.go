package lower

import "github.com/mjcc/firmlower/internal/firm"

// InstructionSelection wraps a FirmToLlir and installs an optional
// compare-folding hook: it inherits every φ/critical-edge/memory
// behavior from the base driver and overrides only the one seam that
// matters for folded compares. Go has no subclassing, so the override
// is a function field FirmToLlir calls through rather than a virtual
// method.
type InstructionSelection struct {
	*FirmToLlir
}

// NewInstructionSelection wraps base, installing the folded-compare
// optimization.
func NewInstructionSelection(base *FirmToLlir) *InstructionSelection {
	is := &InstructionSelection{FirmToLlir: base}
	base.foldCompareOperands = is.foldSubtractCompare
	return is
}

// foldSubtractCompare recognizes Cmp(Sub(x, y), 0) or Cmp(0, Sub(x, y))
// where the Sub has exactly one use (the Cmp itself) and rewrites the
// comparison to operate directly on x and y, skipping the materialized
// subtraction. A Sub with other uses keeps its result live, so folding
// it away would be wrong; singleUse guards that case.
func (is *InstructionSelection) foldSubtractCompare(cmp, left, right *firm.Node) (*firm.Node, *firm.Node, bool) {
	if x, y, ok := is.subtractedFromZero(cmp, left, right); ok {
		return x, y, true
	}
	// Cmp(0, Sub(x, y)) means 0 REL (x-y), which holds iff y REL x: the
	// operands come back reversed so the comparison's sense is preserved.
	if x, y, ok := is.subtractedFromZero(cmp, right, left); ok {
		return y, x, true
	}
	return nil, nil, false
}

// subtractedFromZero reports whether sub is a Sub node used only by
// cmp and zero is a Const 0, returning the Sub's own operands.
func (is *InstructionSelection) subtractedFromZero(cmp, sub, zero *firm.Node) (*firm.Node, *firm.Node, bool) {
	if sub.Kind != firm.KindSub {
		return nil, nil, false
	}
	if zero.Kind != firm.KindConst || zero.ConstValue != 0 {
		return nil, nil, false
	}
	if !is.singleUse(sub, cmp) {
		return nil, nil, false
	}
	return sub.Args[0], sub.Args[1], true
}

// singleUse reports whether sub's only recorded use is by.
func (is *InstructionSelection) singleUse(sub, by *firm.Node) bool {
	uses := is.graph.Uses(sub)
	return len(uses) == 1 && uses[0] == by
}
