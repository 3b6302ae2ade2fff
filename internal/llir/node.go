package llir

import "fmt"

// Opcode tags the operation an LlirNode performs. Names follow the
// source-side Kind names where the operation is a straight carry-over
// (Add, Sub, ...), and switch to assembly-flavored names where the
// lowering introduces a new shape (MovImmediate, MovRegister,
// MovSignExtend, MovLoad, MovStore) — mirroring how
// cmd/internal/gc/ssa.go names its SSA opcodes after the target
// instructions they'll become rather than after the source AST node.
type Opcode int

const (
	OpMovImmediate Opcode = iota
	OpMovRegister
	OpMovSignExtend
	OpAdd
	OpSub
	OpMul
	OpAnd
	OpXor
	OpShiftLeft
	OpShiftRight
	OpArithShiftRight
	OpMovLoad
	OpDiv
	OpMod
	OpCall
	OpCmp
	OpMovStore

	// OpInputNode and OpMemoryInputNode never appear in an instruction
	// stream; they are the distinguished first nodes of a block's
	// input/memory-input chains and exist purely as join points for
	// cross-block values.
	OpInputNode
	OpMemoryInputNode

	OpJump
	OpBranch
	OpReturn
)

func (op Opcode) String() string {
	names := [...]string{
		"MovImmediate", "MovRegister", "MovSignExtend", "Add", "Sub", "Mul",
		"And", "Xor", "ShiftLeft", "ShiftRight", "ArithShiftRight", "MovLoad",
		"Div", "Mod", "Call", "Cmp", "MovStore", "InputNode", "MemoryInputNode",
		"Jump", "Branch", "Return",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// CmpPredicate is the comparison a Cmp instruction evaluates, reusing
// the same five-relation vocabulary as the source graph's Relation.
type CmpPredicate int

const (
	CmpEqual CmpPredicate = iota
	CmpLess
	CmpLessEqual
	CmpGreater
	CmpGreaterEqual
	// CmpNotEqual never appears as a source Cmp.Relation (the source
	// model's five relations have no direct "not equal"); it exists
	// because inverting an Equal predicate through a Not chain has
	// nowhere else to land.
	CmpNotEqual
)

// LlirNode is one instruction in a BasicBlock. A node may be any
// combination of: a value producer (has Dst), a side effect (chains
// through MemIn/MemOut), and a terminator (ends a block). The three
// capability predicates below replace a type-per-combination hierarchy
// the way rewriteMIPS.go's opcode table replaces per-opcode Go types:
// one struct, dispatched by Opcode.
type LlirNode struct {
	Op Opcode

	// Dst is the register this node defines. Meaningless (left at its
	// zero value) when ProducesValue reports false (MovStore, Jump,
	// Branch, Return).
	Dst VirtualRegister

	// Operand registers, in a fixed per-opcode order documented next to
	// each constructor below.
	Args []VirtualRegister

	Immediate int64
	Predicate CmpPredicate

	// MemIn/MemOut thread the per-block memory chain through
	// side-effecting nodes (MovLoad, MovStore, Div, Mod, Call, and the
	// block's own MemoryInputNode). Both are nil for pure nodes.
	MemIn  *LlirNode
	MemOut *LlirNode

	// Targets holds successor blocks: one entry for Jump, two
	// (true, false) for Branch, none for Return or non-terminators.
	Targets []*BasicBlock

	// Callee is set on Call nodes resolved to a known method; nil means
	// the call is an allocation (mirrors firm.Program.CallTarget).
	Callee string

	// block is the owning block, set when the node is appended via
	// BasicBlock.Append/SetTerminator.
	block *BasicBlock
}

// ProducesValue reports whether this node defines Dst.
func (n *LlirNode) ProducesValue() bool {
	switch n.Op {
	case OpMovStore, OpJump, OpBranch, OpReturn, OpMemoryInputNode:
		return false
	default:
		return true
	}
}

// IsSideEffect reports whether this node occupies a slot in the
// block's memory chain.
func (n *LlirNode) IsSideEffect() bool {
	switch n.Op {
	case OpMovLoad, OpMovStore, OpDiv, OpMod, OpCall, OpMemoryInputNode:
		return true
	default:
		return false
	}
}

// IsTerminator reports whether this node ends its block.
func (n *LlirNode) IsTerminator() bool {
	switch n.Op {
	case OpJump, OpBranch, OpReturn:
		return true
	default:
		return false
	}
}

// Block returns the block this node has been appended to, or nil.
func (n *LlirNode) Block() *BasicBlock { return n.block }

func (n *LlirNode) String() string {
	if n.ProducesValue() {
		return fmt.Sprintf("%s = %s %v", n.Dst, n.Op, n.Args)
	}
	return fmt.Sprintf("%s %v", n.Op, n.Args)
}

// Constructors. Each returns a detached node; Append/SetTerminator
// binds it to a block and its memory-chain neighbors.

// MovImmediate loads a constant into dst.
func MovImmediate(dst VirtualRegister, v int64) *LlirNode {
	return &LlirNode{Op: OpMovImmediate, Dst: dst, Immediate: v}
}

// MovRegister copies src into dst (the φ-resolution workhorse: every
// parallel-copy / swap-breaking temporary move is one of these).
func MovRegister(dst, src VirtualRegister) *LlirNode {
	return &LlirNode{Op: OpMovRegister, Dst: dst, Args: []VirtualRegister{src}}
}

// MovSignExtend sign-extends src into dst (a Conv lowering).
func MovSignExtend(dst, src VirtualRegister) *LlirNode {
	return &LlirNode{Op: OpMovSignExtend, Dst: dst, Args: []VirtualRegister{src}}
}

func binOp(op Opcode, dst, a, b VirtualRegister) *LlirNode {
	return &LlirNode{Op: op, Dst: dst, Args: []VirtualRegister{a, b}}
}

func Add(dst, a, b VirtualRegister) *LlirNode             { return binOp(OpAdd, dst, a, b) }
func Sub(dst, a, b VirtualRegister) *LlirNode             { return binOp(OpSub, dst, a, b) }
func Mul(dst, a, b VirtualRegister) *LlirNode             { return binOp(OpMul, dst, a, b) }
func And(dst, a, b VirtualRegister) *LlirNode             { return binOp(OpAnd, dst, a, b) }
func Xor(dst, a, b VirtualRegister) *LlirNode             { return binOp(OpXor, dst, a, b) }
func ShiftLeft(dst, a, b VirtualRegister) *LlirNode       { return binOp(OpShiftLeft, dst, a, b) }
func ShiftRight(dst, a, b VirtualRegister) *LlirNode      { return binOp(OpShiftRight, dst, a, b) }
func ArithShiftRight(dst, a, b VirtualRegister) *LlirNode { return binOp(OpArithShiftRight, dst, a, b) }

// MovLoad reads from the address in addr, chaining off memIn.
func MovLoad(dst, addr VirtualRegister, memIn *LlirNode) *LlirNode {
	return &LlirNode{Op: OpMovLoad, Dst: dst, Args: []VirtualRegister{addr}, MemIn: memIn}
}

// MovStore writes val to addr, chaining off memIn. Produces no value.
func MovStore(addr, val VirtualRegister, memIn *LlirNode) *LlirNode {
	return &LlirNode{Op: OpMovStore, Args: []VirtualRegister{addr, val}, MemIn: memIn}
}

// Div and Mod both produce a value and chain the memory effect of a
// possible divide-by-zero trap.
func Div(dst, a, b VirtualRegister, memIn *LlirNode) *LlirNode {
	return &LlirNode{Op: OpDiv, Dst: dst, Args: []VirtualRegister{a, b}, MemIn: memIn}
}

func Mod(dst, a, b VirtualRegister, memIn *LlirNode) *LlirNode {
	return &LlirNode{Op: OpMod, Dst: dst, Args: []VirtualRegister{a, b}, MemIn: memIn}
}

// Call invokes callee (empty string => allocation) with args, chaining
// off memIn and producing dst.
func Call(dst VirtualRegister, callee string, args []VirtualRegister, memIn *LlirNode) *LlirNode {
	return &LlirNode{Op: OpCall, Dst: dst, Args: args, Callee: callee, MemIn: memIn}
}

// Cmp evaluates pred(a, b) into dst (a BIT8 boolean).
func Cmp(dst VirtualRegister, pred CmpPredicate, a, b VirtualRegister) *LlirNode {
	return &LlirNode{Op: OpCmp, Dst: dst, Args: []VirtualRegister{a, b}, Predicate: pred}
}

// Jump unconditionally transfers control to target.
func Jump(target *BasicBlock) *LlirNode {
	return &LlirNode{Op: OpJump, Targets: []*BasicBlock{target}}
}

// Branch transfers control to ifTrue when cond is non-zero, ifFalse
// otherwise.
func Branch(cond VirtualRegister, ifTrue, ifFalse *BasicBlock) *LlirNode {
	return &LlirNode{Op: OpBranch, Args: []VirtualRegister{cond}, Targets: []*BasicBlock{ifTrue, ifFalse}}
}

// Return ends the method, optionally carrying a value (valid reports
// whether one is present).
func Return(value VirtualRegister, valid bool) *LlirNode {
	n := &LlirNode{Op: OpReturn}
	if valid {
		n.Args = []VirtualRegister{value}
	}
	return n
}

// InputNode marks reg as a value this block expects to already hold on
// entry (a cross-block φ result or pass-through). It produces no
// instruction of its own; BasicBlock.Inputs records the set.
func InputNode(reg VirtualRegister) *LlirNode {
	return &LlirNode{Op: OpInputNode, Dst: reg}
}

// MemoryInputNode is the distinguished first node of a block's memory
// chain, standing in for whatever memory state this block is entered
// with: memory crosses blocks via a block's distinguished
// MemoryInputNode.
func MemoryInputNode() *LlirNode {
	return &LlirNode{Op: OpMemoryInputNode}
}
