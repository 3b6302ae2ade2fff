package llir

import "fmt"

// BlockState is the lifecycle a BasicBlock moves through while the
// lowering core fills it in: nodes may only be appended while
// Building, the terminator may only be set once moving to Finished,
// and schedule dependencies/φ-copies may only be added while Finished,
// immediately before the pass that moves it to Finalized.
type BlockState int

const (
	StateEmpty BlockState = iota
	StateBuilding
	StateFinished
	StateFinalized
)

func (s BlockState) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateBuilding:
		return "Building"
	case StateFinished:
		return "Finished"
	case StateFinalized:
		return "Finalized"
	default:
		return "?"
	}
}

// BasicBlock is one block of the output LLIR graph. Its id is assigned
// by LlirGraph.NewBlock in creation order, starting at 0; it is not the
// id of the source firm.Block it was lowered from.
type BasicBlock struct {
	ID    int
	Graph *LlirGraph

	state BlockState

	// Inputs is the ordered set of registers this block expects to
	// already be live on entry (cross-block value join points).
	// Order is insertion order, which the driver keeps deterministic by
	// always deriving it from the source node id of the defining Phi or
	// pass-through value.
	Inputs []*LlirNode

	// MemoryInput is this block's distinguished memory-chain head.
	// Nil only while the block is StateEmpty.
	MemoryInput *LlirNode

	// body is every non-terminator instruction, in emission order.
	body []*LlirNode

	// Outputs is the ordered set of registers live out of this block
	// that some successor's Inputs names — the other half of the
	// cross-block mediation pair the output finalizer completes.
	Outputs []VirtualRegister

	// MemoryOutputs holds side-effecting nodes (MovStore, MovLoad, Div,
	// Mod, Call, or a MemoryInputNode passed straight through) whose
	// memory state must survive past this block's boundary. Outputs names
	// value registers only, so memory state is recorded here.
	MemoryOutputs []*LlirNode

	terminator *LlirNode

	// scheduleDeps is the narrow "must follow" ordering the finalizer
	// installs when a φ-copy overwrites an InputNode register that other
	// body nodes still read: not full scheduling, just a must-follow
	// edge set for φ-copies. Keyed by the node that must come after;
	// value is the set of nodes it must follow.
	scheduleDeps map[*LlirNode][]*LlirNode
}

func newBasicBlock(id int, g *LlirGraph) *BasicBlock {
	return &BasicBlock{ID: id, Graph: g, state: StateEmpty, scheduleDeps: make(map[*LlirNode][]*LlirNode)}
}

// State returns the block's current lifecycle state.
func (b *BasicBlock) State() BlockState { return b.state }

// Begin transitions Empty -> Building and installs the block's memory
// input node, the first entry of its memory chain.
func (b *BasicBlock) Begin() {
	if b.state != StateEmpty {
		panic(fmt.Sprintf("llir: block %d: Begin called in state %s", b.ID, b.state))
	}
	b.MemoryInput = MemoryInputNode()
	b.MemoryInput.block = b
	b.state = StateBuilding
}

// AddInput records reg as a value this block expects live on entry.
// Valid while Building (the main visitor pass materializing an
// ordinary cross-block value) or Finished (the φ resolver materializing
// a φ operand it finds defined in a different block than the one it is
// placing a copy into — by the time the resolver runs, every block's
// body and terminator are already settled).
func (b *BasicBlock) AddInput(reg VirtualRegister) *LlirNode {
	if b.state != StateBuilding && b.state != StateFinished {
		panic(fmt.Sprintf("llir: block %d: AddInput called in state %s", b.ID, b.state))
	}
	n := InputNode(reg)
	n.block = b
	b.Inputs = append(b.Inputs, n)
	return n
}

// Append adds a non-terminator node to the block's body. Valid only
// while Building.
func (b *BasicBlock) Append(n *LlirNode) {
	if b.state != StateBuilding {
		panic(fmt.Sprintf("llir: block %d: Append called in state %s", b.ID, b.state))
	}
	if n.IsTerminator() {
		panic("llir: Append called with a terminator node; use SetTerminator")
	}
	n.block = b
	b.body = append(b.body, n)
}

// Body returns the block's non-terminator instructions in emission
// order.
func (b *BasicBlock) Body() []*LlirNode { return b.body }

// SetTerminator installs n as the block's terminator and transitions
// Building -> Finished.
func (b *BasicBlock) SetTerminator(n *LlirNode) {
	if b.state != StateBuilding {
		panic(fmt.Sprintf("llir: block %d: SetTerminator called in state %s", b.ID, b.state))
	}
	if !n.IsTerminator() {
		panic("llir: SetTerminator called with a non-terminator node")
	}
	n.block = b
	b.terminator = n
	b.state = StateFinished
}

// Terminator returns the block's terminator, or nil before it is set.
func (b *BasicBlock) Terminator() *LlirNode { return b.terminator }

// AddOutput records reg as live out of this block for a successor's
// Inputs set. Valid only once Finished (the output finalizer runs
// after the body and terminator are both settled).
func (b *BasicBlock) AddOutput(reg VirtualRegister) {
	if b.state != StateFinished {
		panic(fmt.Sprintf("llir: block %d: AddOutput called in state %s", b.ID, b.state))
	}
	b.Outputs = append(b.Outputs, reg)
}

// AddMemoryOutput records that n's memory effect must survive past
// this block's boundary. Valid only once Finished, matching AddOutput.
func (b *BasicBlock) AddMemoryOutput(n *LlirNode) {
	if b.state != StateFinished {
		panic(fmt.Sprintf("llir: block %d: AddMemoryOutput called in state %s", b.ID, b.state))
	}
	b.MemoryOutputs = append(b.MemoryOutputs, n)
}

// InsertBeforeTerminator appends a non-terminator node to the block's
// body after the block has already been finished — used by the φ
// resolver to place φ-copies into blocks whose terminator was
// set during the main lowering pass, and into freshly inserted
// critical-edge blocks (themselves Finished immediately on creation).
// Since body and terminator are tracked separately, the terminator
// always executes last regardless of when a body node was appended.
func (b *BasicBlock) InsertBeforeTerminator(n *LlirNode) {
	if b.state != StateBuilding && b.state != StateFinished {
		panic(fmt.Sprintf("llir: block %d: InsertBeforeTerminator called in state %s", b.ID, b.state))
	}
	if n.IsTerminator() {
		panic("llir: InsertBeforeTerminator called with a terminator node")
	}
	n.block = b
	b.body = append(b.body, n)
}

// AddScheduleDependency records that before must be emitted before
// after within this block's body. Valid only once Finished, since
// these dependencies arise from φ-copy conflicts the finalizer only
// detects after the whole block is built.
func (b *BasicBlock) AddScheduleDependency(after, before *LlirNode) {
	if b.state != StateFinished {
		panic(fmt.Sprintf("llir: block %d: AddScheduleDependency called in state %s", b.ID, b.state))
	}
	b.scheduleDeps[after] = append(b.scheduleDeps[after], before)
}

// ScheduleDependencies returns the nodes that must precede n in the
// final body ordering.
func (b *BasicBlock) ScheduleDependencies(n *LlirNode) []*LlirNode {
	return b.scheduleDeps[n]
}

// Finalize transitions Finished -> Finalized. After this no further
// structural change is permitted; only the assembler/register
// allocator downstream may read the block.
func (b *BasicBlock) Finalize() {
	if b.state != StateFinished {
		panic(fmt.Sprintf("llir: block %d: Finalize called in state %s", b.ID, b.state))
	}
	b.state = StateFinalized
}
