// Package lower implements the lowering core: the component pipeline
// that turns one method's firm source graph into an llir.LlirGraph.
// FirmToLlir (this file) is the visitor; resolver.go and finalizer.go
// implement the two post-passes that run after it.
package lower

import (
	"fmt"

	"github.com/mjcc/firmlower/internal/firm"
	"github.com/mjcc/firmlower/internal/llir"
	"github.com/mjcc/firmlower/internal/lowererr"
)

// markedOut records that def must be added to its own block's output
// set under register reg once the finalizer runs.
type markedOut struct {
	def *firm.Node
	reg llir.VirtualRegister
}

// memOut is markedOut's counterpart for memory state: the side-effecting
// node (MovStore, MovLoad, Div, Mod, Call, or a passed-through
// MemoryInputNode) whose memory effect must leave its block.
type memOut struct {
	node *firm.Node
	llir *llir.LlirNode
}

// phiPlan is what phase 1 (this file) records about one value-φ,
// deferred to phase 2 (resolver.go).
type phiPlan struct {
	phi   *firm.Node
	accum llir.VirtualRegister
}

type inputKey struct {
	block *llir.BasicBlock
	reg   llir.VirtualRegister
}

type insertedKey struct {
	head  *firm.Block
	index int
}

// FirmToLlir lowers one method's source graph into an LlirGraph. One
// instance exists per method: no state survives across methods.
type FirmToLlir struct {
	program  *firm.Program
	graph    *firm.Graph
	analysis *edgeAnalysis
	temp     temporariedSet

	out *llir.LlirGraph

	blocks   map[*firm.Block]*llir.BasicBlock
	sourceOf map[*llir.BasicBlock]*firm.Block

	value map[*firm.Node]*llir.LlirNode

	inputs map[inputKey]*llir.LlirNode

	visited map[*firm.Node]bool

	markedOutNodes []markedOut
	markedOutSeen  map[*firm.Node]bool

	markedMemNodes []memOut
	markedMemSeen  map[*firm.Node]bool

	phiPlans    []*phiPlan
	phiAccum    map[*firm.Node]llir.VirtualRegister
	phiRegMoves []*llir.LlirNode

	insertedBlocks map[insertedKey]*llir.BasicBlock

	paramRegisters []llir.VirtualRegister

	blockMemTail map[*llir.BasicBlock]*llir.LlirNode

	// foldCompareOperands lets InstructionSelection (optimize.go)
	// substitute a Cmp's operands before they are materialized,
	// without FirmToLlir knowing anything about the fold itself.
	foldCompareOperands func(cmp, left, right *firm.Node) (*firm.Node, *firm.Node, bool)
}

// NewFirmToLlir creates a driver for one method's source graph.
func NewFirmToLlir(prog *firm.Program, method *firm.Method, g *firm.Graph) *FirmToLlir {
	return &FirmToLlir{
		program:        prog,
		graph:          g,
		out:            llir.NewLlirGraph(method.Name),
		blocks:         make(map[*firm.Block]*llir.BasicBlock),
		sourceOf:       make(map[*llir.BasicBlock]*firm.Block),
		value:          make(map[*firm.Node]*llir.LlirNode),
		inputs:         make(map[inputKey]*llir.LlirNode),
		visited:        make(map[*firm.Node]bool),
		markedOutSeen:  make(map[*firm.Node]bool),
		markedMemSeen:  make(map[*firm.Node]bool),
		phiAccum:       make(map[*firm.Node]llir.VirtualRegister),
		insertedBlocks: make(map[insertedKey]*llir.BasicBlock),
		blockMemTail:   make(map[*llir.BasicBlock]*llir.LlirNode),
	}
}

// Lower runs the full pipeline for this method: block setup, the main
// visitor pass, the φ resolver, and the output/schedule finalizer, in
// sequence.
func (d *FirmToLlir) Lower() (*llir.LlirGraph, []llir.VirtualRegister, error) {
	d.graph.EnableBackEdges()
	defer d.graph.DisableBackEdges()

	d.analysis = analyzeEdges(d.graph)
	d.temp = computeTemporaried(d.graph)

	for _, p := range d.graph.Params {
		d.paramRegisters = append(d.paramRegisters, d.out.Registers.New(widthOf(p)))
	}

	for _, b := range d.graph.Blocks {
		lb := d.out.NewBlock()
		lb.Begin()
		d.blocks[b] = lb
		d.sourceOf[lb] = b
		d.blockMemTail[lb] = lb.MemoryInput
	}
	if d.graph.Start.Control == nil || d.graph.Start.Control.Kind != firm.KindJmp {
		return nil, nil, lowererr.InvariantViolation("graph's Start block has no entry Jmp", blockID(d.graph.Start), -1)
	}
	d.out.Start = d.blocks[d.graph.Start.Control.Target]

	byBlock := make(map[*firm.Block][]*firm.Node)
	for _, n := range d.graph.AllNodes() {
		if n.Block != nil {
			byBlock[n.Block] = append(byBlock[n.Block], n)
		}
	}

	for _, b := range d.graph.Blocks {
		if err := d.lowerBlockBody(b, byBlock[b]); err != nil {
			return nil, nil, err
		}
	}

	if err := d.resolvePhis(); err != nil {
		return nil, nil, err
	}

	d.finalize()

	return d.out, d.paramRegisters, nil
}

func (d *FirmToLlir) lowerBlockBody(srcBlock *firm.Block, nodes []*firm.Node) error {
	for _, n := range nodes {
		if err := d.ensureLowered(n); err != nil {
			return err
		}
	}
	return d.lowerTerminator(srcBlock)
}

// ensureLowered lowers n if it has not already been visited,
// recursively lowering its data predecessors first: recursive descent
// ensures all data predecessors are visited before the node itself.
// Phi is a deliberate cut point: it never recurses into its
// per-predecessor operands here, which is what keeps loop-carried
// cycles from infinitely recursing.
func (d *FirmToLlir) ensureLowered(n *firm.Node) error {
	if d.visited[n] {
		return nil
	}
	d.visited[n] = true
	switch n.Kind {
	case firm.KindStart, firm.KindEnd, firm.KindAddress, firm.KindCmp, firm.KindConst,
		firm.KindJmp, firm.KindCond, firm.KindReturn:
		// Const is rematerialized at each use site (getPredLlirNode);
		// Cmp has no standalone materialization, only reached through
		// the branch-selector chain walk in lowerTerminator. Jmp/Cond/
		// Return are the tail control nodes AllNodes() surfaces as
		// ordinary block members (they live in Block.Preds/End.Args, not
		// in any data use chain); lowerTerminator handles each one
		// directly from srcBlock.Control instead of through this dispatch.
		return nil
	case firm.KindProj:
		return d.lowerProj(n)
	case firm.KindNot:
		return d.lowerNot(n)
	case firm.KindAdd, firm.KindSub, firm.KindMul, firm.KindAnd, firm.KindXor,
		firm.KindShl, firm.KindShr, firm.KindShrs:
		return d.lowerBinOp(n)
	case firm.KindMinus:
		return d.lowerMinus(n)
	case firm.KindConv:
		return d.lowerConv(n)
	case firm.KindLoad:
		return d.lowerLoad(n)
	case firm.KindStore:
		return d.lowerStore(n)
	case firm.KindCall:
		return d.lowerCall(n)
	case firm.KindDiv:
		return d.lowerDivMod(n, true)
	case firm.KindMod:
		return d.lowerDivMod(n, false)
	case firm.KindPhi:
		return d.lowerPhi(n)
	case firm.KindUnknown:
		return d.lowerUnknown(n)
	default:
		return lowererr.UnsupportedNodeKind(n.Kind.String(), blockID(n.Block), n.ID)
	}
}

func (d *FirmToLlir) lowerProj(n *firm.Node) error {
	if n.Mode == firm.ModeX {
		// A control projection off a Cond (the true/false successor
		// markers): no value, consumed directly via Cond.TrueEdge/
		// FalseEdge in lowerTerminator, never through this dispatch.
		return nil
	}
	of := n.Args[0]
	block := d.blocks[n.Block]
	if of.Kind == firm.KindStart {
		if n.Mode == firm.ModeM {
			d.value[n] = block.MemoryInput
			return nil
		}
		if n.ProjNum < 0 || n.ProjNum >= len(d.paramRegisters) {
			return lowererr.InvariantViolation("parameter projection number out of range", blockID(n.Block), n.ID)
		}
		input := d.getOrCreateInput(block, d.paramRegisters[n.ProjNum])
		d.value[n] = input
		return nil
	}
	if err := d.ensureLowered(of); err != nil {
		return err
	}
	defLlir, ok := d.value[of]
	if !ok {
		return lowererr.InvariantViolation("projection of an unlowered tuple node", blockID(n.Block), n.ID)
	}
	switch n.ProjNum {
	case firm.ProjValue, firm.ProjMemResult:
		d.value[n] = defLlir
		return nil
	default:
		return lowererr.MalformedControlProjection("unexpected projection number on a tuple node", blockID(n.Block), n.ID)
	}
}

// lowerNot aliases n to its operand's already-lowered LLIR node, same as
// lowerProj's tuple-value alias: the boolean inversion itself is only
// ever realized at branch time, by inverting the predicate in
// resolveBranchPredicate, so a Not consumed outside a Cond selector
// chain (a return value, a stored flag, a φ operand) still needs a
// value to read — just the operand's, unnegated.
//
// A Not…Not chain that bottoms out on a Cmp is the other shape: per the
// Cond row, that whole chain is a branch-selector construct, reachable
// only through resolveBranchPredicate's own selector walk, and — same
// as a bare Cmp — is never materialized as a standalone value. Since
// ensureLowered visits every node a block lists regardless of which of
// its uses actually needs a value, lowerNot must recognize that shape
// itself and stay a no-op for it.
func (d *FirmToLlir) lowerNot(n *firm.Node) error {
	bottom := n.Args[0]
	for bottom.Kind == firm.KindNot {
		bottom = bottom.Args[0]
	}
	if bottom.Kind == firm.KindCmp {
		return nil
	}

	operand := n.Args[0]
	if operand.Kind == firm.KindConst {
		block := d.blocks[n.Block]
		mov := llir.MovImmediate(d.out.Registers.New(widthOf(operand.Mode)), operand.ConstValue)
		block.Append(mov)
		d.value[n] = mov
		return nil
	}
	if err := d.ensureLowered(operand); err != nil {
		return err
	}
	defLlir, ok := d.value[operand]
	if !ok {
		return lowererr.InvariantViolation("Not operand was not lowered", blockID(n.Block), n.ID)
	}
	d.value[n] = defLlir
	return nil
}

func (d *FirmToLlir) lowerBinOp(n *firm.Node) error {
	// A Sub whose only use is a Cmp the compare-folding hook rewrites to
	// read the Sub's own operands is never materialized.
	if n.Kind == firm.KindSub && d.foldCompareOperands != nil {
		if uses := d.graph.Uses(n); len(uses) == 1 && uses[0].Kind == firm.KindCmp {
			cmp := uses[0]
			if _, _, ok := d.foldCompareOperands(cmp, cmp.Args[0], cmp.Args[1]); ok {
				return nil
			}
		}
	}
	block := d.blocks[n.Block]
	a, err := d.getPredLlirNode(block, n.Block, n.Args[0])
	if err != nil {
		return err
	}
	b, err := d.getPredLlirNode(block, n.Block, n.Args[1])
	if err != nil {
		return err
	}
	dst := d.out.Registers.New(widthOf(n.Mode))
	var node *llir.LlirNode
	switch n.Kind {
	case firm.KindAdd:
		node = llir.Add(dst, a, b)
	case firm.KindSub:
		node = llir.Sub(dst, a, b)
	case firm.KindMul:
		node = llir.Mul(dst, a, b)
	case firm.KindAnd:
		node = llir.And(dst, a, b)
	case firm.KindXor:
		node = llir.Xor(dst, a, b)
	case firm.KindShl:
		node = llir.ShiftLeft(dst, a, b)
	case firm.KindShr:
		node = llir.ShiftRight(dst, a, b)
	case firm.KindShrs:
		node = llir.ArithShiftRight(dst, a, b)
	}
	block.Append(node)
	d.value[n] = node
	return nil
}

// lowerMinus implements Minus x as Sub(0, x).
func (d *FirmToLlir) lowerMinus(n *firm.Node) error {
	block := d.blocks[n.Block]
	x, err := d.getPredLlirNode(block, n.Block, n.Args[0])
	if err != nil {
		return err
	}
	w := widthOf(n.Mode)
	zero := llir.MovImmediate(d.out.Registers.New(w), 0)
	block.Append(zero)
	sub := llir.Sub(d.out.Registers.New(w), zero.Dst, x)
	block.Append(sub)
	d.value[n] = sub
	return nil
}

// lowerConv implements the single supported Conv (Is -> Ls); every
// other mode pair is UnsupportedConversion.
func (d *FirmToLlir) lowerConv(n *firm.Node) error {
	if n.ConvFrom != firm.ModeIs || n.ConvTo != firm.ModeLs {
		return lowererr.UnsupportedConversion(n.ConvFrom.String(), n.ConvTo.String(), blockID(n.Block), n.ID)
	}
	block := d.blocks[n.Block]
	src, err := d.getPredLlirNode(block, n.Block, n.Args[0])
	if err != nil {
		return err
	}
	node := llir.MovSignExtend(d.out.Registers.New(llir.BIT64), src)
	block.Append(node)
	d.value[n] = node
	return nil
}

func (d *FirmToLlir) lowerLoad(n *firm.Node) error {
	block := d.blocks[n.Block]
	addr, err := d.getPredLlirNode(block, n.Block, n.Args[0])
	if err != nil {
		return err
	}
	memIn, err := d.getPredSideEffectNode(n.Block, block, n.Args[1])
	if err != nil {
		return err
	}
	node := llir.MovLoad(d.out.Registers.New(widthOf(n.Mode)), addr, memIn)
	block.Append(node)
	d.blockMemTail[block] = node
	d.value[n] = node
	return nil
}

func (d *FirmToLlir) lowerStore(n *firm.Node) error {
	block := d.blocks[n.Block]
	addr, err := d.getPredLlirNode(block, n.Block, n.Args[0])
	if err != nil {
		return err
	}
	val, err := d.getPredLlirNode(block, n.Block, n.Args[1])
	if err != nil {
		return err
	}
	memIn, err := d.getPredSideEffectNode(n.Block, block, n.Args[2])
	if err != nil {
		return err
	}
	node := llir.MovStore(addr, val, memIn)
	block.Append(node)
	d.blockMemTail[block] = node
	d.value[n] = node
	return nil
}

// lowerCall excludes the memory predecessor (Args[0]) from the argument
// list and passes every remaining predecessor as an argument. A Call
// with no resolved target is lowered as an allocation (empty callee);
// its argument count is not checked.
func (d *FirmToLlir) lowerCall(n *firm.Node) error {
	block := d.blocks[n.Block]
	memIn, err := d.getPredSideEffectNode(n.Block, block, n.Args[0])
	if err != nil {
		return err
	}
	var args []llir.VirtualRegister
	for _, a := range n.Args[1:] {
		reg, err := d.getPredLlirNode(block, n.Block, a)
		if err != nil {
			return err
		}
		args = append(args, reg)
	}
	callee := ""
	if m := d.program.CallTarget(n); m != nil {
		callee = m.Name
	}
	node := llir.Call(d.out.Registers.New(widthOf(n.ValueMode)), callee, args, memIn)
	block.Append(node)
	d.blockMemTail[block] = node
	d.value[n] = node
	return nil
}

func (d *FirmToLlir) lowerDivMod(n *firm.Node, isDiv bool) error {
	block := d.blocks[n.Block]
	a, err := d.getPredLlirNode(block, n.Block, n.Args[0])
	if err != nil {
		return err
	}
	b, err := d.getPredLlirNode(block, n.Block, n.Args[1])
	if err != nil {
		return err
	}
	memIn, err := d.getPredSideEffectNode(n.Block, block, n.Args[2])
	if err != nil {
		return err
	}
	dst := d.out.Registers.New(widthOf(n.ValueMode))
	var node *llir.LlirNode
	if isDiv {
		node = llir.Div(dst, a, b, memIn)
	} else {
		node = llir.Mod(dst, a, b, memIn)
	}
	block.Append(node)
	d.blockMemTail[block] = node
	d.value[n] = node
	return nil
}

// lowerPhi handles both memory and value Phis. A value Phi gets a
// fresh accumulator register and an InputNode; if the φ pre-pass
// marked it temporaried, a stabilizing MovRegister copy is emitted
// immediately so every in-block consumer reads the copy instead of an
// accumulator a same-block predecessor edge might later overwrite.
func (d *FirmToLlir) lowerPhi(n *firm.Node) error {
	block := d.blocks[n.Block]
	if n.Mode == firm.ModeM {
		d.value[n] = block.MemoryInput
		return nil
	}
	w := widthOf(n.Mode)
	accum := d.out.Registers.New(w)
	input := block.AddInput(accum)
	d.phiAccum[n] = accum
	d.phiPlans = append(d.phiPlans, &phiPlan{phi: n, accum: accum})
	if d.temp[n] {
		mov := llir.MovRegister(d.out.Registers.New(w), accum)
		block.Append(mov)
		d.value[n] = mov
	} else {
		d.value[n] = input
	}
	return nil
}

func (d *FirmToLlir) lowerUnknown(n *firm.Node) error {
	block := d.blocks[n.Block]
	node := llir.MovImmediate(d.out.Registers.New(widthOf(n.Mode)), 0)
	block.Append(node)
	d.value[n] = node
	return nil
}

func (d *FirmToLlir) lowerTerminator(srcBlock *firm.Block) error {
	block := d.blocks[srcBlock]
	ctrl := srcBlock.Control
	if ctrl == nil {
		return lowererr.InvariantViolation("block has no terminator", blockID(srcBlock), -1)
	}
	switch ctrl.Kind {
	case firm.KindJmp:
		block.SetTerminator(llir.Jump(d.blocks[ctrl.Target]))
		return nil

	case firm.KindCond:
		pred, a, b, err := d.resolveBranchPredicate(srcBlock, ctrl)
		if err != nil {
			return err
		}
		cmp := llir.Cmp(d.out.Registers.New(llir.BIT8), pred, a, b)
		block.Append(cmp)
		if ctrl.TrueEdge == nil || ctrl.FalseEdge == nil {
			return lowererr.MalformedControlProjection("Cond is missing a true or false projection", blockID(srcBlock), ctrl.ID)
		}
		trueTarget := d.blocks[ctrl.TrueEdge.Target]
		falseTarget := d.blocks[ctrl.FalseEdge.Target]
		block.SetTerminator(llir.Branch(cmp.Dst, trueTarget, falseTarget))
		return nil

	case firm.KindReturn:
		var value llir.VirtualRegister
		var hasValue bool
		if len(ctrl.Args) > 0 {
			v, err := d.getPredLlirNode(block, srcBlock, ctrl.Args[0])
			if err != nil {
				return err
			}
			value, hasValue = v, true
		}
		block.SetTerminator(llir.Return(value, hasValue))
		if tail, ok := d.blockMemTail[block]; ok {
			d.markMemoryOutput(ctrl, tail)
		}
		return nil

	default:
		return lowererr.InvariantViolation("unsupported terminator kind "+ctrl.Kind.String(), blockID(srcBlock), ctrl.ID)
	}
}

// resolveBranchPredicate walks a Cond's selector chain iteratively
// through any Not wrappers, toggling inversion each time, until it
// bottoms out on a Cmp, then lowers the Cmp's two operands in the
// Cond's own block; a Cmp is never materialized stand-alone.
func (d *FirmToLlir) resolveBranchPredicate(srcBlock *firm.Block, cond *firm.Node) (llir.CmpPredicate, llir.VirtualRegister, llir.VirtualRegister, error) {
	selector := cond.Args[0]
	invert := false
	for selector.Kind == firm.KindNot {
		invert = !invert
		selector = selector.Args[0]
	}
	if selector.Kind != firm.KindCmp {
		return 0, llir.VirtualRegister{}, llir.VirtualRegister{}, lowererr.UnsupportedBranchPredicate("selector chain does not bottom out on a Cmp", blockID(srcBlock), cond.ID)
	}
	pred, err := cmpPredicate(selector.Relation, invert)
	if err != nil {
		return 0, llir.VirtualRegister{}, llir.VirtualRegister{}, lowererr.UnsupportedBranchPredicate(err.Error(), blockID(srcBlock), selector.ID)
	}
	left, right := selector.Args[0], selector.Args[1]
	if d.foldCompareOperands != nil {
		if fl, fr, ok := d.foldCompareOperands(selector, left, right); ok {
			left, right = fl, fr
		}
	}
	block := d.blocks[srcBlock]
	a, err := d.getPredLlirNode(block, srcBlock, left)
	if err != nil {
		return 0, llir.VirtualRegister{}, llir.VirtualRegister{}, err
	}
	b, err := d.getPredLlirNode(block, srcBlock, right)
	if err != nil {
		return 0, llir.VirtualRegister{}, llir.VirtualRegister{}, err
	}
	return pred, a, b, nil
}

func cmpPredicate(rel firm.Relation, invert bool) (llir.CmpPredicate, error) {
	var p llir.CmpPredicate
	switch rel {
	case firm.RelEqual:
		p = llir.CmpEqual
	case firm.RelLess:
		p = llir.CmpLess
	case firm.RelLessEqual:
		p = llir.CmpLessEqual
	case firm.RelGreater:
		p = llir.CmpGreater
	case firm.RelGreaterEqual:
		p = llir.CmpGreaterEqual
	default:
		return 0, fmt.Errorf("relation %s is not one of the five supported relations", rel)
	}
	if invert {
		p = invertPredicate(p)
	}
	return p, nil
}

func invertPredicate(p llir.CmpPredicate) llir.CmpPredicate {
	switch p {
	case llir.CmpEqual:
		return llir.CmpNotEqual
	case llir.CmpNotEqual:
		return llir.CmpEqual
	case llir.CmpLess:
		return llir.CmpGreaterEqual
	case llir.CmpGreaterEqual:
		return llir.CmpLess
	case llir.CmpLessEqual:
		return llir.CmpGreater
	case llir.CmpGreater:
		return llir.CmpLessEqual
	default:
		return p
	}
}

// getPredLlirNode returns an LLIR operand register readable inside
// userBlock for the source value def: Consts rematerialize at each use
// site; same-block defs are read directly; cross-block defs route
// through an InputNode and mark def as output-required in its own
// block.
func (d *FirmToLlir) getPredLlirNode(userBlock *llir.BasicBlock, userSourceBlock *firm.Block, def *firm.Node) (llir.VirtualRegister, error) {
	if def.Kind == firm.KindConst {
		mov := llir.MovImmediate(d.out.Registers.New(widthOf(def.Mode)), def.ConstValue)
		userBlock.Append(mov)
		return mov.Dst, nil
	}
	if err := d.ensureLowered(def); err != nil {
		return llir.VirtualRegister{}, err
	}
	defLlir, ok := d.value[def]
	if !ok {
		return llir.VirtualRegister{}, lowererr.InvariantViolation("operand was not lowered", blockID(userSourceBlock), def.ID)
	}
	if def.Block == userSourceBlock {
		return defLlir.Dst, nil
	}
	d.markOutput(def, defLlir.Dst)
	input := d.getOrCreateInput(userBlock, defLlir.Dst)
	return input.Dst, nil
}

// getPredSideEffectNode returns the LLIR node anchoring def's memory
// effect as seen from userBlock: same-block defs are read directly;
// otherwise the user's block memory input stands in, and def's own
// block must later output it.
func (d *FirmToLlir) getPredSideEffectNode(userSourceBlock *firm.Block, userBlock *llir.BasicBlock, def *firm.Node) (*llir.LlirNode, error) {
	if err := d.ensureLowered(def); err != nil {
		return nil, err
	}
	defLlir, ok := d.value[def]
	if !ok {
		return nil, lowererr.InvariantViolation("memory operand was not lowered", blockID(userSourceBlock), def.ID)
	}
	if def.Block == userSourceBlock {
		return defLlir, nil
	}
	d.markMemoryOutput(def, defLlir)
	return userBlock.MemoryInput, nil
}

func (d *FirmToLlir) getOrCreateInput(b *llir.BasicBlock, reg llir.VirtualRegister) *llir.LlirNode {
	key := inputKey{block: b, reg: reg}
	if n, ok := d.inputs[key]; ok {
		return n
	}
	n := b.AddInput(reg)
	d.inputs[key] = n
	return n
}

func (d *FirmToLlir) markOutput(def *firm.Node, reg llir.VirtualRegister) {
	if d.markedOutSeen[def] {
		return
	}
	d.markedOutSeen[def] = true
	d.markedOutNodes = append(d.markedOutNodes, markedOut{def: def, reg: reg})
}

func (d *FirmToLlir) markMemoryOutput(def *firm.Node, n *llir.LlirNode) {
	if d.markedMemSeen[def] {
		return
	}
	d.markedMemSeen[def] = true
	d.markedMemNodes = append(d.markedMemNodes, memOut{node: def, llir: n})
}

func (d *FirmToLlir) sourceBlockOf(b *llir.BasicBlock) *firm.Block {
	return d.sourceOf[b]
}

func widthOf(m firm.Mode) llir.Width {
	switch m {
	case firm.ModeBu:
		return llir.BIT8
	case firm.ModeIs:
		return llir.BIT32
	case firm.ModeLs, firm.ModeP:
		return llir.BIT64
	default:
		return llir.BIT32
	}
}

func blockID(b *firm.Block) int {
	if b == nil {
		return -1
	}
	return b.ID
}
