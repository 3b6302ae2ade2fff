// Package firm models the input side of the lowering pipeline: a single
// method's sea-of-nodes SSA graph as produced by an upstream optimizer.
//
// The package owns no optimization logic of its own — it is the minimal
// surface the lowering core needs to walk: nodes, blocks, back-edges, and
// the method table. Front-end concerns (parsing, type checking, the
// optimizer passes that produced this graph) live upstream and are out of
// scope here.
package firm

import "sort"

// Mode is the type/width tag carried by a node, playing the same role
// cmd/internal/gc's ssaState.expr return types play for the Go SSA builder.
type Mode int

const (
	ModeANY Mode = iota
	ModeBu       // 8-bit boolean/byte
	ModeIs       // 32-bit signed integer
	ModeLs       // 64-bit signed integer
	ModeP        // 64-bit pointer
	ModeM        // memory
	ModeX        // execution / control
	ModeT        // tuple (multi-result: value + memory)
)

func (m Mode) String() string {
	switch m {
	case ModeBu:
		return "Bu"
	case ModeIs:
		return "Is"
	case ModeLs:
		return "Ls"
	case ModeP:
		return "P"
	case ModeM:
		return "M"
	case ModeX:
		return "X"
	case ModeT:
		return "T"
	default:
		return "ANY"
	}
}

// Relation is a Cmp node's comparison predicate.
type Relation int

const (
	RelEqual Relation = iota
	RelLess
	RelLessEqual
	RelGreater
	RelGreaterEqual
	// RelUnordered is not one of the five supported relations; a Cond
	// whose selector chain bottoms out on a Cmp carrying it is rejected
	// with UnsupportedBranchPredicate.
	RelUnordered
)

func (r Relation) String() string {
	switch r {
	case RelEqual:
		return "=="
	case RelLess:
		return "<"
	case RelLessEqual:
		return "<="
	case RelGreater:
		return ">"
	case RelGreaterEqual:
		return ">="
	default:
		return "unordered"
	}
}

// Kind tags the operation a Node performs.
type Kind int

const (
	KindStart Kind = iota
	KindEnd
	KindConst
	KindProj
	KindAdd
	KindSub
	KindMul
	KindAnd
	KindXor
	KindShl
	KindShr
	KindShrs
	KindDiv
	KindMod
	KindMinus
	KindNot
	KindConv
	KindCmp
	KindCond
	KindJmp
	KindReturn
	KindLoad
	KindStore
	KindCall
	KindPhi
	KindAddress
	KindUnknown
	// KindKeepAlive is an internal marker for the keep-alive edges End
	// holds on infinite-loop blocks that are otherwise unreachable by a
	// data/control predecessor walk.
	KindKeepAlive
	// KindUnsupported exists purely so tests can manufacture a node kind
	// the driver has no visitor for, exercising UnsupportedNodeKind.
	KindUnsupported
)

func (k Kind) String() string {
	names := [...]string{
		"Start", "End", "Const", "Proj", "Add", "Sub", "Mul", "And", "Xor",
		"Shl", "Shr", "Shrs", "Div", "Mod", "Minus", "Not", "Conv", "Cmp", "Cond", "Jmp",
		"Return", "Load", "Store", "Call", "Phi", "Address", "Unknown",
		"KeepAlive", "Unsupported",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// Proj numbers. The meaning of ProjNum depends on the kind of the node
// being projected (Args[0]).
const (
	ProjFalse     = 0 // Proj off Cond: false-branch control edge
	ProjTrue      = 1 // Proj off Cond: true-branch control edge
	ProjMemory    = -1
	ProjValue     = 0 // Proj off Call/Div/Mod tuple: the result value
	ProjMemResult = 1 // Proj off Call/Div/Mod tuple: the resulting memory state
)

// Method is a resolved callee descriptor. A Call node absent from a
// Program's MethodReferences is interpreted as an allocation.
type Method struct {
	Name       string
	Params     []Mode
	ReturnMode Mode
}

// Node is one operation in the sea-of-nodes graph. Args holds ordered
// data/memory predecessors in uses-to-defs direction; control successors
// are expressed the other way around, as Target on Jmp/true-false Proj
// nodes and as Block.Preds on the block being entered.
type Node struct {
	ID    int
	Kind  Kind
	Mode  Mode
	Block *Block // containing block; nil for floating Const nodes
	Args  []*Node

	ConstValue int64
	ProjNum    int
	Relation   Relation
	ConvFrom   Mode
	ConvTo     Mode

	// ValueMode is the width of the value component of a tuple-typed
	// node (Mode == ModeT: Call, Div, Mod). Proj(value) off such a node
	// carries this mode.
	ValueMode Mode

	// Target is set on Jmp nodes and on Proj nodes projecting a Cond:
	// the block control flow reaches when this node fires.
	Target *Block

	// PinnedBlock is set on KeepAlive nodes: an infinite loop's block
	// that the End node must still reach for traversal purposes even
	// though no Return ever flows out of it.
	PinnedBlock *Block

	// TrueEdge and FalseEdge are set only on a Cond node: the two Proj
	// children (ProjNum ProjTrue/ProjFalse) that carry the outgoing
	// control edges. They are themselves Nodes (Kind KindProj, Args
	// []*Node{cond}) so the critical-edge terminator rewrite can
	// type-switch on Kind the same way it does for Jmp.
	TrueEdge, FalseEdge *Node

	Name string // debug label, not used by lowering
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Name != "" {
		return n.Name
	}
	return n.Kind.String()
}

// Block is a basic block in the source graph. Preds holds, in insertion
// order, the tail control nodes (Jmp or true/false Proj-of-Cond) of each
// distinct predecessor edge — this order is also the index space Phi
// operands are keyed against.
type Block struct {
	ID    int
	Graph *Graph
	Name  string
	Preds []*Node

	// Control is the node that terminates this block: a Jmp, a Cond, or
	// a Return. Nil until the block's builder finishes it (mirrors
	// ssa.Block.Control/Kind in the Go compiler's own SSA package).
	Control *Node
}

// PredCount is the number of distinct control edges entering b.
func (b *Block) PredCount() int { return len(b.Preds) }

// Pred returns the i'th predecessor's tail control node.
func (b *Block) Pred(i int) *Node { return b.Preds[i] }

// Graph is one method's source graph: the sole surface the lowering core
// reads from. Blocks excludes Start and End.
type Graph struct {
	MethodName string
	Start      *Block
	End        *Block
	StartNode  *Node
	EndNode    *Node
	Blocks     []*Block
	Params     []Mode

	nextNodeID  int
	nextBlockID int
	backEdges   *backEdges
}

// NewGraph creates an empty graph with its Start/End blocks and nodes
// already wired, ready for a builder (see builder.go) to populate.
func NewGraph(methodName string, params ...Mode) *Graph {
	g := &Graph{MethodName: methodName, Params: params}
	g.Start = g.newBlock("start")
	g.End = g.newBlock("end")
	g.StartNode = g.newNode(KindStart, ModeT, g.Start)
	g.EndNode = g.newNode(KindEnd, ModeX, g.End)
	return g
}

func (g *Graph) newBlock(name string) *Block {
	b := &Block{ID: g.nextBlockID, Graph: g, Name: name}
	g.nextBlockID++
	return b
}

// NewBlock creates and registers a non-start/end block.
func (g *Graph) NewBlock(name string) *Block {
	b := g.newBlock(name)
	g.Blocks = append(g.Blocks, b)
	return b
}

func (g *Graph) newNode(kind Kind, mode Mode, block *Block) *Node {
	n := &Node{ID: g.nextNodeID, Kind: kind, Mode: mode, Block: block}
	g.nextNodeID++
	return n
}

// NewNode creates a node pinned to block (block may be nil for a
// floating Const).
func (g *Graph) NewNode(kind Kind, mode Mode, block *Block, args ...*Node) *Node {
	n := g.newNode(kind, mode, block)
	n.Args = args
	return n
}

// AddControlEdge records that tail (a Jmp or Proj-of-Cond node) reaches
// head. It appends to head.Preds and sets tail.Target.
func AddControlEdge(tail *Node, head *Block) {
	tail.Target = head
	head.Preds = append(head.Preds, tail)
}

// backEdges is the precomputed def->uses adjacency this package uses in
// place of a mutable, live BackEdges facility.
type backEdges struct {
	uses map[*Node][]*Node
}

// EnableBackEdges builds the adjacency map for this method. It must be
// balanced by DisableBackEdges before the next method is lowered.
func (g *Graph) EnableBackEdges() {
	be := &backEdges{uses: make(map[*Node][]*Node)}
	g.walkAllNodes(func(n *Node) {
		for _, a := range n.Args {
			be.uses[a] = append(be.uses[a], n)
		}
	})
	g.backEdges = be
}

// DisableBackEdges tears down the adjacency map.
func (g *Graph) DisableBackEdges() { g.backEdges = nil }

// Uses returns the nodes that consume n as an operand. Panics if
// BackEdges is not enabled, matching the upstream facility's contract
// that callers must enable it first.
func (g *Graph) Uses(n *Node) []*Node {
	if g.backEdges == nil {
		panic("firm: BackEdges not enabled")
	}
	return g.backEdges.uses[n]
}

// AllNodes returns every node in the graph reachable from End or from
// a block's Preds, sorted by id. The lowering core uses this to
// enumerate nodes (e.g. all Phis) without needing its own traversal
// logic duplicated against the source graph's shape.
func (g *Graph) AllNodes() []*Node {
	var nodes []*Node
	g.walkAllNodes(func(n *Node) { nodes = append(nodes, n) })
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// walkAllNodes visits every node reachable from End, plus every node
// reachable from any Block's Preds slice (the Jmp/Proj control tails
// and, through a Cond, its selector chain), each exactly once. A node
// that nothing reachable uses (a dead Const, an unused Phi) is not
// visited.
func (g *Graph) walkAllNodes(visit func(*Node)) {
	seen := make(map[*Node]bool)
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		for _, a := range n.Args {
			walk(a)
		}
		visit(n)
	}
	walk(g.EndNode)
	for _, b := range append([]*Block{g.Start, g.End}, g.Blocks...) {
		for _, p := range b.Preds {
			walk(p)
		}
	}
}

// Program collects every method's source graph plus the call-resolution
// table the lowering core needs to tell method calls from allocations.
type Program struct {
	// MethodGraphs iterates in a fixed order (see Methods) to keep
	// multi-method lowering deterministic.
	methodGraphs     map[*Method]*Graph
	methodOrder      []*Method
	methodReferences map[*Node]*Method
}

// NewProgram creates an empty Program.
func NewProgram() *Program {
	return &Program{
		methodGraphs:     make(map[*Method]*Graph),
		methodReferences: make(map[*Node]*Method),
	}
}

// AddMethod registers g as the graph for m. Insertion order is preserved
// by Methods for deterministic multi-method lowering.
func (p *Program) AddMethod(m *Method, g *Graph) {
	if _, ok := p.methodGraphs[m]; !ok {
		p.methodOrder = append(p.methodOrder, m)
	}
	p.methodGraphs[m] = g
}

// Methods returns the registered methods in registration order.
func (p *Program) Methods() []*Method {
	out := make([]*Method, len(p.methodOrder))
	copy(out, p.methodOrder)
	return out
}

// Graph returns the source graph registered for m.
func (p *Program) Graph(m *Method) *Graph { return p.methodGraphs[m] }

// ResolveCall records that call resolves to target. A Call node never
// registered here is an allocation.
func (p *Program) ResolveCall(call *Node, target *Method) {
	p.methodReferences[call] = target
}

// CallTarget returns the resolved method for call, or nil if call is an
// allocation.
func (p *Program) CallTarget(call *Node) *Method {
	return p.methodReferences[call]
}
