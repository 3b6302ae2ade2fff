package firm

// This file contains utility functions to define source graphs for
// testing, grounded directly on cmd/internal/ssa/func_test.go's
// Fun/Bloc/Valu/Goto DSL. As an example there, a two-block function is
// written as:
//
//	fun := Fun("entry",
//	    Bloc("entry", Valu("mem", OpArg, TypeMem, ".mem"), Goto("exit")),
//	    Bloc("exit", Exit("mem")))
//
// Here the same shape looks like:
//
//	b := Fun("bar", []Mode{ModeIs, ModeIs},
//	    Bloc("entry",
//	        ProjVal("a", ModeIs, "start", 0),
//	        ProjVal("b", ModeIs, "start", 1),
//	        Val("sum", KindAdd, ModeIs, "a", "b"),
//	        Ret("sum")))

// valSpec describes one value to create inside a Bloc call.
type valSpec struct {
	name string
	kind Kind
	mode Mode
	args []string

	constValue int64
	projOf     string
	projNum    int
	relation   Relation
	convFrom   Mode
	convTo     Mode
	isCall     bool
	callee     *Method // nil => allocation call
}

// Val creates a generic value with ordered argument names.
func Val(name string, kind Kind, mode Mode, args ...string) valSpec {
	return valSpec{name: name, kind: kind, mode: mode, args: args}
}

// ConstVal creates a Const node; it is never lowered eagerly and is
// instead rematerialized at each use site.
func ConstVal(name string, mode Mode, v int64) valSpec {
	return valSpec{name: name, kind: KindConst, mode: mode, constValue: v}
}

// ProjVal creates a Proj node reading projNum off the value named of
// (typically "start" for parameters/initial memory, or a Call/Div/Mod
// result).
func ProjVal(name string, mode Mode, of string, projNum int) valSpec {
	return valSpec{name: name, kind: KindProj, mode: mode, projOf: of, projNum: projNum}
}

// CmpVal creates a Cmp node comparing a and b under rel.
func CmpVal(name string, rel Relation, a, b string) valSpec {
	return valSpec{name: name, kind: KindCmp, mode: ModeBu, relation: rel, args: []string{a, b}}
}

// NotVal inverts the boolean value x (Cmp or another Not).
func NotVal(name string, x string) valSpec {
	return valSpec{name: name, kind: KindNot, mode: ModeBu, args: []string{x}}
}

// ConvVal converts x from 'from' mode to 'to' mode.
func ConvVal(name string, from, to Mode, x string) valSpec {
	return valSpec{name: name, kind: KindConv, mode: to, convFrom: from, convTo: to, args: []string{x}}
}

// LoadVal reads memFrom, producing a value of mode at address ptr. Load
// is both a RegisterNode and a SideEffect in the LLIR model, so it
// plays the role of value producer and new memory point at once.
func LoadVal(name string, mode Mode, ptr, memFrom string) valSpec {
	return valSpec{name: name, kind: KindLoad, mode: mode, args: []string{ptr, memFrom}}
}

// StoreVal writes val to ptr, chaining off memFrom; produces a new
// memory value.
func StoreVal(name string, ptr, val, memFrom string) valSpec {
	return valSpec{name: name, kind: KindStore, mode: ModeM, args: []string{ptr, val, memFrom}}
}

// CallVal creates a Call node. method nil means an allocation call,
// identified by the absence of a methodReferences entry.
// Call produces a (value, memory) tuple; callers read ProjVal(..., call,
// ProjValue) / ProjVal(..., call, ProjMemResult) to extract each half.
func CallVal(name string, resultMode Mode, method *Method, memFrom string, args ...string) valSpec {
	all := append([]string{memFrom}, args...)
	return valSpec{name: name, kind: KindCall, mode: ModeT, args: all, isCall: true, callee: method, convTo: resultMode}
}

// DivVal and ModVal create Div/Mod nodes: ordinary binary-arithmetic
// source kinds producing a (value, memory) tuple just like Call, since
// a divide-by-zero trap means they too are side-effecting.
func DivVal(name string, resultMode Mode, a, b, memFrom string) valSpec {
	return valSpec{name: name, kind: KindDiv, mode: ModeT, args: []string{a, b, memFrom}, convTo: resultMode}
}

func ModVal(name string, resultMode Mode, a, b, memFrom string) valSpec {
	return valSpec{name: name, kind: KindMod, mode: ModeT, args: []string{a, b, memFrom}, convTo: resultMode}
}

// PhiVal creates a value Phi. args must be given in the same order as
// the containing block's predecessor edges.
func PhiVal(name string, mode Mode, args ...string) valSpec {
	return valSpec{name: name, kind: KindPhi, mode: mode, args: args}
}

// MemPhiVal creates a memory Phi, aliased to the block's memory input.
func MemPhiVal(name string, args ...string) valSpec {
	return valSpec{name: name, kind: KindPhi, mode: ModeM, args: args}
}

// UnknownVal creates an Unknown node, lowered to a zero immediate.
func UnknownVal(name string, mode Mode) valSpec {
	return valSpec{name: name, kind: KindUnknown, mode: mode}
}

// UnsupportedVal creates a node of a kind the driver has no visitor for,
// used to exercise UnsupportedNodeKind in tests.
func UnsupportedVal(name string) valSpec {
	return valSpec{name: name, kind: KindUnsupported, mode: ModeANY}
}

// ctrlSpec describes how a Bloc ends.
type ctrlSpec struct {
	kind     Kind // KindJmp, KindCond, or KindReturn
	target   string
	trueB    string
	falseB   string
	selector string
	value    string
	hasValue bool
}

// Goto terminates a block with an unconditional Jmp to target.
func Goto(target string) ctrlSpec { return ctrlSpec{kind: KindJmp, target: target} }

// Branch terminates a block with a Cond whose selector is the named
// boolean value, jumping to trueB when it holds and falseB otherwise.
func Branch(selector, trueB, falseB string) ctrlSpec {
	return ctrlSpec{kind: KindCond, selector: selector, trueB: trueB, falseB: falseB}
}

// Ret terminates a block with a Return carrying value.
func Ret(value string) ctrlSpec { return ctrlSpec{kind: KindReturn, value: value, hasValue: true} }

// RetVoid terminates a block with a valueless Return.
func RetVoid() ctrlSpec { return ctrlSpec{kind: KindReturn} }

// blocSpec is one block passed to Fun.
type blocSpec struct {
	name string
	ctrl ctrlSpec
	vals []valSpec
	mem  string // name of the value representing this block's incoming memory use, if any
}

// Bloc defines a block. entries must include exactly one ctrlSpec
// (produced by Goto/Branch/Ret/RetVoid) and any number of valSpecs
// (produced by Val/ConstVal/ProjVal/...).
func Bloc(name string, entries ...interface{}) blocSpec {
	b := blocSpec{name: name}
	seenCtrl := false
	for _, e := range entries {
		switch v := e.(type) {
		case ctrlSpec:
			if seenCtrl {
				panic("firm: block " + name + " has more than one terminator")
			}
			b.ctrl = v
			seenCtrl = true
		case valSpec:
			b.vals = append(b.vals, v)
		default:
			panic("firm: unknown Bloc entry")
		}
	}
	if !seenCtrl {
		panic("firm: block " + name + " has no terminator")
	}
	return b
}

// Built is the result of Fun: the constructed graph plus name indices
// into its blocks and values, mirroring fun's blocks/values maps in
// cmd/internal/ssa/func_test.go.
type Built struct {
	Graph   *Graph
	Program *Program
	Method  *Method
	Blocks  map[string]*Block
	Values  map[string]*Node
}

// Fun builds a complete source graph from a list of Bloc specs. entry
// names the block that control reaches first (Start's sole successor).
// params are the method's parameter modes; inside blocks they are read
// via ProjVal("...", mode, "start", i).
func Fun(entry string, params []Mode, blocs ...blocSpec) *Built {
	method := &Method{Name: entry, Params: params}
	g := NewGraph(entry, params...)
	prog := NewProgram()
	prog.AddMethod(method, g)

	blocks := make(map[string]*Block)
	values := make(map[string]*Node)

	for _, bs := range blocs {
		blocks[bs.name] = g.NewBlock(bs.name)
	}

	// First pass: create every value (so forward/backward references
	// within and across blocks both resolve), deferring Args wiring.
	pending := make([]struct {
		spec valSpec
		node *Node
	}, 0, len(values))
	for _, bs := range blocs {
		b := blocks[bs.name]
		for _, vs := range bs.vals {
			if vs.kind == KindConst {
				n := g.NewNode(KindConst, vs.mode, nil)
				n.ConstValue = vs.constValue
				n.Name = vs.name
				values[vs.name] = n
				continue
			}
			mode := vs.mode
			n := g.NewNode(vs.kind, mode, b)
			n.Name = vs.name
			n.Relation = vs.relation
			switch vs.kind {
			case KindConv:
				n.ConvFrom, n.ConvTo = vs.convFrom, vs.convTo
			case KindCall, KindDiv, KindMod:
				n.ValueMode = vs.convTo
			case KindProj:
				n.ProjNum = vs.projNum
			}
			values[vs.name] = n
			pending = append(pending, struct {
				spec valSpec
				node *Node
			}{vs, n})
			if vs.isCall {
				prog.ResolveCall(n, vs.callee)
			}
		}
	}

	lookup := func(name string) *Node {
		n, ok := values[name]
		if !ok {
			panic("firm: unknown value " + name)
		}
		return n
	}

	values["start"] = g.StartNode
	for _, p := range pending {
		var args []*Node
		if p.spec.kind == KindProj {
			args = []*Node{lookup(p.spec.projOf)}
		} else {
			for _, a := range p.spec.args {
				args = append(args, lookup(a))
			}
		}
		p.node.Args = args
	}

	// Second pass: wire terminators and control edges.
	for _, bs := range blocs {
		b := blocks[bs.name]
		switch bs.ctrl.kind {
		case KindJmp:
			jmp := g.NewNode(KindJmp, ModeX, b)
			target := blocks[bs.ctrl.target]
			AddControlEdge(jmp, target)
			b.Control = jmp
		case KindCond:
			cond := g.NewNode(KindCond, ModeT, b, lookup(bs.ctrl.selector))
			t := g.NewNode(KindProj, ModeX, b, cond)
			t.ProjNum = ProjTrue
			f := g.NewNode(KindProj, ModeX, b, cond)
			f.ProjNum = ProjFalse
			cond.TrueEdge, cond.FalseEdge = t, f
			AddControlEdge(t, blocks[bs.ctrl.trueB])
			AddControlEdge(f, blocks[bs.ctrl.falseB])
			b.Control = cond
		case KindReturn:
			var args []*Node
			if bs.ctrl.hasValue {
				args = []*Node{lookup(bs.ctrl.value)}
			}
			ret := g.NewNode(KindReturn, ModeX, b, args...)
			b.Control = ret
			g.EndNode.Args = append(g.EndNode.Args, ret)
		}
	}

	// Wire the graph's Start block to the declared entry block.
	startJmp := g.NewNode(KindJmp, ModeX, g.Start)
	AddControlEdge(startJmp, blocks[entry])
	g.Start.Control = startJmp

	return &Built{Graph: g, Program: prog, Method: method, Blocks: blocks, Values: values}
}

// KeepAlive adds an End keep-alive edge pinning an infinite-loop block.
// The edge is recorded on End only; the lowering driver lowers every
// block in Graph.Blocks and does not read keep-alive edges.
func (b *Built) KeepAlive(blockName string) {
	blk := b.Blocks[blockName]
	n := b.Graph.NewNode(KindKeepAlive, ModeANY, nil)
	n.PinnedBlock = blk
	b.Graph.EndNode.Args = append(b.Graph.EndNode.Args, n)
}
