package lower

import (
	"sort"

	"github.com/mjcc/firmlower/internal/firm"
	"github.com/mjcc/firmlower/internal/llir"
	"github.com/mjcc/firmlower/internal/lowererr"
)

// resolvePhis is the φ resolver post-pass: for every value φ recorded
// during the main visitor pass, place one copy per predecessor edge
// into the block that edge actually executes from — inserting a
// critical-edge splitter block first when needed — and record it so
// the finalizer can order it correctly against any InputNode consumer
// sharing its destination register.
func (d *FirmToLlir) resolvePhis() error {
	sort.Slice(d.phiPlans, func(i, j int) bool { return d.phiPlans[i].phi.ID < d.phiPlans[j].phi.ID })

	for _, plan := range d.phiPlans {
		phi := plan.phi
		head := phi.Block
		for i, operand := range phi.Args {
			tail := head.Pred(i)
			placement, err := d.placementBlock(head, tail, i)
			if err != nil {
				return err
			}
			mov, err := d.emitPhiCopy(placement, plan.accum, operand)
			if err != nil {
				return err
			}
			if mov != nil {
				d.phiRegMoves = append(d.phiRegMoves, mov)
			}
		}
	}
	return nil
}

// placementBlock returns the LLIR block a φ-copy for the edge
// (tail -> head, predecessor index predIndex) must be placed in: the
// edge's own originating block when the edge is not critical, or a
// freshly inserted splitter block when it is.
func (d *FirmToLlir) placementBlock(head *firm.Block, tail *firm.Node, predIndex int) (*llir.BasicBlock, error) {
	if d.analysis.isCritical(tail, head) {
		return d.insertedBlockFor(head, predIndex, tail)
	}
	lb, ok := d.blocks[tail.Block]
	if !ok {
		return nil, lowererr.InvariantViolation("predecessor edge tail has no lowered block", blockID(tail.Block), tail.ID)
	}
	return lb, nil
}

// insertedBlockFor lazily creates (or returns the already-created) LLIR
// splitter block for a critical edge, rewriting the edge's terminator
// to route through it. Splitter blocks have no corresponding source
// block, so d.sourceOf has no entry for them — any later lookup
// against one naturally takes the cross-block path.
func (d *FirmToLlir) insertedBlockFor(head *firm.Block, predIndex int, tail *firm.Node) (*llir.BasicBlock, error) {
	key := insertedKey{head: head, index: predIndex}
	if b, ok := d.insertedBlocks[key]; ok {
		return b, nil
	}

	headLb := d.blocks[head]
	splitter := d.out.NewBlock()
	splitter.Begin()
	splitter.SetTerminator(llir.Jump(headLb))
	d.insertedBlocks[key] = splitter

	tailLb, ok := d.blocks[tail.Block]
	if !ok {
		return nil, lowererr.InvariantViolation("critical edge tail has no lowered block", blockID(tail.Block), tail.ID)
	}
	term := tailLb.Terminator()
	switch tail.Kind {
	case firm.KindJmp:
		if term == nil || term.Op != llir.OpJump {
			return nil, lowererr.InvariantViolation("Jmp edge's block terminator is not a Jump", blockID(tail.Block), tail.ID)
		}
		term.Targets[0] = splitter
	case firm.KindProj:
		if term == nil || term.Op != llir.OpBranch {
			return nil, lowererr.MalformedControlProjection("Cond edge's block terminator is not a Branch", blockID(tail.Block), tail.ID)
		}
		switch tail.ProjNum {
		case firm.ProjTrue:
			term.Targets[0] = splitter
		case firm.ProjFalse:
			term.Targets[1] = splitter
		default:
			return nil, lowererr.MalformedControlProjection("unexpected ProjNum on a Cond edge", blockID(tail.Block), tail.ID)
		}
	default:
		return nil, lowererr.InvariantViolation("unsupported control-edge tail kind "+tail.Kind.String(), blockID(tail.Block), tail.ID)
	}

	return splitter, nil
}

// emitPhiCopy places one φ-copy in placement: a MovImmediate for a
// constant operand, or a MovRegister reading the operand's already
// materialized (or newly cross-block-materialized) register otherwise.
// Either way the accumulator is recorded as an output of placement, and
// the copy is returned so the finalizer can order it against any
// InputNode consumer of the same register.
func (d *FirmToLlir) emitPhiCopy(placement *llir.BasicBlock, accum llir.VirtualRegister, operand *firm.Node) (*llir.LlirNode, error) {
	if operand.Kind == firm.KindConst {
		mov := llir.MovImmediate(accum, operand.ConstValue)
		placement.InsertBeforeTerminator(mov)
		placement.AddOutput(accum)
		return mov, nil
	}

	if err := d.ensureLowered(operand); err != nil {
		return nil, err
	}
	defLlir, ok := d.value[operand]
	if !ok {
		return nil, lowererr.InvariantViolation("phi operand was not lowered", blockID(operand.Block), operand.ID)
	}

	placementSource := d.sourceBlockOf(placement)
	var src llir.VirtualRegister
	if placementSource != nil && operand.Block == placementSource {
		src = defLlir.Dst
	} else {
		d.markOutput(operand, defLlir.Dst)
		src = d.getOrCreateInput(placement, defLlir.Dst).Dst
	}

	mov := llir.MovRegister(accum, src)
	placement.InsertBeforeTerminator(mov)
	placement.AddOutput(accum)
	return mov, nil
}
