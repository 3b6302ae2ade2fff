package lower

import (
	"sort"

	"github.com/mjcc/firmlower/internal/llir"
)

// finalize is the output/schedule finalizer: it applies every output
// mark the main pass and the φ resolver deferred, installs the narrow
// φ-copy/InputNode-consumer schedule dependencies, and drives every
// remaining Finished block to Finalized. Calling it again on an already
// finalized graph changes nothing.
func (d *FirmToLlir) finalize() {
	for _, b := range d.out.Blocks {
		if b.State() == llir.StateFinalized {
			return
		}
	}
	sort.Slice(d.markedOutNodes, func(i, j int) bool { return d.markedOutNodes[i].def.ID < d.markedOutNodes[j].def.ID })
	for _, m := range d.markedOutNodes {
		owner := d.blocks[m.def.Block]
		owner.AddOutput(m.reg)
	}

	sort.Slice(d.markedMemNodes, func(i, j int) bool { return d.markedMemNodes[i].node.ID < d.markedMemNodes[j].node.ID })
	for _, m := range d.markedMemNodes {
		owner := d.blocks[m.node.Block]
		owner.AddMemoryOutput(m.llir)
	}

	for _, mov := range d.phiRegMoves {
		block := mov.Block()
		if block == nil {
			continue
		}
		for _, input := range block.Inputs {
			if input.Dst != mov.Dst {
				continue
			}
			for _, consumer := range block.Body() {
				if consumer == mov {
					continue
				}
				if consumesRegister(consumer, input.Dst) {
					block.AddScheduleDependency(mov, consumer)
				}
			}
		}
	}

	for _, b := range d.out.Blocks {
		if b.State() == llir.StateFinished {
			b.Finalize()
		}
	}
}

// consumesRegister reports whether n reads reg as one of its operands
// (Args, or MemIn/MemOut are untouched here: schedule dependencies only
// ever arise from a phi-copy clobbering a general-purpose register an
// ordinary consumer still needs).
func consumesRegister(n *llir.LlirNode, reg llir.VirtualRegister) bool {
	for _, a := range n.Args {
		if a == reg {
			return true
		}
	}
	return false
}
