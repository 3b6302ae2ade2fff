package lower

import (
	"context"

	"github.com/containerd/log"

	"github.com/mjcc/firmlower/internal/firm"
	"github.com/mjcc/firmlower/internal/llir"
)

// Options controls the lowering pipeline's external behavior.
type Options struct {
	// Dump logs each method's source graph shape before lowering it.
	Dump bool

	// Optimize routes lowering through InstructionSelection (optimize.go)
	// instead of the base FirmToLlir, folding select redundant
	// compare-against-zero patterns at selection time.
	Optimize bool
}

// LoweringResult is the pipeline's external contract: one LlirGraph
// and one ordered parameter-register list per successfully lowered
// method, plus the error for any method that failed. Lowering one
// method's failure never aborts the others.
type LoweringResult struct {
	Graphs     map[*firm.Method]*llir.LlirGraph
	Parameters map[*firm.Method][]llir.VirtualRegister
	Failures   map[*firm.Method]error
}

// visitor is the uniform surface options.go drives FirmToLlir and
// InstructionSelection through, so the caller never has to know which
// one it constructed.
type visitor interface {
	Lower() (*llir.LlirGraph, []llir.VirtualRegister, error)
}

// Lower runs the full pipeline over every method registered in prog, in
// registration order, and reports a LoweringResult covering both
// successes and per-method failures.
func Lower(ctx context.Context, prog *firm.Program, opts Options) *LoweringResult {
	result := &LoweringResult{
		Graphs:     make(map[*firm.Method]*llir.LlirGraph),
		Parameters: make(map[*firm.Method][]llir.VirtualRegister),
		Failures:   make(map[*firm.Method]error),
	}

	for _, method := range prog.Methods() {
		g := prog.Graph(method)
		if opts.Dump {
			log.G(ctx).WithField("method", method.Name).
				WithField("blocks", len(g.Blocks)).
				Debug("lowering method")
		}

		v := newDriverFor(prog, method, g, opts)
		out, params, err := v.Lower()
		if err != nil {
			log.G(ctx).WithField("method", method.Name).WithError(err).
				Error("method failed to lower, continuing with remaining methods")
			result.Failures[method] = err
			continue
		}
		result.Graphs[method] = out
		result.Parameters[method] = params
	}

	return result
}

// newDriverFor constructs the visitor appropriate for opts: a plain
// FirmToLlir, or one wrapped by InstructionSelection when optimizations
// are requested. InstructionSelection overrides node visits but
// inherits all φ/critical-edge/memory logic from the base driver.
func newDriverFor(prog *firm.Program, method *firm.Method, g *firm.Graph, opts Options) visitor {
	base := NewFirmToLlir(prog, method, g)
	if opts.Optimize {
		return NewInstructionSelection(base)
	}
	return base
}
