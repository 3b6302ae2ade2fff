// Package llir implements the low-level IR data model: basic blocks of
// register-producing and side-effecting nodes, ready for instruction
// selection, register allocation, and assembly emission — all of which
// are downstream of this package.
package llir

import "fmt"

// Width is the bit width a VirtualRegister (or an immediate/load/store)
// carries.
type Width int

const (
	BIT8 Width = 8
	BIT32 Width = 32
	BIT64 Width = 64
)

func (w Width) String() string {
	return fmt.Sprintf("i%d", int(w))
}

// VirtualRegister is an (id, width) pair; two registers are the same
// register iff their ids match (width is carried for convenience/
// validation, not identity).
type VirtualRegister struct {
	ID    int
	Width Width
}

func (r VirtualRegister) String() string {
	return fmt.Sprintf("r%d:%s", r.ID, r.Width)
}

// VirtualRegisterGenerator is a monotonic id generator. One generator
// is owned per LlirGraph (i.e. per method), so register numbers reset
// across methods but are otherwise strictly increasing and therefore
// deterministic given a fixed traversal order.
type VirtualRegisterGenerator struct {
	next int
}

// New allocates a fresh virtual register of the given width.
func (g *VirtualRegisterGenerator) New(w Width) VirtualRegister {
	r := VirtualRegister{ID: g.next, Width: w}
	g.next++
	return r
}

// Count returns the number of registers allocated so far.
func (g *VirtualRegisterGenerator) Count() int { return g.next }
