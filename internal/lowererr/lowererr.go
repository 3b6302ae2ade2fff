// Package lowererr defines the lowering core's typed error taxonomy:
// every error a component returns is one of five causes — an
// unrecognized source node kind, an unsupported Conv width pair, an
// unsupported comparison relation feeding a branch, a malformed
// control projection, or an internal invariant violation — each
// carrying the diagnostic a caller needs (source node id/kind, block
// id) without any retry semantics, since every one of these is a
// defect in the input graph or the lowering core itself.
//
// The wrap-and-classify shape (a causal error embedding the original
// error, a marker interface, a constructor, and an Is* predicate that
// walks Cause()/Unwrap() chains) is a common convention for typed
// error taxonomies in larger Go codebases.
package lowererr

import "fmt"

// causal is satisfied by any error that names the error it wraps,
// independently of Unwrap (both are supported so that errors
// constructed before Go 1.13's wrapping convention still classify).
type causal interface {
	Cause() error
}

// ErrUnsupportedNodeKind marks a node kind the driver has no visitor
// for.
type ErrUnsupportedNodeKind interface {
	UnsupportedNodeKind()
}

// ErrUnsupportedConversion marks a Conv between modes the lowering
// core does not implement.
type ErrUnsupportedConversion interface {
	UnsupportedConversion()
}

// ErrUnsupportedBranchPredicate marks a Cond whose selector chain
// bottoms out on something other than a direct Cmp, or a Cmp carrying
// RelUnordered.
type ErrUnsupportedBranchPredicate interface {
	UnsupportedBranchPredicate()
}

// ErrMalformedControlProjection marks a Cond missing one of its two
// Proj children, or a Proj whose ProjNum does not match either branch.
type ErrMalformedControlProjection interface {
	MalformedControlProjection()
}

// ErrInvariantViolation marks a condition the lowering core asserts
// internally (e.g. a block reached with no terminator set, a parameter
// projection number out of range) — these
// indicate a bug in the core itself rather than a malformed input
// graph, but are still reported through the same typed channel rather
// than a panic so a driver (e.g. cmd/firmlowerc) can report them
// uniformly.
type ErrInvariantViolation interface {
	InvariantViolation()
}

type diagnosticError struct {
	cause   error
	kind    string
	blockID int
	nodeID  int
	msg     string
}

func (e *diagnosticError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return e.cause.Error()
}

func (e *diagnosticError) Cause() error  { return e.cause }
func (e *diagnosticError) Unwrap() error { return e.cause }

// Kind returns the source node kind name associated with the error, if
// any.
func (e *diagnosticError) Kind() string { return e.kind }

// BlockID returns the source block id associated with the error, or -1
// if none was recorded.
func (e *diagnosticError) BlockID() int { return e.blockID }

// NodeID returns the source node id associated with the error, or -1
// if none was recorded.
func (e *diagnosticError) NodeID() int { return e.nodeID }

type unsupportedNodeKindError struct{ *diagnosticError }

func (unsupportedNodeKindError) UnsupportedNodeKind() {}

// UnsupportedNodeKind reports that the node (nodeID, kind) in block
// blockID has no lowering visitor.
func UnsupportedNodeKind(kind string, blockID, nodeID int) error {
	return unsupportedNodeKindError{&diagnosticError{
		cause:   fmt.Errorf("node kind %s has no lowering", kind),
		kind:    kind,
		blockID: blockID,
		nodeID:  nodeID,
		msg:     fmt.Sprintf("lowering: block %d: node %d: unsupported node kind %s", blockID, nodeID, kind),
	}}
}

// IsUnsupportedNodeKind reports whether err is, or wraps, an
// UnsupportedNodeKind error.
func IsUnsupportedNodeKind(err error) bool {
	_, ok := getImplementer(err).(ErrUnsupportedNodeKind)
	return ok
}

type unsupportedConversionError struct{ *diagnosticError }

func (unsupportedConversionError) UnsupportedConversion() {}

// UnsupportedConversion reports that a Conv node in block blockID
// converts between a mode pair the lowering core has no rule for.
func UnsupportedConversion(from, to string, blockID, nodeID int) error {
	return unsupportedConversionError{&diagnosticError{
		cause:   fmt.Errorf("conversion %s -> %s is unsupported", from, to),
		kind:    "Conv",
		blockID: blockID,
		nodeID:  nodeID,
		msg:     fmt.Sprintf("lowering: block %d: node %d: unsupported conversion %s -> %s", blockID, nodeID, from, to),
	}}
}

// IsUnsupportedConversion reports whether err is, or wraps, an
// UnsupportedConversion error.
func IsUnsupportedConversion(err error) bool {
	_, ok := getImplementer(err).(ErrUnsupportedConversion)
	return ok
}

type unsupportedBranchPredicateError struct{ *diagnosticError }

func (unsupportedBranchPredicateError) UnsupportedBranchPredicate() {}

// UnsupportedBranchPredicate reports that the Cond in block blockID
// does not resolve to a direct Cmp over one of the five supported
// relations.
func UnsupportedBranchPredicate(reason string, blockID, nodeID int) error {
	return unsupportedBranchPredicateError{&diagnosticError{
		cause:   fmt.Errorf("unsupported branch predicate: %s", reason),
		kind:    "Cond",
		blockID: blockID,
		nodeID:  nodeID,
		msg:     fmt.Sprintf("lowering: block %d: node %d: unsupported branch predicate: %s", blockID, nodeID, reason),
	}}
}

// IsUnsupportedBranchPredicate reports whether err is, or wraps, an
// UnsupportedBranchPredicate error.
func IsUnsupportedBranchPredicate(err error) bool {
	_, ok := getImplementer(err).(ErrUnsupportedBranchPredicate)
	return ok
}

type malformedControlProjectionError struct{ *diagnosticError }

func (malformedControlProjectionError) MalformedControlProjection() {}

// MalformedControlProjection reports that the Cond/Proj shape at
// (blockID, nodeID) does not match the two-child true/false invariant
// the resolver depends on.
func MalformedControlProjection(reason string, blockID, nodeID int) error {
	return malformedControlProjectionError{&diagnosticError{
		cause:   fmt.Errorf("malformed control projection: %s", reason),
		kind:    "Proj",
		blockID: blockID,
		nodeID:  nodeID,
		msg:     fmt.Sprintf("lowering: block %d: node %d: malformed control projection: %s", blockID, nodeID, reason),
	}}
}

// IsMalformedControlProjection reports whether err is, or wraps, a
// MalformedControlProjection error.
func IsMalformedControlProjection(err error) bool {
	_, ok := getImplementer(err).(ErrMalformedControlProjection)
	return ok
}

type invariantViolationError struct{ *diagnosticError }

func (invariantViolationError) InvariantViolation() {}

// InvariantViolation reports that an internal lowering-core invariant
// failed at (blockID, nodeID); nodeID may be -1 when the violation is
// block-scoped rather than node-scoped.
func InvariantViolation(reason string, blockID, nodeID int) error {
	return invariantViolationError{&diagnosticError{
		cause:   fmt.Errorf("invariant violation: %s", reason),
		kind:    "",
		blockID: blockID,
		nodeID:  nodeID,
		msg:     fmt.Sprintf("lowering: block %d: invariant violation: %s", blockID, reason),
	}}
}

// IsInvariantViolation reports whether err is, or wraps, an
// InvariantViolation error.
func IsInvariantViolation(err error) bool {
	_, ok := getImplementer(err).(ErrInvariantViolation)
	return ok
}

// getImplementer walks err's cause/unwrap chain, returning the first
// link that implements any of this package's marker interfaces. A
// plain errors.New/fmt.Errorf error that merely wraps one of ours
// still classifies, matching errors.Is's transparency.
func getImplementer(err error) error {
	switch e := err.(type) {
	case
		ErrUnsupportedNodeKind,
		ErrUnsupportedConversion,
		ErrUnsupportedBranchPredicate,
		ErrMalformedControlProjection,
		ErrInvariantViolation:
		return err
	case causal:
		return getImplementer(e.Cause())
	case interface{ Unwrap() error }:
		return getImplementer(e.Unwrap())
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			impl := getImplementer(inner)
			if impl != inner {
				return impl
			}
			switch impl.(type) {
			case ErrUnsupportedNodeKind, ErrUnsupportedConversion, ErrUnsupportedBranchPredicate,
				ErrMalformedControlProjection, ErrInvariantViolation:
				return impl
			}
		}
		return err
	default:
		return err
	}
}
