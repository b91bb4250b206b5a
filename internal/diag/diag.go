package diag

import "fmt"

// Kind enumerates every failure the checker can report.
type Kind int

const (
	Redeclaration Kind = iota
	NotFound
	KindMismatch
	ArityMismatch
	UnifyFail
	UnresolvedHole
	OverlappingImpl
	InvalidOp
	UnexpectedEnd
	Overflow
	InvariantViolated
)

var kindNames = map[Kind]string{
	Redeclaration:     "redeclaration",
	NotFound:          "not found",
	KindMismatch:      "kind mismatch",
	ArityMismatch:     "arity mismatch",
	UnifyFail:         "unify failure",
	UnresolvedHole:    "unresolved hole",
	OverlappingImpl:   "overlapping impl",
	InvalidOp:         "invalid opcode",
	UnexpectedEnd:     "unexpected end",
	Overflow:          "overflow",
	InvariantViolated: "invariant violated",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("diag.Kind(%d)", int(k))
}

// Error is the single error type raised by the checker core.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the diagnostic kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	if e, ok := err.(*Error); ok {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err is a checker diagnostic of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
