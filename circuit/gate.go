package circuit

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ArityAny marks gates that accept any number of qubits.
const ArityAny = -1

// Gate is the closed set of gate variants the passes reason about.
type Gate interface {
	fmt.Stringer
	// Arity is the number of qubits the gate acts on, or ArityAny.
	Arity() int
}

// PhasedRotation is a single-qubit rotation about an equatorial axis.
// PhaseExponent fixes the axis within the equatorial plane and Turns the
// rotation angle, both in half-turns. Turns exactly 1 (numeric) is the
// distinguished full rotation that the ejection pass relocates.
type PhasedRotation struct {
	PhaseExponent Param
	Turns         Param
}

func NewPhasedRotation(phaseExponent, turns float64) PhasedRotation {
	return PhasedRotation{PhaseExponent: Turns(phaseExponent), Turns: Turns(turns)}
}

// NewFullRotation is NewPhasedRotation with a whole turn.
func NewFullRotation(phaseExponent float64) PhasedRotation {
	return NewPhasedRotation(phaseExponent, 1)
}

func (g PhasedRotation) Arity() int { return 1 }

// FullRotation reports whether the rotation is a numeric whole turn.
func (g PhasedRotation) FullRotation() bool {
	return !g.Turns.Symbolic() && g.Turns.Value == 1
}

func (g PhasedRotation) Symbolic() bool {
	return g.PhaseExponent.Symbolic() || g.Turns.Symbolic()
}

func (g PhasedRotation) String() string {
	return fmt.Sprintf("W(phase=%s, turns=%s)", g.PhaseExponent, g.Turns)
}

// ZRotation is a single-qubit rotation about the reference Z axis.
type ZRotation struct {
	Turns Param
}

func NewZRotation(turns float64) ZRotation {
	return ZRotation{Turns: Turns(turns)}
}

func (g ZRotation) Arity() int { return 1 }

func (g ZRotation) String() string {
	return fmt.Sprintf("Z(turns=%s)", g.Turns)
}

// ControlledPhase applies a relative phase when both qubits are excited.
type ControlledPhase struct {
	Turns Param
}

func NewControlledPhase(turns float64) ControlledPhase {
	return ControlledPhase{Turns: Turns(turns)}
}

func (g ControlledPhase) Arity() int { return 2 }

func (g ControlledPhase) String() string {
	return fmt.Sprintf("CZ(turns=%s)", g.Turns)
}

// Measurement reads out its qubits. InvertMask flips the recorded classical
// outcome per qubit; it may be shorter than the qubit tuple, missing entries
// are false. Masks are kept with trailing falses trimmed so that two
// measurements with the same effect compare equal.
type Measurement struct {
	Key        string
	InvertMask []bool
}

func NewMeasurement(key string, invertMask ...bool) Measurement {
	return Measurement{Key: key, InvertMask: TrimInvertMask(invertMask)}
}

// TrimInvertMask drops trailing false entries; an all-false mask becomes nil.
func TrimInvertMask(mask []bool) []bool {
	end := len(mask)
	for end > 0 && !mask[end-1] {
		end--
	}
	if end == 0 {
		return nil
	}
	return mask[:end]
}

func (g Measurement) Arity() int { return ArityAny }

func (g Measurement) String() string {
	if len(g.InvertMask) == 0 {
		return fmt.Sprintf("M(%q)", g.Key)
	}
	marks := make([]string, len(g.InvertMask))
	for i, inv := range g.InvertMask {
		if inv {
			marks[i] = "!"
		} else {
			marks[i] = "."
		}
	}
	return fmt.Sprintf("M(%q, mask=%s)", g.Key, strings.Join(marks, ""))
}

// Opaque is the catch-all gate for everything outside the native set,
// including unsupported multi-qubit gates. Unitary, when present, is the
// row-major Dim x Dim matrix of the gate; a nil Unitary means the gate has
// no computable matrix and always acts as a barrier.
type Opaque struct {
	Name    string
	Unitary []complex128
	Dim     int
}

// NewOpaque builds a matrix-less opaque gate.
func NewOpaque(name string) Opaque {
	return Opaque{Name: name}
}

// NewOpaqueUnitary builds an opaque gate carrying a row-major dim x dim
// unitary matrix.
func NewOpaqueUnitary(name string, dim int, unitary []complex128) (Opaque, error) {
	if dim < 2 || dim&(dim-1) != 0 {
		return Opaque{}, fmt.Errorf("unitary dimension must be a power of two, got %d", dim)
	}
	if len(unitary) != dim*dim {
		return Opaque{}, fmt.Errorf("unitary of dimension %d needs %d entries, got %d",
			dim, dim*dim, len(unitary))
	}
	return Opaque{Name: name, Unitary: unitary, Dim: dim}, nil
}

// Matrix returns the unitary as a gonum matrix, or nil when the gate has
// no computable matrix.
func (g Opaque) Matrix() *mat.CDense {
	if g.Unitary == nil {
		return nil
	}
	return mat.NewCDense(g.Dim, g.Dim, g.Unitary)
}

func (g Opaque) Arity() int {
	switch g.Dim {
	case 2:
		return 1
	case 4:
		return 2
	}
	return ArityAny
}

func (g Opaque) String() string {
	return fmt.Sprintf("Opaque(%q)", g.Name)
}

func gateEqual(a, b Gate) bool {
	switch x := a.(type) {
	case PhasedRotation:
		y, ok := b.(PhasedRotation)
		return ok && x == y
	case ZRotation:
		y, ok := b.(ZRotation)
		return ok && x == y
	case ControlledPhase:
		y, ok := b.(ControlledPhase)
		return ok && x == y
	case Measurement:
		y, ok := b.(Measurement)
		return ok && x.Key == y.Key && boolsEqual(TrimInvertMask(x.InvertMask), TrimInvertMask(y.InvertMask))
	case Opaque:
		y, ok := b.(Opaque)
		return ok && x.Name == y.Name && x.Dim == y.Dim && complexesEqual(x.Unitary, y.Unitary)
	}
	return false
}

func boolsEqual(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func complexesEqual(a, b []complex128) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
