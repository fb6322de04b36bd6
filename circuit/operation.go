package circuit

import (
	"fmt"
	"strings"
)

// Operation is a gate applied to an ordered tuple of qubits.
type Operation struct {
	Gate   Gate
	Qubits []Qubit
}

// NewOperation builds an operation and checks the gate arity against the
// qubit tuple.
func NewOperation(g Gate, qubits ...Qubit) (Operation, error) {
	if len(qubits) == 0 {
		return Operation{}, fmt.Errorf("%s applied to no qubits", g)
	}
	if arity := g.Arity(); arity != ArityAny && arity != len(qubits) {
		return Operation{}, fmt.Errorf("%s acts on %d qubit(s), got %d", g, arity, len(qubits))
	}
	seen := make(map[Qubit]struct{}, len(qubits))
	for _, q := range qubits {
		if _, dup := seen[q]; dup {
			return Operation{}, fmt.Errorf("%s applied to duplicate qubit %s", g, q)
		}
		seen[q] = struct{}{}
	}
	if m, ok := g.(Measurement); ok && len(m.InvertMask) > len(qubits) {
		return Operation{}, fmt.Errorf("invert mask of length %d exceeds %d measured qubit(s)",
			len(m.InvertMask), len(qubits))
	}
	return Operation{Gate: g, Qubits: qubits}, nil
}

// On is NewOperation for statically valid call sites; it panics on an arity
// mismatch.
func On(g Gate, qubits ...Qubit) Operation {
	op, err := NewOperation(g, qubits...)
	if err != nil {
		panic(err)
	}
	return op
}

func (o Operation) Equal(other Operation) bool {
	if len(o.Qubits) != len(other.Qubits) {
		return false
	}
	for i := range o.Qubits {
		if o.Qubits[i] != other.Qubits[i] {
			return false
		}
	}
	return gateEqual(o.Gate, other.Gate)
}

// Touches reports whether the operation acts on q.
func (o Operation) Touches(q Qubit) bool {
	for _, oq := range o.Qubits {
		if oq == q {
			return true
		}
	}
	return false
}

func (o Operation) minQubit() Qubit {
	min := o.Qubits[0]
	for _, q := range o.Qubits[1:] {
		if q < min {
			min = q
		}
	}
	return min
}

func (o Operation) String() string {
	names := make([]string, len(o.Qubits))
	for i, q := range o.Qubits {
		names[i] = q.String()
	}
	return fmt.Sprintf("%s on %s", o.Gate, strings.Join(names, ","))
}
