package lowering

import (
	"strings"

	"github.com/qfab-dev/gatepass/circuit"
)

// Caster recognizes whether a gate already has a native representation and
// returns it. Pure function over the closed gate-variant set.
type Caster func(circuit.Gate) (circuit.Gate, bool)

// Decomposer rewrites an operation into sub-operations, or reports that it
// cannot.
type Decomposer func(circuit.Operation) ([]circuit.Operation, bool)

// KeepFunc marks operations that are already members of the target gate set.
type KeepFunc func(circuit.Operation) bool

// IsNative is the default keep predicate: the four native gate variants with
// matching arity.
func IsNative(op circuit.Operation) bool {
	switch op.Gate.(type) {
	case circuit.PhasedRotation, circuit.ZRotation:
		return len(op.Qubits) == 1
	case circuit.ControlledPhase:
		return len(op.Qubits) == 2
	case circuit.Measurement:
		return len(op.Qubits) >= 1
	}
	return false
}

// DefaultCaster maps well-known named opaque gates directly onto native
// gates.
func DefaultCaster(g circuit.Gate) (circuit.Gate, bool) {
	og, ok := g.(circuit.Opaque)
	if !ok {
		return nil, false
	}
	switch strings.ToLower(og.Name) {
	case "x":
		return circuit.NewFullRotation(0), true
	case "y":
		return circuit.NewFullRotation(0.5), true
	case "z":
		return circuit.NewZRotation(1), true
	case "s":
		return circuit.NewZRotation(0.5), true
	case "t":
		return circuit.NewZRotation(0.25), true
	case "cz":
		return circuit.NewControlledPhase(1), true
	}
	return nil, false
}

// DefaultDecomposer knows the structural decompositions of common named
// gates. The cx and swap rewrites produce further opaque gates, so lowering
// them exercises the recursive path.
func DefaultDecomposer(op circuit.Operation) ([]circuit.Operation, bool) {
	og, ok := op.Gate.(circuit.Opaque)
	if !ok {
		return nil, false
	}
	switch strings.ToLower(og.Name) {
	case "h":
		// H = X * Ry(pi/2) up to global phase.
		q := op.Qubits[0]
		return []circuit.Operation{
			circuit.On(circuit.NewPhasedRotation(0.5, 0.5), q),
			circuit.On(circuit.NewFullRotation(0), q),
		}, true
	case "cx", "cnot":
		ctrl, tgt := op.Qubits[0], op.Qubits[1]
		return []circuit.Operation{
			circuit.On(circuit.NewOpaque("h"), tgt),
			circuit.On(circuit.NewControlledPhase(1), ctrl, tgt),
			circuit.On(circuit.NewOpaque("h"), tgt),
		}, true
	case "swap":
		a, b := op.Qubits[0], op.Qubits[1]
		return []circuit.Operation{
			circuit.On(circuit.NewOpaque("cx"), a, b),
			circuit.On(circuit.NewOpaque("cx"), b, a),
			circuit.On(circuit.NewOpaque("cx"), a, b),
		}, true
	}
	return nil, false
}
