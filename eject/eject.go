// Package eject eliminates or relocates full equatorial rotations by
// commuting them rightward through Z rotations, controlled-phase gates and
// measurements, preserving measurement statistics and unitary action up to
// global phase.
package eject

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/qfab-dev/gatepass/circuit"
)

// Setting configures an Optimizer. Tolerance widens the test that decides
// whether a residual Z rotation is the identity and whether a rotation is a
// whole turn; zero means exact comparison.
type Setting struct {
	Tolerance float64 `toml:"tolerance"`
}

func NewSetting() Setting {
	return Setting{Tolerance: 0}
}

// Optimizer runs the ejection pass. It holds no state across circuits.
type Optimizer struct {
	setting Setting
}

func NewOptimizer(setting Setting) *Optimizer {
	return &Optimizer{setting: setting}
}

// OptimizeCircuit rewrites the circuit in place. The pass is a single
// forward scan in moment order with one pending rotation per qubit at most;
// it never fails and is idempotent on its own output.
func (o *Optimizer) OptimizeCircuit(c *circuit.Circuit) {
	s := &scan{
		tolerance: o.setting.Tolerance,
		held:      make(map[circuit.Qubit]float64),
		out:       circuit.NewBuilder(),
	}
	for _, m := range c.Moments {
		for _, op := range m.Sorted() {
			s.process(op)
		}
	}
	qs := make([]circuit.Qubit, 0, len(s.held))
	for q := range s.held {
		qs = append(qs, q)
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i] < qs[j] })
	for _, q := range qs {
		s.flush(q)
	}
	if s.ejected > 0 {
		zap.L().Debug(fmt.Sprintf("ejected %d full rotation(s)", s.ejected))
	}
	*c = *s.out.Circuit()
}

type scan struct {
	tolerance float64
	held      map[circuit.Qubit]float64
	out       *circuit.Builder
	ejected   int
}

func (s *scan) process(op circuit.Operation) {
	if !s.touchesHeld(op) {
		if w, ok := op.Gate.(circuit.PhasedRotation); ok && s.fullRotation(w) {
			s.held[op.Qubits[0]] = w.PhaseExponent.Value
			return
		}
		s.out.Append(op)
		return
	}

	switch g := op.Gate.(type) {
	case circuit.ZRotation:
		if g.Turns.Symbolic() {
			s.barrier(op)
			return
		}
		q := op.Qubits[0]
		s.held[q] = circuit.CanonicalTurns(s.held[q] + g.Turns.Value/2)

	case circuit.PhasedRotation:
		if g.Symbolic() {
			s.barrier(op)
			return
		}
		q := op.Qubits[0]
		phi := s.held[q]
		if s.fullRotation(g) {
			// Two full rotations compose to a Z rotation.
			delete(s.held, q)
			s.ejected += 2
			if t := circuit.CanonicalTurns(2 * (g.PhaseExponent.Value - phi)); math.Abs(t) > s.tolerance {
				s.out.Append(circuit.On(circuit.NewZRotation(t), q))
			}
			return
		}
		// Partial rotation: reflect its axis through the held one and let
		// it pass; the held rotation materializes later, hence after it.
		s.out.Append(circuit.On(
			circuit.NewPhasedRotation(2*phi-g.PhaseExponent.Value, g.Turns.Value), q))

	case circuit.ControlledPhase:
		if g.Turns.Symbolic() {
			s.barrier(op)
			return
		}
		a, b := op.Qubits[0], op.Qubits[1]
		_, heldA := s.held[a]
		_, heldB := s.held[b]
		if heldA && heldB {
			// Both pending rotations cross together; the gate survives
			// unchanged and each phase advances by half the turns.
			s.held[a] = circuit.CanonicalTurns(s.held[a] + g.Turns.Value/2)
			s.held[b] = circuit.CanonicalTurns(s.held[b] + g.Turns.Value/2)
			s.out.Append(op)
			return
		}
		clean := b
		if heldB {
			clean = a
		}
		s.out.Append(circuit.On(circuit.NewZRotation(g.Turns.Value), clean))
		s.out.Append(circuit.On(circuit.NewControlledPhase(-g.Turns.Value), a, b))

	case circuit.Measurement:
		// A full rotation right before readout only swaps the outcomes,
		// regardless of its axis.
		mask := make([]bool, len(op.Qubits))
		copy(mask, g.InvertMask)
		for i, q := range op.Qubits {
			if _, ok := s.held[q]; ok {
				mask[i] = !mask[i]
				delete(s.held, q)
				s.ejected++
			}
		}
		s.out.Append(circuit.Operation{
			Gate:   circuit.Measurement{Key: g.Key, InvertMask: circuit.TrimInvertMask(mask)},
			Qubits: op.Qubits,
		})

	default:
		s.barrier(op)
	}
}

// barrier discharges every pending rotation the operation touches, in
// ascending qubit order, then lets the operation pass unmodified.
func (s *scan) barrier(op circuit.Operation) {
	qs := make([]circuit.Qubit, len(op.Qubits))
	copy(qs, op.Qubits)
	sort.Slice(qs, func(i, j int) bool { return qs[i] < qs[j] })
	for _, q := range qs {
		if _, ok := s.held[q]; ok {
			s.flush(q)
		}
	}
	s.out.Append(op)
}

func (s *scan) flush(q circuit.Qubit) {
	phi := s.held[q]
	delete(s.held, q)
	s.out.Append(circuit.On(circuit.NewFullRotation(phi), q))
}

func (s *scan) touchesHeld(op circuit.Operation) bool {
	for _, q := range op.Qubits {
		if _, ok := s.held[q]; ok {
			return true
		}
	}
	return false
}

func (s *scan) fullRotation(g circuit.PhasedRotation) bool {
	if g.Symbolic() {
		return false
	}
	return math.Abs(g.Turns.Value-1) <= s.tolerance
}
