//go:build unit
// +build unit

package eject

import (
	"math"
	"math/cmplx"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qfab-dev/gatepass/circuit"
)

// The checks below validate the pass's equivalence obligation numerically
// for circuits on at most two qubits: the optimized circuit must implement
// the same unitary as the input up to global phase. Circuits containing
// measurements or symbolic parameters are asserted structurally instead.

const unitaryTol = 1e-9

func assertSameUnitaryEffect(t *testing.T, before, after *circuit.Circuit) {
	t.Helper()
	qubits := unionQubits(before, after)
	if !assert.LessOrEqual(t, len(qubits), 2, "unitary check supports at most 2 qubits") {
		return
	}
	u1, ok1 := circuitUnitary(before, qubits)
	u2, ok2 := circuitUnitary(after, qubits)
	if !ok1 || !ok2 {
		t.Fatalf("circuit has no computable unitary")
	}
	assert.True(t, equalUpToGlobalPhase(u1, u2),
		"unitaries differ beyond global phase\nbefore:\n%s\nafter:\n%s", before, after)
}

func unionQubits(cs ...*circuit.Circuit) []circuit.Qubit {
	set := map[circuit.Qubit]struct{}{}
	for _, c := range cs {
		for _, op := range c.AllOperations() {
			for _, q := range op.Qubits {
				set[q] = struct{}{}
			}
		}
	}
	qs := make([]circuit.Qubit, 0, len(set))
	for q := range set {
		qs = append(qs, q)
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i] < qs[j] })
	return qs
}

// circuitUnitary multiplies out the whole circuit over the given qubit
// order, most significant first. Returns ok=false when any operation has no
// computable matrix.
func circuitUnitary(c *circuit.Circuit, qubits []circuit.Qubit) ([]complex128, bool) {
	n := 1 << len(qubits)
	u := identity(n)
	for _, op := range c.AllOperations() {
		g, ok := operationUnitary(op, qubits)
		if !ok {
			return nil, false
		}
		u = matMul(g, u, n)
	}
	return u, true
}

func operationUnitary(op circuit.Operation, qubits []circuit.Qubit) ([]complex128, bool) {
	switch g := op.Gate.(type) {
	case circuit.PhasedRotation:
		if g.Symbolic() {
			return nil, false
		}
		return embed1Q(phasedXMat(g.PhaseExponent.Value, g.Turns.Value), op.Qubits[0], qubits), true
	case circuit.ZRotation:
		if g.Turns.Symbolic() {
			return nil, false
		}
		return embed1Q(zPowMat(g.Turns.Value), op.Qubits[0], qubits), true
	case circuit.ControlledPhase:
		if g.Turns.Symbolic() {
			return nil, false
		}
		if len(qubits) != 2 {
			return nil, false
		}
		// Diagonal and symmetric, so the qubit order does not matter.
		return czPowMat(g.Turns.Value), true
	case circuit.Opaque:
		m := g.Matrix()
		if m == nil {
			return nil, false
		}
		r, _ := m.Dims()
		flat := make([]complex128, r*r)
		for i := 0; i < r; i++ {
			for j := 0; j < r; j++ {
				flat[i*r+j] = m.At(i, j)
			}
		}
		if r == 2 {
			return embed1Q(flat, op.Qubits[0], qubits), true
		}
		if r == 4 && len(qubits) == 2 {
			if op.Qubits[0] > op.Qubits[1] {
				s := swapMat()
				flat = matMul(s, matMul(flat, s, 4), 4)
			}
			return flat, true
		}
		return nil, false
	}
	return nil, false
}

func phasedXMat(phase, turns float64) []complex128 {
	// Z^p X^t Z^-p with X^t = e^{i pi t/2} (cos(pi t/2) I - i sin(pi t/2) X).
	c := complex(math.Cos(math.Pi*turns/2), 0)
	s := complex(0, -math.Sin(math.Pi*turns/2))
	g := cmplx.Exp(complex(0, math.Pi*turns/2))
	e := cmplx.Exp(complex(0, math.Pi*phase))
	return []complex128{
		g * c, g * s / e,
		g * s * e, g * c,
	}
}

func zPowMat(turns float64) []complex128 {
	return []complex128{
		1, 0,
		0, cmplx.Exp(complex(0, math.Pi*turns)),
	}
}

func czPowMat(turns float64) []complex128 {
	u := identity(4)
	u[15] = cmplx.Exp(complex(0, math.Pi * turns))
	return u
}

func swapMat() []complex128 {
	return []complex128{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	}
}

func identity(n int) []complex128 {
	u := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		u[i*n+i] = 1
	}
	return u
}

func matMul(a, b []complex128, n int) []complex128 {
	out := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			if a[i*n+k] == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out[i*n+j] += a[i*n+k] * b[k*n+j]
			}
		}
	}
	return out
}

func kron(a []complex128, na int, b []complex128, nb int) []complex128 {
	n := na * nb
	out := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i*n+j] = a[(i/nb)*na+j/nb] * b[(i%nb)*nb+j%nb]
		}
	}
	return out
}

// embed1Q lifts a single-qubit matrix onto the full register, qubits listed
// most significant first.
func embed1Q(g []complex128, q circuit.Qubit, qubits []circuit.Qubit) []complex128 {
	u := []complex128{1}
	n := 1
	for _, rq := range qubits {
		if rq == q {
			u = kron(u, n, g, 2)
		} else {
			u = kron(u, n, identity(2), 2)
		}
		n *= 2
	}
	return u
}

func equalUpToGlobalPhase(a, b []complex128) bool {
	if len(a) != len(b) {
		return false
	}
	var phase complex128
	for i := range b {
		if cmplx.Abs(b[i]) > 1e-6 {
			phase = a[i] / b[i]
			break
		}
	}
	if math.Abs(cmplx.Abs(phase)-1) > unitaryTol {
		return false
	}
	for i := range a {
		if cmplx.Abs(a[i]-phase*b[i]) > unitaryTol {
			return false
		}
	}
	return true
}
