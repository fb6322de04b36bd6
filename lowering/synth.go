package lowering

import (
	"gonum.org/v1/gonum/mat"

	"github.com/qfab-dev/gatepass/circuit"
)

// Synthesizer is the external oracle that turns small unitary matrices into
// native operation sequences. It is assumed synchronous and side-effect-free;
// callers may memoize it by input matrix.
type Synthesizer interface {
	// Synthesize1Q rewrites a 2x2 unitary into native single-qubit gates
	// on q.
	Synthesize1Q(u *mat.CDense, q circuit.Qubit) ([]circuit.Operation, error)
	// Synthesize2Q rewrites a 4x4 unitary into native gates on (q0, q1).
	// With allowPartialCZ it may emit partial controlled-phase gates for
	// shorter sequences.
	Synthesize2Q(u *mat.CDense, q0, q1 circuit.Qubit, allowPartialCZ bool) ([]circuit.Operation, error)
}
