package lowering

import "fmt"

// UnconvertibleOperationError reports an operation that survived every
// lowering strategy in non-permissive mode.
type UnconvertibleOperationError struct {
	Gate       string
	QubitCount int
}

func (e *UnconvertibleOperationError) Error() string {
	return fmt.Sprintf("cannot lower %s on %d qubit(s): not castable, no computable unitary on at most 2 qubits, and not decomposable",
		e.Gate, e.QubitCount)
}

// NonTerminationError reports a decomposition chain that failed to reach the
// native gate set within the iteration budget. It indicates a contract
// violation by the decomposer.
type NonTerminationError struct {
	Gate   string
	Budget int
}

func (e *NonTerminationError) Error() string {
	return fmt.Sprintf("decomposition of %s did not reach the native gate set within %d iterations",
		e.Gate, e.Budget)
}
