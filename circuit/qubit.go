package circuit

import "fmt"

// Qubit identifies a line qubit by its index. Qubits are ordered by index.
type Qubit int

func (q Qubit) String() string {
	return fmt.Sprintf("q[%d]", int(q))
}
