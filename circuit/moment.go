package circuit

import (
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Moment is a time slice of operations executed concurrently. The qubit
// sets of the operations in one moment are pairwise disjoint.
type Moment struct {
	Ops []Operation
}

// NewMoment builds a moment and checks the disjointness invariant.
func NewMoment(ops ...Operation) (Moment, error) {
	seen := mapset.NewThreadUnsafeSet[Qubit]()
	for _, op := range ops {
		for _, q := range op.Qubits {
			if !seen.Add(q) {
				return Moment{}, fmt.Errorf("%s overlaps another operation in the moment", q)
			}
		}
	}
	return Moment{Ops: ops}, nil
}

// MomentOf is NewMoment for statically disjoint call sites; it panics on
// overlapping qubits.
func MomentOf(ops ...Operation) Moment {
	m, err := NewMoment(ops...)
	if err != nil {
		panic(err)
	}
	return m
}

// Qubits returns the set of qubits the moment touches.
func (m Moment) Qubits() mapset.Set[Qubit] {
	qs := mapset.NewThreadUnsafeSet[Qubit]()
	for _, op := range m.Ops {
		for _, q := range op.Qubits {
			qs.Add(q)
		}
	}
	return qs
}

// OperationOn returns the operation acting on q, if any.
func (m Moment) OperationOn(q Qubit) (Operation, bool) {
	for _, op := range m.Ops {
		if op.Touches(q) {
			return op, true
		}
	}
	return Operation{}, false
}

// Sorted returns the operations ordered by their lowest qubit. Within a
// moment this order is total because qubit sets are disjoint.
func (m Moment) Sorted() []Operation {
	ops := make([]Operation, len(m.Ops))
	copy(ops, m.Ops)
	sort.Slice(ops, func(i, j int) bool {
		return ops[i].minQubit() < ops[j].minQubit()
	})
	return ops
}

// Equal compares moments as operation sets.
func (m Moment) Equal(other Moment) bool {
	if len(m.Ops) != len(other.Ops) {
		return false
	}
	a, b := m.Sorted(), other.Sorted()
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (m Moment) String() string {
	names := make([]string, 0, len(m.Ops))
	for _, op := range m.Sorted() {
		names = append(names, op.String())
	}
	return strings.Join(names, " | ")
}
