package circuit

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/mohae/deepcopy"
	"go.uber.org/multierr"
)

// Circuit is an ordered sequence of moments. Both passes mutate a circuit
// in place; no state is retained across invocations.
type Circuit struct {
	Moments []Moment
}

func New(moments ...Moment) *Circuit {
	return &Circuit{Moments: moments}
}

// FromOperations packs an operation stream into moments with the earliest
// strategy (see Builder).
func FromOperations(ops ...Operation) *Circuit {
	b := NewBuilder()
	for _, op := range ops {
		b.Append(op)
	}
	return b.Circuit()
}

// Equal compares circuits moment-wise; each moment compares as an
// operation set.
func (c *Circuit) Equal(other *Circuit) bool {
	if len(c.Moments) != len(other.Moments) {
		return false
	}
	for i := range c.Moments {
		if !c.Moments[i].Equal(other.Moments[i]) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the circuit.
func (c *Circuit) Copy() *Circuit {
	return deepcopy.Copy(c).(*Circuit)
}

// AllOperations returns every operation in moment order, ascending-qubit
// order within each moment.
func (c *Circuit) AllOperations() []Operation {
	var ops []Operation
	for _, m := range c.Moments {
		ops = append(ops, m.Sorted()...)
	}
	return ops
}

// Qubits returns the set of qubits the circuit touches.
func (c *Circuit) Qubits() mapset.Set[Qubit] {
	qs := mapset.NewThreadUnsafeSet[Qubit]()
	for _, m := range c.Moments {
		qs = qs.Union(m.Qubits())
	}
	return qs
}

// Validate checks the structural invariants of every moment and reports all
// violations at once. The transformation passes assume these hold and do not
// re-validate.
func (c *Circuit) Validate() error {
	var err error
	for i, m := range c.Moments {
		seen := mapset.NewThreadUnsafeSet[Qubit]()
		for _, op := range m.Ops {
			if _, opErr := NewOperation(op.Gate, op.Qubits...); opErr != nil {
				err = multierr.Append(err, fmt.Errorf("moment %d: %w", i, opErr))
			}
			for _, q := range op.Qubits {
				if !seen.Add(q) {
					err = multierr.Append(err,
						fmt.Errorf("moment %d: %s overlaps another operation", i, q))
				}
			}
		}
	}
	return err
}

// ReplaceSpan removes the operation occupying qubits in the moment at
// momentIndex and splices newOps causally after it, preserving the relative
// order of unrelated operations. The replacement operations must act only on
// the cleared qubits. Returns the number of moments inserted.
func (c *Circuit) ReplaceSpan(momentIndex int, qubits []Qubit, newOps []Operation) int {
	cleared := mapset.NewThreadUnsafeSet[Qubit](qubits...)
	var rest []Operation
	for _, op := range c.Moments[momentIndex].Ops {
		overlaps := false
		for _, q := range op.Qubits {
			if cleared.Contains(q) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			rest = append(rest, op)
		}
	}

	groups := packDisjoint(newOps)
	if len(groups) == 0 {
		c.Moments[momentIndex] = Moment{Ops: rest}
		return 0
	}
	c.Moments[momentIndex] = Moment{Ops: append(rest, groups[0]...)}

	inserted := make([]Moment, 0, len(groups)-1)
	for _, g := range groups[1:] {
		inserted = append(inserted, Moment{Ops: g})
	}
	tail := make([]Moment, len(c.Moments[momentIndex+1:]))
	copy(tail, c.Moments[momentIndex+1:])
	c.Moments = append(c.Moments[:momentIndex+1], append(inserted, tail...)...)
	return len(inserted)
}

// packDisjoint groups an ordered operation stream into maximal runs of
// qubit-disjoint operations.
func packDisjoint(ops []Operation) [][]Operation {
	var groups [][]Operation
	var cur []Operation
	busy := mapset.NewThreadUnsafeSet[Qubit]()
	for _, op := range ops {
		conflict := false
		for _, q := range op.Qubits {
			if busy.Contains(q) {
				conflict = true
				break
			}
		}
		if conflict {
			groups = append(groups, cur)
			cur = nil
			busy.Clear()
		}
		cur = append(cur, op)
		for _, q := range op.Qubits {
			busy.Add(q)
		}
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

func (c *Circuit) String() string {
	var b strings.Builder
	for i, m := range c.Moments {
		fmt.Fprintf(&b, "%d: %s\n", i, m)
	}
	return b.String()
}
