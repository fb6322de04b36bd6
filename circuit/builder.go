package circuit

// Builder packs an operation stream into moments with the earliest
// strategy: each operation lands in the first moment after the last moment
// touching any of its qubits. Both passes rebuild their output through a
// Builder, which makes the resulting moment structure deterministic.
type Builder struct {
	moments  []Moment
	frontier map[Qubit]int
}

func NewBuilder() *Builder {
	return &Builder{frontier: make(map[Qubit]int)}
}

func (b *Builder) Append(op Operation) {
	at := 0
	for _, q := range op.Qubits {
		if f := b.frontier[q]; f > at {
			at = f
		}
	}
	for len(b.moments) <= at {
		b.moments = append(b.moments, Moment{})
	}
	b.moments[at].Ops = append(b.moments[at].Ops, op)
	for _, q := range op.Qubits {
		b.frontier[q] = at + 1
	}
}

// Circuit returns the accumulated circuit. The builder must not be reused
// afterwards.
func (b *Builder) Circuit() *Circuit {
	return &Circuit{Moments: b.moments}
}
