// Package lowering rewrites arbitrary circuit operations into the native
// gate set: capability cast first, then unitary synthesis, then recursive
// structural decomposition, then configurable passthrough or failure.
package lowering

import (
	"fmt"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/qfab-dev/gatepass/circuit"
)

// Setting configures a Lowerer.
type Setting struct {
	IgnoreFailures bool `toml:"ignore_failures"`
	MaxIterations  int  `toml:"max_iterations"`
	AllowPartialCZ bool `toml:"allow_partial_cz"`
}

func NewSetting() Setting {
	return Setting{
		IgnoreFailures: false,
		MaxIterations:  256,
		AllowPartialCZ: true,
	}
}

// Components are the external collaborators of the pass. Nil fields fall
// back to the defaults in registry.go; a nil Synthesizer disables the
// unitary synthesis strategy.
type Components struct {
	Caster      Caster
	Decomposer  Decomposer
	Keep        KeepFunc
	Synthesizer Synthesizer
}

// Lowerer converts operations into native equivalents. It holds no state
// across circuits.
type Lowerer struct {
	setting Setting
	caster  Caster
	decomp  Decomposer
	keep    KeepFunc
	synth   Synthesizer
}

func NewLowerer(setting Setting, comp Components) *Lowerer {
	l := &Lowerer{
		setting: setting,
		caster:  comp.Caster,
		decomp:  comp.Decomposer,
		keep:    comp.Keep,
		synth:   comp.Synthesizer,
	}
	if l.setting.MaxIterations <= 0 {
		l.setting.MaxIterations = NewSetting().MaxIterations
	}
	if l.caster == nil {
		l.caster = DefaultCaster
	}
	if l.decomp == nil {
		l.decomp = DefaultDecomposer
	}
	if l.keep == nil {
		l.keep = IsNative
	}
	return l
}

// Convert rewrites one operation into a sequence of native operations. The
// strategies are tried in order on an explicit worklist so that pathological
// decomposition chains hit the iteration budget instead of recursing
// forever.
func (l *Lowerer) Convert(op circuit.Operation) ([]circuit.Operation, error) {
	pending := []circuit.Operation{op}
	out := make([]circuit.Operation, 0, 1)
	for steps := 0; len(pending) > 0; steps++ {
		if steps >= l.setting.MaxIterations {
			return nil, &NonTerminationError{Gate: op.Gate.String(), Budget: l.setting.MaxIterations}
		}
		cur := pending[0]
		pending = pending[1:]

		if l.keep(cur) {
			out = append(out, cur)
			continue
		}
		if native, ok := l.caster(cur.Gate); ok {
			out = append(out, circuit.Operation{Gate: native, Qubits: cur.Qubits})
			continue
		}
		synthesized, ok, err := l.synthesize(cur)
		if err != nil {
			return nil, err
		}
		if ok {
			pending = prepend(synthesized, pending)
			continue
		}
		if subs, ok := l.decomp(cur); ok {
			pending = prepend(subs, pending)
			continue
		}
		if l.setting.IgnoreFailures {
			zap.L().Debug(fmt.Sprintf("passing through unconvertible operation %s", cur))
			out = append(out, cur)
			continue
		}
		return nil, &UnconvertibleOperationError{Gate: cur.Gate.String(), QubitCount: len(cur.Qubits)}
	}
	return out, nil
}

func (l *Lowerer) synthesize(op circuit.Operation) ([]circuit.Operation, bool, error) {
	if l.synth == nil || len(op.Qubits) > 2 {
		return nil, false, nil
	}
	og, ok := op.Gate.(circuit.Opaque)
	if !ok || og.Unitary == nil {
		return nil, false, nil
	}
	u := og.Matrix()
	switch len(op.Qubits) {
	case 1:
		ops, err := l.synth.Synthesize1Q(u, op.Qubits[0])
		if err != nil {
			return nil, false, errors.Wrapf(err, "single-qubit synthesis of %s", og)
		}
		return ops, true, nil
	default:
		ops, err := l.synth.Synthesize2Q(u, op.Qubits[0], op.Qubits[1], l.setting.AllowPartialCZ)
		if err != nil {
			return nil, false, errors.Wrapf(err, "two-qubit synthesis of %s", og)
		}
		return ops, true, nil
	}
}

// LowerCircuit converts every operation in place. Moments are walked from
// last to first so that spliced-in moments never shift the indices still to
// be visited.
func (l *Lowerer) LowerCircuit(c *circuit.Circuit) error {
	converted := 0
	for i := len(c.Moments) - 1; i >= 0; i-- {
		type replacement struct {
			op  circuit.Operation
			ops []circuit.Operation
		}
		var repls []replacement
		for _, op := range c.Moments[i].Sorted() {
			ops, err := l.Convert(op)
			if err != nil {
				return errors.Wrapf(err, "moment %d", i)
			}
			if len(ops) == 1 && ops[0].Equal(op) {
				continue
			}
			repls = append(repls, replacement{op: op, ops: ops})
		}
		for _, r := range repls {
			c.ReplaceSpan(i, r.op.Qubits, r.ops)
			converted++
		}
	}
	if converted > 0 {
		zap.L().Debug(fmt.Sprintf("lowered %d operation(s) to the native gate set", converted))
	}
	return nil
}

func prepend(head, tail []circuit.Operation) []circuit.Operation {
	merged := make([]circuit.Operation, 0, len(head)+len(tail))
	merged = append(merged, head...)
	return append(merged, tail...)
}
