package circuit

import (
	"fmt"
	"math"
	"strconv"
)

// Param is a gate parameter measured in half-turns. A parameter is either
// numeric or an unresolved symbol; a symbolic parameter disables all
// algebraic reasoning about the gate that carries it.
//
// Numeric values are periodic with period 2 and are kept in the canonical
// half-open interval (-1, 1].
type Param struct {
	Value  float64
	Symbol string
}

// Turns builds a numeric parameter, canonicalized into (-1, 1].
func Turns(v float64) Param {
	return Param{Value: CanonicalTurns(v)}
}

// Symbol builds an unresolved symbolic parameter.
func Symbol(name string) Param {
	return Param{Symbol: name}
}

func (p Param) Symbolic() bool {
	return p.Symbol != ""
}

func (p Param) String() string {
	if p.Symbolic() {
		return p.Symbol
	}
	return strconv.FormatFloat(p.Value, 'g', -1, 64)
}

// CanonicalTurns maps v into (-1, 1]. Two values that differ by an even
// integer denote the same gate, so this is the identity on gate semantics.
func CanonicalTurns(v float64) float64 {
	r := math.Mod(v, 2)
	if r <= -1 {
		r += 2
	} else if r > 1 {
		r -= 2
	}
	if r == 0 {
		return 0 // collapse -0
	}
	return r
}

func (p Param) MarshalJSON() ([]byte, error) {
	if p.Symbolic() {
		return jsonIter.Marshal(p.Symbol)
	}
	return jsonIter.Marshal(p.Value)
}

func (p *Param) UnmarshalJSON(data []byte) error {
	var v float64
	if err := jsonIter.Unmarshal(data, &v); err == nil {
		*p = Turns(v)
		return nil
	}
	var s string
	if err := jsonIter.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parameter must be a number or a symbol name: %s", string(data))
	}
	*p = Symbol(s)
	return nil
}
