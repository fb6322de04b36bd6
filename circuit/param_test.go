//go:build unit
// +build unit

package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalTurns(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "zero", in: 0, want: 0},
		{name: "in range", in: 0.625, want: 0.625},
		{name: "upper bound stays", in: 1, want: 1},
		{name: "lower bound wraps", in: -1, want: 1},
		{name: "above range", in: 1.5, want: -0.5},
		{name: "below range", in: -1.5, want: 0.5},
		{name: "full period", in: 2, want: 0},
		{name: "negative full period", in: -2, want: 0},
		{name: "many periods", in: 7.25, want: -0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalTurns(tt.in))
		})
	}
}

func TestParamJSON(t *testing.T) {
	numeric := Turns(0.25)
	data, err := numeric.MarshalJSON()
	assert.Nil(t, err)
	assert.Equal(t, "0.25", string(data))

	symbolic := Symbol("theta")
	data, err = symbolic.MarshalJSON()
	assert.Nil(t, err)
	assert.Equal(t, `"theta"`, string(data))

	var p Param
	assert.Nil(t, p.UnmarshalJSON([]byte("2.5")))
	assert.Equal(t, Turns(0.5), p)
	assert.Nil(t, p.UnmarshalJSON([]byte(`"phi"`)))
	assert.Equal(t, Symbol("phi"), p)
	assert.Error(t, p.UnmarshalJSON([]byte("[]")))
}

func TestSymbolicDisablesFullRotation(t *testing.T) {
	w := PhasedRotation{PhaseExponent: Turns(0.25), Turns: Symbol("t")}
	assert.False(t, w.FullRotation())
	assert.True(t, w.Symbolic())

	full := NewFullRotation(0.25)
	assert.True(t, full.FullRotation())
	assert.False(t, full.Symbolic())
}
