//go:build unit
// +build unit

package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

const (
	q0 = Qubit(0)
	q1 = Qubit(1)
	q2 = Qubit(2)
)

func TestNewOperationArity(t *testing.T) {
	tests := []struct {
		name    string
		gate    Gate
		qubits  []Qubit
		wantErr bool
	}{
		{name: "single qubit rotation", gate: NewFullRotation(0.25), qubits: []Qubit{q0}},
		{name: "rotation on two qubits", gate: NewFullRotation(0.25), qubits: []Qubit{q0, q1}, wantErr: true},
		{name: "controlled phase", gate: NewControlledPhase(0.5), qubits: []Qubit{q0, q1}},
		{name: "controlled phase on one qubit", gate: NewControlledPhase(0.5), qubits: []Qubit{q0}, wantErr: true},
		{name: "duplicate qubits", gate: NewControlledPhase(0.5), qubits: []Qubit{q0, q0}, wantErr: true},
		{name: "measurement any arity", gate: NewMeasurement("m"), qubits: []Qubit{q0, q1, q2}},
		{name: "mask longer than qubits", gate: NewMeasurement("m", true, true), qubits: []Qubit{q0}, wantErr: true},
		{name: "no qubits", gate: NewZRotation(1), qubits: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOperation(tt.gate, tt.qubits...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

func TestMomentDisjointness(t *testing.T) {
	_, err := NewMoment(
		On(NewFullRotation(0), q0),
		On(NewControlledPhase(1), q0, q1),
	)
	assert.Error(t, err)

	m, err := NewMoment(
		On(NewFullRotation(0), q0),
		On(NewZRotation(0.5), q1),
	)
	assert.Nil(t, err)
	assert.True(t, m.Qubits().Contains(q0))
	assert.True(t, m.Qubits().Contains(q1))

	op, ok := m.OperationOn(q1)
	assert.True(t, ok)
	assert.True(t, op.Equal(On(NewZRotation(0.5), q1)))
	_, ok = m.OperationOn(q2)
	assert.False(t, ok)
}

func TestMomentEqualIsOrderInsensitive(t *testing.T) {
	a := MomentOf(On(NewFullRotation(0), q0), On(NewZRotation(0.5), q1))
	b := MomentOf(On(NewZRotation(0.5), q1), On(NewFullRotation(0), q0))
	assert.True(t, a.Equal(b))

	c := MomentOf(On(NewZRotation(0.25), q1), On(NewFullRotation(0), q0))
	assert.False(t, a.Equal(c))
}

func TestBuilderEarliestPacking(t *testing.T) {
	c := FromOperations(
		On(NewFullRotation(0.25), q0),
		On(NewZRotation(0.5), q1),
		On(NewZRotation(0.25), q0),
		On(NewControlledPhase(1), q0, q1),
		On(NewFullRotation(0), q2),
	)
	want := New(
		MomentOf(On(NewFullRotation(0.25), q0), On(NewZRotation(0.5), q1), On(NewFullRotation(0), q2)),
		MomentOf(On(NewZRotation(0.25), q0)),
		MomentOf(On(NewControlledPhase(1), q0, q1)),
	)
	assert.True(t, c.Equal(want), "got:\n%s\nwant:\n%s", c, want)
}

func TestReplaceSpan(t *testing.T) {
	c := New(
		MomentOf(On(NewOpaque("h"), q0), On(NewFullRotation(0), q1)),
		MomentOf(On(NewControlledPhase(1), q0, q1)),
	)
	inserted := c.ReplaceSpan(0, []Qubit{q0}, []Operation{
		On(NewPhasedRotation(0.5, 0.5), q0),
		On(NewFullRotation(0), q0),
	})
	assert.Equal(t, 1, inserted)

	want := New(
		MomentOf(On(NewFullRotation(0), q1), On(NewPhasedRotation(0.5, 0.5), q0)),
		MomentOf(On(NewFullRotation(0), q0)),
		MomentOf(On(NewControlledPhase(1), q0, q1)),
	)
	assert.True(t, c.Equal(want), "got:\n%s\nwant:\n%s", c, want)
}

func TestReplaceSpanWithNothing(t *testing.T) {
	c := New(
		MomentOf(On(NewFullRotation(0), q0), On(NewZRotation(1), q1)),
	)
	inserted := c.ReplaceSpan(0, []Qubit{q0}, nil)
	assert.Equal(t, 0, inserted)

	want := New(MomentOf(On(NewZRotation(1), q1)))
	assert.True(t, c.Equal(want))
}

func TestCopyIsDeep(t *testing.T) {
	c := New(
		MomentOf(Operation{Gate: Measurement{Key: "m", InvertMask: []bool{true}}, Qubits: []Qubit{q0, q1}}),
	)
	cp := c.Copy()
	cp.Moments[0].Ops[0].Gate = NewMeasurement("m", false, true)
	assert.True(t, gateEqual(c.Moments[0].Ops[0].Gate, Measurement{Key: "m", InvertMask: []bool{true}}))
	assert.False(t, c.Equal(cp))
}

func TestValidateAggregatesViolations(t *testing.T) {
	c := New(
		Moment{Ops: []Operation{
			{Gate: NewControlledPhase(1), Qubits: []Qubit{q0}},        // arity mismatch
			{Gate: NewFullRotation(0), Qubits: []Qubit{q0}},           // overlap with the above
			{Gate: NewZRotation(1), Qubits: []Qubit{q1}},              // fine
		}},
	)
	err := c.Validate()
	assert.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)

	good := New(MomentOf(On(NewZRotation(1), q1)))
	assert.Nil(t, good.Validate())
}

func TestMeasurementMaskTrimming(t *testing.T) {
	assert.Nil(t, NewMeasurement("m", false, false).InvertMask)
	assert.Equal(t, []bool{true}, NewMeasurement("m", true, false).InvertMask)
	assert.True(t, gateEqual(
		Measurement{Key: "m", InvertMask: []bool{true, false}},
		Measurement{Key: "m", InvertMask: []bool{true}},
	))
}

func TestJSONRoundTrip(t *testing.T) {
	c := New(
		MomentOf(
			On(NewPhasedRotation(0.25, 1), q0),
			On(PhasedRotation{PhaseExponent: Symbol("theta"), Turns: Turns(0.5)}, q1),
		),
		MomentOf(On(NewControlledPhase(-0.25), q0, q1)),
		MomentOf(Operation{Gate: NewMeasurement("out", true), Qubits: []Qubit{q0, q1}}),
	)
	data, err := Encode(c)
	assert.Nil(t, err)

	decoded, decodeErr := Decode(data)
	assert.Nil(t, decodeErr)
	assert.True(t, c.Equal(decoded), "got:\n%s\nwant:\n%s", decoded, c)
}

func TestJSONEncoding(t *testing.T) {
	c := New(MomentOf(On(NewFullRotation(0.25), q0)))
	data, err := Encode(c)
	assert.Nil(t, err)
	assert.Equal(t,
		`{"moments":[[{"gate":"phased_rotation","qubits":[0],"phase_exponent":0.25,"turns":1}]]}`,
		string(data))
}

func TestDecodeRejectsMalformedCircuits(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "hoge"},
		{name: "unknown gate kind", data: `{"moments":[[{"gate":"teleport","qubits":[0]}]]}`},
		{name: "arity mismatch", data: `{"moments":[[{"gate":"controlled_phase","qubits":[0],"turns":1}]]}`},
		{name: "overlapping moment", data: `{"moments":[[{"gate":"z_rotation","qubits":[0],"turns":1},{"gate":"z_rotation","qubits":[0],"turns":1}]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestOpaqueUnitaryJSON(t *testing.T) {
	g, err := NewOpaqueUnitary("swap", 4, []complex128{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	})
	assert.Nil(t, err)
	c := New(MomentOf(On(g, q0, q1)))

	data, encodeErr := Encode(c)
	assert.Nil(t, encodeErr)
	decoded, decodeErr := Decode(data)
	assert.Nil(t, decodeErr)
	assert.True(t, c.Equal(decoded))

	m := decoded.Moments[0].Ops[0].Gate.(Opaque).Matrix()
	r, cols := m.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 4, cols)
	assert.Equal(t, complex128(1), m.At(3, 3))
}
