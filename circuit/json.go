package circuit

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	gateKindPhasedRotation  = "phased_rotation"
	gateKindZRotation       = "z_rotation"
	gateKindControlledPhase = "controlled_phase"
	gateKindMeasurement     = "measurement"
	gateKindOpaque          = "opaque"
)

type operationJSON struct {
	Gate          string       `json:"gate"`
	Qubits        []int        `json:"qubits"`
	PhaseExponent *Param       `json:"phase_exponent,omitempty"`
	Turns         *Param       `json:"turns,omitempty"`
	Key           *string      `json:"key,omitempty"`
	InvertMask    []bool       `json:"invert_mask,omitempty"`
	Name          string       `json:"name,omitempty"`
	Dim           int          `json:"dim,omitempty"`
	Unitary       [][2]float64 `json:"unitary,omitempty"`
}

type circuitJSON struct {
	Moments [][]operationJSON `json:"moments"`
}

// Encode serializes the circuit to JSON.
func Encode(c *Circuit) ([]byte, error) {
	doc := circuitJSON{Moments: make([][]operationJSON, len(c.Moments))}
	for i, m := range c.Moments {
		doc.Moments[i] = make([]operationJSON, 0, len(m.Ops))
		for _, op := range m.Sorted() {
			oj, err := encodeOperation(op)
			if err != nil {
				return nil, fmt.Errorf("moment %d: %w", i, err)
			}
			doc.Moments[i] = append(doc.Moments[i], oj)
		}
	}
	return jsonIter.Marshal(doc)
}

// Decode parses a circuit from JSON.
func Decode(data []byte) (*Circuit, error) {
	var doc circuitJSON
	if err := jsonIter.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse circuit JSON: %w", err)
	}
	c := &Circuit{Moments: make([]Moment, len(doc.Moments))}
	for i, ops := range doc.Moments {
		decoded := make([]Operation, 0, len(ops))
		for _, oj := range ops {
			op, err := decodeOperation(oj)
			if err != nil {
				return nil, fmt.Errorf("moment %d: %w", i, err)
			}
			decoded = append(decoded, op)
		}
		m, err := NewMoment(decoded...)
		if err != nil {
			return nil, fmt.Errorf("moment %d: %w", i, err)
		}
		c.Moments[i] = m
	}
	return c, nil
}

func encodeOperation(op Operation) (operationJSON, error) {
	oj := operationJSON{Qubits: make([]int, len(op.Qubits))}
	for i, q := range op.Qubits {
		oj.Qubits[i] = int(q)
	}
	switch g := op.Gate.(type) {
	case PhasedRotation:
		oj.Gate = gateKindPhasedRotation
		phase, turns := g.PhaseExponent, g.Turns
		oj.PhaseExponent, oj.Turns = &phase, &turns
	case ZRotation:
		oj.Gate = gateKindZRotation
		turns := g.Turns
		oj.Turns = &turns
	case ControlledPhase:
		oj.Gate = gateKindControlledPhase
		turns := g.Turns
		oj.Turns = &turns
	case Measurement:
		oj.Gate = gateKindMeasurement
		key := g.Key
		oj.Key = &key
		oj.InvertMask = g.InvertMask
	case Opaque:
		oj.Gate = gateKindOpaque
		oj.Name = g.Name
		oj.Dim = g.Dim
		if g.Unitary != nil {
			oj.Unitary = make([][2]float64, len(g.Unitary))
			for i, v := range g.Unitary {
				oj.Unitary[i] = [2]float64{real(v), imag(v)}
			}
		}
	default:
		return operationJSON{}, fmt.Errorf("unknown gate variant %T", op.Gate)
	}
	return oj, nil
}

func decodeOperation(oj operationJSON) (Operation, error) {
	qubits := make([]Qubit, len(oj.Qubits))
	for i, q := range oj.Qubits {
		qubits[i] = Qubit(q)
	}
	var g Gate
	switch oj.Gate {
	case gateKindPhasedRotation:
		pr := PhasedRotation{}
		if oj.PhaseExponent != nil {
			pr.PhaseExponent = *oj.PhaseExponent
		}
		if oj.Turns != nil {
			pr.Turns = *oj.Turns
		}
		g = pr
	case gateKindZRotation:
		zr := ZRotation{}
		if oj.Turns != nil {
			zr.Turns = *oj.Turns
		}
		g = zr
	case gateKindControlledPhase:
		cp := ControlledPhase{}
		if oj.Turns != nil {
			cp.Turns = *oj.Turns
		}
		g = cp
	case gateKindMeasurement:
		key := ""
		if oj.Key != nil {
			key = *oj.Key
		}
		g = NewMeasurement(key, oj.InvertMask...)
	case gateKindOpaque:
		if oj.Unitary == nil {
			g = NewOpaque(oj.Name)
		} else {
			unitary := make([]complex128, len(oj.Unitary))
			for i, v := range oj.Unitary {
				unitary[i] = complex(v[0], v[1])
			}
			og, err := NewOpaqueUnitary(oj.Name, oj.Dim, unitary)
			if err != nil {
				return Operation{}, err
			}
			g = og
		}
	default:
		return Operation{}, fmt.Errorf("unknown gate kind %q", oj.Gate)
	}
	return NewOperation(g, qubits...)
}
