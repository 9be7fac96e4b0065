package domain

// ValueEnvelope is the raw metadata record the controller attaches to a
// single field. Only Val is guaranteed to be present.
type ValueEnvelope struct {
	Val    float64  `json:"val"`
	Unit   string   `json:"unit,omitempty"`
	Factor *float64 `json:"factor,omitempty"`
	Text   string   `json:"text,omitempty"`
	Format string   `json:"format,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// Scale returns the factor to apply to Val, defaulting to 1.0.
func (e ValueEnvelope) Scale() float64 {
	if e.Factor != nil {
		return *e.Factor
	}
	return 1.0
}

// ScaledValue is the displayed decimal value (Val x factor).
func (e ValueEnvelope) ScaledValue() float64 {
	return e.Val * e.Scale()
}

type RawField struct {
	Key      string
	Envelope ValueEnvelope
}

type RawComponent struct {
	Key    string
	Fields []RawField
}

// RawPayload is one fully parsed controller response. Component and field
// order is the encounter order in the JSON text, which keeps discovery
// reproducible. A payload is immutable once built and replaced wholesale
// by the next successful fetch.
type RawPayload struct {
	Components []RawComponent
}

// Envelope looks up a single field envelope by component and field key.
func (p *RawPayload) Envelope(componentKey, fieldKey string) (ValueEnvelope, bool) {
	for i := range p.Components {
		if p.Components[i].Key != componentKey {
			continue
		}
		for j := range p.Components[i].Fields {
			if p.Components[i].Fields[j].Key == fieldKey {
				return p.Components[i].Fields[j].Envelope, true
			}
		}
	}
	return ValueEnvelope{}, false
}
