package scene

// Kind discriminates the property value variants.
type Kind uint8

const (
	KindString Kind = iota
	KindBool
	KindNumber
)

// Value is a typed property value. The engine format carries many more
// variants; the exporter only distinguishes the ones it reads, everything
// else round-trips through the codec untouched.
type Value struct {
	Kind Kind
	Str  string
	Bool bool
	Num  float64
}

func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// AsString returns the string payload, reporting whether the value
// actually is a string.
func (v Value) AsString() (string, bool) {
	return v.Str, v.Kind == KindString
}

// Any returns the natural Go representation, used when decomposing a
// tree into a JSON document.
func (v Value) Any() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num
	default:
		return v.Str
	}
}
