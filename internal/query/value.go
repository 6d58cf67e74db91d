package query

// InputKind is the shape of a filter value, declared by its operator.
type InputKind string

const (
	InputNone        InputKind = "none"
	InputText        InputKind = "text"
	InputNumber      InputKind = "number"
	InputDate        InputKind = "date"
	InputChoice      InputKind = "choice"
	InputMultiChoice InputKind = "multiChoice"
)

// Value is a filter value tagged by its input kind. Number and date values
// are kept as the user typed them and parsed when the filter is evaluated.
type Value struct {
	Kind  InputKind `json:"kind" yaml:"kind"`
	Text  string    `json:"text,omitempty" yaml:"text,omitempty"`
	Items []string  `json:"items,omitempty" yaml:"items,omitempty"`
}

func NoValue() Value { return Value{Kind: InputNone} }

func TextValue(s string) Value { return Value{Kind: InputText, Text: s} }

func NumberValue(s string) Value { return Value{Kind: InputNumber, Text: s} }

func DateValue(s string) Value { return Value{Kind: InputDate, Text: s} }

func ChoiceValue(s string) Value { return Value{Kind: InputChoice, Text: s} }

func MultiValue(items ...string) Value {
	return Value{Kind: InputMultiChoice, Items: append([]string(nil), items...)}
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	if v.Items != nil {
		v.Items = append([]string(nil), v.Items...)
	}
	return v
}
