package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Backend identifies a target shell dialect.
type Backend string

const (
	// BackendBash targets bash on Unix-like systems.
	BackendBash Backend = "bash"
	// BackendBatch targets cmd.exe on Windows.
	BackendBatch Backend = "batch"
)

// Backends lists every backend in emission order.
var Backends = []Backend{BackendBash, BackendBatch}

// Extension returns the file extension of script fragments for the backend.
func (b Backend) Extension() string {
	switch b {
	case BackendBash:
		return "sh"
	case BackendBatch:
		return "bat"
	default:
		return ""
	}
}

// Platform returns the human-readable platform name used in error stubs.
func (b Backend) Platform() string {
	switch b {
	case BackendBash:
		return "Unix"
	case BackendBatch:
		return "Windows"
	default:
		return string(b)
	}
}

// ParseBackend converts a flag value to a Backend.
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "bash", "sh":
		return BackendBash, nil
	case "batch", "bat", "cmd":
		return BackendBatch, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected bash or batch)", s)
	}
}

// Body is the resolved body of a command for one backend.
// It is one of ScriptRef, SingleLine or MultiLine.
type Body interface {
	isBody()
}

// ScriptRef runs an included script fragment.
type ScriptRef struct {
	Name string
}

// SingleLine is a one-line inline body.
type SingleLine struct {
	Text string
}

// MultiLine is an ordered sequence of inline lines.
type MultiLine struct {
	Lines []string
}

func (ScriptRef) isBody()  {}
func (SingleLine) isBody() {}
func (MultiLine) isBody()  {}

// BodyLines flattens an inline body into its lines.
func BodyLines(b Body) []string {
	switch body := b.(type) {
	case SingleLine:
		return []string{body.Text}
	case MultiLine:
		return body.Lines
	default:
		return nil
	}
}

// Inline is a backend-specific inline body as written in the document:
// either a single string or a list of strings.
type Inline struct {
	lines []string
	multi bool
}

// NewSingleLine creates a one-line inline body.
func NewSingleLine(text string) *Inline {
	return &Inline{lines: []string{text}}
}

// NewMultiLine creates a multi-line inline body.
func NewMultiLine(lines ...string) *Inline {
	return &Inline{lines: lines, multi: true}
}

// Body converts the inline declaration to its tagged variant.
func (in *Inline) Body() Body {
	if in == nil {
		return nil
	}
	if in.multi {
		return MultiLine{Lines: append([]string(nil), in.lines...)}
	}
	return SingleLine{Text: in.lines[0]}
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (in *Inline) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		in.lines = []string{node.Value}
		in.multi = false
		return nil
	case yaml.SequenceNode:
		var lines []string
		if err := node.Decode(&lines); err != nil {
			return err
		}
		in.lines = lines
		in.multi = true
		return nil
	default:
		return fmt.Errorf("line %d: inline command must be a string or a list of strings", node.Line)
	}
}

// MarshalYAML writes the body back in its declared form.
func (in Inline) MarshalYAML() (interface{}, error) {
	if in.multi {
		return in.lines, nil
	}
	if len(in.lines) == 0 {
		return "", nil
	}
	return in.lines[0], nil
}

// MarshalJSON writes the body back in its declared form.
func (in Inline) MarshalJSON() ([]byte, error) {
	v, _ := in.MarshalYAML()
	return json.Marshal(v)
}

// ValueKind is the scalar type of an argument default.
type ValueKind int

const (
	// ValueString is a quoted string default.
	ValueString ValueKind = iota
	// ValueNumber is an integer or float default.
	ValueNumber
	// ValueBool is a boolean default.
	ValueBool
)

// Value is a scalar default value (string, number or boolean).
type Value struct {
	Raw  string
	Kind ValueKind
}

// StringValue creates a string default.
func StringValue(s string) *Value {
	return &Value{Raw: s, Kind: ValueString}
}

// NumberValue creates a numeric default.
func NumberValue(n int) *Value {
	return &Value{Raw: strconv.Itoa(n), Kind: ValueNumber}
}

// String returns the raw text of the value.
func (v *Value) String() string {
	return v.Raw
}

// UnmarshalYAML keeps the scalar text and records its resolved tag.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: default must be a string, number or boolean", node.Line)
	}
	v.Raw = node.Value
	switch node.ShortTag() {
	case "!!int", "!!float":
		v.Kind = ValueNumber
	case "!!bool":
		v.Kind = ValueBool
	default:
		v.Kind = ValueString
	}
	return nil
}

// MarshalJSON writes the value with its original JSON type.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNumber, ValueBool:
		return []byte(v.Raw), nil
	default:
		return json.Marshal(v.Raw)
	}
}

// MarshalYAML writes the value with its original YAML type.
func (v Value) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.ScalarNode, Value: v.Raw}
	switch v.Kind {
	case ValueNumber:
		node.Tag = "!!int"
		if _, err := strconv.Atoi(v.Raw); err != nil {
			node.Tag = "!!float"
		}
	case ValueBool:
		node.Tag = "!!bool"
	default:
		node.Tag = "!!str"
	}
	return node, nil
}

// MarshalJSON writes a literal splash as a JSON string.
func (s Splash) MarshalJSON() ([]byte, error) {
	if s.literal {
		return json.Marshal(s.Literal)
	}
	type plain Splash
	return json.Marshal(plain(s))
}
