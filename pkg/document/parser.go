// Package document loads menu specification documents.
//
// A document is JSON or YAML. Parsing runs in three stages: syntax, the
// embedded JSON schema, then the semantic rules of config.Validator. Each
// stage fails with its own error type so callers can report where the
// problem is.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/CliForge/remotecli/pkg/cli"
	"github.com/CliForge/remotecli/pkg/config"
	"gopkg.in/yaml.v3"
)

// Parser turns raw documents into validated specifications.
type Parser struct {
	// SkipSemantic disables config.Validator, leaving only the schema check
	SkipSemantic bool
}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{}
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// Parse parses data read from path. The extension of path decides between
// JSON and YAML; anything other than .yaml or .yml is treated as JSON.
func (p *Parser) Parse(path string, data []byte) (*cli.Specification, error) {
	if isYAML(path) {
		return p.parseYAML(path, data)
	}
	return p.parseJSON(path, data)
}

func (p *Parser) parseJSON(path string, data []byte) (*cli.Specification, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, jsonSyntaxError(path, data, err)
	}

	if err := p.checkSchema(path, value); err != nil {
		return nil, err
	}

	node, err := jsonNode(data)
	if err != nil {
		return nil, jsonSyntaxError(path, data, err)
	}
	return p.decode(path, node)
}

func (p *Parser) parseYAML(path string, data []byte) (*cli.Specification, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, yamlSyntaxError(path, err)
	}

	// Round trip through JSON so the schema sees the same types it would
	// for a JSON document.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, newSchemaError(path, []string{"mapping keys must be strings"}, err)
	}
	var value any
	if err := json.Unmarshal(encoded, &value); err != nil {
		return nil, newSchemaError(path, nil, err)
	}

	if err := p.checkSchema(path, value); err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, yamlSyntaxError(path, err)
	}
	return p.decode(path, &node)
}

func (p *Parser) checkSchema(path string, value any) error {
	details, err := validateSchema(value)
	if err != nil {
		return newSchemaError(path, details, err)
	}
	return nil
}

func (p *Parser) decode(path string, node *yaml.Node) (*cli.Specification, error) {
	var spec cli.Specification
	if err := node.Decode(&spec); err != nil {
		return nil, newSchemaError(path, []string{strings.TrimPrefix(err.Error(), "yaml: ")}, err)
	}

	if p.SkipSemantic {
		return &spec, nil
	}
	if err := config.NewValidator().Validate(&spec); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &spec, nil
}

// jsonNode converts a JSON document into a yaml.Node tree so the yaml
// decoders see every object in document order. Nodes carry the line and
// column of their token.
func jsonNode(data []byte) (*yaml.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	root, err := readJSONValue(dec, data)
	if err != nil {
		return nil, err
	}
	return &yaml.Node{Kind: yaml.DocumentNode, Line: root.Line, Column: root.Column, Content: []*yaml.Node{root}}, nil
}

func readJSONValue(dec *json.Decoder, data []byte) (*yaml.Node, error) {
	line, col := tokenPosition(dec, data)
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	node := &yaml.Node{Line: line, Column: col}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			node.Kind, node.Tag = yaml.MappingNode, "!!map"
			for dec.More() {
				kline, kcol := tokenPosition(dec, data)
				key, err := dec.Token()
				if err != nil {
					return nil, err
				}
				name, ok := key.(string)
				if !ok {
					return nil, fmt.Errorf("object key %v is not a string", key)
				}
				value, err := readJSONValue(dec, data)
				if err != nil {
					return nil, err
				}
				keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name, Line: kline, Column: kcol}
				node.Content = append(node.Content, keyNode, value)
			}
		case '[':
			node.Kind, node.Tag = yaml.SequenceNode, "!!seq"
			for dec.More() {
				value, err := readJSONValue(dec, data)
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content, value)
			}
		default:
			return nil, fmt.Errorf("unexpected %q", v)
		}
		// closing delimiter
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
	case string:
		node.Kind, node.Tag, node.Value = yaml.ScalarNode, "!!str", v
	case json.Number:
		node.Kind, node.Tag, node.Value = yaml.ScalarNode, "!!int", v.String()
		if strings.ContainsAny(v.String(), ".eE") {
			node.Tag = "!!float"
		}
	case bool:
		node.Kind, node.Tag, node.Value = yaml.ScalarNode, "!!bool", strconv.FormatBool(v)
	case nil:
		node.Kind, node.Tag, node.Value = yaml.ScalarNode, "!!null", "null"
	}
	return node, nil
}

// tokenPosition returns the line and column of the decoder's next token,
// skipping the whitespace and separators Token consumes silently.
func tokenPosition(dec *json.Decoder, data []byte) (line, column int) {
	off := dec.InputOffset()
	for off < int64(len(data)) && strings.IndexByte(" \t\r\n,:", data[off]) >= 0 {
		off++
	}
	return Position(data, off+1)
}

func jsonSyntaxError(path string, data []byte, err error) error {
	serr := &SyntaxError{Path: path, Reason: err.Error(), Err: err}

	var syntax *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntax):
		serr.Line, serr.Column = Position(data, syntax.Offset)
	case errors.As(err, &typeErr):
		serr.Line, serr.Column = Position(data, typeErr.Offset)
	}
	return serr
}

func yamlSyntaxError(path string, err error) error {
	serr := &SyntaxError{
		Path:   path,
		Reason: strings.TrimPrefix(err.Error(), "yaml: "),
		Err:    err,
	}
	if m := yamlLinePattern.FindStringSubmatch(err.Error()); m != nil {
		serr.Line, _ = strconv.Atoi(m[1])
	}
	return serr
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
