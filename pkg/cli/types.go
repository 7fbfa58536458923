// Package cli defines the core types of a remotecli specification document.
//
// A specification describes an interactive, menu-driven command-line tool.
// The generator turns one specification into a bash script and a Windows
// batch script that behave identically.
package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Specification represents the complete document as defined in cli.json.
// This is the root structure that encompasses every menu, command and auth level.
type Specification struct {
	Title       string                 `yaml:"title" json:"title"`
	URI         string                 `yaml:"uri" json:"uri"`
	Description string                 `yaml:"description,omitempty" json:"description,omitempty"`
	MainMenu    string                 `yaml:"mainMenu" json:"mainMenu"`
	Menus       OrderedMap[Menu]       `yaml:"menus" json:"menus"`
	Auth        OrderedMap[AuthMethod] `yaml:"auth,omitempty" json:"auth,omitempty"`
}

// Menu is a named interactive prompt loop with its own command set.
type Menu struct {
	Header   string              `yaml:"header,omitempty" json:"header,omitempty"`
	Prefix   string              `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Splash   *Splash             `yaml:"splash,omitempty" json:"splash,omitempty"`
	Commands OrderedMap[Command] `yaml:"commands,omitempty" json:"commands,omitempty"`
}

// DefaultPrefix is the prompt prefix used when a menu does not declare one.
const DefaultPrefix = "> "

// PromptPrefix returns the menu prefix or DefaultPrefix.
func (m *Menu) PromptPrefix() string {
	if m.Prefix == "" {
		return DefaultPrefix
	}
	return m.Prefix
}

// Command is a named action with description, arguments, aliases, access level and a body.
type Command struct {
	Description  string          `yaml:"description" json:"description"`
	Args         OrderedMap[Arg] `yaml:"args,omitempty" json:"args,omitempty"`
	Aliases      []string        `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Access       *int            `yaml:"access,omitempty" json:"access,omitempty"`
	Script       string          `yaml:"script,omitempty" json:"script,omitempty"`
	BashCommand  *Inline         `yaml:"bashCommand,omitempty" json:"bashCommand,omitempty"`
	BatchCommand *Inline         `yaml:"batchCommand,omitempty" json:"batchCommand,omitempty"`
	Visible      *bool           `yaml:"visible,omitempty" json:"visible,omitempty"`
}

// AccessLevel returns the declared access level, or 0 when the command is ungated.
func (c *Command) AccessLevel() int {
	if c.Access == nil {
		return 0
	}
	return *c.Access
}

// IsVisible reports whether the command should be listed by help.
// Commands are visible unless they explicitly set visible to false.
func (c *Command) IsVisible() bool {
	return c.Visible == nil || *c.Visible
}

// Inline returns the inline body declared for a backend, or nil.
func (c *Command) Inline(backend Backend) *Inline {
	switch backend {
	case BackendBash:
		return c.BashCommand
	case BackendBatch:
		return c.BatchCommand
	default:
		return nil
	}
}

// Arg is a positional command argument.
type Arg struct {
	Default       *Value `yaml:"default,omitempty" json:"default,omitempty"`
	MinValue      *int   `yaml:"minValue,omitempty" json:"minValue,omitempty"`
	MaxValue      *int   `yaml:"maxValue,omitempty" json:"maxValue,omitempty"`
	PromptMessage string `yaml:"promptMessage,omitempty" json:"promptMessage,omitempty"`
	Secret        bool   `yaml:"secret,omitempty" json:"secret,omitempty"`
}

// HasDefault reports whether the argument is optional.
func (a *Arg) HasDefault() bool {
	return a.Default != nil
}

// HasBounds reports whether the argument declares a numeric bound.
func (a *Arg) HasBounds() bool {
	return a.MinValue != nil || a.MaxValue != nil
}

// Prompt returns the message shown when the argument has to be asked for.
func (a *Arg) Prompt(name string) string {
	message := a.PromptMessage
	if message == "" {
		message = Capitalize(name)
	}
	return message + ": "
}

// AuthType identifies an authentication challenge.
type AuthType string

const (
	// AuthTypeHash compares a digest of the entered key with a precomputed one.
	AuthTypeHash AuthType = "hash"
)

// HashAlgorithm names the digest used by a hash challenge.
type HashAlgorithm string

const (
	// HashSHA1 is the shasum default and the default algorithm.
	HashSHA1 HashAlgorithm = "sha1"
	// HashSHA256 uses shasum -a 256 / certutil SHA256.
	HashSHA256 HashAlgorithm = "sha256"
)

// AuthMethod describes how a level is authenticated.
type AuthMethod struct {
	Type      AuthType      `yaml:"type" json:"type"`
	Hash      string        `yaml:"hash" json:"hash"`
	Algorithm HashAlgorithm `yaml:"algorithm,omitempty" json:"algorithm,omitempty"`
}

// Digest returns the configured algorithm, defaulting to sha1.
func (a *AuthMethod) Digest() HashAlgorithm {
	if a.Algorithm == "" {
		return HashSHA1
	}
	return a.Algorithm
}

// AuthLevel pairs a numeric level with its method.
type AuthLevel struct {
	Level  int
	Method AuthMethod
}

// AuthLevels returns the declared auth levels sorted ascending.
func (s *Specification) AuthLevels() ([]AuthLevel, error) {
	levels := make([]AuthLevel, 0, s.Auth.Len())
	for key, method := range s.Auth.All() {
		level, err := strconv.Atoi(key)
		if err != nil || level < 1 {
			return nil, fmt.Errorf("auth level %q must be a positive integer", key)
		}
		levels = append(levels, AuthLevel{Level: level, Method: method})
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].Level < levels[j].Level })
	return levels, nil
}

// HasAuth reports whether any auth level is declared.
func (s *Specification) HasAuth() bool {
	return s.Auth.Len() > 0
}

// Splash is the banner shown when a menu is entered.
// It is either a literal string or figlet text rendered in a font.
type Splash struct {
	Literal string `yaml:"-" json:"-"`
	Text    string `yaml:"text,omitempty" json:"text,omitempty"`
	Font    string `yaml:"font,omitempty" json:"font,omitempty"`
	Color   string `yaml:"color,omitempty" json:"color,omitempty"`

	literal bool
}

// RainbowColor is the special color cycling through the palette.
const RainbowColor = "rainbow"

// NewLiteralSplash creates a splash printed verbatim.
func NewLiteralSplash(text string) *Splash {
	return &Splash{Literal: text, literal: true}
}

// IsLiteral reports whether the splash is a plain string.
func (s *Splash) IsLiteral() bool {
	return s.literal
}

// UnmarshalYAML accepts either a scalar string or a {text, font, color} mapping.
func (s *Splash) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s.Literal = node.Value
		s.literal = true
		return nil
	}

	type plain Splash
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Splash(p)
	return nil
}

// MarshalYAML writes the literal form back as a scalar.
func (s Splash) MarshalYAML() (interface{}, error) {
	if s.literal {
		return s.Literal, nil
	}
	type plain Splash
	return plain(s), nil
}

// Capitalize upper-cases the first letter of a name.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
