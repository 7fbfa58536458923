package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// Error names, printed before every message.
const (
	NameFileNotFound      = "FileNotFound"
	NameDirectoryNotFound = "DirectoryNotFound"
	NameSyntax            = "InvalidJSONSyntax"
	NameSchema            = "InvalidJSONSchema"
)

// ReasonUnknown is reported when the validator gives no message.
const ReasonUnknown = "Reason Unknown"

// Annotated is implemented by errors tied to a position in a file.
type Annotated interface {
	error
	// Annotation renders the error as a CI annotation:
	// ::error file=<path>,line=<l>,col=<c>::<message>
	Annotation() string
}

// Annotation returns the annotation of the first Annotated error in err's
// chain.
func Annotation(err error) (string, bool) {
	var a Annotated
	if errors.As(err, &a) {
		return a.Annotation(), true
	}
	return "", false
}

func annotation(path string, line, column int, message string) string {
	return fmt.Sprintf("::error file=%s,line=%d,col=%d::%s", path, line, column, message)
}

// FileNotFoundError reports a missing specification, directory or file.
type FileNotFoundError struct {
	Path string
}

// Name is FileNotFound when the path looks like a file (contains a dot)
// and DirectoryNotFound otherwise.
func (e *FileNotFoundError) Name() string {
	if strings.Contains(e.Path, ".") {
		return NameFileNotFound
	}
	return NameDirectoryNotFound
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("%s: '%s' does not exist.", e.Name(), e.Path)
}

// SyntaxError reports a document that cannot be parsed. Line and Column
// are 1-based, or 0 when unknown.
type SyntaxError struct {
	Path   string
	Reason string
	Line   int
	Column int
	Err    error
}

func (e *SyntaxError) Error() string {
	return NameSyntax + ": " + e.Reason
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Annotation renders the error with its position.
func (e *SyntaxError) Annotation() string {
	return annotation(e.Path, e.Line, e.Column, e.Error())
}

// SchemaError reports a document that does not match the schema. Reason
// is the first violation; Details lists all of them.
type SchemaError struct {
	Path    string
	Reason  string
	Details []string
	Err     error
}

func newSchemaError(path string, details []string, err error) *SchemaError {
	reason := ReasonUnknown
	if len(details) > 0 && details[0] != "" {
		reason = details[0]
	}
	return &SchemaError{Path: path, Reason: reason, Details: details, Err: err}
}

func (e *SchemaError) Error() string {
	return NameSchema + ": " + e.Reason
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Annotation renders the error at the start of the file.
func (e *SchemaError) Annotation() string {
	return annotation(e.Path, 0, 0, e.Error())
}

// Position converts the byte offset reported by encoding/json (bytes read
// up to and including the offending one) into a 1-based line and column.
func Position(data []byte, offset int64) (line, column int) {
	if offset <= 0 {
		return 0, 0
	}
	idx := int(offset) - 1
	if idx > len(data) {
		idx = len(data)
	}
	before := data[:idx]
	line = 1 + bytes.Count(before, []byte("\n"))
	column = idx - (bytes.LastIndexByte(before, '\n') + 1) + 1
	return line, column
}
