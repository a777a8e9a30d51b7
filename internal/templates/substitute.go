package templates

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholder matches $$, $name, ${name} and any other lone $
var placeholder = regexp.MustCompile(`\$(?:(\$)|([_A-Za-z][_A-Za-z0-9]*)|\{([_A-Za-z][_A-Za-z0-9]*)\}|())`)

// MissingVariableError reports a placeholder without a matching variable
type MissingVariableError struct {
	Name string
	Line int
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("no value for placeholder $%s on line %d", e.Name, e.Line)
}

// InvalidPlaceholderError reports a $ not followed by a name, {name} or $
type InvalidPlaceholderError struct {
	Line   int
	Column int
}

func (e *InvalidPlaceholderError) Error() string {
	return fmt.Sprintf("invalid placeholder on line %d, col %d", e.Line, e.Column)
}

// Substitute replaces $name and ${name} with values from vars and $$ with $.
// Every placeholder must resolve; substitution never leaves one behind.
func Substitute(text string, vars map[string]string) (string, error) {
	var out strings.Builder
	last := 0

	for _, m := range placeholder.FindAllStringSubmatchIndex(text, -1) {
		out.WriteString(text[last:m[0]])
		last = m[1]

		switch {
		case m[2] >= 0:
			out.WriteByte('$')
		case m[4] >= 0 || m[6] >= 0:
			name := group(text, m, 2)
			if name == "" {
				name = group(text, m, 3)
			}
			value, ok := vars[name]
			if !ok {
				return "", &MissingVariableError{Name: name, Line: lineOf(text, m[0])}
			}
			out.WriteString(value)
		default:
			line := lineOf(text, m[0])
			col := m[0] - strings.LastIndex(text[:m[0]], "\n")
			return "", &InvalidPlaceholderError{Line: line, Column: col}
		}
	}

	out.WriteString(text[last:])
	return out.String(), nil
}

func group(text string, m []int, i int) string {
	start, end := m[2*i], m[2*i+1]
	if start < 0 {
		return ""
	}
	return text[start:end]
}

func lineOf(text string, offset int) int {
	return strings.Count(text[:offset], "\n") + 1
}
