package l10n

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Message is a Fluent message or term with its raw value and attribute patterns
type Message struct {
	ID         string
	Value      string
	Attributes map[string]string
}

// Resource is a parsed Fluent (.ftl) resource
type Resource struct {
	Messages map[string]*Message
	Terms    map[string]*Message
}

var (
	entryStart     = regexp.MustCompile(`^(-?[a-zA-Z][a-zA-Z0-9_-]*)\s*=\s?(.*)$`)
	attributeStart = regexp.MustCompile(`^\s+\.([a-zA-Z][a-zA-Z0-9_-]*)\s*=\s?(.*)$`)
)

// rawPattern accumulates the source lines of one value or attribute
type rawPattern struct {
	inline string
	lines  []string
}

func (p *rawPattern) text() string {
	// Drop trailing blank lines
	lines := p.lines
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " "))
		if indent < 0 || n < indent {
			indent = n
		}
	}

	parts := make([]string, 0, len(lines)+1)
	if inline := strings.TrimSpace(p.inline); inline != "" {
		parts = append(parts, inline)
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			parts = append(parts, "")
			continue
		}
		parts = append(parts, strings.TrimRight(line[indent:], " \t"))
	}
	return strings.Join(parts, "\n")
}

// ParseResource parses Fluent syntax. Unparseable entries are skipped, as
// Fluent treats them as junk.
func ParseResource(r io.Reader) (*Resource, error) {
	res := &Resource{
		Messages: make(map[string]*Message),
		Terms:    make(map[string]*Message),
	}

	var (
		current    *Message
		value      *rawPattern
		attrs      map[string]*rawPattern
		attrOrder  []string
		target     *rawPattern
		lineNumber int
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Value = value.text()
		for _, name := range attrOrder {
			current.Attributes[name] = attrs[name].text()
		}
		if current.Value == "" && len(current.Attributes) == 0 {
			logrus.Debugf("Skipping empty Fluent entry %s", current.ID)
		} else if strings.HasPrefix(current.ID, "-") {
			if _, dup := res.Terms[current.ID]; !dup {
				res.Terms[current.ID] = current
			}
		} else {
			if _, dup := res.Messages[current.ID]; !dup {
				res.Messages[current.ID] = current
			}
		}
		current, value, attrs, attrOrder, target = nil, nil, nil, nil, nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")

		switch {
		case strings.HasPrefix(line, "#"):
			flush()
		case line == "" || strings.TrimSpace(line) == "":
			if target != nil {
				target.lines = append(target.lines, "")
			}
		case current != nil && line[0] != ' ' && line[0] != '\t' && insidePlaceable(target):
			// Placeables may close, or list variants, at any indentation
			target.lines = append(target.lines, line)
		case line[0] == ' ' || line[0] == '\t':
			if current == nil {
				logrus.Debugf("Skipping indented Fluent junk on line %d", lineNumber)
				continue
			}
			if m := attributeStart.FindStringSubmatch(line); m != nil && !insidePlaceable(target) {
				p := &rawPattern{inline: m[2]}
				if _, seen := attrs[m[1]]; !seen {
					attrOrder = append(attrOrder, m[1])
				}
				attrs[m[1]] = p
				target = p
				continue
			}
			target.lines = append(target.lines, strings.ReplaceAll(line, "\t", " "))
		default:
			flush()
			m := entryStart.FindStringSubmatch(line)
			if m == nil {
				logrus.Debugf("Skipping Fluent junk on line %d: %q", lineNumber, line)
				continue
			}
			current = &Message{ID: m[1], Attributes: make(map[string]string)}
			value = &rawPattern{inline: m[2]}
			attrs = make(map[string]*rawPattern)
			target = value
		}
	}
	flush()

	return res, scanner.Err()
}

// insidePlaceable reports whether p has an unclosed { so that an indented
// ".name =" line is part of an expression rather than a new attribute
func insidePlaceable(p *rawPattern) bool {
	if p == nil {
		return false
	}
	text := p.inline + "\n" + strings.Join(p.lines, "\n")
	depth := 0
	inString := false
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case inString && c == '\\':
			i++
		case inString && c == '"':
			inString = false
		case inString:
		case c == '"' && depth > 0:
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
		}
	}
	return depth > 0
}
