package l10n

import (
	"strings"
)

// maxDepth bounds reference chains so that cyclic references terminate
const maxDepth = 16

// Bundle holds the messages and terms of one locale
type Bundle struct {
	Locale   string
	messages map[string]*Message
	terms    map[string]*Message
}

// NewBundle creates an empty bundle for locale
func NewBundle(locale string) *Bundle {
	return &Bundle{
		Locale:   locale,
		messages: make(map[string]*Message),
		terms:    make(map[string]*Message),
	}
}

// AddResource adds the entries of res. Entries already present are kept.
func (b *Bundle) AddResource(res *Resource) {
	for id, m := range res.Messages {
		if _, ok := b.messages[id]; !ok {
			b.messages[id] = m
		}
	}
	for id, m := range res.Terms {
		if _, ok := b.terms[id]; !ok {
			b.terms[id] = m
		}
	}
}

// HasMessage reports whether the bundle defines a message with a value
func (b *Bundle) HasMessage(id string) bool {
	m, ok := b.messages[id]
	return ok && m.Value != ""
}

// FormatValue formats the value of message id
func (b *Bundle) FormatValue(id string) (string, bool) {
	if !b.HasMessage(id) {
		return "", false
	}
	var sb strings.Builder
	b.formatPattern(&sb, b.messages[id].Value, 0)
	return sb.String(), true
}

func (b *Bundle) formatPattern(sb *strings.Builder, pattern string, depth int) {
	for i := 0; i < len(pattern); {
		if pattern[i] != '{' {
			next := strings.IndexByte(pattern[i:], '{')
			if next < 0 {
				sb.WriteString(pattern[i:])
				return
			}
			sb.WriteString(pattern[i : i+next])
			i += next
			continue
		}

		end := matchingBrace(pattern, i)
		if end < 0 {
			// Unterminated placeable, emit verbatim
			sb.WriteString(pattern[i:])
			return
		}
		b.formatExpression(sb, pattern[i+1:end], depth)
		i = end + 1
	}
}

func (b *Bundle) formatExpression(sb *strings.Builder, expr string, depth int) {
	expr = strings.TrimSpace(expr)
	if depth >= maxDepth {
		sb.WriteString("{" + expr + "}")
		return
	}

	if arrow := indexOutsideLiterals(expr, "->"); arrow >= 0 {
		b.formatPattern(sb, defaultVariant(expr[arrow+2:]), depth+1)
		return
	}

	switch {
	case expr == "":
		sb.WriteString("{}")
	case expr[0] == '"':
		sb.WriteString(unquote(expr))
	case expr[0] == '{':
		if end := matchingBrace(expr, 0); end > 0 {
			b.formatExpression(sb, expr[1:end], depth+1)
		}
	case expr[0] == '$':
		sb.WriteString("{" + expr + "}")
	case expr[0] == '-':
		b.formatReference(sb, b.terms, expr, depth)
	case expr[0] >= '0' && expr[0] <= '9':
		sb.WriteString(expr)
	default:
		b.formatReference(sb, b.messages, expr, depth)
	}
}

// formatReference resolves id, id.attr or id(args) against entries
func (b *Bundle) formatReference(sb *strings.Builder, entries map[string]*Message, ref string, depth int) {
	if paren := strings.IndexByte(ref, '('); paren >= 0 {
		ref = strings.TrimSpace(ref[:paren])
	}
	id, attr, _ := strings.Cut(ref, ".")

	m, ok := entries[id]
	if !ok {
		sb.WriteString("{" + ref + "}")
		return
	}

	pattern := m.Value
	if attr != "" {
		pattern, ok = m.Attributes[attr]
		if !ok {
			sb.WriteString("{" + ref + "}")
			return
		}
	}
	b.formatPattern(sb, pattern, depth+1)
}

// defaultVariant returns the pattern of the *[key] variant of a select expression
func defaultVariant(variants string) string {
	var (
		lines      = strings.Split(variants, "\n")
		collecting bool
		out        []string
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		isVariant := strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "*[")
		if isVariant {
			if collecting {
				break
			}
			if !strings.HasPrefix(trimmed, "*[") {
				continue
			}
			collecting = true
			if end := strings.IndexByte(trimmed, ']'); end >= 0 {
				out = append(out, strings.TrimSpace(trimmed[end+1:]))
			}
			continue
		}
		if collecting {
			out = append(out, trimmed)
		}
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// matchingBrace returns the index of the } closing the { at open, or -1
func matchingBrace(s string, open int) int {
	depth := 0
	inString := false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func indexOutsideLiterals(s, sub string) int {
	inString := false
	braces := 0
	for i := 0; i < len(s); i++ {
		switch {
		case inString && s[i] == '\\':
			i++
		case s[i] == '"':
			inString = !inString
		case inString:
		case s[i] == '{':
			braces++
		case s[i] == '}':
			braces--
		case braces == 0 && strings.HasPrefix(s[i:], sub):
			return i
		}
	}
	return -1
}

func unquote(lit string) string {
	lit = strings.TrimPrefix(lit, "\"")
	if i := strings.LastIndexByte(lit, '"'); i >= 0 {
		lit = lit[:i]
	}
	r := strings.NewReplacer(`\"`, `"`, `\\`, `\`)
	return r.Replace(lit)
}
