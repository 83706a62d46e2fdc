package extract

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	jsonFenceRe    = regexp.MustCompile("(?is)```\\s*json[ \\t]*\\r?\\n?(.*?)```")
	genericFenceRe = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*[ \\t]*\\r?\\n?(.*?)```")

	errNoJSONFence    = errors.New("no json fenced block")
	errNoGenericFence = errors.New("no fenced block starting with { or [")
	errNoBraces       = errors.New("no brace pair")
	errUnbalanced     = errors.New("no balanced object")
)

func direct(raw string) (string, error) {
	return raw, nil
}

func jsonCodeBlock(raw string) (string, error) {
	m := jsonFenceRe.FindStringSubmatch(raw)
	if m == nil {
		return "", errNoJSONFence
	}
	return m[1], nil
}

func genericCodeBlock(raw string) (string, error) {
	for _, m := range genericFenceRe.FindAllStringSubmatch(raw, -1) {
		inner := strings.TrimSpace(m[1])
		if strings.HasPrefix(inner, "{") || strings.HasPrefix(inner, "[") {
			return inner, nil
		}
	}
	return "", errNoGenericFence
}

func braceSlice(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return "", errNoBraces
	}
	return raw[start : end+1], nil
}

func stringRepair(raw string) (string, error) {
	s, err := braceSlice(raw)
	if err != nil {
		return "", err
	}
	return repairStrings(s, false), nil
}

func commaQuoteRepair(raw string) (string, error) {
	s, err := braceSlice(raw)
	if err != nil {
		return "", err
	}
	return stripTrailingCommas(repairStrings(s, true)), nil
}

// balancedScan returns the first balanced {...} span that decodes as a JSON
// object, trying each opening brace in turn. Placeholders such as {name} in
// surrounding prose are skipped. When no span decodes, the first balanced one
// is returned so the caller reports its parse error.
func balancedScan(raw string) (string, error) {
	if strings.IndexByte(raw, '{') < 0 {
		return "", errNoBraces
	}
	first := ""
	for start := strings.IndexByte(raw, '{'); start >= 0; {
		if span, ok := balancedFrom(raw, start); ok {
			if isObject(span) {
				return span, nil
			}
			if first == "" {
				first = span
			}
		}
		next := strings.IndexByte(raw[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	if first != "" {
		return first, nil
	}
	return "", errUnbalanced
}

func balancedFrom(raw string, start int) (string, bool) {
	depth := 0
	inStr, esc := false, false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

func isObject(s string) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal([]byte(s), &m) == nil
}

// repairStrings escapes raw control characters found inside string literals.
// With strayQuotes, a quote sitting between two word characters inside a
// string is escaped instead of terminating the string.
func repairStrings(s string, strayQuotes bool) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	inStr, esc := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inStr {
			if c == '"' {
				inStr = true
			}
			b.WriteByte(c)
			continue
		}
		if esc {
			esc = false
			b.WriteByte(c)
			continue
		}
		switch {
		case c == '\\':
			esc = true
			b.WriteByte(c)
		case c == '"':
			if strayQuotes && i > 0 && i+1 < len(s) && isWordByte(s[i-1]) && isWordByte(s[i+1]) {
				b.WriteString(`\"`)
				continue
			}
			inStr = false
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20:
			b.WriteString(`\u00`)
			b.WriteByte(hexDigit(c >> 4))
			b.WriteByte(hexDigit(c & 0xf))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// stripTrailingCommas drops commas that directly precede } or ], ignoring
// whitespace and anything inside string literals.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inStr, esc := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			b.WriteByte(c)
			continue
		}
		if c == '"' {
			inStr = true
			b.WriteByte(c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}

func hexDigit(n byte) byte {
	const digits = "0123456789abcdef"
	return digits[n&0xf]
}
