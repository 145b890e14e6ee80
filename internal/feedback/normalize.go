package feedback

import (
	"strings"
	"unicode"
)

const fence = "```"

// Normalize cleans a model response before decoding: one surrounding code
// fence is removed, the outermost object is cut out of any prose around it,
// and trailing commas before a closing bracket are dropped. String
// literals are never modified.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = stripFence(s)
	s = outermostObject(s)
	s = dropTrailingCommas(s)
	return strings.TrimSpace(s)
}

func stripFence(s string) string {
	if strings.HasPrefix(s, fence) {
		s = strings.TrimPrefix(s, fence)
		// язык после ``` (json, JSON, ...)
		s = strings.TrimLeftFunc(s, unicode.IsLetter)
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, fence) {
		s = strings.TrimSpace(strings.TrimSuffix(s, fence))
	}
	return s
}

func outermostObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}

func dropTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
		}
		if ch == ',' && closesNext(s[i+1:]) {
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// closesNext reports whether rest is only whitespace up to a closing
// bracket or the end of input.
func closesNext(rest string) bool {
	rest = strings.TrimLeft(rest, " \t\r\n")
	return rest == "" || rest[0] == '}' || rest[0] == ']'
}
