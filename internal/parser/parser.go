// Package parser turns line-oriented walk output into ordered key/value entries.
//
// A walk line has the form
//
//	<oid-path>.<index> = <TYPE>: <value>
//
// The key is the token after the last dot of the OID path and the value is what
// follows the type tag. All whitespace is removed from both, and a value quoted
// the way snmpwalk quotes strings loses its surrounding quotes.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/martinsuchenak/snmpinfo/internal/model"
)

// ErrMalformedLine is returned for a line that cannot be tokenized.
var ErrMalformedLine = errors.New("malformed walk line")

var (
	// typeTag matches a leading walker type tag such as "INTEGER:" or "Hex-STRING:".
	typeTag = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*:`)

	// oidPath matches the left side of a walk line such as
	// iso.3.6.1.2.1.1.5.0 or IF-MIB::ifName.1.
	oidPath = regexp.MustCompile(`^([A-Za-z0-9_-]+::)?[A-Za-z0-9_-]*(\.[A-Za-z0-9_-]+)+$|^[A-Za-z0-9_-]+::[A-Za-z0-9_-]+$`)

	unescape = strings.NewReplacer(`\\`, `\`, `\"`, `"`)
)

// Parse extracts the entries of one walk response. Blank lines and lines with an
// empty key are skipped. A repeated key overwrites the earlier value in place. A
// line that does not start a new entry continues the previous value (multi-line
// strings) and is dropped along with it; it is an error when no line precedes it.
// A line starts a new entry only when the text before its first "=" is empty or
// an OID path, so "http://host/?a=b" inside a string is a continuation.
func Parse(lines []string) ([]model.Entry, error) {
	entries := make([]model.Entry, 0, len(lines))
	index := make(map[string]int, len(lines))
	last := -1
	dropped := false

	for n, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !isEntryLine(line) {
			if dropped {
				continue
			}
			if last < 0 {
				return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedLine, n+1, line)
			}
			entries[last].Value += stripSpace(line)
			continue
		}

		key, value := splitLine(line)
		dropped = key == ""
		if dropped {
			continue
		}

		if i, ok := index[key]; ok {
			entries[i].Value = value
			last = i
			continue
		}
		index[key] = len(entries)
		last = len(entries)
		entries = append(entries, model.Entry{Key: key, Value: value})
	}

	for i := range entries {
		entries[i].Value = unquote(entries[i].Value)
	}
	return entries, nil
}

// ParseLine splits a single line containing "=" into key and value.
func ParseLine(line string) (key, value string) {
	key, value = splitLine(line)
	return key, unquote(value)
}

func isEntryLine(line string) bool {
	path, _, ok := strings.Cut(line, "=")
	if !ok {
		return false
	}
	path = strings.TrimSpace(path)
	return path == "" || oidPath.MatchString(path)
}

func splitLine(line string) (key, value string) {
	path, rhs, _ := strings.Cut(line, "=")

	path = strings.TrimSpace(path)
	if i := strings.LastIndex(path, "."); i >= 0 {
		path = path[i+1:]
	}
	key = stripSpace(path)

	rhs = strings.TrimSpace(rhs)
	if loc := typeTag.FindStringIndex(rhs); loc != nil {
		rhs = rhs[loc[1]:]
	}
	value = stripSpace(rhs)

	return key, value
}

// ToMap flattens entries into a map, for callers that do not need ordering.
func ToMap(entries []model.Entry) map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Value
	}
	return m
}

// unquote removes one pair of surrounding double quotes and the backslash
// escapes snmpwalk adds inside them.
func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	return unescape.Replace(s[1 : len(s)-1])
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
