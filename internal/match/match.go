// Package match decides whether a log line or record contains any of the
// configured target phrases.
package match

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoPhrases is returned when a phrase list contains nothing to search for.
var ErrNoPhrases = errors.New("no search phrases given")

// ParsePhrases splits a comma-separated phrase list. Fields are trimmed and
// empty fields dropped. A field wrapped in double quotes may contain commas:
//
//	fail, "disk, full", timeout
//
// A literal quote inside a quoted field is doubled. Unbalanced or stray
// quotes are an error. Line breaks are treated as separators.
func ParsePhrases(input string) ([]string, error) {
	normalized := strings.NewReplacer("\r\n", ",", "\n", ",").Replace(input)
	if strings.TrimSpace(normalized) == "" {
		return nil, ErrNoPhrases
	}

	r := csv.NewReader(strings.NewReader(trimAfterQuotes(normalized)))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	fields, err := r.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse phrases: %w", err)
	}

	seen := make(map[string]bool, len(fields))
	phrases := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		phrases = append(phrases, f)
	}
	if len(phrases) == 0 {
		return nil, ErrNoPhrases
	}
	return phrases, nil
}

// trimAfterQuotes drops blanks between a closing quote and the following
// comma or end of input, which encoding/csv would otherwise reject.
func trimAfterQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	quoted := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			quoted = !quoted
		} else if !quoted && isBlank(c) && i > 0 && s[i-1] == '"' {
			j := i
			for j < len(s) && isBlank(s[j]) {
				j++
			}
			if j == len(s) || s[j] == ',' {
				i = j - 1
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

// Matcher tests text for substring containment of any phrase.
type Matcher struct {
	phrases    []string
	folded     []string
	ignoreCase bool
}

// New builds a Matcher. Empty phrases are ignored.
func New(phrases []string, ignoreCase bool) (*Matcher, error) {
	m := &Matcher{ignoreCase: ignoreCase}
	for _, p := range phrases {
		if p == "" {
			continue
		}
		m.phrases = append(m.phrases, p)
		m.folded = append(m.folded, strings.ToLower(p))
	}
	if len(m.phrases) == 0 {
		return nil, ErrNoPhrases
	}
	return m, nil
}

// MustNew is New for phrase lists known to be valid.
func MustNew(phrases ...string) *Matcher {
	m, err := New(phrases, false)
	if err != nil {
		panic(err)
	}
	return m
}

// Phrases returns the phrases the matcher searches for.
func (m *Matcher) Phrases() []string {
	out := make([]string, len(m.phrases))
	copy(out, m.phrases)
	return out
}

// Match reports whether text contains at least one phrase.
func (m *Matcher) Match(text string) bool {
	if m.ignoreCase {
		lower := strings.ToLower(text)
		for _, p := range m.folded {
			if strings.Contains(lower, p) {
				return true
			}
		}
		return false
	}
	for _, p := range m.phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// Matched returns every phrase found in text, in configured order.
func (m *Matcher) Matched(text string) []string {
	var found []string
	haystack := text
	needles := m.phrases
	if m.ignoreCase {
		haystack = strings.ToLower(text)
		needles = m.folded
	}
	for i, p := range needles {
		if strings.Contains(haystack, p) {
			found = append(found, m.phrases[i])
		}
	}
	return found
}

// String renders the phrase list for titles and log lines.
func (m *Matcher) String() string {
	quoted := make([]string, len(m.phrases))
	for i, p := range m.phrases {
		quoted[i] = fmt.Sprintf("%q", p)
	}
	return strings.Join(quoted, ", ")
}
