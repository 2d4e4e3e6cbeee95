// Package reference finds issue references and color codes in chat messages.
//
// An issue reference is a '#' followed by decimal digits and an optional repository
// selector letter ('e', 'u' or 'l'), standing alone between whitespace or the edges
// of the text:
//
//	"see #12 and #3e" => [{12 Default} {3 Epsilon}]
//
// A color code is a message made only of '#' followed by six hexadecimal digits.
package reference

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Selector identifies which repository an issue reference points to
type Selector int

// Selectors, in the priority order used when resolving a suffix letter
const (
	Default Selector = iota
	Epsilon
	Upsilon
	Lambda
)

// Selectors lists all known selectors
var Selectors = []Selector{Default, Epsilon, Upsilon, Lambda}

var selectorNames = map[Selector]string{
	Default: "default",
	Epsilon: "e",
	Upsilon: "u",
	Lambda:  "l",
}

var suffixes = map[byte]Selector{
	'e': Epsilon,
	'u': Upsilon,
	'l': Lambda,
}

// String returns the configuration name of the selector (its suffix letter or "default")
func (s Selector) String() string {
	if n, ok := selectorNames[s]; ok {
		return n
	}

	return fmt.Sprintf("Selector(%d)", int(s))
}

// ParseSelector returns the Selector for a configuration name
func ParseSelector(name string) (s Selector, err error) {
	for sel, n := range selectorNames {
		if n == name {
			return sel, nil
		}
	}

	return Default, fmt.Errorf("Unknown repository selector [%s]", name)
}

// Reference is an issue number along with the selector of the repository it lives in
type Reference struct {
	Number   int
	Selector Selector
}

// String renders the reference the way users write it
func (r Reference) String() string {
	if r.Selector == Default {
		return fmt.Sprintf("#%d", r.Number)
	}

	return fmt.Sprintf("#%d%s", r.Number, r.Selector)
}

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6})$`)

// ParseColor returns the six hexadecimal digits of a message consisting of exactly
// one color code. Anything else in the text disqualifies it
func ParseColor(text string) (code string, ok bool) {
	m := colorRegex.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	return m[1], true
}

// HasReferences returns true if the text contains at least one issue reference
func HasReferences(text string) bool {
	for i := 0; i < len(text); i++ {
		if _, _, ok := referenceAt(text, i); ok {
			return true
		}
	}

	return false
}

// Find returns all issue references of the text in the order they appear. Repeated
// references are all returned. Every '#' is evaluated on its own so two references
// separated by a single space are both found
func Find(text string) (refs []Reference) {
	refs = make([]Reference, 0)

	for i := 0; i < len(text); i++ {
		if r, _, ok := referenceAt(text, i); ok {
			refs = append(refs, r)
		}
	}

	return refs
}

// referenceAt checks for a reference starting at byte offset i and returns it along with the
// offset just past its last character
func referenceAt(text string, i int) (r Reference, end int, ok bool) {
	if text[i] != '#' || !leftBoundary(text, i) {
		return Reference{}, i, false
	}

	j := i + 1
	for j < len(text) && text[j] >= '0' && text[j] <= '9' {
		j++
	}

	if j == i+1 {
		return Reference{}, i, false
	}

	digits := text[i+1 : j]

	sel := Default
	if j < len(text) {
		if s, isSuffix := suffixes[text[j]]; isSuffix {
			sel = s
			j++
		}
	}

	if !rightBoundary(text, j) {
		return Reference{}, i, false
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return Reference{}, i, false
	}

	return Reference{Number: n, Selector: sel}, j, true
}

func leftBoundary(text string, i int) bool {
	if i == 0 {
		return true
	}

	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return unicode.IsSpace(r)
}

func rightBoundary(text string, j int) bool {
	if j == len(text) {
		return true
	}

	r, _ := utf8.DecodeRuneInString(text[j:])
	return unicode.IsSpace(r)
}
