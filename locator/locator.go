// Package locator decides how a string identifies a page element and builds
// the XPath expressions used to find form fields, clickables and checkables
// by their human-readable labels.
package locator

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the locator strategy.
type Kind uint8

const (
	Fuzzy Kind = iota // human readable label
	CSS
	XPath
)

func (k Kind) String() string {
	switch k {
	case CSS:
		return "css"
	case XPath:
		return "xpath"
	default:
		return "fuzzy"
	}
}

// Locator identifies an element on the page.
type Locator struct {
	Kind  Kind
	Value string
}

// ErrUnknownStrategy is returned by [Strict] for unsupported strategy names.
var ErrUnknownStrategy = errors.New("unknown locator strategy")

// Of classifies s.  Strings starting with "//" or ".//" are XPath, strings
// starting with "#" or "." are CSS, anything else is a fuzzy label.
func Of(s string) Locator {
	switch {
	case isXPath(s):
		return XPathOf(s)
	case strings.HasPrefix(s, "#"), strings.HasPrefix(s, "."):
		return CSSOf(s)
	default:
		return Label(s)
	}
}

func isXPath(s string) bool {
	return strings.HasPrefix(s, "//") || strings.HasPrefix(s, ".//")
}

// CSSOf returns a CSS locator.
func CSSOf(s string) Locator {
	return Locator{Kind: CSS, Value: s}
}

// XPathOf returns an XPath locator.
func XPathOf(s string) Locator {
	return Locator{Kind: XPath, Value: s}
}

// Label returns a fuzzy locator.
func Label(s string) Locator {
	return Locator{Kind: Fuzzy, Value: s}
}

// Strict builds a locator from an explicit strategy name and a value, i.e.
// {css: "#a"} or {name: "email"}.
func Strict(strategy, value string) (Locator, error) {
	switch strings.ToLower(strategy) {
	case "css":
		return CSSOf(value), nil
	case "xpath", "by":
		return XPathOf(value), nil
	case "id":
		return CSSOf("#" + value), nil
	case "name":
		return CSSOf(`[name="` + CSSEscape(value) + `"]`), nil
	case "label", "text", "fuzzy":
		return Label(value), nil
	}
	return Locator{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
}

// CSSEscape escapes the string for use inside a double-quoted CSS string.
func CSSEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// Raw returns the locator the way a browser engine would see the literal
// string: XPath if it looks like one, CSS otherwise.
func (l Locator) Raw() Locator {
	if l.Kind != Fuzzy {
		return l
	}
	v := l.Value
	if isXPath(v) || strings.HasPrefix(v, "./") || strings.HasPrefix(v, "(") {
		return XPathOf(v)
	}
	return CSSOf(v)
}

func (l Locator) IsZero() bool {
	return l.Value == ""
}

func (l Locator) String() string {
	if l.Kind == Fuzzy {
		return fmt.Sprintf("%q", l.Value)
	}
	return fmt.Sprintf("{%s: %q}", l.Kind, l.Value)
}
