package locator

import (
	"strings"
)

// Target is what the locator is resolved for.  It selects the set of XPath
// expressions tried for fuzzy labels.
type Target uint8

const (
	Any Target = iota
	Clickable
	Field
	Checkable
)

func (t Target) String() string {
	switch t {
	case Clickable:
		return "clickable"
	case Field:
		return "field"
	case Checkable:
		return "checkable"
	default:
		return "element"
	}
}

// Literal returns s as an XPath string literal.  XPath 1.0 has no escape
// sequences, so strings containing a single quote are split and joined back
// with concat().
func Literal(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, "'")
	for i, p := range parts {
		parts[i] = "'" + p + "'"
	}
	return "concat(" + strings.Join(parts, `,"'",`) + ")"
}

// Combine joins xpath expressions into a union.
func Combine(xpaths ...string) string {
	return strings.Join(xpaths, " | ")
}

// Candidates returns the ordered list of locators to try for the target.  For
// fuzzy labels of actionable targets the exact match comes first, then the
// "contains" match, and the literal string last.
func Candidates(t Target, l Locator) []Locator {
	if l.Kind != Fuzzy {
		return []Locator{l}
	}
	lit := Literal(l.Value)
	var narrow, wide string
	switch t {
	case Clickable:
		narrow, wide = narrowClickable(lit), wideClickable(lit)
	case Field:
		narrow, wide = narrowField(lit), wideField(lit)
	case Checkable:
		narrow, wide = narrowCheckable(lit), wideCheckable(lit)
	default:
		return []Locator{l.Raw()}
	}
	return []Locator{XPathOf(narrow), XPathOf(wide), l.Raw()}
}

const (
	buttonInput = `.//input[./@type = 'submit' or ./@type = 'image' or ./@type = 'button']`
	formControl = `.//*[self::input | self::textarea | self::select][not(./@type = 'submit' or ./@type = 'image' or ./@type = 'hidden')]`
	checkInput  = `.//input[@type = 'checkbox' or @type = 'radio']`
)

func narrowClickable(lit string) string {
	return Combine(
		`.//a[normalize-space(.)=`+lit+`]`,
		`.//button[normalize-space(.)=`+lit+`]`,
		`.//a/img[normalize-space(@alt)=`+lit+`]/ancestor::a`,
		buttonInput+`[normalize-space(@value)=`+lit+`]`,
	)
}

func wideClickable(lit string) string {
	return Combine(
		`.//a[./@href][((contains(normalize-space(string(.)), `+lit+`)) or .//img[contains(./@alt, `+lit+`)])]`,
		buttonInput+`[contains(./@value, `+lit+`)]`,
		`.//input[./@type = 'image'][contains(./@alt, `+lit+`)]`,
		`.//button[contains(normalize-space(string(.)), `+lit+`)]`,
		buttonInput+`[./@name = `+lit+`]`,
		`.//button[./@name = `+lit+`]`,
	)
}

func narrowField(lit string) string {
	return Combine(
		formControl+`[(((./@name = `+lit+`) or ./@id = //label[normalize-space(string(.)) = `+lit+`]/@for) or ./@placeholder = `+lit+`)]`,
		`.//label[normalize-space(string(.)) = `+lit+`]//`+formControl,
	)
}

func wideField(lit string) string {
	return `.//*[self::input | self::textarea | self::select][@name = ` + lit + `]`
}

func narrowCheckable(lit string) string {
	return Combine(
		checkInput+`[(@id = //label[contains(normalize-space(string(.)), `+lit+`)]/@for) or @placeholder = `+lit+`]`,
		`.//label[contains(normalize-space(string(.)), `+lit+`)]//input[@type = 'radio' or @type = 'checkbox']`,
	)
}

func wideCheckable(lit string) string {
	return checkInput + `[@name = ` + lit + `]`
}

// Option returns the locator of <option> elements, relative to a <select>,
// whose text or value equals s.
func Option(s string) Locator {
	lit := Literal(s)
	return XPathOf(Combine(
		`./option[normalize-space(.)=`+lit+`]`,
		`./option[./@value=`+lit+`]`,
		`./optgroup/option[normalize-space(.)=`+lit+`]`,
		`./optgroup/option[./@value=`+lit+`]`,
	))
}
