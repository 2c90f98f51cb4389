package webhelper

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rusq/webhelper/locator"
)

// AssertionError is returned by the See* and DontSee* functions when the
// expectation is not met.
type AssertionError struct {
	Subject  string // what was checked, i.e. "web page"
	Needle   string // expected value
	Haystack string // actual value
	Negate   bool
	Verb     string // "include" or "equal"
}

func (e *AssertionError) Error() string {
	not := ""
	if e.Negate {
		not = "not "
	}
	msg := fmt.Sprintf("expected %s %sto %s %q", e.Subject, not, e.Verb, e.Needle)
	if e.Haystack != "" {
		msg += fmt.Sprintf(", got %q", truncate(e.Haystack, 200))
	}
	return msg
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// IsAssertion returns true if err is an assertion failure.
func IsAssertion(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}

func includes(subject, haystack, needle string, negate bool) error {
	if strings.Contains(haystack, needle) != negate {
		return nil
	}
	return &AssertionError{Subject: subject, Needle: needle, Haystack: haystack, Negate: negate, Verb: "include"}
}

func equals(subject, actual, expected string, negate bool) error {
	if (actual == expected) != negate {
		return nil
	}
	return &AssertionError{Subject: subject, Needle: expected, Haystack: actual, Negate: negate, Verb: "equal"}
}

// See checks that the text is on the page, or in the elements matched by
// the context locator, if given.
func (h *Helper) See(ctx context.Context, text string, within ...locator.Locator) error {
	return h.see(ctx, text, within, false)
}

// DontSee checks that the text is not on the page.
func (h *Helper) DontSee(ctx context.Context, text string, within ...locator.Locator) error {
	return h.see(ctx, text, within, true)
}

func (h *Helper) see(ctx context.Context, text string, within []locator.Locator, negate bool) error {
	var loc locator.Locator
	subject := "web application"
	if len(within) > 0 {
		loc = within[0]
		subject = "element " + loc.String()
	}
	haystack, err := h.pageText(ctx, loc)
	if err != nil {
		return err
	}
	return includes(subject, haystack, text, negate)
}

func (h *Helper) SeeInTitle(ctx context.Context, text string) error {
	return h.seeInTitle(ctx, text, false)
}

func (h *Helper) DontSeeInTitle(ctx context.Context, text string) error {
	return h.seeInTitle(ctx, text, true)
}

func (h *Helper) seeInTitle(ctx context.Context, text string, negate bool) error {
	title, err := h.GrabTitle(ctx)
	if err != nil {
		return err
	}
	return includes("web page title", title, text, negate)
}

// SeeInField checks that the field has the value.
func (h *Helper) SeeInField(ctx context.Context, field locator.Locator, value string) error {
	return h.seeInField(ctx, field, value, false)
}

func (h *Helper) DontSeeInField(ctx context.Context, field locator.Locator, value string) error {
	return h.seeInField(ctx, field, value, true)
}

func (h *Helper) seeInField(ctx context.Context, field locator.Locator, value string, negate bool) error {
	v, err := h.GrabValueFrom(ctx, field)
	if err != nil {
		return err
	}
	return equals("field "+field.String(), v, value, negate)
}

// SeeCheckboxIsChecked checks that the checkbox or radio button is checked.
func (h *Helper) SeeCheckboxIsChecked(ctx context.Context, field locator.Locator) error {
	return h.seeChecked(ctx, field, false)
}

func (h *Helper) DontSeeCheckboxIsChecked(ctx context.Context, field locator.Locator) error {
	return h.seeChecked(ctx, field, true)
}

func (h *Helper) seeChecked(ctx context.Context, field locator.Locator, negate bool) error {
	el, err := h.findOne(ctx, locator.Checkable, field)
	if err != nil {
		return err
	}
	checked, err := el.Checked(ctx)
	if err != nil {
		return ErrBrowser{Err: err, FailedTo: "get checkbox state"}
	}
	return equals("checkbox "+field.String(), fmt.Sprint(checked), "true", negate)
}

// SeeElement checks that a visible element matching the locator is on the
// page.
func (h *Helper) SeeElement(ctx context.Context, loc locator.Locator) error {
	return h.seeElement(ctx, loc, false)
}

// DontSeeElement checks that no visible element matches the locator.
func (h *Helper) DontSeeElement(ctx context.Context, loc locator.Locator) error {
	return h.seeElement(ctx, loc, true)
}

func (h *Helper) seeElement(ctx context.Context, loc locator.Locator, negate bool) error {
	n, err := h.GrabNumberOfVisibleElements(ctx, loc)
	if err != nil {
		return err
	}
	if (n > 0) != negate {
		return nil
	}
	return &AssertionError{Subject: "elements of " + loc.String(), Verb: "be", Needle: "visible", Negate: negate}
}

// SeeNumberOfElements checks that there are exactly n elements matching the
// locator.
func (h *Helper) SeeNumberOfElements(ctx context.Context, loc locator.Locator, n int) error {
	els, err := h.find(ctx, locator.Any, loc)
	if err != nil {
		return err
	}
	return equals("number of elements "+loc.String(), fmt.Sprint(len(els)), fmt.Sprint(n), false)
}

// SeeInSource checks that the raw page HTML contains the text.
func (h *Helper) SeeInSource(ctx context.Context, text string) error {
	return h.seeInSource(ctx, text, false)
}

func (h *Helper) DontSeeInSource(ctx context.Context, text string) error {
	return h.seeInSource(ctx, text, true)
}

func (h *Helper) seeInSource(ctx context.Context, text string, negate bool) error {
	src, err := h.GrabSource(ctx)
	if err != nil {
		return err
	}
	return includes("HTML source of a page", src, text, negate)
}

// SeeInCurrentURL checks that the current URL contains the text.
func (h *Helper) SeeInCurrentURL(ctx context.Context, text string) error {
	return h.seeInURL(ctx, text, false)
}

func (h *Helper) DontSeeInCurrentURL(ctx context.Context, text string) error {
	return h.seeInURL(ctx, text, true)
}

func (h *Helper) seeInURL(ctx context.Context, text string, negate bool) error {
	u, err := h.GrabCurrentURL(ctx)
	if err != nil {
		return err
	}
	return includes("url", u, text, negate)
}

// SeeCurrentURLEquals checks that the current URL equals to the expected
// one.  Relative URLs are resolved against the base URL.
func (h *Helper) SeeCurrentURLEquals(ctx context.Context, expected string) error {
	return h.seeURLEquals(ctx, expected, false)
}

func (h *Helper) DontSeeCurrentURLEquals(ctx context.Context, expected string) error {
	return h.seeURLEquals(ctx, expected, true)
}

func (h *Helper) seeURLEquals(ctx context.Context, expected string, negate bool) error {
	u, err := h.GrabCurrentURL(ctx)
	if err != nil {
		return err
	}
	if ref, err := h.baseURL.Parse(expected); err == nil {
		expected = ref.String()
	}
	return equals("url", u, expected, negate)
}

// SeeCookie checks that the named cookie is set.
func (h *Helper) SeeCookie(ctx context.Context, name string) error {
	return h.seeCookie(ctx, name, false)
}

func (h *Helper) DontSeeCookie(ctx context.Context, name string) error {
	return h.seeCookie(ctx, name, true)
}

func (h *Helper) seeCookie(ctx context.Context, name string, negate bool) error {
	cookies, err := h.grabCookies(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(cookies))
	for _, c := range cookies {
		names = append(names, c.Name)
	}
	if slices.Contains(names, name) != negate {
		return nil
	}
	return &AssertionError{Subject: "cookies", Verb: "include", Needle: name, Haystack: strings.Join(names, ", "), Negate: negate}
}

// SeeInPopup checks that the open javascript dialog contains the text.
func (h *Helper) SeeInPopup(ctx context.Context, text string) error {
	if !h.opened {
		return ErrNoSession
	}
	msg, open, err := h.driver.Popup(ctx)
	if err != nil {
		return ErrBrowser{Err: err, FailedTo: "get popup"}
	}
	if !open {
		return &AssertionError{Subject: "popup", Verb: "be", Needle: "open"}
	}
	return includes("text in popup", msg, text, false)
}
