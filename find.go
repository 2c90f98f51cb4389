package webhelper

import (
	"context"
	"runtime/trace"

	"github.com/rusq/webhelper/locator"
)

// find returns the elements matching the locator, trying the candidates in
// order and returning the first non-empty result.  It returns an empty slice
// if nothing matches.
func (h *Helper) find(ctx context.Context, t locator.Target, loc locator.Locator) ([]Element, error) {
	if !h.opened {
		return nil, ErrNoSession
	}
	defer trace.StartRegion(ctx, "find").End()
	raw := loc.Raw()
	for _, c := range locator.Candidates(t, loc) {
		els, err := h.driver.FindAll(ctx, h.scope, c)
		if err != nil {
			// a label, such as "Email:", is rarely a valid selector.
			if loc.Kind == locator.Fuzzy && c == raw {
				h.opts.lg.Debug("label is not a selector", "locator", c, "err", err)
				return nil, nil
			}
			return nil, ErrBrowser{Err: err, FailedTo: "find " + t.String() + " " + loc.String()}
		}
		if len(els) > 0 {
			h.opts.lg.Debug("found", "target", t, "locator", c, "count", len(els))
			return els, nil
		}
	}
	return nil, nil
}

// findOne returns the first element matching the locator, or
// ErrElementNotFound.
func (h *Helper) findOne(ctx context.Context, t locator.Target, loc locator.Locator) (Element, error) {
	els, err := h.find(ctx, t, loc)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, ErrElementNotFound{Locator: loc, Target: t}
	}
	return els[0], nil
}

// visible filters out the invisible elements.
func visible(ctx context.Context, els []Element) ([]Element, error) {
	var ret []Element
	for _, el := range els {
		ok, err := el.Visible(ctx)
		if err != nil {
			return nil, ErrBrowser{Err: err, FailedTo: "check visibility"}
		}
		if ok {
			ret = append(ret, el)
		}
	}
	return ret, nil
}

// Within runs fn with the element lookups restricted to the element found
// by the locator.
func (h *Helper) Within(ctx context.Context, loc locator.Locator, fn func() error) error {
	el, err := h.findOne(ctx, locator.Any, loc)
	if err != nil {
		return err
	}
	prev := h.scope
	h.scope = el
	defer func() { h.scope = prev }()
	return fn()
}
