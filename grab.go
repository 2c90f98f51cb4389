package webhelper

import (
	"context"
	"net/http"
	"strings"

	"github.com/rusq/webhelper/locator"
)

// GrabTextFrom returns the text of the element.
func (h *Helper) GrabTextFrom(ctx context.Context, loc locator.Locator) (string, error) {
	el, err := h.findOne(ctx, locator.Any, loc)
	if err != nil {
		return "", err
	}
	txt, err := el.Text(ctx)
	if err != nil {
		return "", ErrBrowser{Err: err, FailedTo: "get text of " + loc.String()}
	}
	return txt, nil
}

// GrabValueFrom returns the value of the form field.
func (h *Helper) GrabValueFrom(ctx context.Context, field locator.Locator) (string, error) {
	el, err := h.findOne(ctx, locator.Field, field)
	if err != nil {
		return "", err
	}
	v, err := el.Value(ctx)
	if err != nil {
		return "", ErrBrowser{Err: err, FailedTo: "get value of " + field.String()}
	}
	return v, nil
}

// GrabAttributeFrom returns the attribute value of the element.  It returns
// an empty string if the element has no such attribute.
func (h *Helper) GrabAttributeFrom(ctx context.Context, loc locator.Locator, attr string) (string, error) {
	el, err := h.findOne(ctx, locator.Any, loc)
	if err != nil {
		return "", err
	}
	v, _, err := el.Attribute(ctx, attr)
	if err != nil {
		return "", ErrBrowser{Err: err, FailedTo: "get attribute " + attr + " of " + loc.String()}
	}
	return v, nil
}

// GrabTitle returns the page title.
func (h *Helper) GrabTitle(ctx context.Context) (string, error) {
	info, err := h.pageInfo(ctx)
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

// GrabCurrentURL returns the URL of the current page.
func (h *Helper) GrabCurrentURL(ctx context.Context) (string, error) {
	info, err := h.pageInfo(ctx)
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (h *Helper) pageInfo(ctx context.Context) (PageInfo, error) {
	if !h.opened {
		return PageInfo{}, ErrNoSession
	}
	info, err := h.driver.Info(ctx)
	if err != nil {
		return PageInfo{}, ErrBrowser{Err: err, FailedTo: "get page info"}
	}
	return info, nil
}

// GrabSource returns the page HTML.
func (h *Helper) GrabSource(ctx context.Context) (string, error) {
	if !h.opened {
		return "", ErrNoSession
	}
	src, err := h.driver.Source(ctx)
	if err != nil {
		return "", ErrBrowser{Err: err, FailedTo: "get page source"}
	}
	return src, nil
}

// GrabCookie returns the named cookie, or nil if there's no such cookie.
func (h *Helper) GrabCookie(ctx context.Context, name string) (*http.Cookie, error) {
	cookies, err := h.grabCookies(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cookies {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

func (h *Helper) grabCookies(ctx context.Context) ([]*http.Cookie, error) {
	if !h.opened {
		return nil, ErrNoSession
	}
	cookies, err := h.driver.Cookies(ctx)
	if err != nil {
		return nil, ErrBrowser{Err: err, FailedTo: "get cookies"}
	}
	return cookies, nil
}

// GrabNumberOfVisibleElements returns the number of visible elements
// matching the locator.
func (h *Helper) GrabNumberOfVisibleElements(ctx context.Context, loc locator.Locator) (int, error) {
	els, err := h.find(ctx, locator.Any, loc)
	if err != nil {
		return 0, err
	}
	vis, err := visible(ctx, els)
	if err != nil {
		return 0, err
	}
	return len(vis), nil
}

// pageText returns the text of the elements matched by the locator, or the
// text of the scope (page body if not within) if loc is zero.
func (h *Helper) pageText(ctx context.Context, loc locator.Locator) (string, error) {
	if loc.IsZero() {
		if h.scope != nil {
			t, err := h.scope.Text(ctx)
			if err != nil {
				return "", ErrBrowser{Err: err, FailedTo: "get text"}
			}
			return t, nil
		}
		loc = locator.CSSOf("body")
	}
	els, err := h.find(ctx, locator.Any, loc)
	if err != nil {
		return "", err
	}
	if len(els) == 0 {
		return "", ErrElementNotFound{Locator: loc, Target: locator.Any}
	}
	var texts = make([]string, 0, len(els))
	for _, el := range els {
		t, err := el.Text(ctx)
		if err != nil {
			return "", ErrBrowser{Err: err, FailedTo: "get text of " + loc.String()}
		}
		texts = append(texts, t)
	}
	return strings.Join(texts, "\n"), nil
}
