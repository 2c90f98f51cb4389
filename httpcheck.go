package webhelper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rusq/chttp"
)

// GrabResponseCode requests the URL, relative to the current page, with the
// cookies of the browser session and returns the response status code.
func (h *Helper) GrabResponseCode(ctx context.Context, uri string) (int, error) {
	target, err := h.resolve(ctx, uri)
	if err != nil {
		return 0, err
	}
	cookies, err := h.grabCookies(ctx)
	if err != nil {
		return 0, err
	}
	cl, err := chttp.New(target.Scheme+"://"+target.Host, cookies)
	if err != nil {
		return 0, fmt.Errorf("http client: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := cl.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// SeeResponseCodeIs checks that the URL responds with the status code.
func (h *Helper) SeeResponseCodeIs(ctx context.Context, uri string, code int) error {
	got, err := h.GrabResponseCode(ctx, uri)
	if err != nil {
		return err
	}
	return equals("response code of "+uri, fmt.Sprint(got), fmt.Sprint(code), false)
}

// resolve resolves the uri against the current page URL, or against the
// base URL if the browser is on a blank page.
func (h *Helper) resolve(ctx context.Context, uri string) (*url.URL, error) {
	ref, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", uri, err)
	}
	base := h.baseURL
	if cur, err := h.GrabCurrentURL(ctx); err != nil {
		return nil, err
	} else if u, err := url.Parse(cur); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		base = u
	}
	return base.ResolveReference(ref), nil
}
