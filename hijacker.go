package webhelper

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Request is the recorded network request.
type Request struct {
	Method string
	URL    string
	// Form holds the parsed query and form values.
	Form url.Values
}

// hijacker records the requests matching the pattern, letting them through
// unchanged.
type hijacker struct {
	r  *rod.HijackRouter
	lg Logger

	mu   sync.Mutex
	reqs []Request
}

func newHijacker(ctx context.Context, page *rod.Page, pattern string, lg Logger) (*hijacker, error) {
	hPg := page.Context(ctx)
	hj := &hijacker{
		r:  hPg.HijackRequests(),
		lg: lg,
	}
	if err := hj.r.Add(pattern, "", hj.hook); err != nil {
		return nil, fmt.Errorf("error adding hijack route: %w", err)
	}
	go hj.r.Run()
	lg.Debug("hijacker created", "pattern", pattern)
	return hj, nil
}

func (hj *hijacker) hook(h *rod.Hijack) {
	defer h.ContinueRequest(&proto.FetchContinueRequest{})

	r := h.Request.Req()
	hj.lg.Debug("hijacked", "method", r.Method, "url", r.URL)

	form, err := parseForm(r)
	if err != nil {
		hj.lg.Debug("error parsing request form", "err", err)
	}
	hj.add(Request{Method: r.Method, URL: r.URL.String(), Form: form})
}

func (hj *hijacker) add(r Request) {
	hj.mu.Lock()
	defer hj.mu.Unlock()
	hj.reqs = append(hj.reqs, r)
}

// Requests returns the copy of recorded requests.
func (hj *hijacker) Requests() []Request {
	hj.mu.Lock()
	defer hj.mu.Unlock()
	ret := make([]Request, len(hj.reqs))
	copy(ret, hj.reqs)
	return ret
}

func (hj *hijacker) Stop() error {
	return hj.r.Stop()
}

const maxMem = 131072

// parseForm parses the query and the url-encoded or multipart body of the
// request.
func parseForm(r *http.Request) (url.Values, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mt == "multipart/form-data" {
		err = r.ParseMultipartForm(maxMem)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return r.URL.Query(), fmt.Errorf("error parsing request: %w", err)
	}
	return r.Form, nil
}
