package webhelper

import (
	"context"
	"strings"
)

// TrafficRecorder is implemented by the drivers that can record the
// network requests made by the page.
type TrafficRecorder interface {
	// RecordTraffic starts recording requests with URLs matching the glob
	// pattern, i.e. "*/api/*".
	RecordTraffic(ctx context.Context, pattern string) error
	StopTraffic() error
	// Traffic returns the requests recorded so far.
	Traffic() []Request
}

func (h *Helper) trafficRecorder() (TrafficRecorder, error) {
	if !h.opened {
		return nil, ErrNoSession
	}
	tr, ok := h.driver.(TrafficRecorder)
	if !ok {
		return nil, ErrNotSupported
	}
	return tr, nil
}

// StartRecordingTraffic starts recording the requests with URLs matching the
// glob pattern.  Empty pattern records all requests.
func (h *Helper) StartRecordingTraffic(ctx context.Context, pattern string) error {
	tr, err := h.trafficRecorder()
	if err != nil {
		return err
	}
	if pattern == "" {
		pattern = "*"
	}
	if err := tr.RecordTraffic(ctx, pattern); err != nil {
		return ErrBrowser{Err: err, FailedTo: "start recording traffic"}
	}
	return nil
}

// StopRecordingTraffic stops recording, the recorded requests are kept until
// the recording is started again.
func (h *Helper) StopRecordingTraffic(ctx context.Context) error {
	tr, err := h.trafficRecorder()
	if err != nil {
		return err
	}
	if err := tr.StopTraffic(); err != nil {
		return ErrBrowser{Err: err, FailedTo: "stop recording traffic"}
	}
	return nil
}

func (h *Helper) stopTraffic() {
	if tr, ok := h.driver.(TrafficRecorder); ok {
		if err := tr.StopTraffic(); err != nil {
			h.opts.lg.Debug("stop traffic", "err", err)
		}
	}
}

// GrabRecordedTraffic returns the recorded requests.
func (h *Helper) GrabRecordedTraffic(ctx context.Context) ([]Request, error) {
	tr, err := h.trafficRecorder()
	if err != nil {
		return nil, err
	}
	return tr.Traffic(), nil
}

// SeeTraffic checks that a request with the URL containing urlPart was
// recorded.
func (h *Helper) SeeTraffic(ctx context.Context, urlPart string) error {
	reqs, err := h.GrabRecordedTraffic(ctx)
	if err != nil {
		return err
	}
	urls := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if strings.Contains(r.URL, urlPart) {
			return nil
		}
		urls = append(urls, r.URL)
	}
	return &AssertionError{Subject: "recorded traffic", Verb: "include", Needle: urlPart, Haystack: strings.Join(urls, ", ")}
}
