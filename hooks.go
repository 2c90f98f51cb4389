package webhelper

import (
	"context"
	"strings"

	"github.com/rusq/webhelper/recorder"
)

var _ recorder.Hooks = (*Helper)(nil)

// Before starts the browser session, unless it is already running.
func (h *Helper) Before(ctx context.Context, r *recorder.Run) error {
	h.scope = nil
	return h.Start(ctx)
}

// After ends the session if the helper restarts the browser for each test,
// otherwise it deletes the cookies set by the test, and puts back the ones the
// helper was configured with.
func (h *Helper) After(ctx context.Context, r *recorder.Run) error {
	h.scope = nil
	if !h.opened {
		return nil
	}
	if h.opts.restart {
		return h.Close()
	}
	h.stopTraffic()
	if err := h.driver.DeleteCookies(ctx); err != nil {
		return ErrBrowser{Err: err, FailedTo: "clear cookies"}
	}
	if len(h.opts.cookies) > 0 {
		if err := h.driver.SetCookies(ctx, h.opts.cookies); err != nil {
			return ErrBrowser{Err: err, FailedTo: "restore cookies"}
		}
	}
	return nil
}

// Failed saves the screenshot of the page named after the test title.
func (h *Helper) Failed(ctx context.Context, r *recorder.Run, err error) {
	if !h.opened {
		return
	}
	path, serr := h.SaveScreenshot(ctx, FailedScreenshotName(r.Title()))
	if serr != nil {
		h.opts.lg.Debug("failed to save the screenshot", "test", r.Title(), "err", serr)
		return
	}
	h.opts.lg.Debug("test failed, screenshot saved", "test", r.Title(), "path", path, "err", err)
}

// FailedScreenshotName returns the name of the screenshot file for the failed
// test.
func FailedScreenshotName(title string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", `\`, "_")
	return r.Replace(title) + ".failed.png"
}
