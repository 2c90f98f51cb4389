package webhelper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rusq/webhelper/locator"
)

// AmOnPage opens the page.  Relative URLs are resolved against the base URL.
func (h *Helper) AmOnPage(ctx context.Context, page string) error {
	if !h.opened {
		return ErrNoSession
	}
	ref, err := url.Parse(page)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", page, err)
	}
	target := h.baseURL.ResolveReference(ref).String()
	h.opts.lg.Debug("navigating", "url", target)
	if err := h.driver.Navigate(ctx, target); err != nil {
		return ErrBrowser{Err: err, FailedTo: "open " + target}
	}
	return nil
}

// Click clicks the link, button or the element, found by the label, CSS or
// XPath.
func (h *Helper) Click(ctx context.Context, loc locator.Locator) error {
	el, err := h.findOne(ctx, locator.Clickable, loc)
	if err != nil {
		return err
	}
	if err := el.Click(ctx); err != nil {
		return ErrBrowser{Err: err, FailedTo: "click " + loc.String()}
	}
	return nil
}

func (h *Helper) DoubleClick(ctx context.Context, loc locator.Locator) error {
	el, err := h.findOne(ctx, locator.Clickable, loc)
	if err != nil {
		return err
	}
	if err := el.DoubleClick(ctx); err != nil {
		return ErrBrowser{Err: err, FailedTo: "double click " + loc.String()}
	}
	return nil
}

// MoveCursorTo moves the mouse over the element.
func (h *Helper) MoveCursorTo(ctx context.Context, loc locator.Locator) error {
	el, err := h.findOne(ctx, locator.Any, loc)
	if err != nil {
		return err
	}
	if err := el.Hover(ctx); err != nil {
		return ErrBrowser{Err: err, FailedTo: "move cursor to " + loc.String()}
	}
	return nil
}

// FillField replaces the value of the field, found by the label, name,
// placeholder, CSS or XPath.
func (h *Helper) FillField(ctx context.Context, field locator.Locator, value string) error {
	el, err := h.findOne(ctx, locator.Field, field)
	if err != nil {
		return err
	}
	if err := el.Fill(ctx, value); err != nil {
		return ErrBrowser{Err: err, FailedTo: "fill field " + field.String()}
	}
	return nil
}

// AppendField appends the value to the field.
func (h *Helper) AppendField(ctx context.Context, field locator.Locator, value string) error {
	el, err := h.findOne(ctx, locator.Field, field)
	if err != nil {
		return err
	}
	if err := el.Append(ctx, value); err != nil {
		return ErrBrowser{Err: err, FailedTo: "append to field " + field.String()}
	}
	return nil
}

// ClearField clears the field.
func (h *Helper) ClearField(ctx context.Context, field locator.Locator) error {
	return h.FillField(ctx, field, "")
}

// SelectOption selects the options, given by their text or value, in the
// select box.
func (h *Helper) SelectOption(ctx context.Context, sel locator.Locator, option ...string) error {
	el, err := h.findOne(ctx, locator.Field, sel)
	if err != nil {
		return err
	}
	values := make([]string, 0, len(option))
	for _, o := range option {
		opts, err := h.driver.FindAll(ctx, el, locator.Option(o))
		if err != nil {
			return ErrBrowser{Err: err, FailedTo: "find option " + o}
		}
		if len(opts) == 0 {
			return ErrElementNotFound{Locator: locator.Label(o), Target: locator.Any}
		}
		v, ok, err := opts[0].Attribute(ctx, "value")
		if err != nil {
			return ErrBrowser{Err: err, FailedTo: "get option value"}
		}
		if !ok {
			// option without value attribute has the value of its text
			if v, err = opts[0].Text(ctx); err != nil {
				return ErrBrowser{Err: err, FailedTo: "get option text"}
			}
			v = strings.TrimSpace(v)
		}
		values = append(values, v)
	}
	if err := el.Select(ctx, values); err != nil {
		return ErrBrowser{Err: err, FailedTo: "select option in " + sel.String()}
	}
	return nil
}

// AttachFile attaches the file to the file input.  Relative paths are
// resolved against the current directory.
func (h *Helper) AttachFile(ctx context.Context, field locator.Locator, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("file %s: %w", path, err)
	}
	el, err := h.findOne(ctx, locator.Field, field)
	if err != nil {
		return err
	}
	if err := el.SetFiles(ctx, []string{abs}); err != nil {
		return ErrBrowser{Err: err, FailedTo: "attach file to " + field.String()}
	}
	return nil
}

// CheckOption checks the checkbox or the radio button, unless it is already
// checked.
func (h *Helper) CheckOption(ctx context.Context, field locator.Locator) error {
	return h.setChecked(ctx, field, true)
}

// UncheckOption unchecks the checkbox, unless it is already unchecked.
func (h *Helper) UncheckOption(ctx context.Context, field locator.Locator) error {
	return h.setChecked(ctx, field, false)
}

func (h *Helper) setChecked(ctx context.Context, field locator.Locator, want bool) error {
	el, err := h.findOne(ctx, locator.Checkable, field)
	if err != nil {
		return err
	}
	checked, err := el.Checked(ctx)
	if err != nil {
		return ErrBrowser{Err: err, FailedTo: "get checkbox state"}
	}
	if checked == want {
		return nil
	}
	if err := el.Click(ctx); err != nil {
		return ErrBrowser{Err: err, FailedTo: "click " + field.String()}
	}
	return nil
}

// PressKey presses the key, or a key combination, i.e. PressKey(ctx,
// "Control", "a").
func (h *Helper) PressKey(ctx context.Context, keys ...string) error {
	if !h.opened {
		return ErrNoSession
	}
	if len(keys) == 0 {
		return nil
	}
	if err := h.driver.PressKey(ctx, keys...); err != nil {
		return ErrBrowser{Err: err, FailedTo: "press " + strings.Join(keys, "+")}
	}
	return nil
}

// ResizeWindow resizes the window.  Zero width and height maximise it.
func (h *Helper) ResizeWindow(ctx context.Context, width, height int) error {
	if !h.opened {
		return ErrNoSession
	}
	if err := h.driver.ResizeWindow(ctx, width, height); err != nil {
		return ErrBrowser{Err: err, FailedTo: "resize window"}
	}
	return nil
}

// DragAndDrop drags the src element onto the dst element.
func (h *Helper) DragAndDrop(ctx context.Context, src, dst locator.Locator) error {
	srcEl, err := h.findOne(ctx, locator.Any, src)
	if err != nil {
		return err
	}
	dstEl, err := h.findOne(ctx, locator.Any, dst)
	if err != nil {
		return err
	}
	if err := h.driver.DragAndDrop(ctx, srcEl, dstEl); err != nil {
		return ErrBrowser{Err: err, FailedTo: "drag and drop"}
	}
	return nil
}

// ScrollTo scrolls the element into view.
func (h *Helper) ScrollTo(ctx context.Context, loc locator.Locator) error {
	el, err := h.findOne(ctx, locator.Any, loc)
	if err != nil {
		return err
	}
	if err := el.ScrollIntoView(ctx); err != nil {
		return ErrBrowser{Err: err, FailedTo: "scroll to " + loc.String()}
	}
	return nil
}

// CloseOtherTabs closes all tabs except the current one.
func (h *Helper) CloseOtherTabs(ctx context.Context) error {
	if !h.opened {
		return ErrNoSession
	}
	if err := h.driver.CloseOtherTabs(ctx); err != nil {
		return ErrBrowser{Err: err, FailedTo: "close other tabs"}
	}
	return nil
}

// ExecuteScript runs the javascript function in the page and returns the
// result.
//
//	h.ExecuteScript(ctx, `(a, b) => a + b`, 1, 2)
func (h *Helper) ExecuteScript(ctx context.Context, js string, args ...any) (any, error) {
	if !h.opened {
		return nil, ErrNoSession
	}
	v, err := h.driver.Eval(ctx, js, args...)
	if err != nil {
		return nil, ErrBrowser{Err: err, FailedTo: "execute script"}
	}
	return v, nil
}

// ExecuteAsyncScript runs the javascript function that receives a callback
// as its last argument, and returns the value the callback was called with.
//
//	h.ExecuteAsyncScript(ctx, `(ms, done) => setTimeout(() => done("ok"), ms)`, 100)
func (h *Helper) ExecuteAsyncScript(ctx context.Context, js string, args ...any) (any, error) {
	wrapped := `(fn, ...args) => new Promise((resolve) => { (new Function("return " + fn))()(...args, resolve); })`
	return h.ExecuteScript(ctx, wrapped, append([]any{js}, args...)...)
}

// SetCookie sets the cookies.
func (h *Helper) SetCookie(ctx context.Context, cookie ...*http.Cookie) error {
	if !h.opened {
		return ErrNoSession
	}
	if err := h.driver.SetCookies(ctx, cookie); err != nil {
		return ErrBrowser{Err: err, FailedTo: "set cookies"}
	}
	return nil
}

// ClearCookie deletes the named cookies, or all cookies if no names given.
func (h *Helper) ClearCookie(ctx context.Context, name ...string) error {
	if !h.opened {
		return ErrNoSession
	}
	if err := h.driver.DeleteCookies(ctx, name...); err != nil {
		return ErrBrowser{Err: err, FailedTo: "delete cookies"}
	}
	return nil
}

// AcceptPopup accepts the open javascript dialog.
func (h *Helper) AcceptPopup(ctx context.Context) error {
	return h.handlePopup(ctx, true)
}

// CancelPopup dismisses the open javascript dialog.
func (h *Helper) CancelPopup(ctx context.Context) error {
	return h.handlePopup(ctx, false)
}

func (h *Helper) handlePopup(ctx context.Context, accept bool) error {
	if !h.opened {
		return ErrNoSession
	}
	if err := h.driver.HandlePopup(ctx, accept); err != nil {
		return ErrBrowser{Err: err, FailedTo: "handle popup"}
	}
	return nil
}

// SaveScreenshot saves the screenshot of the page into the file in the
// output directory and returns the path to it.
func (h *Helper) SaveScreenshot(ctx context.Context, name string) (string, error) {
	if !h.opened {
		return "", ErrNoSession
	}
	data, err := h.driver.Screenshot(ctx)
	if err != nil {
		return "", ErrBrowser{Err: err, FailedTo: "take screenshot"}
	}
	if err := os.MkdirAll(h.opts.outputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(h.opts.outputDir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	h.opts.lg.Debug("screenshot saved", "path", path)
	return path, nil
}
