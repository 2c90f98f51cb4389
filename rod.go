package webhelper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/trace"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/devices"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/rusq/webhelper/locator"
)

const debugDelay = 500 * time.Millisecond

// rodDriver is the Driver implementation that drives the browser over the
// DevTools protocol with go-rod.
type rodDriver struct {
	opts *options

	browser   *rod.Browser
	page      *rod.Page
	cleanupFn []func() error
	cancel    context.CancelCauseFunc

	mu     sync.Mutex
	dialog *proto.PageJavascriptDialogOpening
	hj     *hijacker
}

var (
	_ Driver          = (*rodDriver)(nil)
	_ TrafficRecorder = (*rodDriver)(nil)
)

func newRodDriver(opts *options) *rodDriver {
	return &rodDriver{opts: opts}
}

func (d *rodDriver) atClose(fn func() error) {
	d.cleanupFn = append(d.cleanupFn, fn)
}

// Open launches the browser, or connects to the remote one, and opens a
// blank page.
func (d *rodDriver) Open(ctx context.Context) error {
	ctx, task := trace.NewTask(ctx, "Open")
	defer task.End()

	// the session outlives the call, only cancelled by Close, or when the
	// tab is closed.
	sessCtx, cancel := context.WithCancelCause(context.WithoutCancel(ctx))
	d.cancel = cancel

	url, err := d.controlURL(sessCtx)
	if err != nil {
		d.Close()
		return err
	}

	var delay time.Duration
	if d.opts.debug {
		delay = debugDelay
	}
	browser := rod.New().
		Context(sessCtx).
		ControlURL(url).
		DefaultDevice(devices.Clear).
		Trace(d.opts.debug).
		SlowMotion(delay)
	if err := browser.Connect(); err != nil {
		d.Close()
		return ErrBrowser{Err: err, FailedTo: "connect"}
	}
	d.atClose(browser.Close)
	d.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		d.Close()
		return ErrBrowser{Err: err, FailedTo: "open page"}
	}
	if err := d.opts.setUserAgent(page); err != nil {
		d.Close()
		return ErrBrowser{Err: err, FailedTo: "set user agent"}
	}
	if len(d.opts.cookies) > 0 {
		if err := browser.SetCookies(cookieParams(d.opts.baseURL, d.opts.cookies)); err != nil {
			d.Close()
			return ErrBrowser{Err: err, FailedTo: "set cookies"}
		}
	}
	d.page = page

	d.watchDialogs(page)
	withTabGuard(sessCtx, cancel, browser, page.TargetID, d.opts.lg)
	d.opts.lg.Debug("browser session started", "browser", d.opts.browser, "remote", d.opts.remote)
	return nil
}

// controlURL returns the DevTools URL of the remote browser, or launches the
// local one.
func (d *rodDriver) controlURL(ctx context.Context) (string, error) {
	if d.opts.remote != "" {
		url, err := launcher.ResolveURL(d.opts.remote)
		if err != nil {
			return "", ErrBrowser{Err: err, FailedTo: "resolve remote " + d.opts.remote}
		}
		return url, nil
	}
	l, err := newLauncher(d.opts)
	if err != nil {
		return "", err
	}
	url, err := l.Context(ctx).Launch()
	if err != nil {
		return "", ErrBrowser{Err: err, FailedTo: "launch " + d.opts.browser}
	}
	d.atClose(toerrfn(l.Cleanup))
	return url, nil
}

// Close closes the browser (or the connection to the remote one), and
// releases the resources.
func (d *rodDriver) Close() error {
	d.mu.Lock()
	if d.hj != nil {
		_ = d.hj.Stop()
		d.hj = nil
	}
	d.dialog = nil
	d.mu.Unlock()

	var errs error
	for i := len(d.cleanupFn) - 1; i >= 0; i-- {
		if err := d.cleanupFn[i](); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	d.cleanupFn = nil
	if d.cancel != nil {
		d.cancel(errors.New("session closed"))
		d.cancel = nil
	}
	d.browser, d.page = nil, nil
	return errs
}

// withTabGuard cancels the session context when the target is destroyed.
func withTabGuard(ctx context.Context, cancel context.CancelCauseFunc, browser *rod.Browser, targetID proto.TargetTargetID, l Logger) {
	go browser.Context(ctx).EachEvent(func(e *proto.TargetTargetDestroyed) bool {
		if e.TargetID != targetID {
			// skipping unrelated target (user opened pages)
			return false
		}
		l.Debug("target destroyed", "target", e.TargetID)
		cancel(errors.New("target page is closed"))
		return true
	})()
}

// watchDialogs keeps track of the javascript dialog opened on the page.
func (d *rodDriver) watchDialogs(page *rod.Page) {
	go page.EachEvent(func(e *proto.PageJavascriptDialogOpening) {
		d.mu.Lock()
		d.dialog = e
		d.mu.Unlock()
	}, func(e *proto.PageJavascriptDialogClosed) {
		d.mu.Lock()
		d.dialog = nil
		d.mu.Unlock()
	})()
}

func (d *rodDriver) pg(ctx context.Context) (*rod.Page, error) {
	if d.page == nil {
		return nil, ErrNoSession
	}
	return d.page.Context(ctx), nil
}

func (d *rodDriver) Navigate(ctx context.Context, url string) error {
	page, err := d.pg(ctx)
	if err != nil {
		return err
	}
	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

func (d *rodDriver) Info(ctx context.Context) (PageInfo, error) {
	page, err := d.pg(ctx)
	if err != nil {
		return PageInfo{}, err
	}
	info, err := page.Info()
	if err != nil {
		return PageInfo{}, err
	}
	return PageInfo{URL: info.URL, Title: info.Title}, nil
}

func (d *rodDriver) Source(ctx context.Context) (string, error) {
	page, err := d.pg(ctx)
	if err != nil {
		return "", err
	}
	return page.HTML()
}

func (d *rodDriver) FindAll(ctx context.Context, root Element, loc locator.Locator) ([]Element, error) {
	page, err := d.pg(ctx)
	if err != nil {
		return nil, err
	}
	var els rod.Elements
	if root != nil {
		re, ok := root.(*rodElement)
		if !ok {
			return nil, fmt.Errorf("unsupported element type: %T", root)
		}
		el := re.el.Context(ctx)
		if loc.Kind == locator.XPath {
			els, err = el.ElementsX(loc.Value)
		} else {
			els, err = el.Elements(loc.Value)
		}
	} else {
		if loc.Kind == locator.XPath {
			els, err = page.ElementsX(loc.Value)
		} else {
			els, err = page.Elements(loc.Value)
		}
	}
	if err != nil {
		return nil, err
	}
	ret := make([]Element, 0, len(els))
	for _, el := range els {
		ret = append(ret, &rodElement{el: el, page: d.page})
	}
	return ret, nil
}

func (d *rodDriver) Eval(ctx context.Context, js string, args ...any) (any, error) {
	page, err := d.pg(ctx)
	if err != nil {
		return nil, err
	}
	res, err := page.Evaluate(rod.Eval(js, args...).ByPromise())
	if err != nil {
		return nil, err
	}
	return res.Value.Val(), nil
}

func (d *rodDriver) Screenshot(ctx context.Context) ([]byte, error) {
	page, err := d.pg(ctx)
	if err != nil {
		return nil, err
	}
	return page.Screenshot(true, &proto.PageCaptureScreenshot{Format: proto.PageCaptureScreenshotFormatPng})
}

func (d *rodDriver) Cookies(ctx context.Context) ([]*http.Cookie, error) {
	if d.browser == nil {
		return nil, ErrNoSession
	}
	return convertCookies(d.browser.Context(ctx).GetCookies())
}

func (d *rodDriver) SetCookies(ctx context.Context, cookies []*http.Cookie) error {
	info, err := d.Info(ctx)
	if err != nil {
		return err
	}
	return d.browser.Context(ctx).SetCookies(cookieParams(cookieURL(info.URL, d.opts.baseURL), cookies))
}

// cookieURL returns the page URL if it can carry cookies, the base URL
// otherwise (i.e. on about:blank before the first navigation).
func cookieURL(pageURL, baseURL string) string {
	if strings.HasPrefix(pageURL, "http://") || strings.HasPrefix(pageURL, "https://") {
		return pageURL
	}
	return baseURL
}

func (d *rodDriver) DeleteCookies(ctx context.Context, names ...string) error {
	if d.browser == nil {
		return ErrNoSession
	}
	if len(names) == 0 {
		return d.browser.Context(ctx).SetCookies(nil)
	}
	cookies, err := d.browser.Context(ctx).GetCookies()
	if err != nil {
		return err
	}
	page, err := d.pg(ctx)
	if err != nil {
		return err
	}
	for _, c := range cookies {
		if !slices.Contains(names, c.Name) {
			continue
		}
		if err := (proto.NetworkDeleteCookies{Name: c.Name, Domain: c.Domain, Path: c.Path}).Call(page); err != nil {
			return err
		}
	}
	return nil
}

func (d *rodDriver) PressKey(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	page, err := d.pg(ctx)
	if err != nil {
		return err
	}
	parsed := make([]input.Key, 0, len(keys))
	for _, k := range keys {
		key, err := parseKey(k)
		if err != nil {
			return err
		}
		parsed = append(parsed, key)
	}
	last := len(parsed) - 1
	return page.KeyActions().Press(parsed[:last]...).Type(parsed[last]).Do()
}

var namedKeys = map[string]input.Key{
	"enter":      input.Enter,
	"tab":        input.Tab,
	"escape":     input.Escape,
	"backspace":  input.Backspace,
	"delete":     input.Delete,
	"space":      input.Space,
	"arrowup":    input.ArrowUp,
	"arrowdown":  input.ArrowDown,
	"arrowleft":  input.ArrowLeft,
	"arrowright": input.ArrowRight,
	"home":       input.Home,
	"end":        input.End,
	"pageup":     input.PageUp,
	"pagedown":   input.PageDown,
	"shift":      input.ShiftLeft,
	"control":    input.ControlLeft,
	"ctrl":       input.ControlLeft,
	"alt":        input.AltLeft,
	"meta":       input.MetaLeft,
	"command":    input.MetaLeft,
}

// parseKey converts the key name, or a single character, to the key.
func parseKey(k string) (input.Key, error) {
	if key, ok := namedKeys[strings.ToLower(k)]; ok {
		return key, nil
	}
	if r := []rune(k); len(r) == 1 {
		return input.Key(r[0]), nil
	}
	return 0, fmt.Errorf("unknown key: %q", k)
}

func (d *rodDriver) ResizeWindow(ctx context.Context, width, height int) error {
	page, err := d.pg(ctx)
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return page.SetWindow(&proto.BrowserBounds{WindowState: proto.BrowserWindowStateMaximized})
	}
	if err := page.SetWindow(&proto.BrowserBounds{WindowState: proto.BrowserWindowStateNormal}); err != nil {
		return err
	}
	return page.SetWindow(&proto.BrowserBounds{Width: &width, Height: &height})
}

func (d *rodDriver) DragAndDrop(ctx context.Context, src, dst Element) error {
	page, err := d.pg(ctx)
	if err != nil {
		return err
	}
	if err := src.Hover(ctx); err != nil {
		return err
	}
	if err := page.Mouse.Down(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	if err := dst.Hover(ctx); err != nil {
		return err
	}
	return page.Mouse.Up(proto.InputMouseButtonLeft, 1)
}

func (d *rodDriver) CloseOtherTabs(ctx context.Context) error {
	if d.browser == nil {
		return ErrNoSession
	}
	pages, err := d.browser.Context(ctx).Pages()
	if err != nil {
		return err
	}
	for _, p := range pages {
		if p.TargetID == d.page.TargetID {
			continue
		}
		if err := p.Close(); err != nil {
			return err
		}
	}
	return nil
}

func (d *rodDriver) Popup(ctx context.Context) (string, bool, error) {
	if d.page == nil {
		return "", false, ErrNoSession
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dialog == nil {
		return "", false, nil
	}
	return d.dialog.Message, true, nil
}

func (d *rodDriver) HandlePopup(ctx context.Context, accept bool) error {
	page, err := d.pg(ctx)
	if err != nil {
		return err
	}
	if err := (proto.PageHandleJavaScriptDialog{Accept: accept}).Call(page); err != nil {
		return err
	}
	d.mu.Lock()
	d.dialog = nil
	d.mu.Unlock()
	return nil
}

func (d *rodDriver) RecordTraffic(ctx context.Context, pattern string) error {
	if d.page == nil {
		return ErrNoSession
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hj != nil {
		if err := d.hj.Stop(); err != nil {
			return err
		}
	}
	// the recording lasts until stopped, not until the step is done.
	hj, err := newHijacker(context.WithoutCancel(ctx), d.page, pattern, d.opts.lg)
	if err != nil {
		return err
	}
	d.hj = hj
	return nil
}

func (d *rodDriver) StopTraffic() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hj == nil {
		return nil
	}
	return d.hj.Stop()
}

func (d *rodDriver) Traffic() []Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hj == nil {
		return nil
	}
	return d.hj.Requests()
}

// rodElement is the Element backed by the rod element.
type rodElement struct {
	el   *rod.Element
	page *rod.Page
}

func (e *rodElement) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e *rodElement) DoubleClick(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 2)
}

func (e *rodElement) Hover(ctx context.Context) error {
	return e.el.Context(ctx).Hover()
}

func (e *rodElement) Fill(ctx context.Context, value string) error {
	el := e.el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return err
	}
	if value == "" {
		return el.Type(input.Backspace)
	}
	return el.Input(value)
}

func (e *rodElement) Append(ctx context.Context, value string) error {
	el := e.el.Context(ctx)
	if _, err := el.Eval(`() => { this.focus(); const n = (this.value || '').length; try { this.setSelectionRange(n, n) } catch (e) {} }`); err != nil {
		return err
	}
	return el.Input(value)
}

func (e *rodElement) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e *rodElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *rodElement) Value(ctx context.Context) (string, error) {
	v, err := e.el.Context(ctx).Property("value")
	if err != nil {
		return "", err
	}
	if v.Nil() {
		return "", nil
	}
	return v.String(), nil
}

func (e *rodElement) Visible(ctx context.Context) (bool, error) {
	return e.el.Context(ctx).Visible()
}

func (e *rodElement) Checked(ctx context.Context) (bool, error) {
	v, err := e.el.Context(ctx).Property("checked")
	if err != nil {
		return false, err
	}
	return v.Bool(), nil
}

func (e *rodElement) Select(ctx context.Context, values []string) error {
	sel := make([]string, 0, len(values))
	for _, v := range values {
		sel = append(sel, `option[value="`+locator.CSSEscape(v)+`"]`)
	}
	return e.el.Context(ctx).Select(sel, true, rod.SelectorTypeCSSSector)
}

func (e *rodElement) SetFiles(ctx context.Context, paths []string) error {
	return e.el.Context(ctx).SetFiles(paths)
}

func (e *rodElement) ScrollIntoView(ctx context.Context) error {
	return e.el.Context(ctx).ScrollIntoView()
}

func (e *rodElement) Screenshot(ctx context.Context) ([]byte, error) {
	return e.el.Context(ctx).Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}

func toerrfn(fn func()) func() error {
	return func() error {
		fn()
		return nil
	}
}
