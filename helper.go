// Package webhelper lets tests drive a web page with human readable actions,
// such as "click Sign in" or "fill field Email", translating them into calls
// on a browser automation client.
package webhelper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/rusq/webhelper/locator"
)

const (
	defWaitTimeout = 1 * time.Second
	defBrowser     = "chrome"
)

type Option func(*options)

type options struct {
	baseURL      string
	browser      string
	remote       string
	waitTimeout  time.Duration
	capabilities map[string][]string
	headless     bool
	windowW      int
	windowH      int
	userAgent    string
	cookies      []*http.Cookie
	restart      bool
	outputDir    string
	debug        bool
	lg           Logger

	driver Driver
}

func (o *options) apply(opts []Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// WithBrowser sets the browser to launch: chrome, chromium, brave or edge.
func WithBrowser(name string) Option {
	return func(o *options) {
		if name != "" {
			o.browser = name
		}
	}
}

// WithRemote makes the helper connect to the running browser at the DevTools
// endpoint, i.e. "127.0.0.1:9222" or "ws://host:9222/devtools/browser/id",
// instead of launching one.
func WithRemote(endpoint string) Option {
	return func(o *options) {
		o.remote = endpoint
	}
}

// WithWaitTimeout sets the default timeout of the wait functions.
func WithWaitTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.waitTimeout = d
		}
	}
}

// WithCapability sets the browser command line flag, i.e.
// WithCapability("lang", "en-GB").
func WithCapability(name string, values ...string) Option {
	return func(o *options) {
		if o.capabilities == nil {
			o.capabilities = make(map[string][]string)
		}
		o.capabilities[name] = values
	}
}

func WithHeadless(b bool) Option {
	return func(o *options) {
		o.headless = b
	}
}

// WithWindowSize sets the initial window size.
func WithWindowSize(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.windowW, o.windowH = width, height
		}
	}
}

// WithUserAgent sets the user agent for the session.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithCookie adds a cookie that is set when the session starts.
func WithCookie(cookie ...*http.Cookie) Option {
	return func(o *options) {
		o.cookies = append(o.cookies, cookie...)
	}
}

// WithRestart makes the helper start a new browser session for each test.
func WithRestart(b bool) Option {
	return func(o *options) {
		o.restart = b
	}
}

// WithOutputDir sets the directory for screenshots.
func WithOutputDir(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.outputDir = dir
		}
	}
}

// WithDebug enables debug logging and tracing of browser actions.
func WithDebug(b bool) Option {
	return func(o *options) {
		o.debug = b
	}
}

func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.lg = l
		}
	}
}

// WithDriver sets the browser automation client.  By default, the helper
// drives a Chromium family browser with go-rod.
func WithDriver(d Driver) Option {
	return func(o *options) {
		o.driver = d
	}
}

// Helper translates the human readable actions into calls on the Driver.
// It is not safe for concurrent use, tests are expected to run the steps one
// after another.
type Helper struct {
	baseURL *url.URL
	driver  Driver
	opts    options
	opened  bool

	// scope is the element the lookups are restricted to, see Within.
	scope Element
}

// New creates a new helper.  baseURL is the URL that relative paths given to
// AmOnPage are resolved against.
func New(baseURL string, opt ...Option) (*Helper, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	opts := options{
		browser:     defBrowser,
		headless:    true,
		waitTimeout: defWaitTimeout,
		outputDir:   "output",
		lg:          slog.Default(),
	}
	opts.apply(opt)
	opts.baseURL = u.String()

	h := &Helper{
		baseURL: u,
		opts:    opts,
		driver:  opts.driver,
	}
	if h.driver == nil {
		h.driver = newRodDriver(&h.opts)
	}
	return h, nil
}

func parseBaseURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadURL, s)
	}
	return u, nil
}

// Start starts the browser session.  It is a no-op if the session is already
// started.
func (h *Helper) Start(ctx context.Context) error {
	if h.opened {
		return nil
	}
	if err := h.driver.Open(ctx); err != nil {
		return err
	}
	h.opened = true
	return nil
}

// Close ends the browser session.
func (h *Helper) Close() error {
	if !h.opened {
		return nil
	}
	h.opened = false
	h.scope = nil
	return h.driver.Close()
}

// Driver returns the underlying browser automation client.
func (h *Helper) Driver() Driver {
	return h.driver
}

var (
	// ErrBadURL indicates that the base URL is not an absolute http(s) URL.
	ErrBadURL = errors.New("invalid base url")
	// ErrNoSession is returned when the action requires a running browser
	// session.
	ErrNoSession = errors.New("browser session is not started")
	// ErrNotSupported is returned when the driver does not support the
	// operation.
	ErrNotSupported = errors.New("operation not supported by the driver")
	// ErrNotFound is wrapped by ErrElementNotFound.
	ErrNotFound = errors.New("element not found")
)

// ErrElementNotFound is returned when no element matches the locator.
type ErrElementNotFound struct {
	Locator locator.Locator
	Target  locator.Target
}

func (e ErrElementNotFound) Error() string {
	return fmt.Sprintf("%s %s was not found by text|css|xpath", e.Target, e.Locator)
}

func (e ErrElementNotFound) Unwrap() error {
	return ErrNotFound
}

// ErrBrowser indicates the error with browser interaction.
type ErrBrowser struct {
	Err      error
	FailedTo string
}

func (e ErrBrowser) Error() string {
	return fmt.Sprintf("browser automation error: failed to %s: %v", e.FailedTo, e.Err)
}

func (e ErrBrowser) Unwrap() error {
	return e.Err
}

// Logger is the interface for the logger.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, keyvals ...interface{})
}
