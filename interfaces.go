package webhelper

import (
	"context"
	"net/http"

	"github.com/rusq/webhelper/locator"
)

//go:generate mockgen -destination=interfaces_mock_test.go -package=webhelper -source interfaces.go

// Driver is the browser automation client the helper delegates to.
type Driver interface {
	// Open starts the browser session.
	Open(ctx context.Context) error
	// Close ends the browser session.
	Close() error

	Navigate(ctx context.Context, url string) error
	Info(ctx context.Context) (PageInfo, error)
	Source(ctx context.Context) (string, error)
	// FindAll returns all elements matching the CSS or XPath locator.  If
	// root is not nil, the search is restricted to its descendants.  It
	// must not wait for the elements to appear.
	FindAll(ctx context.Context, root Element, loc locator.Locator) ([]Element, error)
	// Eval evaluates the javascript function with the arguments and returns
	// the result, awaiting it if it's a promise.
	Eval(ctx context.Context, js string, args ...any) (any, error)
	Screenshot(ctx context.Context) ([]byte, error)

	Cookies(ctx context.Context) ([]*http.Cookie, error)
	SetCookies(ctx context.Context, cookies []*http.Cookie) error
	// DeleteCookies deletes the named cookies, or all cookies if no names
	// given.
	DeleteCookies(ctx context.Context, names ...string) error

	// PressKey presses the keys simultaneously, i.e. "Control", "a".
	PressKey(ctx context.Context, keys ...string) error
	// ResizeWindow resizes the window, zero width and height maximise it.
	ResizeWindow(ctx context.Context, width, height int) error
	DragAndDrop(ctx context.Context, src, dst Element) error
	CloseOtherTabs(ctx context.Context) error

	// Popup returns the text of the open javascript dialog.
	Popup(ctx context.Context) (text string, open bool, err error)
	// HandlePopup accepts or dismisses the open javascript dialog.
	HandlePopup(ctx context.Context, accept bool) error
}

// Element is the page element.
type Element interface {
	Click(ctx context.Context) error
	DoubleClick(ctx context.Context) error
	Hover(ctx context.Context) error
	// Fill replaces the value of the input with the value.
	Fill(ctx context.Context, value string) error
	// Append types the value at the end of the input.
	Append(ctx context.Context, value string) error
	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (value string, ok bool, err error)
	// Value returns the value property of the form control.
	Value(ctx context.Context) (string, error)
	Visible(ctx context.Context) (bool, error)
	Checked(ctx context.Context) (bool, error)
	// Select selects the options with given values in the <select>.
	Select(ctx context.Context, values []string) error
	SetFiles(ctx context.Context, paths []string) error
	ScrollIntoView(ctx context.Context) error
	Screenshot(ctx context.Context) ([]byte, error)
}

// PageInfo is the information about the current page.
type PageInfo struct {
	URL   string
	Title string
}
