package webhelper

import (
	"context"
	"errors"
	"fmt"
	"runtime/trace"
	"time"

	"github.com/go-rod/rod/lib/utils"

	"github.com/rusq/webhelper/locator"
)

const (
	pollInitInterval = 50 * time.Millisecond
	pollMaxInterval  = 500 * time.Millisecond
)

// ErrTimeout is returned by the wait functions when the condition is not
// met in time.
type ErrTimeout struct {
	Waited time.Duration
	For    string
	Err    error // last condition error, if any
}

func (e ErrTimeout) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for %s", e.Waited, e.For)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e ErrTimeout) Unwrap() error {
	return e.Err
}

// Wait pauses the execution for the duration.
func (h *Helper) Wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-t.C:
		return nil
	}
}

// waitFor polls cond until it returns true or the timeout expires.  A zero
// timeout means the default wait timeout.
func (h *Helper) waitFor(ctx context.Context, timeout time.Duration, what string, cond func(context.Context) (bool, error)) error {
	if !h.opened {
		return ErrNoSession
	}
	if timeout <= 0 {
		timeout = h.opts.waitTimeout
	}
	ctx, task := trace.NewTask(ctx, "waitFor")
	defer task.End()

	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	err := utils.Retry(wctx, utils.BackoffSleeper(pollInitInterval, pollMaxInterval, nil), func() (bool, error) {
		ok, err := cond(wctx)
		if err != nil {
			if !IsAssertion(err) && !errors.Is(err, ErrNotFound) && wctx.Err() == nil {
				return true, err
			}
			lastErr = err
			return false, nil
		}
		return ok, nil
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		// parent context is done, not a timeout.
		return context.Cause(ctx)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Waited: timeout, For: what, Err: lastErr}
	}
	return err
}

// WaitForElement waits for the element to appear in the DOM.
func (h *Helper) WaitForElement(ctx context.Context, loc locator.Locator, timeout time.Duration) error {
	return h.waitFor(ctx, timeout, loc.String()+" to be present", func(ctx context.Context) (bool, error) {
		els, err := h.find(ctx, locator.Any, loc)
		return len(els) > 0, err
	})
}

// WaitForVisible waits for the element to become visible.
func (h *Helper) WaitForVisible(ctx context.Context, loc locator.Locator, timeout time.Duration) error {
	return h.waitFor(ctx, timeout, loc.String()+" to be visible", func(ctx context.Context) (bool, error) {
		n, err := h.GrabNumberOfVisibleElements(ctx, loc)
		return n > 0, err
	})
}

// WaitToHide waits for the element to become invisible or to be removed.
func (h *Helper) WaitToHide(ctx context.Context, loc locator.Locator, timeout time.Duration) error {
	return h.waitFor(ctx, timeout, loc.String()+" to be hidden", func(ctx context.Context) (bool, error) {
		n, err := h.GrabNumberOfVisibleElements(ctx, loc)
		return n == 0, err
	})
}

// WaitForText waits for the text to appear on the page, or in the element
// given by within.
func (h *Helper) WaitForText(ctx context.Context, text string, timeout time.Duration, within ...locator.Locator) error {
	return h.waitFor(ctx, timeout, fmt.Sprintf("text %q to appear", text), func(ctx context.Context) (bool, error) {
		if err := h.see(ctx, text, within, false); err != nil {
			return false, err
		}
		return true, nil
	})
}

// WaitUntil waits for the javascript function to return a truthy value.
func (h *Helper) WaitUntil(ctx context.Context, js string, timeout time.Duration) error {
	return h.waitFor(ctx, timeout, "function to return true", func(ctx context.Context) (bool, error) {
		v, err := h.driver.Eval(ctx, js)
		if err != nil {
			return false, ErrBrowser{Err: err, FailedTo: "evaluate wait condition"}
		}
		return truthy(v), nil
	})
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}
