package recorder

import (
	"context"
	"errors"
	"testing"
)

var errTestFailed = errors.New("test failed")

// ForTest starts a run bound to tb.  The run is finished when the test
// completes, and, if the test has failed, the Failed hooks are called
// before the After hooks.
func ForTest(tb testing.TB, hooks ...Hooks) *Run {
	tb.Helper()
	r := New(tb.Name(), hooks...)
	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		tb.Fatalf("starting test run: %v", err)
	}
	tb.Cleanup(func() {
		if tb.Failed() && !r.test.Failed {
			r.Fail(ctx, errTestFailed)
		}
		if _, err := r.End(ctx); err != nil {
			tb.Errorf("finishing test run: %v", err)
		}
	})
	return r
}
