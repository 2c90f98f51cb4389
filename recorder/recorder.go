// Package recorder records the steps executed by a test so that they can be
// reported, and calls the lifecycle hooks of the helpers taking part in the
// test.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Status is the step status.
type Status string

const (
	StatusPending Status = "pending"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
)

// Step is a single recorded test action.
type Step struct {
	Name   string
	Args   []any
	Status Status
}

// String returns the human readable form of the step, i.e.
//
//	I fill field "Email", "joe@example.com"
func (s *Step) String() string {
	var buf strings.Builder
	buf.WriteString("I ")
	buf.WriteString(humanize(s.Name))
	for i, a := range s.Args {
		if i == 0 {
			buf.WriteByte(' ')
		} else {
			buf.WriteString(", ")
		}
		buf.WriteString(formatArg(a))
	}
	return buf.String()
}

// humanize converts "fillField" or "SeeInCurrentURL" into "fill field" and
// "see in current url".
func humanize(name string) string {
	rs := []rune(name)
	var buf strings.Builder
	for i, r := range rs {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(rs[i-1])
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if prevLower || (unicode.IsUpper(rs[i-1]) && nextLower) {
				buf.WriteByte(' ')
			}
		}
		buf.WriteRune(unicode.ToLower(r))
	}
	return buf.String()
}

func formatArg(a any) string {
	switch v := a.(type) {
	case string:
		return strconv.Quote(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Test is the test record with the steps attached once the test ends.
type Test struct {
	Title    string
	Steps    []*Step
	Failed   bool
	Err      error
	Duration time.Duration
}

// Hooks are called by the Run at the test lifecycle points.
type Hooks interface {
	// Before is called when the test starts.
	Before(ctx context.Context, r *Run) error
	// After is called when the test ends, after the steps are attached to
	// the test record.
	After(ctx context.Context, r *Run) error
	// Failed is called when the test fails.
	Failed(ctx context.Context, r *Run, err error)
}

// Run is the context of a single test run: the running test and the steps
// accumulated so far.  A Run is not safe for concurrent use.
type Run struct {
	test    *Test
	steps   []*Step
	hooks   []Hooks
	started time.Time
}

// ErrNotStarted is returned when a step is recorded outside of the test.
var ErrNotStarted = errors.New("test run is not started")

// New creates a new run for the test with the given title.
func New(title string, hooks ...Hooks) *Run {
	return &Run{
		test:  &Test{Title: title},
		hooks: hooks,
	}
}

// Test returns the test record.
func (r *Run) Test() *Test {
	return r.test
}

// Title returns the test title.
func (r *Run) Title() string {
	return r.test.Title
}

// Steps returns the steps recorded so far.
func (r *Run) Steps() []*Step {
	return r.steps
}

// Start resets the step list and calls the Before hooks.
func (r *Run) Start(ctx context.Context) error {
	r.steps = make([]*Step, 0, 8)
	r.test.Steps = nil
	r.test.Failed = false
	r.test.Err = nil
	r.started = time.Now()
	var errs error
	for _, h := range r.hooks {
		if err := h.Before(ctx, r); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// Step appends a new pending step.
func (r *Run) Step(name string, args ...any) *Step {
	s := &Step{Name: name, Args: args, Status: StatusPending}
	r.steps = append(r.steps, s)
	return s
}

// Do records the step and runs fn.  If fn fails, the test is marked as
// failed and the error is returned.
func (r *Run) Do(ctx context.Context, name string, fn func(context.Context) error, args ...any) error {
	if r.steps == nil {
		return ErrNotStarted
	}
	s := r.Step(name, args...)
	if err := fn(ctx); err != nil {
		r.Fail(ctx, err)
		return err
	}
	s.Status = StatusPassed
	return nil
}

// Fail marks the last step as failed and calls the Failed hooks.
func (r *Run) Fail(ctx context.Context, err error) {
	if n := len(r.steps); n > 0 {
		r.steps[n-1].Status = StatusFailed
	}
	r.test.Failed = true
	r.test.Err = err
	for _, h := range r.hooks {
		h.Failed(ctx, r, err)
	}
}

// End attaches the steps to the test record, clears the run and calls the
// After hooks.  Steps still pending are considered passed.
func (r *Run) End(ctx context.Context) (*Test, error) {
	for _, s := range r.steps {
		if s.Status == StatusPending {
			s.Status = StatusPassed
		}
	}
	r.test.Steps = r.steps
	r.test.Duration = time.Since(r.started)
	r.steps = nil

	var errs error
	for _, h := range r.hooks {
		if err := h.After(ctx, r); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return r.test, errs
}
