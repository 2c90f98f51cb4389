package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rusq/webhelper"
	"github.com/rusq/webhelper/locator"
)

// scenario is the playground input file:
//
//	config:
//	  url: http://localhost:8000
//	tests:
//	  - title: user can log in
//	    steps:
//	      - amOnPage: /login
//	      - fillField: [Email, user@example.com]
//	      - fillField: [{css: "#password"}, secret]
//	      - click: Sign in
//	      - see: Welcome
type scenario struct {
	Config webhelper.Config `yaml:"config"`
	Tests  []testCase       `yaml:"tests"`
}

type testCase struct {
	Title string `yaml:"title"`
	Steps []step `yaml:"steps"`
}

// step is a single action with its arguments.
type step struct {
	Action string
	Args   []any
}

func (s *step) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		// action without arguments, i.e. "- acceptPopup"
		s.Action = n.Value
		return nil
	}
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return fmt.Errorf("line %d: step must be a single \"action: args\" pair", n.Line)
	}
	s.Action = n.Content[0].Value
	v := n.Content[1]
	switch v.Kind {
	case yaml.SequenceNode:
		return v.Decode(&s.Args)
	case yaml.ScalarNode:
		if v.Tag == "!!null" {
			return nil
		}
		fallthrough
	default:
		var a any
		if err := v.Decode(&a); err != nil {
			return err
		}
		s.Args = []any{a}
	}
	return nil
}

func loadScenario(r io.Reader) (*scenario, error) {
	var sc scenario
	if err := yaml.NewDecoder(r).Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if sc.Config.URL == "" {
		return nil, errors.New("scenario: config.url is not set")
	}
	for i, tc := range sc.Tests {
		for _, st := range tc.Steps {
			if _, ok := actions[st.Action]; !ok {
				return nil, fmt.Errorf("test %d %q: unknown action %q", i+1, tc.Title, st.Action)
			}
		}
	}
	return &sc, nil
}

// args wraps the step arguments with typed accessors.
type args []any

var errArgs = errors.New("invalid arguments")

func (a args) at(i int) (any, error) {
	if i >= len(a) {
		return nil, fmt.Errorf("%w: want at least %d", errArgs, i+1)
	}
	return a[i], nil
}

func (a args) str(i int) (string, error) {
	v, err := a.at(i)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case int, float64, bool:
		return fmt.Sprint(x), nil
	default:
		return "", fmt.Errorf("%w: argument %d is not a string", errArgs, i+1)
	}
}

func (a args) strs(from int) ([]string, error) {
	ret := make([]string, 0, len(a))
	for i := from; i < len(a); i++ {
		s, err := a.str(i)
		if err != nil {
			return nil, err
		}
		ret = append(ret, s)
	}
	return ret, nil
}

func (a args) int(i int) (int, error) {
	v, err := a.at(i)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case string:
		return strconv.Atoi(x)
	default:
		return 0, fmt.Errorf("%w: argument %d is not a number", errArgs, i+1)
	}
}

// duration returns the optional argument in seconds, or zero.
func (a args) duration(i int) (time.Duration, error) {
	if i >= len(a) {
		return 0, nil
	}
	switch x := a[i].(type) {
	case int:
		return time.Duration(x) * time.Second, nil
	case float64:
		return time.Duration(x * float64(time.Second)), nil
	case string:
		return time.ParseDuration(x)
	default:
		return 0, fmt.Errorf("%w: argument %d is not a duration", errArgs, i+1)
	}
}

// loc returns the locator: a string is classified by its shape, a single
// key map gives the strategy, i.e. {css: "#id"}, {xpath: "//a"}, {name: q}.
func (a args) loc(i int) (locator.Locator, error) {
	v, err := a.at(i)
	if err != nil {
		return locator.Locator{}, err
	}
	switch x := v.(type) {
	case string:
		return locator.Of(x), nil
	case map[string]any:
		if len(x) != 1 {
			return locator.Locator{}, fmt.Errorf("%w: locator must have exactly one strategy", errArgs)
		}
		for k, v := range x {
			return locator.Strict(k, fmt.Sprint(v))
		}
	}
	return locator.Locator{}, fmt.Errorf("%w: argument %d is not a locator", errArgs, i+1)
}

// optLoc returns the optional locator as a slice.
func (a args) optLoc(i int) ([]locator.Locator, error) {
	if i >= len(a) {
		return nil, nil
	}
	l, err := a.loc(i)
	if err != nil {
		return nil, err
	}
	return []locator.Locator{l}, nil
}

type actionFunc func(ctx context.Context, h *webhelper.Helper, a args) error

// locAction adapts the helper method that takes a single locator.
func locAction(fn func(*webhelper.Helper, context.Context, locator.Locator) error) actionFunc {
	return func(ctx context.Context, h *webhelper.Helper, a args) error {
		l, err := a.loc(0)
		if err != nil {
			return err
		}
		return fn(h, ctx, l)
	}
}

// strAction adapts the helper method that takes a single string.
func strAction(fn func(*webhelper.Helper, context.Context, string) error) actionFunc {
	return func(ctx context.Context, h *webhelper.Helper, a args) error {
		s, err := a.str(0)
		if err != nil {
			return err
		}
		return fn(h, ctx, s)
	}
}

// locStrAction adapts the helper method that takes a locator and a string.
func locStrAction(fn func(*webhelper.Helper, context.Context, locator.Locator, string) error) actionFunc {
	return func(ctx context.Context, h *webhelper.Helper, a args) error {
		l, err := a.loc(0)
		if err != nil {
			return err
		}
		s, err := a.str(1)
		if err != nil {
			return err
		}
		return fn(h, ctx, l, s)
	}
}

// seeAction adapts the text assertion with an optional context locator.
func seeAction(fn func(*webhelper.Helper, context.Context, string, ...locator.Locator) error) actionFunc {
	return func(ctx context.Context, h *webhelper.Helper, a args) error {
		s, err := a.str(0)
		if err != nil {
			return err
		}
		within, err := a.optLoc(1)
		if err != nil {
			return err
		}
		return fn(h, ctx, s, within...)
	}
}

// waitLocAction adapts the wait function on the locator with an optional
// timeout in seconds.
func waitLocAction(fn func(*webhelper.Helper, context.Context, locator.Locator, time.Duration) error) actionFunc {
	return func(ctx context.Context, h *webhelper.Helper, a args) error {
		l, err := a.loc(0)
		if err != nil {
			return err
		}
		d, err := a.duration(1)
		if err != nil {
			return err
		}
		return fn(h, ctx, l, d)
	}
}

func noArgs(fn func(*webhelper.Helper, context.Context) error) actionFunc {
	return func(ctx context.Context, h *webhelper.Helper, _ args) error {
		return fn(h, ctx)
	}
}

var actions map[string]actionFunc

func init() {
	actions = map[string]actionFunc{
		"amOnPage":       strAction((*webhelper.Helper).AmOnPage),
		"click":          locAction((*webhelper.Helper).Click),
		"doubleClick":    locAction((*webhelper.Helper).DoubleClick),
		"moveCursorTo":   locAction((*webhelper.Helper).MoveCursorTo),
		"fillField":      locStrAction((*webhelper.Helper).FillField),
		"appendField":    locStrAction((*webhelper.Helper).AppendField),
		"clearField":     locAction((*webhelper.Helper).ClearField),
		"attachFile":     locStrAction((*webhelper.Helper).AttachFile),
		"checkOption":    locAction((*webhelper.Helper).CheckOption),
		"uncheckOption":  locAction((*webhelper.Helper).UncheckOption),
		"scrollTo":       locAction((*webhelper.Helper).ScrollTo),
		"closeOtherTabs": noArgs((*webhelper.Helper).CloseOtherTabs),
		"acceptPopup":    noArgs((*webhelper.Helper).AcceptPopup),
		"cancelPopup":    noArgs((*webhelper.Helper).CancelPopup),
		"selectOption": func(ctx context.Context, h *webhelper.Helper, a args) error {
			l, err := a.loc(0)
			if err != nil {
				return err
			}
			opts, err := a.strs(1)
			if err != nil {
				return err
			}
			return h.SelectOption(ctx, l, opts...)
		},
		"pressKey": func(ctx context.Context, h *webhelper.Helper, a args) error {
			keys, err := a.strs(0)
			if err != nil {
				return err
			}
			return h.PressKey(ctx, keys...)
		},
		"resizeWindow": func(ctx context.Context, h *webhelper.Helper, a args) error {
			w, err := a.int(0)
			if err != nil {
				return err
			}
			hh, err := a.int(1)
			if err != nil {
				return err
			}
			return h.ResizeWindow(ctx, w, hh)
		},
		"dragAndDrop": func(ctx context.Context, h *webhelper.Helper, a args) error {
			src, err := a.loc(0)
			if err != nil {
				return err
			}
			dst, err := a.loc(1)
			if err != nil {
				return err
			}
			return h.DragAndDrop(ctx, src, dst)
		},
		"executeScript": func(ctx context.Context, h *webhelper.Helper, a args) error {
			js, err := a.str(0)
			if err != nil {
				return err
			}
			_, err = h.ExecuteScript(ctx, js, a[1:]...)
			return err
		},
		"clearCookie": func(ctx context.Context, h *webhelper.Helper, a args) error {
			names, err := a.strs(0)
			if err != nil {
				return err
			}
			return h.ClearCookie(ctx, names...)
		},
		"saveScreenshot": func(ctx context.Context, h *webhelper.Helper, a args) error {
			name, err := a.str(0)
			if err != nil {
				return err
			}
			_, err = h.SaveScreenshot(ctx, name)
			return err
		},

		"wait": func(ctx context.Context, h *webhelper.Helper, a args) error {
			d, err := a.duration(0)
			if err != nil {
				return err
			}
			return h.Wait(ctx, d)
		},
		"waitForElement": waitLocAction((*webhelper.Helper).WaitForElement),
		"waitForVisible": waitLocAction((*webhelper.Helper).WaitForVisible),
		"waitToHide":     waitLocAction((*webhelper.Helper).WaitToHide),
		"waitForText": func(ctx context.Context, h *webhelper.Helper, a args) error {
			text, err := a.str(0)
			if err != nil {
				return err
			}
			d, err := a.duration(1)
			if err != nil {
				return err
			}
			within, err := a.optLoc(2)
			if err != nil {
				return err
			}
			return h.WaitForText(ctx, text, d, within...)
		},
		"waitUntil": func(ctx context.Context, h *webhelper.Helper, a args) error {
			js, err := a.str(0)
			if err != nil {
				return err
			}
			d, err := a.duration(1)
			if err != nil {
				return err
			}
			return h.WaitUntil(ctx, js, d)
		},

		"see":                      seeAction((*webhelper.Helper).See),
		"dontSee":                  seeAction((*webhelper.Helper).DontSee),
		"seeInTitle":               strAction((*webhelper.Helper).SeeInTitle),
		"dontSeeInTitle":           strAction((*webhelper.Helper).DontSeeInTitle),
		"seeInField":               locStrAction((*webhelper.Helper).SeeInField),
		"dontSeeInField":           locStrAction((*webhelper.Helper).DontSeeInField),
		"seeCheckboxIsChecked":     locAction((*webhelper.Helper).SeeCheckboxIsChecked),
		"dontSeeCheckboxIsChecked": locAction((*webhelper.Helper).DontSeeCheckboxIsChecked),
		"seeElement":               locAction((*webhelper.Helper).SeeElement),
		"dontSeeElement":           locAction((*webhelper.Helper).DontSeeElement),
		"seeInSource":              strAction((*webhelper.Helper).SeeInSource),
		"dontSeeInSource":          strAction((*webhelper.Helper).DontSeeInSource),
		"seeInCurrentUrl":          strAction((*webhelper.Helper).SeeInCurrentURL),
		"dontSeeInCurrentUrl":      strAction((*webhelper.Helper).DontSeeInCurrentURL),
		"seeCurrentUrlEquals":      strAction((*webhelper.Helper).SeeCurrentURLEquals),
		"dontSeeCurrentUrlEquals":  strAction((*webhelper.Helper).DontSeeCurrentURLEquals),
		"seeCookie":                strAction((*webhelper.Helper).SeeCookie),
		"dontSeeCookie":            strAction((*webhelper.Helper).DontSeeCookie),
		"seeInPopup":               strAction((*webhelper.Helper).SeeInPopup),
		"seeNumberOfElements": func(ctx context.Context, h *webhelper.Helper, a args) error {
			l, err := a.loc(0)
			if err != nil {
				return err
			}
			n, err := a.int(1)
			if err != nil {
				return err
			}
			return h.SeeNumberOfElements(ctx, l, n)
		},

		"startRecordingTraffic": func(ctx context.Context, h *webhelper.Helper, a args) error {
			var pattern string
			if len(a) > 0 {
				var err error
				if pattern, err = a.str(0); err != nil {
					return err
				}
			}
			return h.StartRecordingTraffic(ctx, pattern)
		},
		"stopRecordingTraffic": noArgs((*webhelper.Helper).StopRecordingTraffic),
		"seeTraffic":           strAction((*webhelper.Helper).SeeTraffic),
		"seeResponseCodeIs": func(ctx context.Context, h *webhelper.Helper, a args) error {
			u, err := a.str(0)
			if err != nil {
				return err
			}
			code, err := a.int(1)
			if err != nil {
				return err
			}
			return h.SeeResponseCodeIs(ctx, u, code)
		},
		"grabQrCodeFrom": func(ctx context.Context, h *webhelper.Helper, a args) error {
			l, err := a.loc(0)
			if err != nil {
				return err
			}
			code, err := h.GrabQRCodeFrom(ctx, l)
			if err != nil {
				return err
			}
			fmt.Println("QR code:", code)
			return nil
		},
	}
}
