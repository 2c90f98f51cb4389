// Command playground runs the browser scenario from the YAML file and prints
// the steps of each test.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime/trace"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/rusq/webhelper"
	"github.com/rusq/webhelper/recorder"
)

var _ = godotenv.Load()

var (
	scenarioFile = flag.String("f", envOr("SCENARIO", "scenario.yaml"), "scenario `filename`")
	isDebug      = flag.Bool("d", os.Getenv("DEBUG") == "1", "enable debug")
	traceFile    = flag.String("trace", "", "trace `filename`")
	remote       = flag.String("remote", os.Getenv("BROWSER_REMOTE"), "connect to the browser at the DevTools `endpoint`")
	headless     = flag.Bool("headless", true, "run the browser in the headless mode")
)

var errFailed = errors.New("some tests have failed")

func main() {
	flag.Parse()
	if *isDebug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	if *traceFile != "" {
		f, err := os.Create(*traceFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := trace.Start(f); err != nil {
			return err
		}
		defer trace.Stop()
	}

	f, err := os.Open(*scenarioFile)
	if err != nil {
		return err
	}
	sc, err := loadScenario(f)
	f.Close()
	if err != nil {
		return err
	}

	if b, err := webhelper.ListBrowsers(); err != nil {
		slog.Warn("no browsers found on the system, using built-in", "err", err)
	} else if *isDebug {
		fmt.Println("Available browsers on the system:")
		for _, br := range b {
			fmt.Printf("%s:\t%s\n", br.Name, br.Path)
		}
	}

	h, err := initHelper(sc.Config)
	if err != nil {
		return err
	}
	defer h.Close()

	var failed int
	for _, tc := range sc.Tests {
		test, err := runTest(ctx, h, tc)
		if err != nil {
			return err
		}
		printTest(os.Stdout, test)
		if test.Failed {
			failed++
		}
	}
	printSummary(os.Stdout, len(sc.Tests), failed)
	if failed > 0 {
		return errFailed
	}
	return nil
}

func initHelper(cfg webhelper.Config) (*webhelper.Helper, error) {
	opts := append(cfg.Options(),
		webhelper.WithDebug(*isDebug),
		webhelper.WithLogger(slog.Default()),
	)
	// command line takes precedence over the file.
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "headless" {
			opts = append(opts, webhelper.WithHeadless(*headless))
		}
	})
	if *remote != "" {
		opts = append(opts, webhelper.WithRemote(*remote))
	}
	return webhelper.New(cfg.URL, opts...)
}

// runTest runs the steps of the test until the first failure.  The returned
// error is not nil only if the test could not be started or finished.
func runTest(ctx context.Context, h *webhelper.Helper, tc testCase) (*recorder.Test, error) {
	ctx, task := trace.NewTask(ctx, "runTest")
	defer task.End()

	r := recorder.New(tc.Title, h)
	if err := r.Start(ctx); err != nil {
		return nil, fmt.Errorf("test %q: %w", tc.Title, err)
	}
	for _, st := range tc.Steps {
		fn := actions[st.Action]
		err := r.Do(ctx, st.Action, func(ctx context.Context) error {
			return fn(ctx, h, st.Args)
		}, st.Args...)
		if err != nil {
			break
		}
		if ctx.Err() != nil {
			r.Fail(ctx, context.Cause(ctx))
			break
		}
	}
	return r.End(ctx)
}

func printTest(w io.Writer, t *recorder.Test) {
	if t.Failed {
		fmt.Fprintf(w, "%s\n", color.RedString("✗ %s (%s)", t.Title, t.Duration.Round(time.Millisecond)))
	} else {
		fmt.Fprintf(w, "%s\n", color.GreenString("✓ %s (%s)", t.Title, t.Duration.Round(time.Millisecond)))
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range t.Steps {
		fmt.Fprintf(tw, "  %s\t%s\n", s, statusString(s.Status))
	}
	tw.Flush()
	if t.Err != nil {
		fmt.Fprintf(w, "  %s\n", color.YellowString("Error: %v", t.Err))
	}
}

func statusString(s recorder.Status) string {
	switch s {
	case recorder.StatusPassed:
		return color.GreenString("%s", s)
	case recorder.StatusFailed:
		return color.RedString("%s", s)
	default:
		return color.YellowString("%s", s)
	}
}

func printSummary(w io.Writer, total, failed int) {
	if failed == 0 {
		fmt.Fprintf(w, "\n%s\n", color.GreenString("✓ %d tests passed", total))
		return
	}
	fmt.Fprintf(w, "\n%s\n", color.RedString("✗ %d of %d tests failed", failed, total))
}

func envOr(env, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}
