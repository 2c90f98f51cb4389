package webhelper

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
)

// newLauncher creates a new browser launcher for the options.
func newLauncher(o *options) (*launcher.Launcher, error) {
	l := launcher.New().
		Headless(o.headless).
		Leakless(isLeaklessEnabled).
		Devtools(false)
	if binpath, ok := lookPath(o.browser); ok {
		l = l.Bin(binpath)
	} else if !isBundled(o.browser) {
		return nil, fmt.Errorf("%w: %s", ErrBrowserNotFound, o.browser)
	}
	if o.windowW > 0 && o.windowH > 0 {
		l = l.Set("window-size", fmt.Sprintf("%d,%d", o.windowW, o.windowH))
	}
	for name, values := range o.capabilities {
		l = l.Set(flags.Flag(strings.TrimLeft(name, "-")), values...)
	}
	return l, nil
}

// leakless helper is flagged by antiviruses on windows.
var isLeaklessEnabled = runtime.GOOS != "windows"

// ErrBrowserNotFound is returned when the requested browser is not
// installed.
var ErrBrowserNotFound = errors.New("browser not found")

// isBundled returns true if the launcher may download and use its own
// Chromium, when no local browser is found.
func isBundled(name string) bool {
	return name == "chrome" || name == "chromium"
}

// browserPaths lists the browser executables by browser name and OS.
//
// (c) MIT license: Copyright 2019 Yad Smood
var browserPaths = map[string]map[string][]string{
	"chrome": {
		"darwin": {
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Google Chrome Canary.app/Contents/MacOS/Google Chrome Canary",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/google-chrome",
		},
		"linux": {
			"chrome",
			"google-chrome",
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
		},
		"openbsd": {"chrome"},
		"windows": append([]string{"chrome"}, expandWindowsExePaths(
			`Google\Chrome\Application\chrome.exe`,
		)...),
	},
	"chromium": {
		"darwin": {
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
		},
		"linux": {
			"chromium",
			"chromium-browser",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
			"/data/data/com.termux/files/usr/bin/chromium-browser",
		},
		"openbsd": {"chromium"},
		"windows": expandWindowsExePaths(
			`Chromium\Application\chrome.exe`,
		),
	},
	"brave": {
		"darwin": {"/Applications/Brave Browser.app/Contents/MacOS/Brave Browser"},
		"linux":  {"brave-browser", "/usr/bin/brave-browser"},
		"windows": expandWindowsExePaths(
			`BraveSoftware\Brave-Browser\Application\brave.exe`,
		),
	},
	"edge": {
		"darwin": {"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge"},
		"linux":  {"microsoft-edge", "/usr/bin/microsoft-edge"},
		"windows": append([]string{"edge"}, expandWindowsExePaths(
			`Microsoft\Edge\Application\msedge.exe`,
		)...),
	},
}

// lookPath returns the path to the executable of the named browser.
func lookPath(name string) (found string, has bool) {
	for _, path := range browserPaths[strings.ToLower(name)][runtime.GOOS] {
		var err error
		found, err = exec.LookPath(path)
		has = err == nil
		if has {
			break
		}
	}
	if !has {
		found = ""
	}
	return
}

// LocalBrowser is the browser installed on the system.
type LocalBrowser struct {
	Name string
	Path string
}

// ListBrowsers returns the supported browsers installed on the system.
func ListBrowsers() ([]LocalBrowser, error) {
	names := make([]string, 0, len(browserPaths))
	for name := range browserPaths {
		names = append(names, name)
	}
	slices.Sort(names)
	var ret []LocalBrowser
	for _, name := range names {
		if path, ok := lookPath(name); ok {
			ret = append(ret, LocalBrowser{Name: name, Path: path})
		}
	}
	if len(ret) == 0 {
		return nil, ErrBrowserNotFound
	}
	return ret, nil
}

// expandWindowsExePaths is a verbatim copy of the function from rod's
// browser.go.
//
// (c) MIT license: Copyright 2019 Yad Smood
func expandWindowsExePaths(list ...string) []string {
	newList := []string{}
	for _, p := range list {
		newList = append(
			newList,
			filepath.Join(os.Getenv("ProgramFiles"), p),
			filepath.Join(os.Getenv("ProgramFiles(x86)"), p),
			filepath.Join(os.Getenv("LocalAppData"), p),
		)
	}

	return newList
}

// cookieParams converts the cookies to the protocol cookie parameters.
// Cookies without the domain are set for the url.
func cookieParams(url string, cookies []*http.Cookie) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}
		if c.Domain == "" {
			p.URL = url
		}
		if !c.Expires.IsZero() {
			p.Expires = proto.TimeSinceEpoch(c.Expires.Unix())
		}
		if ss, ok := protoSameSite[c.SameSite]; ok {
			p.SameSite = ss
		}
		params = append(params, p)
	}
	return params
}

// convertCookies converts the browser cookies to a slice of http.Cookie.
func convertCookies(cook []*proto.NetworkCookie, err error) ([]*http.Cookie, error) {
	if err != nil {
		return nil, fmt.Errorf("browser error: %w", err)
	}
	var cookies = make([]*http.Cookie, 0, len(cook))
	for _, c := range cook {
		sameSite, ok := sameSiteMap[c.SameSite]
		if !ok {
			sameSite = http.SameSiteDefaultMode
		}
		cookies = append(cookies, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires.Time(),
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
			SameSite: sameSite,
		})
	}
	return cookies, nil
}

var sameSiteMap = map[proto.NetworkCookieSameSite]http.SameSite{
	proto.NetworkCookieSameSiteNone:   http.SameSiteNoneMode,
	proto.NetworkCookieSameSiteLax:    http.SameSiteLaxMode,
	proto.NetworkCookieSameSiteStrict: http.SameSiteStrictMode,
}

var protoSameSite = map[http.SameSite]proto.NetworkCookieSameSite{
	http.SameSiteNoneMode:   proto.NetworkCookieSameSiteNone,
	http.SameSiteLaxMode:    proto.NetworkCookieSameSiteLax,
	http.SameSiteStrictMode: proto.NetworkCookieSameSiteStrict,
}
