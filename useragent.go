package webhelper

import (
	"runtime"

	"github.com/go-rod/rod/lib/proto"
)

//go:generate mockgen -destination=useragent_mock_test.go -package=webhelper -source useragent.go

const (
	defWebkitVer = "537.36"
	defChromeVer = "129.0.0.0"
)

// UserAgent returns the Chrome user agent string for the versions and the
// OS platform.  Empty versions are replaced with defaults.
func UserAgent(webkitVer, chromeVer, os string) string {
	if webkitVer == "" {
		webkitVer = defWebkitVer
	}
	if chromeVer == "" {
		chromeVer = defChromeVer
	}
	if os == "" {
		os = userAgentOS(runtime.GOOS)
	}
	return "Mozilla/5.0 (" + os + ") AppleWebKit/" + webkitVer + " (KHTML, like Gecko) Chrome/" + chromeVer + " Safari/" + webkitVer
}

func userAgentOS(goos string) string {
	switch goos {
	case "darwin":
		return "Macintosh; Intel Mac OS X 10_15_7"
	case "windows":
		return "Windows NT 10.0; Win64; x64"
	default:
		return "X11; Linux x86_64"
	}
}

type userAgentSetter interface {
	SetUserAgent(req *proto.NetworkSetUserAgentOverride) error
}

// setUserAgent sets the user agent for the page.  A headless browser without
// the configured user agent gets the desktop Chrome one.
func (o *options) setUserAgent(page userAgentSetter) error {
	ua := o.userAgent
	if ua == "" && o.headless {
		ua = UserAgent("", "", "")
	}
	if ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			return err
		}
	}

	return nil
}
