package webhelper

import (
	"context"

	"github.com/rusq/webhelper/internal/qrcode"
	"github.com/rusq/webhelper/locator"
)

// GrabQRCodeFrom reads the QR code displayed by the element.  If the element
// is an image with the PNG data URL source, the code is read from the data,
// otherwise from the element screenshot.
func (h *Helper) GrabQRCodeFrom(ctx context.Context, loc locator.Locator) (string, error) {
	el, err := h.findOne(ctx, locator.Any, loc)
	if err != nil {
		return "", err
	}
	src, ok, err := el.Attribute(ctx, "src")
	if err != nil {
		return "", ErrBrowser{Err: err, FailedTo: "get image source"}
	}
	if ok && qrcode.IsDataURL(src) {
		return qrcode.DecodeDataURL(src)
	}
	data, err := el.Screenshot(ctx)
	if err != nil {
		return "", ErrBrowser{Err: err, FailedTo: "take screenshot of " + loc.String()}
	}
	return qrcode.DecodePNG(data)
}
