package platform

import (
	"errors"

	"github.com/atotto/clipboard"
)

var errClipboardUnsupported = errors.New("no system clipboard utility found")

// TextClipboard is the system-wide text clipboard.
type TextClipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

// SystemClipboard writes through xclip/xsel/wl-copy, pbcopy or the Windows
// clipboard API, whichever the host provides.
func SystemClipboard() TextClipboard {
	return systemClipboard{}
}

func (systemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errClipboardUnsupported
	}
	return clipboard.WriteAll(text)
}
