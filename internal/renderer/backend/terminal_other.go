//go:build !unix

package backend

import (
	"errors"

	"github.com/gdamore/tcell/v2"
)

func openTty() (tcell.Tty, error) {
	return nil, errors.New("no controlling tty on this platform")
}

func openTtyAt(string) (tcell.Tty, error) {
	return nil, errors.New("terminal devices are not supported on this platform")
}
