//go:build unix

package backend

import "github.com/gdamore/tcell/v2"

func openTty() (tcell.Tty, error) {
	return tcell.NewDevTty()
}

func openTtyAt(path string) (tcell.Tty, error) {
	return tcell.NewDevTtyFromDev(path)
}
