//go:build linux || darwin || freebsd || netbsd || openbsd

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// Console settings saved by enterRawTerm.
var consoleSaved *unix.Termios

// rawMode switches a terminal to unbuffered 8-bit input without echo.
// Reads return at once, with or without data. Signals still work, so the
// emulator can be interrupted.
func rawMode(tio *unix.Termios) {
	tio.Iflag &^= unix.ICRNL | unix.INLCR | unix.IGNCR | unix.ISTRIP | unix.IXON
	tio.Lflag &^= unix.ICANON | unix.ECHO | unix.ECHONL | unix.IEXTEN
	tio.Cflag = tio.Cflag&^(unix.CSIZE|unix.PARENB) | unix.CS8
	tio.Cc[unix.VMIN] = 0
	tio.Cc[unix.VTIME] = 0
}

// enterRawTerm puts the console on stdin into raw mode.
func enterRawTerm() (err error) {
	fd := int(os.Stdin.Fd())

	tio, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return
	}

	saved := *tio
	rawMode(tio)

	err = unix.IoctlSetTermios(fd, ioctlSetTermios, tio)
	if err != nil {
		return
	}

	consoleSaved = &saved
	return
}

// exitRawTerm restores the console settings, if they were changed.
func exitRawTerm() {
	if consoleSaved == nil {
		return
	}

	_ = unix.IoctlSetTermios(int(os.Stdin.Fd()), ioctlSetTermios, consoleSaved)
	consoleSaved = nil
}
