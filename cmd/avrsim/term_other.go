//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package main

import (
	"errors"
)

var errRawTerm = errors.New("raw terminal mode not supported")

func enterRawTerm() error {
	return errRawTerm
}

func exitRawTerm() {
}
