package io

import (
	"errors"

	"github.com/ezrec/avrsim/translate"
)

var f = translate.From

var (
	// Port errors
	ErrChannelFull = errors.New(f("channel full"))

	// Image errors
	ErrReadFailure = errors.New(f("image read failure"))
)

// ErrHexSyntax is the reason a HEX image was rejected.
type ErrHexSyntax string

func (err ErrHexSyntax) Error() string {
	return f("%v", string(err))
}
