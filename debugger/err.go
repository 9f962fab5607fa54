package debugger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ezrec/avrsim/translate"
)

var f = translate.From

var (
	ErrStop            = errors.New(f("debugger stop"))
	ErrAccessInvalid   = errors.New(f("watchpoint access invalid"))
	ErrExpressionValue = errors.New(f("expression has no integer value"))
)

// ErrExpression reports an expression that failed to parse or evaluate.
type ErrExpression struct {
	Expr string
	Err  error
}

func (err *ErrExpression) Error() string {
	return f("expression '%v': %v", err.Expr, err.Err)
}

func (err *ErrExpression) Unwrap() error {
	return err.Err
}

// Event is the reason execution stopped: a breakpoint, watchpoint hits,
// or both.
type Event struct {
	Pc         uint16
	Breakpoint *Breakpoint
	Hits       []Hit
}

func (ev *Event) Error() string {
	var reasons []string
	if ev.Breakpoint != nil {
		reasons = append(reasons, f("breakpoint"))
	}
	for _, hit := range ev.Hits {
		reasons = append(reasons, fmt.Sprintf("%v 0x%04x=0x%02x", hit.Access, hit.Addr, hit.Value))
	}
	return f("%04x: stop: %v", ev.Pc, strings.Join(reasons, ", "))
}

func (ev *Event) Is(target error) bool {
	return target == ErrStop
}
