// Package debugger provides breakpoints, watchpoints and expression
// evaluation over the machine state of the avrsim CPU.
//
// Expressions use Starlark syntax. The registers are predeclared as r0
// through r31, along with pc, sp, sreg and the X, Y and Z pointer pairs,
// plus any integer valued Defines.
package debugger

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"slices"
	"strconv"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/avrsim/cpu"
	"github.com/ezrec/avrsim/internal"
)

// Access is the kind of memory access a watchpoint triggers on.
type Access int

const (
	WATCH_READ       = Access(1 << 0) // Data reads.
	WATCH_WRITE      = Access(1 << 1) // Data writes.
	WATCH_READ_WRITE = WATCH_READ | WATCH_WRITE
)

func (acc Access) String() string {
	switch acc {
	case WATCH_READ:
		return "read"
	case WATCH_WRITE:
		return "write"
	case WATCH_READ_WRITE:
		return "access"
	}
	return fmt.Sprintf("Access(%d)", int(acc))
}

// Breakpoint stops execution before the instruction at Addr, when Cond is
// empty or evaluates true.
type Breakpoint struct {
	Addr uint16
	Cond string
}

// Watchpoint stops execution after an instruction accesses Addr.
type Watchpoint struct {
	Addr   uint16
	Access Access
}

// Hit is a watched memory access.
type Hit struct {
	Addr   uint16
	Access Access
	Value  uint8
}

// Debugger holds the breakpoints and watchpoints of an emulator session.
// It observes memory accesses as the CPU's Monitor.
type Debugger struct {
	Verbose bool // Set to enable verbose logging.

	Defines map[string]string // Symbols available to expressions.

	breakpoints map[uint16]Breakpoint
	watchpoints map[uint16]Access
	hits        []Hit
}

var _ cpu.Monitor = (*Debugger)(nil)

// NewDebugger creates a debugger with no break or watch points.
func NewDebugger() (dbg *Debugger) {
	dbg = &Debugger{
		Defines:     map[string]string{},
		breakpoints: map[uint16]Breakpoint{},
		watchpoints: map[uint16]Access{},
	}

	return
}

// SetDefines replaces the expression symbols.
func (dbg *Debugger) SetDefines(defines iter.Seq2[string, string]) {
	dbg.Defines = internal.IterSeq2Collect(defines)
}

// AddBreakpoint sets a breakpoint. A condition that is not a valid
// expression is rejected.
func (dbg *Debugger) AddBreakpoint(addr uint16, cond string) (err error) {
	if len(cond) != 0 {
		opts := syntax.FileOptions{}
		_, err = opts.ParseExpr("cond", cond, 0)
		if err != nil {
			err = &ErrExpression{Expr: cond, Err: err}
			return
		}
	}

	dbg.breakpoints[addr] = Breakpoint{Addr: addr, Cond: cond}
	return
}

// RemoveBreakpoint clears the breakpoint at addr.
func (dbg *Debugger) RemoveBreakpoint(addr uint16) {
	delete(dbg.breakpoints, addr)
}

// Breakpoints returns all breakpoints, in address order.
func (dbg *Debugger) Breakpoints() (bps []Breakpoint) {
	for _, addr := range slices.Sorted(maps.Keys(dbg.breakpoints)) {
		bps = append(bps, dbg.breakpoints[addr])
	}
	return
}

// AddWatchpoint watches accesses to a data address.
func (dbg *Debugger) AddWatchpoint(addr uint16, access Access) (err error) {
	if access&WATCH_READ_WRITE == 0 || access&^WATCH_READ_WRITE != 0 {
		err = ErrAccessInvalid
		return
	}

	dbg.watchpoints[addr] = access
	return
}

// RemoveWatchpoint stops watching addr.
func (dbg *Debugger) RemoveWatchpoint(addr uint16) {
	delete(dbg.watchpoints, addr)
}

// Watchpoints returns all watchpoints, in address order.
func (dbg *Debugger) Watchpoints() (wps []Watchpoint) {
	for _, addr := range slices.Sorted(maps.Keys(dbg.watchpoints)) {
		wps = append(wps, Watchpoint{Addr: addr, Access: dbg.watchpoints[addr]})
	}
	return
}

// Read records a watched data read.
func (dbg *Debugger) Read(addr uint16, value uint8) {
	dbg.record(addr, WATCH_READ, value)
}

// Write records a watched data write.
func (dbg *Debugger) Write(addr uint16, value uint8) {
	dbg.record(addr, WATCH_WRITE, value)
}

func (dbg *Debugger) record(addr uint16, access Access, value uint8) {
	if dbg.watchpoints[addr]&access == 0 {
		return
	}

	if dbg.Verbose {
		log.Printf("debugger: %v 0x%04x = 0x%02x", access, addr, value)
	}

	dbg.hits = append(dbg.hits, Hit{Addr: addr, Access: access, Value: value})
}

// Clear discards watchpoint hits not yet reported by Check.
func (dbg *Debugger) Clear() {
	dbg.hits = nil
}

// Check decides if execution should stop at the current state: a
// breakpoint at the PC whose condition holds, or watchpoint hits since the
// last Check. The stop is reported as an *Event error.
func (dbg *Debugger) Check(st *cpu.State) (err error) {
	event := &Event{Pc: st.Pc(), Hits: dbg.hits}
	dbg.hits = nil

	bp, ok := dbg.breakpoints[st.Pc()]
	if ok {
		stop := true
		if len(bp.Cond) != 0 {
			stop, err = dbg.Test(bp.Cond, st)
			if err != nil {
				return
			}
		}
		if stop {
			event.Breakpoint = &bp
		}
	}

	if event.Breakpoint == nil && len(event.Hits) == 0 {
		return
	}

	if dbg.Verbose {
		log.Printf("debugger: %v", event)
	}

	err = event
	return
}

// predeclared builds the expression environment for a machine state.
func (dbg *Debugger) predeclared(st *cpu.State) (pred starlark.StringDict) {
	pred = starlark.StringDict{}

	for key, str := range dbg.Defines {
		value, err := strconv.ParseInt(str, 0, 64)
		if err != nil {
			// Non-integer defines are not usable in expressions.
			continue
		}
		pred[key] = starlark.MakeInt64(value)
	}

	for n, value := range st.Registers() {
		pred[fmt.Sprintf("r%d", n)] = starlark.MakeInt(int(value))
	}

	pred["pc"] = starlark.MakeInt(int(st.Pc()))
	pred["sp"] = starlark.MakeInt(int(st.Sp()))
	pred["sreg"] = starlark.MakeInt(int(st.Flags()))
	pred["X"] = starlark.MakeInt(int(st.Pair(cpu.REG_X)))
	pred["Y"] = starlark.MakeInt(int(st.Pair(cpu.REG_Y)))
	pred["Z"] = starlark.MakeInt(int(st.Pair(cpu.REG_Z)))

	return
}

// Evaluate evaluates an expression over the machine state.
func (dbg *Debugger) Evaluate(expr string, st *cpu.State) (value starlark.Value, err error) {
	defer func() {
		if err != nil {
			err = &ErrExpression{Expr: expr, Err: err}
		}
	}()

	thread := starlark.Thread{Name: "debugger"}
	opts := syntax.FileOptions{}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, dbg.predeclared(st))
	if err != nil {
		return
	}

	value, ok := dict["rc"]
	if !ok {
		err = ErrExpressionValue
		return
	}

	return
}

// EvaluateInt evaluates an integer expression over the machine state.
func (dbg *Debugger) EvaluateInt(expr string, st *cpu.State) (value int64, err error) {
	st_value, err := dbg.Evaluate(expr, st)
	if err != nil {
		return
	}

	st_int, ok := st_value.(starlark.Int)
	if !ok {
		err = &ErrExpression{Expr: expr, Err: ErrExpressionValue}
		return
	}

	value, ok = st_int.Int64()
	if !ok {
		err = &ErrExpression{Expr: expr, Err: ErrExpressionValue}
		return
	}

	return
}

// Test evaluates a condition over the machine state.
func (dbg *Debugger) Test(expr string, st *cpu.State) (ok bool, err error) {
	st_value, err := dbg.Evaluate(expr, st)
	if err != nil {
		return
	}

	ok = bool(st_value.Truth())
	return
}
