// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	tibSize          = 4096
	wordBufSize      = maxNameLength + 2
	parseBufSize     = 4096
	maxNameLength    = 63
	maxIncludeDepth  = 16
)

// source is one level of the input-source stack: either a refillable
// reader (the terminal, or an INCLUDED file) or a one-shot string
// installed by EVALUATE.
type source struct {
	reader *bufio.Reader
	text   string
	served bool
	name   string

	savedLen Cell
	savedIn  Cell
	savedBuf []byte
}

// VM is one instance of the interpreter: its dictionary, stacks, data
// space, and current input/compile state. Nothing here is global;
// running two VMs concurrently in one process is safe as long as each
// owns distinct streams.
type VM struct {
	out io.Writer

	ds   *dataSpace
	dict dictionary

	primitives []primitive

	stack  Stack
	rstack Stack

	ip Cell // instruction pointer: data-space address of the next xt

	tibAddr   Cell
	wordAddr  Cell
	parseAddr Cell
	tibLen    Cell
	toInAddr  Cell
	stateAddr Cell // 0 interpreting, nonzero compiling; Forth-visible via STATE
	baseAddr  Cell

	sources []*source

	// executing is the xt of the word whose primitive is currently
	// running; used for naming the word in abort messages (execute1
	// reads a create/does entry's fields directly). Not a package-level
	// global: it is explicit VM state, threaded by the dispatcher.
	executing Cell

	latestHidden bool // true while the word started by : is still being defined

	debug bool

	// sentinel xts, resolved once at boot from the primitive
	// dictionary, cached so the compiler never needs a name lookup
	// to emit them.
	litXT, branchXT, zbranchXT, exitXT, semiXT, doesXT Cell
	squoteXT, abortqXT                                 Cell

	files []*openFile // sparse; a freed slot is nil and gets reused
	args  []string     // command-line arguments, exposed via #ARG/ARG
}

// Option configures a VM at construction time.
type Option func(*VM)

// WithDataSpaceSize overrides the default data-space size.
func WithDataSpaceSize(n int) Option {
	return func(vm *VM) { vm.ds = newDataSpace(n) }
}

// WithStackDepth overrides the default stack capacities.
func WithStackDepth(n int) Option {
	return func(vm *VM) {
		vm.stack = newStack(n)
		vm.rstack = newStack(n)
	}
}

// WithTrace enables instruction tracing to the VM's output stream.
func WithTrace(on bool) Option {
	return func(vm *VM) { vm.debug = on }
}

// WithArgs exposes args to Forth code via #ARG and ARG.
func WithArgs(args []string) Option {
	return func(vm *VM) { vm.args = args }
}

// NewVM creates a VM reading its top-level source from in and writing
// interpreted output to out, registers the primitive set, and runs
// the bootstrap source through EVALUATE.
func NewVM(in io.Reader, out io.Writer, opts ...Option) (*VM, error) {
	vm := &VM{
		out:    out,
		ds:     newDataSpace(dataSpaceSize),
		stack:  newStack(stackDepth),
		rstack: newStack(stackDepth),
	}
	for _, opt := range opts {
		opt(vm)
	}

	vm.tibAddr = vm.ds.here
	if err := vm.ds.allot(sCell(tibSize)); err != nil {
		return nil, err
	}
	vm.wordAddr = vm.ds.here
	if err := vm.ds.allot(sCell(wordBufSize)); err != nil {
		return nil, err
	}
	vm.parseAddr = vm.ds.here
	if err := vm.ds.allot(sCell(parseBufSize)); err != nil {
		return nil, err
	}
	if err := vm.ds.align(); err != nil {
		return nil, err
	}
	vm.toInAddr = vm.ds.here
	if err := vm.ds.comma(0); err != nil {
		return nil, err
	}
	vm.stateAddr = vm.ds.here
	if err := vm.ds.comma(0); err != nil {
		return nil, err
	}
	vm.baseAddr = vm.ds.here
	if err := vm.ds.comma(10); err != nil {
		return nil, err
	}

	vm.registerPrimitives()
	if err := vm.resolveSentinels(); err != nil {
		return nil, err
	}

	vm.sources = []*source{{reader: bufio.NewReader(in), name: ""}}

	if err := vm.evaluate(bootcore); err != nil {
		return nil, fatalf("bootstrap: %v", err)
	}

	return vm, nil
}

func (vm *VM) resolveSentinels() error {
	names := map[string]*Cell{
		"(lit)":     &vm.litXT,
		"(branch)":  &vm.branchXT,
		"(zbranch)": &vm.zbranchXT,
		"exit":      &vm.exitXT,
		"(;)":       &vm.semiXT,
		"(does)":    &vm.doesXT,
		"(s\")":     &vm.squoteXT,
		"(abort\")": &vm.abortqXT,
	}
	for name, dst := range names {
		xt, ok := vm.dict.find(name)
		if !ok {
			return fatalf("missing kernel sentinel %q", name)
		}
		*dst = xt
	}
	return nil
}

func (vm *VM) getToIn() Cell {
	c, _ := vm.ds.readCell(vm.toInAddr)
	return c
}

func (vm *VM) setToIn(v Cell) {
	vm.ds.writeCell(vm.toInAddr, v)
}

func (vm *VM) getState() Cell {
	c, _ := vm.ds.readCell(vm.stateAddr)
	return c
}

func (vm *VM) setState(v Cell) {
	vm.ds.writeCell(vm.stateAddr, v)
}

func (vm *VM) compiling() bool {
	return vm.getState() != forthFalse
}

func (vm *VM) tib() []byte {
	b, _ := vm.ds.readSlice(vm.tibAddr, vm.tibLen)
	return b
}

// cur returns the active input source, or nil if the source stack is
// somehow empty (never true after NewVM, guarded defensively anyway).
func (vm *VM) cur() *source {
	if len(vm.sources) == 0 {
		return nil
	}
	return vm.sources[len(vm.sources)-1]
}

// pushSource installs a new top-of-stack input source, snapshotting
// the current TIB so it can be restored when this source is popped.
func (vm *VM) pushSource(src *source) error {
	if len(vm.sources) >= maxIncludeDepth {
		return vm.fault(IncludeNestingTooDeep)
	}
	buf, err := vm.ds.readSlice(vm.tibAddr, vm.tibLen)
	if err != nil {
		return err
	}
	src.savedLen = vm.tibLen
	src.savedIn = vm.getToIn()
	src.savedBuf = append([]byte(nil), buf...)
	vm.sources = append(vm.sources, src)
	vm.tibLen = 0
	vm.setToIn(0)
	return nil
}

func (vm *VM) popSource() error {
	src := vm.sources[len(vm.sources)-1]
	vm.sources = vm.sources[:len(vm.sources)-1]
	for i, b := range src.savedBuf {
		if err := vm.ds.writeByte(vm.tibAddr+Cell(i), Cell(b)); err != nil {
			return err
		}
	}
	vm.tibLen = src.savedLen
	vm.setToIn(src.savedIn)
	return nil
}

// refill pulls the next line (or, for a one-shot EVALUATE source, the
// installed string) into the TIB and resets >IN to 0. ok is false at
// end-of-input for the current source.
func (vm *VM) refill() (ok bool, err error) {
	cur := vm.cur()
	if cur == nil {
		return false, nil
	}
	var line string
	switch {
	case cur.reader != nil:
		l, rerr := cur.reader.ReadString('\n')
		if l == "" && rerr != nil {
			return false, nil
		}
		line = strings.TrimRight(l, "\r\n")
	case !cur.served:
		line = cur.text
		cur.served = true
	default:
		return false, nil
	}
	if Cell(len(line)) > tibSize {
		return false, vm.fault(DataSpaceOverflow)
	}
	for i := 0; i < len(line); i++ {
		if err := vm.ds.writeByte(vm.tibAddr+Cell(i), Cell(line[i])); err != nil {
			return false, err
		}
	}
	vm.tibLen = Cell(len(line))
	vm.setToIn(0)
	return true, nil
}

// evaluate runs s through INTERPRET as a one-shot source, restoring
// the prior source state (including the caller's TIB contents and
// >IN) on return, per EVALUATE ( c-addr u -- ).
func (vm *VM) evaluate(s string) error {
	if err := vm.pushSource(&source{text: s}); err != nil {
		return err
	}
	if _, err := vm.refill(); err != nil {
		vm.popSource()
		return err
	}
	err := vm.interpret()
	if perr := vm.popSource(); err == nil {
		err = perr
	}
	return err
}

// included pushes r as a new refillable source (an INCLUDED file),
// runs it line by line through INTERPRET until exhausted, and
// restores the prior source state.
func (vm *VM) included(name string, r io.Reader) error {
	if err := vm.pushSource(&source{reader: bufio.NewReader(r), name: name}); err != nil {
		return err
	}
	var err error
	first := true
	for {
		var ok bool
		ok, err = vm.refill()
		if err != nil || !ok {
			break
		}
		// a leading shebang line (#!/path/to/forego ...) lets an
		// included file double as a standalone executable script.
		if first {
			first = false
			if strings.HasPrefix(string(vm.tib()[:vm.tibLen]), "#!") {
				continue
			}
		}
		if err = vm.interpret(); err != nil {
			break
		}
	}
	if perr := vm.popSource(); err == nil {
		err = perr
	}
	return err
}

func (vm *VM) trace(format string, a ...interface{}) {
	if vm.debug {
		fmt.Fprintf(vm.out, format, a...)
	}
}

// execute1 dispatches a single xt per its dictionary entry's code
// kind. primitive invokes the host function directly; the other three
// kinds manipulate ip/the data stack exactly as the inner interpreter
// contract requires.
func (vm *VM) execute1(xt Cell) error {
	if xt >= Cell(len(vm.dict.entries)) {
		return vm.fault(IllegalInstruction)
	}
	e := vm.dict.get(xt)
	prev := vm.executing
	vm.executing = xt
	defer func() { vm.executing = prev }()

	switch e.code {
	case codePrimitive:
		if e.prim < 0 || e.prim >= len(vm.primitives) {
			return vm.fault(IllegalInstruction)
		}
		vm.trace("exec %s\n", e.name)
		err := vm.primitives[e.prim].f(vm)
		// a bare Errno from the stack or data-space helpers gets this
		// primitive's name attached; BYE and QUIT pass through as is.
		if errno, ok := err.(Errno); ok && errno != Bye && errno != Quit {
			return vm.fault(errno)
		}
		return err
	case codeCreate:
		return vm.stack.push(e.param)
	case codeColon:
		if err := vm.rstack.push(vm.ip); err != nil {
			return rstackError(err)
		}
		vm.ip = e.does
		return nil
	case codeDoes:
		if err := vm.stack.push(e.param); err != nil {
			return err
		}
		if err := vm.rstack.push(vm.ip); err != nil {
			return rstackError(err)
		}
		vm.ip = e.does
		return nil
	}
	return vm.fault(IllegalInstruction)
}

// EXECUTE ( xt -- ): pop an xt and execute it directly. Safe to call
// only from inside an already-running step loop (a primitive's own
// dispatch, or a colon body): for codeColon/codeDoes, execute1 just
// moves ip and lets the surrounding loop keep fetching, so Forth call
// depth is bounded by the return stack, not the Go call stack.
func (vm *VM) executeWord() error {
	xt, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.execute1(xt)
}

// step fetches the xt at ip, advances ip by one cell, and executes it.
// executeTopLevel runs the word the outer interpreter found through
// execute1 directly, then calls step for every xt after that, as long
// as the word's colon or does body is still running.
func (vm *VM) step() error {
	xt, err := vm.ds.readCell(vm.ip)
	if err != nil {
		return err
	}
	vm.ip += cellSize
	return vm.execute1(xt)
}

// executeTopLevel runs xt to completion from outside any ambient step
// loop (the outer interpreter calls this; EXECUTE does not — it calls
// execute1 directly, because it already runs from inside one). For a
// primitive or create-runtime entry, execute1 alone is the whole
// effect. For colon/does-runtime entries, execute1 pushes the caller's
// ip and moves ip into the body; this drives step() until that same
// frame returns (rstack depth back to where it started).
func (vm *VM) executeTopLevel(xt Cell) error {
	depth := vm.rstack.depth()
	savedIP := vm.ip
	defer func() { vm.ip = savedIP }()
	if err := vm.execute1(xt); err != nil {
		return err
	}
	for vm.rstack.depth() > depth {
		if err := vm.step(); err != nil {
			return err
		}
	}
	return nil
}
