// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth

import (
	"fmt"
)

// registerInterpreterPrimitives wires WORD/PARSE, the source-stack
// words, number formatting, and the outer interpreter's own words
// (QUIT, EVALUATE).
func (vm *VM) registerInterpreterPrimitives() {
	vm.defPrim("bl", false, (*VM).blWord)
	vm.defPrim("word", false, (*VM).wordPrim)
	vm.defPrim("parse", false, (*VM).parseWord)
	vm.defPrim("source", false, (*VM).sourceWord)
	vm.defPrim(">in", false, (*VM).toInWord)
	vm.defPrim("state", false, (*VM).stateWord)
	vm.defPrim("base", false, (*VM).baseWord)
	vm.defPrim("decimal", false, (*VM).decimalWord)
	vm.defPrim("hex", false, (*VM).hexWord)
	vm.defPrim("refill", false, (*VM).refillWord)
	vm.defPrim("evaluate", false, (*VM).evaluateWord)
	vm.defPrim("quit", false, (*VM).quitWord)
	vm.defPrim(".", false, (*VM).dot)
	vm.defPrim("u.", false, (*VM).uDot)
	vm.defPrim(".r", false, (*VM).dotR)
	vm.defPrim("u.r", false, (*VM).uDotR)
	vm.defPrim(".s", false, (*VM).dotS)
	vm.defPrim(".rs", false, (*VM).dotRS)
	vm.defPrim("\\", true, (*VM).backslashComment)
	vm.defPrim("(", true, (*VM).parenComment)
	vm.defPrim("#!", true, (*VM).backslashComment)
}

// \ ( "ccc<eol>" -- ): discard the rest of the current input line. #!
// shares this body: outside a leading shebang line (handled specially
// by INCLUDED), it is just another end-of-line comment word.
func (vm *VM) backslashComment() error {
	vm.setToIn(vm.tibLen)
	return nil
}

// ( ( "ccc<close-paren>" -- ): discard input up to and including the
// next close paren, matching WORD's handling of a short line (no
// close paren before end of input just consumes the rest of the line).
func (vm *VM) parenComment() error {
	_, err := vm.parseDelim(')')
	return err
}

// bl ( -- char ): the ASCII space character, the default word delimiter.
func (vm *VM) blWord() error {
	return vm.stack.push(' ')
}

// parseToken skips leading whitespace (any byte <= ' ') and returns
// the run of non-whitespace bytes that follows, advancing >IN past it. Returns "" at end of
// input. This is WORD's delimiter-is-space case, used internally by
// words that need a name rather than a counted string (CREATE, :,
// CHAR, ').
func (vm *VM) parseToken() (string, error) {
	buf := vm.tib()
	in := int(vm.getToIn())
	n := int(vm.tibLen)
	for in < n && buf[in] <= ' ' {
		in++
	}
	start := in
	for in < n && buf[in] > ' ' {
		in++
	}
	vm.setToIn(Cell(in))
	return string(buf[start:in]), nil
}

// parseDelim skips at most one leading space, then returns everything
// up to delim (or the rest of the line, if delim never appears).
// Used by S" and ABORT" to recover their quoted text.
func (vm *VM) parseDelim(delim byte) (string, error) {
	buf := vm.tib()
	in := int(vm.getToIn())
	n := int(vm.tibLen)
	if in < n && buf[in] == ' ' {
		in++
	}
	start := in
	for in < n && buf[in] != delim {
		in++
	}
	s := string(buf[start:in])
	if in < n {
		in++
	}
	vm.setToIn(Cell(in))
	return s, nil
}

// word ( char -- c-addr ): parse a token delimited by char, skipping
// leading delimiters, and store it as a counted string in the shared
// WORD buffer. No trailing delimiter byte is appended after the text.
func (vm *VM) wordPrim() error {
	c, err := vm.stack.pop()
	if err != nil {
		return err
	}
	delim := byte(c)
	buf := vm.tib()
	in := int(vm.getToIn())
	n := int(vm.tibLen)
	for in < n && buf[in] == delim {
		in++
	}
	start := in
	for in < n && buf[in] != delim {
		in++
	}
	length := in - start
	if in < n {
		in++
	}
	vm.setToIn(Cell(in))
	if length > wordBufSize-1 {
		return vm.fault(DataSpaceOverflow)
	}
	if err := vm.writeByte(vm.wordAddr, Cell(length)); err != nil {
		return err
	}
	for i := 0; i < length; i++ {
		if err := vm.writeByte(vm.wordAddr+1+Cell(i), Cell(buf[start+i])); err != nil {
			return err
		}
	}
	return vm.stack.push(vm.wordAddr)
}

// parse ( char -- c-addr u ): like WORD but does not skip leading
// delimiters, and aborts if char never appears before end of input.
func (vm *VM) parseWord() error {
	c, err := vm.stack.pop()
	if err != nil {
		return err
	}
	delim := byte(c)
	buf := vm.tib()
	in := int(vm.getToIn())
	n := int(vm.tibLen)
	start := in
	for in < n && buf[in] != delim {
		in++
	}
	if in >= n {
		return abortMessage("PARSE: delimiter not found")
	}
	vm.setToIn(Cell(in + 1))
	vm.stack.push(vm.tibAddr + Cell(start))
	return vm.stack.push(Cell(in - start))
}

// source ( -- c-addr u )
func (vm *VM) sourceWord() error {
	vm.stack.push(vm.tibAddr)
	return vm.stack.push(vm.tibLen)
}

// >in ( -- a-addr )
func (vm *VM) toInWord() error {
	return vm.stack.push(vm.toInAddr)
}

// state ( -- a-addr )
func (vm *VM) stateWord() error {
	return vm.stack.push(vm.stateAddr)
}

// base ( -- a-addr )
func (vm *VM) baseWord() error {
	return vm.stack.push(vm.baseAddr)
}

func (vm *VM) getBase() Cell {
	c, _ := vm.ds.readCell(vm.baseAddr)
	return c
}

func (vm *VM) setBase(v Cell) {
	vm.ds.writeCell(vm.baseAddr, v)
}

// decimal ( -- )
func (vm *VM) decimalWord() error {
	vm.setBase(10)
	return nil
}

// hex ( -- )
func (vm *VM) hexWord() error {
	vm.setBase(16)
	return nil
}

// refill ( -- flag )
func (vm *VM) refillWord() error {
	ok, err := vm.refill()
	if err != nil {
		return err
	}
	return vm.stack.push(flag(ok))
}

// evaluate ( c-addr u -- )
func (vm *VM) evaluateWord() error {
	a, u, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	b, err := vm.ds.readSlice(a, u)
	if err != nil {
		return err
	}
	return vm.evaluate(string(b))
}

// quit ( -- ) ( R: i*x -- ): clear the return stack, drop to
// interpreting, and unwind through every enclosing INCLUDED/EVALUATE
// source back to Run's REFILL loop.
func (vm *VM) quitWord() error {
	vm.rstack.clear()
	vm.setState(forthFalse)
	return Quit
}

func (vm *VM) unrecognized(tok string) error {
	return &Error{
		Word:   tok,
		Errno:  UnrecognizedWord,
		Stack:  append([]Cell(nil), vm.stack...),
		RStack: append([]Cell(nil), vm.rstack...),
	}
}

// interpret consumes every token in the current input buffer from
// >IN to the end, compiling or executing each as dictionary lookup
// and numeric conversion dictate.
func (vm *VM) interpret() error {
	for {
		tok, err := vm.parseToken()
		if err != nil {
			return err
		}
		if tok == "" {
			return nil
		}
		if err := vm.interpretToken(tok); err != nil {
			return err
		}
	}
}

func (vm *VM) interpretToken(tok string) error {
	if xt, ok := vm.dict.find(tok); ok {
		e := vm.dict.get(xt)
		if vm.compiling() && !e.immediate() {
			return vm.compileXT(xt)
		}
		return vm.executeTopLevel(xt)
	}

	n, ok := vm.parseNumber(tok)
	if !ok {
		return vm.unrecognized(tok)
	}
	if vm.compiling() {
		if err := vm.compileXT(vm.litXT); err != nil {
			return err
		}
		return vm.ds.comma(n)
	}
	return vm.stack.push(n)
}

// parseNumber converts s per the current BASE. A leading "-" or "+"
// sets the sign. Letters beyond the current base, or an empty digit
// run, fail.
func (vm *VM) parseNumber(s string) (n Cell, ok bool) {
	if s == "" {
		return
	}
	neg := false
	body := s
	switch body[0] {
	case '-':
		neg = true
		body = body[1:]
	case '+':
		body = body[1:]
	}
	if body == "" {
		return
	}
	base := uint64(vm.getBase())
	var val uint64
	for i := 0; i < len(body); i++ {
		dv, good := digitValue(body[i])
		if !good || uint64(dv) >= base {
			return 0, false
		}
		val = val*base + uint64(dv)
	}
	if neg {
		val = uint64(-int64(val))
	}
	return Cell(val), true
}

func digitValue(b byte) (int, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), true
	case b >= 'A' && b <= 'Z':
		return int(b-'A') + 10, true
	case b >= 'a' && b <= 'z':
		return int(b-'a') + 10, true
	}
	return 0, false
}

// formatUnsigned renders v in base using uppercase digits, matching
// the convention of "." and friends (HEX 1A 2 + . DECIMAL => 1C).
func formatUnsigned(v uint64, base Cell) string {
	if v == 0 {
		return "0"
	}
	const digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	var buf [64]byte
	i := len(buf)
	b := uint64(base)
	for v > 0 {
		i--
		buf[i] = digits[v%b]
		v /= b
	}
	return string(buf[i:])
}

func formatSigned(v int64, base Cell) string {
	if v < 0 {
		return "-" + formatUnsigned(uint64(-v), base)
	}
	return formatUnsigned(uint64(v), base)
}

// . ( n -- )
func (vm *VM) dot() error {
	n, err := vm.stack.pop()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(vm.out, formatSigned(int64(sCell(n)), vm.getBase())+" ")
	if err != nil {
		return vm.faultIO(err)
	}
	return nil
}

// u. ( u -- )
func (vm *VM) uDot() error {
	u, err := vm.stack.pop()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(vm.out, formatUnsigned(uint64(u), vm.getBase())+" ")
	if err != nil {
		return vm.faultIO(err)
	}
	return nil
}

// .r ( n width -- ): right-justify n within width, no trailing space.
func (vm *VM) dotR() error {
	n, w, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	s := formatSigned(int64(sCell(n)), vm.getBase())
	return vm.writePadded(s, w)
}

// u.r ( u width -- )
func (vm *VM) uDotR() error {
	u, w, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	s := formatUnsigned(uint64(u), vm.getBase())
	return vm.writePadded(s, w)
}

func (vm *VM) writePadded(s string, width Cell) error {
	for Cell(len(s)) < width {
		s = " " + s
	}
	if _, err := fmt.Fprint(vm.out, s); err != nil {
		return vm.faultIO(err)
	}
	return nil
}

// .s ( -- ): show the data stack, bottom to top, without consuming it.
func (vm *VM) dotS() error {
	base := vm.getBase()
	for _, c := range vm.stack {
		if _, err := fmt.Fprint(vm.out, formatSigned(int64(sCell(c)), base)+" "); err != nil {
			return vm.faultIO(err)
		}
	}
	return nil
}

// .rs ( -- ): show the return stack, bottom to top.
func (vm *VM) dotRS() error {
	base := vm.getBase()
	for _, c := range vm.rstack {
		if _, err := fmt.Fprint(vm.out, formatSigned(int64(sCell(c)), base)+" "); err != nil {
			return vm.faultIO(err)
		}
	}
	return nil
}

// replPrompt is written after every line Run processes while
// interpreting, mirroring the "ok" acknowledgement printed by
// terminal-driven Forth systems.
const replPrompt = "ok"

// Run drives the top-level REPL: REFILL from the outermost source,
// INTERPRET what it contains, and keep going until BYE or the source
// is exhausted. Recoverable traps are reported to out and interpreting
// resumes with both stacks cleared, matching ABORT's contract. The
// prompt is written only while interpreting, never mid-definition; a
// final newline marks a clean exit at end-of-input.
func (vm *VM) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("forth: panic: %v", r)
		}
	}()
	for {
		ok, err := vm.refill()
		if err != nil {
			if !vm.reportError(err) {
				break
			}
			vm.writePrompt()
			continue
		}
		if !ok {
			break
		}
		if err := vm.interpret(); err != nil {
			if !vm.reportError(err) {
				break
			}
		}
		vm.writePrompt()
	}
	fmt.Fprintln(vm.out)
	return nil
}

func (vm *VM) writePrompt() {
	if !vm.compiling() {
		fmt.Fprintf(vm.out, " %s\n", replPrompt)
	}
}

// reportError prints a recoverable trap and resets interpreter state
// for the next line. It returns false for BYE, which should unwind
// Run entirely.
func (vm *VM) reportError(err error) bool {
	errno, isErrno := err.(Errno)
	if !isErrno {
		if e, ok := err.(*Error); ok {
			errno, isErrno = e.Errno, true
		}
	}
	if isErrno {
		switch errno {
		case Bye:
			return false
		case Quit:
			vm.stack.clear()
			return true
		}
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(vm.out, msg)
	}
	vm.stack.clear()
	vm.rstack.clear()
	vm.setState(forthFalse)
	return true
}
