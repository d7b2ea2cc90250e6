// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth

import (
	"fmt"
	"strings"
)

// registerDictionaryPrimitives wires the words that create, find, and
// inspect dictionary entries.
func (vm *VM) registerDictionaryPrimitives() {
	vm.defPrim("create", false, (*VM).createWord)
	vm.defPrim("find", false, (*VM).findWord)
	vm.defPrim(">body", false, (*VM).toBody)
	vm.defPrim("latest", false, (*VM).latestWord)
	vm.defPrim("immediate", false, (*VM).immediateWord)
	vm.defPrim("hidden", false, (*VM).hiddenWord)
	vm.defPrim("words", false, (*VM).wordsWord)
	vm.defPrim("see", false, (*VM).seeWord)
	vm.defPrim("char", false, (*VM).charWord)
	vm.defPrim("[char]", true, (*VM).bracketChar)
	vm.defPrim("'", false, (*VM).tick)
	vm.defPrim("[']", true, (*VM).bracketTick)
}

// registerCompilerPrimitives wires the inner-interpreter runtime
// helpers ((lit), (branch), (zbranch), (;), (does), (s"), (abort"))
// and the colon compiler itself.
func (vm *VM) registerCompilerPrimitives() {
	vm.defPrim("(lit)", false, (*VM).litRuntime)
	vm.defPrim("(branch)", false, (*VM).branchRuntime)
	vm.defPrim("(zbranch)", false, (*VM).zbranchRuntime)
	vm.defPrim("(;)", false, (*VM).semiRuntime)
	vm.defPrim("(does)", false, (*VM).doesRuntime)
	vm.defPrim("(s\")", false, (*VM).squoteRuntime)
	vm.defPrim("(abort\")", false, (*VM).abortqRuntime)

	vm.defPrim(":", false, (*VM).colon)
	vm.defPrim(";", true, (*VM).semicolon)
	vm.defPrim(":noname", false, (*VM).colonNoname)
	vm.defPrim("does>", true, (*VM).doesGT)
	vm.defPrim("recurse", true, (*VM).recurse)
	vm.defPrim("literal", true, (*VM).literal)
	vm.defPrim("compile,", false, (*VM).compileComma)
	vm.defPrim("postpone", true, (*VM).postpone)
	vm.defPrim("s\"", true, (*VM).quoteS)
	vm.defPrim(".\"", true, (*VM).dotQuote)
	vm.defPrim(".(", true, (*VM).dotParen)
	vm.defPrim("sliteral", true, (*VM).sliteral)
	vm.defPrim("abort\"", true, (*VM).abortQuote)
	vm.defPrim("abort", false, (*VM).abort)

	vm.defPrim("(loop)", false, (*VM).loopNext)
	vm.defPrim("(+loop)", false, (*VM).plusLoopNext)

	// 2>R and friends move values across the same return stack that
	// holds call frames; they must stay primitives rather than colon
	// words, or their own EXIT would pop a value left by >R instead of
	// the return address.
	vm.defPrim("2>r", false, (*VM).twoToR)
	vm.defPrim("2r>", false, (*VM).twoRFrom)
	vm.defPrim("2r@", false, (*VM).twoRFetch)
	vm.defPrim("2rdrop", false, (*VM).twoRDrop)
	vm.defPrim("unloop", false, (*VM).unloopWord)
}

// compileXT appends xt as a cell in the current definition's thread.
func (vm *VM) compileXT(xt Cell) error {
	return vm.ds.comma(xt)
}

// create ( "name" -- ): define name with no runtime body of its own;
// executing it pushes the address of its data field. Visible
// immediately, unlike : , which hides its word until ; completes it.
func (vm *VM) createWord() error {
	name, err := vm.parseToken()
	if err != nil {
		return err
	}
	if name == "" {
		return abortMessage("CREATE: name required")
	}
	if err := vm.ds.align(); err != nil {
		return err
	}
	xt := vm.dict.create(name, codeCreate, false)
	vm.dict.get(xt).param = vm.ds.here
	return nil
}

// : ( "name" -- ): begin a colon definition. The new entry is hidden
// until ; unhides it, so a word can't call itself by name mid-
// definition (that's what RECURSE is for).
func (vm *VM) colon() error {
	name, err := vm.parseToken()
	if err != nil {
		return err
	}
	if name == "" {
		return abortMessage(": name required")
	}
	if err := vm.ds.align(); err != nil {
		return err
	}
	xt := vm.dict.create(name, codeColon, true)
	vm.dict.get(xt).does = vm.ds.here
	vm.latestHidden = true
	vm.setState(forthTrue)
	return nil
}

// :noname ( -- xt ): like : but anonymous; pushes the new word's xt
// so the caller can save it (e.g. to store in a variable).
func (vm *VM) colonNoname() error {
	if err := vm.ds.align(); err != nil {
		return err
	}
	xt := vm.dict.create("", codeColon, false)
	vm.dict.get(xt).does = vm.ds.here
	vm.latestHidden = false
	vm.setState(forthTrue)
	return vm.stack.push(xt)
}

// ; ( -- ): close the current definition with EXIT followed by the
// (;) end marker, unhide it, and return to interpreting.
func (vm *VM) semicolon() error {
	if err := vm.compileXT(vm.exitXT); err != nil {
		return err
	}
	if err := vm.compileXT(vm.semiXT); err != nil {
		return err
	}
	if err := vm.ds.align(); err != nil {
		return err
	}
	if vm.latestHidden {
		vm.dict.get(vm.dict.latest()).flags &^= flagHidden
		vm.latestHidden = false
	}
	vm.setState(forthFalse)
	return nil
}

// does> ( -- ): immediate; compiles (does) followed by EXIT. When the
// enclosing definition executes (once, while defining a CREATEd
// word), (does) converts the most recent entry into a does-runtime
// entry and the EXIT returns without running the rest of this body now.
func (vm *VM) doesGT() error {
	if err := vm.compileXT(vm.doesXT); err != nil {
		return err
	}
	return vm.compileXT(vm.exitXT)
}

// (does) is the run-time half of DOES>: it fires once, while the
// defining word runs, not when the defined word is later invoked. The
// new behaviour starts just past the EXIT that DOES> compiled after it.
func (vm *VM) doesRuntime() error {
	xt := vm.dict.latest()
	e := vm.dict.get(xt)
	e.code = codeDoes
	e.does = vm.ip + cellSize
	return nil
}

// recurse ( -- ): immediate; compiles a call to the word currently
// being defined, by xt rather than by name (the name isn't findable
// yet).
func (vm *VM) recurse() error {
	return vm.compileXT(vm.dict.latest())
}

// literal ( x -- ): immediate; compiles x as a run-time literal.
func (vm *VM) literal() error {
	x, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if err := vm.compileXT(vm.litXT); err != nil {
		return err
	}
	return vm.ds.comma(x)
}

// compile, ( xt -- ): append xt's call to the current definition.
func (vm *VM) compileComma() error {
	xt, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.compileXT(xt)
}

// postpone ( "name" -- ): immediate; append name's compilation
// semantics to the current definition, so that running the current
// definition later performs them against whatever is current then.
//
// An immediate word's compilation semantics are to run its xt, so
// deferring that to later is just compiling a plain call: running it
// later is exactly running it. An ordinary word's compilation
// semantics are to compile a call to it, so deferring that to later
// means compiling the deferred form of compiling a call: ['] xt
// compile, rather than a direct call to xt itself.
func (vm *VM) postpone() error {
	name, err := vm.parseToken()
	if err != nil {
		return err
	}
	xt, ok := vm.dict.find(name)
	if !ok {
		return abortMessage("POSTPONE: " + name + "?")
	}
	if vm.dict.get(xt).immediate() {
		return vm.compileXT(xt)
	}
	if err := vm.compileXT(vm.litXT); err != nil {
		return err
	}
	if err := vm.ds.comma(xt); err != nil {
		return err
	}
	compileCommaXT, ok := vm.dict.find("compile,")
	if !ok {
		return fatalf("kernel word %q missing", "compile,")
	}
	return vm.compileXT(compileCommaXT)
}

// (lit) pushes the cell compiled immediately after it and skips over it.
func (vm *VM) litRuntime() error {
	c, err := vm.readCell(vm.ip)
	if err != nil {
		return err
	}
	vm.ip += cellSize
	return vm.stack.push(c)
}

// (branch) unconditionally jumps to the absolute address compiled
// immediately after it.
func (vm *VM) branchRuntime() error {
	target, err := vm.readCell(vm.ip)
	if err != nil {
		return err
	}
	vm.ip = target
	return nil
}

// (zbranch) pops a flag; zero jumps to the compiled target, nonzero
// skips over it.
func (vm *VM) zbranchRuntime() error {
	f, err := vm.stack.pop()
	if err != nil {
		return err
	}
	target, err := vm.readCell(vm.ip)
	if err != nil {
		return err
	}
	if f == forthFalse {
		vm.ip = target
		return nil
	}
	vm.ip += cellSize
	return nil
}

// (;) ends a colon body; identical in effect to EXIT.
func (vm *VM) semiRuntime() error {
	return vm.exitWord()
}

// find ( c-addr -- c-addr 0 | xt 1 | xt -1 ): c-addr is a counted
// string. -1 marks an ordinary word, 1 an immediate one.
func (vm *VM) findWord() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	n, err := vm.readByte(a)
	if err != nil {
		return err
	}
	b, err := vm.ds.readSlice(a+1, n)
	if err != nil {
		return err
	}
	xt, ok := vm.dict.find(string(b))
	if !ok {
		vm.stack.push(a)
		return vm.stack.push(forthFalse)
	}
	vm.stack.push(xt)
	if vm.dict.get(xt).immediate() {
		return vm.stack.push(1)
	}
	return vm.stack.push(forthTrue)
}

// >body ( xt -- a-addr ): the data-field address of a CREATEd or
// does>-converted word.
func (vm *VM) toBody() error {
	xt, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if xt >= Cell(len(vm.dict.entries)) {
		return vm.fault(IllegalInstruction)
	}
	return vm.stack.push(vm.dict.get(xt).param)
}

// latest ( -- xt ): xt of the most recently created word, hidden or not.
func (vm *VM) latestWord() error {
	return vm.stack.push(vm.dict.latest())
}

// immediate ( -- ): toggle the immediate flag of the most recent definition.
func (vm *VM) immediateWord() error {
	vm.dict.get(vm.dict.latest()).flags ^= flagImmediate
	return nil
}

// hidden ( -- ): toggle whether the most recent definition is hidden from FIND.
func (vm *VM) hiddenWord() error {
	vm.dict.get(vm.dict.latest()).flags ^= flagHidden
	return nil
}

// words ( -- ): list definitions, most recently defined first.
func (vm *VM) wordsWord() error {
	for i := len(vm.dict.entries) - 1; i >= 0; i-- {
		e := &vm.dict.entries[i]
		if e.hidden() || e.name == "" {
			continue
		}
		if _, err := vm.out.Write([]byte(e.name + " ")); err != nil {
			return vm.faultIO(err)
		}
	}
	return nil
}

// maxDecompileSteps bounds SEE's walk of a compiled thread, in case a
// dictionary gets corrupted and the (;) sentinel it's looking for is
// never found.
const maxDecompileSteps = 1 << 16

// see ( "name" -- ): print name's definition. A primitive is reported
// by name only; a CREATEd word by its data-field address; a colon or
// does> word by decompiling its thread back into the xts (and inline
// literals/strings) that make it up, stopping at the (;) every
// definition ends with.
func (vm *VM) seeWord() error {
	name, err := vm.parseToken()
	if err != nil {
		return err
	}
	if name == "" {
		return abortMessage("SEE: name required")
	}
	xt, ok := vm.dict.find(name)
	if !ok {
		return abortMessage("SEE: " + name + "?")
	}
	return vm.see(xt)
}

func (vm *VM) see(xt Cell) error {
	e := vm.dict.get(xt)
	var b strings.Builder
	switch e.code {
	case codePrimitive:
		fmt.Fprintf(&b, "%s is a primitive\n", e.name)
	case codeCreate:
		fmt.Fprintf(&b, "%s is created, data field at %s\n", e.name, e.param)
	case codeColon, codeDoes:
		fmt.Fprintf(&b, ": %s", e.name)
		if err := vm.decompile(&b, e.does); err != nil {
			return err
		}
		b.WriteString(" ;\n")
	}
	if e.immediate() {
		b.WriteString("immediate\n")
	}
	if e.hidden() {
		b.WriteString("hidden\n")
	}
	if _, err := vm.out.Write([]byte(b.String())); err != nil {
		return vm.faultIO(err)
	}
	return nil
}

// decompile walks a compiled thread starting at addr, writing one
// space-separated token per cell to b, until it reaches (;) or the
// step bound. (lit)'s literal, the branch primitives' targets, and
// S"/ABORT"'s inline strings are each rendered as their own token
// rather than as a bare xt name, since the next cell in those cases
// isn't itself a call.
func (vm *VM) decompile(b *strings.Builder, addr Cell) error {
	ip := addr
	for i := 0; i < maxDecompileSteps; i++ {
		xt, err := vm.readCell(ip)
		if err != nil {
			return err
		}
		ip += cellSize
		if xt == vm.semiXT {
			return nil
		}
		name := "(noname)"
		if xt < Cell(len(vm.dict.entries)) && vm.dict.get(xt).name != "" {
			name = vm.dict.get(xt).name
		}
		switch xt {
		case vm.litXT:
			v, err := vm.readCell(ip)
			if err != nil {
				return err
			}
			ip += cellSize
			fmt.Fprintf(b, " %s", formatSigned(int64(sCell(v)), vm.getBase()))
		case vm.branchXT, vm.zbranchXT:
			target, err := vm.readCell(ip)
			if err != nil {
				return err
			}
			ip += cellSize
			fmt.Fprintf(b, " %s %s", name, target)
		case vm.squoteXT, vm.abortqXT:
			n, err := vm.readCell(ip)
			if err != nil {
				return err
			}
			s, err := vm.ds.readSlice(ip+cellSize, n)
			if err != nil {
				return err
			}
			ip = aligned(ip + cellSize + n)
			fmt.Fprintf(b, " %s %q", name, string(s))
		default:
			fmt.Fprintf(b, " %s", name)
		}
	}
	return fatalf("SEE: thread at %s didn't end in (;)", addr)
}

// char ( "name" -- char ): the first character of the next word.
func (vm *VM) charWord() error {
	name, err := vm.parseToken()
	if err != nil {
		return err
	}
	if name == "" {
		return abortMessage("CHAR: name required")
	}
	return vm.stack.push(Cell(name[0]))
}

// [char] ( "name" -- ): immediate; compiles CHAR's result as a literal.
func (vm *VM) bracketChar() error {
	name, err := vm.parseToken()
	if err != nil {
		return err
	}
	if name == "" {
		return abortMessage("[CHAR]: name required")
	}
	if err := vm.compileXT(vm.litXT); err != nil {
		return err
	}
	return vm.ds.comma(Cell(name[0]))
}

// ' ( "name" -- xt )
func (vm *VM) tick() error {
	name, err := vm.parseToken()
	if err != nil {
		return err
	}
	xt, ok := vm.dict.find(name)
	if !ok {
		return abortMessage("': " + name + "?")
	}
	return vm.stack.push(xt)
}

// ['] ( "name" -- ): immediate; compiles ' name as a literal.
func (vm *VM) bracketTick() error {
	name, err := vm.parseToken()
	if err != nil {
		return err
	}
	xt, ok := vm.dict.find(name)
	if !ok {
		return abortMessage("[']: " + name + "?")
	}
	if err := vm.compileXT(vm.litXT); err != nil {
		return err
	}
	return vm.ds.comma(xt)
}

// s" ( "ccc<quote>" -- c-addr u ): interpreting, the text lands in a
// scratch buffer and its address/length are pushed now. Compiling, the
// text is embedded inline in the definition and (s") recovers it.
func (vm *VM) quoteS() error {
	s, err := vm.parseDelim('"')
	if err != nil {
		return err
	}
	if !vm.compiling() {
		if err := vm.stashString(vm.parseAddr, s); err != nil {
			return err
		}
		vm.stack.push(vm.parseAddr)
		return vm.stack.push(Cell(len(s)))
	}
	return vm.compileString(vm.squoteXT, s)
}

// (s") recovers a string compiled inline by S" and skips over it.
func (vm *VM) squoteRuntime() error {
	addr, n, err := vm.inlineString()
	if err != nil {
		return err
	}
	vm.stack.push(addr)
	return vm.stack.push(n)
}

// ." ( "ccc<quote>" -- ): interpreting, types the text immediately.
// Compiling, embeds it inline and compiles a call to TYPE after it.
func (vm *VM) dotQuote() error {
	s, err := vm.parseDelim('"')
	if err != nil {
		return err
	}
	if !vm.compiling() {
		if _, err := vm.out.Write([]byte(s)); err != nil {
			return vm.faultIO(err)
		}
		return nil
	}
	if err := vm.compileString(vm.squoteXT, s); err != nil {
		return err
	}
	typeXT, ok := vm.dict.find("type")
	if !ok {
		return fatalf("kernel word %q missing", "type")
	}
	return vm.compileXT(typeXT)
}

// .( ( "ccc<paren>" -- ): type the text up to the next close paren
// immediately, whether interpreting or compiling, like a comment that
// echoes itself. Useful for progress messages inside a definition.
func (vm *VM) dotParen() error {
	s, err := vm.parseDelim(')')
	if err != nil {
		return err
	}
	_, err = vm.out.Write([]byte(s))
	if err != nil {
		return vm.faultIO(err)
	}
	return nil
}

// sliteral ( c-addr1 u -- ): compile-time only. Takes a string already
// on the stack (typically from interpreted S") and embeds it inline in
// the definition being compiled, the same way S" does when compiling.
func (vm *VM) sliteral() error {
	a, u, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	b, err := vm.ds.readSlice(a, u)
	if err != nil {
		return err
	}
	return vm.compileString(vm.squoteXT, string(b))
}

// abort" ( flag "ccc<quote>" -- ): interpreting, pops flag now and
// aborts with the message if it's true. Compiling, embeds the
// message inline and defers the flag check to (abort").
func (vm *VM) abortQuote() error {
	s, err := vm.parseDelim('"')
	if err != nil {
		return err
	}
	if !vm.compiling() {
		f, err := vm.stack.pop()
		if err != nil {
			return err
		}
		if f != forthFalse {
			return abortMessage(s)
		}
		return nil
	}
	return vm.compileString(vm.abortqXT, s)
}

// (abort") pops the flag left on the stack by the calling definition
// and aborts with the inline message if it's true.
func (vm *VM) abortqRuntime() error {
	addr, n, err := vm.inlineString()
	if err != nil {
		return err
	}
	f, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if f == forthFalse {
		return nil
	}
	b, err := vm.ds.readSlice(addr, n)
	if err != nil {
		return err
	}
	return abortMessage(string(b))
}

// abort ( -- ): unconditional abort, no message.
func (vm *VM) abort() error {
	return abortMessage("")
}

// compileString appends xt followed by s's length and bytes, inline
// in the current definition, aligning afterward so the next compiled
// cell lands on a cell boundary.
func (vm *VM) compileString(xt Cell, s string) error {
	if err := vm.compileXT(xt); err != nil {
		return err
	}
	if err := vm.ds.comma(Cell(len(s))); err != nil {
		return err
	}
	for i := 0; i < len(s); i++ {
		if err := vm.ds.ccomma(Cell(s[i])); err != nil {
			return err
		}
	}
	return vm.ds.align()
}

// inlineString reads the length+bytes compiled by compileString at
// ip and advances ip past them, returning the address and length of
// the (not copied) string bytes.
func (vm *VM) inlineString() (Cell, Cell, error) {
	n, err := vm.readCell(vm.ip)
	if err != nil {
		return 0, 0, err
	}
	addr := vm.ip + cellSize
	vm.ip = aligned(addr + n)
	return addr, n, nil
}

// (loop) advances an innermost counted-DO loop's index by one. The
// flag it leaves follows (zbranch)'s convention (zero means "keep
// going"), so LOOP can compile a plain (zbranch) right after it to
// jump back to the top of the loop.
func (vm *VM) loopNext() error {
	index, err := vm.rstack.pop()
	if err != nil {
		return rstackError(err)
	}
	limit, err := vm.rstack.pop()
	if err != nil {
		return rstackError(err)
	}
	index++
	if sCell(index) < sCell(limit) {
		if err := vm.rstack.push(limit); err != nil {
			return rstackError(err)
		}
		if err := vm.rstack.push(index); err != nil {
			return rstackError(err)
		}
		return vm.stack.push(forthFalse)
	}
	return vm.stack.push(forthTrue)
}

// (+loop) is (loop)'s +LOOP counterpart: it advances the index by the
// signed amount on top of the stack instead of by one, and detects
// loop termination by whether limit-index changed sign, so it works
// for both ascending and descending steps.
func (vm *VM) plusLoopNext() error {
	n, err := vm.stack.pop()
	if err != nil {
		return err
	}
	index, err := vm.rstack.pop()
	if err != nil {
		return rstackError(err)
	}
	limit, err := vm.rstack.pop()
	if err != nil {
		return rstackError(err)
	}
	newIndex := index + n
	before := sCell(index) - sCell(limit)
	after := sCell(newIndex) - sCell(limit)
	crossed := (before < 0) != (after < 0)
	if !crossed {
		if err := vm.rstack.push(limit); err != nil {
			return rstackError(err)
		}
		if err := vm.rstack.push(newIndex); err != nil {
			return rstackError(err)
		}
		return vm.stack.push(forthFalse)
	}
	return vm.stack.push(forthTrue)
}

// 2>r ( x1 x2 -- ) ( R: -- x1 x2 )
func (vm *VM) twoToR() error {
	x2, err := vm.stack.pop()
	if err != nil {
		return err
	}
	x1, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if err := vm.rstack.push(x1); err != nil {
		return rstackError(err)
	}
	return rstackError(vm.rstack.push(x2))
}

// 2r> ( -- x1 x2 ) ( R: x1 x2 -- )
func (vm *VM) twoRFrom() error {
	x2, err := vm.rstack.pop()
	if err != nil {
		return rstackError(err)
	}
	x1, err := vm.rstack.pop()
	if err != nil {
		return rstackError(err)
	}
	vm.stack.push(x1)
	return vm.stack.push(x2)
}

// 2r@ ( -- x1 x2 ) ( R: x1 x2 -- x1 x2 )
func (vm *VM) twoRFetch() error {
	l := len(vm.rstack)
	if l < 2 {
		return rstackError(StackUnderflow)
	}
	vm.stack.push(vm.rstack[l-2])
	return vm.stack.push(vm.rstack[l-1])
}

// 2rdrop ( R: x1 x2 -- )
func (vm *VM) twoRDrop() error {
	if _, err := vm.rstack.pop(); err != nil {
		return rstackError(err)
	}
	_, err := vm.rstack.pop()
	return rstackError(err)
}

// unloop ( R: limit index -- ): drop a DO loop's return-stack frame
// early, before an EXIT taken from inside the loop body.
func (vm *VM) unloopWord() error {
	return vm.twoRDrop()
}

func (vm *VM) stashString(addr Cell, s string) error {
	if Cell(len(s)) > parseBufSize {
		return vm.fault(DataSpaceOverflow)
	}
	for i := 0; i < len(s); i++ {
		if err := vm.writeByte(addr+Cell(i), Cell(s[i])); err != nil {
			return err
		}
	}
	return nil
}
