// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth

import "io"

// primitive pairs a primitive's name (for dictionary registration and
// tracing) with its host implementation.
type primitive struct {
	name string
	f    func(*VM) error
}

// defPrim registers f as a dictionary entry and appends it to the
// primitive table; immediate marks it to run during compilation.
func (vm *VM) defPrim(name string, immediate bool, f func(*VM) error) {
	idx := len(vm.primitives)
	vm.primitives = append(vm.primitives, primitive{name: name, f: f})
	xt := vm.dict.create(name, codePrimitive, false)
	e := vm.dict.get(xt)
	e.prim = idx
	if immediate {
		e.flags |= flagImmediate
	}
}

// registerPrimitives populates the dictionary with every host-
// implemented word, grouped by the component that owns it.
func (vm *VM) registerPrimitives() {
	vm.registerStackPrimitives()
	vm.registerMemoryPrimitives()
	vm.registerArithmeticPrimitives()
	vm.registerDictionaryPrimitives()
	vm.registerCompilerPrimitives()
	vm.registerInterpreterPrimitives()
	vm.registerFilePrimitives()
}

func (vm *VM) registerStackPrimitives() {
	vm.defPrim("exit", false, (*VM).exitWord)
	vm.defPrim("execute", false, (*VM).executeWord)
	vm.defPrim("pick", false, (*VM).pick)
	vm.defPrim("roll", false, (*VM).roll)
	vm.defPrim("depth", false, (*VM).depth)
	vm.defPrim("drop", false, (*VM).drop)
	vm.defPrim("2drop", false, (*VM).twoDrop)
	vm.defPrim("?dup", false, (*VM).questionDup)
	vm.defPrim("nip", false, (*VM).nip)
	vm.defPrim("tuck", false, (*VM).tuck)
	vm.defPrim(">r", false, (*VM).toR)
	vm.defPrim("r>", false, (*VM).rFrom)
	vm.defPrim("r@", false, (*VM).rFetch)
	vm.defPrim("rdrop", false, (*VM).rDrop)
}

func (vm *VM) registerMemoryPrimitives() {
	vm.defPrim("@", false, (*VM).fetch)
	vm.defPrim("!", false, (*VM).store)
	vm.defPrim("c@", false, (*VM).cFetch)
	vm.defPrim("c!", false, (*VM).cStore)
	vm.defPrim("2@", false, (*VM).twoFetch)
	vm.defPrim("2!", false, (*VM).twoStore)
	vm.defPrim("+!", false, (*VM).plusStore)
	vm.defPrim("count", false, (*VM).count)
	vm.defPrim("cmove", false, (*VM).cmove)
	vm.defPrim("cmove>", false, (*VM).cmoveUp)
	vm.defPrim("fill", false, (*VM).fillWord)
	vm.defPrim("compare", false, (*VM).compareWord)
	vm.defPrim("unused", false, (*VM).unused)
	vm.defPrim("here", false, (*VM).here)
	vm.defPrim("allot", false, (*VM).allotWord)
	vm.defPrim(",", false, (*VM).comma)
	vm.defPrim("c,", false, (*VM).ccomma)
	vm.defPrim("align", false, (*VM).align)
	vm.defPrim("aligned", false, (*VM).alignedWord)
	vm.defPrim("cells", false, (*VM).cells)
	vm.defPrim("cell+", false, (*VM).cellPlus)
	vm.defPrim("chars", false, (*VM).charsWord)
	vm.defPrim("char+", false, (*VM).charPlus)
	vm.defPrim("key", false, (*VM).key)
	vm.defPrim("emit", false, (*VM).emit)
	vm.defPrim("type", false, (*VM).typeWord)
	vm.defPrim("accept", false, (*VM).accept)
	vm.defPrim("bye", false, (*VM).bye)
	vm.defPrim("trace", false, (*VM).setTrace)
}

// exit ( -- ) ( R: nest-sys -- ): pop the return stack into ip. An
// empty return stack means EXIT ran with no enclosing colon frame.
func (vm *VM) exitWord() error {
	ip, err := vm.rstack.pop()
	if err == StackUnderflow {
		return vm.fault(ExitOutsideDefinition)
	}
	if err != nil {
		return err
	}
	vm.ip = ip
	return nil
}

// pick ( xu ... x1 x0 u -- xu ... x1 x0 xu )
func (vm *VM) pick() error {
	c, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.stack.pick(1, int(c))
}

// roll ( xu xu-1 ... x0 u -- xu-1 ... x0 xu )
func (vm *VM) roll() error {
	c, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.stack.roll(1, int(c))
}

// depth ( -- +n )
func (vm *VM) depth() error {
	return vm.stack.push(vm.stack.depth())
}

// drop ( x -- )
func (vm *VM) drop() error {
	_, err := vm.stack.pop()
	return err
}

// 2drop ( x1 x2 -- )
func (vm *VM) twoDrop() error {
	_, _, err := vm.stack.pop2()
	return err
}

// ?dup ( x -- 0 | x x )
func (vm *VM) questionDup() error {
	c, err := vm.stack.peek()
	if err != nil || c == forthFalse {
		return err
	}
	return vm.stack.push(c)
}

// nip ( x1 x2 -- x2 )
func (vm *VM) nip() error {
	if err := vm.stack.roll(1, 1); err != nil {
		return err
	}
	_, err := vm.stack.pop()
	return err
}

// tuck ( x1 x2 -- x2 x1 x2 )
func (vm *VM) tuck() error {
	if err := vm.stack.need(2, 1); err != nil {
		return err
	}
	vm.stack.pick(1, 0)
	return vm.stack.roll(2, 1)
}

// >r ( x -- ) ( R: -- x )
func (vm *VM) toR() error {
	c, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return rstackError(vm.rstack.push(c))
}

// r> ( -- x ) ( R: x -- )
func (vm *VM) rFrom() error {
	c, err := vm.rstack.pop()
	if err != nil {
		return rstackError(err)
	}
	return vm.stack.push(c)
}

// r@ ( -- x ) ( R: x -- x )
func (vm *VM) rFetch() error {
	c, err := vm.rstack.peek()
	if err != nil {
		return rstackError(err)
	}
	return vm.stack.push(c)
}

// rdrop ( R: x -- )
func (vm *VM) rDrop() error {
	_, err := vm.rstack.pop()
	return rstackError(err)
}

// @ ( a-addr -- x )
func (vm *VM) fetch() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	c, err := vm.readCell(a)
	if err != nil {
		return err
	}
	return vm.stack.push(c)
}

// ! ( x a-addr -- )
func (vm *VM) store() error {
	x, a, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	return vm.writeCell(a, x)
}

// c@ ( c-addr -- char )
func (vm *VM) cFetch() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	c, err := vm.readByte(a)
	if err != nil {
		return err
	}
	return vm.stack.push(c)
}

// c! ( char c-addr -- )
func (vm *VM) cStore() error {
	x, a, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	return vm.writeByte(a, x)
}

// 2@ ( a-addr -- x1 x2 )
func (vm *VM) twoFetch() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	hi, err := vm.readCell(a + cellSize)
	if err != nil {
		return err
	}
	vm.stack.push(hi)
	lo, err := vm.readCell(a)
	if err != nil {
		return err
	}
	return vm.stack.push(lo)
}

// 2! ( x1 x2 a-addr -- )
func (vm *VM) twoStore() error {
	if err := vm.stack.need(3, 0); err != nil {
		return err
	}
	x2, a, _ := vm.stack.pop2()
	if err := vm.writeCell(a, x2); err != nil {
		return err
	}
	x1, _ := vm.stack.pop()
	return vm.writeCell(a+cellSize, x1)
}

// +! ( n|u a-addr -- )
func (vm *VM) plusStore() error {
	n, a, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	v, err := vm.readCell(a)
	if err != nil {
		return err
	}
	return vm.writeCell(a, v+n)
}

// count ( c-addr1 -- c-addr2 u ): unpack a counted string.
func (vm *VM) count() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	n, err := vm.readByte(a)
	if err != nil {
		return err
	}
	vm.stack.push(a + 1)
	return vm.stack.push(n)
}

// cmove ( addr1 addr2 u -- )
func (vm *VM) cmove() error {
	if err := vm.stack.need(3, 0); err != nil {
		return err
	}
	a2, u, _ := vm.stack.pop2()
	a1, _ := vm.stack.pop()
	return vm.ds.cmove(a1, a2, u)
}

// cmove> ( addr1 addr2 u -- )
func (vm *VM) cmoveUp() error {
	if err := vm.stack.need(3, 0); err != nil {
		return err
	}
	a2, u, _ := vm.stack.pop2()
	a1, _ := vm.stack.pop()
	return vm.ds.cmoveUp(a1, a2, u)
}

// fill ( c-addr u char -- )
func (vm *VM) fillWord() error {
	if err := vm.stack.need(3, 0); err != nil {
		return err
	}
	u, c, _ := vm.stack.pop2()
	a, _ := vm.stack.pop()
	return vm.ds.fill(a, u, c)
}

// compare ( c-addr1 u1 c-addr2 u2 -- n )
func (vm *VM) compareWord() error {
	if err := vm.stack.need(4, 0); err != nil {
		return err
	}
	a2, u2, _ := vm.stack.pop2()
	a1, u1, _ := vm.stack.pop2()
	n, err := vm.ds.compare(a1, u1, a2, u2)
	if err != nil {
		return err
	}
	return vm.stack.push(Cell(n))
}

// unused ( -- u ): bytes remaining in data space.
func (vm *VM) unused() error {
	return vm.stack.push(Cell(len(vm.ds.mem)) - vm.ds.here)
}

// here ( -- addr )
func (vm *VM) here() error {
	return vm.stack.push(vm.ds.here)
}

// allot ( n -- )
func (vm *VM) allotWord() error {
	n, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.ds.allot(sCell(n))
}

// , ( x -- )
func (vm *VM) comma() error {
	x, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.ds.comma(x)
}

// c, ( char -- )
func (vm *VM) ccomma() error {
	x, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.ds.ccomma(x)
}

// align ( -- )
func (vm *VM) align() error {
	return vm.ds.align()
}

// aligned ( addr -- a-addr )
func (vm *VM) alignedWord() error {
	return vm.unaryOp(aligned)
}

// cells ( n1 -- n2 )
func (vm *VM) cells() error {
	return vm.unaryOp(func(c Cell) Cell { return c * cellSize })
}

// cell+ ( a-addr1 -- a-addr2 )
func (vm *VM) cellPlus() error {
	return vm.unaryOp(func(c Cell) Cell { return c + cellSize })
}

// char+ ( c-addr1 -- c-addr2 )
func (vm *VM) charPlus() error {
	return vm.unaryOp(func(c Cell) Cell { return c + 1 })
}

// chars ( n1 -- n2 ): a character occupies one address unit here, so
// this is the identity; kept as its own word since CELLS isn't.
func (vm *VM) charsWord() error {
	return vm.unaryOp(func(c Cell) Cell { return c })
}

// key ( -- char )
func (vm *VM) key() error {
	cur := vm.cur()
	if cur == nil || cur.reader == nil {
		return vm.fault(EOF)
	}
	b, err := cur.reader.ReadByte()
	switch err {
	case nil:
		return vm.stack.push(Cell(b))
	case io.EOF:
		return vm.fault(EOF)
	default:
		return vm.faultIO(err)
	}
}

// accept ( c-addr +n1 -- +n2 ): read up to n1 characters from the
// current input source into the buffer at c-addr, stopping at the
// first newline (consumed, not stored); n2 is the count actually
// stored.
func (vm *VM) accept() error {
	a, n1, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	cur := vm.cur()
	if cur == nil || cur.reader == nil {
		return vm.fault(EOF)
	}
	var n2 Cell
	for n2 < n1 {
		b, rerr := cur.reader.ReadByte()
		switch rerr {
		case nil:
		case io.EOF:
			return vm.stack.push(n2)
		default:
			return vm.faultIO(rerr)
		}
		if b == '\n' {
			break
		}
		if err := vm.writeByte(a+n2, Cell(b)); err != nil {
			return err
		}
		n2++
	}
	return vm.stack.push(n2)
}

// emit ( char -- )
func (vm *VM) emit() error {
	c, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if _, err = vm.out.Write([]byte{byte(c)}); err != nil {
		return vm.faultIO(err)
	}
	return nil
}

// type ( c-addr u -- )
func (vm *VM) typeWord() error {
	a, u, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	b, err := vm.ds.readSlice(a, u)
	if err != nil {
		return err
	}
	if _, err = vm.out.Write(b); err != nil {
		return vm.faultIO(err)
	}
	return nil
}

// trace ( flag -- )
func (vm *VM) setTrace() error {
	c, err := vm.stack.pop()
	if err != nil {
		return err
	}
	vm.debug = c != forthFalse
	return nil
}

// bye ( -- )
func (vm *VM) bye() error {
	return Bye
}
