// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth

func (vm *VM) registerArithmeticPrimitives() {
	vm.defPrim("=", false, (*VM).equals)
	vm.defPrim("<>", false, (*VM).notEquals)
	vm.defPrim("<", false, (*VM).lessThan)
	vm.defPrim(">", false, (*VM).greaterThan)
	vm.defPrim("u<", false, (*VM).uLessThan)
	vm.defPrim("u>", false, (*VM).uGreaterThan)
	vm.defPrim("0<", false, (*VM).zeroLess)
	vm.defPrim("0>", false, (*VM).zeroGreater)
	vm.defPrim("0=", false, (*VM).zeroEquals)
	vm.defPrim("0<>", false, (*VM).zeroNotEquals)
	vm.defPrim("invert", false, (*VM).invert)
	vm.defPrim("and", false, (*VM).and)
	vm.defPrim("or", false, (*VM).or)
	vm.defPrim("xor", false, (*VM).xor)
	vm.defPrim("lshift", false, (*VM).lShift)
	vm.defPrim("rshift", false, (*VM).rShift)
	vm.defPrim("2*", false, (*VM).twoStar)
	vm.defPrim("2/", false, (*VM).twoSlash)
	vm.defPrim("1+", false, (*VM).onePlus)
	vm.defPrim("1-", false, (*VM).oneMinus)
	vm.defPrim("+", false, (*VM).plus)
	vm.defPrim("-", false, (*VM).minus)
	vm.defPrim("*", false, (*VM).star)
	vm.defPrim("/", false, (*VM).slash)
	vm.defPrim("mod", false, (*VM).mod)
	vm.defPrim("/mod", false, (*VM).slashMod)
	vm.defPrim("*/", false, (*VM).starSlash)
	vm.defPrim("*/mod", false, (*VM).starSlashMod)
	vm.defPrim("negate", false, (*VM).negate)
}

func (vm *VM) unaryOp(op func(c Cell) Cell) error {
	c, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.stack.push(op(c))
}

func (vm *VM) binaryOp(op func(x, y Cell) Cell) error {
	x, y, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	return vm.stack.push(op(x, y))
}

// = ( x1 x2 -- flag )
func (vm *VM) equals() error {
	return vm.binaryOp(func(x, y Cell) Cell { return flag(x == y) })
}

// <> ( x1 x2 -- flag )
func (vm *VM) notEquals() error {
	return vm.binaryOp(func(x, y Cell) Cell { return flag(x != y) })
}

// < ( n1 n2 -- flag )
func (vm *VM) lessThan() error {
	return vm.binaryOp(func(x, y Cell) Cell { return flag(sCell(x) < sCell(y)) })
}

// > ( n1 n2 -- flag )
func (vm *VM) greaterThan() error {
	return vm.binaryOp(func(x, y Cell) Cell { return flag(sCell(x) > sCell(y)) })
}

// u< ( u1 u2 -- flag )
func (vm *VM) uLessThan() error {
	return vm.binaryOp(func(x, y Cell) Cell { return flag(x < y) })
}

// u> ( u1 u2 -- flag )
func (vm *VM) uGreaterThan() error {
	return vm.binaryOp(func(x, y Cell) Cell { return flag(x > y) })
}

// 0< ( n -- flag )
func (vm *VM) zeroLess() error {
	return vm.unaryOp(func(c Cell) Cell { return flag(sCell(c) < 0) })
}

// 0> ( n -- flag )
func (vm *VM) zeroGreater() error {
	return vm.unaryOp(func(c Cell) Cell { return flag(sCell(c) > 0) })
}

// 0= ( x -- flag )
func (vm *VM) zeroEquals() error {
	return vm.unaryOp(func(c Cell) Cell { return flag(c == forthFalse) })
}

// 0<> ( x -- flag )
func (vm *VM) zeroNotEquals() error {
	return vm.unaryOp(func(c Cell) Cell { return flag(c != forthFalse) })
}

// invert ( x1 -- x2 )
func (vm *VM) invert() error {
	return vm.unaryOp(func(c Cell) Cell { return ^c })
}

// and ( x1 x2 -- x3 )
func (vm *VM) and() error { return vm.binaryOp(func(x, y Cell) Cell { return x & y }) }

// or ( x1 x2 -- x3 )
func (vm *VM) or() error { return vm.binaryOp(func(x, y Cell) Cell { return x | y }) }

// xor ( x1 x2 -- x3 )
func (vm *VM) xor() error { return vm.binaryOp(func(x, y Cell) Cell { return x ^ y }) }

// lshift ( x1 u -- x2 )
func (vm *VM) lShift() error { return vm.binaryOp(func(x, y Cell) Cell { return x << y }) }

// rshift ( x1 u -- x2 )
func (vm *VM) rShift() error { return vm.binaryOp(func(x, y Cell) Cell { return x >> y }) }

// 2* ( x1 -- x2 )
func (vm *VM) twoStar() error { return vm.unaryOp(func(c Cell) Cell { return c << 1 }) }

// 2/ ( x1 -- x2 )
func (vm *VM) twoSlash() error {
	return vm.unaryOp(func(c Cell) Cell { return Cell(sCell(c) / 2) })
}

// 1+ ( n1|u1 -- n2|u2 )
func (vm *VM) onePlus() error { return vm.unaryOp(func(c Cell) Cell { return c + 1 }) }

// 1- ( n1|u1 -- n2|u2 )
func (vm *VM) oneMinus() error { return vm.unaryOp(func(c Cell) Cell { return c - 1 }) }

// + ( n1|u1 n2|u2 -- n3|u3 )
func (vm *VM) plus() error { return vm.binaryOp(func(x, y Cell) Cell { return x + y }) }

// - ( n1|u1 n2|u2 -- n3|u3 )
func (vm *VM) minus() error { return vm.binaryOp(func(x, y Cell) Cell { return x - y }) }

// * ( n1|u1 n2|u2 -- n3|u3 )
func (vm *VM) star() error { return vm.binaryOp(func(x, y Cell) Cell { return x * y }) }

// / ( n1 n2 -- n3 )
func (vm *VM) slash() error {
	x, y, err := vm.stack.pop2()
	switch {
	case err != nil:
		return err
	case y == 0:
		return vm.fault(ZeroDivision)
	}
	return vm.stack.push(Cell(sCell(x) / sCell(y)))
}

// mod ( n1 n2 -- n3 )
func (vm *VM) mod() error {
	x, y, err := vm.stack.pop2()
	switch {
	case err != nil:
		return err
	case y == 0:
		return vm.fault(ZeroDivision)
	}
	return vm.stack.push(Cell(sCell(x) % sCell(y)))
}

// /mod ( n1 n2 -- n3 n4 )
func (vm *VM) slashMod() error {
	x, y, err := vm.stack.pop2()
	switch {
	case err != nil:
		return err
	case y == 0:
		return vm.fault(ZeroDivision)
	}
	vm.stack.push(Cell(sCell(x) % sCell(y)))
	return vm.stack.push(Cell(sCell(x) / sCell(y)))
}

// */ ( n1 n2 n3 -- n4 )
func (vm *VM) starSlash() error {
	if err := vm.stack.need(3, 0); err != nil {
		return err
	}
	c, _ := vm.stack.pop()
	if c == 0 {
		return vm.fault(ZeroDivision)
	}
	a, b, _ := vm.stack.pop2()
	return vm.stack.push(Cell(sCell(a) * sCell(b) / sCell(c)))
}

// */mod ( n1 n2 n3 -- n4 n5 )
func (vm *VM) starSlashMod() error {
	if err := vm.stack.need(3, 0); err != nil {
		return err
	}
	c, _ := vm.stack.pop()
	if c == 0 {
		return vm.fault(ZeroDivision)
	}
	a, b, _ := vm.stack.pop2()
	vm.stack.push(Cell(sCell(a) * sCell(b) % sCell(c)))
	return vm.stack.push(Cell(sCell(a) * sCell(b) / sCell(c)))
}

// negate ( n1 -- n2 )
func (vm *VM) negate() error {
	return vm.unaryOp(func(c Cell) Cell { return Cell(-sCell(c)) })
}
