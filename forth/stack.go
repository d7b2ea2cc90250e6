// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth

// stackDepth is the default capacity of a data or return stack.
const stackDepth = 256

// Stack is a fixed-capacity LIFO of cells. Every operation checks
// depth and headroom; violations are reported as errors rather than
// panics, so a trap can unwind cleanly to QUIT.
type Stack []Cell

func newStack(capacity int) Stack {
	return make(Stack, 0, capacity)
}

func (s *Stack) depth() Cell {
	return Cell(len(*s))
}

func (s *Stack) clear() {
	*s = (*s)[:0]
}

func (s *Stack) push(c Cell) error {
	if err := s.need(0, 1); err != nil {
		return err
	}
	*s = append(*s, c)
	return nil
}

func (s *Stack) pop() (Cell, error) {
	if err := s.need(1, 0); err != nil {
		return 0, err
	}
	c := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return c, nil
}

// pop2 pops two cells, returning (second-from-top, top) i.e. (x1, x2)
// for a stack holding ( x1 x2 -- ).
func (s *Stack) pop2() (Cell, Cell, error) {
	if err := s.need(2, 0); err != nil {
		return 0, 0, err
	}
	l := len(*s)
	x1, x2 := (*s)[l-2], (*s)[l-1]
	*s = (*s)[:l-2]
	return x1, x2, nil
}

func (s *Stack) peek() (Cell, error) {
	if err := s.need(1, 0); err != nil {
		return 0, err
	}
	return (*s)[len(*s)-1], nil
}

// pick copies the size cells starting from from cells below the top
// and re-pushes them. mnemonic: pick/roll <size> cells from depth <from>.
func (s *Stack) pick(size, from int) error {
	if err := s.need(from+size, size); err != nil {
		return err
	}
	l := len(*s)
	*s = append(*s, (*s)[l-from-size:l-from]...)
	return nil
}

func (s *Stack) roll(size, from int) error {
	if err := s.need(from+size, 0); err != nil {
		return err
	}
	var buf [stackDepth]Cell
	l := len(*s)
	copy(buf[:size], (*s)[l-from-size:l-from])
	copy((*s)[l-from-size:l-size], (*s)[l-from:])
	copy((*s)[l-size:], buf[:size])
	return nil
}
