// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth

import "testing"

func TestStackPickRoll(t *testing.T) {
	cases := []struct {
		name string
		size int
		from int
		in   []Cell
		want []Cell
	}{
		{"pick-0-is-dup", 1, 0, []Cell{1, 2, 3}, []Cell{1, 2, 3, 3}},
		{"pick-1-is-over", 1, 1, []Cell{1, 2, 3}, []Cell{1, 2, 3, 2}},
		{"roll-1-is-swap", 1, 1, []Cell{1, 2, 3}, []Cell{1, 3, 2}},
		{"roll-2-is-rot", 1, 2, []Cell{1, 2, 3}, []Cell{2, 3, 1}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			s := newStack(16)
			s = append(s, c.in...)
			var err error
			if c.name[:4] == "pick" {
				err = s.pick(c.size, c.from)
			} else {
				err = s.roll(c.size, c.from)
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(s) != len(c.want) {
				t.Fatalf("got %v, want %v", s, c.want)
			}
			for i := range s {
				if s[i] != c.want[i] {
					t.Fatalf("got %v, want %v", s, c.want)
				}
			}
		})
	}
}

func TestStackUnderflowOverflow(t *testing.T) {
	s := newStack(2)
	if err := s.push(1); err != nil {
		t.Fatal(err)
	}
	if err := s.push(2); err != nil {
		t.Fatal(err)
	}
	if err := s.push(3); err != StackOverflow {
		t.Fatalf("got %v, want StackOverflow", err)
	}
	if _, err := s.pop(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.pop(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.pop(); err != StackUnderflow {
		t.Fatalf("got %v, want StackUnderflow", err)
	}
}
