// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

// Package forth implements the Forego virtual machine: a threaded-code
// FORTH kernel with an append-only dictionary, two bounded stacks, and
// a flat data space.
//
// An execution token (xt) is the stable index of a dictionary entry,
// never a memory address; the dictionary never relocates or frees an
// entry, so an xt captured at compile time stays valid for the life of
// the VM. Each entry records how it runs:
//
//	codePrimitive	calls a Go function directly
//	codeCreate	pushes its data-field address
//	codeColon	pushes a return address, enters its compiled body
//	codeDoes	pushes its data-field address, then behaves like codeColon
//
// A compiled body is a sequence of cells in data space, each holding
// an xt (or, after (lit), a literal value). execute1 dispatches one
// xt per the table above; step fetches the cell at the instruction
// pointer, advances it, and calls execute1; executeTopLevel drives
// step in a loop bounded by return-stack depth, so Forth-level call
// depth costs return-stack slots, never Go stack frames.
//
// The kernel's own primitives cover memory, arithmetic, comparison,
// the return and data stacks, dictionary/compiler support, strings,
// and file access. Control flow (IF/THEN/ELSE, BEGIN .. UNTIL,
// DO .. LOOP, and the stack-shuffling words DUP/SWAP/ROT and kin) is
// not primitive: it's ordinary FORTH, compiled once from bootcore when
// a VM is created, the same way a hosted FORTH brings up its outer
// vocabulary from a kernel of a few dozen primitives.
package forth
