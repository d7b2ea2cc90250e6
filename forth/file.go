// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// openFile pairs a file handle with the buffered reader READ-LINE and
// INCLUDE-FILE need; fileid on the Forth side is its 0-based index
// into vm.files plus one, so 0 can stay reserved as "no file".
type openFile struct {
	f *os.File
	r *bufio.Reader
}

// File access family codes, matching the values used by fam-aware
// Forth systems: read-only, write-only (create/truncate), read-write
// (create if missing).
const (
	famRO = 0
	famWO = 1
	famRW = 2
)

func (vm *VM) registerFilePrimitives() {
	vm.defPrim("open-file", false, (*VM).openFileWord)
	vm.defPrim("close-file", false, (*VM).closeFileWord)
	vm.defPrim("read-file", false, (*VM).readFileWord)
	vm.defPrim("read-line", false, (*VM).readLineWord)
	vm.defPrim("write-file", false, (*VM).writeFileWord)
	vm.defPrim("write-line", false, (*VM).writeLineWord)
	vm.defPrim("include-file", false, (*VM).includeFileWord)
	vm.defPrim("included", false, (*VM).includedWord)
	vm.defPrim("#arg", false, (*VM).argCount)
	vm.defPrim("arg", false, (*VM).argWord)
}

func (vm *VM) allocFile(of *openFile) Cell {
	for i, slot := range vm.files {
		if slot == nil {
			vm.files[i] = of
			return Cell(i + 1)
		}
	}
	vm.files = append(vm.files, of)
	return Cell(len(vm.files))
}

func (vm *VM) getFile(id Cell) (*openFile, bool) {
	i := int(id) - 1
	if i < 0 || i >= len(vm.files) || vm.files[i] == nil {
		return nil, false
	}
	return vm.files[i], true
}

// open-file ( c-addr u fam -- fileid ior )
func (vm *VM) openFileWord() error {
	fam, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, u, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	nameBytes, err := vm.ds.readSlice(a, u)
	if err != nil {
		return err
	}
	var flags int
	switch fam {
	case famRO:
		flags = os.O_RDONLY
	case famWO:
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case famRW:
		flags = os.O_RDWR | os.O_CREATE
	default:
		vm.stack.push(0)
		return vm.stack.push(1)
	}
	f, ferr := os.OpenFile(string(nameBytes), flags, 0644)
	if ferr != nil {
		vm.stack.push(0)
		return vm.stack.push(1)
	}
	id := vm.allocFile(&openFile{f: f, r: bufio.NewReader(f)})
	vm.stack.push(id)
	return vm.stack.push(0)
}

// close-file ( fileid -- ior )
func (vm *VM) closeFileWord() error {
	id, err := vm.stack.pop()
	if err != nil {
		return err
	}
	i := int(id) - 1
	if i < 0 || i >= len(vm.files) || vm.files[i] == nil {
		return vm.stack.push(1)
	}
	cerr := vm.files[i].f.Close()
	vm.files[i] = nil
	if cerr != nil {
		return vm.stack.push(1)
	}
	return vm.stack.push(0)
}

// read-file ( c-addr u1 fileid -- u2 ior )
func (vm *VM) readFileWord() error {
	id, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, u1, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	of, ok := vm.getFile(id)
	if !ok {
		vm.stack.push(0)
		return vm.stack.push(1)
	}
	buf := make([]byte, u1)
	n, rerr := of.r.Read(buf)
	for i := 0; i < n; i++ {
		if werr := vm.writeByte(a+Cell(i), Cell(buf[i])); werr != nil {
			return werr
		}
	}
	vm.stack.push(Cell(n))
	if rerr != nil && rerr != io.EOF {
		return vm.stack.push(1)
	}
	return vm.stack.push(0)
}

// read-line ( c-addr u1 fileid -- u2 flag ior )
func (vm *VM) readLineWord() error {
	id, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, u1, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	of, ok := vm.getFile(id)
	if !ok {
		vm.stack.push(0)
		vm.stack.push(forthFalse)
		return vm.stack.push(1)
	}
	line, rerr := of.r.ReadString('\n')
	if line == "" && rerr != nil {
		vm.stack.push(0)
		vm.stack.push(forthFalse)
		return vm.stack.push(0)
	}
	line = strings.TrimRight(line, "\r\n")
	if Cell(len(line)) > u1 {
		line = line[:u1]
	}
	for i := 0; i < len(line); i++ {
		if werr := vm.writeByte(a+Cell(i), Cell(line[i])); werr != nil {
			return werr
		}
	}
	vm.stack.push(Cell(len(line)))
	vm.stack.push(forthTrue)
	return vm.stack.push(0)
}

// write-file ( c-addr u fileid -- ior )
func (vm *VM) writeFileWord() error {
	id, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, u, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	of, ok := vm.getFile(id)
	if !ok {
		return vm.stack.push(1)
	}
	b, rerr := vm.ds.readSlice(a, u)
	if rerr != nil {
		return rerr
	}
	if _, werr := of.f.Write(b); werr != nil {
		return vm.stack.push(1)
	}
	return vm.stack.push(0)
}

// write-line ( c-addr u fileid -- ior )
func (vm *VM) writeLineWord() error {
	id, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, u, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	of, ok := vm.getFile(id)
	if !ok {
		return vm.stack.push(1)
	}
	b, rerr := vm.ds.readSlice(a, u)
	if rerr != nil {
		return rerr
	}
	if _, werr := of.f.Write(append(append([]byte(nil), b...), '\n')); werr != nil {
		return vm.stack.push(1)
	}
	return vm.stack.push(0)
}

// include-file ( fileid -- ): run an already-open file through
// INTERPRET line by line, as INCLUDED does for a path.
func (vm *VM) includeFileWord() error {
	id, err := vm.stack.pop()
	if err != nil {
		return err
	}
	of, ok := vm.getFile(id)
	if !ok {
		return abortMessage("INCLUDE-FILE: bad file-id")
	}
	return vm.included(of.f.Name(), of.f)
}

// included ( c-addr u -- ): open the named file, run it through
// INTERPRET line by line, nested under the current input source.
func (vm *VM) includedWord() error {
	a, u, err := vm.stack.pop2()
	if err != nil {
		return err
	}
	b, berr := vm.ds.readSlice(a, u)
	if berr != nil {
		return berr
	}
	name := string(b)
	f, oerr := os.Open(name)
	if oerr != nil {
		return vm.faultIO(oerr)
	}
	err = vm.included(name, f)
	f.Close()
	return err
}

// #arg ( -- n ): number of command-line arguments available via ARG.
func (vm *VM) argCount() error {
	return vm.stack.push(Cell(len(vm.args)))
}

// arg ( n -- c-addr u ): the n'th command-line argument, 0-indexed.
// Not an ANS Forth word.
func (vm *VM) argWord() error {
	n, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if int(n) < 0 || int(n) >= len(vm.args) {
		return abortMessage("ARG: out of range")
	}
	s := vm.args[n]
	if err := vm.stashString(vm.parseAddr, s); err != nil {
		return err
	}
	vm.stack.push(vm.parseAddr)
	return vm.stack.push(Cell(len(s)))
}
