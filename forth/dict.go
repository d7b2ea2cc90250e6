// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth


// code classifies how a dictionary entry's behavior is realized, per
// the closed set the inner interpreter dispatches on.
type code uint8

const (
	codePrimitive code = iota
	codeColon
	codeCreate
	codeDoes
)

const (
	flagImmediate = 1 << 0
	flagHidden    = 1 << 1
)

// entry is one dictionary record. Entries are never relocated or
// removed; a dictionary is an append-only slice of entries and an xt
// is simply the stable index of one.
type entry struct {
	name  string
	code  code
	prim  int  // index into vm.primitives, meaningful when code == codePrimitive
	param Cell // data-field address (codeCreate/codeDoes) or unused (codeColon)
	does  Cell // thread start address: colon body, or the DOES> clause once converted
	flags uint8
}

func (e *entry) immediate() bool { return e.flags&flagImmediate != 0 }
func (e *entry) hidden() bool    { return e.flags&flagHidden != 0 }

// dictionary is the append-only collection of entries. xt values are
// indices into entries and remain valid for the lifetime of the VM.
type dictionary struct {
	entries []entry
}

// create appends a new entry and returns its xt. The caller fills in
// code/param/does/flags afterward; create only reserves the slot and
// name so FIND can see it (hidden, if the caller wants it invisible
// until defined).
func (d *dictionary) create(name string, c code, hidden bool) Cell {
	var flags uint8
	if hidden {
		flags = flagHidden
	}
	d.entries = append(d.entries, entry{name: name, code: c, flags: flags})
	return Cell(len(d.entries) - 1)
}

func (d *dictionary) latest() Cell {
	return Cell(len(d.entries) - 1)
}

func (d *dictionary) get(xt Cell) *entry {
	return &d.entries[xt]
}

// find looks up name case-insensitively, newest entry first, skipping
// hidden and empty-named entries. ok reports whether the most recent
// match is non-hidden and findable.
func (d *dictionary) find(name string) (xt Cell, ok bool) {
	for i := len(d.entries) - 1; i >= 0; i-- {
		e := &d.entries[i]
		if e.name == "" || e.hidden() {
			continue
		}
		if asciiEqualFold(e.name, name) {
			return Cell(i), true
		}
	}
	return 0, false
}

// toUpperASCII folds ASCII letters only; non-ASCII bytes pass through
// untouched, per the kernel's ASCII-only case-folding rule.
func toUpperASCII(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if toUpperASCII(a[i]) != toUpperASCII(b[i]) {
			return false
		}
	}
	return true
}
