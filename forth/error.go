// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth

import (
	"github.com/pkg/errors"
)

// Errno classifies a VM trap. It carries no context; *Error pairs it
// with the offending word and any extra detail.
type Errno int

const (
	Bye = Errno(iota)
	Quit
	EOF
	StackOverflow
	StackUnderflow
	RStackOverflow
	RStackUnderflow
	IllegalInstruction
	IllegalAddress
	UnalignedAddress
	DataSpaceOverflow
	ZeroDivision
	UnrecognizedWord
	MalformedNumber
	UserAbort
	DelimiterNotFound
	ExitOutsideDefinition
	IncludeNestingTooDeep
	IOError
)

var strErrno = []string{
	"BYE",
	"QUIT",
	"EOF",
	"stack overflow",
	"stack underflow",
	"return stack overflow",
	"return stack underflow",
	"illegal instruction",
	"illegal address",
	"unaligned address",
	"data space overflow",
	"zero divisor",
	"unrecognized word",
	"malformed number",
	"aborted",
	"delimiter not found",
	"not executing a definition",
	"nesting too deep",
	"I/O error",
}

func (e Errno) Error() string {
	return strErrno[e]
}

// rstackError remaps a data-stack errno to its return-stack
// counterpart, so the same push/pop helpers can serve both stacks.
func rstackError(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := errors.Cause(err).(Errno); ok {
		switch e {
		case StackOverflow:
			return RStackOverflow
		case StackUnderflow:
			return RStackUnderflow
		}
	}
	return err
}

// Error describes a trapped abort: the word that raised it, why, and
// enough context (address, stack snapshot) for a caller to report it
// or for tooling to inspect it post-mortem.
type Error struct {
	Word   string // name of the word that raised the trap, "" if none
	Errno  Errno
	Err    error // wrapped I/O error when Errno is IOError
	Addr   Cell  // address given to faultAddr; 0 when raised through fault
	Stack  []Cell
	RStack []Cell
}

func (e *Error) Error() string {
	detail := e.Errno.Error()
	switch {
	case e.Err != nil:
		detail = e.Err.Error()
	case e.Errno == UserAbort:
		// a bare ABORT carries no message of its own; "aborted" is
		// strErrno's name for the trap, not text ABORT ever promised
		// to print.
		detail = ""
	}
	if e.Word == "" {
		return detail
	}
	if detail == "" {
		return e.Word
	}
	return e.Word + ": " + detail
}

// Unwrap lets errors.Is/errors.As see through to the underlying I/O
// error or Errno.
func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Errno
}

func (vm *VM) fault(errno Errno) error {
	return vm.faultAddr(errno, 0)
}

func (vm *VM) faultAddr(errno Errno, addr Cell) error {
	return &Error{
		Word:   vm.wordName(vm.executing),
		Errno:  errno,
		Addr:   addr,
		Stack:  append([]Cell(nil), vm.stack...),
		RStack: append([]Cell(nil), vm.rstack...),
	}
}

func (vm *VM) faultIO(err error) error {
	return &Error{
		Word:  vm.wordName(vm.executing),
		Errno: IOError,
		Err:   errors.Wrap(err, "I/O"),
	}
}

// abortMessage reports a user-level abort (ABORT / ABORT") that
// carries its own message and no word-name prefix.
func abortMessage(msg string) error {
	e := &Error{Errno: UserAbort}
	if msg != "" {
		e.Err = errors.New(msg)
	}
	return e
}

func (vm *VM) wordName(xt Cell) string {
	if xt >= Cell(len(vm.dict.entries)) {
		return ""
	}
	return vm.dict.entries[xt].name
}

// fatalf builds a plain error for a missing kernel word or a broken
// thread. Returned from NewVM (a category-6 initialization fault) it
// makes main exit nonzero; raised while a word runs, Run reports it
// like any other abort and keeps reading input.
func fatalf(format string, a ...interface{}) error {
	return errors.Errorf(format, a...)
}
