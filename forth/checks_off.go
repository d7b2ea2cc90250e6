//go:build noruntimechecks

// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth

// checksEnabled is false in this build: bad addresses, misalignment,
// and stack over/underflow become host-level undefined behavior
// (an out-of-range slice access, most likely a panic) instead of a
// recoverable Forth abort. Matches CXXFORTH_SKIP_RUNTIME_CHECKS: a
// deliberate trade of safety for the last bit of dispatch speed.
const checksEnabled = false

func (d *dataSpace) checkRange(a, n Cell) error {
	return nil
}

func isAligned(a Cell) bool {
	return true
}

func (s *Stack) need(down, up int) error {
	return nil
}
