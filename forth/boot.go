// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth

// bootcore is Forth source run once, at the end of NewVM, to build the
// control-flow and stack-shuffling words on top of the kernel's Go
// primitives. Nothing below needs to know how xts, the dictionary, or
// data space are represented; it's ordinary (if bootstrapping) Forth.
//
// Control words that need to compile a branch or a return-stack move
// into the definition they're being used in (IF, LOOP, DO, and kin)
// always do it via ['] xt compile, rather than naming the word
// directly. Naming (zbranch) or 2>r directly would run it right now,
// against whatever's on the stack while THIS word is being compiled,
// instead of emitting a call for later. Words that only ever poke at
// HERE and the data stack (THEN, BEGIN) don't need the dance.
//
// ?DO moves limit/index to the return stack unconditionally, then
// tests a copy of them (2R@, not 2DUP) so a zero-trip skip leaves the
// data stack exactly as it found it; the skip target lands on a
// 2RDROP that unwinds the now-unneeded return-stack frame. LOOP and
// +LOOP compile a (branch) around that 2RDROP for the loop's normal
// exit, since (loop)/(+loop) have already dropped the frame by then.
// This whole string runs through
// EVALUATE in one call, not line by line, so it can't carry \ comments
// of its own without truncating everything after them; this comment
// lives here instead.
var bootcore = `
: dup 0 pick ;
: over 1 pick ;
: swap 1 roll ;
: rot 2 roll ;
: -rot rot rot ;
: 2dup over over ;
: 2drop drop drop ;
: 2swap 3 roll 3 roll ;
: 2over 3 pick 3 pick ;

: cr 10 emit ;
: space bl emit ;

: if ['] (zbranch) compile, here 0 , ; immediate
: then here swap ! ; immediate
: else ['] (branch) compile, here 0 , swap here swap ! ; immediate

: begin here ; immediate
: again ['] (branch) compile, , ; immediate
: until ['] (zbranch) compile, , ; immediate
: ahead ['] (branch) compile, here 0 , ; immediate
: while ['] (zbranch) compile, here 0 , ; immediate
: repeat swap ['] (branch) compile, , here swap ! ; immediate
: spaces begin dup 0> while space 1- repeat drop ;

: do ['] 2>r compile, 0 here ; immediate
: ?do
  ['] 2>r compile,
  ['] 2r@ compile, ['] <> compile,
  ['] (zbranch) compile, here 0 ,
  here
; immediate
: loop
  ['] (loop) compile,
  ['] (zbranch) compile, ,
  dup if ['] (branch) compile, here 0 , swap here swap ! ['] 2rdrop compile, here swap ! else drop then
; immediate
: +loop
  ['] (+loop) compile,
  ['] (zbranch) compile, ,
  dup if ['] (branch) compile, here 0 , swap here swap ! ['] 2rdrop compile, here swap ! else drop then
; immediate
: i r> r@ swap >r ;

: abs dup 0< if negate then ;
: min 2dup < if drop else swap drop then ;
: max 2dup > if drop else swap drop then ;
: within over - >r - r> u< ;

: <= > invert ;
: >= < invert ;

: constant create , does> @ ;
-1 constant true
0 constant false
: [ 0 state ! ; immediate
: ] -1 state ! ;
: variable create 0 , ;
: value create , does> @ ;
: defer create ['] abort , does> @ execute ;
: is ' >body ! ;

: ? @ . ;
`
