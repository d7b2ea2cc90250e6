// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestVM builds a VM over an empty input (tests drive it purely
// through evaluate) and a buffer that captures everything EMIT/TYPE/.
// writes, so assertions can check interpreted output independent of
// Go-level return values.
func newTestVM(t *testing.T) (*VM, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	vm, err := NewVM(strings.NewReader(""), &out)
	require.NoError(t, err)
	return vm, &out
}

// vmCase is a fluent case: run src, then check the resulting data
// stack and captured output. Modeled on the feed-source/assert-result
// shape used for FORTH VM tests throughout the retrieved corpus.
type vmCase struct {
	name      string
	src       string
	wantStack []int64
	wantOut   string
	wantErr   bool
}

func runCases(t *testing.T, cases []vmCase) {
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			vm, out := newTestVM(t)
			err := vm.evaluate(c.src)
			if c.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if c.wantStack != nil {
				got := make([]int64, len(vm.stack))
				for i, c := range vm.stack {
					got[i] = int64(sCell(c))
				}
				assert.Equal(t, c.wantStack, got)
			}
			if c.wantOut != "" {
				assert.Equal(t, c.wantOut, out.String())
			}
		})
	}
}

func TestStackShuffling(t *testing.T) {
	runCases(t, []vmCase{
		{name: "dup", src: "1 dup", wantStack: []int64{1, 1}},
		{name: "drop", src: "1 2 drop", wantStack: []int64{1}},
		{name: "swap", src: "1 2 swap", wantStack: []int64{2, 1}},
		{name: "over", src: "1 2 over", wantStack: []int64{1, 2, 1}},
		{name: "rot", src: "1 2 3 rot", wantStack: []int64{2, 3, 1}},
		{name: "-rot", src: "1 2 3 -rot", wantStack: []int64{3, 1, 2}},
		{name: "2dup", src: "1 2 2dup", wantStack: []int64{1, 2, 1, 2}},
		{name: "2drop", src: "1 2 3 4 2drop", wantStack: []int64{1, 2}},
		{name: "2swap", src: "1 2 3 4 2swap", wantStack: []int64{3, 4, 1, 2}},
		{name: "2over", src: "1 2 3 4 2over", wantStack: []int64{1, 2, 3, 4, 1, 2}},
	})
}

func TestIfThenElse(t *testing.T) {
	runCases(t, []vmCase{
		{
			name:      "if-then taken",
			src:       ": f if 1 else 2 then ; -1 f",
			wantStack: []int64{1},
		},
		{
			name:      "if-then not taken",
			src:       ": f if 1 else 2 then ; 0 f",
			wantStack: []int64{2},
		},
		{
			name:      "if with no else",
			src:       ": f if 1 then ; 0 f",
			wantStack: []int64{},
		},
	})
}

func TestBeginLoops(t *testing.T) {
	runCases(t, []vmCase{
		{
			name:      "begin-until counts down",
			src:       ": f 3 begin dup 1- dup 0= until ; f",
			wantStack: []int64{3, 2, 1, 0},
		},
		{
			name:      "begin-while-repeat doubles until past 20",
			src:       ": f 1 begin dup 20 < while dup 2* repeat ; f",
			wantStack: []int64{1, 2, 4, 8, 16, 32},
		},
	})
}

func TestCountedLoops(t *testing.T) {
	runCases(t, []vmCase{
		{
			name:      "do-loop collects indices",
			src:       ": f 5 0 do i loop ; f",
			wantStack: []int64{0, 1, 2, 3, 4},
		},
		{
			name:      "plus-loop steps by two",
			src:       ": f 10 0 do i 2 +loop ; f",
			wantStack: []int64{0, 2, 4, 6, 8},
		},
		{
			name:      "question-do skips a zero-trip loop",
			src:       ": f 0 0 ?do i loop ; f",
			wantStack: []int64{},
		},
		{
			name:      "question-do runs a non-empty loop",
			src:       ": f 3 0 ?do i loop ; f",
			wantStack: []int64{0, 1, 2},
		},
	})
}

func TestDerivedWords(t *testing.T) {
	runCases(t, []vmCase{
		{name: "abs negative", src: "-5 abs", wantStack: []int64{5}},
		{name: "abs positive", src: "5 abs", wantStack: []int64{5}},
		{name: "min", src: "3 7 min", wantStack: []int64{3}},
		{name: "max", src: "3 7 max", wantStack: []int64{7}},
		{name: "within inside", src: "5 1 10 within", wantStack: []int64{-1}},
		{name: "within outside", src: "15 1 10 within", wantStack: []int64{0}},
		{name: "constant", src: "42 constant answer answer answer", wantStack: []int64{42, 42}},
		{name: "variable", src: "variable v 5 v ! v @ v @", wantStack: []int64{5, 5}},
	})
}

func TestRecurse(t *testing.T) {
	runCases(t, []vmCase{
		{
			name:      "factorial via recurse",
			src:       ": fact dup 1 > if dup 1- recurse * then ; 5 fact",
			wantStack: []int64{120},
		},
	})
}

func TestDotQuoteAndType(t *testing.T) {
	runCases(t, []vmCase{
		{name: `interpreted dot-quote`, src: `." hello"`, wantOut: "hello"},
		{
			name:    `compiled dot-quote`,
			src:     `: greet ." hi there" ; greet`,
			wantOut: "hi there",
		},
		{name: "dot-paren", src: `.( side effect)`, wantOut: "side effect"},
		{
			name:    "sliteral re-embeds an interpreted string",
			src:     `s" hi" : greet sliteral type ; greet`,
			wantOut: "hi",
		},
	})
}

func TestComments(t *testing.T) {
	runCases(t, []vmCase{
		{name: "backslash discards rest of line", src: "1 2 + \\ 3 4 +", wantStack: []int64{3}},
		{name: "paren comment is skipped", src: "1 ( this is ignored ) 2 +", wantStack: []int64{3}},
		{
			name:      "paren comment inside a definition",
			src:       ": f ( n -- n+1 ) 1+ ; 4 f",
			wantStack: []int64{5},
		},
		{
			name:      "hash-bang is an ordinary comment word, not just a file's first line",
			src:       "1 2 + #! 3 4 +",
			wantStack: []int64{3},
		},
	})
}

func TestPostpone(t *testing.T) {
	runCases(t, []vmCase{
		{
			// dup-into is immediate and made entirely of a postponed
			// non-immediate word, so using it inside f compiles a call
			// to dup right there in f's definition.
			name:      "postpone of a non-immediate word defers compiling a call to it",
			src:       `: dup-into postpone dup ; immediate : f 5 dup-into ; f`,
			wantStack: []int64{5, 5},
		},
		{
			// the classic ?exit idiom: ?exit is itself immediate, and its
			// body is entirely postponed words, so using ?exit inside f
			// expands to "if exit then" right there in f's definition.
			name:      "postpone of an immediate word defers running its compiling action",
			src:       `: ?exit postpone if postpone exit postpone then ; immediate : f dup 0> ?exit negate ; 5 f -5 f`,
			wantStack: []int64{5, 5},
		},
	})
}

func TestQuestionDoStackBalance(t *testing.T) {
	runCases(t, []vmCase{
		{
			name:      "zero-trip question-do leaves nothing behind",
			src:       ": f 9 9 9 9 ?do i loop ; f",
			wantStack: []int64{9, 9},
		},
	})
}

func TestRunPromptAndFinalNewline(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader(": square dup *\n; 7 square .\n")
	vm, err := NewVM(in, &out)
	require.NoError(t, err)
	require.NoError(t, vm.Run())

	got := out.String()
	assert.Equal(t, "49  ok\n\n", got,
		"no prompt after the first line, mid-definition; one after the line that closes it")
}

func TestBareAbortPrintsNothing(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("1 2 + abort\n1 1 + .\n")
	vm, err := NewVM(in, &out)
	require.NoError(t, err)
	require.NoError(t, vm.Run())

	got := out.String()
	assert.NotContains(t, got, "aborted")
	assert.Contains(t, got, "2  ok\n")
}

func TestAbortQuotePrintsOnlyItsMessage(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader(`-1 abort" gone wrong"` + "\n1 1 + .\n")
	vm, err := NewVM(in, &out)
	require.NoError(t, err)
	require.NoError(t, vm.Run())

	got := out.String()
	assert.Contains(t, got, "gone wrong")
	assert.NotContains(t, got, "aborted")
	assert.Contains(t, got, "2  ok\n")
}

func TestRunPromptAfterRecoverableError(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("1 0 / .\n1 1 + .\n")
	vm, err := NewVM(in, &out)
	require.NoError(t, err)
	require.NoError(t, vm.Run())

	got := out.String()
	assert.Contains(t, got, "zero divisor")
	assert.Contains(t, got, "2  ok\n")
}
