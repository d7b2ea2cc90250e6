// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueDeferIs(t *testing.T) {
	runCases(t, []vmCase{
		{
			name:      "value reads like a variable's fetched contents",
			src:       "5 value foo foo foo +",
			wantStack: []int64{10},
		},
		{
			name:    "defer with no is set aborts",
			src:     "defer act act",
			wantErr: true,
		},
		{
			name:      "is rewires a deferred word to a given xt",
			src:       ": double dup + ; defer act ' double is act 21 act",
			wantStack: []int64{42},
		},
		{
			name: "is can rewire a deferred word again",
			src: ": double dup + ; : triple dup dup + + ; defer act " +
				"' double is act ' triple is act 5 act",
			wantStack: []int64{15},
		},
	})
}

func TestCharsIsIdentity(t *testing.T) {
	runCases(t, []vmCase{
		{name: "chars", src: "7 chars", wantStack: []int64{7}},
	})
}

func TestSeeReportsDefinitions(t *testing.T) {
	vm, out := newTestVM(t)
	require.NoError(t, vm.evaluate(": square dup * ; see square"))

	got := out.String()
	for _, want := range []string{": square", "dup", "*", ";"} {
		require.Contains(t, got, want)
	}
}

func TestSeePrimitiveAndCreated(t *testing.T) {
	vm, out := newTestVM(t)
	require.NoError(t, vm.evaluate("see drop"))
	require.Contains(t, strings.ToLower(out.String()), "primitive")

	out.Reset()
	require.NoError(t, vm.evaluate("variable v see v"))
	require.Contains(t, out.String(), "data field")
}
