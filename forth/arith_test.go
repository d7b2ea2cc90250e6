// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth

import "testing"

func TestArithmeticPrimitives(t *testing.T) {
	runCases(t, []vmCase{
		{name: "add", src: "2 3 +", wantStack: []int64{5}},
		{name: "subtract", src: "5 3 -", wantStack: []int64{2}},
		{name: "multiply", src: "4 5 *", wantStack: []int64{20}},
		{name: "divide truncates toward zero", src: "-7 2 /", wantStack: []int64{-3}},
		{name: "mod takes the dividend's sign", src: "-7 2 mod", wantStack: []int64{-1}},
		{name: "slash-mod", src: "7 2 /mod", wantStack: []int64{1, 3}},
		{name: "negate", src: "5 negate", wantStack: []int64{-5}},
		{name: "equal true", src: "3 3 =", wantStack: []int64{-1}},
		{name: "equal false", src: "3 4 =", wantStack: []int64{0}},
		{name: "less-than", src: "3 4 <", wantStack: []int64{-1}},
		{name: "zero-divide traps", src: "1 0 /", wantErr: true},
	})
}

func TestSlashModMatchesSlashAndMod(t *testing.T) {
	runCases(t, []vmCase{
		{name: "quotient half matches slash", src: "-7 2 /mod swap", wantStack: []int64{-3, -1}},
	})
}
