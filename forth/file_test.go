// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package forth

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIncluded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "greeting.fs")
	require.NoError(t, os.WriteFile(path, []byte(`." included ok"`+"\n"), 0o644))

	vm, out := newTestVM(t)
	err := vm.evaluate(`s" ` + path + `" included`)
	require.NoError(t, err)
	require.Equal(t, "included ok", out.String())
}

func TestIncludedShebangLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.fs")
	src := "#!/usr/bin/env forego\n" + `." ran"` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	vm, out := newTestVM(t)
	err := vm.evaluate(`s" ` + path + `" included`)
	require.NoError(t, err)
	require.Equal(t, "ran", out.String())
}

func TestOpenWriteReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")

	vm, _ := newTestVM(t)
	src := `
s" ` + path + `" 1 open-file drop
dup s" hello" rot write-line drop
close-file drop
`
	require.NoError(t, vm.evaluate(src))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(b), "hello"))
}

func TestIncludedNestingTooDeep(t *testing.T) {
	dir := t.TempDir()
	// chain of maxIncludeDepth+1 files, each INCLUDEing the next; the
	// innermost is a dead end so a nesting failure is the only way
	// this can end.
	var paths []string
	for i := 0; i <= maxIncludeDepth; i++ {
		paths = append(paths, filepath.Join(dir, "lvl"+strconv.Itoa(i)+".fs"))
	}
	for i, p := range paths {
		var body string
		if i+1 < len(paths) {
			body = `s" ` + paths[i+1] + `" included` + "\n"
		} else {
			body = `." unreachable"` + "\n"
		}
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}

	vm, _ := newTestVM(t)
	err := vm.evaluate(`s" ` + paths[0] + `" included`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nesting too deep")
	require.NotContains(t, err.Error(), "data space overflow")
}

func TestArgWords(t *testing.T) {
	var out bytes.Buffer
	vm, err := NewVM(strings.NewReader(""), &out, WithArgs([]string{"one", "two"}))
	require.NoError(t, err)
	require.NoError(t, vm.evaluate("#arg"))
	require.Equal(t, Cell(2), vm.stack[len(vm.stack)-1])
}
