// Copyright 2011, 2013 Vadim Vygonets. All rights reserved.
// Use of this source code is governed by the Bugroff
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"sour.is/x/log"

	"forego/forth"
)

var (
	dataSpace = flag.Int("dataspace", 0, "data-space size in bytes (0: kernel default)")
	stackSize = flag.Int("stack", 0, "data/return stack depth in cells (0: kernel default)")
	trace     = flag.Bool("trace", false, "trace every primitive execution to stdout")
	verbose   = flag.Bool("v", false, "enable informational logging")
	history   = flag.String("history", "", "readline history file (default: no persistent history)")
)

func main() {
	flag.Parse()
	if *verbose {
		log.SetVerbose(log.Vinfo)
	}

	files, args := splitArgs(flag.Args())

	opts := []forth.Option{forth.WithArgs(args)}
	if *dataSpace > 0 {
		opts = append(opts, forth.WithDataSpaceSize(*dataSpace))
	}
	if *stackSize > 0 {
		opts = append(opts, forth.WithStackDepth(*stackSize))
	}
	if *trace {
		opts = append(opts, forth.WithTrace(true))
	}

	in, closeIn, err := inputSource(files)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeIn()

	vm, err := forth.NewVM(in, os.Stdout, opts...)
	if err != nil {
		log.Error(err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := vm.Run(); err != nil {
		log.Error(err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// splitArgs separates the files-to-include from the arguments exposed
// to Forth code via #ARG/ARG: everything up to a bare "--" is a file
// to INCLUDED before the interactive session starts, everything after
// it is left for the running program to inspect.
func splitArgs(argv []string) (files, rest []string) {
	for i, a := range argv {
		if a == "--" {
			return argv[:i], argv[i+1:]
		}
	}
	return argv, nil
}

// inputSource builds the VM's top-level input stream: one "S" file"
// INCLUDED" line per file named on the command line, feeding INTERPRET
// exactly as if they'd been typed, followed by the interactive front
// end. teardown restores the terminal, if raw mode was entered.
func inputSource(files []string) (r io.Reader, teardown func(), err error) {
	var boot strings.Builder
	for _, f := range files {
		fmt.Fprintf(&boot, "s\" %s\" included\n", f)
	}

	interactive, teardown := terminalSource()
	if boot.Len() == 0 {
		return interactive, teardown, nil
	}
	return io.MultiReader(strings.NewReader(boot.String()), interactive), teardown, nil
}

// terminalSource picks readline (history, line editing) when stdin is
// a terminal, falling back to plain buffered stdin otherwise -- e.g.
// when input is piped in from a file or another process.
func terminalSource() (io.Reader, func()) {
	if !readline.IsTerminal(int(os.Stdin.Fd())) {
		return os.Stdin, func() {}
	}

	cfg := &readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "bye",
	}
	if *history != "" {
		cfg.HistoryFile = *history
	}
	l, err := readline.NewEx(cfg)
	if err != nil {
		log.Error(err)
		return os.Stdin, func() {}
	}
	// readline already owns raw-mode transitions on this fd and
	// restores them on Close; a second setRawIO here would snapshot
	// readline's own raw termios as "original" and restore that
	// instead of the shell's.
	return &readlineReader{l: l}, func() {
		l.Close()
	}
}

// readlineReader adapts a *readline.Instance to io.Reader so the VM's
// ordinary REFILL/line-buffered machinery can drive it the same way it
// drives a file or a pipe; the VM never needs to know the difference.
type readlineReader struct {
	l   *readline.Instance
	buf []byte
}

func (r *readlineReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		line, err := r.l.Readline()
		switch err {
		case nil:
			r.buf = append([]byte(line), '\n')
		case readline.ErrInterrupt:
			r.buf = []byte("\n")
		case io.EOF:
			return 0, io.EOF
		default:
			return 0, err
		}
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
