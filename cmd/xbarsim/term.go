// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"bytes"
	"io"
	"os"
)

var (
	boldOn  = []byte("\033[1m")
	boldOff = []byte("\033[0m")
)

// transcript writes kernel messages, highlighting errors when writing to a
// terminal.
//
type transcript struct {
	w    io.Writer
	bold bool
}

func newTranscript(f *os.File) io.Writer {
	return &transcript{w: f, bold: isTerminal(f)}
}

func (t *transcript) Write(p []byte) (int, error) {
	if !t.bold || !bytes.HasPrefix(p, []byte("** ")) {
		return t.w.Write(p)
	}
	var b bytes.Buffer
	line := bytes.TrimSuffix(p, []byte("\n"))
	b.Write(boldOn)
	b.Write(line)
	b.Write(boldOff)
	b.Write(p[len(line):])
	if _, err := t.w.Write(b.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}
