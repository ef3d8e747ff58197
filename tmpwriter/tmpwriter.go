// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.

// Package tmpwriter writes a file next to its destination and moves it into
// place on Close, so readers never see a partial file.
package tmpwriter

import (
	"errors"
	"os"
	"path/filepath"
)

var errReset = errors.New("tmpwriter: reset")

type TmpWriter struct {
	file *os.File
	dst  string
	n    int
	err  error
}

// Start writing a replacement for dst.
func Make(dst string) (TmpWriter, error) {
	f, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return TmpWriter{}, err
	}
	return TmpWriter{file: f, dst: dst}, nil
}

func (w *TmpWriter) Write(b []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.file.Write(b)
	w.n += n
	w.err = err
	return n, err
}

func (w *TmpWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Bytes written so far.
func (w *TmpWriter) Len() int { return w.n }

// Abandon the file; dst is left untouched.
func (w *TmpWriter) Reset() {
	if w.file != nil {
		w.file.Close()
		os.Remove(w.file.Name())
		w.file = nil
	}
	w.err = errReset
}

// Move the finished file to dst.
func (w *TmpWriter) Close() error {
	if w.file == nil {
		return w.err
	}
	name := w.file.Name()
	err := w.file.Close()
	w.file = nil
	if err == nil {
		err = w.err
	}
	if err == nil {
		err = os.Rename(name, w.dst)
	}
	if err != nil {
		os.Remove(name)
	}
	return err
}
