// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.
package book

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/HalCanary/noveldl/source"
	"github.com/HalCanary/noveldl/tmpwriter"
	"github.com/HalCanary/noveldl/unorm"
)

var (
	badfileRe    = regexp.MustCompile("[/\\\\?*|\"<>:]+")
	apostropheRe = regexp.MustCompile("[ʼ’‘]")
)

// File name, without extension, for a novel title.
func FileName(title string) string {
	name := apostropheRe.ReplaceAllString(badfileRe.ReplaceAllString(unorm.Normalize(title), "_"), "'")
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		name = "_"
	}
	return name
}

// Merge the artifacts into "<title>.txt" in list order: the title line, then
// for each chapter whose artifact exists, a newline and its contents.
func assemble(ctx context.Context, title, dir string, chapters []source.Chapter, paths []string) (Result, error) {
	result := Result{Title: title, Chapters: len(chapters)}
	dst, err := filepath.Abs(filepath.Join(dir, FileName(title)+".txt"))
	if err != nil {
		return result, err
	}
	f, err := tmpwriter.Make(dst)
	if err != nil {
		return result, err
	}
	f.WriteString(title)
	for i, chapter := range chapters {
		if ctx.Err() != nil {
			f.Reset()
			return Result{}, ErrCancelled
		}
		data, err := os.ReadFile(paths[i])
		if errors.Is(err, fs.ErrNotExist) {
			result.Omitted = append(result.Omitted, chapter)
			continue
		}
		if err != nil {
			f.Reset()
			return Result{}, err
		}
		f.WriteString("\n")
		f.Write(data)
	}
	if ctx.Err() != nil {
		f.Reset()
		return Result{}, ErrCancelled
	}
	result.Size = f.Len()
	if err := f.Close(); err != nil {
		return Result{}, err
	}
	result.Path = dst
	return result, nil
}
