// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.

// Package book downloads every chapter of a novel with bounded concurrency
// and merges them, in reading order, into one text file.
package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/HalCanary/noveldl/source"
)

// The run was interrupted. Temporary files have been removed and no output
// was written.
var ErrCancelled = errors.New("download cancelled")

type Options struct {
	// Simultaneous chapter fetches. Values below 1 use the source's default.
	Concurrency int
	// Directory for the merged file; the working directory if empty.
	OutputDir string
	// Directory for per-chapter files; os.TempDir() if empty.
	TempDir  string
	Progress Progress
	Logger   *slog.Logger
}

type Result struct {
	Title string
	// Absolute path of the merged file.
	Path string
	// Size of the merged file in bytes.
	Size     int
	Chapters int
	// Chapters whose fetch failed, in reading order. They are not in the file.
	Omitted []source.Chapter
}

// Download fetches the title and chapter list of src, fetches each chapter's
// content with at most Concurrency requests in flight, and writes
// "<title>.txt" to the output directory.
//
// When ctx is cancelled, every temporary file is removed and ErrCancelled is
// returned. Temporary files are also removed on every other return path.
func Download(ctx context.Context, src source.Source, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	progress := opts.Progress
	if progress == nil {
		progress = nopProgress{}
	}

	title, err := src.Title(ctx)
	if err != nil {
		return Result{}, fail(ctx, source.ErrTitleUnavailable, err)
	}
	if title == "" {
		return Result{}, source.ErrTitleUnavailable
	}
	chapters, err := src.Chapters(ctx)
	if err != nil {
		return Result{}, fail(ctx, source.ErrEmptyChapterList, err)
	}
	if len(chapters) == 0 {
		return Result{}, fmt.Errorf("%w: %q", source.ErrEmptyChapterList, title)
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = src.Concurrency()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		if outputDir, err = os.Getwd(); err != nil {
			return Result{}, err
		}
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, err
	}
	logger.Info("downloading", "title", title, "chapters", len(chapters), "concurrency", concurrency)

	artifacts := NewArtifacts(opts.TempDir)
	defer artifacts.Purge()
	// Delete as soon as the run is interrupted, not only when workers drain.
	stop := context.AfterFunc(ctx, func() { artifacts.Purge() })
	defer stop()

	paths, err := fetchAll(ctx, src, chapters, concurrency, artifacts, progress, logger)
	if err != nil {
		return Result{}, err
	}

	result, err := assemble(ctx, title, outputDir, chapters, paths)
	if err != nil {
		return Result{}, err
	}
	if len(result.Omitted) > 0 {
		logger.Debug("chapters omitted", "count", len(result.Omitted))
	}
	return result, nil
}

func fail(ctx context.Context, kind, err error) error {
	if ctx.Err() != nil {
		return ErrCancelled
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Spawn one task per chapter, in list order, gated by a pool of concurrency
// permits. Returns the artifact path of each chapter, index-aligned with
// chapters.
func fetchAll(ctx context.Context, src source.Source, chapters []source.Chapter, concurrency int,
	artifacts *Artifacts, progress Progress, logger *slog.Logger) ([]string, error) {
	permits := semaphore.NewWeighted(int64(concurrency))
	paths := make([]string, len(chapters))
	var wg sync.WaitGroup

	progress.Start(len(chapters))
	defer progress.Finish()
	for i, chapter := range chapters {
		chapter := chapter
		// Registered before the task exists so a purge always sees it.
		path, err := artifacts.Register()
		if err != nil {
			break
		}
		paths[i] = path
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer progress.Add(1)
			if err := permits.Acquire(ctx, 1); err != nil {
				return
			}
			defer permits.Release(1)
			content, err := src.Content(ctx, chapter.Locator)
			if err != nil {
				logger.Debug("chapter skipped", "chapter", chapter.Name, "error", err)
				return
			}
			if err := artifacts.Write(path, []byte(chapter.Name+"\n"+content)); err != nil {
				logger.Debug("chapter not saved", "chapter", chapter.Name, "error", err)
			}
		}()
	}
	wg.Wait()
	if ctx.Err() != nil {
		return nil, ErrCancelled
	}
	return paths, nil
}
