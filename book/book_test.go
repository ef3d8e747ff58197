// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.
package book

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HalCanary/noveldl/source"
)

type fakeSource struct {
	title       string
	titleErr    error
	chapters    []source.Chapter
	chaptersErr error
	concurrency int
	content     func(ctx context.Context, locator string) (string, error)
}

func (f *fakeSource) Title(context.Context) (string, error) { return f.title, f.titleErr }
func (f *fakeSource) Chapters(context.Context) ([]source.Chapter, error) {
	return f.chapters, f.chaptersErr
}
func (f *fakeSource) Content(ctx context.Context, locator string) (string, error) {
	return f.content(ctx, locator)
}
func (f *fakeSource) Concurrency() int { return f.concurrency }

type countingProgress struct {
	total    int
	added    atomic.Int64
	finished bool
}

func (p *countingProgress) Start(total int) { p.total = total }
func (p *countingProgress) Add(n int)       { p.added.Add(int64(n)) }
func (p *countingProgress) Finish()         { p.finished = true }

func numbered(n int) []source.Chapter {
	chapters := make([]source.Chapter, n)
	for i := range chapters {
		chapters[i] = source.Chapter{Name: fmt.Sprintf("Ch%d", i+1), Locator: fmt.Sprintf("/%d.html", i+1)}
	}
	return chapters
}

type dirs struct {
	out, tmp string
}

func testOptions(t *testing.T) (Options, dirs) {
	d := dirs{out: t.TempDir(), tmp: t.TempDir()}
	return Options{
		OutputDir: d.out,
		TempDir:   d.tmp,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, d
}

func readOutput(t *testing.T, res Result) string {
	t.Helper()
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	return string(data)
}

func TestDownloadSkipsFailedChapter(t *testing.T) {
	src := &fakeSource{
		title:       "Title",
		chapters:    []source.Chapter{{Name: "Ch1", Locator: "/1.html"}, {Name: "Ch2", Locator: "/2.html"}},
		concurrency: 2,
		content: func(_ context.Context, locator string) (string, error) {
			if locator == "/1.html" {
				return "hello", nil
			}
			return "", errors.New("boom")
		},
	}
	opts, d := testOptions(t)
	progress := &countingProgress{}
	opts.Progress = progress

	res, err := Download(context.Background(), src, opts)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(d.out, "Title.txt"), res.Path)
	assert.Equal(t, "Title\nCh1\nhello", readOutput(t, res))
	assert.Equal(t, []source.Chapter{{Name: "Ch2", Locator: "/2.html"}}, res.Omitted)
	assert.Equal(t, len("Title\nCh1\nhello"), res.Size)
	assert.Equal(t, 2, progress.total)
	assert.Equal(t, int64(2), progress.added.Load())
	assert.True(t, progress.finished)
	assertEmptyDir(t, d.tmp)
}

func TestDownloadPreservesOrder(t *testing.T) {
	const n = 20
	src := &fakeSource{
		title:    "Order",
		chapters: numbered(n),
		content: func(_ context.Context, locator string) (string, error) {
			var i int
			fmt.Sscanf(locator, "/%d.html", &i)
			// Later chapters finish first.
			time.Sleep(time.Duration(n-i) * 2 * time.Millisecond)
			return "body " + locator, nil
		},
	}
	opts, d := testOptions(t)
	opts.Concurrency = n

	res, err := Download(context.Background(), src, opts)
	require.NoError(t, err)

	var expected strings.Builder
	expected.WriteString("Order")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&expected, "\nCh%d\nbody /%d.html", i, i)
	}
	assert.Equal(t, expected.String(), readOutput(t, res))
	assert.Empty(t, res.Omitted)
	assertEmptyDir(t, d.tmp)
}

// Source that records the largest number of simultaneous Content calls.
type gauge struct {
	mu       sync.Mutex
	inFlight int
	max      int
}

func (g *gauge) content(context.Context, string) (string, error) {
	g.mu.Lock()
	g.inFlight++
	if g.inFlight > g.max {
		g.max = g.inFlight
	}
	g.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()
	return "x", nil
}

func TestDownloadBoundsConcurrency(t *testing.T) {
	for _, limit := range []int{1, 2, 4} {
		t.Run(fmt.Sprint(limit), func(t *testing.T) {
			g := &gauge{}
			src := &fakeSource{title: "T", chapters: numbered(12), concurrency: 8, content: g.content}
			opts, _ := testOptions(t)
			opts.Concurrency = limit

			_, err := Download(context.Background(), src, opts)
			require.NoError(t, err)
			assert.LessOrEqual(t, g.max, limit)
			assert.GreaterOrEqual(t, g.max, 1)
		})
	}
}

func TestDownloadSinglePermit(t *testing.T) {
	g := &gauge{}
	src := &fakeSource{title: "T", chapters: numbered(5), concurrency: 3, content: g.content}
	opts, _ := testOptions(t)
	opts.Concurrency = 1

	_, err := Download(context.Background(), src, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, g.max)
}

func TestDownloadDefaultConcurrency(t *testing.T) {
	for _, override := range []int{0, -3} {
		g := &gauge{}
		src := &fakeSource{title: "T", chapters: numbered(10), concurrency: 2, content: g.content}
		opts, _ := testOptions(t)
		opts.Concurrency = override

		_, err := Download(context.Background(), src, opts)
		require.NoError(t, err)
		assert.LessOrEqual(t, g.max, 2)
	}
}

func TestDownloadFatalErrors(t *testing.T) {
	ok := func(context.Context, string) (string, error) { return "x", nil }
	for _, tc := range []struct {
		name string
		src  *fakeSource
		want error
	}{
		{"title error", &fakeSource{titleErr: source.ErrMarkupShape, chapters: numbered(1), content: ok}, source.ErrTitleUnavailable},
		{"empty title", &fakeSource{chapters: numbered(1), content: ok}, source.ErrTitleUnavailable},
		{"chapter list error", &fakeSource{title: "T", chaptersErr: source.ErrMarkupShape, content: ok}, source.ErrEmptyChapterList},
		{"no chapters", &fakeSource{title: "T", content: ok}, source.ErrEmptyChapterList},
	} {
		t.Run(tc.name, func(t *testing.T) {
			opts, d := testOptions(t)
			_, err := Download(context.Background(), tc.src, opts)
			assert.ErrorIs(t, err, tc.want)
			assertEmptyDir(t, d.out)
			assertEmptyDir(t, d.tmp)
		})
	}
}

func TestDownloadCancelled(t *testing.T) {
	src := &fakeSource{
		title:    "Cancelled",
		chapters: numbered(5),
		content: func(ctx context.Context, locator string) (string, error) {
			if locator == "/1.html" || locator == "/2.html" {
				return "done", nil
			}
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	opts, d := testOptions(t)
	opts.Concurrency = 5
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		// Interrupt once the fast chapters have left artifacts behind.
		for {
			entries, _ := os.ReadDir(d.tmp)
			if len(entries) >= 2 {
				cancel()
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	_, err := Download(ctx, src, opts)
	assert.ErrorIs(t, err, ErrCancelled)
	assertEmptyDir(t, d.tmp)
	assertEmptyDir(t, d.out)
}

func TestDownloadCreatesOutputDir(t *testing.T) {
	src := &fakeSource{
		title:    "A/B: c?",
		chapters: numbered(1),
		content:  func(context.Context, string) (string, error) { return "x", nil },
	}
	opts, _ := testOptions(t)
	opts.OutputDir = filepath.Join(opts.OutputDir, "nested", "dir")

	res, err := Download(context.Background(), src, opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(opts.OutputDir, "A_B_ c_.txt"), res.Path)
	assert.Equal(t, "A/B: c?\nCh1\nx", readOutput(t, res))
}

func TestFileName(t *testing.T) {
	for title, want := range map[string]string{
		"第一卷 风起":      "第一卷 风起",
		"Café’s Tale": "Cafe's Tale",
		"a\\b|c":      "a_b_c",
		"  ":          "_",
		"..":          "_",
	} {
		assert.Equal(t, want, FileName(title), title)
	}
}
