// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.

// Package source adapts individual novel websites to one chapter-list and
// content-fetch interface.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/HalCanary/noveldl/dom"
	"github.com/HalCanary/noveldl/download"
)

var (
	// Returned by Open when no adapter handles the URL's host.
	ErrUnsupportedSource = errors.New("unsupported source")
	ErrTitleUnavailable  = errors.New("title unavailable")
	ErrEmptyChapterList  = errors.New("empty chapter list")
	// The page does not have the structure the adapter expects.
	ErrMarkupShape = errors.New("unexpected page structure")
)

// One chapter of a novel. Locator is resolved against the source's base URL.
type Chapter struct {
	Name    string
	Locator string
}

// A Source is one supported website. Implementations are immutable after
// construction and safe for concurrent use.
type Source interface {
	// The novel's display title.
	Title(ctx context.Context) (string, error)
	// All chapters in reading order.
	Chapters(ctx context.Context) ([]Chapter, error)
	// Body text of the chapter at locator, following same-chapter pages.
	Content(ctx context.Context, locator string) (string, error)
	// Default number of simultaneous requests the site tolerates.
	Concurrency() int
}

// Collaborators shared by every adapter.
type Options struct {
	Client *download.Client
	Logger *slog.Logger
}

// Fields common to every adapter.
type site struct {
	base   *url.URL
	client *download.Client
	logger *slog.Logger
}

func newSite(base *url.URL, opts Options) site {
	s := site{base: base, client: opts.Client, logger: opts.Logger}
	if s.client == nil {
		s.client = &download.Client{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s site) resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: bad link %q: %v", ErrMarkupShape, ref, err)
	}
	return s.base.ResolveReference(u), nil
}

func (s site) document(ctx context.Context, u *url.URL) (*dom.Node, error) {
	return s.client.Document(ctx, u.String(), s.base.String())
}

func (s site) titleAt(ctx context.Context, selector string) (string, error) {
	doc, err := s.document(ctx, s.base)
	if err != nil {
		return "", err
	}
	title := doc.SelectOne(selector).Label()
	if title == "" {
		return "", fmt.Errorf("%w: no %q in %s", ErrMarkupShape, selector, s.base)
	}
	return title, nil
}

// Append each text line of node to b, newline terminated.
func writeBlock(b *strings.Builder, node *dom.Node) {
	for _, line := range node.ExtractLines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
