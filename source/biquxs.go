// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.
package source

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/HalCanary/noveldl/dom"
)

const biquxsHost = "m.biquxs.com"

func init() {
	register(biquxsHost, func(u *url.URL, opts Options) (Source, error) {
		id := path.Base(strings.TrimRight(u.Path, "/"))
		if id == "" || id == "." {
			return nil, fmt.Errorf("%w: no novel id in %q", ErrUnsupportedSource, u)
		}
		return &biquxs{site: newSite(u, opts), novelID: id}, nil
	})
}

// m.biquxs.com: the chapter index is split over several listing pages and a
// chapter may be split over several content pages.
type biquxs struct {
	site
	novelID string
}

func (m *biquxs) Title(ctx context.Context) (string, error) {
	return m.titleAt(ctx, "body > div.wrap > div > div.book_info > div.book_box > dl > dt")
}

func (m *biquxs) Chapters(ctx context.Context) ([]Chapter, error) {
	listURL, err := m.resolve("/chapters/" + m.novelID)
	if err != nil {
		return nil, err
	}
	doc, err := m.document(ctx, listURL)
	if err != nil {
		return nil, err
	}
	chapters := listedChapters(doc)

	var pages []*url.URL
	options := doc.Select("body > div.wrap > div.book_clist > div > select > option")
	for _, option := range options {
		value := option.GetAttribute("value")
		if !strings.Contains(value, "chapters") || isSelected(option) {
			continue
		}
		ref, err := url.Parse(value)
		if err != nil {
			continue
		}
		if page := listURL.ResolveReference(ref); page.String() != listURL.String() {
			pages = append(pages, page)
		}
	}
	if len(options) <= 1 || len(pages) == 0 {
		return chapters, nil
	}

	results := make([][]Chapter, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.Concurrency())
	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			doc, err := m.document(gctx, page)
			if err != nil {
				m.logger.Debug("skipping listing page", "url", page.String(), "error", err)
				return nil
			}
			results[i] = listedChapters(doc)
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, r := range results {
		chapters = append(chapters, r...)
	}
	return chapters, nil
}

func listedChapters(doc *dom.Node) []Chapter {
	var chapters []Chapter
	for _, a := range doc.Select("body > div.wrap > div.book_last > dl > dd > a") {
		if href := a.GetAttribute("href"); href != "" {
			chapters = append(chapters, Chapter{Name: a.Label(), Locator: href})
		}
	}
	return chapters
}

func isSelected(option *dom.Node) bool {
	for _, attr := range option.Attr {
		if attr.Key == "selected" {
			return true
		}
	}
	return false
}

func (m *biquxs) Content(ctx context.Context, locator string) (string, error) {
	u, err := m.resolve(locator)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	visited := map[string]bool{}
	for page := 0; ; page++ {
		visited[u.String()] = true
		doc, err := m.document(ctx, u)
		if err != nil {
			return "", err
		}
		blocks := doc.Select("#chaptercontent > .content_detail")
		if page == 0 && len(blocks) == 0 {
			return "", fmt.Errorf("%w: no content in %s", ErrMarkupShape, u)
		}
		for _, block := range blocks {
			writeBlock(&b, block)
		}
		next := m.nextPage(doc, u)
		if next == nil || visited[next.String()] || !sameChapter(next.EscapedPath(), u.EscapedPath(), m.novelID) {
			break
		}
		u = next
	}
	return b.String(), nil
}

func (m *biquxs) nextPage(doc *dom.Node, current *url.URL) *url.URL {
	link := doc.FindOneMatchingNode2("a", "id", "pb_next")
	href := link.GetAttribute("href")
	if href == "" {
		return nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	return current.ResolveReference(ref)
}

func (m *biquxs) Concurrency() int { return 3 }
