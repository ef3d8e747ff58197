// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.
package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const xbiqugeHost = "www.xbiquge.bz"

func init() {
	register(xbiqugeHost, func(u *url.URL, opts Options) (Source, error) {
		return &xbiquge{newSite(u, opts)}, nil
	})
}

// www.xbiquge.bz: the whole chapter index sits on the novel's main page and
// every chapter is a single page.
type xbiquge struct {
	site
}

func (x *xbiquge) Title(ctx context.Context) (string, error) {
	return x.titleAt(ctx, "#info > h1")
}

func (x *xbiquge) Chapters(ctx context.Context) ([]Chapter, error) {
	doc, err := x.document(ctx, x.base)
	if err != nil {
		return nil, err
	}
	dl := doc.SelectOne("#list > dl")
	if dl == nil {
		return nil, fmt.Errorf("%w: no chapter list in %s", ErrMarkupShape, x.base)
	}
	// The first <dt> heads a "latest chapters" teaser; the full index starts
	// after the second.
	var chapters []Chapter
	dtCount := 0
	for _, child := range dl.ChildElements() {
		switch child.Tag() {
		case "dt":
			dtCount++
		case "dd":
			if dtCount < 2 {
				continue
			}
			a := child.FindOneMatchingNode("a")
			href := a.GetAttribute("href")
			if href == "" {
				continue
			}
			chapters = append(chapters, Chapter{Name: a.Label(), Locator: href})
		}
	}
	return chapters, nil
}

func (x *xbiquge) Content(ctx context.Context, locator string) (string, error) {
	u, err := x.resolve(locator)
	if err != nil {
		return "", err
	}
	doc, err := x.document(ctx, u)
	if err != nil {
		return "", err
	}
	container := doc.SelectOne("#content")
	if container == nil {
		return "", fmt.Errorf("%w: no content in %s", ErrMarkupShape, u)
	}
	var b strings.Builder
	writeBlock(&b, container)
	return b.String(), nil
}

func (x *xbiquge) Concurrency() int { return 5 }
