// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.

// Package download performs one HTTP GET and parses the response as HTML.
// There are no retries at this layer.
package download

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"

	"github.com/HalCanary/noveldl/dom"
)

const (
	accept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.9"
	acceptLanguage = "zh-CN,zh;q=0.9,en-US;q=0.8,en;q=0.7"
	acceptEncoding = "gzip, br"
	// DefaultUserAgent is sent unless the client is configured otherwise.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/103.0.0.0 Safari/537.36"
)

// ErrNetwork wraps every transport or HTTP status failure.
var ErrNetwork = errors.New("network error")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

func (e *StatusError) Unwrap() error { return ErrNetwork }

// Client fetches and parses pages. The zero value is usable.
type Client struct {
	HTTP      *http.Client
	UserAgent string
}

// Fetch a page and return its parsed document tree. ref, if not empty, is
// sent as the Referer.
func (c *Client) Document(ctx context.Context, url, ref string) (*dom.Node, error) {
	body, err := c.get(ctx, url, ref)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	doc, err := dom.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrNetwork, url, err)
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, url, ref string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if ref != "" {
		req.Header.Add("Referer", ref)
	}
	userAgent := c.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Add("accept", accept)
	req.Header.Add("accept-encoding", acceptEncoding)
	req.Header.Add("accept-language", acceptLanguage)
	req.Header.Add("user-agent", userAgent)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}
	body, err := decode(resp)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrNetwork, url, err)
	}
	return body, nil
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

// Undo Content-Encoding, then transcode to UTF-8 using the Content-Type
// header or the document's own meta tags.
func decode(resp *http.Response) (io.ReadCloser, error) {
	var r io.Reader = resp.Body
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		r = gz
	case "br":
		r = brotli.NewReader(resp.Body)
	}
	utf8, err := charset.NewReader(r, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	return readCloser{utf8, resp.Body.Close}, nil
}
