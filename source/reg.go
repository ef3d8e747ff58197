// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.
package source

import (
	"fmt"
	"net/url"
)

type openFunction func(u *url.URL, opts Options) (Source, error)

// Adapters keyed by exact host name. Only this package registers.
var registered = map[string]openFunction{}

func register(host string, fn openFunction) {
	registered[host] = fn
}

// Return the adapter for the URL's host, or ErrUnsupportedSource.
func Open(rawURL string, opts Options) (Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}
	fn, ok := registered[u.Hostname()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, rawURL)
	}
	return fn(u, opts)
}

// Host names with a registered adapter.
func Hosts() []string {
	var hosts []string
	for h := range registered {
		hosts = append(hosts, h)
	}
	return hosts
}
