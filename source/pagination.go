// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.
package source

import "strings"

// The path segment right after novelID in locator, up to the next "/" or,
// failing that, the last ".". ok is false when there is no such segment.
func chapterID(locator, novelID string) (id string, ok bool) {
	if novelID == "" {
		return "", false
	}
	idx := strings.Index(locator, novelID)
	if idx < 0 {
		return "", false
	}
	start := idx + len(novelID) + 1
	if start > len(locator) {
		return "", false
	}
	rest := locator[start:]
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		id = rest[:i]
	} else if i := strings.LastIndexByte(rest, '.'); i >= 0 {
		id = rest[:i]
	}
	return id, id != ""
}

// Whether two page locators belong to the same chapter. Fails closed.
func sameChapter(a, b, novelID string) bool {
	x, ok := chapterID(a, novelID)
	if !ok {
		return false
	}
	y, ok := chapterID(b, novelID)
	return ok && x == y
}
