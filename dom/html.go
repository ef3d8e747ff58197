// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.
package dom

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Alias for golang.org/x/net/html.Node.
type Node html.Node

var whitespaceRegexp = regexp.MustCompile("\\s+")

// Wrapper for golang.org/x/net/html.Parse.
func Parse(source io.Reader) (*Node, error) {
	n, err := html.Parse(source)
	return (*Node)(n), err
}

func (node *Node) GetFirstChild() *Node {
	return (*Node)(node.FirstChild)
}

func (node *Node) GetNextSibling() *Node {
	return (*Node)(node.NextSibling)
}

// Tag name of an element node, or "" for anything else.
func (node *Node) Tag() string {
	if node == nil || node.Type != html.ElementNode {
		return ""
	}
	return node.Data
}

// Direct element children, in document order.
func (node *Node) ChildElements() []*Node {
	var result []*Node
	if node != nil {
		for c := node.GetFirstChild(); c != nil; c = c.GetNextSibling() {
			if c.Type == html.ElementNode {
				result = append(result, c)
			}
		}
	}
	return result
}

// Find the matching attributes, ignoring namespace.
func (node *Node) GetAttribute(key string) string {
	if node != nil {
		for _, attr := range node.Attr {
			if attr.Key == key {
				return attr.Val
			}
		}
	}
	return ""
}

func extractTextImpl(root *Node, accumulator *strings.Builder) {
	if root != nil {
		if root.Type == html.TextNode {
			accumulator.WriteString(whitespaceRegexp.ReplaceAllString(root.Data, " "))
			return
		}
		if root.Type == html.ElementNode {
			switch root.Data {
			case "br":
				accumulator.WriteString("\n")
			case "p":
				accumulator.WriteString("\n\n")
			case "script", "style":
				return
			}
		}
		for child := root.FirstChild; child != nil; child = child.NextSibling {
			extractTextImpl((*Node)(child), accumulator)
		}
	}
}

// Extract and combine all Text Nodes under given node.
func (root *Node) ExtractText() string {
	var b strings.Builder
	extractTextImpl(root, &b)
	return b.String()
}

// Text content of the node with whitespace collapsed and trimmed; suitable
// for titles and link labels.
func (root *Node) Label() string {
	return strings.TrimSpace(whitespaceRegexp.ReplaceAllString(
		strings.ReplaceAll(root.ExtractText(), "\u00a0", " "), " "))
}

// Every non-blank text node under root, one line each. Non-breaking spaces
// become ordinary spaces and runs of whitespace are collapsed.
func (root *Node) ExtractLines() []string {
	var lines []string
	var walk func(n *Node)
	walk = func(n *Node) {
		switch n.Type {
		case html.TextNode:
			line := strings.ReplaceAll(n.Data, "\u00a0", " ")
			line = strings.TrimSpace(whitespaceRegexp.ReplaceAllString(line, " "))
			if line != "" {
				lines = append(lines, line)
			}
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.GetFirstChild(); c != nil; c = c.GetNextSibling() {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return lines
}
