// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.
package dom

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func (node *Node) FindOneMatchingNode(tag string) *Node {
	if node == nil {
		return nil
	}
	if node.Type == html.ElementNode && node.Data == tag {
		return node
	}
	for child := node.GetFirstChild(); child != nil; child = child.GetNextSibling() {
		r := child.FindOneMatchingNode(tag)
		if r != nil {
			return r
		}
	}
	return nil
}

func (node *Node) FindOneMatchingNode2(tag, attributeKey, attributeValue string) *Node {
	if node == nil {
		return nil
	}
	if node.Type == html.ElementNode && node.Data == tag {
		for _, attr := range node.Attr {
			if attr.Key == attributeKey && attr.Val == attributeValue {
				return node
			}
		}
	}
	for child := node.GetFirstChild(); child != nil; child = child.GetNextSibling() {
		r := child.FindOneMatchingNode2(tag, attributeKey, attributeValue)
		if r != nil {
			return r
		}
	}
	return nil
}

// All descendants matching a CSS selector, in document order. An invalid
// selector matches nothing.
func (node *Node) Select(selector string) []*Node {
	if node == nil {
		return nil
	}
	sel := goquery.NewDocumentFromNode((*html.Node)(node)).Find(selector)
	result := make([]*Node, 0, len(sel.Nodes))
	for _, n := range sel.Nodes {
		result = append(result, (*Node)(n))
	}
	return result
}

// First descendant matching a CSS selector, or nil.
func (node *Node) SelectOne(selector string) *Node {
	if nodes := node.Select(selector); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}
