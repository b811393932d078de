package report

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// Links returns the destinations of every Markdown link in source, in
// document order.
func Links(source string) []string {
	src := []byte(source)
	doc := markdown.Parser().Parse(text.NewReader(src))

	var links []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			links = append(links, string(node.Destination))
		case *ast.AutoLink:
			links = append(links, string(node.URL(src)))
		}
		return ast.WalkContinue, nil
	})
	return links
}

// churn counts the links present only in next (entered) and only in prev
// (left).
func churn(prev, next string) (entered, left int) {
	before := make(map[string]bool)
	for _, l := range Links(prev) {
		before[l] = true
	}
	after := make(map[string]bool)
	for _, l := range Links(next) {
		after[l] = true
		if !before[l] {
			entered++
		}
	}
	for l := range before {
		if !after[l] {
			left++
		}
	}
	return entered, left
}
