package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`[ \t]+`)
var lineBreaks = regexp.MustCompile(`[\n\r]+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || c == '\n' {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// BlockText renders a selection the way a browser's innerText would:
// element boundaries become line breaks, runs of spaces collapse and
// every line is trimmed. Blank lines are dropped.
func BlockText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		blockTextRecursive(n, &buffer)
	}

	text := removeNonPrintable(buffer.String())
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(innerWhitespace.ReplaceAllString(line, " "), " ")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func blockTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	if node.Type == html.ElementNode {
		switch node.Data {
		case "script", "style":
			return
		case "br", "div", "p", "li", "tr", "h1", "h2", "h3", "h4":
			buffer.WriteString("\n")
		}
	}
	child := node.FirstChild
	for child != nil {
		blockTextRecursive(child, buffer)
		child = child.NextSibling
	}
	if node.Type == html.ElementNode {
		switch node.Data {
		case "div", "p", "li", "tr", "h1", "h2", "h3", "h4":
			buffer.WriteString("\n")
		}
	}
}

// FlatText collapses a selection's text into a single line,
// the shape the associated-section row parser expects.
func FlatText(sel *goquery.Selection) string {
	text := removeNonPrintable(sel.Text())
	text = lineBreaks.ReplaceAllString(text, " ")
	text = innerWhitespace.ReplaceAllString(text, " ")
	return strings.Trim(text, " ")
}
