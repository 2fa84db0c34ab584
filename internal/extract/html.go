package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// blockTags end a visible line when they close
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "tbody": true, "thead": true, "ul": true, "ol": true,
	"section": true, "header": true, "footer": true, "hr": true,
	"dt": true, "dd": true, "blockquote": true, "pre": true,
}

// VisibleText renders an HTML notification body as plain text with one
// visual row per line, so the line-oriented engine can read it.
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var buf strings.Builder
	newline := func() {
		s := buf.String()
		if s != "" && !strings.HasSuffix(s, "\n") {
			buf.WriteString("\n")
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			// Skip script, style, noscript tags
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head", "template":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				s := buf.String()
				if s != "" && !strings.HasSuffix(s, "\n") && !strings.HasSuffix(s, " ") {
					buf.WriteString(" ")
				}
				buf.WriteString(text)
			}
		}

		if n.Type == html.ElementNode && blockTags[n.Data] {
			newline()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			newline()
		}
	}

	walk(doc)
	return strings.TrimSpace(buf.String()), nil
}

// LooksLikeHTML reports whether the input is an HTML document or fragment
func LooksLikeHTML(s string) bool {
	head := strings.ToLower(s)
	if len(head) > 4096 {
		head = head[:4096]
	}
	for _, marker := range []string{"<html", "<body", "<div", "<table", "<br", "<p>", "<!doctype"} {
		if strings.Contains(head, marker) {
			return true
		}
	}
	return false
}
