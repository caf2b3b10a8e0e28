package converter

import (
	"fmt"
	"strings"

	xhtml "golang.org/x/net/html"
)

// HTMLToText renders converted markup as one line per block element, which
// is the shape the segmenter consumes. Items of a nested list are flattened
// to lettered "A. " lines in list order, matching the letters the segmenter
// expects on choice lines. Images are skipped.
func HTMLToText(markup string) (string, error) {
	doc, err := xhtml.Parse(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}

	var lines []string
	var walk func(n *xhtml.Node, listDepth int)
	walk = func(n *xhtml.Node, listDepth int) {
		if n.Type == xhtml.ElementNode {
			switch n.Data {
			case "img", "script", "style":
				return
			case "ol", "ul":
				liIndex := 0
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type != xhtml.ElementNode {
						continue
					}
					switch c.Data {
					case "li":
						line := strings.TrimSpace(inlineText(c))
						if listDepth+1 >= 2 && line != "" {
							line = fmt.Sprintf("%c. %s", 'A'+liIndex, line)
						}
						liIndex++
						if line != "" {
							lines = append(lines, line)
						}
						// Lists nested inside the item render after it.
						for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
							if gc.Type == xhtml.ElementNode && (gc.Data == "ol" || gc.Data == "ul") {
								walk(gc, listDepth+1)
							}
						}
					case "ol", "ul":
						walk(c, listDepth+1)
					}
				}
				return
			case "p", "h1", "h2", "h3", "h4", "h5", "h6":
				if line := strings.TrimSpace(inlineText(n)); line != "" {
					lines = append(lines, line)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, listDepth)
		}
	}
	walk(doc, 0)

	return strings.Join(lines, "\n"), nil
}

// inlineText collects the text of a node, skipping any nested lists and
// images so a list item's own text does not swallow its sub-items.
func inlineText(n *xhtml.Node) string {
	var sb strings.Builder
	var walk func(node *xhtml.Node)
	walk = func(node *xhtml.Node) {
		if node.Type == xhtml.TextNode {
			sb.WriteString(node.Data)
			return
		}
		if node.Type == xhtml.ElementNode {
			switch node.Data {
			case "ol", "ul", "img":
				return
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return sb.String()
}
