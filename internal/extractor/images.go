package extractor

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// ExtractedImage is an inline image found after a rationale flag paragraph,
// tagged with the zero-based ordinal of that flag occurrence in the markup.
type ExtractedImage struct {
	RationaleIndex int
	MIME           string
	Data           []byte
}

type ImageResult struct {
	Images               []ExtractedImage
	RationaleOccurrences int
}

var dataURIPattern = regexp.MustCompile(`^data:([^;]+);base64,(.+)$`)

// ExtractImages walks the document markup for paragraphs whose text starts
// with the rationale flag, then scans forward through siblings for the
// nearest embedded image. The occurrence counter advances once per flag
// paragraph whether or not an image is found, so indices stay aligned with
// the text stream's rationale occurrences.
func ExtractImages(markup, rationaleFlag string) (ImageResult, error) {
	result := ImageResult{Images: []ExtractedImage{}}
	if rationaleFlag == "" {
		return result, nil
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return result, fmt.Errorf("failed to parse document markup: %w", err)
	}

	for _, p := range elementsByTag(doc, "p") {
		if !strings.HasPrefix(strings.TrimSpace(nodeText(p)), rationaleFlag) {
			continue
		}
		rationaleIndex := result.RationaleOccurrences
		result.RationaleOccurrences++

		img := nextSiblingImage(p)
		if img == nil {
			continue
		}
		mime, data, ok := decodeDataURI(attrValue(img, "src"))
		if !ok {
			// External or non-base64 images are out of scope.
			continue
		}
		result.Images = append(result.Images, ExtractedImage{
			RationaleIndex: rationaleIndex,
			MIME:           mime,
			Data:           data,
		})
	}

	return result, nil
}

// nextSiblingImage scans forward from p. A sibling that is or contains an
// image wins; a paragraph with non-empty text intervening means no image for
// this occurrence; anything else is skipped.
func nextSiblingImage(p *html.Node) *html.Node {
	for sib := p.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type != html.ElementNode {
			continue
		}
		if img := firstImage(sib); img != nil {
			return img
		}
		if sib.Data == "p" && strings.TrimSpace(nodeText(sib)) != "" {
			return nil
		}
	}
	return nil
}

func firstImage(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "img" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if img := firstImage(c); img != nil {
			return img
		}
	}
	return nil
}

func decodeDataURI(src string) (mime string, data []byte, ok bool) {
	matches := dataURIPattern.FindStringSubmatch(src)
	if matches == nil || !strings.HasPrefix(matches[1], "image/") {
		return "", nil, false
	}
	decoded, err := base64.StdEncoding.DecodeString(matches[2])
	if err != nil {
		return "", nil, false
	}
	return matches[1], decoded, true
}

func elementsByTag(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
