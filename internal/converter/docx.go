// Package converter turns uploaded .docx bytes into the two views the
// extractor consumes: an HTML string that keeps paragraph order, list
// structure and inline images, and a plain-text rendering of that HTML.
// Both views derive from the single document.xml walk, so their paragraph
// ordering agrees by construction.
package converter

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"path"
	"strings"
)

type imageRef struct {
	mime string
	data []byte
}

// block is one top-level unit of document.xml: a paragraph's text, its list
// level if it is a numbered item, and any inline images it carries.
type block struct {
	text   string
	list   bool
	level  int
	images []imageRef
}

// ConvertDocx reads a .docx archive and renders its body as HTML.
// Paragraphs become <p>, numbered-list paragraphs become <ol><li> nested by
// indent level, and embedded pictures become data-URI <img> tags so the
// correlator can lift them without touching the archive again.
func ConvertDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx archive: %w", err)
	}

	parts := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open docx part %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read docx part %s: %w", f.Name, err)
		}
		parts[f.Name] = content
	}

	body, ok := parts["word/document.xml"]
	if !ok {
		return "", fmt.Errorf("docx archive has no word/document.xml")
	}

	rels := parseRelationships(parts["word/_rels/document.xml.rels"])

	blocks, err := parseBody(body, rels, parts)
	if err != nil {
		return "", err
	}

	return renderHTML(blocks), nil
}

// parseRelationships maps relationship ids to their targets inside word/.
func parseRelationships(data []byte) map[string]string {
	rels := make(map[string]string)
	if data == nil {
		return rels
	}

	var doc struct {
		Relationships []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return rels
	}
	for _, r := range doc.Relationships {
		target := strings.TrimPrefix(r.Target, "/")
		if !strings.HasPrefix(target, "word/") {
			target = path.Join("word", target)
		}
		rels[r.ID] = target
	}
	return rels
}

func parseBody(body []byte, rels map[string]string, parts map[string][]byte) ([]block, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))

	var blocks []block
	var current block
	var text strings.Builder
	inParagraph := false
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if !inParagraph {
					inParagraph = true
					current = block{}
					text.Reset()
				}
			case "t":
				inText = true
			case "tab":
				text.WriteString("\t")
			case "br", "cr":
				text.WriteString(" ")
			case "numPr":
				current.list = true
			case "ilvl":
				current.level = intAttr(t, "val")
			case "blip":
				if img, ok := resolveImage(attr(t, "embed"), rels, parts); ok {
					current.images = append(current.images, img)
				}
			case "imagedata":
				// Legacy VML pictures.
				if img, ok := resolveImage(attr(t, "id"), rels, parts); ok {
					current.images = append(current.images, img)
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inParagraph {
					current.text = text.String()
					blocks = append(blocks, current)
					inParagraph = false
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		}
	}

	return blocks, nil
}

func resolveImage(relID string, rels map[string]string, parts map[string][]byte) (imageRef, bool) {
	target, ok := rels[relID]
	if !ok {
		return imageRef{}, false
	}
	data, ok := parts[target]
	if !ok {
		return imageRef{}, false
	}
	mime := mimeForExtension(path.Ext(target))
	if mime == "" {
		return imageRef{}, false
	}
	return imageRef{mime: mime, data: data}, true
}

func mimeForExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	case ".tiff", ".tif":
		return "image/tiff"
	default:
		return ""
	}
}

// renderHTML writes blocks out in document order. Level 0 list items open a
// top-level <ol>; deeper items open one nested <ol> (choice lists in
// practice never nest further). Any non-list block closes open lists.
func renderHTML(blocks []block) string {
	var sb strings.Builder
	topOpen := false
	nestedOpen := false

	closeNested := func() {
		if nestedOpen {
			sb.WriteString("</ol>")
			nestedOpen = false
		}
	}
	closeLists := func() {
		closeNested()
		if topOpen {
			sb.WriteString("</ol>")
			topOpen = false
		}
	}

	for _, b := range blocks {
		trimmed := strings.TrimSpace(b.text)

		if b.list {
			if !topOpen {
				sb.WriteString("<ol>")
				topOpen = true
			}
			if b.level >= 1 && !nestedOpen {
				sb.WriteString("<ol>")
				nestedOpen = true
			}
			if b.level == 0 {
				closeNested()
			}
			sb.WriteString("<li>")
			sb.WriteString(html.EscapeString(trimmed))
			writeImages(&sb, b.images, true)
			sb.WriteString("</li>")
			continue
		}

		closeLists()
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(trimmed))
		sb.WriteString("</p>")
		writeImages(&sb, b.images, false)
	}
	closeLists()

	return sb.String()
}

// writeImages emits each picture in its own paragraph so it sits as a
// sibling of the paragraph that preceded it, which is where the correlator
// looks for it.
func writeImages(sb *strings.Builder, images []imageRef, inline bool) {
	for _, img := range images {
		if !inline {
			sb.WriteString("<p>")
		}
		sb.WriteString(`<img src="data:`)
		sb.WriteString(img.mime)
		sb.WriteString(";base64,")
		sb.WriteString(base64.StdEncoding.EncodeToString(img.data))
		sb.WriteString(`"/>`)
		if !inline {
			sb.WriteString("</p>")
		}
	}
}

func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func intAttr(t xml.StartElement, local string) int {
	v := attr(t, local)
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
