package cms

import (
	"strings"

	"golang.org/x/net/html"
)

// Block is one portable-text block. Only the fields needed for HTML
// rendering are decoded.
type Block struct {
	Type     string    `json:"_type"`
	Style    string    `json:"style"`
	ListItem string    `json:"listItem"`
	Level    int       `json:"level"`
	Children []Span    `json:"children"`
	MarkDefs []MarkDef `json:"markDefs"`

	// image blocks
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
	Asset   *struct {
		URL string `json:"url"`
	} `json:"asset"`

	// raw HTML blocks
	HTML string `json:"html"`
}

// Span is an inline text run.
type Span struct {
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

// MarkDef is an annotation referenced from span marks.
type MarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href"`
}

var decorators = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"code":           "code",
	"underline":      "u",
	"strike-through": "s",
}

var blockStyles = map[string]string{
	"normal":     "p",
	"h1":         "h1",
	"h2":         "h2",
	"h3":         "h3",
	"h4":         "h4",
	"h5":         "h5",
	"h6":         "h6",
	"blockquote": "blockquote",
}

// RenderBlocks converts portable-text blocks to HTML. Unknown block
// types are skipped.
func RenderBlocks(blocks []Block) string {
	var b strings.Builder
	openList := ""
	closeList := func() {
		if openList != "" {
			b.WriteString("</" + openList + ">\n")
			openList = ""
		}
	}

	for _, blk := range blocks {
		switch blk.Type {
		case "block":
			if blk.ListItem != "" {
				tag := "ul"
				if blk.ListItem == "number" {
					tag = "ol"
				}
				if openList != tag {
					closeList()
					b.WriteString("<" + tag + ">\n")
					openList = tag
				}
				b.WriteString("<li>" + renderSpans(blk) + "</li>\n")
				continue
			}
			closeList()
			tag, ok := blockStyles[blk.Style]
			if !ok {
				tag = "p"
			}
			b.WriteString("<" + tag + ">" + renderSpans(blk) + "</" + tag + ">\n")
		case "image":
			closeList()
			src := blk.URL
			if src == "" && blk.Asset != nil {
				src = blk.Asset.URL
			}
			if src == "" {
				continue
			}
			b.WriteString(`<figure><img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(blk.Alt) + `">`)
			if blk.Caption != "" {
				b.WriteString("<figcaption>" + html.EscapeString(blk.Caption) + "</figcaption>")
			}
			b.WriteString("</figure>\n")
		case "html":
			closeList()
			b.WriteString(blk.HTML + "\n")
		}
	}
	closeList()
	return b.String()
}

func renderSpans(blk Block) string {
	defs := make(map[string]MarkDef, len(blk.MarkDefs))
	for _, d := range blk.MarkDefs {
		defs[d.Key] = d
	}
	var b strings.Builder
	for _, s := range blk.Children {
		text := strings.ReplaceAll(html.EscapeString(s.Text), "\n", "<br>")
		for _, m := range s.Marks {
			if tag, ok := decorators[m]; ok {
				text = "<" + tag + ">" + text + "</" + tag + ">"
				continue
			}
			if d, ok := defs[m]; ok && d.Type == "link" && d.Href != "" {
				text = `<a href="` + html.EscapeString(d.Href) + `">` + text + "</a>"
			}
		}
		b.WriteString(text)
	}
	return b.String()
}
