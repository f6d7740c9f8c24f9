package seo

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Marker classes of authored semantic blocks.
const (
	faqSectionClass = "faq-section"
	faqItemClass    = "faq-item"
	stepGuideClass  = "step-guide"
	stepClass       = "step"
)

// MinutesPerStep is the documented per-step estimate behind HowTo.TotalTime.
const MinutesPerStep = 15

// SemanticBlocks are the structured sub-blocks found in post content.
type SemanticBlocks struct {
	FAQ   *FAQ
	HowTo *HowTo
}

// FAQ is a list of question/answer pairs.
type FAQ struct {
	Title string
	Items []QA
}

// QA is one question with its answer text.
type QA struct {
	Question string
	Answer   string
}

// HowTo is an ordered step guide.
type HowTo struct {
	Name      string
	Intro     string
	Steps     []Step
	TotalTime string // ISO 8601 duration
}

// Step is one HowTo step. Position is 1-based in source order.
type Step struct {
	Position int
	Name     string
	Text     string
}

// ExtractSemanticBlocks scans rendered post HTML for FAQ and step-guide
// blocks. Missing or incomplete blocks are left nil; it never fails.
func ExtractSemanticBlocks(content string) SemanticBlocks {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return SemanticBlocks{}
	}
	return SemanticBlocks{FAQ: extractFAQ(doc), HowTo: extractHowTo(doc)}
}

func extractFAQ(doc *html.Node) *FAQ {
	faq := &FAQ{}
	for _, section := range findByClass(doc, faqSectionClass) {
		if faq.Title == "" {
			inItem := func(n *html.Node) bool { return hasAncestorClass(n, faqItemClass, section) }
			if h := firstHeading(section, inItem, atom.H2, atom.H3); h != nil {
				faq.Title = textContent(h)
			}
		}
		items := findByClass(section, faqItemClass)
		if len(items) > 0 {
			for _, item := range items {
				h := firstHeading(item, nil, atom.H3, atom.H4, atom.H5, atom.H6)
				if h == nil {
					continue
				}
				faq.add(textContent(h), paragraphText(item))
			}
			continue
		}
		faq.Items = append(faq.Items, pairsFromSiblings(section)...)
	}
	if len(faq.Items) == 0 {
		return nil
	}
	return faq
}

func (f *FAQ) add(q, a string) {
	if q == "" || a == "" {
		return
	}
	f.Items = append(f.Items, QA{Question: q, Answer: a})
}

// pairsFromSiblings reads unwrapped h4/h5 questions, each answered by
// the paragraphs that follow it.
func pairsFromSiblings(section *html.Node) []QA {
	var out []QA
	var q string
	var answer []string
	flush := func() {
		if q != "" && len(answer) > 0 {
			out = append(out, QA{Question: q, Answer: strings.Join(answer, " ")})
		}
		q, answer = "", nil
	}
	for c := section.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.H4, atom.H5:
			flush()
			q = textContent(c)
		case atom.P:
			if q != "" {
				if t := textContent(c); t != "" {
					answer = append(answer, t)
				}
			}
		}
	}
	flush()
	return out
}

func extractHowTo(doc *html.Node) *HowTo {
	guides := findByClass(doc, stepGuideClass)
	if len(guides) == 0 {
		return nil
	}
	guide := guides[0]
	inStep := func(n *html.Node) bool { return hasAncestorClass(n, stepClass, guide) }

	h := &HowTo{}
	if t := firstHeading(guide, inStep, atom.H2, atom.H3); t != nil {
		h.Name = textContent(t)
	}
	if p := firstElement(guide, atom.P, inStep); p != nil {
		h.Intro = textContent(p)
	}
	for _, s := range findByClass(guide, stepClass) {
		title := firstHeading(s, nil, atom.H3, atom.H4, atom.H5, atom.H6)
		if title == nil {
			continue
		}
		name := textContent(title)
		if name == "" {
			continue
		}
		h.Steps = append(h.Steps, Step{
			Position: len(h.Steps) + 1,
			Name:     name,
			Text:     paragraphText(s),
		})
	}
	if len(h.Steps) == 0 {
		return nil
	}
	h.TotalTime = fmt.Sprintf("PT%dM", MinutesPerStep*len(h.Steps))
	return h
}

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

// findByClass returns the outermost descendants of root carrying class.
func findByClass(root *html.Node, class string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if hasClass(c, class) {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

func hasAncestorClass(n *html.Node, class string, stop *html.Node) bool {
	for p := n.Parent; p != nil && p != stop; p = p.Parent {
		if hasClass(p, class) {
			return true
		}
	}
	return false
}

// firstElement finds the first descendant with tag a, skipping nodes for
// which skip returns true.
func firstElement(root *html.Node, a atom.Atom, skip func(*html.Node) bool) *html.Node {
	return firstMatch(root, func(n *html.Node) bool {
		return n.DataAtom == a && (skip == nil || !skip(n))
	})
}

func firstHeading(root *html.Node, skip func(*html.Node) bool, levels ...atom.Atom) *html.Node {
	return firstMatch(root, func(n *html.Node) bool {
		if skip != nil && skip(n) {
			return false
		}
		for _, l := range levels {
			if n.DataAtom == l {
				return true
			}
		}
		return false
	})
}

func firstMatch(root *html.Node, match func(*html.Node) bool) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := firstMatch(c, match); found != nil {
			return found
		}
	}
	return nil
}

// paragraphText joins the text of every paragraph below n.
func paragraphText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.P || c.DataAtom == atom.Li) {
				if t := textContent(c); t != "" {
					parts = append(parts, t)
				}
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}
