// Package htmltext turns the small HTML fragments the tour API embeds in
// text fields (homepage, overview, infotext) into plain values.
package htmltext

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

type Anchor struct {
	Href  string
	Title string
	Text  string
}

// Anchors returns every <a href> in s in document order. Anchors without an
// href are skipped.
func Anchors(s string) []Anchor {
	var (
		out  []Anchor
		cur  *Anchor
		text strings.Builder
	)
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return out
			}
			if cur != nil {
				cur.Text = collapse(text.String())
				out = append(out, *cur)
			}
			return out
		case html.StartTagToken:
			t := z.Token()
			if t.Data != "a" {
				continue
			}
			if cur != nil {
				cur.Text = collapse(text.String())
				out = append(out, *cur)
				cur = nil
			}
			a := Anchor{}
			for _, attr := range t.Attr {
				switch attr.Key {
				case "href":
					a.Href = strings.TrimSpace(attr.Val)
				case "title":
					a.Title = strings.TrimSpace(attr.Val)
				}
			}
			if a.Href == "" {
				continue
			}
			cur = &a
			text.Reset()
		case html.EndTagToken:
			if cur != nil && z.Token().Data == "a" {
				cur.Text = collapse(text.String())
				out = append(out, *cur)
				cur = nil
			}
		case html.TextToken:
			if cur != nil {
				text.Write(z.Text())
			}
		}
	}
}

// Paragraphs splits s on <br> variants and strips any other markup. Empty
// paragraphs are dropped.
func Paragraphs(s string) []string {
	out := []string{}
	var cur strings.Builder
	flush := func() {
		if p := collapse(cur.String()); p != "" {
			out = append(out, p)
		}
		cur.Reset()
	}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			flush()
			return out
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				flush()
			}
		case html.TextToken:
			cur.Write(z.Text())
		}
	}
}

// Plain strips all markup, keeping line breaks from <br>.
func Plain(s string) string {
	return strings.Join(Paragraphs(s), "\n")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
