// Package sanitize strips unsafe markup from user-authored rich text.
//
// Input is parsed with the HTML5 parser, walked as a tree and serialized
// again, so malformed markup is repaired the way a browser would repair it
// before anything is filtered.
package sanitize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements removed together with everything inside them. The second group
// holds raw-text containers: their children are unparsed markup, not content.
var droppedTags = map[string]bool{
	"script": true, "object": true, "embed": true, "iframe": true, "form": true,
	"input": true, "button": true, "meta": true, "link": true, "style": true,

	"noscript": true, "noembed": true, "noframes": true, "xmp": true,
	"plaintext": true, "textarea": true, "title": true, "template": true,
}

// Elements kept as they are. Anything else is unwrapped.
var allowedTags = map[string]bool{
	"p": true, "br": true, "strong": true, "b": true, "em": true, "i": true,
	"u": true, "s": true, "strike": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "blockquote": true,
	"a": true, "span": true, "div": true,
}

var allowedAttrs = map[string]bool{
	"href": true, "target": true, "class": true, "style": true,
}

var allowedStyleProps = map[string]bool{
	"color": true, "background-color": true, "font-size": true,
	"font-weight": true, "font-style": true, "text-decoration": true,
	"text-align": true, "margin": true, "padding": true,
}

var (
	safeHref      = regexp.MustCompile(`(?i)^(https?://|mailto:|tel:|#)`)
	inlineHandler = regexp.MustCompile(`on[a-z]+\s*=`)
)

// maxPasses bounds how often the output is fed back through the parser.
const maxPasses = 5

// Sanitize returns html restricted to the allow-listed tags, attributes and
// CSS properties. It never fails: unparseable input yields an empty string.
//
// Parser error recovery can build trees that serialize to markup which
// parses differently (a heading nested in a heading, an anchor in an
// anchor), so the result is re-sanitized until it no longer changes.
func Sanitize(s string) string {
	out, ok := sanitizeOnce(s)
	for i := 1; ok && i < maxPasses; i++ {
		next, nextOK := sanitizeOnce(out)
		if !nextOK || next == out {
			break
		}
		out = next
	}
	return out
}

func sanitizeOnce(s string) (string, bool) {
	if s == "" {
		return "", true
	}

	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(s), root)
	if err != nil {
		return "", false
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	cleanChildren(root)

	var b strings.Builder
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if err := html.Render(&b, n); err != nil {
			return "", false
		}
	}
	return b.String(), true
}

// cleanChildren filters the subtree below parent in place. Unwrapped
// elements are cleaned before their children are hoisted, so every node is
// visited exactly once.
func cleanChildren(parent *html.Node) {
	for n := parent.FirstChild; n != nil; {
		next := n.NextSibling

		switch n.Type {
		case html.TextNode:
		case html.ElementNode:
			tag := strings.ToLower(n.Data)
			switch {
			case droppedTags[tag]:
				parent.RemoveChild(n)
			case !allowedTags[tag]:
				cleanChildren(n)
				unwrap(n)
			default:
				// Foreign content (svg, math) is flattened into plain HTML.
				n.Namespace = ""
				n.Data = tag
				n.Attr = cleanAttrs(n.Attr)
				cleanChildren(n)
			}
		default:
			// comments, doctypes
			parent.RemoveChild(n)
		}

		n = next
	}
}

// unwrap replaces n with its children.
func unwrap(n *html.Node) {
	parent := n.Parent
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

func cleanAttrs(attrs []html.Attribute) []html.Attribute {
	var kept []html.Attribute
	for _, a := range attrs {
		if a.Namespace != "" {
			continue
		}
		key := strings.ToLower(a.Key)
		if !allowedAttrs[key] && !strings.HasPrefix(key, "data-") {
			continue
		}

		val := a.Val
		switch key {
		case "href":
			if !safeHref.MatchString(val) {
				continue
			}
		case "style":
			val = cleanStyle(val)
			if val == "" {
				continue
			}
		}
		if unsafeValue(val) {
			continue
		}

		kept = append(kept, html.Attribute{Key: key, Val: val})
	}
	return kept
}

// cleanStyle keeps the allow-listed declarations and re-emits them in a
// normalized "prop: value; prop: value" form.
func cleanStyle(style string) string {
	var decls []string
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if !allowedStyleProps[prop] || val == "" || unsafeStyleValue(val) {
			continue
		}
		decls = append(decls, prop+": "+val)
	}
	return strings.Join(decls, "; ")
}

func unsafeValue(v string) bool {
	lower := strings.ToLower(v)
	if inlineHandler.MatchString(lower) || strings.ContainsAny(lower, "<>") {
		return true
	}
	compact := compactValue(lower)
	return strings.Contains(compact, "javascript:") || strings.Contains(compact, "vbscript:")
}

func unsafeStyleValue(v string) bool {
	compact := compactValue(strings.ToLower(v))
	for _, bad := range []string{"url(", "expression(", "javascript:", "vbscript:", `\`} {
		if strings.Contains(compact, bad) {
			return true
		}
	}
	return false
}

// compactValue drops whitespace and control characters, which browsers
// ignore inside URL schemes.
func compactValue(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
