package feed

import (
	"strings"

	"golang.org/x/net/html"
)

// StripTags returns the text content of an HTML fragment with entities
// decoded and surrounding whitespace trimmed. Script and style bodies are
// not text and are skipped.
func StripTags(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	skip := false
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(strings.ReplaceAll(b.String(), "\u00a0", " "))
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip = true
			}
		case html.EndTagToken:
			skip = false
		case html.TextToken:
			if !skip {
				b.Write(z.Text())
			}
		}
	}
}
