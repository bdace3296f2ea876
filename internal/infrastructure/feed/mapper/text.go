package mapper

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// StripHTML returns the visible text of an HTML fragment with entities
// decoded, runs of whitespace collapsed and the result NFC-normalized
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return NormalizeText(fragment)
	}

	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	var parts []string
	skip := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; keep whatever text was read
			return NormalizeText(strings.Join(parts, " "))
		case html.StartTagToken:
			if isRawTextTag(tokenizer) {
				skip++
			}
		case html.EndTagToken:
			if skip > 0 && isRawTextTag(tokenizer) {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				parts = append(parts, string(tokenizer.Text()))
			}
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

// NormalizeText collapses whitespace, non-breaking spaces included, and
// applies NFC
func NormalizeText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
