package wiki

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	paragraphSelector = "#mw-content-text .mw-parser-output > p"
	articlePrefix     = "/wiki/"
	titleSuffix       = " - Wikipedia"
)

// firstValidHref returns the href of the first qualifying link in the first
// paragraph that has one, or "".
func firstValidHref(doc *goquery.Document) string {
	var href string
	doc.Find(paragraphSelector).EachWithBreak(func(_ int, p *goquery.Selection) bool {
		paragraphHTML, err := goquery.OuterHtml(p)
		if err != nil {
			return true
		}
		p.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if qualifies(paragraphHTML, a) {
				href, _ = a.Attr("href")
				return false
			}
			return true
		})
		return href == ""
	})
	return href
}

// qualifies applies the link rules: not parenthesized, not italic, a plain
// article link that exists.
func qualifies(paragraphHTML string, a *goquery.Selection) bool {
	linkHTML, err := goquery.OuterHtml(a)
	if err != nil {
		return false
	}
	if insideParentheses(paragraphHTML, linkHTML) {
		return false
	}
	if a.Closest("i").Length() > 0 {
		return false
	}
	if a.HasClass("new") {
		return false
	}

	href, ok := a.Attr("href")
	switch {
	case !ok || href == "":
		return false
	case strings.HasPrefix(href, "http"):
		return false
	case strings.HasPrefix(href, "#"), strings.Contains(href, ":"):
		return false
	case !strings.HasPrefix(href, articlePrefix):
		return false
	}
	return true
}

// insideParentheses reports whether more parentheses are open than closed
// in paragraphHTML before the first occurrence of linkHTML.
func insideParentheses(paragraphHTML, linkHTML string) bool {
	idx := strings.Index(paragraphHTML, linkHTML)
	if idx < 0 {
		return false
	}

	depth := 0
	for _, r := range paragraphHTML[:idx] {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return depth > 0
}

// extractTitle returns the article heading, the <title> without the site
// suffix, or the title encoded in the locator, in that order.
func extractTitle(doc *goquery.Document, locator string) string {
	if heading := strings.TrimSpace(doc.Find("#firstHeading").First().Text()); heading != "" {
		return heading
	}
	if pageTitle := strings.TrimSpace(doc.Find("title").First().Text()); pageTitle != "" {
		return strings.TrimSuffix(pageTitle, titleSuffix)
	}
	return titleFromLocator(locator)
}

// titleFromLocator decodes the segment after /wiki/, dropping any fragment.
func titleFromLocator(locator string) string {
	_, segment, found := strings.Cut(locator, articlePrefix)
	if !found {
		return ""
	}
	segment, _, _ = strings.Cut(segment, "#")
	segment = strings.ReplaceAll(segment, "_", " ")
	if decoded, err := url.PathUnescape(segment); err == nil {
		return decoded
	}
	return segment
}
