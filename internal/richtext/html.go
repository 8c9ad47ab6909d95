package richtext

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var nbspPattern = regexp.MustCompile("(?i)&nbsp;|\xc2\xa0")

// NormalizeNBSP replaces non-breaking space entities and characters with
// regular spaces.
func NormalizeNBSP() TransformerFunc {
	return func(input []byte) ([]byte, error) {
		return nbspPattern.ReplaceAll(input, []byte{' '}), nil
	}
}

// ExtractBody keeps only the body of a full HTML document. Fragments are
// returned unchanged.
func ExtractBody() TransformerFunc {
	return func(input []byte) ([]byte, error) {
		if !bytes.Contains(bytes.ToLower(input), []byte("<body")) {
			return input, nil
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTML document: %w", err)
		}
		inner, err := doc.Find("body").Html()
		if err != nil {
			return nil, fmt.Errorf("failed to extract HTML body: %w", err)
		}
		return []byte(strings.TrimSpace(inner)), nil
	}
}

// Sanitize strips everything a policy page may not carry: scripts, styles,
// forms, embedded media and event attributes.
func Sanitize() TransformerFunc {
	policy := policyPage()
	return func(input []byte) ([]byte, error) {
		return policy.SanitizeBytes(input), nil
	}
}

func policyPage() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()
	policy.AllowStandardAttributes()
	policy.AllowStandardURLs()
	policy.RequireNoReferrerOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.AllowElements(
		"b", "br", "code", "div", "em", "hr", "i", "p", "pre", "s",
		"section", "small", "strong", "sub", "sup", "u",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote",
	)
	policy.AllowAttrs("href").OnElements("a")
	policy.AllowLists()
	policy.AllowTables()
	return policy
}

// DropEmptyParagraphs removes paragraphs holding nothing but whitespace and
// line breaks.
func DropEmptyParagraphs() TransformerFunc {
	return func(input []byte) ([]byte, error) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTML: %w", err)
		}
		body := doc.Find("body")
		body.Find("p").Each(func(_ int, p *goquery.Selection) {
			if onlyBreaks(p.Get(0)) {
				p.Remove()
			}
		})
		out, err := body.Html()
		if err != nil {
			return nil, fmt.Errorf("failed to render HTML: %w", err)
		}
		return []byte(out), nil
	}
}

func onlyBreaks(node *html.Node) bool {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch {
		case child.Type == html.TextNode && strings.TrimSpace(child.Data) == "":
		case child.Type == html.ElementNode && child.Data == "br":
		default:
			return false
		}
	}
	return true
}

// PlainText returns the whitespace-collapsed text content of an HTML
// fragment.
func PlainText(input []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
