// Package richtext converts the policy documents the marketplace stores into
// what it renders. Stored documents are Markdown; imported documents may be
// HTML or plain text in any encoding.
package richtext

import (
	"fmt"
	"mime"
)

var (
	toHTMLPipeline = Chain(ToHTML(), Sanitize(), DropEmptyParagraphs())

	htmlToMarkdownPipeline = Chain(NormalizeNBSP(), ExtractBody(), Sanitize(), DropEmptyParagraphs(), ToMarkdown())
	textToMarkdownPipeline = ScrubText()
)

// Render turns stored Markdown into sanitized HTML.
func Render(markdown []byte) ([]byte, error) {
	return toHTMLPipeline(markdown)
}

// Import converts a document of the given content type into Markdown suitable
// for storage.
func Import(contentType string, input []byte) ([]byte, error) {
	mimeType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to parse content type %q: %w", contentType, err)
	}
	if input, err = ToUTF8(contentType)(input); err != nil {
		return nil, err
	}
	switch mimeType {
	case "text/html":
		return htmlToMarkdownPipeline(input)
	case "text/plain", "text/markdown":
		return textToMarkdownPipeline(input)
	default:
		return nil, fmt.Errorf("unsupported content type %q", mimeType)
	}
}
