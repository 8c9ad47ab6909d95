package richtext

import (
	"bytes"
	"fmt"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// ToMarkdown converts HTML into CommonMark.
func ToMarkdown() TransformerFunc {
	conv := converter.NewConverter(
		converter.WithEscapeMode(converter.EscapeModeSmart),
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithEmDelimiter("_"),
				commonmark.WithLinkEmptyHrefBehavior(commonmark.LinkBehaviorSkip),
			),
			table.NewTablePlugin(),
		),
	)
	return func(input []byte) ([]byte, error) {
		return conv.ConvertReader(bytes.NewReader(input))
	}
}

// ToHTML renders CommonMark into HTML. The output is not sanitized.
func ToHTML() TransformerFunc {
	markdown := goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Table),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	return func(input []byte) ([]byte, error) {
		var out bytes.Buffer
		if err := markdown.Convert(input, &out); err != nil {
			return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
		}
		return out.Bytes(), nil
	}
}
