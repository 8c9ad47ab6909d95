package richtext

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const minConfidence = 50

// ToUTF8 decodes input according to contentType, falling back to statistical
// detection for plain text without a declared charset. A UTF-8 BOM is
// stripped.
func ToUTF8(contentType string) TransformerFunc {
	plain := strings.HasPrefix(contentType, "text/plain")
	return func(input []byte) ([]byte, error) {
		enc, name, certain := charset.DetermineEncoding(input, contentType)
		if !certain && plain {
			if detected, detectedName := detect(input); detected != nil {
				enc, name = detected, detectedName
			}
		}
		slog.Debug("decoding document",
			slog.String("encoding", name),
			slog.Bool("certain", certain))

		if enc == encoding.Nop || enc == unicode.UTF8 {
			return bytes.TrimPrefix(input, utf8BOM), nil
		}
		out, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(input)))
		if err != nil {
			return nil, fmt.Errorf("failed to decode to UTF-8: %w", err)
		}
		return bytes.TrimPrefix(out, utf8BOM), nil
	}
}

func detect(input []byte) (encoding.Encoding, string) {
	result, err := chardet.NewTextDetector().DetectBest(input)
	if err != nil || result.Confidence < minConfidence {
		return nil, ""
	}
	enc, err := htmlindex.Get(result.Charset)
	if err != nil {
		return nil, ""
	}
	return enc, result.Charset
}
