package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestRender(t *testing.T) {
	t.Parallel()

	out, err := Render([]byte("# Privacy\n\nWe keep **nothing**.\n\n<script>alert(1)</script>"))
	require.NoError(t, err)
	assert.Contains(t, string(out), `<h1 id="privacy">Privacy</h1>`)
	assert.Contains(t, string(out), "<strong>nothing</strong>")
	assert.NotContains(t, string(out), "script")

	text, err := PlainText(out)
	require.NoError(t, err)
	assert.Equal(t, "Privacy We keep nothing.", text)
}

func TestImport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		input       []byte
		want        string
		wantErr     bool
	}{
		{
			name:        "html document",
			contentType: "text/html; charset=utf-8",
			input:       []byte(`<html><body><h2>Data</h2><p>We&nbsp;store <em>orders</em>.</p><p><br></p><form><input></form></body></html>`),
			want:        "## Data\n\nWe store _orders_.",
		},
		{
			name:        "plain text",
			contentType: "text/plain",
			input:       []byte("Line one  \r\n\r\n\r\n\r\n-----\r\nLine two"),
			want:        "Line one\n\n***\nLine two",
		},
		{
			name:        "latin1 text",
			contentType: "text/plain; charset=iso-8859-1",
			input:       encode(t, "Données"),
			want:        "Données",
		},
		{
			name:        "utf8 bom",
			contentType: "text/markdown; charset=utf-8",
			input:       []byte("\xEF\xBB\xBF*hello*"),
			want:        "*hello*",
		},
		{
			name:        "unsupported",
			contentType: "application/pdf",
			input:       []byte("%PDF"),
			wantErr:     true,
		},
		{
			name:        "malformed content type",
			contentType: "text/",
			wantErr:     true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got, err := Import(test.contentType, test.input)
			if test.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, string(got))
		})
	}
}

func TestChain(t *testing.T) {
	t.Parallel()

	upper := TransformerFunc(func(in []byte) ([]byte, error) { return append(in, '!'), nil })
	fail := TransformerFunc(func([]byte) ([]byte, error) { return nil, assert.AnError })

	out, err := Chain(upper, upper)([]byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "hi!!", string(out))

	_, err = Chain(upper, fail, upper)([]byte("hi"))
	require.ErrorIs(t, err, assert.AnError)
}

func encode(t *testing.T, s string) []byte {
	t.Helper()
	out, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return out
}
