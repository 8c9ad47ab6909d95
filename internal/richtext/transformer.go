package richtext

// Transformer modifies a document, returning the result or an error.
type Transformer interface {
	Transform(input []byte) ([]byte, error)
}

// TransformerFunc is a [Transformer] that can be represented just by the
// Transform method.
type TransformerFunc func(input []byte) ([]byte, error)

// Transform satisfies [Transformer].
func (fn TransformerFunc) Transform(input []byte) ([]byte, error) { return fn(input) }

// Chain runs transformers in order, failing fast on the first error.
func Chain(transformers ...Transformer) TransformerFunc {
	return func(input []byte) ([]byte, error) {
		var err error
		for _, transformer := range transformers {
			if input, err = transformer.Transform(input); err != nil {
				return nil, err
			}
		}
		return input, nil
	}
}
