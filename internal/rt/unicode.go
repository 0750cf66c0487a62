package rt

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// utf8Codec is shared across DecodeUTF8/EncodeUTF8 calls; golang.org/x/text
// encoders/decoders are safe for concurrent use once constructed.
var utf8Codec = unicode.UTF8.NewEncoder()
var utf8Decoder = unicode.UTF8.NewDecoder()

// DecodeUTF8 decodes data as UTF-8 text, matching HILTI's
// `bytes::decode(Charset::UTF8)` builtin (spec.md GLOSSARY). It rejects
// invalid byte sequences rather than silently substituting U+FFFD, since a
// Spicy grammar's &convert expects decode failures to surface as parse
// errors.
func DecodeUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("rt: invalid UTF-8 input")
	}
	out, err := utf8Decoder.Bytes(data)
	if err != nil {
		return "", fmt.Errorf("rt: invalid UTF-8 input: %w", err)
	}
	return string(out), nil
}

// EncodeUTF8 encodes s back to its UTF-8 byte representation. Since Go
// strings are already UTF-8, this is primarily exercised by the
// decode/encode round-trip law (spec.md §8): EncodeUTF8(DecodeUTF8(b)) ==
// b for any well-formed UTF-8 input b.
func EncodeUTF8(s string) ([]byte, error) {
	out, err := utf8Codec.Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("rt: cannot encode as UTF-8: %w", err)
	}
	return out, nil
}
