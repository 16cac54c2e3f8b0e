package charset

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// decoderFor returns the codec that decodes data under name, with any
// applicable byte-order mark removed from data. Content labelled UTF-16 is
// decoded in the byte order its mark announces.
func decoderFor(data []byte, name string) (encoding.Encoding, []byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	body, bom := StripBOM(data)
	if !bom.Applies(name) {
		return enc, data, nil
	}
	if c, _ := Canonicalize(name); c == UTF16 {
		if e, err := Lookup(bom.Encoding()); err == nil {
			enc = e
		}
	}
	return enc, body, nil
}

// Decode converts data from encoding name to a Go string. A leading mark
// that belongs to the encoding is consumed. Malformed input is replaced with
// U+FFFD rather than reported.
func Decode(data []byte, name string) (string, error) {
	enc, body, err := decoderFor(data, name)
	if err != nil {
		return "", err
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return string(out), nil
}

// Encode converts text to encoding name. Characters the encoding cannot
// represent are written as the encoding's replacement byte.
func Encode(text string, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	out, _, err := transform.Bytes(encoding.ReplaceUnsupported(enc.NewEncoder()), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return out, nil
}

// NewDecodingReader wraps r so that reads yield UTF-8 decoded from name.
// Unlike Decode it does not consume a leading mark.
func NewDecodingReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
