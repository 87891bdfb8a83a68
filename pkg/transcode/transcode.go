// Package transcode implements the reversible per-byte transform applied to
// every input byte before it is stored in a token arena.
//
// The transform maps the raw bytes 0xF8, 0xF9 and 0xFA, which never occur in
// well-formed UTF-8, onto the codes 0, 1 and 2. Those codes are therefore free
// to act as structural markers inside encoded text.
package transcode

// mask is the involutive XOR key. Encode and Decode are the same operation.
const mask = 0xf8

// Sentinel codes. They never result from encoding a byte of valid UTF-8.
const (
	// Terminator ends every token in an arena.
	Terminator byte = 0

	// EndOfStream is the whole text of the token produced at end of input.
	EndOfStream byte = 1

	// Invalid prefixes the text of a token holding an ill-formed UTF-8 run.
	Invalid byte = 2
)

// Encode maps a raw byte to its stored form.
func Encode(b byte) byte { return b ^ mask }

// Decode maps a stored byte back to the raw byte.
func Decode(b byte) byte { return b ^ mask }

// IsASCII reports whether an encoded byte decodes to 7-bit ASCII.
func IsASCII(b byte) bool { return Decode(b) < 0x80 }

// IsAlpha reports whether an encoded byte decodes to an ASCII letter.
func IsAlpha(b byte) bool {
	c := Decode(b)
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// IsBlank reports whether an encoded byte decodes to a space or a tab.
func IsBlank(b byte) bool {
	c := Decode(b)
	return c == ' ' || c == '\t'
}

// AppendEncoded appends the encoded form of src to dst.
func AppendEncoded(dst, src []byte) []byte {
	for _, b := range src {
		dst = append(dst, Encode(b))
	}
	return dst
}

// AppendDecoded appends the raw form of src to dst.
func AppendDecoded(dst, src []byte) []byte {
	for _, b := range src {
		dst = append(dst, Decode(b))
	}
	return dst
}

// DecodeString returns the raw form of encoded bytes.
func DecodeString(src []byte) string {
	return string(AppendDecoded(make([]byte, 0, len(src)), src))
}
