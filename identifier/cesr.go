package identifier

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// b64 is the CESR text domain alphabet (URL-safe base64, no padding).
var b64 = base64.RawURLEncoding

const b64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// SignatureCode is the derivation code of an Ed25519 (SHA-512) signature.
const SignatureCode = "0B"

// SignatureSize is the size of a raw Ed25519 signature.
const SignatureSize = 64

// ErrMalformedPrimitive is returned when a CESR primitive cannot be decoded.
var ErrMalformedPrimitive = errors.New("malformed CESR primitive")

// EncodePrimitive renders raw as CESR text with the given derivation code.
// The raw bytes are left padded with len(code) zero bytes so that the
// resulting base64 is aligned, then the leading 'A' characters are replaced
// by the code.
func EncodePrimitive(code string, raw []byte) string {
	padded := make([]byte, len(code)+len(raw))
	copy(padded[len(code):], raw)
	text := b64.EncodeToString(padded)
	return code + text[len(code):]
}

// DecodePrimitive is the inverse of EncodePrimitive. It returns the raw bytes
// after checking the code, the total length and the lead bytes.
func DecodePrimitive(code string, text string, rawSize int) ([]byte, error) {
	if !strings.HasPrefix(text, code) {
		return nil, fmt.Errorf("%w: expected code %q", ErrMalformedPrimitive, code)
	}
	if want := PrimitiveLength(code, rawSize); len(text) != want {
		return nil, fmt.Errorf("%w: expected %d characters, got %d", ErrMalformedPrimitive, want, len(text))
	}
	padded, err := b64.DecodeString(strings.Repeat("A", len(code)) + text[len(code):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPrimitive, err)
	}
	for _, lead := range padded[:len(code)] {
		if lead != 0 {
			return nil, fmt.Errorf("%w: non-zero lead bytes", ErrMalformedPrimitive)
		}
	}
	return padded[len(code):], nil
}

// PrimitiveLength is the text length of a primitive of rawSize bytes under code.
func PrimitiveLength(code string, rawSize int) int {
	return b64.EncodedLen(len(code) + rawSize)
}

// EncodeSignature returns the CESR text form of a raw Ed25519 signature.
func EncodeSignature(sig []byte) (string, error) {
	if len(sig) != SignatureSize {
		return "", fmt.Errorf("%w: signature must be %d bytes, got %d", ErrMalformedPrimitive, SignatureSize, len(sig))
	}
	return EncodePrimitive(SignatureCode, sig), nil
}

// DecodeSignature parses a CESR Ed25519 signature.
func DecodeSignature(text string) ([]byte, error) {
	return DecodePrimitive(SignatureCode, text, SignatureSize)
}

// SignatureLength is the number of characters of an encoded signature.
func SignatureLength() int {
	return PrimitiveLength(SignatureCode, SignatureSize)
}

// EncodeCount encodes n as a big-endian base64 number of exactly width
// characters, as used by CESR group counters.
func EncodeCount(n, width int) (string, error) {
	if n < 0 || n >= 1<<(6*width) {
		return "", fmt.Errorf("%w: count %d does not fit in %d characters", ErrMalformedPrimitive, n, width)
	}
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = b64Alphabet[n&63]
		n >>= 6
	}
	return string(out), nil
}

// DecodeCount is the inverse of EncodeCount.
func DecodeCount(text string) (int, error) {
	n := 0
	for _, c := range []byte(text) {
		v := strings.IndexByte(b64Alphabet, c)
		if v < 0 {
			return 0, fmt.Errorf("%w: invalid count character %q", ErrMalformedPrimitive, c)
		}
		n = n<<6 | v
	}
	return n, nil
}
