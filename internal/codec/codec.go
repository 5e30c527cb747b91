// Package codec turns a game's state into an opaque token safe to
// embed in message text, and back. Tokens are JSON, zlib-compressed,
// base64url-encoded with padding stripped: ASCII only, no whitespace.
package codec

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Encode serializes v into a token.
func Encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return "", fmt.Errorf("compress state: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode parses a token into the given value. It reports false on any
// malformed input: bad base64, a corrupt compressed stream, or invalid
// JSON. Tokens that kept their padding are accepted too.
func Decode(token string, into any) bool {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return false
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return false
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, into) == nil
}

// DecodeMap parses a token into a generic mapping. Most callers use
// Decode with a typed snapshot; the dispatcher uses this to sniff a
// payload's shape before it knows which type owns it.
func DecodeMap(token string) (map[string]any, bool) {
	var m map[string]any
	if !Decode(token, &m) {
		return nil, false
	}
	return m, true
}
