package circuitfile

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// Hash is the canonical record checksum: a base-31 polynomial over the UTF-16
// code units of s with 32-bit wraparound, h = h*31 + unit. Existing circuit
// files carry hashes computed this way.
func Hash(s string) int32 {
	var h int32
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x80 {
			h = 31*h + int32(c)
			continue
		}
		// Non-ASCII: hash the remainder as UTF-16 code units.
		for _, u := range utf16.Encode([]rune(s[i:])) {
			h = 31*h + int32(u)
		}
		break
	}
	return h
}

// formatHash renders a hash the way it appears in a hash="" field
func formatHash(h int32) string {
	return strconv.FormatInt(int64(h), 10)
}

// parseHash parses a hash field value
func parseHash(s string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// canonicalBody strips the structural delimiters from encoded body text so the
// stream hash does not depend on line breaks or indentation.
func canonicalBody(body string) string {
	body = strings.ReplaceAll(body, "<", "")
	body = strings.ReplaceAll(body, "/>", "")
	body = strings.ReplaceAll(body, "\r", "")
	body = strings.ReplaceAll(body, "\n", "")
	body = strings.ReplaceAll(body, "\t", "")
	return body
}

// canonicalStream reduces a complete file to the text the stream hash covers.
// The stream-hash record occupies raw[start:end] and is cut out by position,
// so spacing inside it does not matter; header and circuit tags are removed
// before the body is canonicalized.
func canonicalStream(raw string, start, end int) string {
	if start >= 0 && start <= end && end <= len(raw) {
		raw = raw[:start] + raw[end:]
	}
	raw = strings.ReplaceAll(raw, header, "")
	raw = strings.ReplaceAll(raw, "</"+rootTag+">", "")
	raw = strings.ReplaceAll(raw, "<"+rootTag+">", "")
	return canonicalBody(raw)
}
