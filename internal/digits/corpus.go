package digits

import (
	"bytes"
	"fmt"
)

// normalize converts a raw corpus file into a bare digit string. A leading
// "3." and any whitespace are dropped; other bytes are rejected.
func normalize(raw []byte) (string, error) {
	body := bytes.TrimSpace(raw)
	body = bytes.TrimPrefix(body, []byte("3."))
	out := make([]byte, 0, len(body))
	for i, b := range body {
		switch {
		case b >= '0' && b <= '9':
			out = append(out, b)
		case b == '\n' || b == '\r' || b == ' ' || b == '\t':
		default:
			return "", fmt.Errorf("%w: unexpected byte %q at %d", ErrCorrupt, b, i)
		}
	}
	if len(out) == 0 {
		return "", fmt.Errorf("%w: no digits", ErrCorrupt)
	}
	return string(out), nil
}

// contiguousRegion locates the digit run inside a raw corpus so it can be
// addressed in place. The run must not contain whitespace.
func contiguousRegion(raw []byte) (start, end int, err error) {
	end = len(raw)
	for start < end && isSpace(raw[start]) {
		start++
	}
	for end > start && isSpace(raw[end-1]) {
		end--
	}
	if bytes.HasPrefix(raw[start:end], []byte("3.")) {
		start += 2
	}
	if start >= end {
		return 0, 0, fmt.Errorf("%w: no digits", ErrCorrupt)
	}
	for i := start; i < end; i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, 0, fmt.Errorf("%w: non-digit byte %q at %d", ErrCorrupt, raw[i], i)
		}
	}
	return start, end, nil
}

func isSpace(b byte) bool {
	return b == '\n' || b == '\r' || b == ' ' || b == '\t'
}
