package util

import (
	"compress/flate"
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
	"github.com/pkg/errors"
)

// maxBodySize bounds how much of an upstream body is read.
const maxBodySize = 32 << 20

// ReadResponse reads resp's body, undoing any Content-Encoding the transport
// left in place.
func ReadResponse(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "error creating gzip reader")
		}
		defer gzReader.Close()
		reader = gzReader
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fr := flate.NewReader(resp.Body)
		defer fr.Close()
		reader = fr
	}

	b, err := io.ReadAll(io.LimitReader(reader, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "error reading response body")
	}
	return b, nil
}

// TruncateString shortens s to at most maxLen bytes for log lines and error
// details.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	// never split a multi-byte rune
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen] + "..."
}
