package search

import (
	"io"
	"mime"
	"strings"
)

// maxBodyBytes caps how much of a provider response is read into memory.
const maxBodyBytes = 10 << 20

// maxErrorBody caps the body excerpt kept on errors for diagnostics.
const maxErrorBody = 200

// readBody reads at most maxBodyBytes from r.
func readBody(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxBodyBytes))
}

// isJSONContentType accepts application/json and any +json media type.
func isJSONContentType(header string) bool {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
