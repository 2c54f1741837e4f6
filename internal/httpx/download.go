package httpx

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ZipContentType  = "application/zip"
)

// ETag returns a strong entity tag derived from the BLAKE2b-256 digest of data.
func ETag(data []byte) string {
	sum := blake2b.Sum256(data)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// Attachment writes data as a downloadable file. A request whose
// If-None-Match carries the current ETag gets 304 without a body.
func Attachment(w http.ResponseWriter, r *http.Request, contentType, filename string, data []byte) {
	etag := ETag(data)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
