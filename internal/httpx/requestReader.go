package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"doctemplates/internal/payload"
)

var ErrFileMissing = errors.New("file is missing")

func ReadBody[InitType any](r *http.Request) (InitType, error) {
	var body InitType
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return body, err
	}
	return body, nil
}

// ReadPayload decodes a generation payload, keeping numbers as json.Number.
func ReadPayload(r *http.Request, maxBytes int64) (map[string]any, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("payload is larger than %d bytes", maxBytes)
	}
	return payload.Decode(data)
}

// ReadFormFile returns the content of a multipart file field together with
// its declared content type.
func ReadFormFile(r *http.Request, field string, maxBytes int64) ([]byte, string, error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return nil, "", fmt.Errorf("invalid multipart form: %w", err)
		}
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", fmt.Errorf("%w: %s", ErrFileMissing, field)
		}
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("%s is larger than %d bytes", field, maxBytes)
	}
	return data, header.Header.Get("Content-Type"), nil
}
