package httptransport

import (
	"errors"
	"log/slog"
	"net/http"

	"doctemplates/internal/domains"
	"doctemplates/internal/httpx"
	"doctemplates/internal/payload"
	"doctemplates/internal/service"
	"doctemplates/internal/storage"
	"doctemplates/internal/storage/providers"
)

// writeError maps service and repository errors to HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if pe, ok := service.IsPayloadError(err); ok {
		httpx.JSON(w, http.StatusBadRequest, PayloadErrorResponse{
			Detail:           "Template body is invalid.",
			ValidationResult: pe.Result,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		httpx.Error(w, http.StatusNotFound, "Template was not found.")
	case errors.Is(err, service.ErrVersionNotFound):
		httpx.Error(w, http.StatusNotFound, "Template version was not found.")
	case errors.Is(err, service.ErrVersionExists), errors.Is(err, domains.ErrDuplicateVersion):
		httpx.Error(w, http.StatusConflict, "Version already exists.")
	case errors.Is(err, providers.ErrDuplication):
		httpx.Error(w, http.StatusConflict, "Conflict: "+err.Error())
	case providers.IsStructureError(err):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrInvalidArchive),
		errors.Is(err, domains.ErrInvalidVersionFormat),
		errors.Is(err, domains.ErrMetadataInvalid),
		errors.Is(err, payload.ErrNotAnObject),
		errors.Is(err, httpx.ErrFileMissing):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
