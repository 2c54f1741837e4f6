package httptransport

import (
	"net/http"

	"doctemplates/internal/httpx"
)

// ValidatePayload checks a generation payload against the example payload
// of the requested version, or of the latest one when the route has no tag.
func (h *TemplateHandlers) ValidatePayload(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.GetID(w, r)
	if !ok {
		return
	}
	incoming, err := httpx.ReadPayload(r, h.maxUpload)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ValidatePayload(r.Context(), id, httpx.GetTag(r), incoming)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
