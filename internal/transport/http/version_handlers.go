package httptransport

import (
	"net/http"
	"strings"

	"doctemplates/internal/domains"
	"doctemplates/internal/httpx"
	"doctemplates/internal/payload"
)

func (h *TemplateHandlers) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.GetID(w, r)
	if !ok {
		return
	}
	template, err := h.service.GetTemplate(id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	versions := template.Versions()
	out := make([]VersionResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, NewVersionResponse(v))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *TemplateHandlers) GetVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.GetID(w, r)
	if !ok {
		return
	}
	_, version, err := h.service.GetVersion(id, httpx.GetTag(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewVersionResponse(version))
}

// CreateVersion accepts a multipart form with docx_file, json_file,
// version_tag and message.
func (h *TemplateHandlers) CreateVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.GetID(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	docx, _, err := httpx.ReadFormFile(r, "docx_file", h.maxUpload)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	example, _, err := httpx.ReadFormFile(r, "json_file", h.maxUpload)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := payload.Decode(example); err != nil {
		httpx.Error(w, http.StatusBadRequest, "json_file: "+err.Error())
		return
	}
	tag, err := domains.ParseVersionTag(strings.TrimSpace(r.FormValue("version_tag")))
	if err != nil {
		writeError(w, r, err)
		return
	}

	version, err := h.service.CreateVersion(r.Context(), id, domains.TemplateVersionCreate{
		Tag:     tag,
		Message: r.FormValue("message"),
		Docx:    docx,
		JSON:    example,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	logChange(r, "version created", "template_id", id, "tag", version.TagString())
	httpx.JSON(w, http.StatusCreated, NewVersionResponse(version))
}

func (h *TemplateHandlers) ImportVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.GetID(w, r)
	if !ok {
		return
	}
	data, ok := h.readArchive(w, r)
	if !ok {
		return
	}
	version, err := h.service.ImportVersion(r.Context(), id, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logChange(r, "version imported", "template_id", id, "tag", version.TagString())
	httpx.JSON(w, http.StatusCreated, NewVersionResponse(version))
}

func (h *TemplateHandlers) UpdateVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.GetID(w, r)
	if !ok {
		return
	}
	update, err := httpx.ReadBody[domains.TemplateVersionUpdate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	version, err := h.service.UpdateVersion(r.Context(), id, httpx.GetTag(r), update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logChange(r, "version updated", "template_id", id, "tag", version.TagString())
	httpx.JSON(w, http.StatusOK, NewVersionResponse(version))
}

func (h *TemplateHandlers) DownloadDocx(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.GetID(w, r)
	if !ok {
		return
	}
	data, err := h.service.LoadDocx(r.Context(), id, httpx.GetTag(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Attachment(w, r, httpx.DocxContentType, "template.docx", data)
}

func (h *TemplateHandlers) DownloadJSON(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.GetID(w, r)
	if !ok {
		return
	}
	data, err := h.service.LoadExamplePayload(r.Context(), id, httpx.GetTag(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Attachment(w, r, "application/json", "template.json", data)
}

func (h *TemplateHandlers) ExportVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.GetID(w, r)
	if !ok {
		return
	}
	tag := httpx.GetTag(r)
	data, err := h.service.ExportVersion(r.Context(), id, tag)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Attachment(w, r, httpx.ZipContentType, tag+".zip", data)
}
