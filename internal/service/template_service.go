package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"doctemplates/internal/domains"
	"doctemplates/internal/payload"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
)

type TemplateService struct {
	provider TemplateProvider
}

type TemplateProvider interface {
	ListAll() []*domains.Template
	Get(id uuid.UUID) (*domains.Template, bool)
	Create(ctx context.Context, create domains.TemplateCreate) (*domains.Template, error)
	CreateFromZipBytes(ctx context.Context, data []byte) (*domains.Template, error)
	CreateFromZipFile(ctx context.Context, archivePath string) (*domains.Template, error)
	Update(ctx context.Context, template *domains.Template, update domains.TemplateUpdate) (*domains.Template, error)
	LoadTemplateZip(ctx context.Context, template *domains.Template) ([]byte, error)

	Version(template *domains.Template, tag string) (*domains.TemplateVersion, bool, error)
	CreateVersion(ctx context.Context, template *domains.Template, create domains.TemplateVersionCreate) (*domains.TemplateVersion, error)
	CreateVersionFromZipBytes(ctx context.Context, template *domains.Template, data []byte) (*domains.TemplateVersion, error)
	UpdateVersion(ctx context.Context, template *domains.Template, version *domains.TemplateVersion, update domains.TemplateVersionUpdate) (*domains.TemplateVersion, error)
	LoadTemplateDocx(ctx context.Context, template *domains.Template, version *domains.TemplateVersion) ([]byte, error)
	LoadTemplateJSON(ctx context.Context, template *domains.Template, version *domains.TemplateVersion) ([]byte, error)
	LoadVersionZip(ctx context.Context, template *domains.Template, version *domains.TemplateVersion) ([]byte, error)
	ValidateGenerationPayload(ctx context.Context, template *domains.Template, version *domains.TemplateVersion, incoming map[string]any) (payload.ValidationResult, error)
}

func NewTemplateService(provider TemplateProvider) *TemplateService {
	return &TemplateService{
		provider: provider,
	}
}

func (h *TemplateService) ListTemplates() []*domains.Template {
	return h.provider.ListAll()
}

// SearchTemplates fuzzy matches query against title, description and labels.
// Results are ordered by match score.
func (h *TemplateService) SearchTemplates(query string) []*domains.Template {
	templates := h.provider.ListAll()
	if query == "" {
		return templates
	}

	searchStrings := make([]string, len(templates))
	for i, t := range templates {
		searchStrings[i] = fmt.Sprintf("%s %s %s", t.Title(), t.Description(), strings.Join(t.Labels(), " "))
	}

	matches := fuzzy.Find(query, searchStrings)
	results := make([]*domains.Template, 0, len(matches))
	for _, match := range matches {
		results = append(results, templates[match.Index])
	}
	return results
}

func (h *TemplateService) GetTemplate(id uuid.UUID) (*domains.Template, error) {
	template, ok := h.provider.Get(id)
	if !ok {
		return nil, ErrTemplateNotFound
	}
	return template, nil
}

func (h *TemplateService) CreateTemplate(ctx context.Context, create domains.TemplateCreate) (*domains.Template, error) {
	template, err := h.provider.Create(ctx, create)
	if err != nil {
		slog.Error("Create template error", "err", err)
		return nil, err
	}
	slog.Info("template created", "template_id", template.ID(), "title", template.Title())
	return template, nil
}

func (h *TemplateService) ImportTemplate(ctx context.Context, data []byte) (*domains.Template, error) {
	template, err := h.provider.CreateFromZipBytes(ctx, data)
	if err != nil {
		slog.Error("Import template error", "err", err)
		return nil, err
	}
	slog.Info("template imported", "template_id", template.ID(), "versions", len(template.VersionTags()))
	return template, nil
}

// ImportTemplateFile imports an archive previously saved to staging storage.
func (h *TemplateService) ImportTemplateFile(ctx context.Context, archivePath string) (*domains.Template, error) {
	template, err := h.provider.CreateFromZipFile(ctx, archivePath)
	if err != nil {
		slog.Error("Import template error", "archive", archivePath, "err", err)
		return nil, err
	}
	slog.Info("template imported", "template_id", template.ID(), "archive", archivePath)
	return template, nil
}

func (h *TemplateService) UpdateTemplate(ctx context.Context, id uuid.UUID, update domains.TemplateUpdate) (*domains.Template, error) {
	template, err := h.GetTemplate(id)
	if err != nil {
		return nil, err
	}
	template, err = h.provider.Update(ctx, template, update)
	if err != nil {
		slog.Error("Update template error", "template_id", id, "err", err)
		return nil, err
	}
	return template, nil
}

func (h *TemplateService) ExportTemplate(ctx context.Context, id uuid.UUID) ([]byte, error) {
	template, err := h.GetTemplate(id)
	if err != nil {
		return nil, err
	}
	data, err := h.provider.LoadTemplateZip(ctx, template)
	if err != nil {
		slog.Error("Export template error", "template_id", id, "err", err)
		return nil, err
	}
	return data, nil
}

// GetVersion looks up a version by tag. An empty tag selects the latest
// version.
func (h *TemplateService) GetVersion(id uuid.UUID, tag string) (*domains.Template, *domains.TemplateVersion, error) {
	template, err := h.GetTemplate(id)
	if err != nil {
		return nil, nil, err
	}

	if tag == "" {
		version, ok := template.LatestVersion()
		if !ok {
			return nil, nil, ErrVersionNotFound
		}
		return template, version, nil
	}

	version, ok, err := h.provider.Version(template, tag)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrVersionNotFound
	}
	return template, version, nil
}

func (h *TemplateService) CreateVersion(ctx context.Context, id uuid.UUID, create domains.TemplateVersionCreate) (*domains.TemplateVersion, error) {
	template, err := h.GetTemplate(id)
	if err != nil {
		return nil, err
	}
	if _, ok, _ := h.provider.Version(template, create.Tag.String()); ok {
		return nil, ErrVersionExists
	}

	version, err := h.provider.CreateVersion(ctx, template, create)
	if err != nil {
		slog.Error("Create template version error", "template_id", id, "tag", create.Tag, "err", err)
		return nil, err
	}
	slog.Info("template version created", "template_id", id, "tag", version.TagString())
	return version, nil
}

func (h *TemplateService) ImportVersion(ctx context.Context, id uuid.UUID, data []byte) (*domains.TemplateVersion, error) {
	template, err := h.GetTemplate(id)
	if err != nil {
		return nil, err
	}
	version, err := h.provider.CreateVersionFromZipBytes(ctx, template, data)
	if err != nil {
		slog.Error("Import template version error", "template_id", id, "err", err)
		return nil, err
	}
	slog.Info("template version imported", "template_id", id, "tag", version.TagString())
	return version, nil
}

func (h *TemplateService) UpdateVersion(ctx context.Context, id uuid.UUID, tag string, update domains.TemplateVersionUpdate) (*domains.TemplateVersion, error) {
	template, version, err := h.GetVersion(id, tag)
	if err != nil {
		return nil, err
	}
	version, err = h.provider.UpdateVersion(ctx, template, version, update)
	if err != nil {
		slog.Error("Update template version error", "template_id", id, "tag", tag, "err", err)
		return nil, err
	}
	return version, nil
}

func (h *TemplateService) LoadDocx(ctx context.Context, id uuid.UUID, tag string) ([]byte, error) {
	template, version, err := h.GetVersion(id, tag)
	if err != nil {
		return nil, err
	}
	return h.provider.LoadTemplateDocx(ctx, template, version)
}

func (h *TemplateService) LoadExamplePayload(ctx context.Context, id uuid.UUID, tag string) ([]byte, error) {
	template, version, err := h.GetVersion(id, tag)
	if err != nil {
		return nil, err
	}
	return h.provider.LoadTemplateJSON(ctx, template, version)
}

func (h *TemplateService) ExportVersion(ctx context.Context, id uuid.UUID, tag string) ([]byte, error) {
	template, version, err := h.GetVersion(id, tag)
	if err != nil {
		return nil, err
	}
	return h.provider.LoadVersionZip(ctx, template, version)
}

// ValidatePayload checks incoming against the example payload of a version,
// the latest one when tag is empty. A mismatch is reported as *PayloadError.
func (h *TemplateService) ValidatePayload(ctx context.Context, id uuid.UUID, tag string, incoming map[string]any) (payload.ValidationResult, error) {
	template, version, err := h.GetVersion(id, tag)
	if err != nil {
		return payload.ValidationResult{}, err
	}

	result, err := h.provider.ValidateGenerationPayload(ctx, template, version, incoming)
	if err != nil {
		slog.Error("Validate payload error", "template_id", id, "tag", version.TagString(), "err", err)
		return payload.ValidationResult{}, err
	}
	if !result.Valid() {
		return result, &PayloadError{Result: result}
	}
	return result, nil
}
