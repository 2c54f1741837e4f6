package httptransport

import (
	"time"

	"doctemplates/internal/domains"
	"doctemplates/internal/payload"

	"github.com/google/uuid"
)

type TemplateResponse struct {
	ID          uuid.UUID            `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Versions    []domains.VersionTag `json:"versions"`
	Labels      []string             `json:"labels"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   *time.Time           `json:"updated_at"`
}

func NewTemplateResponse(t *domains.Template) TemplateResponse {
	versions := t.VersionTags()
	if versions == nil {
		versions = []domains.VersionTag{}
	}
	labels := t.Labels()
	if labels == nil {
		labels = []string{}
	}
	return TemplateResponse{
		ID:          t.ID(),
		Title:       t.Title(),
		Description: t.Description(),
		Versions:    versions,
		Labels:      labels,
		CreatedAt:   t.CreatedAt(),
		UpdatedAt:   t.UpdatedAt(),
	}
}

func NewTemplateResponses(templates []*domains.Template) []TemplateResponse {
	out := make([]TemplateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, NewTemplateResponse(t))
	}
	return out
}

type VersionResponse struct {
	Tag       string     `json:"tag"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func NewVersionResponse(v *domains.TemplateVersion) VersionResponse {
	return VersionResponse{
		Tag:       v.TagString(),
		Message:   v.Message(),
		CreatedAt: v.CreatedAt(),
		UpdatedAt: v.UpdatedAt(),
	}
}

type PayloadErrorResponse struct {
	Detail           string                   `json:"detail"`
	ValidationResult payload.ValidationResult `json:"validation_result"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
