package providers

import (
	"context"
	"fmt"

	"doctemplates/internal/domains"

	"github.com/google/uuid"
)

// VersionLoadOptions controls what CreateVersionFromPath does with a version
// after loading it.
type VersionLoadOptions struct {
	// AttachToTemplate adds the version to the template, listing its tag in
	// the template metadata.
	AttachToTemplate bool
	// SaveTemplateMeta rewrites the template meta.yaml afterwards.
	SaveTemplateMeta bool
}

func (p *TemplateProvider) Version(template *domains.Template, tag string) (*domains.TemplateVersion, bool, error) {
	return template.Version(tag)
}

func (p *TemplateProvider) Versions(template *domains.Template) []*domains.TemplateVersion {
	return template.Versions()
}

// AddVersion attaches an already stored version to template and persists the
// template metadata.
func (p *TemplateProvider) AddVersion(ctx context.Context, template *domains.Template, version *domains.TemplateVersion) error {
	if err := template.AddVersion(version, true); err != nil {
		return err
	}
	if err := p.saveTemplateMeta(template); err != nil {
		template.RemoveVersion(version.Tag())
		return err
	}
	return nil
}

func (p *TemplateProvider) CreateVersion(
	ctx context.Context,
	template *domains.Template,
	create domains.TemplateVersionCreate,
) (*domains.TemplateVersion, error) {
	if _, ok, _ := template.Version(create.Tag.String()); ok {
		return nil, fmt.Errorf("version %s of %s: %w", create.Tag, template.ID(), ErrDuplication)
	}

	meta := domains.NewTemplateVersionMetaData(create.Tag, create.Message)
	dir, err := p.storeVersion(template, meta, create.Docx, create.JSON)
	if err != nil {
		return nil, err
	}
	version, err := p.CreateVersionFromPath(ctx, template, dir, VersionLoadOptions{
		AttachToTemplate: true,
		SaveTemplateMeta: true,
	})
	if err != nil {
		p.rollback(dir)
		return nil, err
	}
	return version, nil
}

// CreateVersionFromPath builds the version stored at dir and rewrites its
// meta.yaml in canonical form.
func (p *TemplateProvider) CreateVersionFromPath(
	ctx context.Context,
	template *domains.Template,
	dir string,
	opts VersionLoadOptions,
) (*domains.TemplateVersion, error) {
	version, err := p.factory.CreateTemplateVersion(dir)
	if err != nil {
		return nil, err
	}
	if err := p.saveVersionMeta(template, version); err != nil {
		return nil, err
	}
	if opts.AttachToTemplate {
		if err := template.AddVersion(version, true); err != nil {
			return nil, err
		}
	}
	if opts.SaveTemplateMeta {
		if err := p.saveTemplateMeta(template); err != nil {
			// meta.yaml on disk still lacks the tag
			if opts.AttachToTemplate {
				template.RemoveVersion(version.Tag())
			}
			return nil, err
		}
	}
	return version, nil
}

// CreateVersionFromZipBytes imports a version archive into template with the
// same staging rules as CreateFromZipBytes.
func (p *TemplateProvider) CreateVersionFromZipBytes(
	ctx context.Context,
	template *domains.Template,
	data []byte,
) (*domains.TemplateVersion, error) {
	stageDir := uuid.NewString()
	defer p.releaseStaging(stageDir)

	root, err := p.tmpStorage.SaveDirFromArchiveBytes(data, stageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to stage archive: %w", err)
	}
	meta, err := p.tmpValidator.ValidateVersionDir(root)
	if err != nil {
		return nil, err
	}
	tag := meta.Tag.String()
	if _, ok, _ := template.Version(tag); ok {
		return nil, fmt.Errorf("version %s of %s: %w", tag, template.ID(), ErrDuplication)
	}
	dest := VersionPath(templatePath(template.ID()), tag)
	if p.fileStorage.Exists(dest) {
		return nil, fmt.Errorf("version directory %s: %w", dest, ErrDuplication)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := p.commitArchive(data, dest); err != nil {
		return nil, err
	}
	version, err := p.CreateVersionFromPath(ctx, template, dest, VersionLoadOptions{
		AttachToTemplate: true,
		SaveTemplateMeta: true,
	})
	if err != nil {
		p.rollback(dest)
		return nil, err
	}
	return version, nil
}

func (p *TemplateProvider) UpdateVersion(
	ctx context.Context,
	template *domains.Template,
	version *domains.TemplateVersion,
	update domains.TemplateVersionUpdate,
) (*domains.TemplateVersion, error) {
	if update.Message != nil {
		version.SetMessage(*update.Message)
	}
	version.Touch(p.now())

	if err := p.saveVersionMeta(template, version); err != nil {
		return nil, err
	}
	return version, nil
}

func (p *TemplateProvider) LoadTemplateDocx(ctx context.Context, template *domains.Template, version *domains.TemplateVersion) ([]byte, error) {
	return p.fileStorage.LoadFile(TemplateDocxPath(versionPath(template, version)))
}

func (p *TemplateProvider) LoadTemplateJSON(ctx context.Context, template *domains.Template, version *domains.TemplateVersion) ([]byte, error) {
	return p.fileStorage.LoadFile(TemplateJSONPath(versionPath(template, version)))
}

func (p *TemplateProvider) LoadVersionZip(ctx context.Context, template *domains.Template, version *domains.TemplateVersion) ([]byte, error) {
	return p.fileStorage.LoadDirAsArchiveBytes(versionPath(template, version), true)
}

// storeVersion writes a new version directory with an empty static/.
func (p *TemplateProvider) storeVersion(
	template *domains.Template,
	meta domains.TemplateVersionMetaData,
	docx, json []byte,
) (string, error) {
	dir := VersionPath(templatePath(template.ID()), meta.Tag.String())
	if p.fileStorage.Exists(dir) {
		return "", fmt.Errorf("version directory %s: %w", dir, ErrDuplication)
	}

	data, err := meta.Encode()
	if err != nil {
		return "", err
	}
	if _, err := p.fileStorage.Mkdir(StaticPath(dir)); err != nil {
		return "", err
	}
	files := []struct {
		path string
		data []byte
	}{
		{MetaPath(dir), data},
		{TemplateDocxPath(dir), docx},
		{TemplateJSONPath(dir), json},
	}
	for _, f := range files {
		if _, err := p.fileStorage.SaveFile(f.path, f.data); err != nil {
			p.rollback(dir)
			return "", err
		}
	}
	return dir, nil
}

func (p *TemplateProvider) saveVersionMeta(template *domains.Template, version *domains.TemplateVersion) error {
	data, err := version.MetaBytes()
	if err != nil {
		return err
	}
	_, err = p.fileStorage.SaveFile(MetaPath(versionPath(template, version)), data)
	return err
}

func versionPath(template *domains.Template, version *domains.TemplateVersion) string {
	return VersionPath(templatePath(template.ID()), version.TagString())
}
